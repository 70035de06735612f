package progress

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpinnerShowHide(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf)

	assert.False(t, s.Visible())
	s.Show("Exploring repository...")
	assert.True(t, s.Visible())

	// A second Show only swaps the message.
	s.Show("Fetching file...")
	assert.True(t, s.Visible())

	s.Hide()
	assert.False(t, s.Visible())

	// Hide on a hidden spinner is a no-op.
	s.Hide()
	assert.False(t, s.Visible())
}

func TestLineIndicator(t *testing.T) {
	var buf bytes.Buffer
	l := NewLineIndicator(&buf)
	l.Show("Converting code...")
	l.Hide()
	assert.Equal(t, "Converting code...\ndone\n", buf.String())
}

func TestNewIndicatorCI(t *testing.T) {
	t.Setenv("CI", "true")
	_, ok := NewIndicator(&bytes.Buffer{}).(*LineIndicator)
	assert.True(t, ok)
}

func TestNewIndicatorRedirectedFile(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	f, err := os.CreateTemp(t.TempDir(), "progress")
	require.NoError(t, err)
	defer f.Close()

	_, ok := NewIndicator(f).(*LineIndicator)
	assert.True(t, ok)
}
