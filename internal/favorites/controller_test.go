package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/repo-convert/internal/api"
)

// fakeBackend records calls and serves canned answers.
type fakeBackend struct {
	mu            sync.Mutex
	authenticated bool
	authErr       error
	favorites     []api.Repository
	listErr       error
	addErr        error
	removeErr     error
	added         []api.AddFavoriteRequest
	removed       []string
}

func (f *fakeBackend) AuthStatus(ctx context.Context) (*api.AuthStatus, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return &api.AuthStatus{Authenticated: f.authenticated}, nil
}

func (f *fakeBackend) AddFavorite(ctx context.Context, repoID string, repoData json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, api.AddFavoriteRequest{RepoID: repoID, RepoData: repoData})
	return f.addErr
}

func (f *fakeBackend) RemoveFavorite(ctx context.Context, repoID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, repoID)
	return f.removeErr
}

func (f *fakeBackend) Favorites(ctx context.Context) ([]api.Repository, error) {
	return f.favorites, f.listErr
}

func (f *fakeBackend) SigninURL() string { return "http://backend.test/auth/signin" }

type recordingNav struct{ targets []string }

func (n *recordingNav) Navigate(target string) { n.targets = append(n.targets, target) }

func buttons(ids ...string) []*Button {
	out := make([]*Button, 0, len(ids))
	for _, id := range ids {
		out = append(out, NewButton(id, json.RawMessage(`{"full_name":"owner/`+id+`"}`)))
	}
	return out
}

func TestReconcile_ActiveIffListed(t *testing.T) {
	be := &fakeBackend{
		authenticated: true,
		favorites:     []api.Repository{{ID: "1"}, {ID: "3"}, {ID: "99"}},
	}
	bs := buttons("1", "2", "3")
	// A stale active state must be cleared by reconciliation.
	bs[1].active = true
	c := New(be, nil, bs...)

	require.NoError(t, c.Reconcile(context.Background()))

	assert.Equal(t, []ButtonState{
		{RepoID: "1", Active: true},
		{RepoID: "2", Active: false},
		{RepoID: "3", Active: true},
	}, c.States())
}

func TestReconcile_SignedOutLeavesButtonsInactive(t *testing.T) {
	be := &fakeBackend{favorites: []api.Repository{{ID: "1"}}}
	c := New(be, nil, buttons("1")...)

	require.NoError(t, c.Reconcile(context.Background()))
	assert.False(t, c.Button("1").Active())
}

func TestReconcile_ListFailureChangesNothing(t *testing.T) {
	be := &fakeBackend{
		authenticated: true,
		listErr:       &api.StatusError{Code: 500},
	}
	bs := buttons("1", "2")
	bs[0].active = true
	c := New(be, nil, bs...)

	err := c.Reconcile(context.Background())
	require.Error(t, err)
	assert.True(t, c.Button("1").Active())
	assert.False(t, c.Button("2").Active())
}

func TestInitialize_SwallowsErrors(t *testing.T) {
	be := &fakeBackend{authErr: errors.New("connection refused")}
	c := New(be, nil, buttons("1")...)

	assert.NotPanics(t, func() { c.Initialize(context.Background()) })
	assert.False(t, c.Button("1").Active())
}

func TestInitialize_NoButtonsNoRequests(t *testing.T) {
	be := &fakeBackend{authErr: errors.New("must not be called")}
	c := New(be, nil)
	c.Initialize(context.Background())
	assert.Empty(t, c.States())
}

func TestToggle_SignedOutNavigatesWithoutMutation(t *testing.T) {
	for _, active := range []bool{false, true} {
		be := &fakeBackend{}
		nav := &recordingNav{}
		bs := buttons("7")
		bs[0].active = active
		c := New(be, nav, bs...)

		outcome, err := c.Toggle(context.Background(), "7")
		require.NoError(t, err)
		assert.Equal(t, OutcomeSigninRequired, outcome)
		assert.Equal(t, []string{"http://backend.test/auth/signin"}, nav.targets)
		assert.Empty(t, be.added)
		assert.Empty(t, be.removed)
		assert.Equal(t, active, c.Button("7").Active())
	}
}

func TestToggle_ActiveIssuesOneRemove(t *testing.T) {
	be := &fakeBackend{authenticated: true}
	bs := buttons("7")
	bs[0].active = true
	c := New(be, nil, bs...)

	outcome, err := c.Toggle(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRemoved, outcome)
	assert.Equal(t, []string{"7"}, be.removed)
	assert.Empty(t, be.added)
	assert.False(t, c.Button("7").Active())
}

func TestToggle_InactiveAddsWithRepoData(t *testing.T) {
	be := &fakeBackend{authenticated: true}
	c := New(be, nil, buttons("7")...)

	outcome, err := c.Toggle(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAdded, outcome)
	require.Len(t, be.added, 1)
	assert.Equal(t, "7", be.added[0].RepoID)
	assert.JSONEq(t, `{"full_name":"owner/7"}`, string(be.added[0].RepoData))
	assert.True(t, c.Button("7").Active())
}

func TestToggle_FailureKeepsState(t *testing.T) {
	be := &fakeBackend{authenticated: true, addErr: &api.StatusError{Code: 500, Detail: "boom"}}
	c := New(be, nil, buttons("7")...)

	outcome, err := c.Toggle(context.Background(), "7")
	require.Error(t, err)
	assert.Equal(t, OutcomeNone, outcome)
	assert.False(t, c.Button("7").Active())
}

func TestToggle_InvalidRepoData(t *testing.T) {
	be := &fakeBackend{authenticated: true}
	c := New(be, nil, NewButton("7", json.RawMessage(`{broken`)))

	_, err := c.Toggle(context.Background(), "7")
	require.Error(t, err)
	assert.Empty(t, be.added)
}

func TestToggle_InvalidRepoDataBlocksRemove(t *testing.T) {
	be := &fakeBackend{authenticated: true, favorites: []api.Repository{{ID: "7"}}}
	c := New(be, nil, NewButton("7", json.RawMessage(`{broken`)))
	require.NoError(t, c.Reconcile(context.Background()))
	require.True(t, c.Button("7").Active())

	outcome, err := c.Toggle(context.Background(), "7")
	require.Error(t, err)
	assert.Equal(t, OutcomeNone, outcome)
	assert.Empty(t, be.removed)
	assert.True(t, c.Button("7").Active())
}

func TestToggle_UnknownButton(t *testing.T) {
	c := New(&fakeBackend{authenticated: true}, nil)
	_, err := c.Toggle(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUnknownButton)
}

func TestToggle_ConcurrentClicksSerialise(t *testing.T) {
	be := &fakeBackend{authenticated: true}
	c := New(be, nil, buttons("7")...)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Toggle(context.Background(), "7")
		}()
	}
	wg.Wait()

	// Four serialised toggles alternate add/remove and end inactive.
	assert.Len(t, be.added, 2)
	assert.Len(t, be.removed, 2)
	assert.False(t, c.Button("7").Active())
}

func TestButtonStateProjection(t *testing.T) {
	assert.Equal(t, "favorite-btn active", ButtonState{Active: true}.Class())
	assert.Equal(t, "favorite-btn", ButtonState{}.Class())
	assert.Equal(t, "★", ButtonState{Active: true}.Glyph())
}
