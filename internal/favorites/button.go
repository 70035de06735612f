package favorites

import (
	"encoding/json"
	"sync"
)

// Button is a favorite toggle bound to one repository.
type Button struct {
	RepoID   string
	RepoData json.RawMessage

	mu     sync.Mutex
	active bool
}

// NewButton creates an inactive button. repoData is the opaque repository
// description sent along when the repository is added.
func NewButton(repoID string, repoData json.RawMessage) *Button {
	return &Button{RepoID: repoID, RepoData: repoData}
}

// Active reports whether the repository is currently a favorite.
func (b *Button) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// State snapshots the button.
func (b *Button) State() ButtonState {
	return ButtonState{RepoID: b.RepoID, Active: b.Active()}
}

// ButtonState is the renderable projection of a Button.
type ButtonState struct {
	RepoID string `json:"repo_id"`
	Active bool   `json:"active"`
}

// Class is the CSS class list a web page would render for the button.
func (s ButtonState) Class() string {
	if s.Active {
		return "favorite-btn active"
	}
	return "favorite-btn"
}

// Glyph is the terminal rendering of the button.
func (s ButtonState) Glyph() string {
	if s.Active {
		return "★"
	}
	return "☆"
}
