// Package favorites keeps favorite toggles in step with the favorites
// recorded by the backend and forwards toggle intent to it.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	logger "github.com/sirupsen/logrus"

	"github.com/ziadkadry99/repo-convert/internal/api"
)

// ErrUnknownButton is returned when a toggle names a repository that has
// no button.
var ErrUnknownButton = errors.New("no favorite button for repository")

// Backend is the part of the API client the controller needs.
type Backend interface {
	AuthStatus(ctx context.Context) (*api.AuthStatus, error)
	AddFavorite(ctx context.Context, repoID string, repoData json.RawMessage) error
	RemoveFavorite(ctx context.Context, repoID string) error
	Favorites(ctx context.Context) ([]api.Repository, error)
	SigninURL() string
}

// Navigator sends the user somewhere else, e.g. the sign-in page.
type Navigator interface {
	Navigate(target string)
}

// Outcome describes what a toggle did.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeAdded
	OutcomeRemoved
	OutcomeSigninRequired
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdded:
		return "added"
	case OutcomeRemoved:
		return "removed"
	case OutcomeSigninRequired:
		return "signin required"
	default:
		return "none"
	}
}

// Controller owns a set of favorite buttons.
type Controller struct {
	backend Backend
	nav     Navigator
	log     *logger.Entry

	mu      sync.RWMutex
	buttons []*Button
	byID    map[string]*Button
}

// New creates a controller for the given buttons.
func New(backend Backend, nav Navigator, buttons ...*Button) *Controller {
	c := &Controller{
		backend: backend,
		nav:     nav,
		log:     logger.WithField("component", "favorites"),
		byID:    make(map[string]*Button, len(buttons)),
	}
	for _, b := range buttons {
		c.add(b)
	}
	return c
}

func (c *Controller) add(b *Button) {
	c.buttons = append(c.buttons, b)
	c.byID[b.RepoID] = b
}

// Add registers another button.
func (c *Controller) Add(b *Button) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.add(b)
}

// Button returns the button for repoID, or nil.
func (c *Controller) Button(repoID string) *Button {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byID[repoID]
}

// States projects every button in registration order.
func (c *Controller) States() []ButtonState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ButtonState, 0, len(c.buttons))
	for _, b := range c.buttons {
		out = append(out, b.State())
	}
	return out
}

// Initialize reconciles button state with the server when there is at
// least one button. Failures are logged and otherwise ignored.
func (c *Controller) Initialize(ctx context.Context) {
	c.mu.RLock()
	n := len(c.buttons)
	c.mu.RUnlock()
	if n == 0 {
		return
	}
	if err := c.Reconcile(ctx); err != nil {
		c.log.WithError(err).Error("Error loading favorites")
	}
}

// Reconcile marks each button active iff the server lists its repository
// as a favorite. Nothing changes when the user is signed out or the list
// cannot be fetched.
func (c *Controller) Reconcile(ctx context.Context) error {
	status, err := c.backend.AuthStatus(ctx)
	if err != nil {
		return fmt.Errorf("checking auth: %w", err)
	}
	if !status.Authenticated {
		c.log.Debug("signed out, skipping reconcile")
		return nil
	}

	favs, err := c.backend.Favorites(ctx)
	if err != nil {
		return fmt.Errorf("listing favorites: %w", err)
	}

	ids := make(map[string]struct{}, len(favs))
	for _, f := range favs {
		ids[f.ID] = struct{}{}
	}

	c.mu.RLock()
	buttons := append([]*Button(nil), c.buttons...)
	c.mu.RUnlock()

	for _, b := range buttons {
		_, ok := ids[b.RepoID]
		b.mu.Lock()
		b.active = ok
		b.mu.Unlock()
	}
	c.log.WithField("favorites", len(ids)).Debug("reconciled favorite buttons")
	return nil
}

// Toggle flips the favorite state of repoID on the server and, once the
// server accepted the change, on the button. Signed-out users are sent to
// the sign-in page and nothing is mutated. Toggles of the same button run
// one at a time.
func (c *Controller) Toggle(ctx context.Context, repoID string) (Outcome, error) {
	b := c.Button(repoID)
	if b == nil {
		return OutcomeNone, fmt.Errorf("%w %q", ErrUnknownButton, repoID)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	outcome, err := c.toggle(ctx, b)
	if err != nil {
		c.log.WithError(err).WithField("repo_id", repoID).Error("Error handling favorite")
	}
	return outcome, err
}

// toggle runs with b.mu held.
func (c *Controller) toggle(ctx context.Context, b *Button) (Outcome, error) {
	status, err := c.backend.AuthStatus(ctx)
	if err != nil {
		return OutcomeNone, fmt.Errorf("checking auth: %w", err)
	}
	if !status.Authenticated {
		target := c.backend.SigninURL()
		c.log.WithField("target", target).Info("not signed in, redirecting")
		if c.nav != nil {
			c.nav.Navigate(target)
		}
		return OutcomeSigninRequired, nil
	}

	// The card payload is checked before either branch, so a malformed
	// card can neither be added nor removed.
	if !json.Valid(b.RepoData) {
		return OutcomeNone, fmt.Errorf("repo data for %q is not valid JSON", b.RepoID)
	}

	if b.active {
		if err := c.backend.RemoveFavorite(ctx, b.RepoID); err != nil {
			return OutcomeNone, fmt.Errorf("removing favorite: %w", err)
		}
		b.active = false
		return OutcomeRemoved, nil
	}

	if err := c.backend.AddFavorite(ctx, b.RepoID, b.RepoData); err != nil {
		return OutcomeNone, fmt.Errorf("adding favorite: %w", err)
	}
	b.active = true
	return OutcomeAdded, nil
}
