package sandbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/repo-convert/internal/api"
	"github.com/ziadkadry99/repo-convert/internal/db"
)

// SessionTTL matches the lifetime of the access_token cookie.
const SessionTTL = 24 * time.Hour

// SessionStore manages sandbox users and their sessions.
type SessionStore struct {
	db  *db.DB
	now func() time.Time
}

// NewSessionStore creates a session store.
func NewSessionStore(database *db.DB) *SessionStore {
	return &SessionStore{db: database, now: time.Now}
}

// Create signs in the local sandbox user and returns a new session token.
// Every sign-in shares the same user so favorites survive sign-out.
func (s *SessionStore) Create(ctx context.Context) (string, *api.User, error) {
	user := &api.User{ID: "sandbox-user", Email: "sandbox@localhost", Name: "Sandbox User"}
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (id, email, name) VALUES (?, ?, ?)`,
		user.ID, user.Email, user.Name,
	); err != nil {
		return "", nil, fmt.Errorf("inserting user: %w", err)
	}

	token := uuid.New().String()
	now := s.now().UTC()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		token, user.ID, now, now.Add(SessionTTL),
	); err != nil {
		return "", nil, fmt.Errorf("inserting session: %w", err)
	}
	return token, user, nil
}

// Lookup returns the user owning token, or nil when the token is unknown
// or expired.
func (s *SessionStore) Lookup(ctx context.Context, token string) (*api.User, error) {
	if token == "" {
		return nil, nil
	}
	var u api.User
	var expires time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT u.id, u.email, u.name, s.expires_at
		 FROM sessions s JOIN users u ON u.id = s.user_id
		 WHERE s.token = ?`, token,
	).Scan(&u.ID, &u.Email, &u.Name, &expires)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up session: %w", err)
	}
	if !s.now().Before(expires) {
		return nil, nil
	}
	return &u, nil
}

// Delete removes a session. Unknown tokens are ignored.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
