package sandbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ziadkadry99/repo-convert/internal/api"
	"github.com/ziadkadry99/repo-convert/internal/db"
)

// RepoData is the repository card payload sent with a favorite.
type RepoData = api.RepoCard

// ParseRepoData decodes the repo_data object of an add request.
func ParseRepoData(raw json.RawMessage) (RepoData, error) {
	var d RepoData
	if err := json.Unmarshal(raw, &d); err != nil {
		return RepoData{}, fmt.Errorf("decoding repo_data: %w", err)
	}
	return d, nil
}

// FavoriteStore persists favorites per user.
type FavoriteStore struct {
	db *db.DB
}

// NewFavoriteStore creates a favorites store.
func NewFavoriteStore(database *db.DB) *FavoriteStore {
	return &FavoriteStore{db: database}
}

// Add stores a favorite. Adding the same repository twice refreshes its
// card data.
func (s *FavoriteStore) Add(ctx context.Context, userID, repoID string, d RepoData) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO favorites (user_id, repo_id, repo_full_name, repo_url, repo_description, repo_language, repo_stars)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, repo_id) DO UPDATE SET
		   repo_full_name = excluded.repo_full_name,
		   repo_url = excluded.repo_url,
		   repo_description = excluded.repo_description,
		   repo_language = excluded.repo_language,
		   repo_stars = excluded.repo_stars`,
		userID, repoID, d.FullName, d.URL, d.Description, d.Language, d.Stars,
	)
	if err != nil {
		return fmt.Errorf("inserting favorite: %w", err)
	}
	return nil
}

// Remove deletes a favorite. Removing a missing favorite is not an error.
func (s *FavoriteStore) Remove(ctx context.Context, userID, repoID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND repo_id = ?`, userID, repoID,
	); err != nil {
		return fmt.Errorf("deleting favorite: %w", err)
	}
	return nil
}

// List returns the user's favorites, oldest first.
func (s *FavoriteStore) List(ctx context.Context, userID string) ([]api.Repository, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT repo_id, repo_full_name, repo_url, repo_description, repo_language, repo_stars
		 FROM favorites WHERE user_id = ? ORDER BY created_at ASC, rowid ASC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	defer rows.Close()

	var repos []api.Repository
	for rows.Next() {
		var r api.Repository
		if err := rows.Scan(&r.ID, &r.FullName, &r.HTMLURL, &r.Description, &r.Language, &r.StargazersCount); err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}
		repos = append(repos, r)
	}
	return repos, rows.Err()
}
