package api

import "encoding/json"

// Endpoint paths served by the repo-convert backend.
const (
	PathAuthUser       = "/auth/user"
	PathSignin         = "/auth/signin"
	PathSignout        = "/auth/signout"
	PathFavoritesAdd   = "/favorites/add"
	PathFavoritesDel   = "/favorites/remove/"
	PathFavoritesList  = "/api/favorites"
	PathExplore        = "/repo-convert/explore"
	PathFetchFile      = "/repo-convert/fetch-file"
	PathConvertFile    = "/repo-convert/convert"
	PathConvertSnippet = "/convert"
	PathSearch         = "/search"
)

// SessionCookie is the cookie carrying the backend session token.
const SessionCookie = "access_token"

// User describes the signed-in account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthStatus is the response of GET /auth/user.
type AuthStatus struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
}

// Repository is a favorited repository as listed by GET /api/favorites.
type Repository struct {
	ID              string `json:"id"`
	FullName        string `json:"full_name"`
	HTMLURL         string `json:"html_url"`
	Description     string `json:"description"`
	Language        string `json:"language"`
	StargazersCount int    `json:"stargazers_count"`
}

// RepoCard is the repository description stored with a favorite.
type RepoCard struct {
	FullName    string `json:"full_name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       int    `json:"stars"`
}

// Card returns the favorite payload describing r.
func (r Repository) Card() json.RawMessage {
	data, _ := json.Marshal(RepoCard{
		FullName:    r.FullName,
		URL:         r.HTMLURL,
		Description: r.Description,
		Language:    r.Language,
		Stars:       r.StargazersCount,
	})
	return data
}

// AddFavoriteRequest is the body of POST /favorites/add. RepoData is passed
// through untouched.
type AddFavoriteRequest struct {
	RepoID   string          `json:"repo_id"`
	RepoData json.RawMessage `json:"repo_data"`
}

// ExploreRequest is the body of POST /repo-convert/explore.
type ExploreRequest struct {
	RepoURL string `json:"repo_url"`
}

// TreeFile is a single blob in an explored repository. Only Path is
// required; the rest mirrors the GitHub tree entry when available.
type TreeFile struct {
	Path string `json:"path"`
	Type string `json:"type,omitempty"`
	Size int64  `json:"size,omitempty"`
	SHA  string `json:"sha,omitempty"`
}

// ExploreResponse carries the canonical repository reference and its files.
type ExploreResponse struct {
	RepoURL string     `json:"repo_url"`
	Files   []TreeFile `json:"files"`
}

// FetchFileRequest is the body of POST /repo-convert/fetch-file.
type FetchFileRequest struct {
	RepoURL  string `json:"repo_url"`
	FilePath string `json:"file_path"`
}

// FetchFileResponse holds the decoded source and its detected language.
type FetchFileResponse struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Language string `json:"language"`
	RepoURL  string `json:"repo_url"`
}

// ConvertFileRequest is the body of POST /repo-convert/convert.
type ConvertFileRequest struct {
	RepoURL        string `json:"repo_url"`
	FilePath       string `json:"file_path"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

// ConvertSnippetRequest is the body of POST /convert.
type ConvertSnippetRequest struct {
	SourceCode     string `json:"source_code"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

// ConvertResponse is returned by both conversion endpoints.
type ConvertResponse struct {
	ConvertedCode  string `json:"converted_code"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	FilePath       string `json:"file_path,omitempty"`
}

// SearchMatch is a repository ranked by similarity to a search query.
type SearchMatch struct {
	Repository
	Similarity float32 `json:"similarity"`
}

// SearchResponse is returned by GET /search. Matches are ranked by semantic
// similarity; GitHubResults are the raw hits they were drawn from.
type SearchResponse struct {
	Query         string        `json:"query"`
	Keywords      []string      `json:"keywords"`
	Languages     []string      `json:"languages"`
	Matches       []SearchMatch `json:"matches"`
	GitHubResults []Repository  `json:"github_results"`
}
