package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
)

// Client talks to the repo-convert backend. It keeps the session cookie in
// a jar so sign-in performed through the client sticks for later calls.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient bases the client on hc. hc itself is not modified: the
// client works on a copy, which gets a fresh jar when hc has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		cp := *hc
		c.http = &cp
	}
}

// NewClient creates a client for the backend rooted at baseURL. When
// accessToken is non-empty it is installed as the session cookie.
func NewClient(baseURL, accessToken string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute", baseURL)
	}

	c := &Client{baseURL: u, http: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("creating cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	if accessToken != "" {
		c.http.Jar.SetCookies(u, []*http.Cookie{{Name: SessionCookie, Value: accessToken, Path: "/"}})
	}
	return c, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// URL resolves an endpoint path against the backend root.
func (c *Client) URL(path string) string {
	return c.baseURL.String() + path
}

// SigninURL is the navigation target for unauthenticated users.
func (c *Client) SigninURL() string { return c.URL(PathSignin) }

// Signin walks the sign-in redirect chain with this client and returns the
// session token the backend set. It only works for backends that sign in
// without an external identity provider, such as the sandbox.
func (c *Client) Signin(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SigninURL(), nil)
	if err != nil {
		return "", fmt.Errorf("building signin request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", PathSignin, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 399 {
		return "", &StatusError{Method: http.MethodGet, Path: PathSignin, Code: resp.StatusCode}
	}
	if token := c.SessionToken(); token != "" {
		return token, nil
	}
	return "", fmt.Errorf("backend did not set the %s cookie", SessionCookie)
}

// SessionToken returns the session cookie currently held for the backend.
func (c *Client) SessionToken() string {
	for _, ck := range c.http.Jar.Cookies(c.baseURL) {
		if ck.Name == SessionCookie {
			return ck.Value
		}
	}
	return ""
}

// AuthStatus queries GET /auth/user.
func (c *Client) AuthStatus(ctx context.Context) (*AuthStatus, error) {
	var out AuthStatus
	if err := c.do(ctx, http.MethodGet, PathAuthUser, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddFavorite records repoID with its opaque description.
func (c *Client) AddFavorite(ctx context.Context, repoID string, repoData json.RawMessage) error {
	return c.do(ctx, http.MethodPost, PathFavoritesAdd, AddFavoriteRequest{RepoID: repoID, RepoData: repoData}, nil)
}

// RemoveFavorite deletes repoID from the signed-in user's favorites.
func (c *Client) RemoveFavorite(ctx context.Context, repoID string) error {
	return c.do(ctx, http.MethodDelete, PathFavoritesDel+url.PathEscape(repoID), nil, nil)
}

// Favorites lists the signed-in user's favorites.
func (c *Client) Favorites(ctx context.Context) ([]Repository, error) {
	var out []Repository
	if err := c.do(ctx, http.MethodGet, PathFavoritesList, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Explore asks the backend for the file tree of repoURL.
func (c *Client) Explore(ctx context.Context, repoURL string) (*ExploreResponse, error) {
	var out ExploreResponse
	if err := c.do(ctx, http.MethodPost, PathExplore, ExploreRequest{RepoURL: repoURL}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchFile retrieves one file of an explored repository.
func (c *Client) FetchFile(ctx context.Context, repoURL, filePath string) (*FetchFileResponse, error) {
	var out FetchFileResponse
	req := FetchFileRequest{RepoURL: repoURL, FilePath: filePath}
	if err := c.do(ctx, http.MethodPost, PathFetchFile, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConvertFile requests a translation of a repository file.
func (c *Client) ConvertFile(ctx context.Context, req ConvertFileRequest) (*ConvertResponse, error) {
	var out ConvertResponse
	if err := c.do(ctx, http.MethodPost, PathConvertFile, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConvertSnippet requests a translation of inline source code.
func (c *Client) ConvertSnippet(ctx context.Context, req ConvertSnippetRequest) (*ConvertResponse, error) {
	var out ConvertResponse
	if err := c.do(ctx, http.MethodPost, PathConvertSnippet, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search runs a repository search for a free-text query.
func (c *Client) Search(ctx context.Context, query string) (*SearchResponse, error) {
	var out SearchResponse
	if err := c.do(ctx, http.MethodGet, PathSearch+"?q="+url.QueryEscape(query), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding %s body: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), body)
	if err != nil {
		return fmt.Errorf("building %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Detail: parseDetail(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
