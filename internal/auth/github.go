package auth

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// GitHubHTTPClient returns a client that authenticates GitHub API calls
// with token. An empty token yields an anonymous client. timeout of zero
// means no client timeout.
func GitHubHTTPClient(ctx context.Context, token string, timeout time.Duration) *http.Client {
	if token == "" {
		return &http.Client{Timeout: timeout}
	}
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	hc.Timeout = timeout
	return hc
}
