package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/ziadkadry99/repo-convert/internal/api"
	"github.com/ziadkadry99/repo-convert/internal/auth"
	"github.com/ziadkadry99/repo-convert/internal/config"
	"github.com/ziadkadry99/repo-convert/internal/embeddings"
	"github.com/ziadkadry99/repo-convert/internal/llm"
	"github.com/ziadkadry99/repo-convert/internal/sandbox"
	"github.com/ziadkadry99/repo-convert/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
// It also applies the configured log level unless --verbose was given.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `repoconvert init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if !verbose {
		level, _ := logger.ParseLevel(cfg.LogLevel)
		logger.SetLevel(level)
	}
	return cfg, nil
}

// newClient creates a backend client. The session token comes from the
// config file, falling back to the one stored by `repoconvert auth login`.
func newClient(cfg *config.Config) (*api.Client, error) {
	token := cfg.AccessToken
	if token == "" {
		token = auth.SessionToken(cfg.ServerURL)
	}
	return api.NewClient(cfg.ServerURL, token)
}

func newNavigator(cfg *config.Config) auth.BrowserNavigator {
	return auth.BrowserNavigator{Open: cfg.OpenBrowser}
}

// createLLMProviderFromConfig creates the sandbox conversion provider,
// rate limited to sandbox.rpm requests per minute.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	p, err := llm.NewProviderWithKey(string(cfg.Sandbox.Provider), cfg.Sandbox.Model, auth.GetAPIKey("openai"))
	if err != nil {
		return nil, err
	}
	if cfg.Sandbox.RPM > 0 {
		p = llm.NewRateLimitedProvider(p, cfg.Sandbox.RPM)
	}
	return p, nil
}

// createRepoSource serves local checkouts when sandbox.repos_dir is set
// and reads GitHub otherwise.
func createRepoSource(ctx context.Context, cfg *config.Config) sandbox.RepoSource {
	if cfg.Sandbox.ReposDir != "" {
		return sandbox.NewLocalSource(cfg.Sandbox.ReposDir, cfg.Sandbox.MaxFileSize)
	}
	hc := auth.GitHubHTTPClient(ctx, auth.GetAPIKey("github"), 30*time.Second)
	return sandbox.NewGitHubSource(hc, cfg.Sandbox.MaxFileSize)
}

// createEmbedder picks the search embedder matching sandbox.provider: the
// OpenAI embeddings API, or an offline word-hash embedder for echo.
func createEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	switch cfg.Sandbox.Provider {
	case config.ProviderOpenAI:
		key := auth.GetAPIKey("openai")
		if key == "" {
			return nil, fmt.Errorf("no API key for openai; set %s", config.APIKeyEnvVar(config.ProviderOpenAI))
		}
		return embeddings.NewOpenAIEmbedder(key, embeddings.OpenAIModel(cfg.Sandbox.EmbeddingModel)), nil
	default:
		return embeddings.NewHashEmbedder(embeddings.DefaultHashDimensions), nil
	}
}

// createSearcher wires repository search over source. The vector index is
// kept under sandbox.data_dir/vectors, per embedder, so searches build on
// each other across restarts.
func createSearcher(cfg *config.Config, provider llm.Provider, source sandbox.RepoSource) (*sandbox.Searcher, error) {
	embedder, err := createEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(cfg.Sandbox.DataDir, "vectors", embedder.Name())
	index, err := vectordb.NewRepoIndex(embedder, dir)
	if err != nil {
		return nil, err
	}
	extractor := sandbox.NewKeywordExtractor(provider, cfg.Sandbox.SearchModel)
	return sandbox.NewSearcher(extractor, source, index), nil
}
