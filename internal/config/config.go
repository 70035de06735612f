package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	logger "github.com/sirupsen/logrus"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/repo-convert/internal/explorer"
)

// EnvPrefix prefixes environment overrides. Nested keys use a double
// underscore: REPOCONVERT_SANDBOX__PORT -> sandbox.port.
const EnvPrefix = "REPOCONVERT_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (REPOCONVERT_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validEmbeddingModels = map[string]bool{
	"text-embedding-3-small": true,
	"text-embedding-3-large": true,
}

// validProviders is the set of recognized sandbox provider values.
var validProviders = map[ProviderType]bool{
	ProviderOpenAI: true,
	ProviderEcho:   true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url is required")
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server_url %q: must be an absolute http(s) URL", c.ServerURL)
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	if !explorer.IsTargetLanguage(c.TargetLanguage) {
		return fmt.Errorf("invalid target_language %q: must be one of %s",
			c.TargetLanguage, strings.Join(explorer.TargetLanguages, ", "))
	}

	return c.Sandbox.Validate()
}

// Validate checks the sandbox section.
func (s SandboxConfig) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("sandbox.port %d out of range", s.Port)
	}
	if !validProviders[s.Provider] {
		return fmt.Errorf("invalid sandbox.provider %q: must be one of openai, echo", s.Provider)
	}
	if s.Provider == ProviderOpenAI {
		if s.Model == "" || s.SearchModel == "" {
			return fmt.Errorf("sandbox.model and sandbox.search_model are required for the openai provider")
		}
		if !validEmbeddingModels[s.EmbeddingModel] {
			return fmt.Errorf("invalid sandbox.embedding_model %q: must be text-embedding-3-small or text-embedding-3-large", s.EmbeddingModel)
		}
	}
	if s.DataDir == "" {
		return fmt.Errorf("sandbox.data_dir is required")
	}
	if s.RPM < 0 {
		return fmt.Errorf("sandbox.rpm must be non-negative")
	}
	if s.MaxFileSize <= 0 {
		return fmt.Errorf("sandbox.max_file_size must be positive")
	}
	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}

// GitHubTokenEnvVar names the token used by the sandbox for GitHub reads.
const GitHubTokenEnvVar = "GITHUB_TOKEN"
