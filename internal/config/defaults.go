package config

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = ".repoconvert.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ServerURL:      "http://localhost:8000",
		TargetLanguage: "python",
		OpenBrowser:    true,
		LogLevel:       "info",
		Sandbox: SandboxConfig{
			Port:           8000,
			DataDir:        ".repoconvert",
			Provider:       ProviderEcho,
			Model:          "gpt-4o",
			SearchModel:    "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			RPM:            60,
			MaxFileSize:    1_000_000,
		},
	}
}
