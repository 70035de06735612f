package config

// Config is the top-level repoconvert configuration, corresponding to
// .repoconvert.yml.
type Config struct {
	ServerURL      string        `yaml:"server_url" koanf:"server_url"`
	AccessToken    string        `yaml:"access_token,omitempty" koanf:"access_token"`
	TargetLanguage string        `yaml:"target_language" koanf:"target_language"`
	OpenBrowser    bool          `yaml:"open_browser" koanf:"open_browser"`
	LogLevel       string        `yaml:"log_level" koanf:"log_level"`
	Sandbox        SandboxConfig `yaml:"sandbox" koanf:"sandbox"`
}

// ProviderType identifies the conversion engine used by the sandbox.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderEcho   ProviderType = "echo"
)

// SandboxConfig holds settings for the local backend stand-in.
type SandboxConfig struct {
	Port           int          `yaml:"port" koanf:"port"`
	DataDir        string       `yaml:"data_dir" koanf:"data_dir"`
	ReposDir       string       `yaml:"repos_dir" koanf:"repos_dir"`
	Provider       ProviderType `yaml:"provider" koanf:"provider"`
	Model          string       `yaml:"model" koanf:"model"`
	SearchModel    string       `yaml:"search_model" koanf:"search_model"`       // keyword extraction
	EmbeddingModel string       `yaml:"embedding_model" koanf:"embedding_model"` // openai provider only
	RPM            int          `yaml:"rpm" koanf:"rpm"`
	AllowAllCORS   bool         `yaml:"allow_all_cors" koanf:"allow_all_cors"`
	MaxFileSize    int64        `yaml:"max_file_size" koanf:"max_file_size"`
}
