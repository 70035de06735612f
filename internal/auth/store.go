package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CredentialsEnvVar overrides the credentials file location.
const CredentialsEnvVar = "REPOCONVERT_CREDENTIALS"

// SessionCredentials is a backend session captured after sign-in.
type SessionCredentials struct {
	ServerURL   string `json:"server_url"`
	AccessToken string `json:"access_token"`
}

// APIKeyCredentials stores an API key or token for a service.
type APIKeyCredentials struct {
	APIKey string `json:"api_key,omitempty"`
}

// Credentials holds everything repoconvert keeps outside the config file.
type Credentials struct {
	Session *SessionCredentials `json:"session,omitempty"`
	OpenAI  *APIKeyCredentials  `json:"openai,omitempty"`
	GitHub  *APIKeyCredentials  `json:"github,omitempty"`
}

// CredentialPath returns the path to the credentials file
// (~/.repoconvert/credentials.json unless overridden).
func CredentialPath() (string, error) {
	if p := os.Getenv(CredentialsEnvVar); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".repoconvert", "credentials.json"), nil
}

// Load reads the credentials file. A missing file yields empty credentials.
func Load() (*Credentials, error) {
	path, err := CredentialPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Credentials{}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	return &creds, nil
}

// Save writes the credentials file with owner-only permissions.
func Save(creds *Credentials) error {
	path, err := CredentialPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating credentials directory: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling credentials: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}

// GetAPIKey returns the key for "openai" or "github". The environment
// variable wins over stored credentials.
func GetAPIKey(service string) string {
	switch service {
	case "openai":
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			return key
		}
	case "github":
		if key := os.Getenv("GITHUB_TOKEN"); key != "" {
			return key
		}
	}

	creds, err := Load()
	if err != nil {
		return ""
	}

	switch service {
	case "openai":
		if creds.OpenAI != nil {
			return creds.OpenAI.APIKey
		}
	case "github":
		if creds.GitHub != nil {
			return creds.GitHub.APIKey
		}
	}
	return ""
}

// SessionToken returns the stored session token for serverURL, or "".
func SessionToken(serverURL string) string {
	creds, err := Load()
	if err != nil || creds.Session == nil {
		return ""
	}
	if normalize(creds.Session.ServerURL) != normalize(serverURL) {
		return ""
	}
	return creds.Session.AccessToken
}

func normalize(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}
