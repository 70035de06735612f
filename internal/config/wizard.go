package config

import (
	"fmt"
	"net/url"

	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/repo-convert/internal/explorer"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to repoconvert! Let's point it at a backend.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Backend URL.
	serverPrompt := promptui.Prompt{
		Label:    "Backend URL",
		Default:  cfg.ServerURL,
		Validate: validateServerURL,
	}
	serverURL, err := serverPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server url: %w", err)
	}
	cfg.ServerURL = serverURL

	// 2. Session token.
	tokenPrompt := promptui.Prompt{
		Label: "Session token (access_token cookie, blank to sign in later)",
		Mask:  '*',
	}
	token, err := tokenPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}
	cfg.AccessToken = token

	// 3. Default conversion target.
	langPrompt := promptui.Select{
		Label: "Default target language",
		Items: explorer.TargetLanguages,
	}
	_, lang, err := langPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("target language: %w", err)
	}
	cfg.TargetLanguage = lang

	// 4. Browser for sign-in.
	browserPrompt := promptui.Select{
		Label: "Open the browser when sign-in is required",
		Items: []string{"yes", "no"},
	}
	idx, _, err := browserPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("open browser: %w", err)
	}
	cfg.OpenBrowser = idx == 0

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validateServerURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("enter an absolute URL such as http://localhost:8000")
	}
	return nil
}
