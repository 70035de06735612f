package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/repo-convert/internal/api"
	"github.com/ziadkadry99/repo-convert/internal/auth"
)

var loginDirect bool

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the backend session and API credentials",
	Long: `Store and manage credentials.

Credentials are stored in ~/.repoconvert/credentials.json and used
as a fallback when the config file and environment variables are not set.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the backend and store the session",
	Long: `Opens the backend sign-in page and asks for the access_token cookie it
set. With --direct the sign-in runs in-process, which works for backends
that need no external identity provider, such as the sandbox.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

var authOpenAICmd = &cobra.Command{
	Use:   "openai",
	Short: "Store OpenAI API key used by the sandbox",
	Long: `Store your OpenAI API key for persistent use.

Get your API key at https://platform.openai.com/api-keys`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return storeAPIKey(cmd, "OpenAI API key", func(c *auth.Credentials, key string) {
			c.OpenAI = &auth.APIKeyCredentials{APIKey: key}
		})
	},
}

var authGitHubCmd = &cobra.Command{
	Use:   "github",
	Short: "Store GitHub token used by the sandbox",
	Long: `Store a GitHub token so the sandbox reads repositories with a higher
rate limit and can see private repositories.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return storeAPIKey(cmd, "GitHub token", func(c *auth.Credentials, key string) {
			c.GitHub = &auth.APIKeyCredentials{APIKey: key}
		})
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which credentials are configured",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout [session|openai|github]",
	Short: "Remove stored credentials",
	Long: `Remove stored credentials for one service.

If no service is specified, removes all stored credentials.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthLogout,
}

func init() {
	authLoginCmd.Flags().BoolVar(&loginDirect, "direct", false, "sign in without a browser")
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authOpenAICmd)
	authCmd.AddCommand(authGitHubCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	anon, err := api.NewClient(cfg.ServerURL, "")
	if err != nil {
		return err
	}
	var token string
	if loginDirect {
		if token, err = anon.Signin(ctx); err != nil {
			return fmt.Errorf("signing in: %w", err)
		}
	} else {
		newNavigator(cfg).Navigate(anon.SigninURL())
		if token, err = readLine(cmd.InOrStdin(), out, "access_token cookie: "); err != nil {
			return err
		}
	}

	client, err := api.NewClient(cfg.ServerURL, token)
	if err != nil {
		return err
	}
	fmt.Fprint(out, "Verifying session... ")
	status, err := client.AuthStatus(ctx)
	if err != nil {
		fmt.Fprintln(out, "failed!")
		return fmt.Errorf("session verification failed: %w", err)
	}
	if !status.Authenticated {
		fmt.Fprintln(out, "failed!")
		return fmt.Errorf("the backend does not recognise this session")
	}
	fmt.Fprintln(out, "valid!")

	creds, err := auth.Load()
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}
	creds.Session = &auth.SessionCredentials{ServerURL: cfg.ServerURL, AccessToken: token}
	if err := auth.Save(creds); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}

	name := "unknown user"
	if status.User != nil {
		name = status.User.Name
	}
	fmt.Fprintf(out, "Signed in to %s as %s.\n", cfg.ServerURL, name)
	return nil
}

func storeAPIKey(cmd *cobra.Command, label string, set func(*auth.Credentials, string)) error {
	key, err := readLine(cmd.InOrStdin(), cmd.OutOrStdout(), label+": ")
	if err != nil {
		return err
	}

	creds, err := auth.Load()
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}
	set(creds, key)
	if err := auth.Save(creds); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s stored successfully!\n", label)
	return nil
}

func readLine(in io.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	input, _ := bufio.NewReader(in).ReadString('\n')
	value := strings.TrimSpace(input)
	if value == "" {
		return "", fmt.Errorf("a value is required")
	}
	return value, nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	creds, err := auth.Load()
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}
	out := cmd.OutOrStdout()

	path, _ := auth.CredentialPath()
	fmt.Fprintf(out, "Credentials file: %s\n\n", path)

	fmt.Fprintln(out, "Service      Status")
	fmt.Fprintln(out, "-------      ------")

	if creds.Session != nil && creds.Session.AccessToken != "" {
		fmt.Fprintf(out, "session      signed in (%s)\n", creds.Session.ServerURL)
	} else {
		fmt.Fprintln(out, "session      signed out")
	}

	for _, svc := range []struct{ name, env string }{
		{"openai", "OPENAI_API_KEY"},
		{"github", "GITHUB_TOKEN"},
	} {
		switch {
		case os.Getenv(svc.env) != "":
			fmt.Fprintf(out, "%-12s configured (env var)\n", svc.name)
		case auth.GetAPIKey(svc.name) != "":
			fmt.Fprintf(out, "%-12s configured (stored)\n", svc.name)
		default:
			fmt.Fprintf(out, "%-12s not configured\n", svc.name)
		}
	}
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	creds, err := auth.Load()
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		creds = &auth.Credentials{}
		fmt.Fprintln(out, "All stored credentials removed.")
	} else {
		switch args[0] {
		case "session":
			creds.Session = nil
			fmt.Fprintln(out, "Session removed.")
		case "openai":
			creds.OpenAI = nil
			fmt.Fprintln(out, "OpenAI credentials removed.")
		case "github":
			creds.GitHub = nil
			fmt.Fprintln(out, "GitHub credentials removed.")
		default:
			return fmt.Errorf("unknown service %q (valid: session, openai, github)", args[0])
		}
	}

	return auth.Save(creds)
}
