package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/repo-convert/internal/config"
	"github.com/ziadkadry99/repo-convert/internal/explorer"
	"github.com/ziadkadry99/repo-convert/internal/progress"
)

var convertTarget string

var exploreCmd = &cobra.Command{
	Use:   "explore <repo-url>",
	Short: "List the files of a GitHub repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctrl, err := newExplorer(cmd, cfg)
		if err != nil {
			return err
		}
		if err := runExplore(cmd.Context(), ctrl, args[0]); err != nil {
			return err
		}

		view := ctrl.View()
		out := cmd.OutOrStdout()
		if view.Placeholder != "" {
			fmt.Fprintln(out, view.Placeholder)
			return nil
		}
		for _, f := range view.Files {
			fmt.Fprintln(out, f.Path)
		}
		return nil
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <repo-url> <path>",
	Short: "Print a file from a GitHub repository",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctrl, err := newExplorer(cmd, cfg)
		if err != nil {
			return err
		}
		if err := runFetch(cmd.Context(), ctrl, args[0], args[1]); err != nil {
			return err
		}

		view := ctrl.View()
		fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", view.SourceLabel)
		fmt.Fprint(cmd.OutOrStdout(), ensureNewline(view.Source))
		return nil
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert <repo-url> <path>",
	Short: "Convert a repository file to another language",
	Long: `Fetches a file from a GitHub repository and converts it through the
backend. Without --to the target language is picked interactively, or
taken from target_language when stdin is not a terminal.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		target := convertTarget
		if target == "" {
			target, err = pickTarget(cmd.InOrStdin(), cfg.TargetLanguage)
			if err != nil {
				return err
			}
		}
		if !explorer.IsTargetLanguage(target) {
			return fmt.Errorf("unsupported target language %q", target)
		}

		ctrl, err := newExplorer(cmd, cfg)
		if err != nil {
			return err
		}
		if err := runFetch(cmd.Context(), ctrl, args[0], args[1]); err != nil {
			return err
		}
		if err := ctrl.Convert(cmd.Context(), target); err != nil {
			return viewError(ctrl, err)
		}

		view := ctrl.View()
		fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", view.TargetLabel)
		fmt.Fprint(cmd.OutOrStdout(), ensureNewline(view.Converted))
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertTarget, "to", "", "target language")
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(convertCmd)
}

func newExplorer(cmd *cobra.Command, cfg *config.Config) (*explorer.Controller, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return explorer.New(client, progress.NewIndicator(cmd.ErrOrStderr())), nil
}

func runExplore(ctx context.Context, ctrl *explorer.Controller, repoURL string) error {
	if err := ctrl.Explore(ctx, repoURL); err != nil {
		return viewError(ctrl, err)
	}
	return nil
}

func runFetch(ctx context.Context, ctrl *explorer.Controller, repoURL, path string) error {
	if err := runExplore(ctx, ctrl, repoURL); err != nil {
		return err
	}
	if err := ctrl.FetchFile(ctx, path); err != nil {
		return viewError(ctrl, err)
	}
	return nil
}

// viewError prefers the message the explorer surfaced to its user.
func viewError(ctrl *explorer.Controller, err error) error {
	if msg := ctrl.View().Error; msg != "" {
		return errors.New(msg)
	}
	return err
}

// pickTarget asks for a target language on an interactive terminal and
// falls back to def otherwise.
func pickTarget(in io.Reader, def string) (string, error) {
	f, ok := in.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return def, nil
	}

	cursor := 0
	for i, l := range explorer.TargetLanguages {
		if l == def {
			cursor = i
		}
	}
	prompt := promptui.Select{
		Label:     "Target language",
		Items:     explorer.TargetLanguages,
		CursorPos: cursor,
		Size:      len(explorer.TargetLanguages),
	}
	_, lang, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("target language: %w", err)
	}
	return lang, nil
}

func ensureNewline(s string) string {
	if s == "" || s[len(s)-1] == '\n' {
		return s
	}
	return s + "\n"
}
