package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/repo-convert/internal/explorer"
	"github.com/ziadkadry99/repo-convert/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [repo-url]",
	Short: "Explore and convert repositories in an interactive terminal UI",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newClient(cfg)
		if err != nil {
			return err
		}

		repoURL := ""
		if len(args) == 1 {
			repoURL = args[0]
		}
		// The screen draws its own spinner, so no indicator here.
		return tui.Run(cmd.Context(), explorer.New(client, nil), cfg.TargetLanguage, repoURL)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
