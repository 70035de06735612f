package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/repo-convert/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize repoconvert configuration with an interactive wizard",
	Long:  `Runs an interactive wizard that asks for the backend URL, session token and default target language, and writes .repoconvert.yml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
