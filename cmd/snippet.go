package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/repo-convert/internal/api"
	"github.com/ziadkadry99/repo-convert/internal/explorer"
	"github.com/ziadkadry99/repo-convert/internal/progress"
	"github.com/ziadkadry99/repo-convert/internal/walker"
)

var (
	snippetFrom string
	snippetTo   string
	snippetFile string
)

var snippetCmd = &cobra.Command{
	Use:   "snippet",
	Short: "Convert a code snippet read from a file or stdin",
	Long: `Converts a standalone piece of code. The source is read from --file or
stdin. --from defaults to the language detected from the file extension.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var src []byte
		if snippetFile != "" {
			src, err = os.ReadFile(snippetFile)
		} else {
			src, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return fmt.Errorf("reading snippet: %w", err)
		}
		if strings.TrimSpace(string(src)) == "" {
			return fmt.Errorf("snippet is empty")
		}

		from := snippetFrom
		if from == "" && snippetFile != "" {
			if lang := walker.DetectLanguage(snippetFile); lang != walker.UnknownLanguage {
				from = lang
			}
		}
		if from == "" {
			return fmt.Errorf("--from is required when the language cannot be detected")
		}
		to := snippetTo
		if to == "" {
			to = cfg.TargetLanguage
		}

		client, err := newClient(cfg)
		if err != nil {
			return err
		}

		ind := progress.NewIndicator(cmd.ErrOrStderr())
		ind.Show(explorer.MsgConverting)
		resp, err := client.ConvertSnippet(cmd.Context(), api.ConvertSnippetRequest{
			SourceCode:     string(src),
			SourceLanguage: from,
			TargetLanguage: to,
		})
		ind.Hide()
		if err != nil {
			return fmt.Errorf("converting snippet: %w", err)
		}

		fmt.Fprint(cmd.OutOrStdout(), ensureNewline(resp.ConvertedCode))
		return nil
	},
}

func init() {
	snippetCmd.Flags().StringVar(&snippetFrom, "from", "", "source language")
	snippetCmd.Flags().StringVar(&snippetTo, "to", "", "target language (defaults to target_language)")
	snippetCmd.Flags().StringVarP(&snippetFile, "file", "f", "", "read the snippet from a file")
	rootCmd.AddCommand(snippetCmd)
}
