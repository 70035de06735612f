package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/repo-convert/internal/api"
	"github.com/ziadkadry99/repo-convert/internal/config"
	"github.com/ziadkadry99/repo-convert/internal/explorer"
	"github.com/ziadkadry99/repo-convert/internal/favorites"
	"github.com/ziadkadry99/repo-convert/internal/progress"
	"github.com/ziadkadry99/repo-convert/internal/tui"
)

var (
	searchInteractive bool
	searchShowGitHub  bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "Find repositories with a natural-language query",
	Long: `Searches repositories through the backend. The backend extracts
keywords and languages from the query, searches GitHub, and ranks the hits
by semantic similarity to the query. Each match shows whether it is one of
your favorites.

With --interactive the results open in a terminal UI where favorites can be
toggled and a repository opened in the explorer.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newClient(cfg)
		if err != nil {
			return err
		}
		query := strings.TrimSpace(strings.Join(args, " "))
		ctx := cmd.Context()

		if searchInteractive {
			newFavs := func(buttons ...*favorites.Button) *favorites.Controller {
				return favorites.New(client, newNavigator(cfg), buttons...)
			}
			repoURL, err := tui.RunSearch(ctx, client, newFavs, query)
			if err != nil || repoURL == "" {
				return err
			}
			return tui.Run(ctx, explorer.New(client, nil), cfg.TargetLanguage, repoURL)
		}

		if query == "" {
			return errors.New("a search query is required")
		}

		ind := progress.NewIndicator(cmd.ErrOrStderr())
		ind.Show("Searching repositories...")
		resp, err := client.Search(ctx, query)
		ind.Hide()
		if err != nil {
			return fmt.Errorf("searching: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(resp.Keywords) > 0 || len(resp.Languages) > 0 {
			fmt.Fprintf(out, "Keywords: %s", strings.Join(resp.Keywords, ", "))
			if len(resp.Languages) > 0 {
				fmt.Fprintf(out, "  Languages: %s", strings.Join(resp.Languages, ", "))
			}
			fmt.Fprintln(out)
		}
		if len(resp.Matches) == 0 {
			fmt.Fprintln(out, "No repositories found.")
			return nil
		}

		ctrl := searchFavorites(cfg, client, resp.Matches)
		ctrl.Initialize(ctx)
		if err := printMatches(out, ctrl, resp.Matches); err != nil {
			return err
		}

		if searchShowGitHub && len(resp.GitHubResults) > 0 {
			fmt.Fprintln(out, "\nGitHub results:")
			return printRepos(out, resp.GitHubResults)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().BoolVarP(&searchInteractive, "interactive", "i", false, "browse the results in a terminal UI")
	searchCmd.Flags().BoolVar(&searchShowGitHub, "github", false, "also list the raw GitHub hits")
	rootCmd.AddCommand(searchCmd)
}

// searchFavorites creates one favorite button per match.
func searchFavorites(cfg *config.Config, client *api.Client, matches []api.SearchMatch) *favorites.Controller {
	buttons := make([]*favorites.Button, 0, len(matches))
	for _, m := range matches {
		buttons = append(buttons, favorites.NewButton(m.ID, m.Card()))
	}
	return favorites.New(client, newNavigator(cfg), buttons...)
}

func printMatches(out io.Writer, ctrl *favorites.Controller, matches []api.SearchMatch) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tNAME\tLANGUAGE\tSTARS\tSIMILARITY\tURL")
	for _, m := range matches {
		glyph := "☆"
		if b := ctrl.Button(m.ID); b != nil {
			glyph = b.State().Glyph()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.3f\t%s\n",
			glyph, m.ID, m.FullName, orDash(m.Language), m.StargazersCount, m.Similarity, m.HTMLURL)
	}
	return w.Flush()
}

func printRepos(out io.Writer, repos []api.Repository) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tLANGUAGE\tSTARS\tURL")
	for _, r := range repos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", r.ID, r.FullName, orDash(r.Language), r.StargazersCount, r.HTMLURL)
	}
	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
