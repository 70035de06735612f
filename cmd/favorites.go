package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/repo-convert/internal/config"
	"github.com/ziadkadry99/repo-convert/internal/favorites"
)

var favoriteData string

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "Manage favorite repositories",
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your favorite repositories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newClient(cfg)
		if err != nil {
			return err
		}

		repos, err := client.Favorites(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing favorites: %w", err)
		}
		if len(repos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No favorites yet.")
			return nil
		}

		return printRepos(cmd.OutOrStdout(), repos)
	},
}

var favoritesToggleCmd = &cobra.Command{
	Use:   "toggle <repo-id>",
	Short: "Add a repository to your favorites, or remove it",
	Long: `Flips the favorite state of a repository. The current state is read
from the backend first. --data is the JSON repository description stored
with a new favorite (full_name, url, description, language, stars).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		data, err := repoData(args[0], favoriteData)
		if err != nil {
			return err
		}
		ctrl, err := newFavorites(cfg, favorites.NewButton(args[0], data))
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := ctrl.Reconcile(ctx); err != nil {
			return err
		}
		outcome, err := ctrl.Toggle(ctx, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch outcome {
		case favorites.OutcomeSigninRequired:
			fmt.Fprintln(out, "Sign in required. Run `repoconvert auth login` after signing in.")
		default:
			state := ctrl.Button(args[0]).State()
			fmt.Fprintf(out, "%s %s %s\n", state.Glyph(), args[0], outcome)
		}
		return nil
	},
}

var favoritesSyncCmd = &cobra.Command{
	Use:   "sync <repo-id>...",
	Short: "Show which of the given repositories are favorites",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		buttons := make([]*favorites.Button, 0, len(args))
		for _, id := range args {
			buttons = append(buttons, favorites.NewButton(id, nil))
		}
		ctrl, err := newFavorites(cfg, buttons...)
		if err != nil {
			return err
		}

		ctrl.Initialize(cmd.Context())
		for _, s := range ctrl.States() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", s.Glyph(), s.RepoID)
		}
		return nil
	},
}

func init() {
	favoritesToggleCmd.Flags().StringVar(&favoriteData, "data", "", "repository description as JSON")
	favoritesCmd.AddCommand(favoritesListCmd)
	favoritesCmd.AddCommand(favoritesToggleCmd)
	favoritesCmd.AddCommand(favoritesSyncCmd)
	rootCmd.AddCommand(favoritesCmd)
}

func newFavorites(cfg *config.Config, buttons ...*favorites.Button) (*favorites.Controller, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return favorites.New(client, newNavigator(cfg), buttons...), nil
}

// repoData returns raw when given, or a minimal description naming the
// repository.
func repoData(repoID, raw string) (json.RawMessage, error) {
	if raw == "" {
		return json.Marshal(map[string]string{"full_name": repoID})
	}
	if !json.Valid([]byte(raw)) {
		return nil, fmt.Errorf("--data is not valid JSON")
	}
	return json.RawMessage(raw), nil
}
