package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/repo-convert/internal/db"
	"github.com/ziadkadry99/repo-convert/internal/sandbox"
)

var (
	sandboxPort     int
	sandboxAllowAll bool
)

var sandboxCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Run a local backend for development and offline use",
	Long: `Starts a local stand-in for the repo-convert backend. It serves the
auth, favorites, search and conversion endpoints, keeps sessions and
favorites in sqlite under sandbox.data_dir, reads and searches repositories
on GitHub (or sandbox.repos_dir), ranks search hits in a chromem-go vector
index and converts code with the configured provider.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		port := cfg.Sandbox.Port
		if cmd.Flags().Changed("port") {
			port = sandboxPort
		}
		allowAll := cfg.Sandbox.AllowAllCORS || sandboxAllowAll

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		provider, err := createLLMProviderFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("creating LLM provider: %w", err)
		}

		dbPath := filepath.Join(cfg.Sandbox.DataDir, "sandbox.db")
		database, err := db.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		repoSource := createRepoSource(ctx, cfg)
		searcher, err := createSearcher(cfg, provider, repoSource)
		if err != nil {
			return fmt.Errorf("creating search index: %w", err)
		}

		srv := sandbox.New(sandbox.Config{Port: port, AllowAll: allowAll}, database,
			repoSource, sandbox.NewConverter(provider, cfg.Sandbox.Model), searcher)

		go func() {
			<-ctx.Done()
			logger.Info("shutting down sandbox")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		source := "github"
		if cfg.Sandbox.ReposDir != "" {
			source = cfg.Sandbox.ReposDir
		}
		logger.WithFields(logger.Fields{
			"port":     port,
			"database": dbPath,
			"provider": cfg.Sandbox.Provider,
			"source":   source,
		}).Infof("repoconvert sandbox %s starting", Version)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	sandboxCmd.Flags().IntVar(&sandboxPort, "port", 8000, "port to listen on (overrides sandbox.port)")
	sandboxCmd.Flags().BoolVar(&sandboxAllowAll, "allow-all-cors", false, "accept requests from any origin")
	rootCmd.AddCommand(sandboxCmd)
}
