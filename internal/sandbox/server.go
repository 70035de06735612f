// Package sandbox is a local stand-in for the repo-convert backend. It
// serves the auth, favorites, search and conversion endpoints from sqlite,
// a repository source, a vector index and an LLM provider.
package sandbox

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	logger "github.com/sirupsen/logrus"

	"github.com/ziadkadry99/repo-convert/internal/api"
	"github.com/ziadkadry99/repo-convert/internal/db"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server serves the backend API.
type Server struct {
	cfg        Config
	db         *db.DB
	sessions   *SessionStore
	favorites  *FavoriteStore
	source     RepoSource
	converter  *Converter
	searcher   *Searcher
	router     chi.Router
	httpServer *http.Server
	log        *logger.Entry
}

// New creates a server. source and converter back the repo-convert
// endpoints; searcher backs /search and may be nil.
func New(cfg Config, database *db.DB, source RepoSource, converter *Converter, searcher *Searcher) *Server {
	s := &Server{
		cfg:       cfg,
		db:        database,
		sessions:  NewSessionStore(database),
		favorites: NewFavoriteStore(database),
		source:    source,
		converter: converter,
		searcher:  searcher,
		log:       logger.WithField("component", "sandbox"),
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"service": "repoconvert sandbox"})
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get(api.PathAuthUser, s.handleAuthUser)
	r.Get(api.PathSignin, s.handleSignin)
	r.Get(api.PathSignout, s.handleSignout)
	r.Get(api.PathSearch, s.handleSearch)

	r.Group(func(r chi.Router) {
		r.Use(s.requireUser)

		r.Post(api.PathFavoritesAdd, s.handleAddFavorite)
		r.Delete(api.PathFavoritesDel+"{repoID}", s.handleRemoveFavorite)
		r.Get(api.PathFavoritesList, s.handleListFavorites)

		r.Post(api.PathExplore, s.handleExplore)
		r.Post(api.PathFetchFile, s.handleFetchFile)
		r.Post(api.PathConvertFile, s.handleConvertFile)
		r.Post(api.PathConvertSnippet, s.handleConvertSnippet)
	})

	return r
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Sessions returns the session store.
func (s *Server) Sessions() *SessionStore { return s.sessions }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.log.Infof("sandbox listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
