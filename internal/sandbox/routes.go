package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/repo-convert/internal/api"
	"github.com/ziadkadry99/repo-convert/internal/walker"
)

type ctxKey struct{}

// requireUser rejects requests without a valid session cookie.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.currentUser(r)
		if err != nil {
			s.log.WithError(err).Error("session lookup failed")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if user == nil {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
	})
}

func (s *Server) currentUser(r *http.Request) (*api.User, error) {
	c, err := r.Cookie(api.SessionCookie)
	if err != nil {
		return nil, nil
	}
	return s.sessions.Lookup(r.Context(), c.Value)
}

func userFrom(ctx context.Context) *api.User {
	u, _ := ctx.Value(ctxKey{}).(*api.User)
	return u
}

func (s *Server) handleAuthUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil || user == nil {
		writeJSON(w, http.StatusOK, api.AuthStatus{Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, api.AuthStatus{Authenticated: true, User: user})
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	token, user, err := s.sessions.Create(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Authentication initialization failed: "+err.Error())
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     api.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.log.WithField("user", user.ID).Info("signed in")

	redirect := r.Header.Get("Referer")
	if redirect == "" {
		redirect = "/"
	}
	http.Redirect(w, r, redirect, http.StatusFound)
}

func (s *Server) handleSignout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(api.SessionCookie); err == nil {
		if err := s.sessions.Delete(r.Context(), c.Value); err != nil {
			s.log.WithError(err).Warn("deleting session")
		}
	}
	for _, name := range []string{api.SessionCookie, "refresh_token"} {
		http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1})
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	var req api.AddFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RepoID == "" || len(req.RepoData) == 0 || string(req.RepoData) == "null" {
		writeError(w, http.StatusBadRequest, "Missing required data")
		return
	}
	data, err := ParseRepoData(req.RepoData)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.favorites.Add(r.Context(), userFrom(r.Context()).ID, req.RepoID, data); err != nil {
		s.log.WithError(err).Error("adding favorite")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	repoID, err := url.PathUnescape(chi.URLParam(r, "repoID"))
	if err != nil || repoID == "" {
		writeError(w, http.StatusBadRequest, "invalid repository id")
		return
	}
	if err := s.favorites.Remove(r.Context(), userFrom(r.Context()).ID, repoID); err != nil {
		s.log.WithError(err).Error("removing favorite")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	repos, err := s.favorites.List(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if repos == nil {
		repos = []api.Repository{}
	}
	writeJSON(w, http.StatusOK, repos)
}

func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	var req api.ExploreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RepoURL == "" {
		writeError(w, http.StatusBadRequest, "Missing repository URL")
		return
	}
	ref, err := ParseRepoURL(req.RepoURL)
	if err != nil {
		s.writeSourceError(w, err)
		return
	}

	files, err := s.source.Tree(r.Context(), ref)
	if err != nil {
		s.writeSourceError(w, err)
		return
	}
	if files == nil {
		files = []api.TreeFile{}
	}
	writeJSON(w, http.StatusOK, api.ExploreResponse{RepoURL: ref.URL(), Files: files})
}

func (s *Server) handleFetchFile(w http.ResponseWriter, r *http.Request) {
	var req api.FetchFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RepoURL == "" || req.FilePath == "" {
		writeError(w, http.StatusBadRequest, "Missing repository URL or file path")
		return
	}
	ref, err := ParseRepoURL(req.RepoURL)
	if err != nil {
		s.writeSourceError(w, err)
		return
	}

	content, err := s.source.File(r.Context(), ref, req.FilePath)
	if err != nil {
		s.writeSourceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FetchFileResponse{
		Path:     req.FilePath,
		Content:  string(content),
		Language: walker.DetectLanguage(req.FilePath),
		RepoURL:  req.RepoURL,
	})
}

func (s *Server) handleConvertFile(w http.ResponseWriter, r *http.Request) {
	var req api.ConvertFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RepoURL == "" || req.FilePath == "" || req.SourceLanguage == "" || req.TargetLanguage == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: repo_url, file_path, source_language, or target_language")
		return
	}
	ref, err := ParseRepoURL(req.RepoURL)
	if err != nil {
		s.writeSourceError(w, err)
		return
	}

	content, err := s.source.File(r.Context(), ref, req.FilePath)
	if err != nil {
		s.writeSourceError(w, err)
		return
	}
	converted, err := s.converter.Convert(r.Context(), string(content), req.SourceLanguage, req.TargetLanguage)
	if err != nil {
		s.log.WithError(err).WithField("file", req.FilePath).Error("conversion failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, api.ConvertResponse{
		ConvertedCode:  converted,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		FilePath:       req.FilePath,
	})
}

func (s *Server) handleConvertSnippet(w http.ResponseWriter, r *http.Request) {
	var req api.ConvertSnippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SourceCode == "" || req.SourceLanguage == "" || req.TargetLanguage == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: source_code, source_language, or target_language")
		return
	}

	converted, err := s.converter.Convert(r.Context(), req.SourceCode, req.SourceLanguage, req.TargetLanguage)
	if err != nil {
		s.log.WithError(err).Error("conversion failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, api.ConvertResponse{
		ConvertedCode:  converted,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.searcher == nil {
		writeError(w, http.StatusNotImplemented, "Search is not configured")
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "Missing search query")
		return
	}

	resp, err := s.searcher.Search(r.Context(), q)
	if err != nil {
		s.log.WithError(err).WithField("query", q).Error("search failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeSourceError maps repository source errors onto responses.
func (s *Server) writeSourceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidRepoURL):
		writeError(w, http.StatusInternalServerError, "Invalid GitHub repository URL")
	case errors.Is(err, ErrFileNotFound):
		writeError(w, http.StatusNotFound, "File not found")
	case errors.Is(err, ErrRepoNotFound):
		writeError(w, http.StatusNotFound, "Repository not found")
	case errors.Is(err, ErrFileTooLarge):
		writeError(w, http.StatusInternalServerError, "File too large to convert")
	default:
		s.log.WithError(err).Error("repository source failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
