/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package server exposes playground sessions over HTTP: package
// management, project file edits, preview builds and the preview page
// itself, plus module resolution for an external type checker.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bennypowers.dev/scatola/bundle"
	"bennypowers.dev/scatola/internal/logging"
	"bennypowers.dev/scatola/playground"
	"bennypowers.dev/scatola/preview"
	"bennypowers.dev/scatola/vfs"
)

// Factory creates the session behind a new session id.
type Factory func(ctx context.Context) (*playground.Session, error)

// Server routes HTTP requests to sessions.
type Server struct {
	sessions *Sessions
	factory  Factory
	logger   logging.Logger
}

// New creates a Server whose sessions come from factory.
func New(factory Factory) *Server {
	return &Server{
		sessions: NewSessions(DefaultTTL),
		factory:  factory,
	}
}

// WithSessions returns a new Server using sessions.
func (s *Server) WithSessions(sessions *Sessions) *Server {
	c := *s
	c.sessions = sessions
	return &c
}

// WithLogger returns a new Server with the specified logger.
func (s *Server) WithLogger(logger logging.Logger) *Server {
	c := *s
	c.logger = logger
	return &c
}

// Sessions returns the session table.
func (s *Server) Sessions() *Sessions {
	return s.sessions
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/sessions", s.createSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Use(s.withSession)
		r.Delete("/", s.deleteSession)
		r.Get("/packages", s.listPackages)
		r.Post("/packages", s.addPackage)
		r.Delete("/packages/*", s.removePackage)
		r.Get("/files", s.listFiles)
		r.Post("/files", s.addFile)
		r.Put("/files", s.updateFile)
		r.Post("/preview", s.buildPreview)
		r.Get("/preview", s.previewDocument)
		r.Post("/resolve", s.resolve)
	})
	return r
}

type sessionKey struct{}

func sessionFrom(r *http.Request) *playground.Session {
	return r.Context().Value(sessionKey{}).(*playground.Session)
}

func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.logger == nil {
			next.ServeHTTP(w, r)
			return
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("%s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}

type sessionResponse struct {
	ID       string            `json:"id"`
	Packages map[string]string `json:"packages"`
	Files    vfs.Snapshot      `json:"files"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.factory(r.Context())
	if err != nil {
		if s.logger != nil {
			s.logger.Warning("Creating session: %v", err)
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	id := s.sessions.Add(sess)
	writeJSON(w, http.StatusCreated, sessionResponse{
		ID:       id,
		Packages: sess.ListPackages(),
		Files:    sess.Files(),
	})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listPackages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r).ListPackages())
}

type addPackageRequest struct {
	Package string `json:"package"`
}

type addPackageResponse struct {
	Added    bool              `json:"added"`
	Packages map[string]string `json:"packages"`
}

func (s *Server) addPackage(w http.ResponseWriter, r *http.Request) {
	var req addPackageRequest
	if !decode(w, r, &req) {
		return
	}
	sess := sessionFrom(r)
	added, err := sess.AddPackage(r.Context(), req.Package)
	switch {
	case errors.Is(err, playground.ErrEmptySpecifier):
		writeError(w, http.StatusBadRequest, err)
	case err != nil:
		writeError(w, http.StatusBadGateway, err)
	default:
		writeJSON(w, http.StatusOK, addPackageResponse{Added: added, Packages: sess.ListPackages()})
	}
}

func (s *Server) removePackage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	if !sessionFrom(r).RemovePackage(name) {
		writeError(w, http.StatusNotFound, errors.New("package not registered: "+name))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listFiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r).Files())
}

type addFileRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

func (s *Server) addFile(w http.ResponseWriter, r *http.Request) {
	var req addFileRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, errors.New("file name is required"))
		return
	}
	sess := sessionFrom(r)
	if err := sess.AddFile(req.Name, req.Content); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, vfs.ErrFileExists) {
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess.Files())
}

type updateFileRequest struct {
	URI     string `json:"uri"`
	Content string `json:"content"`
}

func (s *Server) updateFile(w http.ResponseWriter, r *http.Request) {
	var req updateFileRequest
	if !decode(w, r, &req) {
		return
	}
	if err := sessionFrom(r).UpdateFileContent(req.URI, req.Content); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, vfs.ErrFileNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type buildErrorResponse struct {
	Error    string           `json:"error"`
	Messages []bundle.Message `json:"messages"`
}

func (s *Server) buildPreview(w http.ResponseWriter, r *http.Request) {
	result, err := sessionFrom(r).BuildPreview(r.Context())
	var buildErr *bundle.BuildError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, result)
	case errors.As(err, &buildErr):
		writeJSON(w, http.StatusUnprocessableEntity, buildErrorResponse{Error: err.Error(), Messages: buildErr.Messages})
	case errors.Is(err, preview.ErrSuperseded):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) previewDocument(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := sessionFrom(r).Surface().Render(w); err != nil && s.logger != nil {
		s.logger.Warning("Rendering preview: %v", err)
	}
}

type resolveRequest struct {
	Names          []string `json:"names"`
	ContainingFile string   `json:"containingFile"`
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"modules": sessionFrom(r).ResolveModuleNames(req.Names, req.ContainingFile),
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
