// Package server exposes the resolved schema cache over HTTP as a pure
// read API. It never touches the descriptor tree: every handler is a
// lookup on the finished, immutable cache, so the server is safe for
// arbitrarily many concurrent requests with no locking.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/untillpro/goutils/logger"

	"github.com/taxonhq/taxon/internal/cache"
)

// Server serves the read API for one compiled schema model.
type Server struct {
	cache  *cache.Cache
	router *mux.Router
}

// New builds a Server over the given cache.
func New(c *cache.Cache) *Server {
	s := &Server{cache: c, router: mux.NewRouter()}
	s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)
	api.HandleFunc("/dictionary", s.handleDictionary).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories/{name}", s.handleCategory).Methods(http.MethodGet)
	api.HandleFunc("/classes", s.handleClasses).Methods(http.MethodGet)
	api.HandleFunc("/classes/{name}", s.handleClass).Methods(http.MethodGet)
	api.HandleFunc("/objects", s.handleObjects).Methods(http.MethodGet)
	api.HandleFunc("/objects/{name}", s.handleObject).Methods(http.MethodGet)
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.cache.Version()})
}

func (s *Server) handleDictionary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Dictionary())
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Categories())
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	detail, ok := s.cache.Category(mux.Vars(r)["name"])
	if !ok {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleClasses lists all classes, or finds one by numeric uid when the
// uid query parameter is present.
func (s *Server) handleClasses(w http.ResponseWriter, r *http.Request) {
	if rawUID := r.URL.Query().Get("uid"); rawUID != "" {
		uid, err := strconv.Atoi(rawUID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "uid must be an integer"})
			return
		}
		cls, ok := s.cache.FindClassByUID(uid)
		if !ok {
			writeNotFound(w)
			return
		}
		writeJSON(w, http.StatusOK, cls)
		return
	}
	writeJSON(w, http.StatusOK, s.cache.Classes())
}

func (s *Server) handleClass(w http.ResponseWriter, r *http.Request) {
	cls, ok := s.cache.Class(mux.Vars(r)["name"])
	if !ok {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, cls)
}

func (s *Server) handleObjects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Objects())
}

func (s *Server) handleObject(w http.ResponseWriter, r *http.Request) {
	obj, ok := s.cache.Object(mux.Vars(r)["name"])
	if !ok {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encoding response:", err)
	}
}

func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
}
