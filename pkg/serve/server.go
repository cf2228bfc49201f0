// Package serve exposes a statute library over HTTP: HTML reading views for
// people and a JSON API for tools.
package serve

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/net/html"

	"github.com/coolbeans/treatise/pkg/library"
	"github.com/coolbeans/treatise/pkg/render"
	"github.com/coolbeans/treatise/pkg/statute"
)

// Store is the part of the library the server reads from.
type Store interface {
	ListEntries() []*library.Entry
	LoadStatute(statuteID string) (*statute.Statute, error)
}

// Server is the HTTP server for a statute library.
type Server struct {
	router   chi.Router
	store    Store
	renderer *render.Renderer
	log      *slog.Logger
}

// NewServer creates and configures the HTTP server.
func NewServer(store Store, log *slog.Logger) *Server {
	s := &Server{
		store:    store,
		renderer: render.New(),
		log:      log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Get("/", s.handleLibraryPage)
	r.Get("/statutes/{statuteID}", s.handleReaderPage)

	r.Route("/api/statutes", func(r chi.Router) {
		r.Get("/", s.handleListStatutes)
		r.Get("/{statuteID}", s.handleGetStatute)
		r.Get("/{statuteID}/sections/{sectionID}", s.handleGetSection)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleLibraryPage(w http.ResponseWriter, r *http.Request) {
	var listings []render.Listing
	for _, entry := range s.readyEntries() {
		listing := render.Listing{
			ID:          entry.ID,
			Title:       entry.Title,
			Description: entry.Description,
			Category:    entry.Category,
		}
		if entry.Stats != nil {
			listing.Sections = entry.Stats.Sections
		}
		listings = append(listings, listing)
	}

	s.writeHTML(w, s.renderer.LibraryPage(listings))
}

func (s *Server) handleReaderPage(w http.ResponseWriter, r *http.Request) {
	st, ok := s.loadStatute(w, chi.URLParam(r, "statuteID"))
	if !ok {
		return
	}

	page, err := s.renderer.ReaderPage(st)
	if err != nil {
		s.log.Error("render failed", "statute", st.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render statute")
		return
	}
	s.writeHTML(w, page)
}

func (s *Server) handleListStatutes(w http.ResponseWriter, r *http.Request) {
	entries := s.store.ListEntries()
	if entries == nil {
		entries = []*library.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"statutes": entries,
		"count":    len(entries),
	})
}

func (s *Server) handleGetStatute(w http.ResponseWriter, r *http.Request) {
	st, ok := s.loadStatute(w, chi.URLParam(r, "statuteID"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleGetSection(w http.ResponseWriter, r *http.Request) {
	st, ok := s.loadStatute(w, chi.URLParam(r, "statuteID"))
	if !ok {
		return
	}

	sectionID := chi.URLParam(r, "sectionID")
	section := st.Section(sectionID)
	if section == nil {
		writeError(w, http.StatusNotFound, "section not found: "+sectionID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"statute": st.ID,
		"chapter": st.ChapterOf(sectionID).Title,
		"section": section,
	})
}

func (s *Server) readyEntries() []*library.Entry {
	var ready []*library.Entry
	for _, entry := range s.store.ListEntries() {
		if entry.Status == library.StatusReady {
			ready = append(ready, entry)
		}
	}
	return ready
}

func (s *Server) loadStatute(w http.ResponseWriter, statuteID string) (*statute.Statute, bool) {
	st, err := s.store.LoadStatute(statuteID)
	if errors.Is(err, library.ErrNotFound) {
		writeError(w, http.StatusNotFound, "statute not found: "+statuteID)
		return nil, false
	}
	if err != nil {
		s.log.Error("load statute failed", "statute", statuteID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load statute")
		return nil, false
	}
	return st, true
}

func (s *Server) writeHTML(w http.ResponseWriter, page *html.Node) {
	var buf bytes.Buffer
	if err := render.Write(&buf, page); err != nil {
		s.log.Error("write page failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
