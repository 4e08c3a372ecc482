package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/bookgest/internal/book"
	"github.com/dgallion1/bookgest/internal/sink"
	"github.com/dgallion1/bookgest/internal/store"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
	maxContextBytes  = 4 << 20
)

// handleListBooks returns manifest records, newest first.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxListLimit)
	}

	recs, err := s.deps.Store.List(r.Context(), limit)
	if err != nil {
		jsonError(w, "failed to list books: "+err.Error(), http.StatusInternalServerError)
		return
	}
	total, err := s.deps.Store.Count(r.Context())
	if err != nil {
		jsonError(w, "failed to count books: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"books": recs, "total": total})
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	rec, err := s.deps.Store.Get(r.Context(), chi.URLParam(r, "bookID"))
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "book not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to read book: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// handleBookChunks streams the book's chunk file as JSON Lines.
func (s *Server) handleBookChunks(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	f, err := s.deps.Sink.OpenChunks(bookID)
	if errors.Is(err, sink.ErrNotFound) {
		jsonError(w, "no chunks for book", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to open chunks: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/x-ndjson")
	if _, err := io.Copy(w, f); err != nil {
		s.log.Warn("stream chunks aborted", "book_id", bookID, "error", err)
	}
}

type contextRequest struct {
	Texts []string `json:"texts"`
}

// handleContext joins retrieved chunk texts into a generation context block.
func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxContextBytes)).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"context": book.ContextBlock(req.Texts)})
}
