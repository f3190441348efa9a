// Package handler provides the HTTP handlers for the movies, series and
// collections API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stevemurr/scfiles-backend/catalog"
	"github.com/stevemurr/scfiles-backend/store"
)

const maxBodyBytes = 10 << 20

// Handler holds the server dependencies and registers routes.
type Handler struct {
	catalog *catalog.Catalog
	log     *slog.Logger
	mux     *http.ServeMux
}

// New creates a Handler and wires up all routes.
func New(c *catalog.Catalog, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{catalog: c, log: logger, mux: http.NewServeMux()}
	h.routes()
	return h
}

// ServeHTTP makes Handler an http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// recordSet is the read/delete surface shared by movies and series.
type recordSet interface {
	List() ([]catalog.Record, error)
	Get(id string) (catalog.Record, error)
	Delete(id string) (int, error)
}

func (h *Handler) routes() {
	// Health / status
	h.mux.HandleFunc("GET /{$}", h.root)
	h.mux.HandleFunc("GET /health", h.health)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	// --- Movies ---
	h.mux.HandleFunc("GET /api/movies", h.listRecords(h.catalog.Movies))
	h.mux.HandleFunc("GET /api/movies/{id}", h.getRecord(h.catalog.Movies, "Movie"))
	h.mux.HandleFunc("POST /api/movies", h.upsertMovie)
	h.mux.HandleFunc("DELETE /api/movies/{id}", h.deleteRecord(h.catalog.Movies, "Movie"))

	// --- Series ---
	h.mux.HandleFunc("GET /api/series", h.listRecords(h.catalog.Series))
	h.mux.HandleFunc("GET /api/series/{id}", h.getRecord(h.catalog.Series, "Series"))
	h.mux.HandleFunc("POST /api/series", h.upsertSeries)
	h.mux.HandleFunc("DELETE /api/series/{id}", h.deleteRecord(h.catalog.Series, "Series"))

	// --- Collections ---
	h.mux.HandleFunc("GET /api/collections", h.listCollections)
	h.mux.HandleFunc("GET /api/collections/{id}", h.getCollection)
	h.mux.HandleFunc("POST /api/collections", h.upsertCollection)
	h.mux.HandleFunc("DELETE /api/collections/{id}", h.deleteCollection)
}

// ---------- helpers ----------

type countResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

type movieUpsertResponse struct {
	Success bool `json:"success"`
	IsNew   bool `json:"isNew"`
	Count   int  `json:"count"`
}

type totalResponse struct {
	Success bool `json:"success"`
	Total   int  `json:"total"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// readObject decodes a JSON object body. Numbers stay json.Number so record
// fields are stored exactly as sent.
func readObject(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errors.New("body must be a JSON object")
	}
	return body, nil
}

// fail maps a catalog or store error to a response. what names the
// resource in not-found messages.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, what string, err error) {
	var decodeErr *store.DecodeError
	var writeErr *store.WriteError
	switch {
	case errors.Is(err, catalog.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, what+" not found")
	case errors.As(err, &decodeErr):
		h.log.Error("stored document is corrupt", "slot", decodeErr.Slot, "error", err, "request_id", RequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	case errors.As(err, &writeErr):
		h.log.Error("failed to persist document", "slot", writeErr.Slot, "error", err, "request_id", RequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err, "request_id", RequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// ---------- status endpoints ----------

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "SC Files Backend",
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ---------- movies & series ----------

func (h *Handler) listRecords(set recordSet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := set.List()
		if err != nil {
			h.fail(w, r, "", err)
			return
		}
		writeJSON(w, http.StatusOK, docs)
	}
}

func (h *Handler) getRecord(set recordSet, what string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := set.Get(r.PathValue("id"))
		if err != nil {
			h.fail(w, r, what, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func (h *Handler) deleteRecord(set recordSet, what string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := set.Delete(r.PathValue("id"))
		if err != nil {
			h.fail(w, r, what, err)
			return
		}
		writeJSON(w, http.StatusOK, countResponse{Success: true, Count: count})
	}
}

func (h *Handler) upsertMovie(w http.ResponseWriter, r *http.Request) {
	body, err := readObject(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	rec, pos, err := catalog.ParseMovieBody(body)
	if err != nil {
		h.fail(w, r, "Movie", err)
		return
	}
	res, err := h.catalog.Movies.Upsert(rec, pos)
	if err != nil {
		h.fail(w, r, "Movie", err)
		return
	}
	writeJSON(w, http.StatusOK, movieUpsertResponse{Success: true, IsNew: res.IsNew, Count: res.Count})
}

func (h *Handler) upsertSeries(w http.ResponseWriter, r *http.Request) {
	body, err := readObject(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	count, err := h.catalog.Series.Upsert(catalog.Record(body))
	if err != nil {
		h.fail(w, r, "Series", err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Success: true, Count: count})
}

// ---------- collections ----------

func (h *Handler) listCollections(w http.ResponseWriter, r *http.Request) {
	docs, err := h.catalog.Collections.List()
	if err != nil {
		h.fail(w, r, "", err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *Handler) getCollection(w http.ResponseWriter, r *http.Request) {
	doc, err := h.catalog.Collections.Get(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "Collection", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) upsertCollection(w http.ResponseWriter, r *http.Request) {
	body, err := readObject(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	in, err := catalog.ParseCollectionInput(body)
	if err != nil {
		h.fail(w, r, "Collection", err)
		return
	}
	total, err := h.catalog.Collections.Upsert(in)
	if err != nil {
		h.fail(w, r, "Collection", err)
		return
	}
	writeJSON(w, http.StatusOK, totalResponse{Success: true, Total: total})
}

func (h *Handler) deleteCollection(w http.ResponseWriter, r *http.Request) {
	total, err := h.catalog.Collections.Delete(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "Collection", err)
		return
	}
	writeJSON(w, http.StatusOK, totalResponse{Success: true, Total: total})
}
