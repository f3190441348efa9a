// Package catalog implements the movies, series and collections record sets
// on top of a document store. Every write runs as one load, mutate, save
// cycle inside the slot's exclusive section, so concurrent writers never
// lose each other's updates.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/stevemurr/scfiles-backend/lock"
	"github.com/stevemurr/scfiles-backend/metrics"
	"github.com/stevemurr/scfiles-backend/schema"
	"github.com/stevemurr/scfiles-backend/store"
)

// Slot names. Each names one JSON document in the store.
const (
	SlotMovies      = "movies"
	SlotSeries      = "series"
	SlotCollections = "collections"
)

var (
	// ErrValidation marks malformed or missing required input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a lookup or delete of an absent id.
	ErrNotFound = errors.New("not found")
)

// Record is an opaque JSON object carrying at least a string "id".
type Record map[string]any

// ID returns the record's identifier, or "" when it has none.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

var recordSchema = schema.Schema{
	"type":     "object",
	"required": []any{"id"},
	"properties": map[string]any{
		"id": map[string]any{"type": "string", "minLength": 1},
	},
}

func validateRecord(r Record) error {
	if err := schema.Validate(recordSchema, r); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// Catalog bundles the three engines over one store.
type Catalog struct {
	Movies      *Movies
	Series      *Series
	Collections *Collections
}

func New(s store.Store, l lock.Locker, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		Movies:      &Movies{recordList{newEngine(SlotMovies, s, l, logger)}},
		Series:      &Series{recordList{newEngine(SlotSeries, s, l, logger)}},
		Collections: &Collections{newEngine(SlotCollections, s, l, logger)},
	}
}

// engine is the slot plumbing shared by all record sets.
type engine struct {
	slot  string
	store store.Store
	locks lock.Locker
	log   *slog.Logger
}

func newEngine(slot string, s store.Store, l lock.Locker, logger *slog.Logger) engine {
	return engine{
		slot:  slot,
		store: s,
		locks: l,
		log:   logger.With("slot", slot),
	}
}

// read loads the current document without taking the exclusive section.
// Saves replace the document atomically, so a reader sees a complete
// version.
func read[T any](e *engine, doc T) (T, error) {
	if err := e.store.Load(e.slot, &doc); err != nil {
		return doc, err
	}
	return doc, nil
}

// write runs load, fn, save under the slot's exclusive section. Nothing is
// saved when fn fails.
func write[T any](e *engine, doc T, fn func(T) (T, error)) error {
	return e.locks.WithLock(e.slot, func() error {
		if err := e.store.Load(e.slot, &doc); err != nil {
			return err
		}
		next, err := fn(doc)
		if err != nil {
			return err
		}
		return e.store.Save(e.slot, next)
	})
}

// record reports the outcome of one operation. count is the slot's record
// count after a successful write, or -1 for reads.
func (e *engine) record(op string, err error, count int) {
	metrics.CatalogOperations.WithLabelValues(e.slot, op, outcome(err)).Inc()
	if err != nil {
		return
	}
	if count >= 0 {
		metrics.SlotRecords.WithLabelValues(e.slot).Set(float64(count))
		e.log.Debug("slot written", "op", op, "count", count)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
