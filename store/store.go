// Package store defines the document store interface and implementations.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Store persists one JSON document per named slot.
//
// Implementations must make Save atomic from the point of view of Load: a
// reader sees either the previous document or the new one, never a mix.
type Store interface {
	// Load decodes the document stored in slot into v. If the slot has
	// never been written, v is left untouched and Load returns nil, so
	// callers pre-fill v with the default value.
	Load(slot string, v any) error

	// Save replaces the document stored in slot with v.
	Save(slot string, v any) error

	// Close releases any resources held by the store.
	Close() error
}

// DecodeError reports a slot whose persisted content cannot be parsed.
type DecodeError struct {
	Slot string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("store: decode slot %q: %v", e.Slot, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// WriteError reports a failed Save. The previously persisted document is
// left intact.
type WriteError struct {
	Slot string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("store: write slot %q: %v", e.Slot, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func encode(slot string, v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, &WriteError{Slot: slot, Err: err}
	}
	return b, nil
}

// decode parses data into v. Numbers are kept as json.Number so opaque
// record fields round-trip without float conversion. Blank content counts
// as an absent slot.
func decode(slot string, data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return &DecodeError{Slot: slot, Err: err}
	}
	if dec.More() {
		return &DecodeError{Slot: slot, Err: fmt.Errorf("trailing data after document")}
	}
	return nil
}
