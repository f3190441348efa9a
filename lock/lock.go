// Package lock provides per-slot exclusive sections for read-modify-write
// cycles against a document store.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/stevemurr/scfiles-backend/metrics"
)

// Locker runs fn while holding the exclusive section for slot. At most one
// fn per slot runs at a time; different slots do not contend. The section
// is released when fn returns, fails or panics.
type Locker interface {
	WithLock(slot string, fn func() error) error
}

// Local serializes callers within one process.
type Local struct {
	mu    sync.Mutex
	slots map[string]*sync.Mutex
}

func NewLocal() *Local {
	return &Local{slots: make(map[string]*sync.Mutex)}
}

func (l *Local) slot(name string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.slots[name]
	if !ok {
		m = &sync.Mutex{}
		l.slots[name] = m
	}
	return m
}

func (l *Local) WithLock(slot string, fn func() error) error {
	m := l.slot(slot)
	start := time.Now()
	m.Lock()
	defer m.Unlock()
	metrics.LockWaitSeconds.WithLabelValues(slot).Observe(time.Since(start).Seconds())
	return fn()
}

// File serializes callers across processes sharing a data directory by
// pairing the in-process mutex with an advisory lock on
// <dir>/.<slot>.lock.
type File struct {
	local *Local
	dir   string

	mu     sync.Mutex
	flocks map[string]*flock.Flock
}

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &File{
		local:  NewLocal(),
		dir:    dir,
		flocks: make(map[string]*flock.Flock),
	}, nil
}

func (f *File) flock(slot string) *flock.Flock {
	f.mu.Lock()
	defer f.mu.Unlock()
	fl, ok := f.flocks[slot]
	if !ok {
		fl = flock.New(filepath.Join(f.dir, "."+slot+".lock"))
		f.flocks[slot] = fl
	}
	return fl
}

func (f *File) WithLock(slot string, fn func() error) error {
	return f.local.WithLock(slot, func() error {
		fl := f.flock(slot)
		if err := fl.Lock(); err != nil {
			return fmt.Errorf("lock slot %q: %w", slot, err)
		}
		defer fl.Unlock()
		return fn()
	})
}

// New returns the Locker matching a store backend: memory stores only need
// in-process exclusion, anything on disk gets the cross-process File lock.
func New(backend, dataDir string) (Locker, error) {
	if backend == "memory" {
		return NewLocal(), nil
	}
	return NewFile(dataDir)
}
