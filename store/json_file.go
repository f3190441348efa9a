package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// JsonFileStore stores each slot as a separate JSON file on disk.
//
// Layout:
//
//	data_dir/
//	  movies.json       # "movies" slot
//	  series.json       # "series" slot
//	  collections.json  # "collections" slot
//
// Save writes to a temporary file in the same directory and renames it over
// the slot file, so readers never observe a partially written document.
type JsonFileStore struct {
	dir string

	// beforeRename runs after the temporary file is fully written and
	// synced. Tests use it to interrupt a save.
	beforeRename func(tmpPath string) error
}

func NewJsonFileStore(dir string) (*JsonFileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &JsonFileStore{dir: dir}, nil
}

func (s *JsonFileStore) slotPath(slot string) string {
	return filepath.Join(s.dir, slot+".json")
}

func (s *JsonFileStore) Load(slot string, v any) error {
	data, err := os.ReadFile(s.slotPath(slot))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return decode(slot, data, v)
}

func (s *JsonFileStore) Save(slot string, v any) error {
	b, err := encode(slot, v)
	if err != nil {
		return err
	}
	if err := s.writeAtomic(s.slotPath(slot), b); err != nil {
		return &WriteError{Slot: slot, Err: err}
	}
	return nil
}

func (s *JsonFileStore) writeAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpPath, 0o644); err != nil {
		return err
	}
	if s.beforeRename != nil {
		if err = s.beforeRename(tmpPath); err != nil {
			return err
		}
	}
	return os.Rename(tmpPath, path)
}

func (s *JsonFileStore) Close() error {
	return nil
}
