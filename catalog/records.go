package catalog

import (
	"fmt"
	"maps"
	"slices"
)

// recordList holds the read and delete operations shared by the ordered
// record sets. Records are unique by id.
type recordList struct {
	engine
}

func (l *recordList) load() ([]Record, error) {
	docs, err := read(&l.engine, []Record{})
	if docs == nil {
		docs = []Record{}
	}
	return docs, err
}

// List returns every record in stored order.
func (l *recordList) List() ([]Record, error) {
	docs, err := l.load()
	l.record("list", err, -1)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Get returns the record with the given id.
func (l *recordList) Get(id string) (Record, error) {
	r, err := l.get(id)
	l.record("get", err, -1)
	return r, err
}

func (l *recordList) get(id string) (Record, error) {
	docs, err := l.load()
	if err != nil {
		return nil, err
	}
	if i := indexOf(docs, id); i >= 0 {
		return docs[i], nil
	}
	return nil, fmt.Errorf("%s %q: %w", l.slot, id, ErrNotFound)
}

// Delete removes the record with the given id and returns the remaining
// count. The slot is left untouched when no record matches.
func (l *recordList) Delete(id string) (int, error) {
	count := -1
	err := write(&l.engine, []Record{}, func(docs []Record) ([]Record, error) {
		i := indexOf(docs, id)
		if i < 0 {
			return nil, fmt.Errorf("%s %q: %w", l.slot, id, ErrNotFound)
		}
		docs = slices.Delete(docs, i, i+1)
		count = len(docs)
		return docs, nil
	})
	l.record("delete", err, count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func indexOf(docs []Record, id string) int {
	return slices.IndexFunc(docs, func(r Record) bool { return r.ID() == id })
}

// Position controls where a movie upsert places its record.
type Position string

const (
	PositionBottom Position = "bottom"
	PositionTop    Position = "top"
)

// ParsePosition maps a position directive to a Position. The empty string
// means PositionBottom.
func ParsePosition(s string) (Position, error) {
	switch Position(s) {
	case "", PositionBottom:
		return PositionBottom, nil
	case PositionTop:
		return PositionTop, nil
	}
	return "", fmt.Errorf("%w: position must be %q or %q, got %q", ErrValidation, PositionTop, PositionBottom, s)
}

// UpsertResult describes a movie upsert.
type UpsertResult struct {
	IsNew bool
	Count int
}

// Movies is an ordered record set. Updates merge fields into the existing
// record and keep its position unless PositionTop asks for the front.
type Movies struct {
	recordList
}

// Upsert inserts rec, or merges its fields onto the record with the same
// id. New records go to the end, or the front for PositionTop.
func (m *Movies) Upsert(rec Record, pos Position) (UpsertResult, error) {
	var res UpsertResult
	err := m.upsert(rec, pos, &res)
	count := -1
	if err == nil {
		count = res.Count
	}
	m.record("upsert", err, count)
	if err != nil {
		return UpsertResult{}, err
	}
	return res, nil
}

func (m *Movies) upsert(rec Record, pos Position, res *UpsertResult) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	if _, err := ParsePosition(string(pos)); err != nil {
		return err
	}
	id := rec.ID()
	return write(&m.engine, []Record{}, func(docs []Record) ([]Record, error) {
		i := indexOf(docs, id)
		switch {
		case i >= 0:
			merged := docs[i]
			maps.Copy(merged, rec)
			if pos == PositionTop {
				docs = slices.Delete(docs, i, i+1)
				docs = slices.Insert(docs, 0, merged)
			} else {
				docs[i] = merged
			}
		case pos == PositionTop:
			docs = slices.Insert(docs, 0, maps.Clone(rec))
			res.IsNew = true
		default:
			docs = append(docs, maps.Clone(rec))
			res.IsNew = true
		}
		res.Count = len(docs)
		return docs, nil
	})
}

// ParseMovieBody splits an inbound movie body into the record and its
// position directive. The "position" field is not stored.
func ParseMovieBody(body map[string]any) (Record, Position, error) {
	rec := Record(maps.Clone(body))
	raw, ok := rec["position"]
	delete(rec, "position")
	if !ok || raw == nil {
		return rec, PositionBottom, nil
	}
	s, isString := raw.(string)
	if !isString {
		return nil, "", fmt.Errorf("%w: position must be a string", ErrValidation)
	}
	pos, err := ParsePosition(s)
	if err != nil {
		return nil, "", err
	}
	return rec, pos, nil
}

// Series is a record set ordered by most recent upsert. Updates replace the
// whole record and always move it to the front.
type Series struct {
	recordList
}

// Upsert removes any record with rec's id and inserts rec at the front.
// It returns the resulting record count.
func (s *Series) Upsert(rec Record) (int, error) {
	count := -1
	err := validateRecord(rec)
	if err == nil {
		id := rec.ID()
		err = write(&s.engine, []Record{}, func(docs []Record) ([]Record, error) {
			if i := indexOf(docs, id); i >= 0 {
				docs = slices.Delete(docs, i, i+1)
			}
			docs = slices.Insert(docs, 0, maps.Clone(rec))
			count = len(docs)
			return docs, nil
		})
	}
	s.record("upsert", err, count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
