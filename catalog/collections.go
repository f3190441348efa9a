package catalog

import (
	"fmt"

	"github.com/stevemurr/scfiles-backend/schema"
)

// Descriptor describes one named collection of movies. The field names
// match the documents already written by earlier versions of the service.
type Descriptor struct {
	Name    string `json:"name"`
	Banner  string `json:"banner"`
	BgMusic string `json:"bg-music"`
	Movies  []any  `json:"movies"`
}

// CollectionInput is the payload of a collection upsert. Optional fields
// left empty take their defaults.
type CollectionInput struct {
	ID      string
	Name    string
	Banner  string
	BgMusic string
	Movies  []any
}

var collectionSchema = schema.Schema{
	"type":     "object",
	"required": []any{"id", "name"},
	"properties": map[string]any{
		"id":       map[string]any{"type": "string", "minLength": 1},
		"name":     map[string]any{"type": "string", "minLength": 1},
		"banner":   map[string]any{"type": "string"},
		"bg-music": map[string]any{"type": "string"},
		"bgMusic":  map[string]any{"type": "string"},
		"movies":   map[string]any{"type": "array"},
	},
}

// ParseCollectionInput validates an inbound collection body. "bgMusic" is
// accepted as an alias for "bg-music"; null optional fields count as absent.
func ParseCollectionInput(body map[string]any) (CollectionInput, error) {
	clean := make(map[string]any, len(body))
	for k, v := range body {
		if v != nil {
			clean[k] = v
		}
	}
	if err := schema.Validate(collectionSchema, clean); err != nil {
		return CollectionInput{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	in := CollectionInput{
		ID:   clean["id"].(string),
		Name: clean["name"].(string),
	}
	in.Banner, _ = clean["banner"].(string)
	in.BgMusic, _ = clean["bg-music"].(string)
	if in.BgMusic == "" {
		in.BgMusic, _ = clean["bgMusic"].(string)
	}
	in.Movies, _ = clean["movies"].([]any)
	return in, nil
}

// Collections is a keyed record set of Descriptors.
type Collections struct {
	engine
}

func (c *Collections) load() (map[string]Descriptor, error) {
	docs, err := read(&c.engine, map[string]Descriptor{})
	if docs == nil {
		docs = map[string]Descriptor{}
	}
	return docs, err
}

// List returns every descriptor keyed by id.
func (c *Collections) List() (map[string]Descriptor, error) {
	docs, err := c.load()
	c.record("list", err, -1)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Get returns the descriptor stored under id.
func (c *Collections) Get(id string) (Descriptor, error) {
	d, err := c.get(id)
	c.record("get", err, -1)
	return d, err
}

func (c *Collections) get(id string) (Descriptor, error) {
	docs, err := c.load()
	if err != nil {
		return Descriptor{}, err
	}
	d, ok := docs[id]
	if !ok {
		return Descriptor{}, fmt.Errorf("%s %q: %w", c.slot, id, ErrNotFound)
	}
	return d, nil
}

// Upsert replaces the descriptor at in.ID and returns the number of
// collections.
func (c *Collections) Upsert(in CollectionInput) (int, error) {
	total := -1
	err := validateCollection(in)
	if err == nil {
		d := Descriptor{
			Name:    in.Name,
			Banner:  in.Banner,
			BgMusic: in.BgMusic,
			Movies:  in.Movies,
		}
		if d.Movies == nil {
			d.Movies = []any{}
		}
		err = write(&c.engine, map[string]Descriptor{}, func(docs map[string]Descriptor) (map[string]Descriptor, error) {
			if docs == nil {
				docs = map[string]Descriptor{}
			}
			docs[in.ID] = d
			total = len(docs)
			return docs, nil
		})
	}
	c.record("upsert", err, total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Delete removes the descriptor at id and returns the number of
// collections left.
func (c *Collections) Delete(id string) (int, error) {
	total := -1
	err := write(&c.engine, map[string]Descriptor{}, func(docs map[string]Descriptor) (map[string]Descriptor, error) {
		if _, ok := docs[id]; !ok {
			return nil, fmt.Errorf("%s %q: %w", c.slot, id, ErrNotFound)
		}
		delete(docs, id)
		total = len(docs)
		return docs, nil
	})
	c.record("delete", err, total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func validateCollection(in CollectionInput) error {
	switch {
	case in.ID == "":
		return fmt.Errorf("%w: collection id required", ErrValidation)
	case in.Name == "":
		return fmt.Errorf("%w: collection name required", ErrValidation)
	}
	return nil
}
