// Package catalog serves dog records from a static JSON dataset when storage is out of reach.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sync"

	"doghouse/models"

	"github.com/rs/zerolog/log"
)

//go:embed seed_dogs.json
var bundled []byte

// Catalog is a read-only, lazily loaded list of dog records.
type Catalog struct {
	path string

	once  sync.Once
	items []models.Dog
}

// New creates a catalog backed by the JSON file at path.
// An empty path selects the bundled dataset.
func New(path string) *Catalog {
	return &Catalog{path: path}
}

// Items returns the catalog entries in file order. Entries with neither a
// name nor an image are dropped. A missing or malformed source yields an
// empty slice.
func (c *Catalog) Items() []models.Dog {
	c.once.Do(func() {
		items, err := c.load()
		if err != nil {
			log.Warn().Err(err).Str("path", c.path).Msg("Local catalog unavailable, using empty dataset")
			items = []models.Dog{}
		}
		c.items = items
		log.Debug().Int("count", len(items)).Msg("Local catalog loaded")
	})
	return c.items
}

// Random picks one entry uniformly. ok is false when the catalog is empty.
func (c *Catalog) Random() (dog models.Dog, ok bool) {
	items := c.Items()
	if len(items) == 0 {
		return models.Dog{}, false
	}
	return items[rand.Intn(len(items))], true
}

// Enumerated returns the entries with presentation-only ids 1..N in catalog order.
func (c *Catalog) Enumerated() []models.DogRead {
	items := c.Items()
	out := make([]models.DogRead, 0, len(items))
	for i, item := range items {
		id := uint(i + 1)
		out = append(out, models.DogRead{ID: &id, Name: item.Name, Image: item.Image})
	}
	return out
}

func (c *Catalog) load() ([]models.Dog, error) {
	raw := bundled
	if c.path != "" {
		data, err := os.ReadFile(c.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}
		raw = data
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	items := make([]models.Dog, 0, len(entries))
	for _, entry := range entries {
		var fields struct {
			Name  *string `json:"name"`
			Image *string `json:"image"`
		}
		// Skip anything that is not an object with string fields.
		if err := json.Unmarshal(entry, &fields); err != nil {
			continue
		}
		dog := models.Dog{Name: fields.Name, Image: fields.Image}.Normalized()
		if dog.Empty() {
			continue
		}
		items = append(items, dog)
	}
	return items, nil
}
