// Package catalog holds the static product and boilerplate content printed
// on every proposal.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed content/*.yaml
var content embed.FS

// ProductCount is the number of products the catalog must define.
const ProductCount = 3

// Entry is the marketing content for one product.
type Entry struct {
	Name        string   `yaml:"name" json:"name"`
	Headline    string   `yaml:"headline" json:"headline"`
	Description string   `yaml:"description" json:"description"`
	Features    []string `yaml:"features" json:"features"`
	Results     []string `yaml:"results" json:"results"`
	Notes       string   `yaml:"notes" json:"notes,omitempty"`
	Image       string   `yaml:"image" json:"image,omitempty"`
}

// Catalog resolves product names to entries.
type Catalog struct {
	entries []Entry
	byName  map[string]int
}

type catalogFile struct {
	Products []Entry `yaml:"products"`
}

// Load parses the embedded product catalog.
func Load() (*Catalog, error) {
	raw, err := content.ReadFile("content/catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(raw)
}

// Parse builds a catalog from YAML content.
func Parse(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(file.Products) != ProductCount {
		return nil, fmt.Errorf("catalog must define %d products, found %d", ProductCount, len(file.Products))
	}
	c := &Catalog{entries: file.Products, byName: make(map[string]int, len(file.Products))}
	for i, e := range file.Products {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, errors.New("catalog product without a name")
		}
		if _, dup := c.byName[name]; dup {
			return nil, fmt.Errorf("catalog product %q defined twice", name)
		}
		c.entries[i].Name = name
		c.entries[i].Description = strings.TrimSpace(e.Description)
		c.entries[i].Notes = strings.TrimSpace(e.Notes)
		c.byName[name] = i
	}
	return c, nil
}

// MustLoad is Load for program initialisation and tests.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the entry for name. Unknown or empty names fall back to the
// default (first) product.
func (c *Catalog) Lookup(name string) Entry {
	if i, ok := c.byName[strings.TrimSpace(name)]; ok {
		return c.entries[i]
	}
	return c.Default()
}

// Known reports whether name is one of the catalog products.
func (c *Catalog) Known(name string) bool {
	_, ok := c.byName[strings.TrimSpace(name)]
	return ok
}

// Default returns the fallback entry.
func (c *Catalog) Default() Entry {
	return c.entries[0]
}

// Names lists product names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Name
	}
	return out
}

// Entries returns a copy of all entries in catalog order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}
