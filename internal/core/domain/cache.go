package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Cache is the merged view of every product and suite known from the configured repositories.
// Keys are lowercase names; the first-seen casing is kept on the entry for display.
type Cache struct {
	entries map[string]Entry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Key returns the lookup key for a product or suite name.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Lookup finds an entry by name, case-insensitively.
func (c *Cache) Lookup(name string) (Entry, bool) {
	e, ok := c.entries[Key(name)]
	return e, ok
}

// Product finds a product by name, case-insensitively.
// It returns ErrProductNotFound for unknown names and ErrNotAProduct for suites.
func (c *Cache) Product(name string) (*Product, error) {
	e, ok := c.Lookup(name)
	if !ok {
		return nil, zerr.With(zerr.Wrap(ErrProductNotFound, name), "product", name)
	}

	switch v := e.(type) {
	case *Product:
		return v, nil
	case *Suite:
		return nil, zerr.With(zerr.Wrap(ErrNotAProduct, v.Name), "suite", v.Name)
	default:
		return nil, zerr.With(zerr.Wrap(ErrNotAProduct, name), "entry", name)
	}
}

// Put stores an entry under its lowercase name, replacing any previous entry.
func (c *Cache) Put(e Entry) {
	c.entries[Key(e.EntryName())] = e
}

// All returns every entry in unspecified order.
func (c *Cache) All() []Entry {
	all := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		all = append(all, e)
	}
	return all
}

// Products returns every product sorted by lowercase name.
func (c *Cache) Products() []*Product {
	products := make([]*Product, 0, len(c.entries))
	for _, e := range c.entries {
		if p, ok := e.(*Product); ok {
			products = append(products, p)
		}
	}
	slices.SortFunc(products, func(a, b *Product) int {
		return strings.Compare(Key(a.Name), Key(b.Name))
	})
	return products
}

// Replace swaps the contents of c for those of other.
func (c *Cache) Replace(other *Cache) {
	c.entries = other.entries
}
