// Package catalog holds the closed product-to-prefix mapping and answers
// which products currently have a data directory.
package catalog

import (
	"os"
	"path/filepath"
)

// Product is a named category of weather imagery backed by one directory of
// rendered files. The on-disk filename prefix comes from the upstream render
// pipeline and is not guaranteed to equal the public name, which is why the
// mapping is closed: unknown products are refused rather than guessed.
type Product struct {
	Name   string `yaml:"name"`
	Prefix string `yaml:"prefix"`
}

// Catalog is an immutable, ordered product mapping rooted at a data directory.
type Catalog struct {
	root     string
	products []Product
	byName   map[string]string
}

// New creates a Catalog over root. Declaration order of products is preserved
// by ListAvailable.
func New(root string, products []Product) *Catalog {
	byName := make(map[string]string, len(products))
	for _, p := range products {
		byName[p.Name] = p.Prefix
	}
	return &Catalog{
		root:     root,
		products: append([]Product(nil), products...),
		byName:   byName,
	}
}

// ListAvailable returns the names of configured products whose data directory
// currently exists, in declaration order. Availability is checked per call; a
// stat failure of any kind counts as "not available".
func (c *Catalog) ListAvailable() []string {
	available := make([]string, 0, len(c.products))
	for _, p := range c.products {
		info, err := os.Stat(c.Dir(p.Name))
		if err != nil || !info.IsDir() {
			continue
		}
		available = append(available, p.Name)
	}
	return available
}

// PrefixFor returns the on-disk filename prefix for a product, or false when
// the product is outside the closed set.
func (c *Catalog) PrefixFor(name string) (string, bool) {
	prefix, ok := c.byName[name]
	return prefix, ok
}

// Dir returns the data directory for a product name.
func (c *Catalog) Dir(name string) string {
	return filepath.Join(c.root, name)
}

// Products returns a copy of the configured mapping in declaration order.
func (c *Catalog) Products() []Product {
	return append([]Product(nil), c.products...)
}
