package kingcounty

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/net/html/charset"
)

// Cache keeps the last fetched results page on disk, re-encoded as UTF-8.
type Cache struct {
	path string
}

// NewCache returns a cache stored at path.
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// Save writes page to disk. Intermediate directories are created automatically.
func (c *Cache) Save(page *Page) error {
	enc, _ := charset.Lookup(page.Encoding)
	if enc == nil {
		return fmt.Errorf("cache: unknown encoding %q", page.Encoding)
	}
	content, err := enc.NewDecoder().Bytes(page.Content)
	if err != nil {
		return fmt.Errorf("cache: decode page: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("cache: create dir: %w", err)
	}
	if err := os.WriteFile(c.path, content, 0644); err != nil {
		return fmt.Errorf("cache: write %q: %w", c.path, err)
	}
	return nil
}

// Load reads the cached page.
func (c *Cache) Load() (*Page, error) {
	content, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("cache: read %q: %w", c.path, err)
	}
	return &Page{Content: content, Encoding: "utf-8"}, nil
}
