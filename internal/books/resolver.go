// Package books locates novel text files and serves their contents through
// an in-memory cache, so a batch touching the same book many times reads it
// from disk once.
package books

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// NotFoundError reports a book that could not be matched to any file in the
// books directory, listing what is available.
type NotFoundError struct {
	Book      string
	Dir       string
	Available []string
}

func (e *NotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("book %q not found: no .txt files in %s", e.Book, e.Dir)
	}
	return fmt.Sprintf("book %q not found in %s (available: %s)", e.Book, e.Dir, strings.Join(e.Available, ", "))
}

// Resolver maps book names to .txt files under a directory and caches the
// loaded texts.
type Resolver struct {
	dir   string
	cache *gocache.Cache
}

// NewResolver creates a resolver for dir. Loaded texts are cached for ttl;
// a non-positive ttl keeps them for the resolver's lifetime.
func NewResolver(dir string, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &Resolver{
		dir:   dir,
		cache: gocache.New(ttl, 10*time.Minute),
	}
}

// Dir returns the books directory.
func (r *Resolver) Dir() string { return r.dir }

// Resolve returns the path of the file holding the named book. An exact
// "<name>.txt" match wins; otherwise the name is compared case-insensitively
// against every .txt stem in the directory.
func (r *Resolver) Resolve(book string) (string, error) {
	book = strings.TrimSpace(book)
	if book == "" {
		return "", fmt.Errorf("book name is empty")
	}

	exact := filepath.Join(r.dir, book+".txt")
	if info, err := os.Stat(exact); err == nil && !info.IsDir() {
		return exact, nil
	}

	stems, err := r.listStems()
	if err != nil {
		return "", fmt.Errorf("scan books dir %s: %w", r.dir, err)
	}
	for _, stem := range stems {
		if strings.EqualFold(stem, book) {
			return filepath.Join(r.dir, stem+".txt"), nil
		}
	}
	return "", &NotFoundError{Book: book, Dir: r.dir, Available: stems}
}

// Load returns the full text of the named book, reading the file at most
// once per cache lifetime.
func (r *Resolver) Load(book string) (string, error) {
	path, err := r.Resolve(book)
	if err != nil {
		return "", err
	}

	if cached, found := r.cache.Get(path); found {
		return cached.(string), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read book %s: %w", path, err)
	}
	text := string(data)
	r.cache.Set(path, text, gocache.DefaultExpiration)
	return text, nil
}

// listStems returns the sorted .txt stems in the books directory.
func (r *Resolver) listStems() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, err
	}
	var stems []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), ".txt") {
			continue
		}
		stems = append(stems, strings.TrimSuffix(name, filepath.Ext(name)))
	}
	sort.Strings(stems)
	return stems, nil
}
