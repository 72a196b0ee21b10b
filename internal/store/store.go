// Package store provides the temporary vector collections backing one
// verification run. Collections live in an in-memory SQLite database and are
// discarded with it; nothing persists across runs.
package store

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// FallbackCollectionName is used when sanitizing a book name leaves nothing.
const FallbackCollectionName = "novel_collection"

var unsafeNameRuns = regexp.MustCompile(`[^a-z0-9_-]+`)

// Store holds vector collections, one table per collection.
type Store struct {
	db *sql.DB
}

// Open creates an empty in-memory store.
func Open() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open in-memory database: %w", err)
	}
	// A second connection would see its own empty memory database.
	db.SetMaxOpenConns(1)

	return &Store{db: db}, nil
}

// Close releases the store and everything in it.
func (s *Store) Close() error {
	return s.db.Close()
}

// SanitizeCollectionName normalizes a book name to a safe identifier:
// lowercase, runs of non-alphanumeric characters collapsed to a single
// underscore. An empty result falls back to FallbackCollectionName.
func SanitizeCollectionName(name string) string {
	cleaned := unsafeNameRuns.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		return FallbackCollectionName
	}
	return cleaned
}

// Entry is one chunk record inside a collection.
type Entry struct {
	ID       string
	Document string
	Position int
	BookName string
	Length   int
	Vector   []float32
}

// SearchResult is one nearest-neighbor hit, nearest first.
type SearchResult struct {
	Document string
	Distance float64
	Position int
	BookName string
	Length   int
}

// CreateCollection creates an empty collection table.
func (s *Store) CreateCollection(name string) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %q (
			id        TEXT PRIMARY KEY,
			position  INTEGER NOT NULL,
			book_name TEXT NOT NULL,
			document  TEXT NOT NULL,
			length    INTEGER NOT NULL,
			dimension INTEGER NOT NULL,
			vector    BLOB NOT NULL
		)`, tableName(name))
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}
	return nil
}

// DropCollection removes a collection and its contents. Dropping a
// collection that does not exist is not an error.
func (s *Store) DropCollection(name string) error {
	query := fmt.Sprintf(`DROP TABLE IF EXISTS %q`, tableName(name))
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("drop collection %s: %w", name, err)
	}
	return nil
}

// Upsert inserts entries into a collection in one transaction. All vectors
// must share one dimension, including any already stored.
func (s *Store) Upsert(name string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	dim := len(entries[0].Vector)
	for _, e := range entries {
		if len(e.Vector) == 0 {
			return fmt.Errorf("cannot insert empty vector for %s", e.ID)
		}
		if len(e.Vector) != dim {
			return fmt.Errorf("vector dimension mismatch: %d vs %d for %s", len(e.Vector), dim, e.ID)
		}
	}
	if existing, err := s.dimension(name); err != nil {
		return err
	} else if existing > 0 && existing != dim {
		return fmt.Errorf("collection %s holds %d-dimensional vectors, got %d", name, existing, dim)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT OR REPLACE INTO %q (id, position, book_name, document, length, dimension, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, tableName(name))
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		blob := vectorToBlob(e.Vector)
		if _, err := stmt.Exec(e.ID, e.Position, e.BookName, e.Document, e.Length, dim, blob); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Count returns the number of entries in a collection; zero when the
// collection does not exist.
func (s *Store) Count(name string) (int, error) {
	ok, err := s.hasCollection(name)
	if err != nil || !ok {
		return 0, err
	}
	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %q`, tableName(name))
	if err := s.db.QueryRow(query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count collection %s: %w", name, err)
	}
	return count, nil
}

// Search returns up to topK entries ordered by ascending L2 distance to the
// query vector, ties broken by chunk position. An empty or missing
// collection yields an empty result, not an error.
func (s *Store) Search(name string, vector []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}
	ok, err := s.hasCollection(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT document, position, book_name, length, dimension, vector FROM %q`, tableName(name))
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("scan collection %s: %w", name, err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var dim int
		var blob []byte
		if err := rows.Scan(&r.Document, &r.Position, &r.BookName, &r.Length, &dim, &blob); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		stored := blobToVector(blob, dim)
		if len(stored) != len(vector) {
			return nil, fmt.Errorf("query dimension %d does not match stored dimension %d", len(vector), len(stored))
		}
		r.Distance = l2Distance(vector, stored)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collection %s: %w", name, err)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Position < results[j].Position
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *Store) hasCollection(name string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`,
		tableName(name),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("lookup collection %s: %w", name, err)
	}
	return count > 0, nil
}

// dimension returns the stored vector dimension, or zero for an empty or
// missing collection.
func (s *Store) dimension(name string) (int, error) {
	ok, err := s.hasCollection(name)
	if err != nil || !ok {
		return 0, err
	}
	var dim int
	query := fmt.Sprintf(`SELECT dimension FROM %q LIMIT 1`, tableName(name))
	err = s.db.QueryRow(query).Scan(&dim)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read dimension of %s: %w", name, err)
	}
	return dim, nil
}

func tableName(collection string) string {
	return "c_" + collection
}

// vectorToBlob packs a vector as little-endian float32 values.
func vectorToBlob(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

func blobToVector(blob []byte, dim int) []float32 {
	if len(blob) < dim*4 {
		dim = len(blob) / 4
	}
	vector := make([]float32, dim)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vector
}

// l2Distance computes Euclidean distance between two equal-length vectors.
func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
