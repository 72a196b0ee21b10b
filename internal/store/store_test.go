package store

import (
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSanitizeCollectionName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Count of Monte Cristo", "the_count_of_monte_cristo"},
		{"  In Search of the Castaways  ", "in_search_of_the_castaways"},
		{"Twenty Thousand Leagues Under the Sea!", "twenty_thousand_leagues_under_the_sea"},
		{"already_safe-name", "already_safe-name"},
		{"«Ça»", FallbackCollectionName},
		{"", FallbackCollectionName},
		{"   ", FallbackCollectionName},
	}

	for _, tt := range tests {
		if got := SanitizeCollectionName(tt.in); got != tt.want {
			t.Errorf("SanitizeCollectionName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStore_UpsertAndSearch(t *testing.T) {
	s := openTestStore(t)
	if err := s.CreateCollection("book"); err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}

	entries := []Entry{
		{ID: "book_0", Document: "first passage", Position: 0, BookName: "book", Length: 13, Vector: []float32{1, 0, 0}},
		{ID: "book_1", Document: "second passage", Position: 1, BookName: "book", Length: 14, Vector: []float32{0, 1, 0}},
		{ID: "book_2", Document: "third passage", Position: 2, BookName: "book", Length: 13, Vector: []float32{0.9, 0.1, 0}},
	}
	if err := s.Upsert("book", entries); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	count, err := s.Count("book")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 entries, got %d", count)
	}

	results, err := s.Search("book", []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Document != "first passage" {
		t.Errorf("expected exact match first, got %q", results[0].Document)
	}
	if results[0].Distance != 0 {
		t.Errorf("expected zero distance for exact match, got %f", results[0].Distance)
	}
	if results[1].Document != "third passage" {
		t.Errorf("expected nearest neighbor second, got %q", results[1].Document)
	}
	if results[0].Distance > results[1].Distance {
		t.Error("results not ordered by ascending distance")
	}
}

func TestStore_SearchTieBrokenByPosition(t *testing.T) {
	s := openTestStore(t)
	_ = s.CreateCollection("book")

	// Two entries equidistant from the query
	entries := []Entry{
		{ID: "book_5", Document: "later", Position: 5, BookName: "book", Vector: []float32{0, 1}},
		{ID: "book_1", Document: "earlier", Position: 1, BookName: "book", Vector: []float32{0, -1}},
	}
	if err := s.Upsert("book", entries); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	results, err := s.Search("book", []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results[0].Position != 1 || results[1].Position != 5 {
		t.Errorf("expected tie broken by position, got %d then %d", results[0].Position, results[1].Position)
	}
}

func TestStore_SearchNeverExceedsSize(t *testing.T) {
	s := openTestStore(t)
	_ = s.CreateCollection("book")
	_ = s.Upsert("book", []Entry{
		{ID: "book_0", Document: "only one", Position: 0, BookName: "book", Vector: []float32{1, 2}},
	})

	results, err := s.Search("book", []float32{1, 2}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}

func TestStore_SearchEmptyAndMissing(t *testing.T) {
	s := openTestStore(t)

	// Missing collection
	results, err := s.Search("ghost", []float32{1}, 5)
	if err != nil {
		t.Fatalf("Search missing collection: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty result for missing collection, got %d", len(results))
	}

	// Empty collection
	_ = s.CreateCollection("empty")
	results, err = s.Search("empty", []float32{1}, 5)
	if err != nil {
		t.Fatalf("Search empty collection: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty result for empty collection, got %d", len(results))
	}

	// Invalid topK
	if _, err := s.Search("empty", []float32{1}, 0); err == nil {
		t.Error("expected error for topK=0")
	}
}

func TestStore_DropThenCreateReplacesContents(t *testing.T) {
	s := openTestStore(t)
	_ = s.CreateCollection("book")
	_ = s.Upsert("book", []Entry{
		{ID: "book_0", Document: "stale", Position: 0, BookName: "book", Vector: []float32{1}},
	})

	if err := s.DropCollection("book"); err != nil {
		t.Fatalf("DropCollection: %v", err)
	}
	if err := s.CreateCollection("book"); err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}

	count, err := s.Count("book")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Errorf("expected fresh collection to be empty, got %d entries", count)
	}

	// Dropping a missing collection is fine
	if err := s.DropCollection("never_created"); err != nil {
		t.Errorf("DropCollection on missing collection: %v", err)
	}
}

func TestStore_DimensionMismatchRejected(t *testing.T) {
	s := openTestStore(t)
	_ = s.CreateCollection("book")

	err := s.Upsert("book", []Entry{
		{ID: "a", Document: "a", Position: 0, BookName: "book", Vector: []float32{1, 2}},
		{ID: "b", Document: "b", Position: 1, BookName: "book", Vector: []float32{1, 2, 3}},
	})
	if err == nil {
		t.Error("expected error for mixed dimensions in one batch")
	}

	if err := s.Upsert("book", []Entry{
		{ID: "a", Document: "a", Position: 0, BookName: "book", Vector: []float32{1, 2}},
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	err = s.Upsert("book", []Entry{
		{ID: "c", Document: "c", Position: 2, BookName: "book", Vector: []float32{1, 2, 3}},
	})
	if err == nil {
		t.Error("expected error for dimension mismatch with stored entries")
	}

	// Searching with the wrong dimension is an error as well
	if _, err := s.Search("book", []float32{1, 2, 3}, 5); err == nil {
		t.Error("expected error for query dimension mismatch")
	}
}

func TestVectorBlobRoundTrip(t *testing.T) {
	vec := []float32{0.5, -1.25, 3.75, 0}
	got := blobToVector(vectorToBlob(vec), len(vec))
	if len(got) != len(vec) {
		t.Fatalf("expected %d values, got %d", len(vec), len(got))
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("value %d: expected %f, got %f", i, vec[i], got[i])
		}
	}
}
