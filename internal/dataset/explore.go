package dataset

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/psorokin/canonica/internal/model"
)

// Stats summarizes a case dataset: label balance, per-book case counts, and
// backstory length distribution (in words).
type Stats struct {
	Total       int
	Labeled     int
	LabelCounts map[string]int
	BookCounts  map[string]int
	MinWords    int
	MaxWords    int
	MeanWords   float64
}

// Explore computes dataset statistics.
func Explore(cases []model.CaseRecord) Stats {
	stats := Stats{
		Total:       len(cases),
		LabelCounts: make(map[string]int),
		BookCounts:  make(map[string]int),
	}
	totalWords := 0
	for i, c := range cases {
		if c.Label != "" {
			stats.Labeled++
			stats.LabelCounts[c.Label]++
		}
		stats.BookCounts[c.BookName]++

		words := len(strings.Fields(c.Backstory))
		totalWords += words
		if i == 0 || words < stats.MinWords {
			stats.MinWords = words
		}
		if words > stats.MaxWords {
			stats.MaxWords = words
		}
	}
	if stats.Total > 0 {
		stats.MeanWords = float64(totalWords) / float64(stats.Total)
	}
	return stats
}

// Report prints the statistics in a readable layout.
func (s Stats) Report(w io.Writer) {
	fmt.Fprintf(w, "Cases: %d (%d labeled)\n", s.Total, s.Labeled)

	if len(s.LabelCounts) > 0 {
		fmt.Fprintln(w, "\nLabels:")
		for _, label := range sortedKeys(s.LabelCounts) {
			count := s.LabelCounts[label]
			fmt.Fprintf(w, "  %-12s %d (%.1f%%)\n", label, count, 100*float64(count)/float64(s.Labeled))
		}
	}

	if len(s.BookCounts) > 0 {
		fmt.Fprintln(w, "\nBooks:")
		for _, book := range sortedKeys(s.BookCounts) {
			fmt.Fprintf(w, "  %-40s %d\n", book, s.BookCounts[book])
		}
	}

	if s.Total > 0 {
		fmt.Fprintf(w, "\nBackstory length (words): min %d, max %d, mean %.1f\n", s.MinWords, s.MaxWords, s.MeanWords)
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
