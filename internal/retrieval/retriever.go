// Package retrieval is the sole read path into an embedding index: it
// embeds a query and returns the nearest passages with their metadata.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/psorokin/canonica/internal/index"
	"github.com/psorokin/canonica/internal/llm"
	"github.com/psorokin/canonica/internal/model"
	"github.com/psorokin/canonica/internal/retry"
)

// DefaultTopK is the number of passages retrieved per claim.
const DefaultTopK = 7

// Retriever embeds queries in query mode and searches an index. It never
// mutates the index.
type Retriever struct {
	provider llm.Provider
	policy   retry.Policy
}

// NewRetriever creates a retriever.
func NewRetriever(provider llm.Provider, policy retry.Policy) *Retriever {
	return &Retriever{provider: provider, policy: policy}
}

// Retrieve returns up to topK passages ranked nearest-first for the query.
// An empty index yields an empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, ix *index.Index, query string, topK int) ([]model.Passage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	embedding, err := retry.Do(ctx, r.policy, func(ctx context.Context) ([]float32, error) {
		return r.provider.Embed(ctx, query, llm.TaskQuery)
	})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := ix.Query(embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	passages := make([]model.Passage, len(results))
	for i, res := range results {
		passages[i] = model.Passage{
			Text:     res.Document,
			Distance: res.Distance,
			Position: res.Position,
			BookName: res.BookName,
		}
	}
	return passages, nil
}
