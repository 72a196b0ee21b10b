// Package pipeline wires chunking, indexing, retrieval, and verification
// into the per-case flow the CLI drives.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/psorokin/canonica/internal/books"
	"github.com/psorokin/canonica/internal/chunk"
	"github.com/psorokin/canonica/internal/extract"
	"github.com/psorokin/canonica/internal/index"
	"github.com/psorokin/canonica/internal/llm"
	"github.com/psorokin/canonica/internal/model"
	"github.com/psorokin/canonica/internal/retrieval"
	"github.com/psorokin/canonica/internal/retry"
	"github.com/psorokin/canonica/internal/store"
	"github.com/psorokin/canonica/internal/verify"
)

// errRationaleLimit caps how much of a failure message leaks into the
// submission rationale.
const errRationaleLimit = 200

// Pipeline orchestrates the complete verification flow for one or many
// cases. Book indexes are built once per run and shared between cases; the
// cache is safe for concurrent case workers.
type Pipeline struct {
	cfg        *model.Config
	provider   llm.Provider
	store      *store.Store
	resolver   *books.Resolver
	chunker    *chunk.Chunker
	builder    *index.Builder
	aggregator *verify.Aggregator

	mu      sync.Mutex
	indexes map[string]*index.Index
}

// New creates a pipeline from the configuration. The caller owns the
// returned pipeline and must Close it.
func New(cfg *model.Config) (*Pipeline, error) {
	base, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("init provider: %w", err)
	}
	provider := llm.Throttle(base, cfg.LLM.RatePerSecond, cfg.LLM.RateBurst)

	chunker, err := chunk.New(cfg.Chunking.ChunkSize, cfg.Chunking.Overlap)
	if err != nil {
		return nil, fmt.Errorf("init chunker: %w", err)
	}

	st, err := store.Open()
	if err != nil {
		return nil, fmt.Errorf("init vector store: %w", err)
	}

	policy := retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		Multiplier:  cfg.Retry.Multiplier,
	}
	retriever := retrieval.NewRetriever(provider, policy)
	verifier := verify.NewVerifier(retriever, provider, policy, cfg.Retrieval.TopK, cfg.LLM.Temperature)
	extractor := extract.NewClaimExtractor(provider, policy, cfg.LLM.Temperature)
	thresholds := verify.Thresholds{
		MinContradictions: cfg.Verify.MinContradictions,
		MinConfidence:     cfg.Verify.MinConfidence,
	}

	return &Pipeline{
		cfg:        cfg,
		provider:   provider,
		store:      st,
		resolver:   books.NewResolver(cfg.Books.Dir, cfg.Books.CacheTTL),
		chunker:    chunker,
		builder:    index.NewBuilder(provider, policy, cfg.Output.Progress, cfg.Output.Verbose),
		aggregator: verify.NewAggregator(extractor, verifier, thresholds, cfg.Concurrency.ClaimWorkers, cfg.Output.Verbose),
		indexes:    make(map[string]*index.Index),
	}, nil
}

// Close releases the vector store.
func (p *Pipeline) Close() error {
	return p.store.Close()
}

// Provider returns the configured LLM provider.
func (p *Pipeline) Provider() llm.Provider {
	return p.provider
}

// Check verifies one backstory and returns the full decision, including
// per-claim results. Errors propagate to the caller.
func (p *Pipeline) Check(ctx context.Context, character, book, backstory string) (*model.Decision, error) {
	ix, err := p.indexFor(ctx, book)
	if err != nil {
		return nil, err
	}
	return p.aggregator.Decide(ctx, character, book, backstory, ix)
}

// RunCase verifies one case record and never fails: any error degrades to a
// "consistent" prediction carrying the failure in the rationale, so a batch
// always produces a complete submission.
func (p *Pipeline) RunCase(ctx context.Context, rec model.CaseRecord) model.CaseOutput {
	out := model.CaseOutput{
		ID:        rec.ID,
		Book:      rec.BookName,
		Character: rec.Character,
	}

	decision, err := p.Check(ctx, rec.Character, rec.BookName, rec.Backstory)
	if err != nil {
		if p.cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "Warning: case %s failed: %v\n", rec.ID, err)
		}
		out.Prediction = model.Consistent
		out.Rationale = "Error during verification: " + truncateMessage(err.Error(), errRationaleLimit)
		return out
	}

	out.Prediction = decision.Prediction
	out.Rationale = decision.Rationale
	return out
}

// indexFor returns the cached index for a book, building it on first use.
// Holding the lock across the build keeps concurrent case workers from
// embedding the same book twice.
func (p *Pipeline) indexFor(ctx context.Context, book string) (*index.Index, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ix, ok := p.indexes[book]; ok {
		return ix, nil
	}

	text, err := p.resolver.Load(book)
	if err != nil {
		return nil, fmt.Errorf("load book: %w", err)
	}
	chunks, err := p.chunker.Split(book, text)
	if err != nil {
		return nil, fmt.Errorf("chunk book %q: %w", book, err)
	}
	if p.cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Indexing %q: %d chunks\n", book, len(chunks))
	}
	ix, err := p.builder.Build(ctx, p.store, book, chunks)
	if err != nil {
		return nil, fmt.Errorf("index book %q: %w", book, err)
	}
	p.indexes[book] = ix
	return ix, nil
}

func truncateMessage(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
