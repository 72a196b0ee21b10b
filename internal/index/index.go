// Package index builds the per-book embedding index searched during claim
// verification. An index is built once per run from freshly chunked text and
// never mixes chunks from two indexing passes.
package index

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/psorokin/canonica/internal/llm"
	"github.com/psorokin/canonica/internal/model"
	"github.com/psorokin/canonica/internal/retry"
	"github.com/psorokin/canonica/internal/store"
)

// ErrNoChunks is returned when every chunk failed to embed: there is
// nothing to search, so the build is fatal.
var ErrNoChunks = errors.New("failed to index any chunks due to embedding errors")

// Index is a searchable embedding collection for one book. Read-only after
// Build returns, so it is safe to share across concurrent claim
// verifications.
type Index struct {
	store      *store.Store
	collection string
	book       string
	size       int
	skipped    int
}

// Collection returns the sanitized collection name.
func (ix *Index) Collection() string { return ix.collection }

// Book returns the original book name.
func (ix *Index) Book() string { return ix.book }

// Size returns the number of chunks that made it into the index.
func (ix *Index) Size() int { return ix.size }

// Skipped returns the number of chunks dropped due to embedding failures.
func (ix *Index) Skipped() int { return ix.skipped }

// Query returns up to topK entries nearest to the embedding, nearest first.
// An empty index yields an empty result, not an error.
func (ix *Index) Query(embedding []float32, topK int) ([]store.SearchResult, error) {
	return ix.store.Search(ix.collection, embedding, topK)
}

// Builder embeds chunks and assembles indexes. Embedding calls run in
// document mode through the retry policy; a chunk that still fails is
// skipped with a warning rather than failing the build.
type Builder struct {
	provider llm.Provider
	policy   retry.Policy
	progress bool
	verbose  bool
}

// NewBuilder creates an index builder.
func NewBuilder(provider llm.Provider, policy retry.Policy, progress, verbose bool) *Builder {
	return &Builder{
		provider: provider,
		policy:   policy,
		progress: progress,
		verbose:  verbose,
	}
}

// Build embeds the chunks and installs them as the collection for bookName,
// replacing any previous collection of the same name only after the new
// entries are ready, so a run never searches partially-built state.
func (b *Builder) Build(ctx context.Context, st *store.Store, bookName string, chunks []model.Chunk) (*Index, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks to index for book %q", bookName)
	}
	collection := store.SanitizeCollectionName(bookName)

	var bar *progressbar.ProgressBar
	if b.progress {
		bar = progressbar.NewOptions(len(chunks),
			progressbar.OptionSetDescription(fmt.Sprintf("Indexing %s", collection)),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	entries := make([]store.Entry, 0, len(chunks))
	skipped := 0
	for _, chunk := range chunks {
		embedding, err := retry.Do(ctx, b.policy, func(ctx context.Context) ([]float32, error) {
			return b.provider.Embed(ctx, chunk.Text, llm.TaskDocument)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			skipped++
			fmt.Fprintf(os.Stderr, "Warning: skipping chunk %d of %q: %v\n", chunk.Position, bookName, err)
		} else {
			entries = append(entries, store.Entry{
				ID:       chunk.ID(),
				Document: chunk.Text,
				Position: chunk.Position,
				BookName: chunk.BookName,
				Length:   chunk.Length,
				Vector:   embedding,
			})
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("index %q: %w", bookName, ErrNoChunks)
	}

	// Replace any stale collection only now that the new entries exist.
	if err := st.DropCollection(collection); err != nil {
		return nil, err
	}
	if err := st.CreateCollection(collection); err != nil {
		return nil, err
	}
	if err := st.Upsert(collection, entries); err != nil {
		return nil, err
	}

	if b.verbose {
		fmt.Fprintf(os.Stderr, "Indexed %d chunk(s) into collection %q (%d skipped)\n",
			len(entries), collection, skipped)
	}

	return &Index{
		store:      st,
		collection: collection,
		book:       bookName,
		size:       len(entries),
		skipped:    skipped,
	}, nil
}
