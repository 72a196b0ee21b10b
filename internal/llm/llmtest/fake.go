// Package llmtest provides a scriptable in-memory Provider for tests.
package llmtest

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/psorokin/canonica/internal/llm"
)

// FakeProvider is a deterministic Provider double. Generate pops scripted
// responses in order (or delegates to GenerateFunc); Embed returns a stable
// hash-derived vector unless EmbedFunc is set. Safe for concurrent use.
type FakeProvider struct {
	// Responses are returned by Generate in order when GenerateFunc is nil.
	Responses []string

	// GenerateFunc overrides scripted responses when set.
	GenerateFunc func(ctx context.Context, req llm.GenerateRequest) (string, error)

	// EmbedFunc overrides hash embeddings when set.
	EmbedFunc func(ctx context.Context, content string, task llm.EmbedTask) ([]float32, error)

	// Dim is the embedding dimension (default 8).
	Dim int

	mu            sync.Mutex
	generateCalls []llm.GenerateRequest
	embedCalls    []string
	next          int
}

// Name returns "fake".
func (p *FakeProvider) Name() string { return "fake" }

// IsAvailable always reports true.
func (p *FakeProvider) IsAvailable(ctx context.Context) bool { return true }

// Generate records the request and returns the next scripted response.
func (p *FakeProvider) Generate(ctx context.Context, req llm.GenerateRequest) (string, error) {
	p.mu.Lock()
	p.generateCalls = append(p.generateCalls, req)
	p.mu.Unlock()

	if p.GenerateFunc != nil {
		return p.GenerateFunc(ctx, req)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.next >= len(p.Responses) {
		return "", fmt.Errorf("fake provider: no scripted response for call %d", p.next+1)
	}
	resp := p.Responses[p.next]
	p.next++
	return resp, nil
}

// Embed records the content and returns a deterministic vector.
func (p *FakeProvider) Embed(ctx context.Context, content string, task llm.EmbedTask) ([]float32, error) {
	p.mu.Lock()
	p.embedCalls = append(p.embedCalls, content)
	p.mu.Unlock()

	if p.EmbedFunc != nil {
		return p.EmbedFunc(ctx, content, task)
	}
	dim := p.Dim
	if dim == 0 {
		dim = 8
	}
	return HashEmbedding(content, dim), nil
}

// GenerateCalls returns a copy of the recorded generation requests.
func (p *FakeProvider) GenerateCalls() []llm.GenerateRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]llm.GenerateRequest(nil), p.generateCalls...)
}

// EmbedCalls returns a copy of the recorded embedding inputs.
func (p *FakeProvider) EmbedCalls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.embedCalls...)
}

// HashEmbedding maps text to a stable pseudo-random unit-scale vector:
// identical text always produces an identical vector, distinct text almost
// always a distant one. Good enough to make nearest-neighbor assertions
// deterministic in tests.
func HashEmbedding(text string, dim int) []float32 {
	vec := make([]float32, dim)
	for i := range vec {
		h := fnv.New64a()
		_, _ = h.Write([]byte(text))
		_, _ = h.Write([]byte{byte(i)})
		// Scale the 64-bit hash into [-1, 1)
		vec[i] = float32(int64(h.Sum64()))/float32(1<<63)
	}
	return vec
}
