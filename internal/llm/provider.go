// Package llm provides the embedding and generation providers used by the
// verification engine. All providers distinguish transient failures (rate
// limits, network errors, 5xx) from permanent ones so the retry policy can
// back off on the former and surface the latter immediately.
package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/psorokin/canonica/internal/model"
	"github.com/psorokin/canonica/internal/retry"
)

// EmbedTask selects the semantic embedding mode. Providers may compute
// asymmetric embeddings for indexing versus querying.
type EmbedTask string

const (
	// TaskDocument embeds a passage for indexing.
	TaskDocument EmbedTask = "retrieval_document"
	// TaskQuery embeds a query for searching.
	TaskQuery EmbedTask = "retrieval_query"
)

// GenerateRequest contains the input for text generation.
type GenerateRequest struct {
	// Prompt is the full prompt text.
	Prompt string

	// Model overrides the configured generation model when set.
	Model string

	// Temperature controls sampling; the verification prompts run cold.
	Temperature float64

	// MaxTokens limits the response length.
	MaxTokens int
}

// Provider defines the interface for embedding/generation providers.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate produces free-form text for a prompt
	Generate(ctx context.Context, req GenerateRequest) (string, error)

	// Embed returns a fixed-dimension vector for the content in the given task mode
	Embed(ctx context.Context, content string, task EmbedTask) ([]float32, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Config holds provider configuration.
type Config struct {
	// Provider name: "gemini", "openai", "ollama"
	Provider string

	// Model is the generation model name (provider-specific)
	Model string

	// EmbeddingModel is the embedding model name (provider-specific)
	EmbeddingModel string

	// APIKey for Gemini/OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, test servers)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// Temperature for generation
	Temperature float64

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:       "gemini",
		Model:          "gemini-2.0-flash-exp",
		EmbeddingModel: "text-embedding-004",
		Timeout:        60,
		Temperature:    0.2,
		MaxTokens:      1024,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config.
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:       mc.Provider,
		Model:          mc.Model,
		EmbeddingModel: mc.EmbeddingModel,
		APIKey:         mc.APIKey,
		BaseURL:        mc.BaseURL,
		Timeout:        mc.Timeout,
		Temperature:    mc.Temperature,
		MaxTokens:      mc.MaxTokens,
	}
}

// statusError converts a non-2xx API response into an error, marking rate
// limits and server errors as transient.
func statusError(provider string, status int, body []byte) error {
	err := fmt.Errorf("%s API returned status %d: %s", provider, status, truncate(string(body), 200))
	if status == http.StatusTooManyRequests || status >= 500 {
		return retry.Transient(err)
	}
	return err
}

// netError wraps a transport-level failure as transient.
func netError(provider string, err error) error {
	return retry.Transient(fmt.Errorf("%s request failed: %w", provider, err))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
