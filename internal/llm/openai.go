package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/psorokin/canonica/internal/retry"
)

// OpenAIProvider implements the Provider interface for OpenAI models.
// OpenAI embeddings are symmetric, so the task mode is accepted and ignored.
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured.
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	// Simple check: try to list models (lightweight API call)
	_, err := p.client.ListModels(ctx)
	if err != nil {
		// Log the actual error for debugging (this helps users diagnose API key issues)
		fmt.Fprintf(os.Stderr, "OpenAI API check failed: %v\n", err)
		return false
	}
	return true
}

// Generate produces text using the Chat Completions API.
func (p *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}

	ctxWithTimeout, cancel := p.callContext(ctx)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: float32(req.Temperature),
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Embed returns a vector using the Embeddings API.
func (p *OpenAIProvider) Embed(ctx context.Context, content string, task EmbedTask) ([]float32, error) {
	model := p.config.EmbeddingModel
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}

	ctxWithTimeout, cancel := p.callContext(ctx)
	defer cancel()

	resp, err := p.client.CreateEmbeddings(ctxWithTimeout, openai.EmbeddingRequestStrings{
		Input: []string{content},
		Model: openai.EmbeddingModel(model),
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("no embedding returned from OpenAI")
	}
	return resp.Data[0].Embedding, nil
}

// callContext applies the configured per-call timeout.
func (p *OpenAIProvider) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// classifyOpenAIError marks rate limits, server errors, and transport
// failures as transient so the retry policy backs off on them.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500 {
			return retry.Transient(fmt.Errorf("OpenAI API error: %w", err))
		}
		return fmt.Errorf("OpenAI API error: %w", err)
	}
	// Non-API failure: network error, timeout
	return retry.Transient(fmt.Errorf("OpenAI request failed: %w", err))
}
