package model

import "time"

// Config is the complete Canonica configuration.
//
// Hierarchy (highest to lowest priority): CLI flags, environment variables
// (CANONICA_* plus provider API keys), config file (~/.canonica/config.yaml),
// defaults from DefaultConfig.
type Config struct {
	Chunking    ChunkingConfig    `yaml:"chunking"`
	LLM         LLMConfig         `yaml:"llm"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Verify      VerifyConfig      `yaml:"verify"`
	Retry       RetryConfig       `yaml:"retry"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Books       BooksConfig       `yaml:"books"`
	Output      OutputConfig      `yaml:"output"`
}

// ChunkingConfig controls how novel text is split into word windows.
type ChunkingConfig struct {
	ChunkSize int `yaml:"chunk_size"` // Window size in words
	Overlap   int `yaml:"overlap"`    // Words shared by consecutive windows; must be < ChunkSize
}

// LLMConfig selects and configures the embedding/generation provider.
type LLMConfig struct {
	Provider       string  `yaml:"provider"`        // "gemini", "openai", "ollama"
	Model          string  `yaml:"model"`           // Generation model name (provider-specific)
	EmbeddingModel string  `yaml:"embedding_model"` // Embedding model name (provider-specific)
	APIKey         string  `yaml:"-"`               // Never serialized; from env only
	BaseURL        string  `yaml:"base_url"`        // Custom endpoint (e.g. Ollama)
	Timeout        int     `yaml:"timeout"`         // Seconds per API call
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	RatePerSecond  float64 `yaml:"rate_per_second"` // Provider call rate limit
	RateBurst      int     `yaml:"rate_burst"`
}

// RetrievalConfig controls nearest-neighbor passage retrieval.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"` // Passages retrieved per claim
}

// VerifyConfig holds the aggregation thresholds. The defaults reproduce the
// reference policy (at least 2 contradictions above 0.65 confidence) but are
// deliberately configurable rather than settled domain truth.
type VerifyConfig struct {
	MinContradictions int     `yaml:"min_contradictions"` // Contradictions required to flip the case
	MinConfidence     float64 `yaml:"min_confidence"`     // Confidence floor for a contradiction to count
}

// RetryConfig controls the exponential-backoff policy for external calls.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	Multiplier  float64       `yaml:"multiplier"`
}

// ConcurrencyConfig bounds parallelism at both granularities.
type ConcurrencyConfig struct {
	CaseWorkers  int           `yaml:"case_workers"`  // Concurrent cases in a batch
	ClaimWorkers int           `yaml:"claim_workers"` // Concurrent claim verifications per case
	CaseDelay    time.Duration `yaml:"case_delay"`    // Extra delay between case submissions
}

// BooksConfig locates the novel texts.
type BooksConfig struct {
	Dir      string        `yaml:"dir"`       // Directory of .txt novels
	CacheTTL time.Duration `yaml:"cache_ttl"` // Book text cache lifetime
}

// OutputConfig controls reporting.
type OutputConfig struct {
	Verbose  bool `yaml:"verbose"`
	Progress bool `yaml:"progress"` // Show progress bars during indexing and batches
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			ChunkSize: 3000,
			Overlap:   500,
		},
		LLM: LLMConfig{
			Provider:       "gemini",
			Model:          "gemini-2.0-flash-exp",
			EmbeddingModel: "text-embedding-004",
			Timeout:        60,
			Temperature:    0.2,
			MaxTokens:      1024,
			RatePerSecond:  2,
			RateBurst:      4,
		},
		Retrieval: RetrievalConfig{
			TopK: 7,
		},
		Verify: VerifyConfig{
			MinContradictions: 2,
			MinConfidence:     0.65,
		},
		Retry: RetryConfig{
			MaxAttempts: 5,
			BaseDelay:   time.Second,
			Multiplier:  2,
		},
		Concurrency: ConcurrencyConfig{
			CaseWorkers:  1,
			ClaimWorkers: 1,
			CaseDelay:    500 * time.Millisecond,
		},
		Books: BooksConfig{
			Dir:      "./books",
			CacheTTL: time.Hour,
		},
		Output: OutputConfig{
			Verbose:  false,
			Progress: true,
		},
	}
}
