package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/psorokin/canonica/internal/model"
	"github.com/psorokin/canonica/internal/pipeline"
)

var (
	checkBook      string
	checkCharacter string
	checkBackstory string
	checkFile      string
	checkTimeout   time.Duration
	booksDir       string
	llmProvider    string
	llmModel       string
	embeddingModel string
	topK           int
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify a single backstory against its novel",
	Long: `Check verifies one character backstory:
- Load and chunk the novel from the books directory
- Build an embedding index over the chunks
- Extract the backstory's atomic claims
- Retrieve relevant passages and judge each claim
- Aggregate the verdicts into consistent/contradict

Example:
  canonica check --book "The Count of Monte Cristo" --character Edmond \
      --backstory "Born in Marseille, he spent years as a sailor."
  canonica check --book "In Search of the Castaways" --character Mary \
      --backstory-file backstory.txt`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkBook, "book", "", "book name (required)")
	checkCmd.Flags().StringVar(&checkCharacter, "character", "", "character name (required)")
	checkCmd.Flags().StringVar(&checkBackstory, "backstory", "", "backstory text")
	checkCmd.Flags().StringVar(&checkFile, "backstory-file", "", "read backstory text from file")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 10*time.Minute, "overall check timeout")
	checkCmd.Flags().StringVar(&booksDir, "books-dir", "", "directory of novel .txt files")
	checkCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (gemini, openai, ollama)")
	checkCmd.Flags().StringVar(&llmModel, "llm-model", "", "generation model name")
	checkCmd.Flags().StringVar(&embeddingModel, "embedding-model", "", "embedding model name")
	checkCmd.Flags().IntVar(&topK, "top-k", 0, "passages retrieved per claim")

	_ = checkCmd.MarkFlagRequired("book")
	_ = checkCmd.MarkFlagRequired("character")
}

func runCheck(cmd *cobra.Command, args []string) error {
	backstory := checkBackstory
	if checkFile != "" {
		data, err := os.ReadFile(checkFile)
		if err != nil {
			return fmt.Errorf("read backstory file: %w", err)
		}
		backstory = string(data)
	}
	if backstory == "" {
		return fmt.Errorf("provide --backstory or --backstory-file")
	}

	cfg := buildConfig()
	applyPipelineFlags(cfg)
	if err := resolveAPIKey(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	decision, err := p.Check(ctx, checkCharacter, checkBook, backstory)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	fmt.Printf("Prediction: %s\n", decision.Prediction)
	fmt.Printf("Rationale:  %s\n", decision.Rationale)
	if verbose {
		fmt.Println("\nClaims:")
		for i, r := range decision.ClaimResults {
			fmt.Printf("  [%d] %s\n", i+1, r.Claim)
			fmt.Printf("      %s (%.2f): %s\n", r.Consistency, r.Confidence, r.Reasoning)
		}
	}
	return nil
}

// applyPipelineFlags lays command flags over the file/default configuration.
func applyPipelineFlags(cfg *model.Config) {
	if booksDir != "" {
		cfg.Books.Dir = booksDir
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if embeddingModel != "" {
		cfg.LLM.EmbeddingModel = embeddingModel
	}
	if topK > 0 {
		cfg.Retrieval.TopK = topK
	}
}
