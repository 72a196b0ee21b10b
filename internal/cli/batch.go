package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/psorokin/canonica/internal/dataset"
	"github.com/psorokin/canonica/internal/pipeline"
	"github.com/psorokin/canonica/internal/score"
	"github.com/psorokin/canonica/internal/worker"
)

var (
	batchOutput  string
	batchTimeout time.Duration
	concurrency  int
	caseDelay    time.Duration
	scoreAgainst bool
	noProgress   bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <cases.csv>",
	Short: "Verify a CSV of backstories and write a submission file",
	Long: `Batch verifies every case in a CSV (columns: id, book_name, char,
content, optionally label). Each book is chunked and indexed once per run and
shared across its cases. Output rows keep the input order, and a failed case
never aborts the batch: it degrades to a "consistent" prediction with the
failure recorded in the rationale.

Example:
  canonica batch cases.csv
  canonica batch validation.csv --score --concurrency 2
  canonica batch test.csv --output submission.csv --delay 1s`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchOutput, "output", "submission.csv", "output CSV path")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 6*time.Hour, "total timeout for the batch")
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "concurrent case workers (default from config)")
	batchCmd.Flags().DurationVar(&caseDelay, "delay", 0, "extra delay between case submissions")
	batchCmd.Flags().BoolVar(&scoreAgainst, "score", false, "score predictions against the label column")
	batchCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable progress bars")

	batchCmd.Flags().StringVar(&booksDir, "books-dir", "", "directory of novel .txt files")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (gemini, openai, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "generation model name")
	batchCmd.Flags().StringVar(&embeddingModel, "embedding-model", "", "embedding model name")
	batchCmd.Flags().IntVar(&topK, "top-k", 0, "passages retrieved per claim")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cases, err := dataset.ReadCasesFile(file)
	if err != nil {
		return fmt.Errorf("read cases: %w", err)
	}
	if len(cases) == 0 {
		return fmt.Errorf("no cases in %s", file)
	}

	cfg := buildConfig()
	applyPipelineFlags(cfg)
	if concurrency > 0 {
		cfg.Concurrency.CaseWorkers = concurrency
	}
	if caseDelay > 0 {
		cfg.Concurrency.CaseDelay = caseDelay
	}
	if noProgress {
		cfg.Output.Progress = false
	}
	if err := resolveAPIKey(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "Cases:   %d\n", len(cases))
	fmt.Fprintf(os.Stderr, "Workers: %d\n", cfg.Concurrency.CaseWorkers)
	fmt.Fprintf(os.Stderr, "Output:  %s\n\n", batchOutput)

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.CaseWorkers, cfg.Concurrency.CaseDelay, cfg.Output.Progress)
	outputs := processor.Process(ctx, cases)

	if err := dataset.WriteSubmissionFile(batchOutput, outputs); err != nil {
		return fmt.Errorf("write submission: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %d predictions to %s\n", len(outputs), batchOutput)

	if scoreAgainst {
		report, err := score.Evaluate(cases, outputs)
		if err != nil {
			return fmt.Errorf("score predictions: %w", err)
		}
		fmt.Fprintln(os.Stderr)
		report.Render(os.Stderr)
	}
	return nil
}
