package worker

import (
	"context"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/psorokin/canonica/internal/model"
)

// CaseRunner verifies one case. It must not fail: errors degrade into the
// returned output's rationale.
type CaseRunner interface {
	RunCase(ctx context.Context, rec model.CaseRecord) model.CaseOutput
}

// CaseJob carries one case through the pool, tagged with its input position.
type CaseJob struct {
	Index  int
	Record model.CaseRecord
	Runner CaseRunner
}

// Execute runs the case.
func (j *CaseJob) Execute(ctx context.Context) Result {
	return &CaseResult{Index: j.Index, Output: j.Runner.RunCase(ctx, j.Record)}
}

// CaseResult is the positioned output of one case.
type CaseResult struct {
	Index  int
	Output model.CaseOutput
}

// BatchProcessor runs many cases concurrently while keeping the output
// slice aligned with the input order.
type BatchProcessor struct {
	runner      CaseRunner
	concurrency int
	delay       time.Duration
	progress    bool
}

// NewBatchProcessor creates a batch processor. delay spaces out case
// submissions to stay friendly to provider rate limits; progress renders a
// bar on stderr.
func NewBatchProcessor(runner CaseRunner, concurrency int, delay time.Duration, progress bool) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
		delay:       delay,
		progress:    progress,
	}
}

// Process verifies all cases and returns one output per input, in input
// order. Cancellation does not shorten the slice: remaining cases degrade
// through the runner's error handling.
func (b *BatchProcessor) Process(ctx context.Context, cases []model.CaseRecord) []model.CaseOutput {
	outputs := make([]model.CaseOutput, len(cases))
	if len(cases) == 0 {
		return outputs
	}

	pool := NewPool(b.concurrency)
	pool.Start(ctx)

	go func() {
		defer pool.Done()
		for i, rec := range cases {
			if i > 0 && b.delay > 0 && ctx.Err() == nil {
				select {
				case <-ctx.Done():
				case <-time.After(b.delay):
				}
			}
			pool.Submit(&CaseJob{Index: i, Record: rec, Runner: b.runner})
		}
	}()

	var bar *progressbar.ProgressBar
	if b.progress {
		bar = progressbar.NewOptions(len(cases),
			progressbar.OptionSetDescription("Verifying cases"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	for res := range pool.Results() {
		cr := res.(*CaseResult)
		outputs[cr.Index] = cr.Output
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return outputs
}
