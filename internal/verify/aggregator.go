package verify

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/psorokin/canonica/internal/extract"
	"github.com/psorokin/canonica/internal/index"
	"github.com/psorokin/canonica/internal/model"
)

// Thresholds is the aggregation policy: the case flips to contradict only
// when at least MinContradictions results are contradictions above
// MinConfidence. The defaults reproduce the reference heuristic; it is kept
// configurable rather than treated as settled.
type Thresholds struct {
	MinContradictions int
	MinConfidence     float64
}

// DefaultThresholds returns the reference policy.
func DefaultThresholds() Thresholds {
	return Thresholds{MinContradictions: 2, MinConfidence: 0.65}
}

// Aggregator runs the full verification for one backstory: extract claims,
// verify each, aggregate into a decision. Claim verifications run under a
// bounded-concurrency group against the shared read-only index; results
// keep claim extraction order regardless of completion order.
type Aggregator struct {
	extractor  *extract.ClaimExtractor
	verifier   *Verifier
	thresholds Thresholds
	workers    int
	verbose    bool
}

// NewAggregator creates an aggregator. workers bounds concurrent claim
// verifications; values below 1 mean sequential.
func NewAggregator(extractor *extract.ClaimExtractor, verifier *Verifier, thresholds Thresholds, workers int, verbose bool) *Aggregator {
	if thresholds.MinContradictions <= 0 {
		thresholds = DefaultThresholds()
	}
	if workers < 1 {
		workers = 1
	}
	return &Aggregator{
		extractor:  extractor,
		verifier:   verifier,
		thresholds: thresholds,
		workers:    workers,
		verbose:    verbose,
	}
}

// Decide runs the per-case state machine: claims are extracted once, every
// claim is verified, and the verdicts are folded into a Decision. A single
// claim's failure degrades to a contradict-leaning placeholder with zero
// confidence instead of aborting the case; claim-extraction failure
// propagates to the caller.
func (a *Aggregator) Decide(ctx context.Context, character, book, backstory string, ix *index.Index) (*model.Decision, error) {
	claims, err := a.extractor.Extract(ctx, character, book, backstory)
	if err != nil {
		return nil, fmt.Errorf("extract claims: %w", err)
	}
	if a.verbose {
		fmt.Fprintf(os.Stderr, "Extracted %d claim(s) for %s\n", len(claims), character)
	}

	results := make([]model.VerificationResult, len(claims))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for _, claim := range claims {
		g.Go(func() error {
			res, err := a.verifier.Verify(gctx, character, book, claim, ix)
			if err != nil {
				// Fail-open at claim granularity: keep the claim on the
				// books with a zero-confidence contradict placeholder.
				if a.verbose {
					fmt.Fprintf(os.Stderr, "Warning: claim %d verification failed: %v\n", claim.Index, err)
				}
				res = model.VerificationResult{
					Claim:       claim.Text,
					Consistency: model.Contradict,
					Confidence:  0.0,
					Reasoning:   fmt.Sprintf("Error during check: %v", err),
					KeyEvidence: "",
				}
			}
			results[claim.Index] = res
			return nil
		})
	}
	// Workers never return errors; Wait only observes context cancellation.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prediction := a.aggregate(results)
	return &model.Decision{
		Prediction:   prediction,
		Rationale:    a.rationale(results, prediction),
		ClaimResults: results,
		Character:    character,
		Book:         book,
	}, nil
}

// aggregate applies the threshold policy over the claim verdicts.
func (a *Aggregator) aggregate(results []model.VerificationResult) model.Consistency {
	contradictions := 0
	for _, r := range results {
		if r.Consistency == model.Contradict && r.Confidence > a.thresholds.MinConfidence {
			contradictions++
		}
	}
	if contradictions >= a.thresholds.MinContradictions {
		return model.Contradict
	}
	return model.Consistent
}

// rationale builds the one-line justification for the final label.
func (a *Aggregator) rationale(results []model.VerificationResult, prediction model.Consistency) string {
	if prediction == model.Contradict {
		var strongest *model.VerificationResult
		for i := range results {
			r := &results[i]
			if r.Consistency != model.Contradict {
				continue
			}
			if strongest == nil || r.Confidence > strongest.Confidence {
				strongest = r
			}
		}
		if strongest != nil {
			return "Found multiple high-confidence contradictions; strongest evidence: " + evidenceOrReasoning(*strongest)
		}
		return "Multiple claims conflict with the novel text."
	}

	for _, r := range results {
		if r.Consistency == model.Consistent {
			return "Backstory aligns with character actions; evidence: " + evidenceOrReasoning(r)
		}
	}
	return "Backstory is generally aligned with the novel."
}

func evidenceOrReasoning(r model.VerificationResult) string {
	if r.KeyEvidence != "" {
		return r.KeyEvidence
	}
	return r.Reasoning
}
