// Package verify judges claims against the indexed novel and aggregates the
// per-claim verdicts into a final decision.
package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/psorokin/canonica/internal/extract"
	"github.com/psorokin/canonica/internal/index"
	"github.com/psorokin/canonica/internal/llm"
	"github.com/psorokin/canonica/internal/model"
	"github.com/psorokin/canonica/internal/retrieval"
	"github.com/psorokin/canonica/internal/retry"
)

// noPassagesMarker stands in for the passage block when retrieval finds
// nothing, so the model knows it is judging without evidence.
const noPassagesMarker = "No passages found."

const verifyPromptTemplate = `You are verifying backstory consistency.

Character: %s
Book: %s
Claim to verify: "%s"

Retrieved passages:
%s

Instructions:
- Check for DIRECT CONTRADICTIONS (explicit conflicts).
- Check CAUSAL CONSISTENCY (does this past make future events plausible?).
- Check BEHAVIORAL PATTERNS (does backstory explain actions?).
- Decide if the character could have this backstory given the text.

Examples of CONSISTENT:
- Claim: "She was a skilled navigator." Passages show her guiding ships successfully.
- Claim: "He vowed to protect his sister." Passages show him guarding her in danger.

Examples of INCONSISTENT:
- Claim: "He loves the monarchy." Passages show he led a revolt against the king.
- Claim: "She never left her village." Passages show her traveling abroad for years.

Return JSON with:
{
  "consistency": "consistent" or "contradict",
  "confidence": float between 0.0 and 1.0,
  "reasoning": "detailed explanation",
  "key_evidence": "most relevant passage"
}`

// Verifier checks a single claim against the index: retrieve passages,
// prompt the model for a structured verdict, validate it at the boundary.
type Verifier struct {
	retriever   *retrieval.Retriever
	provider    llm.Provider
	policy      retry.Policy
	topK        int
	temperature float64
}

// NewVerifier creates a claim verifier.
func NewVerifier(retriever *retrieval.Retriever, provider llm.Provider, policy retry.Policy, topK int, temperature float64) *Verifier {
	if topK <= 0 {
		topK = retrieval.DefaultTopK
	}
	return &Verifier{
		retriever:   retriever,
		provider:    provider,
		policy:      policy,
		topK:        topK,
		temperature: temperature,
	}
}

// Verify judges one claim. The verdict's consistency field must be exactly
// "consistent" or "contradict" (hard failure otherwise); missing
// key_evidence defaults to the top retrieved passage, missing confidence to
// 0.0, missing reasoning to "".
func (v *Verifier) Verify(ctx context.Context, character, book string, claim model.Claim, ix *index.Index) (model.VerificationResult, error) {
	var zero model.VerificationResult
	if strings.TrimSpace(claim.Text) == "" {
		return zero, fmt.Errorf("claim is empty")
	}

	query := fmt.Sprintf("%s: %s", character, claim.Text)
	passages, err := v.retriever.Retrieve(ctx, ix, query, v.topK)
	if err != nil {
		return zero, fmt.Errorf("retrieve passages: %w", err)
	}

	prompt := fmt.Sprintf(verifyPromptTemplate, character, book, claim.Text, formatPassages(passages))
	raw, err := retry.Do(ctx, v.policy, func(ctx context.Context) (string, error) {
		return v.provider.Generate(ctx, llm.GenerateRequest{
			Prompt:      prompt,
			Temperature: v.temperature,
		})
	})
	if err != nil {
		return zero, fmt.Errorf("verification call: %w", err)
	}

	obj, err := extract.JSONObject(raw)
	if err != nil {
		return zero, fmt.Errorf("verification response: %w", err)
	}
	return buildResult(claim.Text, obj, passages)
}

// formatPassages renders retrieval hits as a ranked, numbered list with
// score and source position for model consumption.
func formatPassages(passages []model.Passage) string {
	if len(passages) == 0 {
		return noPassagesMarker
	}
	var sb strings.Builder
	for i, p := range passages {
		fmt.Fprintf(&sb, "[%d] (score=%.4f, pos=%d) %s\n", i+1, p.Distance, p.Position, p.Text)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// buildResult validates the parsed verdict and fills documented defaults.
func buildResult(claim string, obj map[string]interface{}, passages []model.Passage) (model.VerificationResult, error) {
	var zero model.VerificationResult

	consistency, _ := obj["consistency"].(string)
	verdict := model.Consistency(consistency)
	if !verdict.Valid() {
		return zero, fmt.Errorf("consistency must be %q or %q, got %q", model.Consistent, model.Contradict, consistency)
	}

	confidence := 0.0
	if c, ok := obj["confidence"].(float64); ok {
		confidence = c
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	reasoning, _ := obj["reasoning"].(string)

	keyEvidence, _ := obj["key_evidence"].(string)
	if keyEvidence == "" && len(passages) > 0 {
		keyEvidence = passages[0].Text
	}

	return model.VerificationResult{
		Claim:       claim,
		Consistency: verdict,
		Confidence:  confidence,
		Reasoning:   reasoning,
		KeyEvidence: keyEvidence,
	}, nil
}
