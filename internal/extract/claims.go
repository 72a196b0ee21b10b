package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/psorokin/canonica/internal/llm"
	"github.com/psorokin/canonica/internal/model"
	"github.com/psorokin/canonica/internal/retry"
)

const claimsPromptTemplate = `You are extracting atomic claims.
Character: %s
Book: %s
Backstory:
"""%s"""

Task:
- Extract 5-7 atomic, verifiable claims about this character.
- Focus on traits, past events, relationships, skills, fears, and motivations.
- Each claim should be concise and checkable against the novel text.

Example format (JSON array of strings):
[
  "He trained as a medic during the uprising.",
  "She distrusts the royal court due to past betrayal."
]`

// ClaimExtractor decomposes a backstory into atomic, independently
// verifiable claims using one generation call.
type ClaimExtractor struct {
	provider    llm.Provider
	policy      retry.Policy
	temperature float64
}

// NewClaimExtractor creates a claim extractor.
func NewClaimExtractor(provider llm.Provider, policy retry.Policy, temperature float64) *ClaimExtractor {
	return &ClaimExtractor{
		provider:    provider,
		policy:      policy,
		temperature: temperature,
	}
}

// Extract prompts the model for claims and validates the response: it must
// parse to a JSON array, and non-string or empty entries are filtered out.
// The result keeps extraction order and may be shorter than requested.
func (e *ClaimExtractor) Extract(ctx context.Context, character, book, backstory string) ([]model.Claim, error) {
	if strings.TrimSpace(backstory) == "" {
		return nil, fmt.Errorf("backstory is empty")
	}

	prompt := fmt.Sprintf(claimsPromptTemplate, character, book, backstory)
	raw, err := retry.Do(ctx, e.policy, func(ctx context.Context) (string, error) {
		return e.provider.Generate(ctx, llm.GenerateRequest{
			Prompt:      prompt,
			Temperature: e.temperature,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("claim extraction call: %w", err)
	}

	arr, err := JSONArray(raw)
	if err != nil {
		return nil, fmt.Errorf("claim extraction response: %w", err)
	}

	var claims []model.Claim
	for _, entry := range arr {
		s, ok := entry.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		claims = append(claims, model.Claim{
			Text:  strings.TrimSpace(s),
			Index: len(claims),
		})
	}
	return claims, nil
}
