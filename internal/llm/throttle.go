package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// ThrottledProvider wraps a Provider with a token-bucket rate limit so a
// batch of cases cannot exceed the upstream quota. All calls share one
// limiter; waiting respects context cancellation.
type ThrottledProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// Throttle wraps provider with the given call rate. A non-positive rate
// returns the provider unchanged.
func Throttle(provider Provider, callsPerSecond float64, burst int) Provider {
	if callsPerSecond <= 0 {
		return provider
	}
	if burst <= 0 {
		burst = 1
	}
	return &ThrottledProvider{
		inner:   provider,
		limiter: rate.NewLimiter(rate.Limit(callsPerSecond), burst),
	}
}

// Name returns the wrapped provider's name.
func (p *ThrottledProvider) Name() string {
	return p.inner.Name()
}

// Generate waits for rate limit clearance, then delegates.
func (p *ThrottledProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return p.inner.Generate(ctx, req)
}

// Embed waits for rate limit clearance, then delegates.
func (p *ThrottledProvider) Embed(ctx context.Context, content string, task EmbedTask) ([]float32, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.inner.Embed(ctx, content, task)
}

// IsAvailable delegates without taking a rate token.
func (p *ThrottledProvider) IsAvailable(ctx context.Context) bool {
	return p.inner.IsAvailable(ctx)
}
