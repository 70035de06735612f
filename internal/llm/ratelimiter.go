package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedProvider holds requests back so that at most rpm start per
// minute. Up to rpm requests may start at once after an idle minute.
type RateLimitedProvider struct {
	Provider
	limiter *rate.Limiter
}

// NewRateLimitedProvider wraps provider with a limit of rpm requests per
// minute.
func NewRateLimitedProvider(provider Provider, rpm int) Provider {
	return &RateLimitedProvider{
		Provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(float64(rpm)/60), rpm),
	}
}

func (r *RateLimitedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s rate limit: %w", r.Name(), err)
	}
	return r.Provider.Complete(ctx, req)
}
