package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitProvider refuses requests beyond the configured rate instead of queueing them.
type RateLimitProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithRateLimit wraps p with a token bucket. A non-positive rate returns p unchanged.
func WithRateLimit(p Provider, cfg RateLimitConfig) Provider {
	if cfg.RequestsPerSecond <= 0 {
		return p
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitProvider{inner: p, limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)}
}

func (r *RateLimitProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if !r.limiter.Allow() {
		return nil, &ErrRateLimit{Err: fmt.Errorf("local limit of %.2f requests/s reached", float64(r.limiter.Limit()))}
	}
	return r.inner.Generate(ctx, req)
}

func (r *RateLimitProvider) ModelID() string {
	return r.inner.ModelID()
}
