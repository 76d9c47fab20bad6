package ratelimit

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter enforces a weight budget per period. Routes with a higher
// request cost consume proportionally more of the budget.
type RateLimiter struct {
	limiter *rate.Limiter
	weight  int
	period  time.Duration
	metrics *Metrics
}

// Metrics tracks statistics about rate limiter usage.
type Metrics struct {
	totalRequests   atomic.Int64
	allowedRequests atomic.Int64
	deniedRequests  atomic.Int64
	consumedWeight  atomic.Int64
}

// New creates a RateLimiter allowing the given total weight per period.
func New(weight int, period time.Duration) *RateLimiter {
	perSecond := float64(weight) / period.Seconds()
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(perSecond), weight),
		weight:  weight,
		period:  period,
		metrics: &Metrics{},
	}
}

// Wait blocks until a weight of 1 is available or the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.WaitWeight(ctx, 1)
}

// WaitWeight blocks until the given weight is available or the context is
// cancelled. A non-positive weight is treated as 1.
func (r *RateLimiter) WaitWeight(ctx context.Context, weight int) error {
	if weight <= 0 {
		weight = 1
	}
	r.metrics.totalRequests.Add(1)
	if err := r.limiter.WaitN(ctx, weight); err != nil {
		r.metrics.deniedRequests.Add(1)
		return err
	}
	r.metrics.allowedRequests.Add(1)
	r.metrics.consumedWeight.Add(int64(weight))
	return nil
}

// Allow reports whether a weight of 1 is immediately available.
func (r *RateLimiter) Allow() bool {
	r.metrics.totalRequests.Add(1)
	allowed := r.limiter.Allow()
	if allowed {
		r.metrics.allowedRequests.Add(1)
		r.metrics.consumedWeight.Add(1)
	} else {
		r.metrics.deniedRequests.Add(1)
	}
	return allowed
}

// SetLimit updates the weight budget per period.
func (r *RateLimiter) SetLimit(weight int, period time.Duration) {
	r.weight = weight
	r.period = period
	perSecond := float64(weight) / period.Seconds()
	r.limiter.SetLimit(rate.Limit(perSecond))
	r.limiter.SetBurst(weight)
}

// Metrics returns a snapshot of the current rate limiter statistics.
func (r *RateLimiter) Metrics() MetricsSnapshot {
	return MetricsSnapshot{
		TotalRequests:   r.metrics.totalRequests.Load(),
		AllowedRequests: r.metrics.allowedRequests.Load(),
		DeniedRequests:  r.metrics.deniedRequests.Load(),
		ConsumedWeight:  r.metrics.consumedWeight.Load(),
	}
}

// MetricsSnapshot is a point-in-time capture of rate limiter statistics.
type MetricsSnapshot struct {
	// TotalRequests is the total number of rate limit checks performed.
	TotalRequests int64
	// AllowedRequests is the number of requests that were allowed.
	AllowedRequests int64
	// DeniedRequests is the number of requests that were denied.
	DeniedRequests int64
	// ConsumedWeight is the total weight consumed by allowed requests.
	ConsumedWeight int64
}
