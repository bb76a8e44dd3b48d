// Package ratelimit wraps the upstream weather clients with token-bucket
// rate limiting so a chatty presentation layer cannot exhaust provider
// quotas.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/weather-notify/internal/domain"
)

// ForecastFetcher is the forecast client surface being decorated.
type ForecastFetcher interface {
	Fetch(ctx context.Context, location string) (domain.Forecast, error)
}

// ConditionsFetcher is the current-conditions client surface being decorated.
type ConditionsFetcher interface {
	Fetch(ctx context.Context, city string) (domain.Conditions, error)
}

// Forecast rate-limits a ForecastFetcher.
type Forecast struct {
	inner   ForecastFetcher
	limiter *rate.Limiter
}

// NewForecast wraps a forecast client. rps may be fractional for less than
// one request per second; burst is the maximum burst size.
func NewForecast(inner ForecastFetcher, rps float64, burst int) *Forecast {
	return &Forecast{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Fetch waits for limiter permission or context cancellation, then forwards.
func (f *Forecast) Fetch(ctx context.Context, location string) (domain.Forecast, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return domain.Forecast{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return f.inner.Fetch(ctx, location)
}

// Conditions rate-limits a ConditionsFetcher.
type Conditions struct {
	inner   ConditionsFetcher
	limiter *rate.Limiter
}

// NewConditions wraps a current-conditions client.
func NewConditions(inner ConditionsFetcher, rps float64, burst int) *Conditions {
	return &Conditions{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Fetch waits for limiter permission or context cancellation, then forwards.
func (c *Conditions) Fetch(ctx context.Context, city string) (domain.Conditions, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.Conditions{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return c.inner.Fetch(ctx, city)
}
