package llm

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// retryBudget is how many more times a failure may be retried.
type retryBudget int

const (
	retryNever retryBudget = iota
	retryOnce
	retryAlways
)

// budgetFor classifies a failed attempt. Blocked, rejected and truncated
// requests are final. A malformed structured answer is retried once.
// Anything else is transient.
func budgetFor(err error) retryBudget {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retryNever
	}
	var (
		blocked   *ErrContentBlocked
		rejected  *ErrRequestRejected
		truncated *ErrMaxTokensExceeded
		invalid   *ErrInvalidResponse
	)
	switch {
	case errors.As(err, &blocked), errors.As(err, &rejected), errors.As(err, &truncated):
		return retryNever
	case errors.As(err, &invalid):
		return retryOnce
	}
	return retryAlways
}

// RetryProvider resends transient failures with exponential backoff and
// ±20% jitter, up to MaxAttempts calls in total.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	logger *slog.Logger
}

// WithRetry wraps p with retries. logger may be nil.
func WithRetry(p Provider, cfg RetryConfig, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryProvider{inner: p, config: cfg, logger: logger}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	retriedInvalid := false
	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		budget := budgetFor(err)
		if budget == retryOnce {
			if retriedInvalid {
				budget = retryNever
			}
			retriedInvalid = true
		}
		if budget == retryNever || attempt >= r.config.MaxAttempts {
			return nil, err
		}

		wait := r.wait(attempt, err)
		r.logger.Debug("retrying llm request",
			"purpose", PurposeFrom(ctx),
			"attempt", attempt,
			"wait", wait,
			"error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// wait is the pause after the given 1-based attempt. A rate limit's
// Retry-After wins over the computed backoff.
func (r *RetryProvider) wait(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	d := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt-1))
	d = min(d, float64(r.config.MaxWait))
	return time.Duration(d * (0.8 + 0.4*rand.Float64()))
}
