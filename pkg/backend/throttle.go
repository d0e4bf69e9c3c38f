package backend

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RetryPolicy controls how rate-limit signals from the engine are handled.
// Retries reuse the same preprocessed buffer; preprocessing is deterministic
// and too expensive to redo.
type RetryPolicy struct {
	// MaxAttempts counts the first call too. Values below 1 mean 1.
	MaxAttempts int
	// BaseDelay doubles on every retry. A backend-supplied retry-after hint
	// wins over the computed delay when it is longer.
	BaseDelay time.Duration
}

// DefaultRetryPolicy mirrors the small fixed backoff used against metered
// OCR APIs: 3 attempts, 1s/2s between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}
}

// Throttled wraps a Backend with a client-side request-per-second gate and
// rate-limit retries. It implements Backend itself so the pipeline does not
// care whether it talks to a raw or a throttled engine.
type Throttled struct {
	inner   Backend
	limiter *rate.Limiter
	policy  RetryPolicy
}

// NewThrottled gates calls to inner at rps requests per second (0 disables
// the gate) and retries rate-limited calls per policy.
func NewThrottled(inner Backend, rps float64, policy RetryPolicy) *Throttled {
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Throttled{inner: inner, limiter: limiter, policy: policy}
}

// Recognize implements Backend.
func (t *Throttled) Recognize(ctx context.Context, jpegData []byte) (OcrResult, error) {
	delay := t.policy.BaseDelay
	var lastErr error
	for attempt := 0; attempt < t.policy.MaxAttempts; attempt++ {
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx); err != nil {
				return OcrResult{}, ErrTimeout
			}
		}
		res, err := t.inner.Recognize(ctx, jpegData)
		if err == nil {
			return res, nil
		}
		lastErr = err
		rl, ok := IsRateLimited(err)
		if !ok {
			return OcrResult{}, err
		}
		wait := delay
		if rl.RetryAfter > wait {
			wait = rl.RetryAfter
		}
		delay *= 2
		select {
		case <-ctx.Done():
			return OcrResult{}, ErrTimeout
		case <-time.After(wait):
		}
	}
	return OcrResult{}, lastErr
}

// Close implements Backend.
func (t *Throttled) Close() error { return t.inner.Close() }
