package api

import (
	"context"
	"errors"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/billmal071/pavilion/internal/config"
)

// RetryConfig is the retry policy for idempotent requests. MaxAttempts
// counts the first try, so 1 or less means no retry.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
}

// DefaultRetryConfig returns retry config from app settings
func DefaultRetryConfig() RetryConfig {
	cfg := config.Get()
	return RetryConfig{
		MaxAttempts: cfg.Network.RetryAttempts,
		BaseDelay:   cfg.Network.RetryBaseDelay,
		MaxDelay:    cfg.Network.RetryMaxDelay,
		Multiplier:  cfg.Network.RetryMultiplier,
	}
}

// Retryable reports whether a failed request may be sent again. Status
// failures are retried only for 408, 429 and the 5xx gateway family;
// transport failures only when the connection itself broke.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.StatusCode != 0 {
		switch reqErr.StatusCode {
		case http.StatusRequestTimeout,
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNRESET)
}

// Backoff returns the wait after the zero-based failed attempt: BaseDelay
// grown by Multiplier per attempt and capped at MaxDelay, then shortened by
// up to a quarter at random.
func Backoff(attempt int, cfg RetryConfig) time.Duration {
	mult := cfg.Multiplier
	if mult < 1 {
		mult = 2
	}
	if attempt < 0 {
		attempt = 0
	}

	d := float64(cfg.BaseDelay) * math.Pow(mult, float64(attempt))
	if cfg.MaxDelay > 0 && d > float64(cfg.MaxDelay) {
		d = float64(cfg.MaxDelay)
	}
	d -= d * 0.25 * rand.Float64()
	return time.Duration(d)
}

// ParseRetryAfter reads a Retry-After header given in seconds or as an
// HTTP date. Missing, malformed or past values yield 0.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// nextDelay picks the wait before another attempt. A server-supplied
// Retry-After wins over backoff; one beyond MaxDelay ends the retries.
func nextDelay(attempt int, cfg RetryConfig, err error) (time.Duration, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.RetryAfter > 0 {
		if cfg.MaxDelay > 0 && reqErr.RetryAfter > cfg.MaxDelay {
			return 0, false
		}
		return reqErr.RetryAfter, true
	}
	return Backoff(attempt, cfg), true
}

// RetryOperation runs op until it succeeds, fails with a non-retryable
// error, or MaxAttempts is used up. At least one attempt is always made.
func RetryOperation(ctx context.Context, cfg RetryConfig, op func() error) error {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err = op(); err == nil {
			return nil
		}
		if attempt == attempts-1 || !Retryable(err) {
			return err
		}

		wait, ok := nextDelay(attempt, cfg, err)
		if !ok {
			return err
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}
