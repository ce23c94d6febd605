package fetch

import (
	"context"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 2 * time.Second
)

// Fetcher downloads remote files for the upload pipeline: cache-aware like
// EnsureLocal, but with bounded retry and an optional throttle delay before
// each network fetch.
type Fetcher struct {
	Client         *http.Client
	Logger         *zap.Logger
	MaxAttempts    int
	InitialBackoff time.Duration
	Delay          time.Duration
}

func NewFetcher(logger *zap.Logger, delay time.Duration) *Fetcher {
	return &Fetcher{
		Client:         http.DefaultClient,
		Logger:         logger,
		MaxAttempts:    defaultMaxAttempts,
		InitialBackoff: defaultInitialBackoff,
		Delay:          delay,
	}
}

// FetchFile downloads url to dest unless dest already exists. Failed
// attempts wait InitialBackoff doubled after each failure, up to MaxAttempts
// tries in total. The throttle delay is skipped on cache hits.
func (f *Fetcher) FetchFile(ctx context.Context, url, dest string) error {
	if fileExists(dest) {
		f.Logger.Info("download cached", zap.String("url", url), zap.String("path", dest))
		return nil
	}

	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = f.InitialBackoff
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0

	attempt := 0
	operation := func() error {
		attempt++
		return download(ctx, f.Client, url, dest)
	}
	notify := func(err error, wait time.Duration) {
		f.Logger.Warn("download attempt failed",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", wait),
			zap.Error(err))
	}

	err := backoff.RetryNotify(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(f.MaxAttempts-1)), ctx),
		notify,
	)
	if err != nil {
		// The notify hook only fires before a wait, so the last attempt
		// has to be logged here.
		f.Logger.Warn("download attempt failed",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Error(err))
		return &DownloadError{URL: url, Attempts: attempt, Err: err}
	}
	return nil
}
