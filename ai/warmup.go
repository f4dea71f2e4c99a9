package ai

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Warm-up polling bounds. The embedding model may take a while to load on
// first use; after WarmupAttempts failed probes the subsystem is reported as
// not ready rather than blocking the caller indefinitely.
const (
	WarmupAttempts = 10
	WarmupInterval = 500 * time.Millisecond
)

// ErrNotReady indicates the embedding subsystem did not come up within the
// bounded warm-up window. It is a "try again" condition, not a fatal error.
var ErrNotReady = errors.New("embedding service not ready")

// Warmup probes the embedder until it answers or the attempt budget runs
// out. Each probe embeds a short fixed string; the result is discarded.
func Warmup(ctx context.Context, embedder Embedder) error {
	if embedder == nil {
		return ErrNotReady
	}
	var lastErr error
	for attempt := 0; attempt < WarmupAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(WarmupInterval):
			}
		}
		if _, err := embedder.EmbedText(ctx, "warmup"); err != nil {
			lastErr = err
			slog.Debug("embedder warmup probe failed", "attempt", attempt+1, "err", err)
			continue
		}
		return nil
	}
	slog.Warn("embedder did not warm up", "attempts", WarmupAttempts, "err", lastErr)
	return ErrNotReady
}
