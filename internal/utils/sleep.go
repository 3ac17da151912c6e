package utils

import (
	"context"
	"time"
)

// Wait pauses for d or until ctx is done. It reports whether the full
// duration elapsed. Delays are fixed: no jitter, no backoff.
func Wait(ctx context.Context, d time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
