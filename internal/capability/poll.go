package capability

import (
	"context"
	"fmt"
	"time"

	"voxmate/internal/logging"
)

// Default availability-polling bounds, matching the original extension's
// waitUntilReady schedule.
const (
	DefaultReadyTimeout = 10 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
)

// WaitUntilReady polls probe until it reports a ready availability state or
// the timeout elapses. Exceeding the deadline is a normal failure path and
// returns ErrNotReady; an ErrUnavailable from the probe aborts immediately.
func WaitUntilReady(ctx context.Context, probe func(context.Context) (Availability, error), timeout, interval time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultReadyTimeout
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	deadline := time.Now().Add(timeout)
	for {
		avail, err := probe(ctx)
		if err != nil {
			return fmt.Errorf("availability probe: %w", err)
		}
		if avail.Ready() {
			return nil
		}
		if avail == AvailabilityUnavailable {
			return ErrUnavailable
		}

		if time.Now().Add(interval).After(deadline) {
			logging.CapabilityWarn("model not ready after %v (last availability: %s)", timeout, avail)
			if avail == AvailabilityAfterDownload {
				return ErrDownloading
			}
			return ErrNotReady
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
