package capability

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitUntilReady_ImmediatelyReady(t *testing.T) {
	err := WaitUntilReady(context.Background(), func(ctx context.Context) (Availability, error) {
		return AvailabilityReadily, nil
	}, time.Second, time.Millisecond)
	assert.NoError(t, err)
}

func TestWaitUntilReady_BecomesReadyMidPoll(t *testing.T) {
	var probes atomic.Int32
	err := WaitUntilReady(context.Background(), func(ctx context.Context) (Availability, error) {
		if probes.Add(1) >= 3 {
			return AvailabilityAvailable, nil
		}
		return AvailabilityAfterDownload, nil
	}, time.Second, time.Millisecond)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, probes.Load(), int32(3))
}

func TestWaitUntilReady_StuckDownloadingTimesOut(t *testing.T) {
	start := time.Now()
	err := WaitUntilReady(context.Background(), func(ctx context.Context) (Availability, error) {
		return AvailabilityAfterDownload, nil
	}, 100*time.Millisecond, 10*time.Millisecond)
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrDownloading)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestWaitUntilReady_UnavailableAbortsWithoutWaiting(t *testing.T) {
	start := time.Now()
	err := WaitUntilReady(context.Background(), func(ctx context.Context) (Availability, error) {
		return AvailabilityUnavailable, nil
	}, 10*time.Second, time.Second)
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Less(t, elapsed, 100*time.Millisecond, "unavailable must not consume the polling window")
}

func TestWaitUntilReady_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := WaitUntilReady(ctx, func(ctx context.Context) (Availability, error) {
		return AvailabilityAfterDownload, nil
	}, 10*time.Second, 50*time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAvailabilityReady(t *testing.T) {
	assert.True(t, AvailabilityAvailable.Ready())
	assert.True(t, AvailabilityReadily.Ready())
	assert.False(t, AvailabilityAfterDownload.Ready())
	assert.False(t, AvailabilityUnavailable.Ready())
}
