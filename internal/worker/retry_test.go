package worker

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextDelayBacksOffExponentially(t *testing.T) {
	policy := RetryPolicy{
		MaxRetries:    5,
		InitialDelay:  time.Second,
		MaxDelay:      time.Minute,
		BackoffFactor: 2,
	}

	assert.Equal(t, time.Second, policy.NextDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
	assert.Equal(t, 4*time.Second, policy.NextDelay(3))
	assert.Equal(t, 8*time.Second, policy.NextDelay(4))
}

func TestNextDelayClampsToMax(t *testing.T) {
	policy := RetryPolicy{
		InitialDelay:  time.Second,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2,
	}
	assert.Equal(t, 5*time.Second, policy.NextDelay(10))
}

func TestNextDelayDefaults(t *testing.T) {
	policy := RetryPolicy{}
	assert.Equal(t, time.Second, policy.NextDelay(0))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
}

func TestEnqueueScheduleExportQueueFull(t *testing.T) {
	logger := zerolog.Nop()
	w := NewScheduleExporter(nil, t.TempDir(), RetryPolicy{}, &logger)

	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 6)

	// The worker is not started, so the queue only drains when full.
	for {
		if err := w.EnqueueScheduleExport(context.Background(), start, end); err != nil {
			assert.ErrorIs(t, err, ErrQueueFull)
			return
		}
	}
}

func TestEnqueueScheduleExportHonorsContext(t *testing.T) {
	logger := zerolog.Nop()
	w := NewScheduleExporter(nil, t.TempDir(), RetryPolicy{}, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	err := w.EnqueueScheduleExport(ctx, start, start.AddDate(0, 0, 6))
	require.ErrorIs(t, err, context.Canceled)
}
