package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/poiesic/foodfacts/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var busy = fmt.Errorf("%w: blocked", storage.ErrBusy)

func TestRetryBusy_ImmediateSuccess(t *testing.T) {
	attempts := 0
	err := retryBusy(context.Background(), slog.Default(), func() error {
		attempts++
		return nil
	}, 3, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryBusy_EventualSuccess(t *testing.T) {
	attempts := 0
	err := retryBusy(context.Background(), slog.Default(), func() error {
		attempts++
		if attempts < 3 {
			return busy
		}
		return nil
	}, 5, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryBusy_AllAttemptsBusy(t *testing.T) {
	attempts := 0
	err := retryBusy(context.Background(), slog.Default(), func() error {
		attempts++
		return busy
	}, 3, time.Millisecond)
	assert.ErrorIs(t, err, storage.ErrBusy)
	assert.Equal(t, 3, attempts)
}

func TestRetryBusy_OtherErrorsNotRetried(t *testing.T) {
	attempts := 0
	boom := errors.New("boom")
	err := retryBusy(context.Background(), slog.Default(), func() error {
		attempts++
		return boom
	}, 5, time.Millisecond)
	assert.Equal(t, boom, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryBusy_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := retryBusy(ctx, slog.Default(), func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return busy
	}, 10, time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts)
}

func TestRetryBusy_InvalidMaxAttempts(t *testing.T) {
	attempts := 0
	err := retryBusy(context.Background(), slog.Default(), func() error {
		attempts++
		return nil
	}, 0, time.Millisecond)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	assert.Zero(t, attempts)
}
