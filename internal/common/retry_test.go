package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-health/internal/service"
)

var quickRetry = service.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     2 * time.Millisecond,
	Multiplier:   2,
}

func TestWithRetry(t *testing.T) {
	errBusy := errors.New("database is locked")

	tests := []struct {
		wantErr   error
		failures  []error
		name      string
		wantCalls int
	}{
		{name: "first try", wantCalls: 1},
		{name: "recovers", failures: []error{errBusy, errBusy}, wantCalls: 3},
		{name: "exhausted", failures: []error{errBusy, errBusy, errBusy}, wantCalls: 3, wantErr: ErrMaxRetries},
		{name: "permanent", failures: []error{Permanent(errBusy)}, wantCalls: 1, wantErr: errBusy},
		{name: "rate limited", failures: []error{ErrPlaidRateLimit}, wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), func() error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			}, quickRetry)

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWithRetry_ExhaustedKeepsCause(t *testing.T) {
	cause := errors.New("database is locked")
	err := WithRetry(context.Background(), func() error { return cause }, quickRetry)
	assert.ErrorIs(t, err, ErrMaxRetries)
	assert.ErrorIs(t, err, cause)
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := WithRetry(ctx, func() error {
		calls++
		cancel()
		return errors.New("boom")
	}, service.RetryOptions{MaxAttempts: 5, InitialDelay: time.Hour})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPermanent(t *testing.T) {
	assert.NoError(t, Permanent(nil))

	cause := errors.New("invalid score")
	err := Permanent(cause)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.True(t, isPermanent(err))
	assert.False(t, isPermanent(cause))
}

func TestWithDefaults(t *testing.T) {
	got := withDefaults(service.RetryOptions{MaxAttempts: 7})
	assert.Equal(t, 7, got.MaxAttempts)
	assert.Equal(t, DefaultRetryOptions.InitialDelay, got.InitialDelay)
	assert.Equal(t, DefaultRetryOptions.MaxDelay, got.MaxDelay)
	assert.InDelta(t, DefaultRetryOptions.Multiplier, got.Multiplier, 1e-9)
}
