package expiration

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	policyModel "motorcover/internal/policy/models"
	"motorcover/pkg/dates"
)

type countingStore struct {
	scans atomic.Int64
	err   error
}

func (c *countingStore) ExpiringOnOrBefore(context.Context, dates.Date) ([]policyModel.ExpiringPolicy, error) {
	c.scans.Add(1)
	return nil, c.err
}

func (c *countingStore) RecordExpirations(context.Context, []policyModel.PolicyExpiration) (int, error) {
	return 0, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	store := &countingStore{}
	sweeper := NewSweeper(store, discardLogger())
	scheduler := NewScheduler(sweeper, time.Hour, discardLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- scheduler.Run(ctx) }()

	// The first tick fires immediately, before the first sleep.
	require.Eventually(t, func() bool { return store.scans.Load() == 1 },
		time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
}

func TestSchedulerSurvivesTickErrors(t *testing.T) {
	store := &countingStore{err: errors.New("connection refused")}
	sweeper := NewSweeper(store, discardLogger())
	scheduler := NewScheduler(sweeper, 5*time.Millisecond, discardLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- scheduler.Run(ctx) }()

	// The loop keeps ticking past failures.
	require.Eventually(t, func() bool { return store.scans.Load() >= 3 },
		time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
}
