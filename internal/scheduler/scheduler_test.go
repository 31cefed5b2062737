package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (c *countingSweeper) SweepLate(context.Context) (int64, error) {
	c.calls.Add(1)
	return 3, c.err
}

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New("every tuesday", &countingSweeper{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sweep schedule")
}

func TestSweepCallsSweeper(t *testing.T) {
	sw := &countingSweeper{}
	s, err := New("0 1 * * *", sw)
	require.NoError(t, err)

	s.sweep()
	sw.err = errors.New("database is locked")
	s.sweep()

	assert.Equal(t, int32(2), sw.calls.Load())
}

func TestRunStopsOnCancel(t *testing.T) {
	s, err := New("0 1 * * *", &countingSweeper{})
	require.NoError(t, err)
	assert.True(t, s.Next().IsZero())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return !s.Next().IsZero() }, time.Second, 10*time.Millisecond)
	next := s.Next()
	assert.Equal(t, 1, next.Hour())
	assert.Equal(t, 0, next.Minute())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
