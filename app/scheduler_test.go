package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunOnce(t *testing.T) {
	var calls atomic.Int32
	scheduler := NewScheduler(0, log.New())
	scheduler.RegisterCallback(func(context.Context) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, scheduler.Start(context.Background()))
	assert.Equal(t, int32(1), calls.Load())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "Expected callback to be called exactly once")
}

func TestScheduler_Periodic(t *testing.T) {
	callChan := make(chan struct{}, 10)
	expectedCalls := 4

	scheduler := NewScheduler(10*time.Millisecond, log.New())
	scheduler.RegisterCallback(func(context.Context) error {
		callChan <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, scheduler.Start(ctx))

	for i := 0; i < expectedCalls; i++ {
		select {
		case <-callChan:
		case <-time.After(time.Second):
			t.Fatalf("Timed out waiting for callback execution %d/%d", i+1, expectedCalls)
		}
	}

	require.NoError(t, scheduler.Stop())
	assert.True(t, scheduler.Stopped())
	require.NoError(t, scheduler.WaitForShutdown(ctx))

	// Drain anything that raced with Stop, then make sure nothing else arrives.
	for len(callChan) > 0 {
		<-callChan
	}
	select {
	case <-callChan:
		t.Fatal("callback called after stop")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestScheduler_CallbackError(t *testing.T) {
	expectedError := errors.New("test callback error")
	scheduler := NewScheduler(0, log.New())
	scheduler.RegisterCallback(func(context.Context) error {
		return expectedError
	})

	err := scheduler.Start(context.Background())
	assert.ErrorIs(t, err, expectedError)
}

func TestScheduler_NoCallback(t *testing.T) {
	err := NewScheduler(0, log.New()).Start(context.Background())
	require.Error(t, err)
}

func TestScheduler_ContextCancellation(t *testing.T) {
	var calls atomic.Int32
	scheduler := NewScheduler(10*time.Millisecond, log.New())
	scheduler.RegisterCallback(func(context.Context) error {
		calls.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, scheduler.Start(ctx))
	cancel()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	require.NoError(t, scheduler.WaitForShutdown(waitCtx))
	assert.True(t, scheduler.Stopped())
	require.NoError(t, scheduler.Stop())
}

func TestScheduler_StopTwice(t *testing.T) {
	scheduler := NewScheduler(time.Hour, log.New())
	scheduler.RegisterCallback(func(context.Context) error { return nil })
	require.NoError(t, scheduler.Start(context.Background()))

	require.NoError(t, scheduler.Stop())
	require.NoError(t, scheduler.Stop())
}
