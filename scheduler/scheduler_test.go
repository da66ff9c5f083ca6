package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunOnceRunsEveryTaskSynchronously(t *testing.T) {
	var a, b int32
	s := New([]Task{
		{Name: "a", Interval: time.Hour, Run: func(ctx context.Context) error { atomic.AddInt32(&a, 1); return nil }},
		{Name: "b", Interval: time.Hour, Run: func(ctx context.Context) error { atomic.AddInt32(&b, 1); return nil }},
	})

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if atomic.LoadInt32(&a) != 1 || atomic.LoadInt32(&b) != 1 {
		t.Fatalf("a=%d b=%d, want both 1", a, b)
	}
}

func TestStartRunsFirstTickImmediatelyThenRespectsInterval(t *testing.T) {
	var runs int32
	s := New([]Task{
		{Name: "fast", Interval: 10 * time.Second, Run: func(ctx context.Context) error {
			atomic.AddInt32(&runs, 1)
			return nil
		}},
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(1500 * time.Millisecond)
	cancel()
	s.Stop()

	got := atomic.LoadInt32(&runs)
	if got != 1 {
		t.Fatalf("runs = %d, want 1 (one immediate tick, second not yet due)", got)
	}
}

func TestStopBeforeStartReturns(t *testing.T) {
	s := New(nil)
	s.Stop() // must not block or panic when the loop never started
}
