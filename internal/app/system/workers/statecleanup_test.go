package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeSweeper struct {
	calls atomic.Int32
	err   error
}

func (f *fakeSweeper) CleanupExpired(ctx context.Context) (int64, error) {
	f.calls.Add(1)
	return 1, f.err
}

func TestStateCleanup_RunsUntilStopped(t *testing.T) {
	f := &fakeSweeper{}
	w := NewStateCleanup(f, zap.NewNop(), 5*time.Millisecond)
	w.Start()

	deadline := time.Now().Add(2 * time.Second)
	for f.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()
	w.Stop()

	got := f.calls.Load()
	if got < 2 {
		t.Fatalf("calls: got %d, want at least 2", got)
	}
	time.Sleep(20 * time.Millisecond)
	if after := f.calls.Load(); after != got {
		t.Errorf("worker kept running after Stop: %d -> %d", got, after)
	}
}

func TestStateCleanup_ErrorDoesNotStopLoop(t *testing.T) {
	f := &fakeSweeper{err: errors.New("boom")}
	w := NewStateCleanup(f, zap.NewNop(), 5*time.Millisecond)
	w.Start()
	defer w.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for f.calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if f.calls.Load() < 3 {
		t.Errorf("expected repeated runs despite errors, got %d", f.calls.Load())
	}
}
