package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/standardbeagle/perfguard/internal/config"
	"github.com/standardbeagle/perfguard/internal/model"
	"github.com/standardbeagle/perfguard/internal/pipeline"
	"github.com/standardbeagle/perfguard/internal/regenerator"
)

type countingMetrics struct {
	calls int32
}

func (m *countingMetrics) Fetch(ctx context.Context) ([]*model.Endpoint, error) {
	atomic.AddInt32(&m.calls, 1)
	return nil, nil
}

func (m *countingMetrics) Filter(endpoints []*model.Endpoint, thresholdMs float64) []*model.Endpoint {
	return endpoints
}

type noopModel struct{}

func (noopModel) Send(ctx context.Context, prompt string) (string, error) { return "", nil }
func (noopModel) Available(ctx context.Context, model string) (bool, error) {
	return true, nil
}

func TestRunFiresFirstTickSynchronously(t *testing.T) {
	metrics := &countingMetrics{}
	rc := &model.RunContext{Metrics: metrics, ThresholdMs: 500}
	regen := regenerator.New(noopModel{}, &config.Prompt{}, 1)
	runner := pipeline.New(regen, "", false, nil)

	s := New(runner, rc, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}

	if atomic.LoadInt32(&metrics.calls) < 1 {
		t.Errorf("expected the first tick to fire synchronously before cancellation, calls = %d", metrics.calls)
	}
}

func TestRunDoesNotLeakGoroutinesAfterCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	metrics := &countingMetrics{}
	rc := &model.RunContext{Metrics: metrics, ThresholdMs: 500}
	regen := regenerator.New(noopModel{}, &config.Prompt{}, 1)
	runner := pipeline.New(regen, "", false, nil)

	s := New(runner, rc, time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
