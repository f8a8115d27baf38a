package fanout

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestSettleCollectsAllOutcomes(t *testing.T) {
	outcomes := Settle(context.Background(), 5, 0, func(ctx context.Context, i int) (int, error) {
		if i%2 == 1 {
			return 0, errors.New("odd")
		}
		return i * 10, nil
	})

	if len(outcomes) != 5 {
		t.Fatalf("expected 5 outcomes, got %d", len(outcomes))
	}
	for i, o := range outcomes {
		if o.Index != i {
			t.Errorf("outcome %d has index %d", i, o.Index)
		}
	}

	succ := Successes(outcomes)
	want := []int{0, 20, 40}
	if len(succ) != len(want) {
		t.Fatalf("Successes() = %v, want %v", succ, want)
	}
	for i := range want {
		if succ[i] != want[i] {
			t.Errorf("Successes()[%d] = %d, want %d", i, succ[i], want[i])
		}
	}
	if errs := Errors(outcomes); len(errs) != 2 {
		t.Errorf("Errors() len = %d, want 2", len(errs))
	}
}

func TestSettleRunsConcurrently(t *testing.T) {
	const n = 3
	var started atomic.Int32
	release := make(chan struct{})

	done := make(chan []Outcome[string])
	go func() {
		done <- Settle(context.Background(), n, 0, func(ctx context.Context, i int) (string, error) {
			started.Add(1)
			<-release
			return "ok", nil
		})
	}()

	deadline := time.After(2 * time.Second)
	for started.Load() < n {
		select {
		case <-deadline:
			t.Fatalf("only %d of %d tasks started before any finished", started.Load(), n)
		default:
			time.Sleep(time.Millisecond)
		}
	}
	close(release)

	if got := Successes(<-done); len(got) != n {
		t.Errorf("expected %d successes, got %d", n, len(got))
	}
}

func TestSettleDoesNotShortCircuit(t *testing.T) {
	var finished atomic.Int32
	outcomes := Settle(context.Background(), 3, 0, func(ctx context.Context, i int) (int, error) {
		if i == 0 {
			return 0, errors.New("fail fast")
		}
		time.Sleep(10 * time.Millisecond)
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		finished.Add(1)
		return i, nil
	})
	if finished.Load() != 2 {
		t.Errorf("siblings finished = %d, want 2", finished.Load())
	}
	if len(Successes(outcomes)) != 2 {
		t.Errorf("expected 2 successes, got %v", outcomes)
	}
}

func TestSettleZero(t *testing.T) {
	if got := Settle(context.Background(), 0, 0, func(ctx context.Context, i int) (int, error) {
		t.Error("task must not run")
		return 0, nil
	}); got != nil {
		t.Errorf("Settle(0) = %v, want nil", got)
	}
}

func TestSettleLimit(t *testing.T) {
	var running, peak atomic.Int32
	Settle(context.Background(), 8, 2, func(ctx context.Context, i int) (int, error) {
		cur := running.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return i, nil
	})
	if peak.Load() > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak.Load())
	}
}
