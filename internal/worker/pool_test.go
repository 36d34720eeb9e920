package worker

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
)

func TestProcess_PreservesOrder(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	var progress int32

	got, err := Process(context.Background(), items, 3,
		func(_ context.Context, job Job[string]) (string, error) {
			return strings.ToUpper(job.Data), nil
		},
		func(completed, total int) {
			atomic.StoreInt32(&progress, int32(completed))
			if total != len(items) {
				t.Errorf("total = %d, want %d", total, len(items))
			}
		})

	if err != nil {
		t.Fatalf("Process error = %v", err)
	}
	if want := []string{"A", "B", "C", "D", "E"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Process = %v, want %v", got, want)
	}
	if progress != int32(len(items)) {
		t.Errorf("progress = %d, want %d", progress, len(items))
	}
}

func TestProcess_Empty(t *testing.T) {
	got, err := Process(context.Background(), []int(nil), 4,
		func(_ context.Context, job Job[int]) (int, error) { return job.Data, nil }, nil)
	if got != nil || err != nil {
		t.Errorf("Process(nil) = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestProcess_FirstError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Process(context.Background(), []int{1, 2, 3, 4}, 1,
		func(_ context.Context, job Job[int]) (int, error) {
			if job.Data == 2 {
				return 0, boom
			}
			return job.Data, nil
		}, nil)

	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}
}

func TestProcess_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Process(ctx, []int{1, 2, 3}, 2,
		func(ctx context.Context, job Job[int]) (int, error) {
			return job.Data, nil
		}, nil)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestProcess_CapsWorkers(t *testing.T) {
	var running, peak int32
	_, err := Process(context.Background(), make([]int, 12), 3,
		func(_ context.Context, job Job[int]) (int, error) {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			atomic.AddInt32(&running, -1)
			return job.Index, nil
		}, nil)

	if err != nil {
		t.Fatalf("Process error = %v", err)
	}
	if peak > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak)
	}
}
