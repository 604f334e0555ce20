// internal/queue/mux_test.go
//
// Job routing by name, end to end through the broker.

package queue

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/AdeptTravel/adept-runtime/internal/config"
)

type timings map[string]float64

func (s timings) AddToCounter(name string, v float64)   { s[name] += v }
func (s timings) AddToHistogram(name string, v float64) { s[name+"_count"]++; s[name+"_sum"] += v }

func TestMuxDispatch(t *testing.T) {
	rec := timings{}
	m := NewMux(rec)
	m.Handle("reindex", func(context.Context, Job) error {
		time.Sleep(10 * time.Millisecond)
		return nil
	})
	m.Handle("backup", func(context.Context, Job) error { return errors.New("disk full") })

	if got := m.Names(); !reflect.DeepEqual(got, []string{"backup", "reindex"}) {
		t.Fatalf("Names = %v", got)
	}
	if err := m.Dispatch(context.Background(), Job{Name: "reindex"}); err != nil {
		t.Fatalf("reindex: %v", err)
	}
	if err := m.Dispatch(context.Background(), Job{Name: "backup"}); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("backup error = %v", err)
	}
	if err := m.Dispatch(context.Background(), Job{Name: "nope"}); !errors.Is(err, ErrUnknownJob) {
		t.Fatalf("unknown job error = %v", err)
	}

	if rec["handler_seconds_count"] != 2 || rec["unknown_total"] != 1 {
		t.Fatalf("samples = %v", rec)
	}
	if rec["handler_seconds_sum"] < (10 * time.Millisecond).Seconds() {
		t.Fatalf("handler duration not measured: %v", rec["handler_seconds_sum"])
	}
}

func TestUnknownJobEndsOnFailedList(t *testing.T) {
	b, _, counters := newBroker(t, config.JobOptions{Attempts: 2, RemoveOnComplete: true})
	m := NewMux(nil)
	ctx := context.Background()

	if err := b.Enqueue(ctx, "search", "mystery", nil); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	for i := 0; i < 2; i++ {
		if ok, err := b.ProcessOne(ctx, "search", time.Second, m.Dispatch); !ok || err != nil {
			t.Fatalf("attempt %d: ok=%v err=%v", i+1, ok, err)
		}
	}

	if n, _ := b.Len(ctx, "search", "failed"); n != 1 {
		t.Fatalf("failed list = %d, want 1", n)
	}
	if counters["retried_total"] != 1 || counters["failed_total"] != 1 {
		t.Fatalf("counters = %v", counters)
	}
}
