package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hrassist/recruiter/internal/events"
	"github.com/hrassist/recruiter/internal/store"

	"go.uber.org/zap"
)

type fakeLister struct {
	ids     []string
	err     error
	lastQ   store.ResponseQuery
	queried bool
}

func (f *fakeLister) ListResponses(_ context.Context, q store.ResponseQuery) ([]string, error) {
	f.queried = true
	f.lastQ = q
	return f.ids, f.err
}

type fakeScreener struct {
	mu      sync.Mutex
	failing map[string]error
	seen    []string
	active  int
	maxSeen int
}

func (f *fakeScreener) ScreenOne(_ context.Context, responseID string) error {
	f.mu.Lock()
	f.active++
	if f.active > f.maxSeen {
		f.maxSeen = f.active
	}
	f.seen = append(f.seen, responseID)
	f.mu.Unlock()

	time.Sleep(time.Millisecond)

	f.mu.Lock()
	f.active--
	f.mu.Unlock()

	if err, ok := f.failing[responseID]; ok {
		return err
	}
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Progress
}

func (r *recordingPublisher) Publish(_ context.Context, p events.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, p)
}

func (r *recordingPublisher) byStatus(status events.Status) []events.Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Progress
	for _, p := range r.events {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

func TestScreenManyIsolatesFailures(t *testing.T) {
	t.Parallel()

	screener := &fakeScreener{failing: map[string]error{"r2": errors.New("malformed resume")}}
	publisher := &recordingPublisher{}
	batch := NewBatch(&fakeLister{}, screener, publisher, 2, zap.NewNop())

	result, err := batch.ScreenMany(context.Background(), Selection{IDs: []string{"r1", "r2", "r3"}})
	if err != nil {
		t.Fatalf("screen many: %v", err)
	}

	if result.Total != 3 || result.Processed != 2 || result.Failed != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Failures) != 1 || result.Failures[0].ResponseID != "r2" {
		t.Fatalf("unexpected failures: %+v", result.Failures)
	}
	if result.Failures[0].Reason != "malformed resume" {
		t.Fatalf("unexpected failure reason: %q", result.Failures[0].Reason)
	}
	if len(screener.seen) != 3 {
		t.Fatalf("every item must be attempted, got %d", len(screener.seen))
	}

	if got := publisher.byStatus(events.StatusStarted); len(got) != 1 || got[0].Total != 3 {
		t.Fatalf("unexpected started events: %+v", got)
	}
	if got := publisher.byStatus(events.StatusProcessing); len(got) != 3 {
		t.Fatalf("expected 3 processing events, got %d", len(got))
	}
	completed := publisher.byStatus(events.StatusCompleted)
	if len(completed) != 1 || completed[0].Processed != 2 || completed[0].Failed != 1 {
		t.Fatalf("unexpected completed events: %+v", completed)
	}
}

func TestScreenManyEmptySelection(t *testing.T) {
	t.Parallel()

	publisher := &recordingPublisher{}
	batch := NewBatch(&fakeLister{}, &fakeScreener{}, publisher, 0, zap.NewNop())

	result, err := batch.ScreenMany(context.Background(), Selection{})
	if err != nil {
		t.Fatalf("screen many: %v", err)
	}
	if result.Total != 0 || result.Processed != 0 || result.Failed != 0 {
		t.Fatalf("empty selection must be a zero-count success, got %+v", result)
	}
	if got := publisher.byStatus(events.StatusCompleted); len(got) != 1 {
		t.Fatalf("expected a single completed event, got %d", len(got))
	}
}

func TestScreenManyDeduplicates(t *testing.T) {
	t.Parallel()

	screener := &fakeScreener{}
	batch := NewBatch(&fakeLister{}, screener, nil, 1, zap.NewNop())

	result, err := batch.ScreenMany(context.Background(), Selection{IDs: []string{"r1", "r1", "", "r2"}})
	if err != nil {
		t.Fatalf("screen many: %v", err)
	}
	if result.Total != 2 || result.Processed != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestScreenManyResolvesVacancySelection(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{ids: []string{"r1", "r2"}}
	batch := NewBatch(lister, &fakeScreener{}, nil, 2, zap.NewNop())

	result, err := batch.ScreenMany(context.Background(), Selection{VacancyID: "vac-1", OnlyUnscreened: true})
	if err != nil {
		t.Fatalf("screen many: %v", err)
	}
	if !lister.queried {
		t.Fatal("vacancy selection must go through the lister")
	}
	if lister.lastQ.VacancyID != "vac-1" || !lister.lastQ.OnlyUnscreened {
		t.Fatalf("unexpected query: %+v", lister.lastQ)
	}
	if result.Total != 2 || result.Processed != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestScreenManyHonorsConcurrencyLimit(t *testing.T) {
	t.Parallel()

	screener := &fakeScreener{}
	batch := NewBatch(&fakeLister{}, screener, nil, 2, zap.NewNop())

	ids := make([]string, 20)
	for i := range ids {
		ids[i] = string(rune('a' + i))
	}
	if _, err := batch.ScreenMany(context.Background(), Selection{IDs: ids}); err != nil {
		t.Fatalf("screen many: %v", err)
	}
	if screener.maxSeen > 2 {
		t.Fatalf("concurrency limit exceeded: %d", screener.maxSeen)
	}
}

func TestScraperGate(t *testing.T) {
	t.Parallel()

	gate := NewScraperGate(zap.NewNop())

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- gate.Run(context.Background(), func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	err := gate.TryRun(context.Background(), func(context.Context) error { return nil })
	if !errors.Is(err, ErrScraperBusy) {
		t.Fatalf("expected ErrScraperBusy, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}

	if err := gate.TryRun(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("gate must be free again: %v", err)
	}
}

func TestAwaitVerification(t *testing.T) {
	t.Parallel()

	gate := NewScraperGate(zap.NewNop())

	calls := 0
	err := gate.AwaitVerification(context.Background(), func(context.Context) (bool, error) {
		calls++
		return true, nil
	})
	if err != nil {
		t.Fatalf("await verification: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single check, got %d", calls)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = gate.AwaitVerification(ctx, func(context.Context) (bool, error) { return false, nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
