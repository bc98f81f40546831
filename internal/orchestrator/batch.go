// Package orchestrator fans screening work out over a response set and
// guards the shared scraping resource.
package orchestrator

import (
	"context"
	"sync"

	"github.com/hrassist/recruiter/internal/events"
	"github.com/hrassist/recruiter/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 10

// Lister resolves a vacancy selection into response ids.
type Lister interface {
	ListResponses(ctx context.Context, q store.ResponseQuery) ([]string, error)
}

// Screener processes a single response end to end.
type Screener interface {
	ScreenOne(ctx context.Context, responseID string) error
}

// Selection picks the responses of one batch run: either an explicit id
// list or every response of a vacancy, optionally narrowed to unscreened.
type Selection struct {
	IDs            []string
	VacancyID      string
	OnlyUnscreened bool
}

// Failure is one item that did not make it through the batch.
type Failure struct {
	ResponseID string `json:"responseId"`
	Reason     string `json:"reason"`
}

// Result sums up a finished batch. Failed items are listed, not fatal.
type Result struct {
	BatchID   string    `json:"batchId"`
	Total     int       `json:"total"`
	Processed int       `json:"processed"`
	Failed    int       `json:"failed"`
	Failures  []Failure `json:"failures,omitempty"`
}

type Batch struct {
	lister      Lister
	screener    Screener
	publisher   events.Publisher
	concurrency int
	logger      *zap.Logger
}

func NewBatch(lister Lister, screener Screener, publisher events.Publisher, concurrency int, logger *zap.Logger) *Batch {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Batch{
		lister:      lister,
		screener:    screener,
		publisher:   publisher,
		concurrency: concurrency,
		logger:      logger,
	}
}

// ScreenMany screens every selected response. One item failing never stops
// the others; the error return covers only selection resolution and context
// cancellation. An empty selection is a successful zero-count run.
func (b *Batch) ScreenMany(ctx context.Context, sel Selection) (*Result, error) {
	ids, err := b.resolve(ctx, sel)
	if err != nil {
		return nil, err
	}

	result := &Result{BatchID: uuid.NewString(), Total: len(ids)}
	key := b.progressKey(sel, result.BatchID)

	if len(ids) == 0 {
		b.logger.Info("batch selection is empty, nothing to do", zap.String("batch_id", result.BatchID))
		b.publisher.Publish(ctx, events.Progress{Key: key, Status: events.StatusCompleted})
		return result, nil
	}

	b.logger.Info("starting batch screening",
		zap.String("batch_id", result.BatchID),
		zap.Int("total", result.Total),
		zap.Int("concurrency", b.concurrency))
	b.publisher.Publish(ctx, events.Progress{Key: key, Status: events.StatusStarted, Total: result.Total})

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for _, id := range ids {
		g.Go(func() error {
			err := b.screener.ScreenOne(gctx, id)

			mu.Lock()
			if err != nil {
				result.Failed++
				result.Failures = append(result.Failures, Failure{ResponseID: id, Reason: err.Error()})
				b.logger.Warn("batch item failed", zap.String("response_id", id), zap.Error(err))
			} else {
				result.Processed++
			}
			progress := events.Progress{
				Key:       key,
				Status:    events.StatusProcessing,
				Total:     result.Total,
				Processed: result.Processed,
				Failed:    result.Failed,
			}
			mu.Unlock()

			b.publisher.Publish(gctx, progress)
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		b.publisher.Publish(ctx, events.Progress{Key: key, Status: events.StatusError, Message: err.Error()})
		return nil, err
	}

	b.publisher.Publish(ctx, events.Progress{
		Key:       key,
		Status:    events.StatusCompleted,
		Total:     result.Total,
		Processed: result.Processed,
		Failed:    result.Failed,
	})
	b.logger.Info("batch screening finished",
		zap.String("batch_id", result.BatchID),
		zap.Int("processed", result.Processed),
		zap.Int("failed", result.Failed))

	return result, nil
}

// resolve turns the selection into a deduplicated id list, preserving order.
func (b *Batch) resolve(ctx context.Context, sel Selection) ([]string, error) {
	ids := sel.IDs
	if len(ids) == 0 && sel.VacancyID != "" {
		listed, err := b.lister.ListResponses(ctx, store.ResponseQuery{
			VacancyID:      sel.VacancyID,
			OnlyUnscreened: sel.OnlyUnscreened,
		})
		if err != nil {
			return nil, err
		}
		ids = listed
	}

	seen := make(map[string]struct{}, len(ids))
	deduped := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		deduped = append(deduped, id)
	}
	return deduped, nil
}

func (b *Batch) progressKey(sel Selection, batchID string) string {
	if sel.VacancyID != "" {
		return sel.VacancyID
	}
	return batchID
}
