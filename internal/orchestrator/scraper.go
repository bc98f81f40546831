package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/hrassist/recruiter/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ErrScraperBusy is returned when a scrape run is already in flight.
var ErrScraperBusy = errors.New("scraper is busy")

const (
	verificationPollInterval = 5 * time.Second
	verificationCeiling      = 3 * time.Minute
)

// ScraperGate serializes access to the external scraping backend. The
// backend holds one browser session, so at most one run may be active.
type ScraperGate struct {
	sem    *semaphore.Weighted
	logger *zap.Logger
}

func NewScraperGate(logger *zap.Logger) *ScraperGate {
	return &ScraperGate{sem: semaphore.NewWeighted(1), logger: logger}
}

// TryRun executes fn if the gate is free, otherwise fails fast with
// ErrScraperBusy.
func (g *ScraperGate) TryRun(ctx context.Context, fn func(ctx context.Context) error) error {
	if !g.sem.TryAcquire(1) {
		return ErrScraperBusy
	}
	defer g.sem.Release(1)

	return fn(ctx)
}

// Run executes fn, waiting for any active run to finish first.
func (g *ScraperGate) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)

	return fn(ctx)
}

// AwaitVerification polls check until the scraping backend reports that the
// human verification challenge is cleared. The wait is bounded; an operator
// who has not solved the challenge within the ceiling fails the run.
func (g *ScraperGate) AwaitVerification(ctx context.Context, check func(ctx context.Context) (bool, error)) error {
	deadline := time.Now().Add(verificationCeiling)

	for {
		cleared, err := check(ctx)
		if err != nil {
			return err
		}
		if cleared {
			return nil
		}
		if time.Now().After(deadline) {
			return errors.New("verification was not completed in time")
		}

		g.logger.Info("waiting for manual verification",
			zap.Duration("poll_interval", verificationPollInterval))
		if err := utils.WaitFor(ctx, verificationPollInterval); err != nil {
			return err
		}
	}
}
