// Package screening runs the resume-vs-requirements evaluation for single
// responses. Each run is an idempotent step: retrying a finished screening
// replaces its result instead of duplicating it.
package screening

import (
	"context"

	"github.com/hrassist/recruiter/internal/ai"
	"github.com/hrassist/recruiter/internal/model"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Store is the slice of the record store the screening step needs.
type Store interface {
	GetResponse(ctx context.Context, id string) (*model.Response, error)
	GetRequirements(ctx context.Context, vacancyID string) (*model.Requirements, error)
	UpsertScreeningResult(ctx context.Context, result *model.ScreeningResult) error
	UpdateResponseStatus(ctx context.Context, id string, next model.ResponseStatus) error
}

type Service struct {
	store    Store
	screener ai.Screener
	logger   *zap.Logger
}

func New(store Store, screener ai.Screener, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		screener: screener,
		logger:   logger,
	}
}

// ScreenOne evaluates a single response. Already-screened and terminal
// responses are no-ops so duplicate triggers are safe. Errors propagate to
// the caller; the external step executor applies its bounded retry.
func (s *Service) ScreenOne(ctx context.Context, responseID string) error {
	resp, err := s.store.GetResponse(ctx, responseID)
	if err != nil {
		return err
	}

	if resp.Status != model.StatusNew {
		s.logger.Info("skipping screening",
			zap.String("response_id", responseID),
			zap.String("status", string(resp.Status)),
			zap.String("reason", "response already processed"),
		)
		return nil
	}

	reqs, err := s.store.GetRequirements(ctx, resp.VacancyID)
	if err != nil {
		return err
	}

	facts := &ai.ResumeFacts{
		CandidateName: resp.CandidateName,
		Experience:    resp.Experience,
		Education:     resp.Education,
		About:         resp.About,
		Languages:     resp.Languages,
		Courses:       resp.Courses,
	}

	verdict, err := s.screener.ScreenResume(ctx, facts, reqs)
	if err != nil {
		return err
	}

	result := &model.ScreeningResult{
		ResponseID:    responseID,
		Score:         verdict.Score,
		DetailedScore: verdict.DetailedScore,
		Analysis:      verdict.Analysis,
		Greeting:      verdict.Greeting,
		Questions:     datatypes.NewJSONSlice(verdict.Questions),
	}
	if err := s.store.UpsertScreeningResult(ctx, result); err != nil {
		return err
	}

	if err := s.store.UpdateResponseStatus(ctx, responseID, model.StatusEvaluated); err != nil {
		return err
	}

	s.logger.Info("response screened",
		zap.String("response_id", responseID),
		zap.String("vacancy_id", resp.VacancyID),
		zap.Int("score", verdict.Score),
		zap.Int("detailed_score", verdict.DetailedScore),
	)

	return nil
}
