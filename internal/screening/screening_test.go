package screening

import (
	"context"
	"errors"
	"testing"

	"github.com/hrassist/recruiter/internal/ai"
	"github.com/hrassist/recruiter/internal/model"
	"github.com/hrassist/recruiter/internal/recruiterr"

	"go.uber.org/zap"
)

type fakeStore struct {
	responses    map[string]*model.Response
	requirements map[string]*model.Requirements

	upserted    []*model.ScreeningResult
	transitions []model.ResponseStatus
}

func (f *fakeStore) GetResponse(_ context.Context, id string) (*model.Response, error) {
	resp, ok := f.responses[id]
	if !ok {
		return nil, recruiterr.NotFoundf("response %s", id)
	}
	return resp, nil
}

func (f *fakeStore) GetRequirements(_ context.Context, vacancyID string) (*model.Requirements, error) {
	reqs, ok := f.requirements[vacancyID]
	if !ok {
		return nil, recruiterr.NotFoundf("requirements for vacancy %s", vacancyID)
	}
	return reqs, nil
}

func (f *fakeStore) UpsertScreeningResult(_ context.Context, result *model.ScreeningResult) error {
	f.upserted = append(f.upserted, result)
	return nil
}

func (f *fakeStore) UpdateResponseStatus(_ context.Context, id string, next model.ResponseStatus) error {
	f.transitions = append(f.transitions, next)
	f.responses[id].Status = next
	return nil
}

type fakeScreener struct {
	verdict *ai.Verdict
	err     error
	calls   int
}

func (f *fakeScreener) ScreenResume(_ context.Context, _ *ai.ResumeFacts, _ *model.Requirements) (*ai.Verdict, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.verdict, nil
}

func (f *fakeScreener) ScoreTranscript(_ context.Context, _ []model.QuestionAnswer, _ *model.Requirements) (*ai.Verdict, error) {
	return nil, errors.New("not used")
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		responses: map[string]*model.Response{
			"r1": {ID: "r1", VacancyID: "vac-1", Status: model.StatusNew, Experience: "Go"},
		},
		requirements: map[string]*model.Requirements{
			"vac-1": {VacancyID: "vac-1", Mandatory: "Go"},
		},
	}
}

func TestScreenOne(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	screener := &fakeScreener{verdict: &ai.Verdict{Score: 4, DetailedScore: 80, Analysis: "good", Greeting: "hi", Questions: []string{"q1"}}}
	svc := New(store, screener, zap.NewNop())

	if err := svc.ScreenOne(context.Background(), "r1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.upserted) != 1 {
		t.Fatalf("expected one upserted result, got %d", len(store.upserted))
	}
	if store.upserted[0].Score != 4 || store.upserted[0].Greeting != "hi" {
		t.Fatalf("unexpected upserted result: %+v", store.upserted[0])
	}
	if len(store.transitions) != 1 || store.transitions[0] != model.StatusEvaluated {
		t.Fatalf("expected transition to EVALUATED, got %v", store.transitions)
	}
}

func TestScreenOneIdempotentOnProcessedResponse(t *testing.T) {
	t.Parallel()

	cases := []model.ResponseStatus{
		model.StatusEvaluated,
		model.StatusInterviewTG,
		model.StatusCompleted,
		model.StatusSkipped,
	}

	for _, status := range cases {
		t.Run(string(status), func(t *testing.T) {
			store := newFakeStore()
			store.responses["r1"].Status = status
			screener := &fakeScreener{verdict: &ai.Verdict{Score: 4, DetailedScore: 80, Analysis: "good"}}
			svc := New(store, screener, zap.NewNop())

			if err := svc.ScreenOne(context.Background(), "r1"); err != nil {
				t.Fatalf("duplicate trigger must be a no-op, got %v", err)
			}
			if screener.calls != 0 {
				t.Fatalf("screener must not be called for status %s", status)
			}
			if len(store.upserted) != 0 {
				t.Fatalf("no result should be written for status %s", status)
			}
		})
	}
}

func TestScreenOneMissingResponse(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := New(store, &fakeScreener{}, zap.NewNop())

	err := svc.ScreenOne(context.Background(), "missing")
	if !errors.Is(err, recruiterr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestScreenOneMissingRequirements(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	delete(store.requirements, "vac-1")
	svc := New(store, &fakeScreener{}, zap.NewNop())

	err := svc.ScreenOne(context.Background(), "r1")
	if !errors.Is(err, recruiterr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestScreenOnePropagatesScreenerError(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	screener := &fakeScreener{err: recruiterr.Validationf("malformed json")}
	svc := New(store, screener, zap.NewNop())

	err := svc.ScreenOne(context.Background(), "r1")
	if !errors.Is(err, recruiterr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(store.upserted) != 0 || len(store.transitions) != 0 {
		t.Fatalf("failed screening must not write results or advance status")
	}
}
