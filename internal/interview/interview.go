// Package interview drives the candidate engagement lifecycle after
// screening: the first outbound contact and the question-by-question
// interview loop up to the final verdict.
package interview

import (
	"context"

	"github.com/hrassist/recruiter/internal/ai"
	"github.com/hrassist/recruiter/internal/messenger"
	"github.com/hrassist/recruiter/internal/model"

	"go.uber.org/zap"
)

// Store is the slice of the record store the interview flow needs.
type Store interface {
	GetResponse(ctx context.Context, id string) (*model.Response, error)
	UpdateResponseStatus(ctx context.Context, id string, next model.ResponseStatus) error
	SetSelectionStatus(ctx context.Context, id string, selection model.HRSelectionStatus) error

	GetScreeningResult(ctx context.Context, responseID string) (*model.ScreeningResult, error)
	GetRequirements(ctx context.Context, vacancyID string) (*model.Requirements, error)
	GetVacancy(ctx context.Context, id string) (*model.Vacancy, error)

	GetConversationByChatID(ctx context.Context, chatID string) (*model.Conversation, error)
	UpsertConversation(ctx context.Context, conv *model.Conversation) error
	SaveConversation(ctx context.Context, conv *model.Conversation) error
	UpsertInterviewScoring(ctx context.Context, scoring *model.InterviewScoring) error

	AppendMessage(ctx context.Context, msg *model.Message) error
}

// Deliverer is the delivery router interface used by the flow.
type Deliverer interface {
	Deliver(ctx context.Context, conv *model.Conversation, text string) (*messenger.Delivery, error)
	FirstContact(ctx context.Context, resp *model.Response, text string) (*messenger.Delivery, error)
}

type Service struct {
	store       Store
	router      Deliverer
	screener    ai.Screener
	interviewer ai.Interviewer
	logger      *zap.Logger
}

func New(store Store, router Deliverer, screener ai.Screener, interviewer ai.Interviewer, logger *zap.Logger) *Service {
	return &Service{
		store:       store,
		router:      router,
		screener:    screener,
		interviewer: interviewer,
		logger:      logger,
	}
}
