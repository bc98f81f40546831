// Package ai defines the contracts between the engagement pipeline and the
// generation backend. Implementations live in provider subpackages.
package ai

import (
	"context"

	"github.com/hrassist/recruiter/internal/model"
)

// Verdict is the bounded scoring output shared by both engine modes.
// Score is within [1,5], DetailedScore within [0,100]. Greeting and
// Questions are populated only for resume screenings with Score > 2.
type Verdict struct {
	Score         int
	DetailedScore int
	Analysis      string
	Greeting      string
	Questions     []string
	Raw           string
}

// ResumeFacts is the candidate-side input to a screening.
type ResumeFacts struct {
	CandidateName string
	Experience    string
	Education     string
	About         string
	Languages     string
	Courses       string
}

// Screener turns a resume or an interview transcript into a bounded verdict.
type Screener interface {
	ScreenResume(ctx context.Context, facts *ResumeFacts, reqs *model.Requirements) (*Verdict, error)
	ScoreTranscript(ctx context.Context, qa []model.QuestionAnswer, reqs *model.Requirements) (*Verdict, error)
}

// TurnContext carries the state of one interview turn into the decision call.
type TurnContext struct {
	CandidateName  string
	VacancyTitle   string
	QuestionNumber int
	PreviousQA     []model.QuestionAnswer
	LastQuestion   string
	CurrentAnswer  string
}

// TurnDecision is the outcome of one interview turn. When Continue is true,
// NextMessage holds the full outbound text (acknowledgment plus question).
type TurnDecision struct {
	Analysis    string
	Continue    bool
	Reason      string
	NextMessage string
}

// Interviewer decides whether to keep interviewing and what to ask next.
// The hard question cap is enforced by the loop, never delegated here.
type Interviewer interface {
	Decide(ctx context.Context, turn *TurnContext) (*TurnDecision, error)
}

// RecommendationThreshold is the detailed score at and above which a
// completed interview yields a positive recommendation.
const RecommendationThreshold = 70

// Recommendation maps a detailed interview score to the recruiter-facing
// selection status. Deterministic; not an AI decision.
func Recommendation(detailedScore int) model.HRSelectionStatus {
	if detailedScore >= RecommendationThreshold {
		return model.SelectionRecommended
	}
	return model.SelectionNotRecommended
}
