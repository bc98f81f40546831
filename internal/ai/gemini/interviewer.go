package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	_ "embed"

	"github.com/hrassist/recruiter/internal/ai"
	"github.com/hrassist/recruiter/internal/recruiterr"
	"github.com/hrassist/recruiter/internal/utils"

	"go.uber.org/zap"
)

//go:embed prompt_interview.md
var interviewPromptTemplate string

const interviewTemperature = 0.7

// Line markers of the legacy plain-text decision format. Kept only as a
// fallback when the model ignores the JSON contract.
const (
	markerAnalysis = "АНАЛИЗ:"
	markerContinue = "ПРОДОЛЖИТЬ:"
	markerReason   = "ПРИЧИНА:"
	markerQuestion = "ВОПРОС:"
)

// Interviewer drives one decision per interview turn. Malformed output
// fails open to "continue": the hard question cap in the loop bounds it.
type Interviewer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewInterviewer(generator contentGenerator, maxLogLength int, log *zap.Logger) *Interviewer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Interviewer{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

func (iv *Interviewer) Decide(ctx context.Context, turn *ai.TurnContext) (*ai.TurnDecision, error) {
	if turn == nil {
		return nil, recruiterr.Validationf("turn context is required")
	}
	if strings.TrimSpace(turn.CurrentAnswer) == "" {
		return nil, recruiterr.Validationf("current answer is empty")
	}

	prompt := buildInterviewPrompt(turn)

	iv.logger.Debug("interview decision request",
		zap.Int("question_number", turn.QuestionNumber),
		zap.Int("previous_pairs", len(turn.PreviousQA)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, iv.maxLogLen)),
	)

	raw, err := iv.generator.GenerateContent(ctx, prompt, interviewTemperature)
	if err != nil {
		return nil, err
	}

	iv.logger.Debug("interview decision response",
		zap.Int("question_number", turn.QuestionNumber),
		zap.String("response_preview", utils.TruncateForLog(raw, iv.maxLogLen)),
	)

	decision, ok := parseDecisionJSON(raw)
	if !ok {
		iv.logger.Debug("falling back to line-marker decision parser",
			zap.Int("question_number", turn.QuestionNumber),
		)
		decision = parseDecisionMarkers(raw)
	}

	return decision, nil
}

func buildInterviewPrompt(turn *ai.TurnContext) string {
	var previous strings.Builder
	if len(turn.PreviousQA) == 0 {
		previous.WriteString("(пока нет)")
	}
	for i, pair := range turn.PreviousQA {
		fmt.Fprintf(&previous, "Вопрос %d: %s\nОтвет: %s\n", i+1, pair.Question, pair.Answer)
	}

	replacer := strings.NewReplacer(
		"{{CANDIDATE_NAME}}", orNone(turn.CandidateName),
		"{{VACANCY_TITLE}}", orNone(turn.VacancyTitle),
		"{{QUESTION_NUMBER}}", strconv.Itoa(turn.QuestionNumber),
		"{{PREVIOUS_QA}}", strings.TrimSpace(previous.String()),
		"{{LAST_QUESTION}}", orNone(turn.LastQuestion),
		"{{CURRENT_ANSWER}}", turn.CurrentAnswer,
	)
	return replacer.Replace(interviewPromptTemplate)
}

// parseDecisionJSON attempts the structured-output contract.
func parseDecisionJSON(raw string) (*ai.TurnDecision, bool) {
	cleaned := firstJSONObject(raw)
	if cleaned == "" {
		return nil, false
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, false
	}

	if _, ok := data["continue"]; !ok {
		return nil, false
	}

	return &ai.TurnDecision{
		Analysis:    coerceString(data["analysis"]),
		Continue:    coerceBool(data["continue"], true),
		Reason:      coerceString(data["reason"]),
		NextMessage: coerceString(data["question"]),
	}, true
}

// parseDecisionMarkers is the line-oriented fallback. A missing continue
// marker defaults to "continue".
func parseDecisionMarkers(raw string) *ai.TurnDecision {
	decision := &ai.TurnDecision{Continue: true}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, markerAnalysis):
			decision.Analysis = strings.TrimSpace(strings.TrimPrefix(line, markerAnalysis))
		case strings.HasPrefix(line, markerContinue):
			value := strings.TrimSpace(strings.TrimPrefix(line, markerContinue))
			decision.Continue = coerceBool(value, true)
		case strings.HasPrefix(line, markerReason):
			decision.Reason = strings.TrimSpace(strings.TrimPrefix(line, markerReason))
		case strings.HasPrefix(line, markerQuestion):
			decision.NextMessage = strings.TrimSpace(strings.TrimPrefix(line, markerQuestion))
		}
	}

	return decision
}
