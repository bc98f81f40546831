package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/hrassist/recruiter/internal/ai"
	"github.com/hrassist/recruiter/internal/model"
	"github.com/hrassist/recruiter/internal/recruiterr"
	"github.com/hrassist/recruiter/internal/utils"

	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string, temperature float32) (string, error)
}

//go:embed prompt_resume.md
var resumePromptTemplate string

//go:embed prompt_transcript.md
var transcriptPromptTemplate string

const (
	defaultMaxLogLength = 200

	screeningTemperature  = 0.3
	transcriptTemperature = 0.2

	maxQuestions = 4
)

// Screener turns (resume, requirements) or an interview transcript into a
// bounded verdict. Both modes share the same output shape and parser.
type Screener struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewScreener(generator contentGenerator, maxLogLength int, log *zap.Logger) *Screener {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Screener{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// ScreenResume evaluates a candidate resume against the vacancy requirements.
func (s *Screener) ScreenResume(ctx context.Context, facts *ai.ResumeFacts, reqs *model.Requirements) (*ai.Verdict, error) {
	if facts == nil {
		return nil, recruiterr.Validationf("resume facts are required")
	}
	if reqs == nil {
		return nil, recruiterr.Validationf("vacancy requirements are required")
	}

	prompt := buildResumePrompt(facts, reqs)

	s.logger.Debug("screening request",
		zap.String("vacancy_id", reqs.VacancyID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, prompt, screeningTemperature)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("screening response",
		zap.String("vacancy_id", reqs.VacancyID),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	verdict, err := parseVerdict(raw)
	if err != nil {
		return nil, err
	}

	// Low scores never get an engagement package. Passing scores must carry
	// between one and four questions.
	if verdict.Score <= 2 {
		verdict.Greeting = ""
		verdict.Questions = nil
	} else if len(verdict.Questions) == 0 {
		return nil, recruiterr.Validationf("model response has score %d but no questions", verdict.Score)
	} else if len(verdict.Questions) > maxQuestions {
		verdict.Questions = verdict.Questions[:maxQuestions]
	}

	return verdict, nil
}

// ScoreTranscript evaluates a completed interview transcript. Greeting and
// questions are never populated in this mode.
func (s *Screener) ScoreTranscript(ctx context.Context, qa []model.QuestionAnswer, reqs *model.Requirements) (*ai.Verdict, error) {
	if len(qa) == 0 {
		return nil, recruiterr.Validationf("interview transcript is empty")
	}
	if reqs == nil {
		return nil, recruiterr.Validationf("vacancy requirements are required")
	}

	prompt := buildTranscriptPrompt(qa, reqs)

	s.logger.Debug("transcript scoring request",
		zap.String("vacancy_id", reqs.VacancyID),
		zap.Int("qa_pairs", len(qa)),
	)

	raw, err := s.generator.GenerateContent(ctx, prompt, transcriptTemperature)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("transcript scoring response",
		zap.String("vacancy_id", reqs.VacancyID),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	verdict, err := parseVerdict(raw)
	if err != nil {
		return nil, err
	}

	verdict.Greeting = ""
	verdict.Questions = nil

	return verdict, nil
}

func buildResumePrompt(facts *ai.ResumeFacts, reqs *model.Requirements) string {
	replacer := strings.NewReplacer(
		"{{MANDATORY}}", orNone(reqs.Mandatory),
		"{{NICE_TO_HAVE}}", orNone(reqs.NiceToHave),
		"{{TECH_STACK}}", orNone(reqs.TechStack),
		"{{EXP_MIN}}", strconv.Itoa(reqs.ExperienceMin),
		"{{EXP_MAX}}", strconv.Itoa(reqs.ExperienceMax),
		"{{LANGUAGES}}", orNone(reqs.Languages),
		"{{CANDIDATE_NAME}}", orNone(facts.CandidateName),
		"{{EXPERIENCE}}", orNone(facts.Experience),
		"{{EDUCATION}}", orNone(facts.Education),
		"{{ABOUT}}", orNone(facts.About),
		"{{CANDIDATE_LANGUAGES}}", orNone(facts.Languages),
		"{{COURSES}}", orNone(facts.Courses),
	)
	return replacer.Replace(resumePromptTemplate)
}

func buildTranscriptPrompt(qa []model.QuestionAnswer, reqs *model.Requirements) string {
	var transcript strings.Builder
	for i, pair := range qa {
		fmt.Fprintf(&transcript, "Вопрос %d: %s\nОтвет: %s\n\n", i+1, pair.Question, pair.Answer)
	}

	replacer := strings.NewReplacer(
		"{{MANDATORY}}", orNone(reqs.Mandatory),
		"{{TECH_STACK}}", orNone(reqs.TechStack),
		"{{EXP_MIN}}", strconv.Itoa(reqs.ExperienceMin),
		"{{EXP_MAX}}", strconv.Itoa(reqs.ExperienceMax),
		"{{TRANSCRIPT}}", strings.TrimSpace(transcript.String()),
	)
	return replacer.Replace(transcriptPromptTemplate)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "не указано"
	}
	return s
}

// parseVerdict extracts the first well-formed JSON object from the raw model
// output and validates it against the bounded schema. Out-of-range values are
// clamped; missing required fields fail the call.
func parseVerdict(raw string) (*ai.Verdict, error) {
	cleaned := firstJSONObject(raw)
	if cleaned == "" {
		return nil, recruiterr.Validationf("no json object in model response")
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, recruiterr.Validationf("parse model response: %v", err)
	}

	score, ok := data["score"]
	if !ok {
		return nil, recruiterr.Validationf("model response is missing score")
	}
	scoreVal, ok := coerceInt(score)
	if !ok {
		return nil, recruiterr.Validationf("model response score is not numeric")
	}

	detailed, ok := data["detailedScore"]
	if !ok {
		return nil, recruiterr.Validationf("model response is missing detailedScore")
	}
	detailedVal, ok := coerceInt(detailed)
	if !ok {
		return nil, recruiterr.Validationf("model response detailedScore is not numeric")
	}

	analysis := coerceString(data["analysis"])
	if analysis == "" {
		return nil, recruiterr.Validationf("model response is missing analysis")
	}

	return &ai.Verdict{
		Score:         clamp(scoreVal, 1, 5),
		DetailedScore: clamp(detailedVal, 0, 100),
		Analysis:      analysis,
		Greeting:      coerceString(data["greeting"]),
		Questions:     coerceStrings(data["questions"]),
		Raw:           raw,
	}, nil
}
