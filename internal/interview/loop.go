package interview

import (
	"context"
	"math/rand/v2"

	"github.com/hrassist/recruiter/internal/ai"
	"github.com/hrassist/recruiter/internal/model"
	"github.com/hrassist/recruiter/internal/recruiterr"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// maxQuestions bounds the interview length. The loop terminates at this
// many recorded exchanges no matter what the decision backend returns.
const maxQuestions = 4

var closingMessages = []string{
	"Спасибо за интервью! Мы внимательно изучим ваши ответы и свяжемся с вами в ближайшее время.",
	"Благодарим за уделённое время! Ваши ответы переданы рекрутеру, мы вернёмся с обратной связью.",
	"Спасибо, что ответили на наши вопросы! Команда рассмотрит вашу кандидатуру и сообщит о решении.",
}

// Advance processes one candidate answer: it either sends the next question
// or finishes the interview with a final scoring. Completed conversations
// are a no-op, so a redelivered answer cannot rescore the candidate.
func (s *Service) Advance(ctx context.Context, chatID, transcript string) error {
	if transcript == "" {
		return recruiterr.Validationf("empty transcript for chat %s", chatID)
	}

	conv, err := s.store.GetConversationByChatID(ctx, chatID)
	if err != nil {
		return err
	}
	if conv.Status != model.ConversationActive {
		s.logger.Info("conversation is not active, ignoring answer",
			zap.String("chat_id", chatID),
			zap.String("status", string(conv.Status)))
		return nil
	}

	resp, err := s.store.GetResponse(ctx, conv.ResponseID)
	if err != nil {
		return err
	}
	if resp.Status.Terminal() {
		// A completion that failed between the response and conversation
		// writes left the conversation ACTIVE; the scoring and selection
		// are already persisted, only the conversation close is missing.
		conv.Status = model.ConversationCompleted
		if err := s.store.SaveConversation(ctx, conv); err != nil {
			return err
		}
		s.logger.Info("response already terminal, closing conversation",
			zap.String("chat_id", chatID),
			zap.String("response_id", resp.ID))
		return nil
	}
	vacancy, err := s.store.GetVacancy(ctx, resp.VacancyID)
	if err != nil {
		return err
	}

	if err := s.store.AppendMessage(ctx, &model.Message{
		ConversationID: conv.ID,
		Sender:         model.SenderCandidate,
		ContentType:    model.ContentVoice,
		Transcription:  transcript,
	}); err != nil {
		return err
	}

	meta := conv.Meta.Data()
	questionNumber := len(meta.QuestionAnswers) + 1

	decision, err := s.interviewer.Decide(ctx, &ai.TurnContext{
		CandidateName:  conv.CandidateName,
		VacancyTitle:   vacancy.Title,
		QuestionNumber: questionNumber,
		PreviousQA:     meta.QuestionAnswers,
		LastQuestion:   meta.LastQuestion,
		CurrentAnswer:  transcript,
	})
	if err != nil {
		return err
	}
	if questionNumber >= maxQuestions && decision.Continue {
		s.logger.Info("question limit reached, finishing interview",
			zap.String("chat_id", chatID),
			zap.Int("question_number", questionNumber))
		decision.Continue = false
		decision.Reason = "question limit reached"
	}

	if len(meta.QuestionAnswers) < maxQuestions {
		meta.QuestionAnswers = append(meta.QuestionAnswers, model.QuestionAnswer{
			Question: meta.LastQuestion,
			Answer:   transcript,
		})
	}

	if decision.Continue {
		return s.continueInterview(ctx, conv, meta, decision)
	}
	return s.finishInterview(ctx, conv, resp, meta, decision)
}

func (s *Service) continueInterview(ctx context.Context, conv *model.Conversation, meta model.ConversationMeta, decision *ai.TurnDecision) error {
	meta.LastQuestion = decision.NextMessage
	conv.Meta = datatypes.NewJSONType(meta)
	if err := s.store.SaveConversation(ctx, conv); err != nil {
		return err
	}

	delivery, err := s.router.Deliver(ctx, conv, decision.NextMessage)
	if err != nil {
		return err
	}
	if delivery.Channel == model.ChannelTelegramUsername && delivery.Identifier != meta.PreferredSender {
		meta.PreferredSender = delivery.Identifier
		conv.Meta = datatypes.NewJSONType(meta)
		if err := s.store.SaveConversation(ctx, conv); err != nil {
			return err
		}
	}

	if err := s.store.AppendMessage(ctx, &model.Message{
		ConversationID: conv.ID,
		Sender:         model.SenderBot,
		ContentType:    model.ContentText,
		Content:        decision.NextMessage,
	}); err != nil {
		return err
	}

	s.logger.Info("interview question sent",
		zap.String("chat_id", conv.ChatID),
		zap.Int("question_number", len(meta.QuestionAnswers)+1))
	return nil
}

func (s *Service) finishInterview(ctx context.Context, conv *model.Conversation, resp *model.Response, meta model.ConversationMeta, decision *ai.TurnDecision) error {
	meta.LastQuestion = ""
	conv.Meta = datatypes.NewJSONType(meta)
	if err := s.store.SaveConversation(ctx, conv); err != nil {
		return err
	}

	reqs, err := s.store.GetRequirements(ctx, resp.VacancyID)
	if err != nil {
		return err
	}

	verdict, err := s.screener.ScoreTranscript(ctx, meta.QuestionAnswers, reqs)
	if err != nil {
		return err
	}

	if err := s.store.UpsertInterviewScoring(ctx, &model.InterviewScoring{
		ConversationID: conv.ID,
		Score:          verdict.Score,
		DetailedScore:  verdict.DetailedScore,
		Analysis:       verdict.Analysis,
	}); err != nil {
		return err
	}

	selection := ai.Recommendation(verdict.DetailedScore)
	if err := s.store.SetSelectionStatus(ctx, resp.ID, selection); err != nil {
		return err
	}
	if err := s.store.UpdateResponseStatus(ctx, resp.ID, model.StatusCompleted); err != nil {
		return err
	}

	conv.Status = model.ConversationCompleted
	if err := s.store.SaveConversation(ctx, conv); err != nil {
		return err
	}

	// The verdict is committed at this point. A failed closing send is
	// logged and dropped, it must not rewind the completion.
	closing := closingMessages[rand.IntN(len(closingMessages))]
	if _, err := s.router.Deliver(ctx, conv, closing); err != nil {
		s.logger.Warn("closing message was not delivered",
			zap.String("chat_id", conv.ChatID), zap.Error(err))
	} else if err := s.store.AppendMessage(ctx, &model.Message{
		ConversationID: conv.ID,
		Sender:         model.SenderBot,
		ContentType:    model.ContentText,
		Content:        closing,
	}); err != nil {
		return err
	}

	s.logger.Info("interview finished",
		zap.String("chat_id", conv.ChatID),
		zap.String("response_id", resp.ID),
		zap.Int("detailed_score", verdict.DetailedScore),
		zap.String("selection", string(selection)),
		zap.String("reason", decision.Reason))
	return nil
}
