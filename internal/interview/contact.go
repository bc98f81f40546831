package interview

import (
	"context"
	"fmt"

	"github.com/hrassist/recruiter/internal/model"
	"github.com/hrassist/recruiter/internal/recruiterr"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const defaultGreeting = "Здравствуйте! Спасибо за отклик на нашу вакансию. " +
	"Мы хотели бы задать вам несколько вопросов в формате короткого интервью. Вам удобно ответить сейчас?"

// FirstContact sends the opening message for an evaluated response and
// registers the conversation under the chat id the delivery ended up on.
// Responses that are already in an interview or in a terminal state are
// left untouched.
func (s *Service) FirstContact(ctx context.Context, responseID string) error {
	resp, err := s.store.GetResponse(ctx, responseID)
	if err != nil {
		return err
	}

	if resp.Status.Interviewing() || resp.Status.Terminal() {
		s.logger.Info("first contact already done, skipping",
			zap.String("response_id", responseID),
			zap.String("status", string(resp.Status)))
		return nil
	}
	if resp.Status != model.StatusEvaluated && resp.Status != model.StatusDialogApproved {
		return recruiterr.Validationf("response %s is not screened yet (status %s)", responseID, resp.Status)
	}

	greeting := defaultGreeting
	var firstQuestion string
	screening, err := s.store.GetScreeningResult(ctx, responseID)
	if err != nil && !recruiterr.IsNotFound(err) {
		return err
	}
	if screening != nil {
		if screening.Greeting != "" {
			greeting = screening.Greeting
		}
		if len(screening.Questions) > 0 {
			firstQuestion = screening.Questions[0]
		}
	}

	text := greeting
	if firstQuestion != "" {
		text = greeting + "\n\n" + firstQuestion
	}

	delivery, err := s.router.FirstContact(ctx, resp, text)
	if err != nil {
		return fmt.Errorf("first contact for response %s: %w", responseID, err)
	}

	meta := model.ConversationMeta{
		Version:      model.MetaVersion,
		Channel:      delivery.Channel,
		LastQuestion: firstQuestion,
	}
	if delivery.Channel == model.ChannelTelegramUsername {
		meta.PreferredSender = delivery.Identifier
	}

	conv := &model.Conversation{
		ChatID:        delivery.ChatID,
		ResponseID:    resp.ID,
		CandidateName: resp.CandidateName,
		Status:        model.ConversationActive,
		Meta:          datatypes.NewJSONType(meta),
	}
	if err := s.store.UpsertConversation(ctx, conv); err != nil {
		return err
	}

	if err := s.store.AppendMessage(ctx, &model.Message{
		ConversationID: conv.ID,
		Sender:         model.SenderBot,
		ContentType:    model.ContentText,
		Content:        text,
	}); err != nil {
		return err
	}

	if err := s.store.UpdateResponseStatus(ctx, resp.ID, delivery.Channel.InterviewStatus()); err != nil {
		return err
	}

	s.logger.Info("first contact sent",
		zap.String("response_id", responseID),
		zap.String("chat_id", delivery.ChatID),
		zap.String("channel", string(delivery.Channel)))

	return nil
}
