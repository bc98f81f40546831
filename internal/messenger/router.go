package messenger

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrassist/recruiter/internal/model"
	"github.com/hrassist/recruiter/internal/recruiterr"
	"github.com/hrassist/recruiter/internal/utils"

	"go.uber.org/zap"
)

// Outcome tags the result of one delivery attempt.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Attempt is one entry of the inspectable delivery trail.
type Attempt struct {
	Channel    model.Channel
	Identifier string
	Outcome    Outcome
	Reason     string
}

// Delivery describes a successful send and the trail that led to it.
type Delivery struct {
	ChatID     string
	Channel    model.Channel
	Identifier string
	Attempts   []Attempt
}

// Router picks a delivery channel per message, falling back through the
// candidate's identifiers in a fixed order. One attempt failing never aborts
// the chain; only exhaustion of all identifiers is terminal.
type Router struct {
	transport Transport
	secondary SecondaryChannel
	sessions  *SessionPool
	workspace string
	logger    *zap.Logger

	// pacing is disabled in tests.
	pace bool
}

func NewRouter(transport Transport, secondary SecondaryChannel, sessions *SessionPool, workspace string, log *zap.Logger) *Router {
	return &Router{
		transport: transport,
		secondary: secondary,
		sessions:  sessions,
		workspace: workspace,
		logger:    log,
		pace:      true,
	}
}

// DisablePacing turns off the typing simulation delay.
func (r *Router) DisablePacing() { r.pace = false }

// Deliver sends text into an established conversation. Precedence: the
// sender-identity hint stored in the conversation metadata, then the raw
// channel-assigned chat id.
func (r *Router) Deliver(ctx context.Context, conv *model.Conversation, text string) (*Delivery, error) {
	if err := r.waitTyping(ctx, text); err != nil {
		return nil, err
	}

	meta := conv.Meta.Data()

	if meta.Channel == model.ChannelHHChat {
		attempt := r.trySecondary(ctx, conv.ChatID, text)
		if attempt.Outcome == OutcomeSent {
			return &Delivery{
				ChatID:     conv.ChatID,
				Channel:    model.ChannelHHChat,
				Identifier: conv.ChatID,
				Attempts:   []Attempt{attempt},
			}, nil
		}
		return nil, exhausted([]Attempt{attempt})
	}

	session, release := r.sessions.Acquire(r.workspace)
	defer release()

	var attempts []Attempt

	if hint := strings.TrimSpace(meta.PreferredSender); hint != "" {
		attempt, result := r.try(model.ChannelTelegramUsername, hint, func() (*SendResult, error) {
			return r.transport.SendByUsername(ctx, session, hint, text)
		})
		attempts = append(attempts, attempt)
		if result != nil {
			session.Touch()
			return &Delivery{ChatID: result.ChatID, Channel: model.ChannelTelegramUsername, Identifier: hint, Attempts: attempts}, nil
		}
	}

	attempt, result := r.try(model.ChannelTelegramPeer, conv.ChatID, func() (*SendResult, error) {
		return r.transport.SendByPeer(ctx, session, conv.ChatID, text)
	})
	attempts = append(attempts, attempt)
	if result != nil {
		session.Touch()
		return &Delivery{ChatID: result.ChatID, Channel: model.ChannelTelegramPeer, Identifier: conv.ChatID, Attempts: attempts}, nil
	}

	return nil, exhausted(attempts)
}

// FirstContact reaches a candidate who has no conversation yet. Precedence:
// messaging username, then phone via contact import, then the job-board chat.
// Identifiers the response does not carry are recorded as skipped.
func (r *Router) FirstContact(ctx context.Context, resp *model.Response, text string) (*Delivery, error) {
	username := strings.TrimSpace(resp.TelegramUsername)
	phone := strings.TrimSpace(resp.Phone)
	external := strings.TrimSpace(resp.ExternalChatID)

	if username == "" && phone == "" && external == "" {
		return nil, fmt.Errorf("first contact for response %s: %w", resp.ID, recruiterr.ErrNoIdentifiers)
	}

	if err := r.waitTyping(ctx, text); err != nil {
		return nil, err
	}

	session, release := r.sessions.Acquire(r.workspace)
	defer release()

	var attempts []Attempt

	if username == "" {
		attempts = append(attempts, Attempt{Channel: model.ChannelTelegramUsername, Outcome: OutcomeSkipped, Reason: "no username"})
	} else {
		attempt, result := r.try(model.ChannelTelegramUsername, username, func() (*SendResult, error) {
			return r.transport.SendByUsername(ctx, session, username, text)
		})
		attempts = append(attempts, attempt)
		if result != nil {
			session.Touch()
			return &Delivery{ChatID: result.ChatID, Channel: model.ChannelTelegramUsername, Identifier: username, Attempts: attempts}, nil
		}
	}

	if phone == "" {
		attempts = append(attempts, Attempt{Channel: model.ChannelTelegramPhone, Outcome: OutcomeSkipped, Reason: "no phone"})
	} else {
		attempt, result := r.try(model.ChannelTelegramPhone, phone, func() (*SendResult, error) {
			peer, err := r.transport.ImportContact(ctx, session, phone)
			if err != nil {
				return nil, fmt.Errorf("import contact: %w", err)
			}
			return r.transport.SendByPeer(ctx, session, peer, text)
		})
		attempts = append(attempts, attempt)
		if result != nil {
			session.Touch()
			return &Delivery{ChatID: result.ChatID, Channel: model.ChannelTelegramPhone, Identifier: phone, Attempts: attempts}, nil
		}
	}

	if external == "" {
		attempts = append(attempts, Attempt{Channel: model.ChannelHHChat, Outcome: OutcomeSkipped, Reason: "no external chat id"})
	} else {
		attempt := r.trySecondary(ctx, external, text)
		attempts = append(attempts, attempt)
		if attempt.Outcome == OutcomeSent {
			return &Delivery{ChatID: external, Channel: model.ChannelHHChat, Identifier: external, Attempts: attempts}, nil
		}
	}

	return nil, exhausted(attempts)
}

func (r *Router) try(channel model.Channel, identifier string, send func() (*SendResult, error)) (Attempt, *SendResult) {
	result, err := send()
	if err != nil {
		r.logger.Warn("delivery attempt failed",
			zap.String("channel", string(channel)),
			zap.String("identifier", identifier),
			zap.Error(err),
		)
		return Attempt{Channel: channel, Identifier: identifier, Outcome: OutcomeFailed, Reason: err.Error()}, nil
	}

	r.logger.Info("message delivered",
		zap.String("channel", string(channel)),
		zap.String("identifier", identifier),
		zap.String("chat_id", result.ChatID),
	)
	return Attempt{Channel: channel, Identifier: identifier, Outcome: OutcomeSent}, result
}

func (r *Router) trySecondary(ctx context.Context, threadID, text string) Attempt {
	if r.secondary == nil {
		return Attempt{Channel: model.ChannelHHChat, Identifier: threadID, Outcome: OutcomeSkipped, Reason: "secondary channel not configured"}
	}

	if err := r.secondary.PostMessage(ctx, threadID, text); err != nil {
		r.logger.Warn("delivery attempt failed",
			zap.String("channel", string(model.ChannelHHChat)),
			zap.String("identifier", threadID),
			zap.Error(err),
		)
		return Attempt{Channel: model.ChannelHHChat, Identifier: threadID, Outcome: OutcomeFailed, Reason: err.Error()}
	}

	r.logger.Info("message delivered",
		zap.String("channel", string(model.ChannelHHChat)),
		zap.String("identifier", threadID),
	)
	return Attempt{Channel: model.ChannelHHChat, Identifier: threadID, Outcome: OutcomeSent}
}

func (r *Router) waitTyping(ctx context.Context, text string) error {
	if !r.pace {
		return nil
	}
	return utils.WaitFor(ctx, typingDelay(text))
}

// exhausted builds the terminal failure naming every identifier that was
// tried and how each attempt ended.
func exhausted(attempts []Attempt) error {
	parts := make([]string, 0, len(attempts))
	for _, a := range attempts {
		entry := fmt.Sprintf("%s(%s): %s", a.Channel, a.Identifier, a.Outcome)
		if a.Reason != "" {
			entry += " - " + a.Reason
		}
		parts = append(parts, entry)
	}
	return fmt.Errorf("all delivery channels failed: %s", strings.Join(parts, "; "))
}
