package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hrassist/recruiter/internal/ai/gemini"
	"github.com/hrassist/recruiter/internal/events"
	"github.com/hrassist/recruiter/internal/hhchat"
	"github.com/hrassist/recruiter/internal/interview"
	logfields "github.com/hrassist/recruiter/internal/logger"
	"github.com/hrassist/recruiter/internal/messenger"
	"github.com/hrassist/recruiter/internal/screening"
	"github.com/hrassist/recruiter/internal/secrets"
	"github.com/hrassist/recruiter/internal/store"

	"go.uber.org/zap"
)

const defaultDatabase = "recruiter.db"

// services bundles everything a command may need. Commands pick what they use.
type services struct {
	store     *store.Store
	screening *screening.Service
	interview *interview.Service
	publisher events.Publisher
	closers   []func() error
}

func (s *services) close(logger *zap.Logger) {
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			logger.Warn("closing resource", zap.Error(err))
		}
	}
}

func buildServices(ctx context.Context, config *Config, logger *zap.Logger) (_ *services, err error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	dbPath := config.Database
	if dbPath == "" {
		dbPath = defaultDatabase
	}
	st, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	svc := &services{store: st}
	svc.closers = append(svc.closers, st.Close)
	defer func() {
		if err != nil {
			svc.close(logger)
		}
	}()

	screener, interviewer, err := buildAI(ctx, config.AI, logger)
	if err != nil {
		return nil, err
	}

	publisher, publisherClose, err := buildPublisher(config, logger)
	if err != nil {
		return nil, fmt.Errorf("connecting to the progress queue: %w", err)
	}
	svc.publisher = publisher
	if publisherClose != nil {
		svc.closers = append(svc.closers, publisherClose)
	}

	svc.screening = screening.New(st, screener, logger)

	router, err := buildRouter(config, logger)
	if err != nil {
		return nil, err
	}
	svc.interview = interview.New(st, router, screener, interviewer, logger)

	return svc, nil
}

// buildPublisher picks the progress sink. A configured queue gets the AMQP
// publisher; otherwise batches publish to an in-process broker so subscribers
// in the same process still see progress.
func buildPublisher(config *Config, logger *zap.Logger) (events.Publisher, func() error, error) {
	if config.Events != nil && config.Events.AMQPURL != "" {
		publisher, err := events.NewAMQPPublisher(config.Events.AMQPURL, logger)
		if err != nil {
			return nil, nil, err
		}
		return publisher, publisher.Close, nil
	}
	return events.NewBroker(), nil, nil
}

func buildAI(ctx context.Context, config *AIConfig, logger *zap.Logger) (*gemini.Screener, *gemini.Interviewer, error) {
	if config == nil || config.Gemini == nil {
		return nil, nil, errors.New("ai.gemini configuration is required")
	}

	provider := strings.TrimSpace(strings.ToLower(config.Provider))
	if provider != "" && provider != "gemini" {
		return nil, nil, fmt.Errorf("unsupported ai provider: %s", config.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, config.Gemini.Model, config.Gemini.MaxRetries)
	if err != nil {
		return nil, nil, err
	}

	aiLogger := logfields.WithAI(logger, "gemini", config.Gemini.Model)

	screener := gemini.NewScreener(generator, config.Gemini.MaxLogLength, aiLogger)
	interviewer := gemini.NewInterviewer(generator, config.Gemini.MaxLogLength, aiLogger)
	return screener, interviewer, nil
}

func buildRouter(config *Config, logger *zap.Logger) (*messenger.Router, error) {
	if config.Userbot == nil || config.Userbot.URL == "" {
		return nil, errors.New("userbot.url is required")
	}
	if config.Workspace == "" {
		return nil, errors.New("workspace is required")
	}

	userbotToken, err := secrets.Load(secrets.Source{
		Name: "userbot token",
		File: config.Userbot.TokenFile,
		Env:  "USERBOT_TOKEN",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set userbot.token-file or USERBOT_TOKEN_FILE)", err)
	}
	transport := messenger.NewUserbotClient(config.Userbot.URL, userbotToken, logger)

	var secondary messenger.SecondaryChannel
	if config.HHChat != nil && config.HHChat.TokenFile != "" {
		hhToken, err := secrets.Load(secrets.Source{
			Name: "hh chat token",
			File: config.HHChat.TokenFile,
		})
		if err != nil {
			return nil, err
		}
		secondary = hhchat.New(hhToken, logger)
	}

	routerLogger := logfields.WithWorkspace(logger, config.Workspace)
	return messenger.NewRouter(transport, secondary, messenger.NewSessionPool(), config.Workspace, routerLogger), nil
}
