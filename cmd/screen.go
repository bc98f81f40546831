package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/hrassist/recruiter/internal/events"
	"github.com/hrassist/recruiter/internal/logger"
	"github.com/hrassist/recruiter/internal/orchestrator"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var screenCmd = &cobra.Command{
	Use:   "screen [response-id ...]",
	Short: "Screen candidate responses against the vacancy requirements",
	Run: func(cmd *cobra.Command, args []string) {
		screen(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().String("vacancy", "", "screen every response of the vacancy")
	screenCmd.Flags().Bool("unscreened", false, "narrow the vacancy selection to responses not screened yet")
	screenCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before the batch")
	screenCmd.Flags().Int("concurrency", 0, "how many responses to screen in parallel")
}

func screen(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	vacancyID := cmd.Flag("vacancy").Value.String()
	if len(args) == 0 && vacancyID == "" {
		logger.Fatal("nothing selected", zap.String("hint", "pass response ids or --vacancy"))
	}

	svc, err := buildServices(ctx, config, logger)
	if err != nil {
		logger.Fatal("building services", zap.Error(err))
	}
	defer svc.close(logger)

	selection := orchestrator.Selection{
		IDs:            args,
		VacancyID:      vacancyID,
		OnlyUnscreened: cmd.Flag("unscreened").Value.String() == "true",
	}

	if cmd.Flag("auto-approve").Value.String() == "false" {
		label := fmt.Sprintf("Screen %d selected responses?", len(args))
		if vacancyID != "" {
			label = fmt.Sprintf("Screen responses of vacancy %s?", vacancyID)
		}
		prompt := promptui.Select{
			Label: label,
			Items: []string{PromptYes, PromptNo},
		}
		_, answer, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if answer != PromptYes {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	concurrency := config.batchConcurrency()
	if flagged, err := cmd.Flags().GetInt("concurrency"); err == nil && flagged > 0 {
		concurrency = flagged
	}

	batch := orchestrator.NewBatch(svc.store, svc.screening, svc.publisher, concurrency, logger)

	// Without a queue the publisher is the in-process broker. A vacancy
	// selection has a known progress key, so the run can be followed live.
	if broker, ok := svc.publisher.(*events.Broker); ok && vacancyID != "" {
		progress, unsubscribe := broker.Subscribe(vacancyID)
		defer unsubscribe()
		go func() {
			for observation := range progress {
				logger.Info("batch progress",
					zap.String("status", string(observation.Status)),
					zap.Int("processed", observation.Processed),
					zap.Int("failed", observation.Failed),
					zap.Int("total", observation.Total),
				)
			}
		}()
	}

	result, err := batch.ScreenMany(ctx, selection)
	if err != nil {
		logger.Fatal("batch screening failed", zap.Error(err))
	}

	logger.Info("batch finished",
		zap.String("batch_id", result.BatchID),
		zap.Int("total", result.Total),
		zap.Int("processed", result.Processed),
		zap.Int("failed", result.Failed),
	)
	for _, failure := range result.Failures {
		logger.Warn("response was not screened",
			zap.String("response_id", failure.ResponseID),
			zap.String("reason", failure.Reason),
		)
	}
}

func (c *Config) batchConcurrency() int {
	if c != nil && c.Batch != nil {
		return c.Batch.Concurrency
	}
	return 0
}

func newLogger() (*zap.Logger, error) {
	return logger.New(viper.GetBool("json"), viper.GetBool("debug"))
}
