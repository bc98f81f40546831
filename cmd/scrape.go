package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/hrassist/recruiter/internal/orchestrator"
	"github.com/hrassist/recruiter/internal/scraper"
	"github.com/hrassist/recruiter/internal/secrets"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <vacancy-id>",
	Short: "Trigger the scraping service to import fresh responses of a vacancy",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		scrape(args[0])
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

func scrape(vacancyID string) {
	ctx := context.Background()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	client, err := buildScraper(config, logger)
	if err != nil {
		logger.Fatal("building the scraper client", zap.Error(err))
	}

	gate := orchestrator.NewScraperGate(logger)
	err = gate.TryRun(ctx, func(ctx context.Context) error {
		run, err := client.Trigger(ctx, vacancyID)
		if err != nil {
			return err
		}
		logger.Info("scrape run started",
			zap.String("vacancy_id", vacancyID),
			zap.String("run_id", run.ID))

		if run.Waiting() {
			logger.Info("scraper hit a verification challenge, solve it in the browser session",
				zap.String("run_id", run.ID))
			err := gate.AwaitVerification(ctx, func(ctx context.Context) (bool, error) {
				current, err := client.Status(ctx, run.ID)
				if err != nil {
					return false, err
				}
				return !current.Waiting(), nil
			})
			if err != nil {
				return err
			}
		}

		final, err := client.Status(ctx, run.ID)
		if err != nil {
			return err
		}
		logger.Info("scrape run is past verification",
			zap.String("run_id", final.ID),
			zap.String("status", final.Status),
			zap.Int("collected", final.Collected))
		return nil
	})
	if err != nil {
		logger.Fatal("scrape failed", zap.String("vacancy_id", vacancyID), zap.Error(err))
	}
}

func buildScraper(config *Config, logger *zap.Logger) (*scraper.Client, error) {
	if config == nil || config.Scraper == nil || config.Scraper.URL == "" {
		return nil, errors.New("scraper.url is required")
	}

	token, err := secrets.Load(secrets.Source{
		Name: "scraper token",
		File: config.Scraper.TokenFile,
		Env:  "SCRAPER_TOKEN",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set scraper.token-file or SCRAPER_TOKEN_FILE)", err)
	}

	return scraper.New(config.Scraper.URL, token, logger), nil
}
