package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var contactCmd = &cobra.Command{
	Use:   "contact <response-id>",
	Short: "Send the first interview message to a screened candidate",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		contact(args[0])
	},
}

func init() {
	rootCmd.AddCommand(contactCmd)
}

func contact(responseID string) {
	ctx := context.Background()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	svc, err := buildServices(ctx, config, logger)
	if err != nil {
		logger.Fatal("building services", zap.Error(err))
	}
	defer svc.close(logger)

	if err := svc.interview.FirstContact(ctx, responseID); err != nil {
		logger.Fatal("first contact failed", zap.String("response_id", responseID), zap.Error(err))
	}
}
