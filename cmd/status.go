package cmd

import (
	"context"
	"log"

	"github.com/hrassist/recruiter/internal/model"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Manual HR gates of the response lifecycle. Everything else moves through
// screening and interview side effects.
var approveCmd = &cobra.Command{
	Use:   "approve <response-id>",
	Short: "Approve a screened response for the interview dialog",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		setStatus(args[0], model.StatusDialogApproved)
	},
}

var skipCmd = &cobra.Command{
	Use:   "skip <response-id>",
	Short: "Exclude a response from further processing",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		setStatus(args[0], model.StatusSkipped)
	},
}

func init() {
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(skipCmd)
}

func setStatus(responseID string, next model.ResponseStatus) {
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

	if err := svc.store.UpdateResponseStatus(ctx, responseID, next); err != nil {
		logger.Fatal("updating response status",
			zap.String("response_id", responseID),
			zap.String("status", string(next)),
			zap.Error(err),
		)
	}

	logger.Info("response status updated",
		zap.String("response_id", responseID),
		zap.String("status", string(next)),
	)
}
