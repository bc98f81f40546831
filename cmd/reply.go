package cmd

import (
	"context"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// replyCmd feeds a transcribed candidate answer into the interview loop.
// In production the transcription worker calls the same entry point.
var replyCmd = &cobra.Command{
	Use:   "reply <chat-id> <transcript>",
	Short: "Advance an interview with a transcribed candidate answer",
	Args:  cobra.MinimumNArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		reply(args[0], strings.Join(args[1:], " "))
	},
}

func init() {
	rootCmd.AddCommand(replyCmd)
}

func reply(chatID, transcript string) {
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

	if err := svc.interview.Advance(ctx, chatID, transcript); err != nil {
		logger.Fatal("interview turn failed", zap.String("chat_id", chatID), zap.Error(err))
	}
}
