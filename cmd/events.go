/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/EduNet2023/NovoApkPesca/config"
	"github.com/EduNet2023/NovoApkPesca/internal/mq"
	"github.com/spf13/cobra"
)

// eventsCmd represents the events command.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect the domain event stream",
}

var eventsListenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Consume domain events from the configured broker and log them",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

		backend, err := newListenBackend(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() {
			_ = backend.Close()
		}()

		logger.Info("listening for events", "backend", cfg.Events.Backend, "channel", cfg.Events.Channel)
		err = backend.Subscribe(cmd.Context(), cfg.Events.Channel, func(ctx context.Context, msg mq.Message) error {
			logger.Info("event received",
				"id", msg.ID,
				"event_type", msg.Attributes["event_type"],
				"payload", string(msg.Data))
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsListenCmd)
}

func newListenBackend(ctx context.Context, cfg config.Config) (mq.Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Events.Backend)) {
	case "":
		return nil, errors.New("EVENTS_BACKEND is not configured")
	case "rabbitmq":
		return mq.NewRabbitMQClient(cfg.Events.RabbitMQ)
	case "pubsub":
		return mq.NewPubSubClient(ctx, cfg.Events.PubSub)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Events.Backend)
	}
}
