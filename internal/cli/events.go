package cli

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"kafila-ticketing/internal/config"
	"kafila-ticketing/internal/kafka"
	"kafila-ticketing/internal/logger"
	"kafila-ticketing/internal/models"

	"github.com/spf13/cobra"
)

// NewEventsCommand creates the events command, which tails the order
// lifecycle topics.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Follow order lifecycle events from kafka",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log, err := logger.New(logger.Options{Output: cmd.ErrOrStderr(), MinLevel: logger.WARN})
			if err != nil {
				return err
			}

			consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.All(), cfg.Kafka.GroupID, log)
			defer consumer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			return consumer.Start(ctx, func(topic string, ev models.LifecycleEvent) {
				emit(out, rootOpts, ev, func(w io.Writer) {
					fmt.Fprintf(w, "%s  %-16s %s  %s\n", ev.Timestamp.Format("15:04:05"), ev.Type, ev.OrderID, ev.Status)
				})
			})
		},
	}
}
