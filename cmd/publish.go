package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

const (
	defaultPublishTopic   = "htmtfunas/97921921312/tes"
	defaultPublishMessage = "Hello, I'm Veendy"
)

func newPublishCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "publish [message]",
		Short: "Publish a single message and exit",
		Long:  `Connects to the configured sink, publishes one message and disconnects. Handy for checking that a subscriber is listening.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic, _ := cmd.Flags().GetString("topic")
			timeout, _ := cmd.Flags().GetDuration("timeout")

			message := defaultPublishMessage
			if len(args) == 1 {
				message = args[0]
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			sink, err := newSink(ctx, cmd.Flags(), logger)
			if err != nil {
				return err
			}
			defer sink.Close()

			if err := sink.Publish(ctx, topic, message); err != nil {
				return err
			}

			logger.WithField("topic", topic).Info("Message published")
			return nil
		},
	}

	c.Flags().StringP("topic", "t", defaultPublishTopic, "Topic to publish to")
	c.Flags().Duration("timeout", 10*time.Second, "Give up after this long")
	return c
}
