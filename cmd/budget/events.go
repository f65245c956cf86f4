package main

import (
	"context"
	"errors"
	"fmt"

	"budget/internal/amqp"
	"budget/internal/cli"
	"budget/internal/log"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print the action events published by a running server",
	RunE:  runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, _ []string) error {
	if !cfg.EventsEnabled() {
		return errors.New("AMQP_URL is not set")
	}

	ctx, cancel := cli.SignalContext(cmd.Context(), logger)
	defer cancel()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	out := cmd.OutOrStdout()
	return client.Consume(ctx, func(ctx context.Context, ev *amqp.ActionEvent) error {
		data, err := ev.ToJSON()
		if err != nil {
			return err
		}
		logger.DebugContext(ctx, "Event received",
			log.FieldAction, string(ev.Type),
			log.FieldOperation, log.OpConsume)
		_, err = fmt.Fprintln(out, string(data))
		return err
	})
}
