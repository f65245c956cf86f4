package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"budget/internal/amqp"
	"budget/internal/cli"
	apphttp "budget/internal/http"
	"budget/internal/log"
	"budget/internal/session"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web UI and JSON API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := cli.SignalContext(cmd.Context(), logger)
	defer cancel()

	store, err := cli.NewStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	cats, err := cli.LoadCategories(cfg)
	if err != nil {
		return err
	}

	store.Subscribe(cli.DispatchLogger(logger))

	sessions := session.NewRegistry(cfg.SessionMax, cfg.SessionTTL, session.WithLogger(logger))
	srv := apphttp.NewServer(":"+cfg.Port, store, sessions, cats,
		apphttp.WithLogger(logger),
		apphttp.WithCORSOrigins(cfg.CORSOrigins))

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	if cfg.EventsEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			return err
		}
		defer client.Close()

		pub := amqp.NewPublisher(client, cfg.EventBuffer, logger)
		store.Subscribe(pub.Observe)
		g.Go(func() error { return pub.Run(gctx) })
	}

	g.Go(func() error { return sessions.Run(gctx, cfg.SessionCleanup) })

	g.Go(func() error {
		logger.Info("Starting budget server",
			"port", cfg.Port,
			log.FieldBackend, cfg.StateBackend,
			"events", cfg.EventsEnabled(),
			log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error(), log.FieldOperation, log.OpShutdown)
			return err
		}
		logger.Info("Server stopped gracefully", log.FieldOperation, log.OpShutdown)
		return nil
	})

	return g.Wait()
}
