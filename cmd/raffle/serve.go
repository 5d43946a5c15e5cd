package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"raffle/internal/api"
	"raffle/internal/beacon"
	"raffle/internal/config"
	"raffle/internal/event"
	"raffle/internal/logger"
	"raffle/internal/program"
	"raffle/internal/tracker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var lifecycleEvents = []event.EventType{
	event.RaffleCreatedEventType,
	event.TicketsPurchasedEventType,
	event.WinnerRevealedEventType,
	event.PrizeClaimedEventType,
	event.EntrantsClosedEventType,
}

func serveRun(cmd *cobra.Command, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	eventBus := event.NewEventBus(registry)
	defer eventBus.Stop()
	for _, eventType := range lifecycleEvents {
		eventBus.SubscribeFunc(eventType, func(evt event.Event) {
			logger.Info("raffle event", zap.String("type", string(evt.Type)), zap.Any("data", evt.Data))
		})
	}

	p, s, err := openProgram(cfg, program.WithEventBus(eventBus), program.WithPromRegistry(registry))
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Error("closing storage failed", zap.Error(err))
		}
	}()

	source, err := beacon.Open(cfg.BeaconSource, cfg.TonapiToken, cfg.BeaconSeed)
	if err != nil {
		return err
	}

	operator, trackerEnabled, err := cfg.TrackerIdentity()
	if err != nil {
		return err
	}
	trackerDone := make(chan struct{})
	if trackerEnabled {
		t := tracker.NewTracker(ctx, p, source, operator, cfg.TrackerInterval)
		go func() {
			defer close(trackerDone)
			t.Run()
		}()
	} else {
		close(trackerDone)
	}

	server := &http.Server{
		Addr: cfg.ListenAddress,
		Handler: api.NewServer(p,
			api.WithBeacon(source),
			api.WithFaucet(cfg.Faucet),
			api.WithGatherer(registry),
		).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("address", cfg.ListenAddress), zap.Bool("faucet", cfg.Faucet))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case runErr = <-errCh:
		logger.Error("stopping because of an error", zap.Error(runErr))
	case sig := <-waitForInterrupt():
		logger.Info("interrupt signal received", zap.String("signal", sig.String()))
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}
	<-trackerDone
	return runErr
}

func waitForInterrupt() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	return sigCh
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the tracker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd, mustConfig(cmd))
		},
	}
}
