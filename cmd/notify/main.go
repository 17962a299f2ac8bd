package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guardian-engine-go/internal/common"
	"guardian-engine-go/internal/config"
	"guardian-engine-go/internal/notifier"

	"go.uber.org/zap"
)

func main() {
	intervalFlag := flag.Duration("interval", 0, "Override sweep interval (e.g. 30m, default from NOTIFIER_POLLING_INTERVAL)")
	urgencyFlag := flag.String("min-urgency", "", "Minimum urgency to announce: info, warning or critical (default from NOTIFIER_MIN_URGENCY)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	if *intervalFlag > 0 {
		cfg.Notifier.PollingInterval = *intervalFlag
	}
	if *urgencyFlag != "" {
		cfg.Notifier.MinUrgency = *urgencyFlag
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zap.L().Info("Starting streak warning notifier")

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	n := notifier.NewNotifier(notifier.Config{
		Store:           services.DbService,
		PollingInterval: cfg.Notifier.PollingInterval,
		MinUrgency:      cfg.Notifier.MinUrgency,
	})

	if err := n.Start(ctx); err != nil {
		zap.L().Fatal("Failed to start notifier", zap.Error(err))
	}

	zap.L().Info("Notifier running")
	zap.L().Info("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zap.L().Info("Shutdown signal received, stopping notifier...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		n.Stop()
		close(done)
	}()

	select {
	case <-done:
		zap.L().Info("Notifier stopped gracefully")
	case <-shutdownCtx.Done():
		zap.L().Warn("Forced shutdown after timeout")
	}
}
