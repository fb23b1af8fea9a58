package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/markdave123-py/chatters/internal/app"
	"github.com/markdave123-py/chatters/internal/config"
	"github.com/markdave123-py/chatters/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	if err := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatalf("logging: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("config: %v", err)
	}

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer application.Close()

	errc := make(chan error, 1)
	go func() { errc <- application.Server.Start() }()

	log.Info("Chatters is running.")
	select {
	case err := <-errc:
		if err != nil {
			log.Errorf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("shutdown: %v", err)
	}
}
