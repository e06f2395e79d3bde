package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/joho/godotenv"

	"github.com/resume-tailor/resume-tailor-go/internal/config"
	"github.com/resume-tailor/resume-tailor-go/internal/logging"
	"github.com/resume-tailor/resume-tailor-go/internal/observability"
	"github.com/resume-tailor/resume-tailor-go/internal/provider/ollama"
	"github.com/resume-tailor/resume-tailor-go/internal/routing"
	"github.com/resume-tailor/resume-tailor-go/internal/server"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format, os.Stdout); err != nil {
		log.WithError(err).Fatal("failed to configure logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := observability.Setup(ctx, cfg.TelemetryURL, cfg.ServiceName)
	if err != nil {
		log.WithError(err).Fatal("failed to set up tracing")
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.WithError(err).Warn("tracer shutdown")
		}
	}()

	client := ollama.New(cfg.Ollama.BaseURL, cfg.Ollama.Timeout)
	rt := routing.NewDefault(cfg.Ollama.DefaultModel, "ollama", client)

	log.WithFields(log.Fields{
		"ollama": cfg.Ollama.BaseURL,
		"model":  cfg.Ollama.DefaultModel,
	}).Info("resume tailor starting")

	if err := server.New(cfg, rt).Start(ctx); err != nil {
		log.WithError(err).Fatal("server error")
	}
}
