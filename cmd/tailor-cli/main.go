package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/joho/godotenv"

	"github.com/resume-tailor/resume-tailor-go/internal/cli"
	"github.com/resume-tailor/resume-tailor-go/internal/config"
	"github.com/resume-tailor/resume-tailor-go/internal/generation"
	"github.com/resume-tailor/resume-tailor-go/internal/logging"
	"github.com/resume-tailor/resume-tailor-go/internal/provider/ollama"
	"github.com/resume-tailor/resume-tailor-go/internal/routing"
)

// The model comes from ollama.default_model (TAILOR_OLLAMA_DEFAULT_MODEL).
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	// diagnostics go to stderr so stdout carries only the session
	if err := logging.Setup(cfg.Log.Level, "cli", os.Stderr); err != nil {
		log.WithError(err).Fatal("failed to configure logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := ollama.New(cfg.Ollama.BaseURL, cfg.Ollama.Timeout)
	rt := routing.NewDefault(cfg.Ollama.DefaultModel, "ollama", client)
	svc := generation.New(rt, cfg.Ollama.DefaultModel, cfg.Ollama.Temperature)

	if err := cli.New(os.Stdin, os.Stdout, svc, "").Run(ctx); err != nil {
		log.WithError(err).Fatal("session failed")
	}
}
