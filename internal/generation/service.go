// Package generation runs prompts against the routed provider. It is shared
// by the HTTP server and the interactive CLI.
package generation

import (
	"context"
	"errors"
	"time"

	"github.com/apex/log"

	"github.com/resume-tailor/resume-tailor-go/internal/logging"
	"github.com/resume-tailor/resume-tailor-go/internal/metrics"
	"github.com/resume-tailor/resume-tailor-go/internal/prompt"
	"github.com/resume-tailor/resume-tailor-go/internal/provider"
	"github.com/resume-tailor/resume-tailor-go/internal/routing"
)

// ConnectErrorPrefix starts the text returned in place of a generation when
// the inference server cannot be reached.
const ConnectErrorPrefix = "Error: Could not connect to Ollama server: "

var errNoProvider = errors.New("no provider registered")

type Service struct {
	router       *routing.Router
	defaultModel string
	temperature  float64
}

func New(router *routing.Router, defaultModel string, temperature float64) *Service {
	return &Service{router: router, defaultModel: defaultModel, temperature: temperature}
}

// Generate returns the model's answer to prompt at the given temperature. Connectivity failures are
// reported in the returned text, prefixed with ConnectErrorPrefix, and a nil
// error. Any other failure, such as a malformed stream, is returned as an error.
func (s *Service) Generate(ctx context.Context, promptText, model string, temperature float64) (string, error) {
	if model == "" {
		model = s.defaultModel
	}
	p := s.router.ProviderFor(model)
	if p == nil {
		return "", errNoProvider
	}

	l := logging.FromContext(ctx).WithField("model", model)
	start := time.Now()
	res, err := p.Generate(ctx, &provider.GenerationRequest{
		Model:       model,
		Prompt:      promptText,
		Temperature: temperature,
	})
	elapsed := time.Since(start)
	metrics.GenerationDuration.WithLabelValues(model).Observe(elapsed.Seconds())

	if err != nil {
		var ue *provider.UpstreamError
		if errors.As(err, &ue) {
			metrics.GenerationTotal.WithLabelValues(model, "upstream_error").Inc()
			l.WithError(err).Warn("generation.upstream_failed")
			return ConnectErrorPrefix + ue.Error(), nil
		}
		metrics.GenerationTotal.WithLabelValues(model, "error").Inc()
		l.WithError(err).Error("generation.failed")
		return "", err
	}

	metrics.GenerationTotal.WithLabelValues(model, "ok").Inc()
	metrics.TokensTotal.WithLabelValues(model, "prompt").Add(float64(res.PromptTokens))
	metrics.TokensTotal.WithLabelValues(model, "output").Add(float64(res.OutputTokens))
	l.WithFields(log.Fields{
		"duration_ms":   elapsed.Milliseconds(),
		"output_chars":  len(res.Text),
		"output_tokens": res.OutputTokens,
	}).Info("generation.done")
	return res.Text, nil
}

// CoverLetter writes a cover letter for the resume tailored to the job.
func (s *Service) CoverLetter(ctx context.Context, resumeText, jobDescription, model string) (string, error) {
	return s.Generate(ctx, prompt.CoverLetter(resumeText, jobDescription), model, s.temperature)
}

// ResizeGuidance explains how to fit the resume into pages.
func (s *Service) ResizeGuidance(ctx context.Context, resumeText string, pages prompt.PageCount, model string) (string, error) {
	return s.Generate(ctx, prompt.Resize(resumeText, pages), model, s.temperature)
}
