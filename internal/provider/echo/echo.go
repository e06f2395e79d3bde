package echo

import (
	"context"
	"strings"

	"github.com/resume-tailor/resume-tailor-go/internal/provider"
)

// Provider responds by echoing the prompt. It needs no inference server.
type Provider struct{}

func New() *Provider { return &Provider{} }

func (p *Provider) Generate(ctx context.Context, req *provider.GenerationRequest) (*provider.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, &provider.UpstreamError{Err: err}
	}
	return &provider.Result{Text: strings.TrimSpace("Echo: " + req.Prompt)}, nil
}

func (p *Provider) Ping(context.Context) error { return nil }
