// Package ollama talks to a local Ollama-compatible inference server.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/resume-tailor/resume-tailor-go/internal/provider"
)

const (
	DefaultBaseURL = "http://localhost:11434"

	generatePath = "/api/generate"
	tagsPath     = "/api/tags"

	maxErrorBytes = 512
)

var tracer = otel.Tracer("ollama")

// Client streams generations from the /api/generate endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for baseURL. A zero timeout means requests may block
// until the server finishes the stream.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    makeHTTPClient(timeout),
	}
}

func makeHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          50,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if timeout <= 0 {
		return &http.Client{Transport: tr}
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// Generate posts req and reassembles the streamed response.
func (c *Client) Generate(ctx context.Context, req *provider.GenerationRequest) (*provider.Result, error) {
	ctx, span := tracer.Start(ctx, "ollama.generate",
		trace.WithAttributes(
			attribute.String("llm.model", req.Model),
			attribute.Int("llm.prompt_bytes", len(req.Prompt)),
		))
	defer span.End()

	res, err := c.generate(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("llm.prompt_tokens", res.PromptTokens),
		attribute.Int("llm.output_tokens", res.OutputTokens),
	)
	return res, nil
}

func (c *Client) generate(ctx context.Context, req *provider.GenerationRequest) (*provider.Result, error) {
	url := c.baseURL + generatePath
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &provider.UpstreamError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		return nil, &provider.UpstreamError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	res, err := Collect(resp.Body)
	if err != nil {
		var ue *provider.UpstreamError
		if errors.As(err, &ue) {
			ue.URL = url
		}
		return nil, err
	}
	return res, nil
}

// Collect reads newline-delimited chunks from r and concatenates their
// response fragments until a chunk with done set, or the end of r.
// Anything after the first done chunk is left unread. Lines have no length
// cap; the final chunk carries the whole context array.
func Collect(r io.Reader) (*provider.Result, error) {
	br := bufio.NewReader(r)

	var (
		text strings.Builder
		res  provider.Result
	)
	for n := 1; ; n++ {
		raw, readErr := br.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, &provider.UpstreamError{Err: readErr}
		}
		if line := bytes.TrimSpace(raw); len(line) > 0 {
			var chunk provider.StreamChunk
			if err := json.Unmarshal(line, &chunk); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", provider.ErrMalformedChunk, n, err)
			}
			text.WriteString(chunk.Response)
			if chunk.Done {
				res.PromptTokens = chunk.PromptEvalCount
				res.OutputTokens = chunk.EvalCount
				break
			}
		}
		if readErr != nil {
			break
		}
	}

	res.Text = strings.TrimSpace(text.String())
	return &res, nil
}

// Ping checks that the server answers its model listing endpoint.
func (c *Client) Ping(ctx context.Context) error {
	url := c.baseURL + tagsPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &provider.UpstreamError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBytes))
	if resp.StatusCode >= 400 {
		return &provider.UpstreamError{URL: url, StatusCode: resp.StatusCode}
	}
	return nil
}
