package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// GenerationRequest is the body posted to the inference server.
type GenerationRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
}

// StreamChunk is one newline-delimited object of a streamed generation.
// The eval counters are only present on the final chunk.
type StreamChunk struct {
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
	EvalCount       int    `json:"eval_count,omitempty"`
}

// UnmarshalJSON matches keys exactly. Keys that differ only in case are
// ignored, as are unknown keys.
func (c *StreamChunk) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("stream chunk is null")
	}
	*c = StreamChunk{}
	for key, dst := range map[string]any{
		"response":          &c.Response,
		"done":              &c.Done,
		"prompt_eval_count": &c.PromptEvalCount,
		"eval_count":        &c.EvalCount,
	} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

// Result is the reassembled text of a stream.
type Result struct {
	Text         string
	PromptTokens int
	OutputTokens int
}

// Provider handles text generation for one or more models.
type Provider interface {
	Generate(ctx context.Context, req *GenerationRequest) (*Result, error)
}

// Pinger is implemented by providers that can report whether their backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ErrMalformedChunk is returned when a stream line is not a JSON object.
var ErrMalformedChunk = errors.New("malformed stream chunk")

// UpstreamError reports that the inference server could not be reached,
// failed mid-stream, or answered with an error status.
type UpstreamError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		msg := fmt.Sprintf("%d %s for url: %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
		if e.Body != "" {
			msg += " (" + e.Body + ")"
		}
		return msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "upstream unavailable"
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstream reports whether err is a connectivity-class failure.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
