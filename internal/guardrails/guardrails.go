package guardrails

import (
	"errors"
	"fmt"
)

var ErrInputTooLarge = errors.New("input exceeds size limit")

// Guardrails performs simple input validation. A zero limit accepts everything.
type Guardrails struct {
	maxBytes int
}

func New(maxBytes int) *Guardrails {
	return &Guardrails{maxBytes: maxBytes}
}

// CheckInput returns an error if any field is longer than the limit.
func (g *Guardrails) CheckInput(fields map[string]string) error {
	if g == nil || g.maxBytes <= 0 {
		return nil
	}
	for name, v := range fields {
		if len(v) > g.maxBytes {
			return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrInputTooLarge, name, len(v), g.maxBytes)
		}
	}
	return nil
}
