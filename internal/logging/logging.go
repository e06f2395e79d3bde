// Package logging configures apex/log and carries request-scoped entries
// through a context.
package logging

import (
	"context"
	"io"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
)

// Setup installs the global handler. format is "json", "text" or "cli".
func Setup(level, format string, w io.Writer) error {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return err
	}
	switch strings.ToLower(format) {
	case "json":
		log.SetHandler(json.New(w))
	case "cli":
		log.SetHandler(cli.New(w))
	default:
		log.SetHandler(text.New(w))
	}
	log.SetLevel(lvl)
	return nil
}

type ctxKey struct{}

// WithEntry returns a copy of ctx carrying l.
func WithEntry(ctx context.Context, l log.Interface) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the entry stored by WithEntry or the global logger.
func FromContext(ctx context.Context) log.Interface {
	if l, ok := ctx.Value(ctxKey{}).(log.Interface); ok {
		return l
	}
	return log.Log
}
