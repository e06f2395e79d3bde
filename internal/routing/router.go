package routing

import (
	"sort"

	"github.com/resume-tailor/resume-tailor-go/internal/provider"
	"github.com/resume-tailor/resume-tailor-go/internal/provider/echo"
)

// EchoModel is served by the echo provider and needs no inference server.
const EchoModel = "echo"

// Model describes a registered model and the backend serving it.
type Model struct {
	Name    string `json:"name"`
	Backend string `json:"backend"`
}

// Router maps models to providers. Unregistered model names go to the
// default provider, which is the first one registered.
type Router struct {
	models      map[string]Model
	providers   map[string]provider.Provider
	defaultP    provider.Provider
	defaultName string
}

func New() *Router {
	return &Router{
		models:    make(map[string]Model),
		providers: make(map[string]provider.Provider),
	}
}

// NewDefault registers backend for defaultModel, which also makes it the
// fallback for any other model name, plus the echo model.
func NewDefault(defaultModel, backendName string, backend provider.Provider) *Router {
	r := New()
	r.Register(defaultModel, backendName, backend)
	r.Register(EchoModel, "echo", echo.New())
	return r
}

// Register associates a model with a provider implementation.
func (r *Router) Register(model, backend string, p provider.Provider) {
	r.providers[model] = p
	r.models[model] = Model{Name: model, Backend: backend}
	if r.defaultP == nil {
		r.defaultP = p
		r.defaultName = model
	}
}

// ProviderFor returns the provider for a model or the default provider.
func (r *Router) ProviderFor(model string) provider.Provider {
	if p, ok := r.providers[model]; ok {
		return p
	}
	return r.defaultP
}

// Default returns the default provider and the model it was registered with.
func (r *Router) Default() (string, provider.Provider) {
	return r.defaultName, r.defaultP
}

func (r *Router) Models() []Model {
	out := make([]Model, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
