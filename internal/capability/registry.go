package capability

import (
	"fmt"
	"log/slog"
	"sort"

	provider "github.com/Cyclone1070/devassist/internal/provider/models"
)

// Registry maps capability names to capabilities. It is populated once at
// startup and only read afterwards, so lookups need no locking.
type Registry struct {
	registry map[string]Capability
	strict   bool
	logger   *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithStrict makes Register reject a name that is already registered instead
// of replacing it.
func WithStrict(strict bool) Option {
	return func(r *Registry) {
		r.strict = strict
	}
}

// WithLogger sets the logger used for registration warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		registry: make(map[string]Capability),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds capabilities by name. On a duplicate name the last
// registration wins and a warning is logged, unless the registry is strict.
func (r *Registry) Register(caps ...Capability) error {
	for _, c := range caps {
		name := c.Name()
		if !ValidName(name) {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
		if _, exists := r.registry[name]; exists {
			if r.strict {
				return fmt.Errorf("%w: %s", ErrDuplicateName, name)
			}
			r.logger.Warn("capability replaced by later registration", "capability", name)
		}
		r.registry[name] = c
	}
	return nil
}

// Lookup returns the capability registered under name.
func (r *Registry) Lookup(name string) (Capability, bool) {
	c, ok := r.registry[name]
	return c, ok
}

// Len returns the number of registered capabilities.
func (r *Registry) Len() int {
	return len(r.registry)
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.registry))
	for name := range r.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Declarations returns the tool definitions advertised to the model, sorted by name.
func (r *Registry) Declarations() []provider.ToolDefinition {
	decls := make([]provider.ToolDefinition, 0, len(r.registry))
	for _, c := range r.registry {
		decls = append(decls, provider.ToolDefinition{
			Name:        c.Name(),
			Description: c.Description(),
			Parameters:  c.Signature().Schema(),
		})
	}
	sort.Slice(decls, func(i, j int) bool {
		return decls[i].Name < decls[j].Name
	})
	return decls
}
