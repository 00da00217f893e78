package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/deckhandai/deckhand-cli/internal/llm"
)

// Registry maps tool names to implementations. Registration happens once at
// startup; lookups are read-mostly.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger,
	}
}

// Register adds a tool. Names must be unique across the registry.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return fmt.Errorf("tool is nil")
	}
	desc := t.Descriptor()
	if desc.Name == "" {
		return fmt.Errorf("tool name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[desc.Name]; exists {
		return fmt.Errorf("tool %q already registered", desc.Name)
	}
	r.tools[desc.Name] = t
	r.logger.Debug("registered tool", zap.String("tool", desc.Name))
	return nil
}

// MustRegister registers a tool and panics on error.
// Use for static registration at startup.
func (r *Registry) MustRegister(t Tool) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Specs returns every tool definition in the schema format the model endpoint
// expects, ordered by name so requests are deterministic.
func (r *Registry) Specs() []llm.ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	specs := make([]llm.ToolSpec, 0, len(names))
	for _, name := range names {
		desc := r.tools[name].Descriptor()
		schema, err := json.Marshal(desc.InputSchema)
		if err != nil {
			// Schema is plain data; marshal cannot realistically fail.
			continue
		}
		specs = append(specs, llm.ToolSpec{
			Name:        desc.Name,
			Description: desc.Description,
			InputSchema: schema,
		})
	}
	return specs
}

// Dispatch validates input and executes the named tool. It never returns an
// error to the caller: unknown tools, malformed input, and execution errors
// all come back as failed Results so the agent loop can feed them to the
// model instead of crashing.
func (r *Registry) Dispatch(ctx context.Context, name string, input json.RawMessage) *Result {
	t, ok := r.Get(name)
	if !ok {
		r.logger.Warn("unknown tool requested", zap.String("tool", name))
		return Errorf("unknown tool %q", name)
	}

	if err := ValidateInput(t.Descriptor().InputSchema, input); err != nil {
		return Errorf("invalid input for %s: %v", name, err)
	}

	result, err := t.Execute(ctx, input)
	if err != nil {
		r.logger.Warn("tool execution failed", zap.String("tool", name), zap.Error(err))
		return Errorf("%s failed: %v", name, err)
	}
	if result == nil {
		return Errorf("%s returned no result", name)
	}
	return result
}
