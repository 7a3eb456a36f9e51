package tools

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages available tools for the agent
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates a new tool registry
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry
// Returns an error if a tool with the same name already exists
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}

	r.tools[name] = tool
	return nil
}

// Get retrieves a tool by name
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	return tool, exists
}

// List returns all registered tool names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tools
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Catalog returns all registered tools sorted by name, for building the
// tool section of the system prompt.
func (r *Registry) Catalog() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	catalog := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		catalog = append(catalog, tool)
	}
	sort.Slice(catalog, func(i, j int) bool {
		return catalog[i].Name() < catalog[j].Name()
	})
	return catalog
}

// DefaultRegistry creates a registry populated with the built-in tool set.
func DefaultRegistry(cfg Config) (*Registry, error) {
	registry := NewRegistry()

	builtins := []Tool{
		&ReadFile{WorkDir: cfg.WorkDir},
		&WriteFile{WorkDir: cfg.WorkDir},
		&CreateDirectory{WorkDir: cfg.WorkDir},
		&ListFiles{WorkDir: cfg.WorkDir},
		&ExecuteCode{WorkDir: cfg.WorkDir, Interpreter: cfg.Interpreter, Timeout: cfg.CommandTimeout},
		&RunCommand{WorkDir: cfg.WorkDir, Timeout: cfg.CommandTimeout},
		&GitStatus{WorkDir: cfg.WorkDir},
	}

	for _, tool := range builtins {
		if err := registry.Register(tool); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
