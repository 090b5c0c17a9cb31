package tool

import (
	"sort"
	"sync"
)

// Registry manages tool registration and lookup.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool to the registry, replacing any previous tool of
// the same name.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns all registered tools sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		tools = append(tools, t)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// Names returns all tool names sorted.
func (r *Registry) Names() []string {
	tools := r.List()
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name()
	}
	return names
}

// DefaultRegistry creates a registry with all built-in vault tools. Tools
// receive the vault through the execution context, so the registry itself
// is stateless.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewReadNoteTool())
	r.Register(NewListNotesTool())
	r.Register(NewSearchNotesTool())
	r.Register(NewWriteNoteTool())
	r.Register(NewUpdateNoteTool())
	r.Register(NewMoveNoteTool())
	r.Register(NewDeleteNoteTool())
	r.Register(NewWebFetchTool())
	return r
}
