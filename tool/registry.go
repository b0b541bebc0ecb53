package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	ai "github.com/spetersoncode/chatter"
)

// registeredTool pairs a definition with the handler that serves it.
type registeredTool struct {
	tool    ai.Tool
	handler Handler
}

// Registry holds the tool set offered to the model and dispatches
// calls to handlers. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]registeredTool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]registeredTool),
	}
}

// Register adds a tool and its handler, rejecting duplicate names.
func (r *Registry) Register(tool ai.Tool, handler Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return &ErrToolAlreadyRegistered{Name: tool.Name}
	}

	r.tools[tool.Name] = registeredTool{
		tool:    tool,
		handler: handler,
	}
	return nil
}

// MustRegister panics where Register would error.
func (r *Registry) MustRegister(tool ai.Tool, handler Handler) {
	if err := r.Register(tool, handler); err != nil {
		panic(err)
	}
}

// Unregister drops a tool; unknown names are a no-op.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

// Get looks up the handler for a tool name.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.tools[name]
	if !ok {
		return nil, false
	}
	return rt.handler, true
}

// GetTool looks up the definition for a tool name.
func (r *Registry) GetTool(name string) (ai.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.tools[name]
	if !ok {
		return ai.Tool{}, false
	}
	return rt.tool, true
}

// Tools snapshots every registered definition for handing to a
// provider request.
func (r *Registry) Tools() []ai.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]ai.Tool, 0, len(r.tools))
	for _, rt := range r.tools {
		tools = append(tools, rt.tool)
	}
	return tools
}

// Names lists the registered tool names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Len reports how many tools are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// RegisterFunc registers a typed handler; the argument JSON is
// unmarshaled into T before the handler runs and the parameter schema
// is derived from T's struct tags.
//
// Example:
//
//	type searchArgs struct {
//	    Query string `json:"query" desc:"Search query" required:"true"`
//	}
//
//	tool.RegisterFunc(registry, "search", "Search the web",
//	    func(ctx context.Context, args searchArgs) (string, error) {
//	        return doSearch(args.Query), nil
//	    },
//	)
func RegisterFunc[T any](r *Registry, name, description string, fn TypedHandler[T]) error {
	t, h, err := Func(name, description, fn)
	if err != nil {
		return err
	}
	return r.Register(t, h)
}

// MustRegisterFunc panics where RegisterFunc would error.
func MustRegisterFunc[T any](r *Registry, name, description string, fn TypedHandler[T]) {
	if err := RegisterFunc(r, name, description, fn); err != nil {
		panic(err)
	}
}

// Func builds the Tool definition and wrapping Handler for a typed
// function without registering them.
func Func[T any](name, description string, fn TypedHandler[T]) (ai.Tool, Handler, error) {
	schema, err := SchemaFor[T]()
	if err != nil {
		return ai.Tool{}, nil, err
	}

	t := ai.Tool{
		Name:        name,
		Description: description,
		Parameters:  schema,
	}

	handler := func(ctx context.Context, call ai.ToolCall) (string, error) {
		var args T
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		return fn(ctx, args)
	}

	return t, handler, nil
}

// Execute runs the handler for a tool call and returns a ToolResult.
// It never returns a Go error to the caller: unknown tool names, malformed
// arguments, and handler failures are all captured into a ToolResult with
// IsError set so the model can observe the failure and adapt.
func (r *Registry) Execute(ctx context.Context, call ai.ToolCall) ai.ToolResult {
	r.mu.RLock()
	rt, ok := r.tools[call.Name]
	r.mu.RUnlock()

	result := ai.ToolResult{
		ToolCallID: call.ID,
		Name:       call.Name,
	}

	if !ok {
		result.Content = (&ErrToolNotFound{Name: call.Name}).Error()
		result.IsError = true
		return result
	}

	content, err := rt.handler(ctx, call)
	if err != nil {
		result.Content = (&ErrToolExecution{Name: call.Name, Err: err}).Error()
		result.IsError = true
		return result
	}

	result.Content = content
	return result
}
