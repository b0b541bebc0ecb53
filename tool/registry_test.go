package tool

import (
	"context"
	"errors"
	"testing"

	ai "github.com/spetersoncode/chatter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTool(name string) ai.Tool {
	return ai.Tool{
		Name:        name,
		Description: "test tool",
		Parameters:  []byte(`{"type":"object","properties":{}}`),
	}
}

func echoHandler(ctx context.Context, call ai.ToolCall) (string, error) {
	return call.Arguments, nil
}

func TestRegistry_Register(t *testing.T) {
	t.Run("registers and retrieves a tool", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(newTestTool("echo"), echoHandler))

		h, ok := r.Get("echo")
		require.True(t, ok)
		assert.NotNil(t, h)

		def, ok := r.GetTool("echo")
		require.True(t, ok)
		assert.Equal(t, "echo", def.Name)

		assert.Equal(t, 1, r.Len())
		assert.Equal(t, []string{"echo"}, r.Names())
	})

	t.Run("duplicate registration fails", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(newTestTool("echo"), echoHandler))

		err := r.Register(newTestTool("echo"), echoHandler)
		var dup *ErrToolAlreadyRegistered
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "echo", dup.Name)
	})

	t.Run("MustRegister panics on duplicate", func(t *testing.T) {
		r := NewRegistry()
		r.MustRegister(newTestTool("echo"), echoHandler)
		assert.Panics(t, func() {
			r.MustRegister(newTestTool("echo"), echoHandler)
		})
	})

	t.Run("unknown tool is not found", func(t *testing.T) {
		r := NewRegistry()
		_, ok := r.Get("missing")
		assert.False(t, ok)
		_, ok = r.GetTool("missing")
		assert.False(t, ok)
	})

	t.Run("Unregister removes the tool", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(newTestTool("echo"), echoHandler))
		r.Unregister("echo")
		assert.Equal(t, 0, r.Len())
	})
}

func TestRegistry_Tools(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newTestTool("a"), echoHandler))
	require.NoError(t, r.Register(newTestTool("b"), echoHandler))

	tools := r.Tools()
	assert.Len(t, tools, 2)
}

func TestRegisterFunc(t *testing.T) {
	type greetArgs struct {
		Name string `json:"name" desc:"Who to greet" required:"true"`
	}

	r := NewRegistry()
	require.NoError(t, RegisterFunc(r, "greet", "Greet someone",
		func(ctx context.Context, args greetArgs) (string, error) {
			return "hello " + args.Name, nil
		}))

	t.Run("schema comes from struct tags", func(t *testing.T) {
		def, ok := r.GetTool("greet")
		require.True(t, ok)
		assert.Contains(t, string(def.Parameters), `"name"`)
		assert.Contains(t, string(def.Parameters), `"required"`)
	})

	t.Run("arguments are unmarshaled into the typed struct", func(t *testing.T) {
		result := r.Execute(context.Background(), ai.ToolCall{
			ID:        "call_1",
			Name:      "greet",
			Arguments: `{"name":"world"}`,
		})
		assert.False(t, result.IsError)
		assert.Equal(t, "hello world", result.Content)
	})
}

func TestRegistry_Execute(t *testing.T) {
	t.Run("successful execution fills call ID and name", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(newTestTool("echo"), echoHandler))

		result := r.Execute(context.Background(), ai.ToolCall{
			ID:        "call_7",
			Name:      "echo",
			Arguments: `{"x":1}`,
		})

		assert.Equal(t, "call_7", result.ToolCallID)
		assert.Equal(t, "echo", result.Name)
		assert.Equal(t, `{"x":1}`, result.Content)
		assert.False(t, result.IsError)
	})

	t.Run("handler error becomes an error result, not a panic", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(newTestTool("boom"),
			func(ctx context.Context, call ai.ToolCall) (string, error) {
				return "", errors.New("disk on fire")
			}))

		result := r.Execute(context.Background(), ai.ToolCall{ID: "call_1", Name: "boom"})
		assert.True(t, result.IsError)
		assert.Contains(t, result.Content, "disk on fire")
		assert.Equal(t, "call_1", result.ToolCallID)
	})

	t.Run("unknown tool becomes an error result", func(t *testing.T) {
		r := NewRegistry()
		result := r.Execute(context.Background(), ai.ToolCall{ID: "call_1", Name: "missing"})
		assert.True(t, result.IsError)
		assert.Contains(t, result.Content, "not found")
	})

	t.Run("malformed arguments become an error result", func(t *testing.T) {
		type args struct {
			N int `json:"n"`
		}
		r := NewRegistry()
		require.NoError(t, RegisterFunc(r, "typed", "typed tool",
			func(ctx context.Context, a args) (string, error) { return "ok", nil }))

		result := r.Execute(context.Background(), ai.ToolCall{
			ID:        "call_1",
			Name:      "typed",
			Arguments: `{"n":"not a number"}`,
		})
		assert.True(t, result.IsError)
		assert.Contains(t, result.Content, "invalid arguments")
	})
}
