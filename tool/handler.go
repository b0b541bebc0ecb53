package tool

import (
	"context"

	ai "github.com/spetersoncode/chatter"
)

// Handler runs one tool call and yields the content returned to the
// model. A returned error becomes a ToolResult with IsError set; it is
// never propagated out of the registry.
type Handler func(ctx context.Context, call ai.ToolCall) (string, error)

// TypedHandler receives its arguments pre-unmarshaled into T.
// RegisterFunc and Func wrap one of these into a Handler.
type TypedHandler[T any] func(ctx context.Context, args T) (string, error)
