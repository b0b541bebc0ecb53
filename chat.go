package chatter

import "context"

// ChatProvider is the contract every provider adapter satisfies.
type ChatProvider interface {
	// Chat runs one blocking completion over the transcript.
	Chat(ctx context.Context, messages []Message, opts ...Option) (*Response, error)

	// ChatStream runs a completion incrementally. The returned channel
	// yields deltas and exactly one terminal event (a final response or
	// an error), then closes. Cancelling ctx ends the stream early.
	ChatStream(ctx context.Context, messages []Message, opts ...Option) (<-chan StreamEvent, error)

	// SupportsTools reports whether the named model accepts tool
	// definitions. Adapters that cannot probe cheaply return true and
	// let the request itself fail.
	SupportsTools(ctx context.Context, model string) bool
}
