package chatter

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Message is one entry in a conversation transcript.
type Message struct {
	// ID is an optional identifier, stamped when a message enters a
	// persisted session.
	ID      string `json:"id,omitempty"`
	Role    Role   `json:"role"`
	Content string `json:"content,omitempty"`
	// ToolCalls holds invocation requests; set only on assistant
	// messages that ask for tools.
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
	// ToolResults holds execution outcomes; set only on RoleTool
	// messages.
	ToolResults []ToolResult `json:"toolResults,omitempty"`
	// Timestamp records when the message was appended to a transcript.
	// Zero for messages that were never part of a session.
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// GenerateMessageID mints a fresh message identifier.
func GenerateMessageID() string {
	return "msg-" + uuid.New().String()
}

// HasToolCalls reports whether the message asks for any tool runs.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// NewUserMessage builds a plain user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewSystemMessage builds a system-instruction message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// Response is a provider's completed answer for one request.
type Response struct {
	Content      string `json:"content,omitempty"`
	FinishReason string `json:"finishReason,omitempty"`
	Usage        Usage  `json:"usage"`
	// ToolCalls lists the tool runs the model wants before it will
	// answer further.
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
}

// Usage counts tokens consumed by one request.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// StreamEvent is one unit of a streaming response.
type StreamEvent struct {
	// Delta is the incremental text carried by this event.
	Delta string
	// Done marks the terminal event of the stream.
	Done bool
	// Response holds the assembled response when Done is set.
	Response *Response
	// Err reports a stream failure; the channel closes after it.
	Err error
}
