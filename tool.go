package chatter

import "encoding/json"

// Tool describes a function the model may request during a conversation.
type Tool struct {
	// Name uniquely identifies the tool within a registry.
	Name string
	// Description tells the model what the tool does and when to reach for it.
	Description string
	// Parameters is the JSON Schema object for the tool's arguments.
	Parameters json.RawMessage
}

// ToolCall is a single tool invocation requested by the model.
type ToolCall struct {
	// ID pairs this call with its eventual ToolResult.
	ID string `json:"id"`
	// Name of the tool to invoke.
	Name string `json:"name"`
	// Arguments is the raw JSON argument payload.
	Arguments string `json:"arguments"`
}

// ToolResult carries the outcome of one executed tool call back to the model.
type ToolResult struct {
	// ToolCallID matches the ID of the originating ToolCall.
	ToolCallID string `json:"toolCallId"`
	// Name of the tool that ran. Some wire formats key results by
	// function name rather than call ID, so it travels alongside.
	Name string `json:"name,omitempty"`
	// Content is the payload returned to the model.
	Content string `json:"content"`
	// IsError marks a failed execution; the content then holds the
	// error text for the model to react to.
	IsError bool `json:"isError,omitempty"`
}

// ToolChoice constrains how the model may use the supplied tools.
type ToolChoice string

const (
	// ToolChoiceAuto leaves the decision to the model (the default).
	ToolChoiceAuto ToolChoice = "auto"
	// ToolChoiceNone withholds tools for this request.
	ToolChoiceNone ToolChoice = "none"
	// ToolChoiceRequired demands at least one tool call.
	ToolChoiceRequired ToolChoice = "required"
)

// NewToolResultMessage wraps tool results in a RoleTool message for the
// next provider turn.
func NewToolResultMessage(results ...ToolResult) Message {
	return Message{
		Role:        RoleTool,
		ToolResults: results,
	}
}
