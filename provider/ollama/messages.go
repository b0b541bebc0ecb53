package ollama

import (
	"encoding/json"
	"fmt"

	ai "github.com/spetersoncode/chatter"
)

// Wire types for the /api/chat endpoint.

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Tools    []toolDef      `json:"tools,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	ToolName  string         `json:"tool_name,omitempty"`
	ToolCalls []wireToolCall `json:"tool_calls,omitempty"`
}

type wireToolCall struct {
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name      string        `json:"name"`
	Arguments wireArguments `json:"arguments"`
}

// wireArguments tolerates both encodings Ollama uses for tool-call
// arguments: a JSON object and a JSON-encoded string.
type wireArguments string

func (a *wireArguments) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = wireArguments(s)
		return nil
	}
	*a = wireArguments(data)
	return nil
}

func (a wireArguments) MarshalJSON() ([]byte, error) {
	if len(a) == 0 {
		return []byte("{}"), nil
	}
	if json.Valid([]byte(a)) {
		return []byte(a), nil
	}
	return json.Marshal(string(a))
}

type toolDef struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type toolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type chatChunk struct {
	Model           string      `json:"model"`
	Message         chatMessage `json:"message"`
	Done            bool        `json:"done"`
	DoneReason      string      `json:"done_reason,omitempty"`
	PromptEvalCount int         `json:"prompt_eval_count,omitempty"`
	EvalCount       int         `json:"eval_count,omitempty"`
	Error           string      `json:"error,omitempty"`
}

func convertMessages(messages []ai.Message) []chatMessage {
	var out []chatMessage
	for _, msg := range messages {
		switch msg.Role {
		case ai.RoleTool:
			for _, tr := range msg.ToolResults {
				out = append(out, chatMessage{
					Role:     "tool",
					Content:  tr.Content,
					ToolName: tr.Name,
				})
			}
		case ai.RoleAssistant:
			m := chatMessage{Role: "assistant", Content: msg.Content}
			for _, tc := range msg.ToolCalls {
				m.ToolCalls = append(m.ToolCalls, wireToolCall{
					Function: wireFunction{
						Name:      tc.Name,
						Arguments: wireArguments(tc.Arguments),
					},
				})
			}
			out = append(out, m)
		default:
			out = append(out, chatMessage{Role: string(msg.Role), Content: msg.Content})
		}
	}
	return out
}

func convertTools(tools []ai.Tool) []toolDef {
	if len(tools) == 0 {
		return nil
	}
	out := make([]toolDef, len(tools))
	for i, t := range tools {
		out[i] = toolDef{
			Type: "function",
			Function: toolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return out
}

// extractToolCalls converts wire tool calls into chatter tool calls.
// Ollama does not assign call IDs, so a synthetic ID is derived from
// the call index and function name.
func extractToolCalls(calls []wireToolCall) []ai.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]ai.ToolCall, len(calls))
	for i, tc := range calls {
		args := string(tc.Function.Arguments)
		if args == "" {
			args = "{}"
		}
		out[i] = ai.ToolCall{
			ID:        fmt.Sprintf("call_%d_%s", i, tc.Function.Name),
			Name:      tc.Function.Name,
			Arguments: args,
		}
	}
	return out
}
