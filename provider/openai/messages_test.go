package openai

import (
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/spetersoncode/chatter"
)

func TestConvertMessages(t *testing.T) {
	t.Run("roles map directly", func(t *testing.T) {
		msgs := convertMessages([]ai.Message{
			ai.NewSystemMessage("be terse"),
			ai.NewUserMessage("hello"),
			{Role: ai.RoleAssistant, Content: "hi"},
		})

		require.Len(t, msgs, 3)
		assert.NotNil(t, msgs[0].OfSystem)
		assert.NotNil(t, msgs[1].OfUser)
		assert.NotNil(t, msgs[2].OfAssistant)
	})

	t.Run("assistant tool calls carry id and arguments", func(t *testing.T) {
		msgs := convertMessages([]ai.Message{
			{
				Role: ai.RoleAssistant,
				ToolCalls: []ai.ToolCall{
					{ID: "call_abc", Name: "read_file", Arguments: `{"path":"a.txt"}`},
				},
			},
		})

		require.Len(t, msgs, 1)
		require.NotNil(t, msgs[0].OfAssistant)
		require.Len(t, msgs[0].OfAssistant.ToolCalls, 1)
		tc := msgs[0].OfAssistant.ToolCalls[0]
		assert.Equal(t, "call_abc", tc.ID)
		assert.Equal(t, "read_file", tc.Function.Name)
		assert.Equal(t, `{"path":"a.txt"}`, tc.Function.Arguments)
	})

	t.Run("each tool result becomes its own tool message", func(t *testing.T) {
		msgs := convertMessages([]ai.Message{
			ai.NewToolResultMessage(
				ai.ToolResult{ToolCallID: "call_1", Content: "a"},
				ai.ToolResult{ToolCallID: "call_2", Content: "b"},
			),
		})

		require.Len(t, msgs, 2)
		assert.NotNil(t, msgs[0].OfTool)
		assert.NotNil(t, msgs[1].OfTool)
	})
}

func TestExtractToolCalls(t *testing.T) {
	calls := extractToolCalls([]openai.ChatCompletionMessageToolCall{
		{
			ID: "call_abc",
			Function: openai.ChatCompletionMessageToolCallFunction{
				Name:      "read_file",
				Arguments: `{"path":"a.txt"}`,
			},
		},
	})

	require.Len(t, calls, 1)
	assert.Equal(t, "call_abc", calls[0].ID)
	assert.Equal(t, "read_file", calls[0].Name)
}
