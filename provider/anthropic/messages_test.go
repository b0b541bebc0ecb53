package anthropic

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/spetersoncode/chatter"
)

func TestConvertMessages(t *testing.T) {
	t.Run("system messages separated from conversation", func(t *testing.T) {
		msgs, system := convertMessages([]ai.Message{
			ai.NewSystemMessage("be terse"),
			ai.NewUserMessage("hello"),
		})

		require.Len(t, system, 1)
		assert.Equal(t, "be terse", system[0].Text)
		require.Len(t, msgs, 1)
		assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	})

	t.Run("empty system message skipped", func(t *testing.T) {
		msgs, system := convertMessages([]ai.Message{
			ai.NewSystemMessage(""),
			ai.NewUserMessage("hello"),
		})
		assert.Empty(t, system)
		assert.Len(t, msgs, 1)
	})

	t.Run("assistant tool calls become tool_use blocks", func(t *testing.T) {
		msgs, _ := convertMessages([]ai.Message{
			{
				Role:    ai.RoleAssistant,
				Content: "checking",
				ToolCalls: []ai.ToolCall{
					{ID: "toolu_1", Name: "read_file", Arguments: `{"path":"a.txt"}`},
				},
			},
		})

		require.Len(t, msgs, 1)
		assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[0].Role)
		require.Len(t, msgs[0].Content, 2)
		require.NotNil(t, msgs[0].Content[1].OfToolUse)
		assert.Equal(t, "toolu_1", msgs[0].Content[1].OfToolUse.ID)
		assert.Equal(t, "read_file", msgs[0].Content[1].OfToolUse.Name)
	})

	t.Run("tool results become user tool_result blocks", func(t *testing.T) {
		msgs, _ := convertMessages([]ai.Message{
			ai.NewToolResultMessage(ai.ToolResult{
				ToolCallID: "toolu_1",
				Name:       "read_file",
				Content:    `{"content":"x"}`,
				IsError:    true,
			}),
		})

		require.Len(t, msgs, 1)
		assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
		require.Len(t, msgs[0].Content, 1)
		require.NotNil(t, msgs[0].Content[0].OfToolResult)
		assert.Equal(t, "toolu_1", msgs[0].Content[0].OfToolResult.ToolUseID)
	})
}

func TestConvertTools(t *testing.T) {
	tools := convertTools([]ai.Tool{{
		Name:        "read_file",
		Description: "Read a file",
		Parameters:  []byte(`{"type":"object","properties":{"path":{"type":"string"}},"required":["path"]}`),
	}})

	require.Len(t, tools, 1)
	require.NotNil(t, tools[0].OfTool)
	assert.Equal(t, "read_file", tools[0].OfTool.Name)
	assert.Equal(t, []string{"path"}, tools[0].OfTool.InputSchema.Required)
}
