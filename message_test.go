package chatter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMessageID(t *testing.T) {
	t.Run("has msg prefix", func(t *testing.T) {
		id := GenerateMessageID()
		assert.True(t, strings.HasPrefix(id, "msg-"))
	})

	t.Run("generates unique identifiers", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			id := GenerateMessageID()
			assert.False(t, seen[id], "duplicate ID: %s", id)
			seen[id] = true
		}
	})
}

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("hello")
	assert.Equal(t, RoleUser, msg.Role)
	assert.Equal(t, "hello", msg.Content)
	assert.Empty(t, msg.ToolCalls)
}

func TestNewSystemMessage(t *testing.T) {
	msg := NewSystemMessage("You are a helpful assistant.")
	assert.Equal(t, RoleSystem, msg.Role)
	assert.Equal(t, "You are a helpful assistant.", msg.Content)
}

func TestMessageHasToolCalls(t *testing.T) {
	t.Run("false without tool calls", func(t *testing.T) {
		msg := Message{Role: RoleAssistant, Content: "plain text"}
		assert.False(t, msg.HasToolCalls())
	})

	t.Run("true with tool calls", func(t *testing.T) {
		msg := Message{
			Role:      RoleAssistant,
			ToolCalls: []ToolCall{{ID: "call_1", Name: "read_file"}},
		}
		assert.True(t, msg.HasToolCalls())
	})
}

func TestMessageJSONRoundTrip(t *testing.T) {
	original := Message{
		ID:      GenerateMessageID(),
		Role:    RoleAssistant,
		Content: "checking the file",
		ToolCalls: []ToolCall{
			{ID: "call_1", Name: "read_file", Arguments: `{"path":"main.go"}`},
		},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestMessageJSONOmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(Message{Role: RoleUser, Content: "hi"})
	require.NoError(t, err)

	assert.NotContains(t, string(data), "toolCalls")
	assert.NotContains(t, string(data), "toolResults")
	assert.NotContains(t, string(data), `"id"`)
}
