package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/spetersoncode/chatter"
)

func TestSession_New(t *testing.T) {
	s := New(ai.ProviderGoogle, "gemini-2.0-flash")

	assert.NotEmpty(t, s.ID())
	assert.Equal(t, ai.ProviderGoogle, s.Provider())
	assert.Equal(t, "gemini-2.0-flash", s.Model())
	assert.Empty(t, s.SystemInstruction())
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.TurnInFlight())
}

func TestSession_Append(t *testing.T) {
	t.Run("stamps timestamp and id", func(t *testing.T) {
		s := New(ai.ProviderOllama, "llama3.2")
		s.Append(ai.Message{Role: ai.RoleUser, Content: "hello"})

		msgs := s.Messages()
		require.Len(t, msgs, 1)
		assert.NotEmpty(t, msgs[0].ID)
		assert.False(t, msgs[0].Timestamp.IsZero())
	})

	t.Run("preserves existing timestamp", func(t *testing.T) {
		s := New(ai.ProviderOllama, "llama3.2")
		ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		msg := ai.NewUserMessage("hello")
		msg.Timestamp = ts
		s.Append(msg)

		msgs := s.Messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, ts, msgs[0].Timestamp)
	})
}

func TestSession_PromptMessages(t *testing.T) {
	t.Run("without system instruction", func(t *testing.T) {
		s := New(ai.ProviderGoogle, "gemini-2.0-flash")
		s.Append(ai.NewUserMessage("hi"))

		msgs := s.PromptMessages()
		require.Len(t, msgs, 1)
		assert.Equal(t, ai.RoleUser, msgs[0].Role)
	})

	t.Run("prepends system instruction", func(t *testing.T) {
		s := New(ai.ProviderGoogle, "gemini-2.0-flash")
		require.NoError(t, s.SetSystemInstruction("be terse"))
		s.Append(ai.NewUserMessage("hi"))

		msgs := s.PromptMessages()
		require.Len(t, msgs, 2)
		assert.Equal(t, ai.RoleSystem, msgs[0].Role)
		assert.Equal(t, "be terse", msgs[0].Content)
		assert.Equal(t, ai.RoleUser, msgs[1].Role)
	})

	t.Run("system message is not part of the transcript", func(t *testing.T) {
		s := New(ai.ProviderGoogle, "gemini-2.0-flash")
		require.NoError(t, s.SetSystemInstruction("be terse"))
		s.Append(ai.NewUserMessage("hi"))

		assert.Equal(t, 1, s.Len())
	})
}

func TestSession_TurnGating(t *testing.T) {
	s := New(ai.ProviderGoogle, "gemini-2.0-flash")
	require.NoError(t, s.BeginTurn())

	t.Run("double begin rejected", func(t *testing.T) {
		assert.ErrorIs(t, s.BeginTurn(), ErrTurnInFlight)
	})

	t.Run("clear rejected", func(t *testing.T) {
		assert.ErrorIs(t, s.Clear(), ErrTurnInFlight)
	})

	t.Run("system instruction rejected", func(t *testing.T) {
		assert.ErrorIs(t, s.SetSystemInstruction("x"), ErrTurnInFlight)
	})

	t.Run("save rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		assert.ErrorIs(t, s.Save(path), ErrTurnInFlight)
	})

	t.Run("load rejected", func(t *testing.T) {
		path := writeSession(t, New(ai.ProviderGoogle, "gemini-2.0-flash"))
		assert.ErrorIs(t, s.Load(path), ErrTurnInFlight)
	})

	t.Run("released by end turn", func(t *testing.T) {
		s.EndTurn()
		assert.False(t, s.TurnInFlight())
		assert.NoError(t, s.Clear())
	})
}

func TestSession_SaveLoad(t *testing.T) {
	t.Run("round-trip is lossless", func(t *testing.T) {
		s := New(ai.ProviderGoogle, "gemini-2.0-flash")
		require.NoError(t, s.SetSystemInstruction("you are a pirate"))
		s.Append(ai.NewUserMessage("read the file"))

		assistant := ai.Message{
			Role:    ai.RoleAssistant,
			Content: "",
			ToolCalls: []ai.ToolCall{
				{ID: "call_0_read_file", Name: "read_file", Arguments: `{"path":"/tmp/a.txt"}`},
			},
		}
		s.Append(assistant)
		s.Append(ai.NewToolResultMessage(ai.ToolResult{
			ToolCallID: "call_0_read_file",
			Name:       "read_file",
			Content:    `{"content":"hello"}`,
		}))
		s.Append(ai.Message{Role: ai.RoleAssistant, Content: "The file says hello."})

		path := writeSession(t, s)

		loaded, err := LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, s.ID(), loaded.ID())
		assert.Equal(t, s.Provider(), loaded.Provider())
		assert.Equal(t, s.Model(), loaded.Model())
		assert.Equal(t, s.SystemInstruction(), loaded.SystemInstruction())
		require.Equal(t, s.Len(), loaded.Len())

		want := s.Messages()
		got := loaded.Messages()
		for i := range want {
			assert.Equal(t, want[i].Role, got[i].Role)
			assert.Equal(t, want[i].Content, got[i].Content)
			assert.Equal(t, want[i].ToolCalls, got[i].ToolCalls)
			assert.Equal(t, want[i].ToolResults, got[i].ToolResults)
			assert.True(t, want[i].Timestamp.Equal(got[i].Timestamp))
		}
	})

	t.Run("load into existing session replaces state", func(t *testing.T) {
		saved := New(ai.ProviderOllama, "qwen2.5")
		saved.Append(ai.NewUserMessage("first"))
		path := writeSession(t, saved)

		s := New(ai.ProviderGoogle, "gemini-2.0-flash")
		s.Append(ai.NewUserMessage("stale"))
		require.NoError(t, s.Load(path))

		assert.Equal(t, saved.ID(), s.ID())
		assert.Equal(t, ai.ProviderOllama, s.Provider())
		assert.Equal(t, "qwen2.5", s.Model())
		require.Equal(t, 1, s.Len())
		assert.Equal(t, "first", s.Messages()[0].Content)
	})

	t.Run("missing file", func(t *testing.T) {
		s := New(ai.ProviderGoogle, "gemini-2.0-flash")
		err := s.Load(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("malformed json leaves session unmodified", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		s := New(ai.ProviderGoogle, "gemini-2.0-flash")
		s.Append(ai.NewUserMessage("keep me"))
		err := s.Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "malformed")
		assert.Equal(t, 1, s.Len())
		assert.Equal(t, ai.ProviderGoogle, s.Provider())
	})

	t.Run("version mismatch rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "v9.json")
		doc := `{"version":9,"id":"x","provider":"google","model":"m","messages":[]}`
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

		s := New(ai.ProviderGoogle, "gemini-2.0-flash")
		err := s.Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "version")
	})

	t.Run("unknown provider rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prov.json")
		doc := `{"version":1,"id":"x","provider":"skynet","model":"m","messages":[]}`
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

		s := New(ai.ProviderGoogle, "gemini-2.0-flash")
		assert.Error(t, s.Load(path))
	})

	t.Run("unknown fields ignored", func(t *testing.T) {
		base := New(ai.ProviderGoogle, "gemini-2.0-flash")
		path := writeSession(t, base)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		patched := append([]byte(`{"future_field":true,`), data[1:]...)
		require.NoError(t, os.WriteFile(path, patched, 0o600))

		_, err = LoadFile(path)
		assert.NoError(t, err)
	})
}

func writeSession(t *testing.T, s *Session) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, s.Save(path))
	return path
}
