package store

import (
	"sync"
	"testing"

	ai "github.com/spetersoncode/chatter"
	"github.com/stretchr/testify/assert"
)

func TestMessageStore_Append(t *testing.T) {
	ms := NewMessageStore()

	assert.Equal(t, 0, ms.Len())

	ms.Append(ai.Message{Role: ai.RoleUser, Content: "Hello"})
	assert.Equal(t, 1, ms.Len())

	ms.Append(
		ai.Message{Role: ai.RoleAssistant, Content: "Hi there"},
		ai.Message{Role: ai.RoleUser, Content: "How are you?"},
	)
	assert.Equal(t, 3, ms.Len())
}

func TestMessageStore_Messages(t *testing.T) {
	ms := NewMessageStore()

	ms.Append(
		ai.Message{Role: ai.RoleUser, Content: "Hello"},
		ai.Message{Role: ai.RoleAssistant, Content: "Hi"},
	)

	messages := ms.Messages()
	assert.Len(t, messages, 2)
	assert.Equal(t, "Hello", messages[0].Content)
	assert.Equal(t, "Hi", messages[1].Content)

	// Verify it's a copy - modifying returned slice doesn't affect store
	messages[0].Content = "Modified"
	storeMessages := ms.Messages()
	assert.Equal(t, "Hello", storeMessages[0].Content)
}

func TestMessageStore_From(t *testing.T) {
	seed := []ai.Message{
		{Role: ai.RoleSystem, Content: "be brief"},
		{Role: ai.RoleUser, Content: "Hello"},
	}
	ms := NewMessageStoreFrom(seed)
	assert.Equal(t, 2, ms.Len())

	// Store holds its own copy of the seed slice.
	seed[0].Content = "Modified"
	assert.Equal(t, "be brief", ms.Messages()[0].Content)
}

func TestMessageStore_Clear(t *testing.T) {
	ms := NewMessageStore()

	ms.Append(
		ai.Message{Role: ai.RoleUser, Content: "Hello"},
		ai.Message{Role: ai.RoleAssistant, Content: "Hi"},
	)

	ms.Clear()
	assert.Equal(t, 0, ms.Len())
	assert.Empty(t, ms.Messages())
}

func TestMessageStore_Replace(t *testing.T) {
	ms := NewMessageStore()
	ms.Append(ai.Message{Role: ai.RoleUser, Content: "old"})

	ms.Replace([]ai.Message{
		{Role: ai.RoleUser, Content: "new one"},
		{Role: ai.RoleAssistant, Content: "new two"},
	})

	assert.Equal(t, 2, ms.Len())
	assert.Equal(t, "new one", ms.Messages()[0].Content)
}

func TestMessageStore_Clone(t *testing.T) {
	ms := NewMessageStore()

	ms.Append(
		ai.Message{Role: ai.RoleUser, Content: "Hello"},
		ai.Message{Role: ai.RoleAssistant, Content: "Hi"},
	)

	clone := ms.Clone()

	// Clone has same messages
	assert.Equal(t, 2, clone.Len())
	assert.Equal(t, "Hello", clone.Messages()[0].Content)

	// Modifying original doesn't affect clone
	ms.Append(ai.Message{Role: ai.RoleUser, Content: "New"})
	assert.Equal(t, 3, ms.Len())
	assert.Equal(t, 2, clone.Len())

	// Modifying clone doesn't affect original
	clone.Clear()
	assert.Equal(t, 3, ms.Len())
}

func TestMessageStore_Last(t *testing.T) {
	ms := NewMessageStore()
	ms.Append(
		ai.Message{Role: ai.RoleUser, Content: "one"},
		ai.Message{Role: ai.RoleAssistant, Content: "two"},
		ai.Message{Role: ai.RoleUser, Content: "three"},
	)

	t.Run("returns last n messages", func(t *testing.T) {
		last := ms.Last(2)
		assert.Len(t, last, 2)
		assert.Equal(t, "two", last[0].Content)
		assert.Equal(t, "three", last[1].Content)
	})

	t.Run("n larger than length returns all", func(t *testing.T) {
		assert.Len(t, ms.Last(10), 3)
	})

	t.Run("non-positive n returns nil", func(t *testing.T) {
		assert.Nil(t, ms.Last(0))
		assert.Nil(t, ms.Last(-1))
	})
}

func TestMessageStore_Concurrent(t *testing.T) {
	ms := NewMessageStore()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				ms.Append(ai.Message{Role: ai.RoleUser, Content: "msg"})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = ms.Messages()
				_ = ms.Len()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 500, ms.Len())
}
