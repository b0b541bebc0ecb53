// Package session holds the active conversation: the ordered transcript,
// the system instruction, and the provider/model selection. The transcript
// is owned by the orchestrator during a turn; save, load, clear, and
// system-instruction changes are rejected while a turn is in flight.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	ai "github.com/spetersoncode/chatter"
	"github.com/spetersoncode/chatter/internal/store"
)

// ErrTurnInFlight is returned by operations that must not interleave with
// an active turn.
var ErrTurnInFlight = errors.New("session: a turn is in flight")

// Session is the single active conversation of a running client.
type Session struct {
	mu sync.Mutex

	id                string
	provider          ai.Provider
	model             string
	systemInstruction string
	createdAt         time.Time
	updatedAt         time.Time
	turnInFlight      bool

	history *store.MessageStore
}

// New creates an empty session for the given provider and model.
func New(provider ai.Provider, model string) *Session {
	now := time.Now().UTC()
	return &Session{
		id:        "session-" + uuid.New().String(),
		provider:  provider,
		model:     model,
		createdAt: now,
		updatedAt: now,
		history:   store.NewMessageStore(),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Provider returns the selected provider.
func (s *Session) Provider() ai.Provider {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.provider
}

// Model returns the selected model name.
func (s *Session) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// SystemInstruction returns the active system instruction, or empty.
func (s *Session) SystemInstruction() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.systemInstruction
}

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createdAt
}

// UpdatedAt returns the last modification time.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Len returns the number of messages in the transcript.
func (s *Session) Len() int {
	return s.history.Len()
}

// SetModel changes the model used for subsequent turns.
func (s *Session) SetModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
	s.updatedAt = time.Now().UTC()
}

// SetProvider changes the provider used for subsequent turns.
func (s *Session) SetProvider(provider ai.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provider = provider
	s.updatedAt = time.Now().UTC()
}

// SetSystemInstruction replaces the system instruction.
// Rejected while a turn is in flight.
func (s *Session) SetSystemInstruction(instruction string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.turnInFlight {
		return ErrTurnInFlight
	}
	s.systemInstruction = instruction
	s.updatedAt = time.Now().UTC()
	return nil
}

// BeginTurn marks the session as owned by an orchestrator turn.
// Returns ErrTurnInFlight if a turn is already active.
func (s *Session) BeginTurn() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.turnInFlight {
		return ErrTurnInFlight
	}
	s.turnInFlight = true
	return nil
}

// EndTurn releases turn ownership. Safe to call when no turn is active.
func (s *Session) EndTurn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turnInFlight = false
	s.updatedAt = time.Now().UTC()
}

// TurnInFlight reports whether a turn currently owns the session.
func (s *Session) TurnInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnInFlight
}

// Append adds messages to the transcript, stamping any message that does
// not carry a timestamp yet.
func (s *Session) Append(msgs ...ai.Message) {
	now := time.Now().UTC()
	stamped := make([]ai.Message, len(msgs))
	for i, msg := range msgs {
		if msg.Timestamp.IsZero() {
			msg.Timestamp = now
		}
		if msg.ID == "" {
			msg.ID = ai.GenerateMessageID()
		}
		stamped[i] = msg
	}
	s.history.Append(stamped...)

	s.mu.Lock()
	s.updatedAt = now
	s.mu.Unlock()
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []ai.Message {
	return s.history.Messages()
}

// PromptMessages returns the transcript prefixed with the system
// instruction as a system message, ready to send to a provider.
func (s *Session) PromptMessages() []ai.Message {
	s.mu.Lock()
	instruction := s.systemInstruction
	s.mu.Unlock()

	msgs := s.history.Messages()
	if instruction == "" {
		return msgs
	}
	out := make([]ai.Message, 0, len(msgs)+1)
	out = append(out, ai.NewSystemMessage(instruction))
	return append(out, msgs...)
}

// Clear removes all messages from the transcript.
// Rejected while a turn is in flight.
func (s *Session) Clear() error {
	s.mu.Lock()
	if s.turnInFlight {
		s.mu.Unlock()
		return ErrTurnInFlight
	}
	s.updatedAt = time.Now().UTC()
	s.mu.Unlock()

	s.history.Clear()
	return nil
}
