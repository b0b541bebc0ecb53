package session

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	ai "github.com/spetersoncode/chatter"
	"github.com/spetersoncode/chatter/internal/store"
)

// Version is the session document format version written by Save.
const Version = 1

// document is the on-disk session format. Unknown fields in a loaded
// document are ignored so newer writers stay readable.
type document struct {
	Version           int          `json:"version"`
	ID                string       `json:"id"`
	Provider          string       `json:"provider"`
	Model             string       `json:"model"`
	SystemInstruction string       `json:"system_instruction,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
	Messages          []ai.Message `json:"messages"`
}

// Save writes the session to path as versioned JSON.
// Rejected while a turn is in flight.
func (s *Session) Save(path string) error {
	s.mu.Lock()
	if s.turnInFlight {
		s.mu.Unlock()
		return ErrTurnInFlight
	}
	doc := document{
		Version:           Version,
		ID:                s.id,
		Provider:          string(s.provider),
		Model:             s.model,
		SystemInstruction: s.systemInstruction,
		CreatedAt:         s.createdAt,
		UpdatedAt:         s.updatedAt,
	}
	s.mu.Unlock()

	doc.Messages = s.history.Messages()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("session: write %s: %w", path, err)
	}
	return nil
}

// Load reads a session document from path and replaces the session's
// state with it. On any failure the session is left unmodified.
// Rejected while a turn is in flight.
func (s *Session) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("session: read %s: %w", path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("session: malformed document %s: %w", path, err)
	}
	if doc.Version != Version {
		return fmt.Errorf("session: unsupported document version %d in %s (want %d)", doc.Version, path, Version)
	}
	provider, err := ai.ParseProvider(doc.Provider)
	if err != nil {
		return fmt.Errorf("session: document %s: %w", path, err)
	}

	s.mu.Lock()
	if s.turnInFlight {
		s.mu.Unlock()
		return ErrTurnInFlight
	}
	s.id = doc.ID
	s.provider = provider
	s.model = doc.Model
	s.systemInstruction = doc.SystemInstruction
	s.createdAt = doc.CreatedAt
	s.updatedAt = doc.UpdatedAt
	s.mu.Unlock()

	s.history.Replace(doc.Messages)
	return nil
}

// LoadFile reads a session document from path into a new session.
func LoadFile(path string) (*Session, error) {
	s := &Session{history: store.NewMessageStore()}
	if err := s.Load(path); err != nil {
		return nil, err
	}
	return s, nil
}
