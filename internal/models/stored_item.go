package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type ItemType string

const (
	ItemReply   ItemType = "reply"
	ItemVibe    ItemType = "vibe"
	ItemSandbox ItemType = "sandbox"
)

var ErrUnknownItemType = errors.New("unknown history item type")

func (t ItemType) Valid() bool {
	switch t {
	case ItemReply, ItemVibe, ItemSandbox:
		return true
	}
	return false
}

// Payload is the tagged body of a StoredItem. Each ItemType has exactly one
// concrete payload.
type Payload interface {
	ItemType() ItemType
}

type ReplyPayload struct {
	Input       string       `json:"input"`
	Context     string       `json:"context"`
	Suggestions []Suggestion `json:"suggestions"`
}

func (ReplyPayload) ItemType() ItemType { return ItemReply }

type VibePayload struct {
	Message  string       `json:"message"`
	Analysis VibeAnalysis `json:"analysis"`
}

func (VibePayload) ItemType() ItemType { return ItemVibe }

type SandboxPayload struct {
	Messages []SandboxMessage `json:"messages"`
}

func (SandboxPayload) ItemType() ItemType { return ItemSandbox }

// StoredItem is one entry of a user's history. Items are appended, never
// mutated.
type StoredItem struct {
	ID        string
	Type      ItemType
	Timestamp time.Time
	Data      Payload
}

// NewStoredItem builds an unsaved item; the store assigns ID and Timestamp.
func NewStoredItem(p Payload) StoredItem {
	return StoredItem{Type: p.ItemType(), Data: p}
}

type storedItemWire struct {
	ID        string          `json:"id"`
	Type      ItemType        `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

func (s StoredItem) MarshalJSON() ([]byte, error) {
	if s.Data == nil {
		return nil, fmt.Errorf("history item %q has no payload", s.ID)
	}
	if s.Data.ItemType() != s.Type {
		return nil, fmt.Errorf("history item %q: payload %s does not match type %s", s.ID, s.Data.ItemType(), s.Type)
	}
	data, err := json.Marshal(s.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(storedItemWire{
		ID:        s.ID,
		Type:      s.Type,
		Timestamp: s.Timestamp.UnixMilli(),
		Data:      data,
	})
}

func (s *StoredItem) UnmarshalJSON(b []byte) error {
	var w storedItemWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	var p Payload
	switch w.Type {
	case ItemReply:
		var v ReplyPayload
		if err := json.Unmarshal(w.Data, &v); err != nil {
			return fmt.Errorf("reply payload: %w", err)
		}
		p = v
	case ItemVibe:
		var v VibePayload
		if err := json.Unmarshal(w.Data, &v); err != nil {
			return fmt.Errorf("vibe payload: %w", err)
		}
		p = v
	case ItemSandbox:
		var v SandboxPayload
		if err := json.Unmarshal(w.Data, &v); err != nil {
			return fmt.Errorf("sandbox payload: %w", err)
		}
		p = v
	default:
		return fmt.Errorf("%w: %q", ErrUnknownItemType, w.Type)
	}

	*s = StoredItem{
		ID:        w.ID,
		Type:      w.Type,
		Timestamp: time.UnixMilli(w.Timestamp),
		Data:      p,
	}
	return nil
}

// HistoryEvent is published whenever an item lands in a user's history.
type HistoryEvent struct {
	ProfileID string   `json:"profile_id,omitempty"`
	UserID    string   `json:"user_id"`
	ItemID    string   `json:"item_id"`
	Type      ItemType `json:"type"`
	SavedAt   string   `json:"saved_at"`
}
