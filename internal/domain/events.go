package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event type constants for published domain events.
const (
	EventTypeExhibitCreated     = "exhibit.created"
	EventTypeExhibitUpdated     = "exhibit.updated"
	EventTypeExhibitDeleted     = "exhibit.deleted"
	EventTypeExhibitSupported   = "exhibit.supported"
	EventTypeExhibitUnsupported = "exhibit.unsupported"
)

// Event represents a domain event ready for publication.
type Event struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	ExhibitID int64           `json:"exhibit_id"`
	Actor     string          `json:"actor"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewEvent creates a new event for the given exhibit and actor.
// The payload is JSON-serialized automatically.
func NewEvent(eventType string, exhibitID int64, actor string, payload interface{}) (*Event, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		var err error
		payloadBytes, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}

	return &Event{
		EventID:   uuid.New().String(),
		EventType: eventType,
		ExhibitID: exhibitID,
		Actor:     actor,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}
