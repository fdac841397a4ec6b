// Package events publishes domain events to a RabbitMQ topic exchange.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types and their routing keys.
const (
	FavoriteToggledType = "cinebot.favorite.toggled.v1"
)

// Producer names this service in event metadata.
const Producer = "cinebot"

// Meta describes an event.
type Meta struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Producer      string    `json:"producer,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Time          time.Time `json:"time"`
}

// Envelope is the JSON body of every published message.
type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

// FavoriteToggled is emitted after a user's favourite flag for a film changes.
type FavoriteToggled struct {
	UserID   int64  `json:"user_id"`
	FilmUUID string `json:"film_uuid"`
	IsFav    bool   `json:"is_fav"`
}

// NewEnvelope wraps data with fresh metadata. correlationID is usually the
// update's rid and may be empty.
func NewEnvelope(eventType, correlationID string, data any) Envelope {
	return Envelope{
		Meta: Meta{
			ID:            uuid.NewString(),
			Type:          eventType,
			Producer:      Producer,
			CorrelationID: correlationID,
			Time:          time.Now().UTC(),
		},
		Data: data,
	}
}
