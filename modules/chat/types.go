package chat

import (
	"time"

	"github.com/evghenimelnic/chat-server/pkg/geo"
)

// Scope identifies the delivery domain a message belongs to.
type Scope string

const (
	ScopeCommon Scope = "common"
	ScopeRoom   Scope = "room"
	ScopeP2P    Scope = "p2p"
)

// Valid reports whether s is one of the known message scopes.
func (s Scope) Valid() bool {
	switch s {
	case ScopeCommon, ScopeRoom, ScopeP2P:
		return true
	default:
		return false
	}
}

// Location is a geographic point with an optional display name and radius.
// A zero RadiusKm means no radius was given.
type Location struct {
	Name      string  `bson:"name,omitempty" json:"name,omitempty"`
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
	RadiusKm  float64 `bson:"radius_km,omitempty" json:"radius_km,omitempty"`
}

// Validate checks coordinate bounds.
func (l Location) Validate() error {
	if !geo.ValidLatitude(l.Latitude) {
		return ErrInvalidLatitude
	}
	if !geo.ValidLongitude(l.Longitude) {
		return ErrInvalidLongitude
	}
	if l.RadiusKm < 0 {
		return ErrInvalidRadius
	}
	return nil
}

// Message is a stored chat message. Immutable once stored; ID and
// CreatedAt are assigned by the store.
type Message struct {
	ID        string     `bson:"_id,omitempty" json:"id"`
	UserID    string     `bson:"user_id" json:"user_id"`
	Content   string     `bson:"content" json:"content"`
	Location  *Location  `bson:"location,omitempty" json:"location,omitempty"`
	EventTime *time.Time `bson:"event_time,omitempty" json:"event_time,omitempty"`
	Scope     Scope      `bson:"scope" json:"scope"`
	RoomID    string     `bson:"room_id,omitempty" json:"room_id,omitempty"`
	ChatID    string     `bson:"chat_id,omitempty" json:"chat_id,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
}

// Incoming is the payload a connection submits for delivery. The scope and
// its ids are supplied by the endpoint the payload arrived on, never by
// the payload itself.
type Incoming struct {
	UserID    string     `json:"user_id"`
	Content   string     `json:"content"`
	Location  *Location  `json:"location,omitempty"`
	EventTime *time.Time `json:"event_time,omitempty"`
}

// Validate checks the fields a caller controls.
func (in Incoming) Validate() error {
	if in.UserID == "" {
		return ErrMissingUserID
	}
	if in.Content == "" {
		return ErrEmptyContent
	}
	if in.Location != nil {
		if err := in.Location.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Room is chat room metadata. Tags are stored lower-cased.
type Room struct {
	ID          string     `bson:"_id,omitempty" json:"id"`
	Name        string     `bson:"name" json:"name"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	Tags        []string   `bson:"tags" json:"tags"`
	Topic       string     `bson:"topic,omitempty" json:"topic,omitempty"`
	Location    *Location  `bson:"location,omitempty" json:"location,omitempty"`
	EventTime   *time.Time `bson:"event_time,omitempty" json:"event_time,omitempty"`
}

// RoomFilter narrows a room listing. Geo fields act together: a bounding
// box is applied only when latitude, longitude and radius are all set.
type RoomFilter struct {
	Tags      []string
	Topic     string
	Query     string
	Latitude  *float64
	Longitude *float64
	RadiusKm  *float64
	StartTime *time.Time
	EndTime   *time.Time
}

// Session is a private p2p conversation between 2..10 participants.
type Session struct {
	ID           string     `bson:"_id,omitempty" json:"id"`
	Participants []string   `bson:"participants" json:"participants"`
	Topic        string     `bson:"topic,omitempty" json:"topic,omitempty"`
	ExpiresAt    *time.Time `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
}

const (
	minSessionParticipants = 2
	maxSessionParticipants = 10
)

// Validate checks the participant list bounds.
func (s Session) Validate() error {
	if len(s.Participants) < minSessionParticipants || len(s.Participants) > maxSessionParticipants {
		return ErrInvalidParticipants
	}
	return nil
}
