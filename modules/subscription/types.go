package subscription

import (
	"time"

	"github.com/evghenimelnic/chat-server/modules/chat"
)

// ScopeFilter restricts which delivery scopes a subscription observes.
type ScopeFilter string

const (
	ScopeAny    ScopeFilter = "any"
	ScopeCommon ScopeFilter = "common"
	ScopeRoom   ScopeFilter = "room"
	ScopeP2P    ScopeFilter = "p2p"
)

// Valid reports whether f is a known scope filter.
func (f ScopeFilter) Valid() bool {
	switch f {
	case ScopeAny, ScopeCommon, ScopeRoom, ScopeP2P:
		return true
	default:
		return false
	}
}

// Subscription is a standing, user-owned interest record. Immutable once
// created; the dispatcher reads it on every inbound message.
//
// Keywords are stored trimmed and case-folded (see NormalizeKeywords).
// A nil Where, or one with a non-positive radius, disables the location
// filter. Nil time bounds leave that side of the window open.
type Subscription struct {
	ID        string         `bson:"_id,omitempty" json:"id"`
	UserID    string         `bson:"user_id" json:"user_id"`
	Scope     ScopeFilter    `bson:"scope" json:"scope"`
	Keywords  []string       `bson:"what" json:"what"`
	Where     *chat.Location `bson:"where,omitempty" json:"where,omitempty"`
	WhenStart *time.Time     `bson:"when_start,omitempty" json:"when_start,omitempty"`
	WhenEnd   *time.Time     `bson:"when_end,omitempty" json:"when_end,omitempty"`
	RoomID    string         `bson:"room_id,omitempty" json:"room_id,omitempty"`
	ChatID    string         `bson:"chat_id,omitempty" json:"chat_id,omitempty"`
	CreatedAt time.Time      `bson:"created_at" json:"created_at"`
}

// Notification is the payload pushed to a user's notification stream when
// one of their subscriptions matches a message. The firing subscription
// rides along so a client holding several overlapping subscriptions can
// tell the deliveries apart.
type Notification struct {
	Type         string       `json:"type"`
	Subscription Subscription `json:"subscription"`
	Message      chat.Message `json:"message"`
}

// NotificationType is the Type value of every subscription notification.
const NotificationType = "subscription"
