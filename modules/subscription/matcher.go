package subscription

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/evghenimelnic/chat-server/modules/chat"
	"github.com/evghenimelnic/chat-server/pkg/geo"
)

// Match reports whether msg satisfies every criterion of sub: scope,
// keywords, location, and time window. The predicates are pure and
// evaluated cheapest-first.
//
// A malformed subscription (missing owner, unknown scope filter) never
// matches; one bad record must not abort a dispatch pass.
func Match(sub Subscription, msg chat.Message) bool {
	if sub.UserID == "" || !sub.Scope.Valid() {
		return false
	}
	return matchScope(sub, msg) &&
		matchKeywords(sub, msg) &&
		matchLocation(sub, msg) &&
		matchTime(sub, msg)
}

func matchScope(sub Subscription, msg chat.Message) bool {
	if sub.Scope == ScopeAny {
		return true
	}
	if string(sub.Scope) != string(msg.Scope) {
		return false
	}
	// An unset room/chat id on the subscription means "any room" /
	// "any session" within that scope.
	if sub.Scope == ScopeRoom && sub.RoomID != "" && sub.RoomID != msg.RoomID {
		return false
	}
	if sub.Scope == ScopeP2P && sub.ChatID != "" && sub.ChatID != msg.ChatID {
		return false
	}
	return true
}

func matchKeywords(sub Subscription, msg chat.Message) bool {
	if len(sub.Keywords) == 0 {
		return true
	}

	content := foldCase(msg.Content)
	for _, keyword := range sub.Keywords {
		// Substring rather than word-boundary matching: recall-biased
		// on purpose.
		if keyword != "" && strings.Contains(content, foldCase(keyword)) {
			return true
		}
	}
	return false
}

func matchLocation(sub Subscription, msg chat.Message) bool {
	if sub.Where == nil {
		return true
	}
	// A subscription with a location cannot be confirmed against a
	// message that has none.
	if msg.Location == nil {
		return false
	}
	// Non-positive radius disables the distance constraint entirely.
	if sub.Where.RadiusKm <= 0 {
		return true
	}

	distance := geo.Distance(
		sub.Where.Latitude, sub.Where.Longitude,
		msg.Location.Latitude, msg.Location.Longitude,
	)
	return distance <= sub.Where.RadiusKm
}

func matchTime(sub Subscription, msg chat.Message) bool {
	event := msg.CreatedAt
	if msg.EventTime != nil && !msg.EventTime.IsZero() {
		event = *msg.EventTime
	}
	// No usable timestamp at all: fail open.
	if event.IsZero() {
		return true
	}

	// Both bounds are inclusive.
	if sub.WhenStart != nil && event.Before(*sub.WhenStart) {
		return false
	}
	if sub.WhenEnd != nil && event.After(*sub.WhenEnd) {
		return false
	}
	return true
}

// foldCase lowercases with full unicode case folding, so keyword matching
// behaves the same for non-ASCII content.
func foldCase(s string) string {
	return cases.Fold().String(s)
}

// NormalizeKeywords trims, case-folds and de-blanks a keyword list.
// Applied once at creation; Match assumes stored keywords are normalized.
func NormalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		keyword = foldCase(strings.TrimSpace(keyword))
		if keyword != "" {
			out = append(out, keyword)
		}
	}
	return out
}
