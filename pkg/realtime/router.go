package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/evghenimelnic/chat-server/pkg/logger"
)

// Router fans a payload out to every current member of a scope's recipient
// group. Delivery is fire-and-forget per recipient: one broken connection
// never blocks or fails delivery to the rest.
type Router struct {
	registry *Registry
	inflight keyedMutex
	log      *slog.Logger
}

// NewRouter creates a router over the given registry. A nil logger
// discards delivery diagnostics.
func NewRouter(registry *Registry, log *slog.Logger) *Router {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Router{
		registry: registry,
		inflight: keyedMutex{entries: make(map[ScopeKey]*kmEntry)},
		log:      log,
	}
}

// Registry returns the registry the router delivers through.
func (rt *Router) Registry() *Registry {
	return rt.registry
}

// Broadcast delivers payload to every member of key except those whose
// identity is listed in exclude. Each live member gets at most one
// delivery attempt; a failed attempt removes that member from the
// registry (self-heal) and delivery continues with the rest.
//
// Broadcasts are serialized per scope key so that messages handed to the
// router in store order reach each recipient in that order. Broadcasts to
// different keys proceed concurrently.
func (rt *Router) Broadcast(ctx context.Context, key ScopeKey, payload any, exclude ...string) {
	rt.inflight.lock(key)
	defer rt.inflight.unlock(key)

	members := rt.registry.Snapshot(key)
	if len(members) == 0 {
		// A scope with no live members is a no-op, not an error.
		return
	}

	var skip map[string]struct{}
	if len(exclude) > 0 {
		skip = make(map[string]struct{}, len(exclude))
		for _, identity := range exclude {
			skip[identity] = struct{}{}
		}
	}

	for _, m := range members {
		if _, excluded := skip[m.Identity]; excluded {
			continue
		}
		if err := m.Recipient.Deliver(payload); err != nil {
			// Transient delivery failure is treated as disconnect. The
			// snapshot's own recipient is passed so self-heal never evicts
			// a replacement that joined after the snapshot was taken.
			rt.registry.Leave(key, m.Identity, m.Recipient)
			rt.log.DebugContext(ctx, "recipient removed after failed delivery",
				slog.String("scope", key.Kind.String()),
				slog.String("scope_id", key.ID),
				slog.String("identity", m.Identity),
				logger.Error(err),
			)
		}
	}
}

// keyedMutex serializes broadcasts per scope key. Entries are reference
// counted and dropped when the last holder releases, so short-lived rooms
// do not accumulate lock state.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[ScopeKey]*kmEntry
}

type kmEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key ScopeKey) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &kmEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

func (k *keyedMutex) unlock(key ScopeKey) {
	k.mu.Lock()
	e := k.entries[key]
	e.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
	k.mu.Unlock()
}
