package realtime

import "sync"

// group holds the members of one scope key. Each group carries its own
// lock so churn in one room never serializes against another.
type group struct {
	mu      sync.RWMutex
	members map[string]Recipient
}

// Registry tracks live recipients per scope key. It is the only mutable
// shared structure of the realtime core and the exclusive owner of the
// scope-key to recipient mapping; callers iterate over snapshots, never
// over internal storage.
type Registry struct {
	mu     sync.RWMutex
	groups map[ScopeKey]*group
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{groups: make(map[ScopeKey]*group)}
}

// Join registers rec under (key, identity), creating the group on first
// join. Joining with an identity that is already present replaces the
// previous recipient: a reconnect supersedes the stale connection.
func (r *Registry) Join(key ScopeKey, identity string, rec Recipient) {
	r.mu.Lock()
	g, ok := r.groups[key]
	if !ok {
		g = &group{members: make(map[string]Recipient)}
		r.groups[key] = g
	}
	// Taking the group lock before releasing the registry lock keeps the
	// fresh group from being reaped by a concurrent Leave.
	g.mu.Lock()
	r.mu.Unlock()

	g.members[identity] = rec
	g.mu.Unlock()
}

// Leave removes rec if it is still the member registered under
// (key, identity). A leave from a superseded connection is a no-op, so a
// reconnect that replaced the entry is never evicted by the stale
// connection's teardown. A nil rec removes whatever is registered.
// Removing an absent member is a no-op: disconnect is best-effort. The
// group's storage is dropped once its last member is gone, so churny
// rooms do not leak.
func (r *Registry) Leave(key ScopeKey, identity string, rec Recipient) {
	r.mu.RLock()
	g := r.groups[key]
	r.mu.RUnlock()
	if g == nil {
		return
	}

	g.mu.Lock()
	if cur, ok := g.members[identity]; ok && (rec == nil || cur == rec) {
		delete(g.members, identity)
	}
	empty := len(g.members) == 0
	g.mu.Unlock()
	if !empty {
		return
	}

	// Re-check under the registry lock: a concurrent Join may have
	// repopulated the group, or replaced it entirely.
	r.mu.Lock()
	if cur, ok := r.groups[key]; ok && cur == g {
		cur.mu.Lock()
		if len(cur.members) == 0 {
			delete(r.groups, key)
		}
		cur.mu.Unlock()
	}
	r.mu.Unlock()
}

// Snapshot returns a stable copy of the group's current members. A
// snapshot may contain a recipient that disconnects before delivery;
// sends to it fail harmlessly and the router self-heals.
func (r *Registry) Snapshot(key ScopeKey) []Member {
	r.mu.RLock()
	g := r.groups[key]
	r.mu.RUnlock()
	if g == nil {
		return nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	members := make([]Member, 0, len(g.members))
	for identity, rec := range g.members {
		members = append(members, Member{Identity: identity, Recipient: rec})
	}
	return members
}

// Count returns the number of members registered under key.
func (r *Registry) Count(key ScopeKey) int {
	r.mu.RLock()
	g := r.groups[key]
	r.mu.RUnlock()
	if g == nil {
		return 0
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.members)
}

// GroupCount returns the number of non-empty groups.
func (r *Registry) GroupCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups)
}
