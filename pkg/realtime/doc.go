// Package realtime implements the connection registry and fan-out router
// at the heart of the chat server.
//
// The Registry owns the mapping from scope keys (common channel, rooms,
// p2p sessions, per-user notification groups) to live recipients. All four
// delivery domains share one data structure, addressed through the tagged
// ScopeKey; the session-specific "exclude the sender by participant
// identity" behavior is an optional argument to Broadcast rather than a
// separate manager type.
//
// Concurrency model: a map-level RWMutex guards the group table and each
// group carries its own RWMutex, so mutations on unrelated scope keys do
// not contend. Iteration always happens over snapshots; no registry lock
// is ever held across a network send. Broadcasts are serialized per scope
// key to preserve store order within a scope.
//
// Failed deliveries self-heal: the router removes the broken member from
// the registry and carries on. Recipients that disconnect mid-broadcast
// therefore cost one failed send and nothing else.
package realtime
