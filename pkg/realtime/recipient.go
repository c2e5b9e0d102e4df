package realtime

// Recipient is a live, addressable connection capable of receiving pushed
// payloads. Implementations must be safe for concurrent use and must never
// block: a Deliver that cannot complete immediately (closed connection,
// full outbound buffer) returns an error and the caller treats the
// recipient as gone.
type Recipient interface {
	Deliver(v any) error
}

// Member pairs a registered identity with its recipient, as returned by
// Registry.Snapshot.
type Member struct {
	Identity  string
	Recipient Recipient
}
