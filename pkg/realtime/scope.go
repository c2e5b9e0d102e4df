package realtime

// ScopeKind discriminates the four delivery domains.
type ScopeKind uint8

const (
	// ScopeCommon is the single global channel.
	ScopeCommon ScopeKind = iota + 1
	// ScopeRoom is a tag-addressed group channel.
	ScopeRoom
	// ScopeSession is a private pairwise/group session whose members are
	// keyed by participant identity.
	ScopeSession
	// ScopeUser addresses all notification connections of one user.
	ScopeUser
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeCommon:
		return "common"
	case ScopeRoom:
		return "room"
	case ScopeSession:
		return "session"
	case ScopeUser:
		return "user"
	default:
		return "unknown"
	}
}

// ScopeKey addresses one recipient group in the registry. It is comparable
// and used directly as a map key.
type ScopeKey struct {
	Kind ScopeKind
	ID   string
}

// CommonKey returns the key of the global channel.
func CommonKey() ScopeKey {
	return ScopeKey{Kind: ScopeCommon}
}

// RoomKey returns the key of a room channel.
func RoomKey(roomID string) ScopeKey {
	return ScopeKey{Kind: ScopeRoom, ID: roomID}
}

// SessionKey returns the key of a p2p session.
func SessionKey(sessionID string) ScopeKey {
	return ScopeKey{Kind: ScopeSession, ID: sessionID}
}

// UserKey returns the key of a user's notification group.
func UserKey(userID string) ScopeKey {
	return ScopeKey{Kind: ScopeUser, ID: userID}
}
