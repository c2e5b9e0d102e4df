package chat

import "errors"

var (
	ErrMissingUserID       = errors.New("message user id is required")
	ErrEmptyContent        = errors.New("message content is required")
	ErrInvalidLatitude     = errors.New("latitude must be within [-90, 90]")
	ErrInvalidLongitude    = errors.New("longitude must be within [-180, 180]")
	ErrInvalidRadius       = errors.New("radius must not be negative")
	ErrMissingRoomName     = errors.New("room name is required")
	ErrInvalidParticipants = errors.New("p2p session requires between 2 and 10 participants")
	ErrStoreFailure        = errors.New("message store failure")
)
