package subscription

import "errors"

var (
	ErrMissingUserID = errors.New("subscription user id is required")
	ErrInvalidScope  = errors.New("subscription scope must be any, common, room or p2p")
	ErrInvalidWindow = errors.New("subscription window end precedes its start")
	ErrStoreFailure  = errors.New("subscription store failure")
)
