package realtime

import "errors"

var (
	// ErrRecipientGone is returned by Deliver when the underlying
	// connection has been closed.
	ErrRecipientGone = errors.New("recipient connection is gone")

	// ErrRecipientSlow is returned by Deliver when the recipient's
	// outbound buffer is full. The router treats it as disconnect.
	ErrRecipientSlow = errors.New("recipient outbound buffer is full")
)
