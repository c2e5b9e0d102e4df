package subscription

import (
	"context"
	"log/slog"

	"github.com/evghenimelnic/chat-server/modules/chat"
	"github.com/evghenimelnic/chat-server/pkg/logger"
	"github.com/evghenimelnic/chat-server/pkg/realtime"
)

// CandidateSource enumerates subscriptions that could match a message.
// Implemented by Repository; an over-inclusive source is fine because
// every candidate is re-validated by Match.
type CandidateSource interface {
	Candidates(ctx context.Context, msg chat.Message) ([]Subscription, error)
}

// Dispatcher evaluates standing subscriptions against each stored message
// and pushes a Notification to the owner's notification stream for every
// match. One user with several matching subscriptions gets one delivery
// per subscription, each carrying the subscription that fired.
type Dispatcher struct {
	source CandidateSource
	router *realtime.Router
	log    *slog.Logger
}

// NewDispatcher wires the dispatcher.
func NewDispatcher(source CandidateSource, router *realtime.Router, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{source: source, router: router, log: log}
}

// Dispatch runs the matcher over all candidate subscriptions for msg.
// Dispatch failures never propagate to the message pipeline: the message
// is already stored and broadcast by the time this runs, so errors are
// logged and swallowed.
func (d *Dispatcher) Dispatch(ctx context.Context, msg chat.Message) {
	subs, err := d.source.Candidates(ctx, msg)
	if err != nil {
		d.log.ErrorContext(ctx, "subscription candidate lookup failed",
			logger.MessageID(msg.ID), logger.Error(err))
		return
	}

	for _, sub := range subs {
		if !Match(sub, msg) {
			continue
		}
		d.router.Broadcast(ctx, realtime.UserKey(sub.UserID), Notification{
			Type:         NotificationType,
			Subscription: sub,
			Message:      msg,
		})
		d.log.DebugContext(ctx, "subscription matched",
			logger.SubscriptionID(sub.ID),
			logger.UserID(sub.UserID),
			logger.MessageID(msg.ID),
		)
	}
}
