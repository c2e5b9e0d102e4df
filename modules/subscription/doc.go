// Package subscription implements standing user subscriptions over the
// chat message stream: a pure four-predicate matcher (scope, keyword,
// geo-radius, time window), a MongoDB-backed store with a coarse scope
// pre-filter, and a dispatcher that pushes a notification to the owner's
// live notification stream for every subscription a message satisfies.
//
// Dispatch is fire-and-forget from the message pipeline's point of view:
// by the time it runs the message is stored and broadcast, so failures
// here are logged, never surfaced to the sender.
package subscription
