// Package chat implements the message domain of the server: the models
// for messages, rooms and p2p sessions, their MongoDB repositories, the
// optional Redis recent-history cache, and the inbound pipeline that
// persists a message, fans it out to its own scope, and hands it to
// subscription dispatch.
//
// Sender-exclusion asymmetry is deliberate and mirrors the established
// product behavior: common and room broadcasts include the sender, p2p
// session broadcasts exclude it.
package chat
