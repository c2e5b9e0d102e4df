// Package mongo provides MongoDB connection management for the chat server.
//
// Configuration is environment-driven; connection attempts are retried with
// a fixed interval to ride out transient failures during startup. The
// Healthcheck function plugs into the httpserver readiness probe.
//
// Collection schemas and indexes are owned by the modules that use them
// (see modules/chat and modules/subscription EnsureIndexes).
package mongo
