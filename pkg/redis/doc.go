// Package redis provides Redis connection management for the chat server.
//
// Redis backs the optional recent-history cache; when no REDIS_URL is set
// the server runs without it and history queries go straight to Mongo.
package redis
