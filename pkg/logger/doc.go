// Package logger builds configured slog.Logger instances.
//
// The factory supports JSON and text output, env-driven configuration via
// Config, and static attributes attached to every record. Attr helpers in
// this package keep log field names consistent across the server (user_id,
// conn_id, scope, room_id and so on).
package logger
