// Package config loads environment-driven configuration into tagged structs.
//
// Every component of the server declares its own Config struct with `env`
// tags and sensible envDefault values; main composes them and calls Load
// once per struct during startup. A .env file, when present, is merged into
// the process environment before parsing to simplify local development.
package config
