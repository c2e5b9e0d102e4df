// Package httpserver provides a thin wrapper around net/http that adds
// graceful shutdown, configurable timeouts, health-check handlers, and
// structured logging via slog.
//
// Run blocks until the context is cancelled or an interrupt/TERM signal is
// received, then drains in-flight requests within the shutdown deadline.
// Start failures are wrapped with ErrStart and shutdown failures with
// ErrShutdown so callers can distinguish them with errors.Is.
//
// # Usage
//
//	r := chi.NewRouter()
//	r.Get("/health", httpserver.HealthCheckHandler(log, mongoCheck, redisCheck))
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, r); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
package httpserver
