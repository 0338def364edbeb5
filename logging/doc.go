// Package logging provides a minimal logging interface and adapters for tubeanalyst.
//
// The Logger interface defines the standard leveled methods (Debug, Info, Warn, Error)
// that stores, the analyst and the HTTP layer use for observability. Arguments
// after the message are slog style key/value pairs. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping an existing *slog.Logger
//   - StructuredLogger with component/session scoping and domain helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	store, err := session.NewLRUStore(session.DefaultConfig(), func(o *session.Options) {
//		o.Logger = logger.WithComponent("session")
//	})
//
// The interface is kept small so callers can plug in any structured logger.
package logging
