// Package logging provides a minimal logging interface and adapters for
// AgentFleet.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the engine, orchestrator and scheduler use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - FleetLogger with execution-domain helpers and contextual cloning
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	eng := engine.New(reg, store, engine.WithLogger(logger))
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
