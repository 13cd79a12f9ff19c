// Package core defines the shared contracts and data types of AgentFleet:
// the Agent interface every pluggable agent implements, descriptors and
// status snapshots, execution results and history records, the tabular
// result structure, and the store/registry interfaces the engine and
// orchestrator depend on.
//
// The package is intentionally free of implementation concerns (no goroutines,
// no I/O) so that registry, engine, fleet and history can depend on it without
// cycles. Concrete implementations live in their respective packages.
package core
