// Package fleet coordinates batches of agent executions. The Orchestrator
// runs one, many or all registered agents, sequentially or concurrently, and
// aggregates the per-agent outcomes into a run summary.
//
// Parallel batches fan out one goroutine per requested agent and wait on all
// of them; the returned result slice always matches the input ordering so
// callers can correlate results positionally regardless of completion order.
// A failing agent never aborts the rest of the batch.
package fleet
