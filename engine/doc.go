// Package engine runs exactly one agent's full lifecycle per call, under a
// deadline, and turns whatever happens into an immutable ExecutionResult.
//
// The lifecycle is: resolve the instance via the registry, reject if a run
// is already in flight, run the agent's primary task inside a cancellable
// goroutine bounded by the timeout, then transform, render and persist the
// results. Every call appends exactly one history record — including
// immediate rejections and load failures of known ids — so operators can see
// contention and configuration breakage in the journal.
//
// Timeout expiry stops the engine from waiting but does not guarantee the
// underlying work terminates: the run goroutine receives a cancelled context
// and cooperative agents stop early, but the contract does not require
// honoring it. This best-effort abandonment is an accepted limitation.
package engine
