// Package schedule triggers agent executions on cron schedules. Each enabled
// agent with a non-empty schedule gets one cron entry that submits the agent
// to the orchestrator; contention with a manual run of the same agent is
// resolved by the engine's reject-on-overlap rule, so a slow run never stacks.
package schedule
