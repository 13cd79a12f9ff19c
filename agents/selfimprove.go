package agents

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/logging"
	"github.com/hupe1980/agentfleet/storage"
)

// KindSelfImprove is the factory kind for the self-improvement reviewer.
const KindSelfImprove = "selfimprove"

// SelfImproveResults is the raw output of one review.
type SelfImproveResults struct {
	Metrics []PerformanceMetric
	Actions []string
}

// PerformanceMetric compares a tracked habit against its target.
type PerformanceMetric struct {
	Name    string
	Current string
	Target  string
	Trend   string // "up", "down", "flat"
}

// SelfImprove reviews personal performance metrics and suggests next
// actions. The metric source is simulated.
type SelfImprove struct {
	BaseAgent
}

var (
	_ core.Agent            = (*SelfImprove)(nil)
	_ core.ArtifactReporter = (*SelfImprove)(nil)
)

// NewSelfImprove constructs the agent from its descriptor.
func NewSelfImprove(desc core.AgentDescriptor, writer storage.Writer, logger logging.Logger) *SelfImprove {
	return &SelfImprove{BaseAgent: NewBaseAgent(desc, writer, logger)}
}

// NewSelfImproveFactory returns a core.Factory for registry registration.
func NewSelfImproveFactory(writer storage.Writer, logger logging.Logger) core.Factory {
	return func(desc core.AgentDescriptor) (core.Agent, error) {
		return NewSelfImprove(desc, writer, logger), nil
	}
}

// Run collects the week's performance metrics.
func (a *SelfImprove) Run(_ context.Context) (bool, error) {
	a.Logger().Info("reviewing performance", "agent_id", a.ID())

	a.SetResults(&SelfImproveResults{
		Metrics: []PerformanceMetric{
			{Name: "Deep work hours", Current: "14h", Target: "20h", Trend: "up"},
			{Name: "Reading", Current: "2 books", Target: "2 books", Trend: "flat"},
			{Name: "Exercise sessions", Current: "3", Target: "4", Trend: "down"},
			{Name: "Inbox zero days", Current: "2", Target: "5", Trend: "up"},
		},
		Actions: []string{
			"Block two additional morning deep-work slots",
			"Move one exercise session to lunchtime to stop evening drop-off",
			"Batch email to twice daily",
		},
	})

	return true, nil
}

// ProcessData tabulates the tracked metrics.
func (a *SelfImprove) ProcessData(raw any) (*core.Table, error) {
	res, ok := raw.(*SelfImproveResults)
	if !ok {
		return nil, fmt.Errorf("selfimprove: unexpected raw results %T", raw)
	}

	table := core.NewTable("metric", "current", "target", "trend")
	for _, m := range res.Metrics {
		if err := table.Append(m.Name, m.Current, m.Target, m.Trend); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// GenerateReport renders the weekly review as Markdown.
func (a *SelfImprove) GenerateReport(table *core.Table) (string, error) {
	res, _ := a.Results().(*SelfImproveResults)
	if res == nil {
		return "", fmt.Errorf("selfimprove: no results to report")
	}

	report := "# Weekly Self-Improvement Review\n\n## Metrics\n\n| Metric | Current | Target | Trend |\n|---|---|---|---|\n"
	for _, row := range table.Rows {
		report += fmt.Sprintf("| %s | %s | %s | %s |\n", row[0], row[1], row[2], row[3])
	}

	report += "\n## Next Actions\n\n"
	for _, a := range res.Actions {
		report += fmt.Sprintf("- %s\n", a)
	}

	return report, nil
}
