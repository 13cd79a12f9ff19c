package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/logging"
	"github.com/hupe1980/agentfleet/model"
	"github.com/hupe1980/agentfleet/storage"
)

// KindStrategy is the factory kind for the commercial strategy generator.
const KindStrategy = "strategy"

// StrategyResults is the raw output of one strategy run.
type StrategyResults struct {
	Trends    []MarketTrend
	Plays     []string
	Narrative string // model-written executive summary, empty when offline
}

// MarketTrend is one observed market movement.
type MarketTrend struct {
	Segment     string
	Growth      float64 // year-over-year percentage
	Opportunity string
}

// Strategy analyzes market trends and proposes commercial plays. When a
// narrative generator is configured it drafts the executive summary during
// Run (network I/O belongs there, not in the pure report stage); otherwise
// the report falls back to a canned summary.
type Strategy struct {
	BaseAgent
	gen model.Generator
}

var (
	_ core.Agent            = (*Strategy)(nil)
	_ core.ArtifactReporter = (*Strategy)(nil)
)

// NewStrategy constructs the agent from its descriptor. gen may be nil.
func NewStrategy(desc core.AgentDescriptor, writer storage.Writer, logger logging.Logger, gen model.Generator) *Strategy {
	return &Strategy{BaseAgent: NewBaseAgent(desc, writer, logger), gen: gen}
}

// NewStrategyFactory returns a core.Factory for registry registration.
func NewStrategyFactory(writer storage.Writer, logger logging.Logger, gen model.Generator) core.Factory {
	return func(desc core.AgentDescriptor) (core.Agent, error) {
		return NewStrategy(desc, writer, logger, gen), nil
	}
}

// Run collects market trends and drafts the narrative when a generator is
// available. Generator failures degrade to the canned summary rather than
// failing the run.
func (a *Strategy) Run(ctx context.Context) (bool, error) {
	a.Logger().Info("generating commercial strategy", "agent_id", a.ID())

	res := &StrategyResults{
		Trends: []MarketTrend{
			{Segment: "Talent analytics", Growth: 18.4, Opportunity: "Mid-market HR teams replacing spreadsheets"},
			{Segment: "Automation consulting", Growth: 12.1, Opportunity: "SMBs outsourcing workflow automation"},
			{Segment: "AI upskilling", Growth: 25.7, Opportunity: "Corporate training budgets shifting to AI literacy"},
		},
		Plays: []string{
			"Package the analytics offering as a fixed-price pilot",
			"Target two lighthouse customers per segment before scaling outbound",
			"Publish one case study per quarter to anchor inbound demand",
		},
	}

	if a.gen != nil {
		narrative, err := a.gen.GenerateText(ctx, a.narrativePrompt(res))
		if err != nil {
			a.Logger().Warn("narrative generation failed, using canned summary", "agent_id", a.ID(), "error", err)
		} else {
			res.Narrative = narrative
		}
	}

	a.SetResults(res)
	return true, nil
}

func (a *Strategy) narrativePrompt(res *StrategyResults) string {
	var b strings.Builder
	b.WriteString("Write a short executive summary for a commercial strategy based on these market trends:\n")
	for _, t := range res.Trends {
		fmt.Fprintf(&b, "- %s: %.1f%% growth, opportunity: %s\n", t.Segment, t.Growth, t.Opportunity)
	}
	return b.String()
}

// ProcessData tabulates the observed trends.
func (a *Strategy) ProcessData(raw any) (*core.Table, error) {
	res, ok := raw.(*StrategyResults)
	if !ok {
		return nil, fmt.Errorf("strategy: unexpected raw results %T", raw)
	}

	table := core.NewTable("segment", "growth", "opportunity")
	for _, t := range res.Trends {
		if err := table.Append(t.Segment, fmt.Sprintf("%.1f", t.Growth), t.Opportunity); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// GenerateReport renders the strategy brief as Markdown.
func (a *Strategy) GenerateReport(table *core.Table) (string, error) {
	res, _ := a.Results().(*StrategyResults)
	if res == nil {
		return "", fmt.Errorf("strategy: no results to report")
	}

	summary := res.Narrative
	if summary == "" {
		summary = "The fastest-growing segments reward focused pilots over broad outbound. " +
			"Lead with the highest-growth segment and let case studies carry expansion."
	}

	report := fmt.Sprintf("# Commercial Strategy Brief\n\n%s\n\n## Market Trends\n\n", strings.TrimSpace(summary))
	for _, row := range table.Rows {
		report += fmt.Sprintf("- **%s**: %s%% growth — %s\n", row[0], row[1], row[2])
	}

	report += "\n## Recommended Plays\n\n"
	for i, p := range res.Plays {
		report += fmt.Sprintf("%d. %s\n", i+1, p)
	}

	return report, nil
}
