package agents

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/logging"
	"github.com/hupe1980/agentfleet/storage"
)

// KindFinance is the factory kind for the personal finance analyzer.
const KindFinance = "finance"

// FinanceResults is the raw output of one finance analysis.
type FinanceResults struct {
	Period          string
	TotalIncome     float64
	TotalExpenses   float64
	Savings         float64
	SavingsRate     float64
	Categories      []ExpenseCategory
	Recommendations []Recommendation
}

// ExpenseCategory is one spending bucket for the analyzed period.
type ExpenseCategory struct {
	Name   string
	Amount float64
	Share  float64 // percentage of total expenses
}

// Recommendation is one actionable suggestion with its expected impact.
type Recommendation struct {
	Kind        string
	Description string
	Impact      string
}

// Finance analyzes personal finances and produces spending breakdowns and
// recommendations. The data source is simulated.
type Finance struct {
	BaseAgent
}

var (
	_ core.Agent            = (*Finance)(nil)
	_ core.ArtifactReporter = (*Finance)(nil)
)

// NewFinance constructs the agent from its descriptor.
func NewFinance(desc core.AgentDescriptor, writer storage.Writer, logger logging.Logger) *Finance {
	return &Finance{BaseAgent: NewBaseAgent(desc, writer, logger)}
}

// NewFinanceFactory returns a core.Factory for registry registration.
func NewFinanceFactory(writer storage.Writer, logger logging.Logger) core.Factory {
	return func(desc core.AgentDescriptor) (core.Agent, error) {
		return NewFinance(desc, writer, logger), nil
	}
}

// Run analyzes the period's finances.
func (a *Finance) Run(_ context.Context) (bool, error) {
	a.Logger().Info("analyzing finances", "agent_id", a.ID())

	a.SetResults(&FinanceResults{
		Period:        time.Now().Format("January 2006"),
		TotalIncome:   8500,
		TotalExpenses: 5200,
		Savings:       3300,
		SavingsRate:   38.8,
		Categories: []ExpenseCategory{
			{Name: "Housing", Amount: 1800, Share: 34.6},
			{Name: "Food", Amount: 950, Share: 18.3},
			{Name: "Transport", Amount: 450, Share: 8.7},
			{Name: "Entertainment", Amount: 600, Share: 11.5},
			{Name: "Utilities", Amount: 320, Share: 6.2},
			{Name: "Other", Amount: 1080, Share: 20.7},
		},
		Recommendations: []Recommendation{
			{Kind: "Savings", Description: "Grow the emergency fund", Impact: "High"},
			{Kind: "Investment", Description: "Diversify into broad-market ETFs", Impact: "Medium"},
			{Kind: "Spending", Description: "Break down the 'Other' category", Impact: "High"},
		},
	})

	return true, nil
}

// ProcessData tabulates the expense categories, largest first.
func (a *Finance) ProcessData(raw any) (*core.Table, error) {
	res, ok := raw.(*FinanceResults)
	if !ok {
		return nil, fmt.Errorf("finance: unexpected raw results %T", raw)
	}

	cats := make([]ExpenseCategory, len(res.Categories))
	copy(cats, res.Categories)
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].Amount > cats[j].Amount })

	table := core.NewTable("category", "amount", "share")
	for _, c := range cats {
		if err := table.Append(c.Name, fmt.Sprintf("%.2f", c.Amount), fmt.Sprintf("%.1f", c.Share)); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// GenerateReport renders the financial summary as Markdown.
func (a *Finance) GenerateReport(table *core.Table) (string, error) {
	res, _ := a.Results().(*FinanceResults)
	if res == nil {
		return "", fmt.Errorf("finance: no results to report")
	}

	report := fmt.Sprintf(`# Personal Finance Report — %s

## Summary

- Total income: %.2f
- Total expenses: %.2f
- Savings: %.2f (%.1f%% rate)

## Spending by Category

| Category | Amount | Share |
|---|---|---|
`, res.Period, res.TotalIncome, res.TotalExpenses, res.Savings, res.SavingsRate)

	for _, row := range table.Rows {
		report += fmt.Sprintf("| %s | %s | %s%% |\n", row[0], row[1], row[2])
	}

	report += "\n## Recommendations\n\n"
	for _, r := range res.Recommendations {
		report += fmt.Sprintf("- **%s** (%s impact): %s\n", r.Kind, r.Impact, r.Description)
	}

	return report, nil
}
