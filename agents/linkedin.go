package agents

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/logging"
	"github.com/hupe1980/agentfleet/storage"
)

// KindLinkedIn is the factory kind for the LinkedIn opportunity scanner.
const KindLinkedIn = "linkedin"

// LinkedInResults is the raw output of one LinkedIn scan.
type LinkedInResults struct {
	Connections   int
	NewMessages   int
	ProfileViews  int
	Opportunities []Opportunity
}

// Opportunity is one job opening surfaced by the scan.
type Opportunity struct {
	Title    string
	Company  string
	Location string
	Match    int // percentage fit against the configured profile
}

// LinkedIn scans LinkedIn for job opportunities and profile activity. The
// fetch is simulated with representative example data; a real integration
// would replace Run's body and nothing else.
type LinkedIn struct {
	BaseAgent
}

var (
	_ core.Agent            = (*LinkedIn)(nil)
	_ core.ArtifactReporter = (*LinkedIn)(nil)
)

// NewLinkedIn constructs the agent from its descriptor.
func NewLinkedIn(desc core.AgentDescriptor, writer storage.Writer, logger logging.Logger) *LinkedIn {
	return &LinkedIn{BaseAgent: NewBaseAgent(desc, writer, logger)}
}

// NewLinkedInFactory returns a core.Factory for registry registration.
func NewLinkedInFactory(writer storage.Writer, logger logging.Logger) core.Factory {
	return func(desc core.AgentDescriptor) (core.Agent, error) {
		return NewLinkedIn(desc, writer, logger), nil
	}
}

// Run gathers profile activity and open opportunities.
func (a *LinkedIn) Run(_ context.Context) (bool, error) {
	a.Logger().Info("scanning linkedin", "agent_id", a.ID())

	a.SetResults(&LinkedInResults{
		Connections:  512,
		NewMessages:  5,
		ProfileViews: 25,
		Opportunities: []Opportunity{
			{Title: "Senior Data Engineer", Company: "Nexa Analytics", Location: "Remote", Match: 92},
			{Title: "ML Platform Lead", Company: "Brightside Labs", Location: "Barcelona", Match: 87},
			{Title: "Staff Backend Engineer", Company: "Orbital", Location: "Madrid", Match: 81},
			{Title: "Engineering Manager", Company: "Cloudmill", Location: "Remote", Match: 74},
		},
	})

	return true, nil
}

// ProcessData tabulates the opportunities, best match first.
func (a *LinkedIn) ProcessData(raw any) (*core.Table, error) {
	res, ok := raw.(*LinkedInResults)
	if !ok {
		return nil, fmt.Errorf("linkedin: unexpected raw results %T", raw)
	}

	opps := make([]Opportunity, len(res.Opportunities))
	copy(opps, res.Opportunities)
	sort.SliceStable(opps, func(i, j int) bool { return opps[i].Match > opps[j].Match })

	table := core.NewTable("title", "company", "location", "match")
	for _, o := range opps {
		if err := table.Append(o.Title, o.Company, o.Location, strconv.Itoa(o.Match)); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// GenerateReport renders the opportunity digest as Markdown.
func (a *LinkedIn) GenerateReport(table *core.Table) (string, error) {
	res, _ := a.Results().(*LinkedInResults)
	if res == nil {
		return "", fmt.Errorf("linkedin: no results to report")
	}

	report := fmt.Sprintf(`# LinkedIn Digest — %s

## Activity

- Connections: %d
- New messages: %d
- Profile views (last week): %d

## Open Opportunities

`, a.DisplayName(), res.Connections, res.NewMessages, res.ProfileViews)

	for _, row := range table.Rows {
		report += fmt.Sprintf("- **%s** at %s (%s) — %s%% match\n", row[0], row[1], row[2], row[3])
	}

	return report, nil
}
