// Package agents contains the BaseAgent plumbing shared by all agent
// implementations and the built-in fleet: a LinkedIn opportunity scanner, a
// personal finance analyzer, a commercial strategy generator and a
// self-improvement reviewer. The built-in agents fabricate deterministic
// example data; their fetch logic is the swappable part, the lifecycle
// plumbing is not.
//
// To write a custom agent, embed BaseAgent and implement Run, ProcessData
// and GenerateReport:
//
//	type Weather struct {
//		agents.BaseAgent
//	}
//
//	func (w *Weather) Run(ctx context.Context) (bool, error) {
//		w.SetResults(fetchForecast())
//		return true, nil
//	}
//
// BaseAgent supplies Start/Finish/Status/SaveResults and the results slot.
package agents
