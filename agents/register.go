package agents

import (
	"github.com/hupe1980/agentfleet/logging"
	"github.com/hupe1980/agentfleet/model"
	"github.com/hupe1980/agentfleet/registry"
	"github.com/hupe1980/agentfleet/storage"
)

// RegisterBuiltins installs the factories for the built-in fleet on the
// registry. gen may be nil; agents that would use it fall back to canned
// narratives.
func RegisterBuiltins(reg *registry.Registry, writer storage.Writer, logger logging.Logger, gen model.Generator) {
	reg.RegisterFactory(KindLinkedIn, NewLinkedInFactory(writer, logger))
	reg.RegisterFactory(KindFinance, NewFinanceFactory(writer, logger))
	reg.RegisterFactory(KindStrategy, NewStrategyFactory(writer, logger, gen))
	reg.RegisterFactory(KindSelfImprove, NewSelfImproveFactory(writer, logger))
}
