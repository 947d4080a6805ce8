package cyclecontrol

import (
	"log/slog"

	httpadapter "ballotchain/contexts/election-core/cycle-control/adapters/http"
	"ballotchain/contexts/election-core/cycle-control/adapters/memory"
	"ballotchain/contexts/election-core/cycle-control/application/commands"
	"ballotchain/contexts/election-core/cycle-control/application/queries"
	"ballotchain/contexts/election-core/cycle-control/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Cycles     ports.CycleStore
	Candidates ports.BallotSource
	Tallies    ports.TallyReader
	Clock      ports.Clock
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			Rollover: commands.RolloverUseCase{
				Cycles:     deps.Cycles,
				Candidates: deps.Candidates,
				Tallies:    deps.Tallies,
				Clock:      deps.Clock,
				Logger:     deps.Logger,
			},
			Controls: commands.ControlsUseCase{
				Cycles: deps.Cycles,
				Clock:  deps.Clock,
				Logger: deps.Logger,
			},
			Status: queries.StatusUseCase{
				Cycles: deps.Cycles,
				Clock:  deps.Clock,
			},
			Logger: deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against the in-memory store. Tallies
// still comes from the caller so tests can script ledger reads.
func NewInMemoryModule(tallies ports.TallyReader, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Cycles:     store,
		Candidates: store,
		Tallies:    tallies,
		Clock:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
