package votecommit

import (
	"log/slog"
	"time"

	httpadapter "ballotchain/contexts/election-core/vote-commit/adapters/http"
	"ballotchain/contexts/election-core/vote-commit/adapters/memory"
	"ballotchain/contexts/election-core/vote-commit/application/commands"
	"ballotchain/contexts/election-core/vote-commit/application/queries"
	"ballotchain/contexts/election-core/vote-commit/application/workers"
	"ballotchain/contexts/election-core/vote-commit/domain/entities"
	"ballotchain/contexts/election-core/vote-commit/ports"
)

type Module struct {
	Handler    httpadapter.Handler
	Reconciler workers.Reconciler
	Store      *memory.Store
}

type Dependencies struct {
	Ledger          ports.VoteLedger
	Candidates      ports.CandidateRegistry
	Cycles          ports.CycleReader
	Chain           ports.VoteSubmitter
	Tallies         ports.TallyReader
	Clock           ports.Clock
	FinalityTimeout time.Duration
	ReconcileMinAge time.Duration
	Logger          *slog.Logger
}

func NewModule(deps Dependencies) Module {
	voteUseCase := commands.VoteUseCase{
		Ledger:          deps.Ledger,
		Candidates:      deps.Candidates,
		Cycles:          deps.Cycles,
		Chain:           deps.Chain,
		Clock:           deps.Clock,
		FinalityTimeout: deps.FinalityTimeout,
		Logger:          deps.Logger,
	}
	resultsUseCase := queries.ResultsUseCase{
		Candidates: deps.Candidates,
		Cycles:     deps.Cycles,
		Tallies:    deps.Tallies,
	}
	candidatesUseCase := queries.CandidatesUseCase{
		Candidates: deps.Candidates,
	}
	return Module{
		Handler: httpadapter.Handler{
			Votes:      voteUseCase,
			Results:    resultsUseCase,
			Candidates: candidatesUseCase,
			Logger:     deps.Logger,
		},
		Reconciler: workers.Reconciler{
			Ledger: deps.Ledger,
			Clock:  deps.Clock,
			MinAge: deps.ReconcileMinAge,
			Logger: deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against the in-memory store for tests
// and local runs. Chain and Tallies still come from the caller so tests can
// script ledger behavior.
func NewInMemoryModule(
	seed []entities.Candidate,
	chain ports.VoteSubmitter,
	tallies ports.TallyReader,
	logger *slog.Logger,
) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Ledger:     store,
		Candidates: store,
		Cycles:     store,
		Chain:      chain,
		Tallies:    tallies,
		Clock:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
