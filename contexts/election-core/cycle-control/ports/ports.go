package ports

import (
	"context"
	"time"

	"ballotchain/contexts/election-core/cycle-control/domain/entities"
)

// CycleStore persists the cycle pointer, per-cycle settings, and offset
// snapshots.
type CycleStore interface {
	// CurrentCycle resolves the pointer, lazily seeding cycle 1 when the row
	// does not exist yet.
	CurrentCycle(ctx context.Context) (entities.CyclePointer, error)
	// AdvanceCycle persists the snapshot and advances the pointer by one in a
	// single durable transaction. The snapshot write is ordered before the
	// pointer update so a crash in between leaves the old cycle current. A
	// lost optimistic version check returns ErrRolloverConflict.
	AdvanceCycle(ctx context.Context, from entities.CyclePointer, snapshot entities.OffsetSnapshot) error
	// Settings returns open defaults when no row exists for the cycle.
	Settings(ctx context.Context, cycleID int64) (entities.CycleSettings, error)
	SaveSettings(ctx context.Context, settings entities.CycleSettings) error
	Offsets(ctx context.Context, cycleID int64) ([]entities.CandidateOffset, error)
}

// BallotSource lists the candidates whose tallies a rollover snapshots.
type BallotSource interface {
	ListActiveCandidateIDs(ctx context.Context) ([]int64, error)
}

// TallyReader is the external ledger's read path; rollover never touches the
// write path.
type TallyReader interface {
	ReadTally(ctx context.Context, candidateID int64) (uint64, error)
}

type Clock interface {
	Now() time.Time
}
