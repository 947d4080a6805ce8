package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	application "ballotchain/contexts/election-core/cycle-control/application"
	"ballotchain/contexts/election-core/cycle-control/domain/entities"
	"ballotchain/contexts/election-core/cycle-control/ports"
)

// RolloverUseCase rolls the election into a new numbered cycle. The offset
// for cycle N+1 is the raw external tally vector observed at the moment
// cycle N ends; later displayed counts subtract it.
type RolloverUseCase struct {
	Cycles     ports.CycleStore
	Candidates ports.BallotSource
	Tallies    ports.TallyReader
	Clock      ports.Clock
	Logger     *slog.Logger
}

// StartNewCycle snapshots the current raw tallies, then persists the new
// cycle's snapshot and advances the pointer in one durable transaction. A
// failed read for a single candidate records a zero offset with a warning
// instead of aborting: offsets drive display arithmetic, not vote
// legitimacy. A persistence failure aborts with the old pointer intact.
func (uc RolloverUseCase) StartNewCycle(ctx context.Context) (int64, error) {
	logger := application.ResolveLogger(uc.Logger)

	candidateIDs, err := uc.Candidates.ListActiveCandidateIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list ballot candidates: %w", err)
	}

	offsets := make([]entities.CandidateOffset, 0, len(candidateIDs))
	for _, candidateID := range candidateIDs {
		tally, err := uc.Tallies.ReadTally(ctx, candidateID)
		if err != nil {
			logger.Warn("tally read failed during rollover; recording zero offset",
				"event", "cycle_rollover_tally_read_failed",
				"module", "election-core/cycle-control",
				"layer", "application",
				"candidate_id", candidateID,
				"error", err.Error(),
			)
			tally = 0
		}
		offsets = append(offsets, entities.CandidateOffset{
			CandidateID: candidateID,
			Offset:      tally,
		})
	}

	pointer, err := uc.Cycles.CurrentCycle(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve cycle pointer: %w", err)
	}
	newCycleID := pointer.CycleID + 1
	snapshot := entities.OffsetSnapshot{
		CycleID:    newCycleID,
		Offsets:    offsets,
		CapturedAt: uc.now(),
	}
	if err := uc.Cycles.AdvanceCycle(ctx, pointer, snapshot); err != nil {
		return 0, fmt.Errorf("advance cycle %d -> %d: %w", pointer.CycleID, newCycleID, err)
	}

	logger.Info("election cycle advanced",
		"event", "cycle_rollover_completed",
		"module", "election-core/cycle-control",
		"layer", "application",
		"previous_cycle", pointer.CycleID,
		"new_cycle", newCycleID,
		"snapshot_size", len(offsets),
	)
	return newCycleID, nil
}

func (uc RolloverUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
