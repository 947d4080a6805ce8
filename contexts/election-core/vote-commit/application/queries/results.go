package queries

import (
	"context"
	"fmt"

	"ballotchain/contexts/election-core/vote-commit/domain/entities"
	"ballotchain/contexts/election-core/vote-commit/ports"
)

// CandidateTally is a candidate's vote count for the current cycle: the raw
// external-ledger tally minus the offset snapshotted at the cycle's start.
type CandidateTally struct {
	CandidateID int64
	Name        string
	Position    string
	RawTally    uint64
	Offset      uint64
	Votes       uint64
}

// OffsetVector is the current cycle's starting offsets, ordered by
// candidate id.
type OffsetVector struct {
	CycleID int64
	Offsets []uint64
}

// ResultsView is the displayed standings for the current cycle.
type ResultsView struct {
	CycleID int64
	Tallies []CandidateTally
}

type ResultsUseCase struct {
	Candidates ports.CandidateRegistry
	Cycles     ports.CycleReader
	Tallies    ports.TallyReader
}

// CurrentResults reads the raw tally for every active candidate and applies
// the current cycle's offsets. A cycle with no snapshot (cycle 1) has zero
// offsets, so it displays raw tallies unchanged.
func (uc ResultsUseCase) CurrentResults(ctx context.Context) (ResultsView, error) {
	cycleID, err := uc.Cycles.CurrentCycle(ctx)
	if err != nil {
		return ResultsView{}, fmt.Errorf("resolve current cycle: %w", err)
	}
	candidates, err := uc.Candidates.ListActiveCandidates(ctx)
	if err != nil {
		return ResultsView{}, err
	}

	view := ResultsView{
		CycleID: cycleID,
		Tallies: make([]CandidateTally, 0, len(candidates)),
	}
	for _, candidate := range candidates {
		raw, err := uc.Tallies.ReadTally(ctx, candidate.ID)
		if err != nil {
			return ResultsView{}, fmt.Errorf("read tally for candidate %d: %w", candidate.ID, err)
		}
		offset, err := uc.Cycles.CycleOffset(ctx, cycleID, candidate.ID)
		if err != nil {
			return ResultsView{}, fmt.Errorf("read offset for candidate %d: %w", candidate.ID, err)
		}
		view.Tallies = append(view.Tallies, CandidateTally{
			CandidateID: candidate.ID,
			Name:        candidate.Name,
			Position:    candidate.Position,
			RawTally:    raw,
			Offset:      offset,
			Votes:       subtractOffset(raw, offset),
		})
	}
	return view, nil
}

// CurrentOffsets returns the offset vector for the current cycle, ordered by
// active candidate id.
func (uc ResultsUseCase) CurrentOffsets(ctx context.Context) (OffsetVector, error) {
	cycleID, err := uc.Cycles.CurrentCycle(ctx)
	if err != nil {
		return OffsetVector{}, fmt.Errorf("resolve current cycle: %w", err)
	}
	candidates, err := uc.Candidates.ListActiveCandidates(ctx)
	if err != nil {
		return OffsetVector{}, err
	}
	offsets := make([]uint64, 0, len(candidates))
	for _, candidate := range candidates {
		offset, err := uc.Cycles.CycleOffset(ctx, cycleID, candidate.ID)
		if err != nil {
			return OffsetVector{}, fmt.Errorf("read offset for candidate %d: %w", candidate.ID, err)
		}
		offsets = append(offsets, offset)
	}
	return OffsetVector{CycleID: cycleID, Offsets: offsets}, nil
}

type CandidatesUseCase struct {
	Candidates ports.CandidateRegistry
}

func (uc CandidatesUseCase) ListBallot(ctx context.Context) ([]entities.Candidate, error) {
	return uc.Candidates.ListActiveCandidates(ctx)
}

// subtractOffset clamps at zero: an offset recorded ahead of a lagging tally
// read must not underflow the displayed count.
func subtractOffset(raw, offset uint64) uint64 {
	if offset >= raw {
		return 0
	}
	return raw - offset
}
