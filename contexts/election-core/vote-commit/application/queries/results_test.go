package queries

import (
	"context"
	"errors"
	"testing"

	"ballotchain/contexts/election-core/vote-commit/adapters/memory"
	"ballotchain/contexts/election-core/vote-commit/domain/entities"
)

type staticTallies struct {
	tallies map[int64]uint64
	err     error
}

func (s staticTallies) ReadTally(_ context.Context, candidateID int64) (uint64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.tallies[candidateID], nil
}

func seedBallot() []entities.Candidate {
	return []entities.Candidate{
		{ID: 1, Name: "Candidate One", Position: "Class Rep", Active: true},
		{ID: 2, Name: "Candidate Two", Position: "Class Rep", Active: true},
		{ID: 3, Name: "Candidate Three", Position: "Class Rep", Active: true},
	}
}

func TestCurrentResultsSubtractsOffsets(t *testing.T) {
	store := memory.NewStore(seedBallot())
	store.SetCurrentCycle(2)
	store.SetOffset(2, 1, 10)
	store.SetOffset(2, 2, 7)
	store.SetOffset(2, 3, 3)
	useCase := ResultsUseCase{
		Candidates: store,
		Cycles:     store,
		Tallies:    staticTallies{tallies: map[int64]uint64{1: 14, 2: 7, 3: 5}},
	}

	view, err := useCase.CurrentResults(context.Background())
	if err != nil {
		t.Fatalf("current results returned error: %v", err)
	}
	if view.CycleID != 2 {
		t.Fatalf("expected cycle 2, got %d", view.CycleID)
	}
	if len(view.Tallies) != 3 {
		t.Fatalf("expected 3 tallies, got %d", len(view.Tallies))
	}
	expected := []uint64{4, 0, 2}
	for i, tally := range view.Tallies {
		if tally.Votes != expected[i] {
			t.Fatalf("candidate %d: expected %d displayed votes, got %d", tally.CandidateID, expected[i], tally.Votes)
		}
	}
}

func TestCurrentResultsFirstCycleShowsRawTallies(t *testing.T) {
	store := memory.NewStore(seedBallot())
	useCase := ResultsUseCase{
		Candidates: store,
		Cycles:     store,
		Tallies:    staticTallies{tallies: map[int64]uint64{1: 5, 2: 3}},
	}

	view, err := useCase.CurrentResults(context.Background())
	if err != nil {
		t.Fatalf("current results returned error: %v", err)
	}
	if view.Tallies[0].Votes != 5 || view.Tallies[1].Votes != 3 || view.Tallies[2].Votes != 0 {
		t.Fatalf("expected raw tallies without offsets, got %+v", view.Tallies)
	}
}

func TestCurrentResultsClampsAtZero(t *testing.T) {
	store := memory.NewStore(seedBallot())
	store.SetCurrentCycle(3)
	store.SetOffset(3, 1, 20)
	useCase := ResultsUseCase{
		Candidates: store,
		Cycles:     store,
		Tallies:    staticTallies{tallies: map[int64]uint64{1: 12}},
	}

	view, err := useCase.CurrentResults(context.Background())
	if err != nil {
		t.Fatalf("current results returned error: %v", err)
	}
	if view.Tallies[0].Votes != 0 {
		t.Fatalf("offset larger than raw tally must display zero, got %d", view.Tallies[0].Votes)
	}
}

func TestCurrentResultsPropagatesLedgerFailure(t *testing.T) {
	store := memory.NewStore(seedBallot())
	ledgerErr := errors.New("rpc unavailable")
	useCase := ResultsUseCase{
		Candidates: store,
		Cycles:     store,
		Tallies:    staticTallies{err: ledgerErr},
	}

	if _, err := useCase.CurrentResults(context.Background()); !errors.Is(err, ledgerErr) {
		t.Fatalf("expected ledger failure to propagate, got %v", err)
	}
}

func TestCurrentOffsetsOrderedByCandidate(t *testing.T) {
	store := memory.NewStore(seedBallot())
	store.SetCurrentCycle(2)
	store.SetOffset(2, 1, 10)
	store.SetOffset(2, 3, 3)
	useCase := ResultsUseCase{
		Candidates: store,
		Cycles:     store,
		Tallies:    staticTallies{},
	}

	vector, err := useCase.CurrentOffsets(context.Background())
	if err != nil {
		t.Fatalf("current offsets returned error: %v", err)
	}
	if vector.CycleID != 2 {
		t.Fatalf("expected cycle 2, got %d", vector.CycleID)
	}
	expected := []uint64{10, 0, 3}
	if len(vector.Offsets) != len(expected) {
		t.Fatalf("expected %d offsets, got %d", len(expected), len(vector.Offsets))
	}
	for i, offset := range vector.Offsets {
		if offset != expected[i] {
			t.Fatalf("offset %d: expected %d, got %d", i, expected[i], offset)
		}
	}
}
