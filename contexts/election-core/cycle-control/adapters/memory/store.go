package memory

import (
	"context"
	"sync"
	"time"

	"ballotchain/contexts/election-core/cycle-control/domain/entities"
	domainerrors "ballotchain/contexts/election-core/cycle-control/domain/errors"
	"ballotchain/contexts/election-core/cycle-control/ports"
)

// Store is an in-memory CycleStore and BallotSource for tests and local runs.
type Store struct {
	mu           sync.RWMutex
	pointer      entities.CyclePointer
	settings     map[int64]entities.CycleSettings
	offsets      map[int64][]entities.CandidateOffset
	candidateIDs []int64
	now          time.Time

	failAdvance error
}

func NewStore() *Store {
	return &Store{
		pointer:  entities.CyclePointer{CycleID: 1, Version: 0},
		settings: make(map[int64]entities.CycleSettings),
		offsets:  make(map[int64][]entities.CandidateOffset),
		now:      time.Now().UTC(),
	}
}

func (s *Store) SetCandidateIDs(ids ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidateIDs = append([]int64(nil), ids...)
}

func (s *Store) SetPointer(pointer entities.CyclePointer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pointer = pointer
}

func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now.UTC()
}

// FailNextAdvance makes the next AdvanceCycle return err.
func (s *Store) FailNextAdvance(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAdvance = err
}

func (s *Store) CurrentCycle(ctx context.Context) (entities.CyclePointer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pointer, nil
}

func (s *Store) AdvanceCycle(ctx context.Context, from entities.CyclePointer, snapshot entities.OffsetSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAdvance != nil {
		err := s.failAdvance
		s.failAdvance = nil
		return err
	}
	if s.pointer.Version != from.Version {
		return domainerrors.ErrRolloverConflict
	}
	if _, exists := s.offsets[snapshot.CycleID]; exists {
		return domainerrors.ErrSnapshotExists
	}
	s.offsets[snapshot.CycleID] = append([]entities.CandidateOffset(nil), snapshot.Offsets...)
	s.pointer = entities.CyclePointer{CycleID: snapshot.CycleID, Version: from.Version + 1}
	return nil
}

func (s *Store) Settings(ctx context.Context, cycleID int64) (entities.CycleSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if settings, ok := s.settings[cycleID]; ok {
		return settings, nil
	}
	return entities.CycleSettings{CycleID: cycleID}, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings entities.CycleSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[settings.CycleID] = settings
	return nil
}

func (s *Store) Offsets(ctx context.Context, cycleID int64) ([]entities.CandidateOffset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.CandidateOffset(nil), s.offsets[cycleID]...), nil
}

func (s *Store) ListActiveCandidateIDs(ctx context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int64(nil), s.candidateIDs...), nil
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now
}

var _ ports.CycleStore = (*Store)(nil)
var _ ports.BallotSource = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
