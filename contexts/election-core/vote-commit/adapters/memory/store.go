package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"ballotchain/contexts/election-core/vote-commit/domain/entities"
	domainerrors "ballotchain/contexts/election-core/vote-commit/domain/errors"
	"ballotchain/contexts/election-core/vote-commit/ports"

	"github.com/google/uuid"
)

// Store is the in-memory adapter used by tests and local wiring. Reserve is
// atomic under the store mutex, matching the postgres adapter's
// uniqueness-constraint behavior.
type Store struct {
	mu sync.RWMutex

	votes      map[string]entities.VoteRecord
	candidates map[int64]entities.Candidate

	currentCycle int64
	settings     map[int64]ports.CycleProjection
	offsets      map[int64]map[int64]uint64
}

func NewStore(seed []entities.Candidate) *Store {
	candidates := make(map[int64]entities.Candidate, len(seed))
	for _, candidate := range seed {
		candidates[candidate.ID] = candidate
	}
	return &Store{
		votes:        make(map[string]entities.VoteRecord),
		candidates:   candidates,
		currentCycle: 1,
		settings:     make(map[int64]ports.CycleProjection),
		offsets:      make(map[int64]map[int64]uint64),
	}
}

func (s *Store) SetCandidate(candidate entities.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[candidate.ID] = candidate
}

func (s *Store) SetCurrentCycle(cycleID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentCycle = cycleID
}

func (s *Store) SetCycleSettings(settings ports.CycleProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[settings.CycleID] = settings
}

func (s *Store) SetOffset(cycleID int64, candidateID int64, offset uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.offsets[cycleID] == nil {
		s.offsets[cycleID] = make(map[int64]uint64)
	}
	s.offsets[cycleID][candidateID] = offset
}

func (s *Store) Reserve(_ context.Context, voterID string, cycleID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := voteKey(voterID, cycleID)
	if _, exists := s.votes[key]; exists {
		return domainerrors.ErrAlreadyVoted
	}
	s.votes[key] = entities.VoteRecord{
		RecordID:  uuid.NewString(),
		VoterID:   strings.TrimSpace(voterID),
		CycleID:   cycleID,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (s *Store) Release(_ context.Context, voterID string, cycleID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.votes, voteKey(voterID, cycleID))
	return nil
}

func (s *Store) HasVoted(_ context.Context, voterID string, cycleID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.votes[voteKey(voterID, cycleID)]
	return exists, nil
}

func (s *Store) Confirm(_ context.Context, voterID string, cycleID int64, txHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := voteKey(voterID, cycleID)
	record, exists := s.votes[key]
	if !exists {
		return fmt.Errorf("no reservation for voter %s in cycle %d", voterID, cycleID)
	}
	record.TxHash = strings.TrimSpace(txHash)
	record.Confirmed = true
	s.votes[key] = record
	return nil
}

func (s *Store) ListUnconfirmed(_ context.Context, cutoff time.Time) ([]entities.VoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stranded []entities.VoteRecord
	for _, record := range s.votes {
		if !record.Confirmed && record.CreatedAt.Before(cutoff) {
			stranded = append(stranded, record)
		}
	}
	sort.Slice(stranded, func(i, j int) bool {
		return stranded[i].CreatedAt.Before(stranded[j].CreatedAt)
	})
	return stranded, nil
}

func (s *Store) GetActiveCandidate(_ context.Context, candidateID int64) (entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidate, exists := s.candidates[candidateID]
	if !exists || !candidate.Active {
		return entities.Candidate{}, domainerrors.ErrUnknownCandidate
	}
	return candidate, nil
}

func (s *Store) ListActiveCandidates(_ context.Context) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var active []entities.Candidate
	for _, candidate := range s.candidates {
		if candidate.Active {
			active = append(active, candidate)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	return active, nil
}

func (s *Store) CurrentCycle(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentCycle, nil
}

func (s *Store) CycleSettings(_ context.Context, cycleID int64) (ports.CycleProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if settings, exists := s.settings[cycleID]; exists {
		return settings, nil
	}
	return ports.CycleProjection{CycleID: cycleID}, nil
}

func (s *Store) CycleOffset(_ context.Context, cycleID int64, candidateID int64) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offsets[cycleID][candidateID], nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func voteKey(voterID string, cycleID int64) string {
	return fmt.Sprintf("%s|%d", strings.TrimSpace(voterID), cycleID)
}

var _ ports.VoteLedger = (*Store)(nil)
var _ ports.CandidateRegistry = (*Store)(nil)
var _ ports.CycleReader = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
