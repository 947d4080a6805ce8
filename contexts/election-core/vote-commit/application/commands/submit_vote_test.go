package commands

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"ballotchain/contexts/election-core/vote-commit/adapters/memory"
	"ballotchain/contexts/election-core/vote-commit/domain/entities"
	domainerrors "ballotchain/contexts/election-core/vote-commit/domain/errors"
	"ballotchain/contexts/election-core/vote-commit/ports"
)

type fakeIdentity struct {
	address string
}

func (f fakeIdentity) Address() string { return f.address }

// fakeChain scripts the external ledger. Tallies counts confirmed votes per
// candidate so result assertions can follow submissions.
type fakeChain struct {
	mu sync.Mutex

	configured bool
	identities int

	gasPriceErr   error
	fundErr       error
	submitErr     error
	voteOutcome   ports.TxOutcome
	fundOutcome   ports.TxOutcome
	submittedTx   []ports.TxRef
	talliesByCand map[int64]uint64
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		configured:    true,
		voteOutcome:   ports.TxConfirmed,
		fundOutcome:   ports.TxConfirmed,
		talliesByCand: make(map[int64]uint64),
	}
}

func (f *fakeChain) Configured() bool { return f.configured }

func (f *fakeChain) NewVoterIdentity(_ context.Context) (ports.VoterIdentity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identities++
	return fakeIdentity{address: fmt.Sprintf("0xvoter%04d", f.identities)}, nil
}

func (f *fakeChain) GasPrice(_ context.Context) (*big.Int, error) {
	if f.gasPriceErr != nil {
		return nil, f.gasPriceErr
	}
	return big.NewInt(15_000_000_000), nil
}

func (f *fakeChain) Fund(_ context.Context, identity ports.VoterIdentity, _ *big.Int) (ports.TxRef, error) {
	if f.fundErr != nil {
		return "", f.fundErr
	}
	return ports.TxRef("fund:" + identity.Address()), nil
}

func (f *fakeChain) SubmitVote(_ context.Context, identity ports.VoterIdentity, candidateID int64, _ *big.Int) (ports.TxRef, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	ref := ports.TxRef(fmt.Sprintf("vote:%s:%d", identity.Address(), candidateID))
	f.mu.Lock()
	f.submittedTx = append(f.submittedTx, ref)
	f.mu.Unlock()
	return ref, nil
}

func (f *fakeChain) AwaitFinality(_ context.Context, ref ports.TxRef, _ time.Duration) (ports.TxOutcome, error) {
	if strings.HasPrefix(string(ref), "fund:") {
		return f.fundOutcome, nil
	}
	if f.voteOutcome == ports.TxConfirmed {
		raw := string(ref)
		if candidateID, err := strconv.ParseInt(raw[strings.LastIndex(raw, ":")+1:], 10, 64); err == nil {
			f.mu.Lock()
			f.talliesByCand[candidateID]++
			f.mu.Unlock()
		}
	}
	return f.voteOutcome, nil
}

func (f *fakeChain) ReadTally(_ context.Context, candidateID int64) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.talliesByCand[candidateID], nil
}

func seedCandidates() []entities.Candidate {
	return []entities.Candidate{
		{ID: 1, Name: "Candidate One", Position: "Class Rep", Active: true},
		{ID: 2, Name: "Candidate Two", Position: "Class Rep", Active: true},
		{ID: 3, Name: "Candidate Three", Position: "Class Rep", Active: false},
	}
}

func newVoteUseCase(store *memory.Store, chain ports.VoteSubmitter) VoteUseCase {
	return VoteUseCase{
		Ledger:     store,
		Candidates: store,
		Cycles:     store,
		Chain:      chain,
		Clock:      store,
	}
}

func TestSubmitVoteConfirmsAndRecordsReference(t *testing.T) {
	store := memory.NewStore(seedCandidates())
	chain := newFakeChain()
	useCase := newVoteUseCase(store, chain)

	result, err := useCase.SubmitVote(context.Background(), SubmitVoteCommand{VoterID: "voter-1", CandidateID: 1})
	if err != nil {
		t.Fatalf("submit returned error: %v", err)
	}
	if result.State != entities.AttemptConfirmed {
		t.Fatalf("expected confirmed state, got %s", result.State)
	}
	if result.TxHash == "" {
		t.Fatalf("expected a transaction reference on a confirmed vote")
	}
	if result.CycleID != 1 {
		t.Fatalf("expected cycle 1, got %d", result.CycleID)
	}

	voted, err := store.HasVoted(context.Background(), "voter-1", 1)
	if err != nil {
		t.Fatalf("has-voted check returned error: %v", err)
	}
	if !voted {
		t.Fatalf("expected voter marked as voted after confirmation")
	}
}

func TestSubmitVoteRejectsSecondAttempt(t *testing.T) {
	store := memory.NewStore(seedCandidates())
	chain := newFakeChain()
	useCase := newVoteUseCase(store, chain)

	if _, err := useCase.SubmitVote(context.Background(), SubmitVoteCommand{VoterID: "voter-1", CandidateID: 1}); err != nil {
		t.Fatalf("first submit returned error: %v", err)
	}

	result, err := useCase.SubmitVote(context.Background(), SubmitVoteCommand{VoterID: "voter-1", CandidateID: 2})
	if !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
	if result.State != entities.AttemptDenied {
		t.Fatalf("expected denied state, got %s", result.State)
	}
	if len(chain.submittedTx) != 1 {
		t.Fatalf("expected exactly one external vote transaction, got %d", len(chain.submittedTx))
	}
}

func TestSubmitVoteConcurrentSameVoterCommitsOnce(t *testing.T) {
	store := memory.NewStore(seedCandidates())
	chain := newFakeChain()
	useCase := newVoteUseCase(store, chain)

	const attempts = 16
	var wg sync.WaitGroup
	results := make([]SubmitVoteResult, attempts)
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			results[index], errs[index] = useCase.SubmitVote(
				context.Background(),
				SubmitVoteCommand{VoterID: "voter-race", CandidateID: 1},
			)
		}(i)
	}
	wg.Wait()

	confirmed := 0
	for i := 0; i < attempts; i++ {
		switch {
		case errs[i] == nil && results[i].State == entities.AttemptConfirmed:
			confirmed++
		case errors.Is(errs[i], domainerrors.ErrAlreadyVoted):
		default:
			t.Fatalf("attempt %d: unexpected outcome state=%s err=%v", i, results[i].State, errs[i])
		}
	}
	if confirmed != 1 {
		t.Fatalf("expected exactly one confirmed attempt, got %d", confirmed)
	}
	if len(chain.submittedTx) != 1 {
		t.Fatalf("expected exactly one external vote transaction, got %d", len(chain.submittedTx))
	}
}

func TestSubmitVotePausedCycleLeavesNoReservation(t *testing.T) {
	store := memory.NewStore(seedCandidates())
	store.SetCycleSettings(ports.CycleProjection{CycleID: 1, Paused: true})
	chain := newFakeChain()
	useCase := newVoteUseCase(store, chain)

	result, err := useCase.SubmitVote(context.Background(), SubmitVoteCommand{VoterID: "voter-1", CandidateID: 1})
	if !errors.Is(err, domainerrors.ErrVotingPaused) {
		t.Fatalf("expected ErrVotingPaused, got %v", err)
	}
	if result.State != entities.AttemptDenied {
		t.Fatalf("expected denied state, got %s", result.State)
	}
	voted, _ := store.HasVoted(context.Background(), "voter-1", 1)
	if voted {
		t.Fatalf("denied attempt must not leave a reservation")
	}
	if len(chain.submittedTx) != 0 {
		t.Fatalf("denied attempt must not reach the external ledger")
	}
}

func TestSubmitVoteDeadlinePassedIsDenied(t *testing.T) {
	store := memory.NewStore(seedCandidates())
	past := time.Now().UTC().Add(-time.Hour)
	store.SetCycleSettings(ports.CycleProjection{CycleID: 1, Deadline: &past})
	useCase := newVoteUseCase(store, newFakeChain())

	_, err := useCase.SubmitVote(context.Background(), SubmitVoteCommand{VoterID: "voter-1", CandidateID: 1})
	if !errors.Is(err, domainerrors.ErrDeadlinePassed) {
		t.Fatalf("expected ErrDeadlinePassed, got %v", err)
	}
}

func TestSubmitVoteUnknownCandidate(t *testing.T) {
	store := memory.NewStore(seedCandidates())
	useCase := newVoteUseCase(store, newFakeChain())

	_, err := useCase.SubmitVote(context.Background(), SubmitVoteCommand{VoterID: "voter-1", CandidateID: 99})
	if !errors.Is(err, domainerrors.ErrUnknownCandidate) {
		t.Fatalf("expected ErrUnknownCandidate for missing id, got %v", err)
	}

	_, err = useCase.SubmitVote(context.Background(), SubmitVoteCommand{VoterID: "voter-1", CandidateID: 3})
	if !errors.Is(err, domainerrors.ErrUnknownCandidate) {
		t.Fatalf("expected ErrUnknownCandidate for inactive candidate, got %v", err)
	}
}

func TestSubmitVoteMissingSigningKeyDeniedBeforeReserve(t *testing.T) {
	store := memory.NewStore(seedCandidates())
	chain := newFakeChain()
	chain.configured = false
	useCase := newVoteUseCase(store, chain)

	_, err := useCase.SubmitVote(context.Background(), SubmitVoteCommand{VoterID: "voter-1", CandidateID: 1})
	if !errors.Is(err, domainerrors.ErrSigningKeyMissing) {
		t.Fatalf("expected ErrSigningKeyMissing, got %v", err)
	}
	voted, _ := store.HasVoted(context.Background(), "voter-1", 1)
	if voted {
		t.Fatalf("configuration failure must not leave a reservation")
	}
}

func TestSubmitVoteFundFailureRollsBackAndAllowsRetry(t *testing.T) {
	store := memory.NewStore(seedCandidates())
	chain := newFakeChain()
	chain.fundErr = errors.New("rpc connection refused")
	useCase := newVoteUseCase(store, chain)

	result, err := useCase.SubmitVote(context.Background(), SubmitVoteCommand{VoterID: "voter-1", CandidateID: 1})
	if !errors.Is(err, domainerrors.ErrLedgerUnavailable) {
		t.Fatalf("expected ErrLedgerUnavailable, got %v", err)
	}
	if result.State != entities.AttemptRolledBack {
		t.Fatalf("expected rolled-back state, got %s", result.State)
	}
	voted, _ := store.HasVoted(context.Background(), "voter-1", 1)
	if voted {
		t.Fatalf("rollback must clear the reservation")
	}

	chain.fundErr = nil
	retry, err := useCase.SubmitVote(context.Background(), SubmitVoteCommand{VoterID: "voter-1", CandidateID: 1})
	if err != nil {
		t.Fatalf("retry after rollback returned error: %v", err)
	}
	if retry.State != entities.AttemptConfirmed {
		t.Fatalf("expected retry to confirm, got %s", retry.State)
	}
}

func TestSubmitVoteFinalityTimeoutReleasesReservation(t *testing.T) {
	store := memory.NewStore(seedCandidates())
	chain := newFakeChain()
	chain.voteOutcome = ports.TxTimedOut
	useCase := newVoteUseCase(store, chain)

	result, err := useCase.SubmitVote(context.Background(), SubmitVoteCommand{VoterID: "voter-1", CandidateID: 1})
	if !errors.Is(err, domainerrors.ErrFinalityTimeout) {
		t.Fatalf("expected ErrFinalityTimeout, got %v", err)
	}
	if result.State != entities.AttemptRolledBack {
		t.Fatalf("expected rolled-back state, got %s", result.State)
	}
	voted, _ := store.HasVoted(context.Background(), "voter-1", 1)
	if voted {
		t.Fatalf("timed-out attempt must release the reservation")
	}
}

func TestSubmitVoteRevertedTransactionRollsBack(t *testing.T) {
	store := memory.NewStore(seedCandidates())
	chain := newFakeChain()
	chain.fundOutcome = ports.TxReverted
	useCase := newVoteUseCase(store, chain)

	_, err := useCase.SubmitVote(context.Background(), SubmitVoteCommand{VoterID: "voter-1", CandidateID: 1})
	if !errors.Is(err, domainerrors.ErrTransactionReverted) {
		t.Fatalf("expected ErrTransactionReverted, got %v", err)
	}
	if len(chain.submittedTx) != 0 {
		t.Fatalf("a reverted funding transaction must stop the vote phase")
	}
}

func TestSubmitVoteValidatesInput(t *testing.T) {
	store := memory.NewStore(seedCandidates())
	useCase := newVoteUseCase(store, newFakeChain())

	if _, err := useCase.SubmitVote(context.Background(), SubmitVoteCommand{VoterID: "  ", CandidateID: 1}); !errors.Is(err, domainerrors.ErrInvalidVoteInput) {
		t.Fatalf("expected ErrInvalidVoteInput for blank voter, got %v", err)
	}
	if _, err := useCase.SubmitVote(context.Background(), SubmitVoteCommand{VoterID: "voter-1", CandidateID: 0}); !errors.Is(err, domainerrors.ErrInvalidVoteInput) {
		t.Fatalf("expected ErrInvalidVoteInput for non-positive candidate, got %v", err)
	}
}

func TestSubmitVoteNewCycleAllowsVotingAgain(t *testing.T) {
	store := memory.NewStore(seedCandidates())
	chain := newFakeChain()
	useCase := newVoteUseCase(store, chain)

	if _, err := useCase.SubmitVote(context.Background(), SubmitVoteCommand{VoterID: "voter-1", CandidateID: 1}); err != nil {
		t.Fatalf("cycle 1 submit returned error: %v", err)
	}

	store.SetCurrentCycle(2)
	result, err := useCase.SubmitVote(context.Background(), SubmitVoteCommand{VoterID: "voter-1", CandidateID: 2})
	if err != nil {
		t.Fatalf("cycle 2 submit returned error: %v", err)
	}
	if result.State != entities.AttemptConfirmed || result.CycleID != 2 {
		t.Fatalf("expected confirmed vote in cycle 2, got state=%s cycle=%d", result.State, result.CycleID)
	}
}
