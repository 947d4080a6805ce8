package ports

import (
	"context"
	"math/big"
	"time"

	"ballotchain/contexts/election-core/vote-commit/domain/entities"
)

// VoteLedger is the local durable record of (voter, cycle) reservations.
// Reserve relies on the storage engine's uniqueness enforcement, not a
// check-then-insert, so it stays atomic under concurrent calls.
type VoteLedger interface {
	// Reserve inserts the reservation or returns ErrAlreadyVoted.
	Reserve(ctx context.Context, voterID string, cycleID int64) error
	// Release deletes the reservation; releasing an absent row is a no-op.
	Release(ctx context.Context, voterID string, cycleID int64) error
	HasVoted(ctx context.Context, voterID string, cycleID int64) (bool, error)
	// Confirm records the finalized transaction reference on the reservation.
	Confirm(ctx context.Context, voterID string, cycleID int64, txHash string) error
	// ListUnconfirmed returns reservations created before the cutoff that
	// still carry no confirmed transaction reference.
	ListUnconfirmed(ctx context.Context, cutoff time.Time) ([]entities.VoteRecord, error)
}

type CandidateRegistry interface {
	// GetActiveCandidate resolves an active candidate or ErrUnknownCandidate.
	GetActiveCandidate(ctx context.Context, candidateID int64) (entities.Candidate, error)
	ListActiveCandidates(ctx context.Context) ([]entities.Candidate, error)
}

// CycleProjection is the slice of cycle configuration the vote path reads.
type CycleProjection struct {
	CycleID  int64
	Paused   bool
	Deadline *time.Time
}

type CycleReader interface {
	CurrentCycle(ctx context.Context) (int64, error)
	// CycleSettings returns open defaults when no row exists for the cycle.
	CycleSettings(ctx context.Context, cycleID int64) (CycleProjection, error)
	// CycleOffset returns the tally offset snapshotted at the cycle's start;
	// a cycle with no snapshot (the first one) reads as zero.
	CycleOffset(ctx context.Context, cycleID int64, candidateID int64) (uint64, error)
}

// TxRef identifies a submitted external-ledger transaction.
type TxRef string

// TxOutcome is the result of waiting for transaction finality.
type TxOutcome string

const (
	TxConfirmed TxOutcome = "confirmed"
	TxReverted  TxOutcome = "reverted"
	TxTimedOut  TxOutcome = "timed_out"
)

// VoterIdentity is a fresh, single-use signing identity provisioned for one
// vote. Its transaction stream is independent of every other vote's.
type VoterIdentity interface {
	Address() string
}

// VoteSubmitter drives the two-phase external submission: fund a fresh
// identity from the shared funding identity, then cast the vote from it.
// Fund serializes access to the funding identity's sequence counter
// internally; the other methods are safe to call concurrently.
type VoteSubmitter interface {
	Configured() bool
	NewVoterIdentity(ctx context.Context) (VoterIdentity, error)
	// GasPrice returns the boosted fee price used for both of a vote's
	// transactions; it is observed once per vote.
	GasPrice(ctx context.Context) (*big.Int, error)
	Fund(ctx context.Context, identity VoterIdentity, gasPrice *big.Int) (TxRef, error)
	SubmitVote(ctx context.Context, identity VoterIdentity, candidateID int64, gasPrice *big.Int) (TxRef, error)
	AwaitFinality(ctx context.Context, ref TxRef, timeout time.Duration) (TxOutcome, error)
}

// TallyReader is the external ledger's read path.
type TallyReader interface {
	ReadTally(ctx context.Context, candidateID int64) (uint64, error)
}

type Clock interface {
	Now() time.Time
}
