package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "ballotchain/contexts/election-core/vote-commit/application"
	"ballotchain/contexts/election-core/vote-commit/domain/entities"
	domainerrors "ballotchain/contexts/election-core/vote-commit/domain/errors"
	"ballotchain/contexts/election-core/vote-commit/ports"
)

// SubmitVoteCommand is the write-model input for one vote attempt. VoterID is
// the stable identifier the identity-verifying caller derived; it is never a
// raw token.
type SubmitVoteCommand struct {
	VoterID     string
	CandidateID int64
}

// SubmitVoteResult carries the terminal attempt state and, on confirmation,
// the external transaction reference proving the vote.
type SubmitVoteResult struct {
	State   entities.AttemptState
	CycleID int64
	TxHash  string
}

// VoteUseCase coordinates the full vote path: eligibility checks, local
// reservation, two-phase external submission, then confirm or roll back.
// Once a request holds the reservation, no concurrent request for the same
// (voter, cycle) can reach the external ledger; the storage uniqueness
// constraint is the guard, not anything in this struct.
type VoteUseCase struct {
	Ledger          ports.VoteLedger
	Candidates      ports.CandidateRegistry
	Cycles          ports.CycleReader
	Chain           ports.VoteSubmitter
	Clock           ports.Clock
	FinalityTimeout time.Duration
	Logger          *slog.Logger
}

const defaultFinalityTimeout = 300 * time.Second

// SubmitVote runs one attempt of the vote state machine. Eligibility checks
// run cheapest-first: cycle state, candidate validity, prior-vote check. A
// storage failure on any eligibility read denies the vote; failing open
// would let duplicates through during an outage.
func (uc VoteUseCase) SubmitVote(ctx context.Context, cmd SubmitVoteCommand) (SubmitVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	voterID := strings.TrimSpace(cmd.VoterID)
	logger.Info("vote submission started",
		"event", "vote_commit_started",
		"module", "election-core/vote-commit",
		"layer", "application",
		"voter_id", voterID,
		"candidate_id", cmd.CandidateID,
	)
	if voterID == "" || cmd.CandidateID <= 0 {
		return denied(0), domainerrors.ErrInvalidVoteInput
	}

	cycleID, err := uc.Cycles.CurrentCycle(ctx)
	if err != nil {
		return denied(0), fmt.Errorf("resolve current cycle: %w", err)
	}
	settings, err := uc.Cycles.CycleSettings(ctx, cycleID)
	if err != nil {
		return denied(cycleID), fmt.Errorf("load cycle settings: %w", err)
	}
	now := uc.now()
	if settings.Paused {
		return denied(cycleID), domainerrors.ErrVotingPaused
	}
	if settings.Deadline != nil && now.After(settings.Deadline.UTC()) {
		return denied(cycleID), domainerrors.ErrDeadlinePassed
	}

	if _, err := uc.Candidates.GetActiveCandidate(ctx, cmd.CandidateID); err != nil {
		return denied(cycleID), err
	}

	// Advisory only; the reserve below is the authoritative guard.
	voted, err := uc.Ledger.HasVoted(ctx, voterID, cycleID)
	if err != nil {
		return denied(cycleID), fmt.Errorf("prior-vote check: %w", err)
	}
	if voted {
		return denied(cycleID), domainerrors.ErrAlreadyVoted
	}

	if uc.Chain == nil || !uc.Chain.Configured() {
		logger.Error("vote submission misconfigured",
			"event", "vote_commit_signing_key_missing",
			"module", "election-core/vote-commit",
			"layer", "application",
		)
		return denied(cycleID), domainerrors.ErrSigningKeyMissing
	}

	if err := uc.Ledger.Reserve(ctx, voterID, cycleID); err != nil {
		// Losing the uniqueness race reads as already voted; no reservation
		// was made by this request, so there is nothing to roll back.
		return denied(cycleID), err
	}
	logger.Info("vote locally reserved",
		"event", "vote_commit_reserved",
		"module", "election-core/vote-commit",
		"layer", "application",
		"voter_id", voterID,
		"cycle_id", cycleID,
	)

	txRef, err := uc.submitExternally(ctx, logger, voterID, cmd.CandidateID)
	if err != nil {
		uc.rollback(ctx, logger, voterID, cycleID, err)
		return SubmitVoteResult{State: entities.AttemptRolledBack, CycleID: cycleID}, err
	}

	if err := uc.Ledger.Confirm(ctx, voterID, cycleID, string(txRef)); err != nil {
		// The vote is final on chain; keep the reservation and leave the
		// missing reference to the reconciliation sweep.
		logger.Error("confirmed vote reference not persisted",
			"event", "vote_commit_confirm_write_failed",
			"module", "election-core/vote-commit",
			"layer", "application",
			"voter_id", voterID,
			"cycle_id", cycleID,
			"tx_hash", string(txRef),
			"error", err.Error(),
		)
	}
	logger.Info("vote confirmed",
		"event", "vote_commit_confirmed",
		"module", "election-core/vote-commit",
		"layer", "application",
		"voter_id", voterID,
		"cycle_id", cycleID,
		"candidate_id", cmd.CandidateID,
		"tx_hash", string(txRef),
	)
	return SubmitVoteResult{State: entities.AttemptConfirmed, CycleID: cycleID, TxHash: string(txRef)}, nil
}

// submitExternally drives the two-phase submission: fund a fresh identity at
// the boosted gas price, wait for finality, then cast the vote from it and
// wait again. Any failure maps into the retryable taxonomy.
func (uc VoteUseCase) submitExternally(
	ctx context.Context,
	logger *slog.Logger,
	voterID string,
	candidateID int64,
) (ports.TxRef, error) {
	gasPrice, err := uc.Chain.GasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: observe gas price: %v", domainerrors.ErrLedgerUnavailable, err)
	}
	identity, err := uc.Chain.NewVoterIdentity(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: provision voter identity: %v", domainerrors.ErrLedgerUnavailable, err)
	}
	logger.Info("voter identity provisioned",
		"event", "vote_commit_identity_created",
		"module", "election-core/vote-commit",
		"layer", "application",
		"voter_id", voterID,
		"identity", identity.Address(),
	)

	fundRef, err := uc.Chain.Fund(ctx, identity, gasPrice)
	if err != nil {
		return "", fmt.Errorf("%w: fund voter identity: %v", domainerrors.ErrLedgerUnavailable, err)
	}
	if err := uc.awaitFinality(ctx, fundRef, "funding"); err != nil {
		return "", err
	}

	voteRef, err := uc.Chain.SubmitVote(ctx, identity, candidateID, gasPrice)
	if err != nil {
		return "", fmt.Errorf("%w: submit vote transaction: %v", domainerrors.ErrLedgerUnavailable, err)
	}
	if err := uc.awaitFinality(ctx, voteRef, "vote"); err != nil {
		return "", err
	}
	return voteRef, nil
}

func (uc VoteUseCase) awaitFinality(ctx context.Context, ref ports.TxRef, phase string) error {
	outcome, err := uc.Chain.AwaitFinality(ctx, ref, uc.finalityTimeout())
	if err != nil {
		return fmt.Errorf("%w: await %s finality: %v", domainerrors.ErrLedgerUnavailable, phase, err)
	}
	switch outcome {
	case ports.TxConfirmed:
		return nil
	case ports.TxReverted:
		return fmt.Errorf("%w: %s transaction %s", domainerrors.ErrTransactionReverted, phase, ref)
	default:
		// The transaction may still confirm later; the reservation must be
		// released rather than the vote silently assumed committed.
		return fmt.Errorf("%w: %s transaction %s", domainerrors.ErrFinalityTimeout, phase, ref)
	}
}

// rollback releases the reservation unconditionally so the voter may retry.
func (uc VoteUseCase) rollback(ctx context.Context, logger *slog.Logger, voterID string, cycleID int64, cause error) {
	if err := uc.Ledger.Release(ctx, voterID, cycleID); err != nil {
		logger.Error("vote reservation release failed",
			"event", "vote_commit_release_failed",
			"module", "election-core/vote-commit",
			"layer", "application",
			"voter_id", voterID,
			"cycle_id", cycleID,
			"error", err.Error(),
		)
		return
	}
	logger.Warn("vote rolled back",
		"event", "vote_commit_rolled_back",
		"module", "election-core/vote-commit",
		"layer", "application",
		"voter_id", voterID,
		"cycle_id", cycleID,
		"cause", cause.Error(),
	)
}

func (uc VoteUseCase) finalityTimeout() time.Duration {
	if uc.FinalityTimeout <= 0 {
		return defaultFinalityTimeout
	}
	return uc.FinalityTimeout
}

func (uc VoteUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func denied(cycleID int64) SubmitVoteResult {
	return SubmitVoteResult{State: entities.AttemptDenied, CycleID: cycleID}
}
