package errors

import "errors"

var (
	ErrInvalidVoteInput    = errors.New("invalid vote input")
	ErrVotingPaused        = errors.New("voting is paused for the current cycle")
	ErrDeadlinePassed      = errors.New("voting deadline has passed")
	ErrUnknownCandidate    = errors.New("candidate is unknown or inactive")
	ErrAlreadyVoted        = errors.New("voter has already voted in this cycle")
	ErrSigningKeyMissing   = errors.New("funding signing key is not configured")
	ErrLedgerUnavailable   = errors.New("external ledger is unavailable")
	ErrFinalityTimeout     = errors.New("timed out waiting for transaction finality")
	ErrTransactionReverted = errors.New("transaction reverted on chain")
)

// Retryable reports whether the failure is transient: the local reservation
// has been released and the same voter may submit again.
func Retryable(err error) bool {
	return errors.Is(err, ErrLedgerUnavailable) ||
		errors.Is(err, ErrFinalityTimeout) ||
		errors.Is(err, ErrTransactionReverted)
}
