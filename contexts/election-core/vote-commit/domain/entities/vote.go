package entities

import "time"

// VoteRecord is the local reservation that a voter has claimed their vote
// slot for a cycle. The (VoterID, CycleID) pair is unique at the storage
// layer; TxHash is set only after the external ledger confirms the vote.
type VoteRecord struct {
	RecordID  string
	VoterID   string
	CycleID   int64
	TxHash    string
	Confirmed bool
	CreatedAt time.Time
}

// AttemptState is the terminal state of a vote submission attempt.
type AttemptState string

const (
	AttemptConfirmed  AttemptState = "confirmed"
	AttemptDenied     AttemptState = "denied_early"
	AttemptRolledBack AttemptState = "rolled_back"
)
