package entities

import "time"

// CycleSettings are the per-cycle control flags. A cycle with no persisted
// row behaves as open with no deadline.
type CycleSettings struct {
	CycleID   int64
	Paused    bool
	Deadline  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CandidateOffset is one candidate's raw external tally at the instant the
// cycle began.
type CandidateOffset struct {
	CandidateID int64
	Offset      uint64
}

// OffsetSnapshot is the tally vector captured at rollover for a new cycle.
// It is written exactly once and never mutated.
type OffsetSnapshot struct {
	CycleID    int64
	Offsets    []CandidateOffset
	CapturedAt time.Time
}

// CyclePointer is the single versioned row holding the current cycle id.
// Version guards the advance against concurrent admin actions.
type CyclePointer struct {
	CycleID int64
	Version int64
}

// CycleStatus is the admin-facing view of the current cycle.
type CycleStatus struct {
	CycleID       int64
	Paused        bool
	Deadline      *time.Time
	VotingAllowed bool
	Message       string
}
