package httptransport

// StatusResponse mirrors the administrative status view.
type StatusResponse struct {
	CycleID       int64  `json:"election_id"`
	Paused        bool   `json:"paused"`
	Deadline      string `json:"deadline,omitempty"`
	VotingAllowed bool   `json:"votingAllowed"`
	Message       string `json:"message"`
}

type SetDeadlineRequest struct {
	// Deadline is an RFC 3339 timestamp.
	Deadline string `json:"deadline"`
}

type ControlResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type RolloverResponse struct {
	Status     string `json:"status"`
	NewCycleID int64  `json:"newElectionId"`
}

type SnapshotItem struct {
	CandidateID int64  `json:"candidateId"`
	Offset      uint64 `json:"offset"`
}

type SnapshotResponse struct {
	CycleID int64          `json:"election_id"`
	Offsets []SnapshotItem `json:"offsets"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
