package httptransport

// SubmitVoteRequest is the body of POST /api/vote.
type SubmitVoteRequest struct {
	CandidateID int64 `json:"candidateId"`
}

// SubmitVoteResponse reports the attempt outcome; TxHash is present only for
// confirmed votes and is the on-ledger proof.
type SubmitVoteResponse struct {
	Status  string `json:"status"`
	CycleID int64  `json:"cycle_id"`
	TxHash  string `json:"tx_hash,omitempty"`
	Message string `json:"message,omitempty"`
}

type CandidateItem struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Position     string `json:"position"`
	ImageRef     string `json:"image"`
	ManifestoRef string `json:"manifesto"`
}

type BallotResponse struct {
	Candidates []CandidateItem `json:"candidates"`
}

type ResultItem struct {
	CandidateID int64  `json:"candidate_id"`
	Name        string `json:"name"`
	Position    string `json:"position"`
	Votes       uint64 `json:"votes"`
}

type ResultsResponse struct {
	CycleID int64        `json:"cycle_id"`
	Results []ResultItem `json:"results"`
}

type OffsetsResponse struct {
	CycleID int64    `json:"election_id"`
	Offsets []uint64 `json:"offsets"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
