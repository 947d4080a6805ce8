package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	cyclecontrol "ballotchain/contexts/election-core/cycle-control"
	votecommit "ballotchain/contexts/election-core/vote-commit"
	chainadapter "ballotchain/contexts/election-core/vote-commit/adapters/chain"
	"ballotchain/contexts/election-core/vote-commit/domain/entities"
)

const testAdminToken = "sekrit"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	// The unconfigured submitter exercises the fail-fast path: vote
	// submission reports the missing signing key before reserving anything.
	submitter := chainadapter.NewSubmitter(nil, nil)
	voteModule := votecommit.NewInMemoryModule(
		[]entities.Candidate{
			{ID: 1, Name: "Candidate One", Position: "Class Rep", Active: true},
			{ID: 2, Name: "Candidate Two", Position: "Class Rep", Active: true},
		},
		submitter,
		submitter,
		nil,
	)
	cycleModule := cyclecontrol.NewInMemoryModule(submitter, nil)
	return New(voteModule, cycleModule, testAdminToken, nil, ":0")
}

func TestAdminEndpointsRequireToken(t *testing.T) {
	server := newTestServer(t)

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/admin/election/status", nil))
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/admin/election/pause", nil)
	request.Header.Set("X-Admin-Token", "wrong")
	server.Handler().ServeHTTP(recorder, request)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", recorder.Code)
	}
}

func TestAdminStatusWithToken(t *testing.T) {
	server := newTestServer(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/admin/election/status", nil)
	request.Header.Set("X-Admin-Token", testAdminToken)
	server.Handler().ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var payload struct {
		CycleID       int64  `json:"election_id"`
		VotingAllowed bool   `json:"votingAllowed"`
		Message       string `json:"message"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode status response: %v", err)
	}
	if payload.CycleID != 1 || !payload.VotingAllowed {
		t.Fatalf("expected open cycle 1, got %+v", payload)
	}
}

func TestVoteRequiresVoterHeader(t *testing.T) {
	server := newTestServer(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/vote", strings.NewReader(`{"candidateId":1}`))
	server.Handler().ServeHTTP(recorder, request)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without voter header, got %d", recorder.Code)
	}
}

func TestVoteUnconfiguredLedgerReturnsServiceUnavailable(t *testing.T) {
	server := newTestServer(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/vote", strings.NewReader(`{"candidateId":1}`))
	request.Header.Set("X-Voter-Id", "voter-1")
	server.Handler().ServeHTTP(recorder, request)
	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for missing signing key, got %d: %s", recorder.Code, recorder.Body.String())
	}
}

func TestBallotListsActiveCandidates(t *testing.T) {
	server := newTestServer(t)

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/candidates", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var payload struct {
		Candidates []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode ballot response: %v", err)
	}
	if len(payload.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(payload.Candidates))
	}
}
