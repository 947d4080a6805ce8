package httpserver

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	cyclecontrol "ballotchain/contexts/election-core/cycle-control"
	cycleerrors "ballotchain/contexts/election-core/cycle-control/domain/errors"
	cyclehttp "ballotchain/contexts/election-core/cycle-control/transport/http"
	votecommit "ballotchain/contexts/election-core/vote-commit"
	voteerrors "ballotchain/contexts/election-core/vote-commit/domain/errors"
	votehttp "ballotchain/contexts/election-core/vote-commit/transport/http"

	_ "ballotchain/internal/platform/httpserver/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	adminToken string
	votes      votecommit.Module
	cycles     cyclecontrol.Module
}

func New(
	votes votecommit.Module,
	cycles cyclecontrol.Module,
	adminToken string,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		adminToken: adminToken,
		votes:      votes,
		cycles:     cycles,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routing table for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/vote", s.handleSubmitVote)
	s.mux.HandleFunc("GET /api/candidates", s.handleBallot)
	s.mux.HandleFunc("GET /api/results", s.handleResults)
	s.mux.HandleFunc("GET /api/offsets", s.handleOffsets)

	s.mux.HandleFunc("GET /admin/election/status", s.withAdminToken(s.handleStatus))
	s.mux.HandleFunc("POST /admin/election/pause", s.withAdminToken(s.handlePause))
	s.mux.HandleFunc("POST /admin/election/resume", s.withAdminToken(s.handleResume))
	s.mux.HandleFunc("POST /admin/election/deadline", s.withAdminToken(s.handleSetDeadline))
	s.mux.HandleFunc("POST /admin/election/start-new-cycle", s.withAdminToken(s.handleStartNewCycle))
	s.mux.HandleFunc("GET /admin/election/cycles/{cycle_id}/offsets", s.withAdminToken(s.handleSnapshot))
}

func (s *Server) withAdminToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.adminToken == "" {
			writeCycleError(w, http.StatusServiceUnavailable, "admin_disabled", "admin API is not configured")
			return
		}
		token := r.Header.Get("X-Admin-Token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
			writeCycleError(w, http.StatusUnauthorized, "invalid_admin_token", "X-Admin-Token header is missing or wrong")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleSubmitVote(w http.ResponseWriter, r *http.Request) {
	voterID := strings.TrimSpace(r.Header.Get("X-Voter-Id"))
	if voterID == "" {
		writeVoteError(w, http.StatusUnauthorized, "missing_voter", "X-Voter-Id header is required")
		return
	}

	var req votehttp.SubmitVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeVoteError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.votes.Handler.SubmitVoteHandler(r.Context(), voterID, req)
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBallot(w http.ResponseWriter, r *http.Request) {
	resp, err := s.votes.Handler.BallotHandler(r.Context())
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	resp, err := s.votes.Handler.ResultsHandler(r.Context())
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOffsets(w http.ResponseWriter, r *http.Request) {
	resp, err := s.votes.Handler.OffsetsHandler(r.Context())
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.cycles.Handler.StatusHandler(r.Context())
	if err != nil {
		writeCycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	resp, err := s.cycles.Handler.PauseHandler(r.Context())
	if err != nil {
		writeCycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	resp, err := s.cycles.Handler.ResumeHandler(r.Context())
	if err != nil {
		writeCycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetDeadline(w http.ResponseWriter, r *http.Request) {
	var req cyclehttp.SetDeadlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.cycles.Handler.SetDeadlineHandler(r.Context(), req)
	if err != nil {
		writeCycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartNewCycle(w http.ResponseWriter, r *http.Request) {
	resp, err := s.cycles.Handler.StartNewCycleHandler(r.Context())
	if err != nil {
		writeCycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	cycleID, err := strconv.ParseInt(r.PathValue("cycle_id"), 10, 64)
	if err != nil {
		writeCycleError(w, http.StatusBadRequest, "invalid_cycle_id", "cycle_id must be an integer")
		return
	}
	resp, err := s.cycles.Handler.SnapshotHandler(r.Context(), cycleID)
	if err != nil {
		writeCycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeVoteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, voteerrors.ErrInvalidVoteInput):
		writeVoteError(w, http.StatusBadRequest, "invalid_vote_input", err.Error())
	case errors.Is(err, voteerrors.ErrUnknownCandidate):
		writeVoteError(w, http.StatusNotFound, "unknown_candidate", err.Error())
	case errors.Is(err, voteerrors.ErrVotingPaused):
		writeVoteError(w, http.StatusForbidden, "voting_paused", err.Error())
	case errors.Is(err, voteerrors.ErrDeadlinePassed):
		writeVoteError(w, http.StatusForbidden, "deadline_passed", err.Error())
	case errors.Is(err, voteerrors.ErrAlreadyVoted):
		writeVoteError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, voteerrors.ErrSigningKeyMissing):
		writeVoteError(w, http.StatusServiceUnavailable, "signing_key_missing", err.Error())
	case errors.Is(err, voteerrors.ErrFinalityTimeout):
		writeVoteError(w, http.StatusGatewayTimeout, "finality_timeout", err.Error())
	case errors.Is(err, voteerrors.ErrTransactionReverted):
		writeVoteError(w, http.StatusBadGateway, "transaction_reverted", err.Error())
	case errors.Is(err, voteerrors.ErrLedgerUnavailable):
		writeVoteError(w, http.StatusBadGateway, "ledger_unavailable", err.Error())
	default:
		writeVoteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeCycleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cycleerrors.ErrInvalidDeadline):
		writeCycleError(w, http.StatusBadRequest, "invalid_deadline", err.Error())
	case errors.Is(err, cycleerrors.ErrRolloverConflict):
		writeCycleError(w, http.StatusConflict, "rollover_conflict", err.Error())
	case errors.Is(err, cycleerrors.ErrSnapshotExists):
		writeCycleError(w, http.StatusConflict, "snapshot_exists", err.Error())
	default:
		writeCycleError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeVoteError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, votehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeCycleError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, cyclehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
