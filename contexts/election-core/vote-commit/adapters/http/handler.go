package httpadapter

import (
	"context"
	"log/slog"

	"ballotchain/contexts/election-core/vote-commit/application/commands"
	"ballotchain/contexts/election-core/vote-commit/application/queries"
	httptransport "ballotchain/contexts/election-core/vote-commit/transport/http"
)

type Handler struct {
	Votes      commands.VoteUseCase
	Results    queries.ResultsUseCase
	Candidates queries.CandidatesUseCase
	Logger     *slog.Logger
}

func (h Handler) SubmitVoteHandler(
	ctx context.Context,
	voterID string,
	req httptransport.SubmitVoteRequest,
) (httptransport.SubmitVoteResponse, error) {
	result, err := h.Votes.SubmitVote(ctx, commands.SubmitVoteCommand{
		VoterID:     voterID,
		CandidateID: req.CandidateID,
	})
	if err != nil {
		return httptransport.SubmitVoteResponse{}, err
	}
	return httptransport.SubmitVoteResponse{
		Status:  "success",
		CycleID: result.CycleID,
		TxHash:  result.TxHash,
	}, nil
}

func (h Handler) BallotHandler(ctx context.Context) (httptransport.BallotResponse, error) {
	candidates, err := h.Candidates.ListBallot(ctx)
	if err != nil {
		return httptransport.BallotResponse{}, err
	}
	items := make([]httptransport.CandidateItem, 0, len(candidates))
	for _, candidate := range candidates {
		items = append(items, httptransport.CandidateItem{
			ID:           candidate.ID,
			Name:         candidate.Name,
			Position:     candidate.Position,
			ImageRef:     candidate.ImageRef,
			ManifestoRef: candidate.ManifestoRef,
		})
	}
	return httptransport.BallotResponse{Candidates: items}, nil
}

func (h Handler) ResultsHandler(ctx context.Context) (httptransport.ResultsResponse, error) {
	view, err := h.Results.CurrentResults(ctx)
	if err != nil {
		return httptransport.ResultsResponse{}, err
	}
	resp := httptransport.ResultsResponse{
		CycleID: view.CycleID,
		Results: make([]httptransport.ResultItem, 0, len(view.Tallies)),
	}
	for _, tally := range view.Tallies {
		resp.Results = append(resp.Results, httptransport.ResultItem{
			CandidateID: tally.CandidateID,
			Name:        tally.Name,
			Position:    tally.Position,
			Votes:       tally.Votes,
		})
	}
	return resp, nil
}

func (h Handler) OffsetsHandler(ctx context.Context) (httptransport.OffsetsResponse, error) {
	vector, err := h.Results.CurrentOffsets(ctx)
	if err != nil {
		return httptransport.OffsetsResponse{}, err
	}
	return httptransport.OffsetsResponse{
		CycleID: vector.CycleID,
		Offsets: vector.Offsets,
	}, nil
}
