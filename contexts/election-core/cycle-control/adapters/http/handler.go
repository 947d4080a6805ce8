package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"ballotchain/contexts/election-core/cycle-control/application/commands"
	"ballotchain/contexts/election-core/cycle-control/application/queries"
	domainerrors "ballotchain/contexts/election-core/cycle-control/domain/errors"
	httptransport "ballotchain/contexts/election-core/cycle-control/transport/http"
)

type Handler struct {
	Rollover commands.RolloverUseCase
	Controls commands.ControlsUseCase
	Status   queries.StatusUseCase
	Logger   *slog.Logger
}

func (h Handler) StatusHandler(ctx context.Context) (httptransport.StatusResponse, error) {
	status, err := h.Status.Status(ctx)
	if err != nil {
		return httptransport.StatusResponse{}, err
	}
	resp := httptransport.StatusResponse{
		CycleID:       status.CycleID,
		Paused:        status.Paused,
		VotingAllowed: status.VotingAllowed,
		Message:       status.Message,
	}
	if status.Deadline != nil {
		resp.Deadline = status.Deadline.UTC().Format(time.RFC3339)
	}
	return resp, nil
}

func (h Handler) PauseHandler(ctx context.Context) (httptransport.ControlResponse, error) {
	if err := h.Controls.Pause(ctx); err != nil {
		return httptransport.ControlResponse{}, err
	}
	return httptransport.ControlResponse{Status: "success", Message: "voting paused"}, nil
}

func (h Handler) ResumeHandler(ctx context.Context) (httptransport.ControlResponse, error) {
	if err := h.Controls.Resume(ctx); err != nil {
		return httptransport.ControlResponse{}, err
	}
	return httptransport.ControlResponse{Status: "success", Message: "voting resumed"}, nil
}

func (h Handler) SetDeadlineHandler(
	ctx context.Context,
	req httptransport.SetDeadlineRequest,
) (httptransport.ControlResponse, error) {
	deadline, err := time.Parse(time.RFC3339, req.Deadline)
	if err != nil {
		return httptransport.ControlResponse{}, domainerrors.ErrInvalidDeadline
	}
	if err := h.Controls.SetDeadline(ctx, deadline); err != nil {
		return httptransport.ControlResponse{}, err
	}
	return httptransport.ControlResponse{
		Status:  "success",
		Message: "deadline set to " + deadline.UTC().Format(time.RFC3339),
	}, nil
}

func (h Handler) StartNewCycleHandler(ctx context.Context) (httptransport.RolloverResponse, error) {
	newCycleID, err := h.Rollover.StartNewCycle(ctx)
	if err != nil {
		return httptransport.RolloverResponse{}, err
	}
	return httptransport.RolloverResponse{Status: "success", NewCycleID: newCycleID}, nil
}

func (h Handler) SnapshotHandler(ctx context.Context, cycleID int64) (httptransport.SnapshotResponse, error) {
	offsets, err := h.Status.OffsetsForCycle(ctx, cycleID)
	if err != nil {
		return httptransport.SnapshotResponse{}, err
	}
	resp := httptransport.SnapshotResponse{
		CycleID: cycleID,
		Offsets: make([]httptransport.SnapshotItem, 0, len(offsets)),
	}
	for _, offset := range offsets {
		resp.Offsets = append(resp.Offsets, httptransport.SnapshotItem{
			CandidateID: offset.CandidateID,
			Offset:      offset.Offset,
		})
	}
	return resp, nil
}
