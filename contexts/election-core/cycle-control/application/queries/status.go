package queries

import (
	"context"
	"fmt"
	"time"

	"ballotchain/contexts/election-core/cycle-control/domain/entities"
	"ballotchain/contexts/election-core/cycle-control/ports"
)

type StatusUseCase struct {
	Cycles ports.CycleStore
	Clock  ports.Clock
}

// Status reports whether voting is currently allowed and why not.
func (uc StatusUseCase) Status(ctx context.Context) (entities.CycleStatus, error) {
	pointer, err := uc.Cycles.CurrentCycle(ctx)
	if err != nil {
		return entities.CycleStatus{}, fmt.Errorf("resolve cycle pointer: %w", err)
	}
	settings, err := uc.Cycles.Settings(ctx, pointer.CycleID)
	if err != nil {
		return entities.CycleStatus{}, fmt.Errorf("load cycle settings: %w", err)
	}

	status := entities.CycleStatus{
		CycleID:  pointer.CycleID,
		Paused:   settings.Paused,
		Deadline: settings.Deadline,
	}
	now := uc.now()
	switch {
	case settings.Paused:
		status.Message = "voting is paused by the administrator"
	case settings.Deadline != nil && now.After(settings.Deadline.UTC()):
		status.Message = "voting deadline has passed"
	default:
		status.VotingAllowed = true
		status.Message = "voting is open"
	}
	return status, nil
}

// OffsetsForCycle exposes a past cycle's recorded snapshot for audit views.
func (uc StatusUseCase) OffsetsForCycle(ctx context.Context, cycleID int64) ([]entities.CandidateOffset, error) {
	return uc.Cycles.Offsets(ctx, cycleID)
}

func (uc StatusUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
