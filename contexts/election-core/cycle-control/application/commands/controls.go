package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	application "ballotchain/contexts/election-core/cycle-control/application"
	domainerrors "ballotchain/contexts/election-core/cycle-control/domain/errors"
	"ballotchain/contexts/election-core/cycle-control/ports"
)

// ControlsUseCase mutates the current cycle's settings. These are
// low-frequency administrative writes; read-modify-write suffices.
type ControlsUseCase struct {
	Cycles ports.CycleStore
	Clock  ports.Clock
	Logger *slog.Logger
}

func (uc ControlsUseCase) Pause(ctx context.Context) error {
	return uc.setPaused(ctx, true)
}

func (uc ControlsUseCase) Resume(ctx context.Context) error {
	return uc.setPaused(ctx, false)
}

// SetDeadline pins the current cycle's voting deadline. Past timestamps are
// rejected; clearing a deadline is done by pausing instead.
func (uc ControlsUseCase) SetDeadline(ctx context.Context, deadline time.Time) error {
	now := uc.now()
	if !deadline.After(now) {
		return domainerrors.ErrInvalidDeadline
	}
	pointer, err := uc.Cycles.CurrentCycle(ctx)
	if err != nil {
		return fmt.Errorf("resolve cycle pointer: %w", err)
	}
	settings, err := uc.Cycles.Settings(ctx, pointer.CycleID)
	if err != nil {
		return fmt.Errorf("load cycle settings: %w", err)
	}
	utc := deadline.UTC()
	settings.Deadline = &utc
	settings.UpdatedAt = now
	if err := uc.Cycles.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("save cycle settings: %w", err)
	}
	application.ResolveLogger(uc.Logger).Info("cycle deadline set",
		"event", "cycle_deadline_set",
		"module", "election-core/cycle-control",
		"layer", "application",
		"cycle_id", pointer.CycleID,
		"deadline", utc.Format(time.RFC3339),
	)
	return nil
}

func (uc ControlsUseCase) setPaused(ctx context.Context, paused bool) error {
	pointer, err := uc.Cycles.CurrentCycle(ctx)
	if err != nil {
		return fmt.Errorf("resolve cycle pointer: %w", err)
	}
	settings, err := uc.Cycles.Settings(ctx, pointer.CycleID)
	if err != nil {
		return fmt.Errorf("load cycle settings: %w", err)
	}
	settings.Paused = paused
	settings.UpdatedAt = uc.now()
	if err := uc.Cycles.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("save cycle settings: %w", err)
	}
	event := "cycle_voting_resumed"
	if paused {
		event = "cycle_voting_paused"
	}
	application.ResolveLogger(uc.Logger).Info("cycle pause flag updated",
		"event", event,
		"module", "election-core/cycle-control",
		"layer", "application",
		"cycle_id", pointer.CycleID,
		"paused", paused,
	)
	return nil
}

func (uc ControlsUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
