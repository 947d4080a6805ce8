package queries

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballotchain/contexts/election-core/cycle-control/adapters/memory"
	"ballotchain/contexts/election-core/cycle-control/domain/entities"
)

func TestStatusOpenCycle(t *testing.T) {
	store := memory.NewStore()
	useCase := StatusUseCase{Cycles: store, Clock: store}

	status, err := useCase.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.CycleID)
	assert.True(t, status.VotingAllowed)
	assert.Equal(t, "voting is open", status.Message)
}

func TestStatusPausedCycle(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.SaveSettings(context.Background(), entities.CycleSettings{
		CycleID: 1,
		Paused:  true,
	}))
	useCase := StatusUseCase{Cycles: store, Clock: store}

	status, err := useCase.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.VotingAllowed)
	assert.Equal(t, "voting is paused by the administrator", status.Message)
}

func TestStatusDeadlinePassed(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store.SetNow(now)
	deadline := now.Add(-time.Minute)
	require.NoError(t, store.SaveSettings(context.Background(), entities.CycleSettings{
		CycleID:  1,
		Deadline: &deadline,
	}))
	useCase := StatusUseCase{Cycles: store, Clock: store}

	status, err := useCase.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.VotingAllowed)
	assert.Equal(t, "voting deadline has passed", status.Message)
}

func TestStatusFutureDeadlineStillOpen(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store.SetNow(now)
	deadline := now.Add(time.Hour)
	require.NoError(t, store.SaveSettings(context.Background(), entities.CycleSettings{
		CycleID:  1,
		Deadline: &deadline,
	}))
	useCase := StatusUseCase{Cycles: store, Clock: store}

	status, err := useCase.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.VotingAllowed)
	require.NotNil(t, status.Deadline)
	assert.True(t, status.Deadline.Equal(deadline))
}
