package workers

import (
	"context"
	"log/slog"
	"time"

	application "ballotchain/contexts/election-core/vote-commit/application"
	"ballotchain/contexts/election-core/vote-commit/domain/entities"
	"ballotchain/contexts/election-core/vote-commit/ports"
)

// Reconciler periodically reports reservations that never received a
// confirmed transaction reference, usually the residue of a crash between
// the local reserve and the external confirm. It only reports; resolving a
// stranded reservation against ledger state is an operator decision.
type Reconciler struct {
	Ledger   ports.VoteLedger
	Clock    ports.Clock
	MinAge   time.Duration
	Interval time.Duration
	Logger   *slog.Logger
}

const (
	defaultMinAge   = 15 * time.Minute
	defaultInterval = 5 * time.Minute
)

// Run sweeps on a fixed interval until the context is cancelled.
func (r Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval())
	defer ticker.Stop()
	for {
		if _, err := r.RunOnce(ctx); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce lists reservations older than MinAge with no confirmed reference
// and logs each for operator follow-up.
func (r Reconciler) RunOnce(ctx context.Context) ([]entities.VoteRecord, error) {
	logger := application.ResolveLogger(r.Logger)
	cutoff := r.now().Add(-r.minAge())

	stranded, err := r.Ledger.ListUnconfirmed(ctx, cutoff)
	if err != nil {
		logger.Error("reconciliation sweep failed",
			"event", "vote_reconcile_list_failed",
			"module", "election-core/vote-commit",
			"layer", "worker",
			"error", err.Error(),
		)
		return nil, err
	}
	if len(stranded) == 0 {
		return nil, nil
	}
	for _, record := range stranded {
		logger.Warn("reservation without confirmed transaction",
			"event", "vote_reconcile_stranded_reservation",
			"module", "election-core/vote-commit",
			"layer", "worker",
			"voter_id", record.VoterID,
			"cycle_id", record.CycleID,
			"reserved_at", record.CreatedAt.Format(time.RFC3339),
		)
	}
	logger.Warn("reconciliation sweep found stranded reservations",
		"event", "vote_reconcile_sweep_completed",
		"module", "election-core/vote-commit",
		"layer", "worker",
		"count", len(stranded),
	)
	return stranded, nil
}

func (r Reconciler) minAge() time.Duration {
	if r.MinAge <= 0 {
		return defaultMinAge
	}
	return r.MinAge
}

func (r Reconciler) interval() time.Duration {
	if r.Interval <= 0 {
		return defaultInterval
	}
	return r.Interval
}

func (r Reconciler) now() time.Time {
	if r.Clock != nil {
		return r.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
