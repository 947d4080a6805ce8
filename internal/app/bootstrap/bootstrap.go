package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	cyclecontrol "ballotchain/contexts/election-core/cycle-control"
	cyclepostgres "ballotchain/contexts/election-core/cycle-control/adapters/postgres"
	votecommit "ballotchain/contexts/election-core/vote-commit"
	chainadapter "ballotchain/contexts/election-core/vote-commit/adapters/chain"
	votepostgres "ballotchain/contexts/election-core/vote-commit/adapters/postgres"
	"ballotchain/contexts/election-core/vote-commit/application/workers"
	"ballotchain/contexts/election-core/vote-commit/domain/entities"
	"ballotchain/internal/platform/chain"
	"ballotchain/internal/platform/config"
	"ballotchain/internal/platform/db"
	"ballotchain/internal/platform/httpserver"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres   *db.Postgres
	reconciler workers.Reconciler
	logger     *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := votepostgres.Migrate(pg.DB); err != nil {
		return nil, fmt.Errorf("migrate vote tables: %w", err)
	}
	if err := cyclepostgres.Migrate(pg.DB); err != nil {
		return nil, fmt.Errorf("migrate cycle tables: %w", err)
	}

	voteRepo := votepostgres.NewRepository(pg.DB, logger)
	cycleRepo := cyclepostgres.NewRepository(pg.DB, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := voteRepo.SeedCandidates(ctx, defaultBallot()); err != nil {
		return nil, fmt.Errorf("seed candidates: %w", err)
	}

	submitter, err := buildSubmitter(cfg, logger)
	if err != nil {
		return nil, err
	}

	voteModule := votecommit.NewModule(votecommit.Dependencies{
		Ledger:          voteRepo,
		Candidates:      voteRepo,
		Cycles:          voteRepo,
		Chain:           submitter,
		Tallies:         submitter,
		Clock:           votepostgres.SystemClock{},
		FinalityTimeout: cfg.FinalityTimeout,
		ReconcileMinAge: cfg.ReconcileMinAge,
		Logger:          logger,
	})
	cycleModule := cyclecontrol.NewModule(cyclecontrol.Dependencies{
		Cycles:     cycleRepo,
		Candidates: cycleRepo,
		Tallies:    submitter,
		Clock:      cyclepostgres.SystemClock{},
		Logger:     logger,
	})

	server := httpserver.New(voteModule, cycleModule, cfg.AdminToken, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	repo := votepostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		reconciler: workers.Reconciler{
			Ledger:   repo,
			Clock:    votepostgres.SystemClock{},
			MinAge:   cfg.ReconcileMinAge,
			Interval: cfg.ReconcileInterval,
			Logger:   logger,
		},
		logger: logger,
	}, nil
}

// buildSubmitter dials the external ledger when it is configured. A missing
// RPC endpoint or signing key yields a submitter whose Configured() reports
// false; reads and vote submission then fail fast at the use-case layer.
func buildSubmitter(cfg config.Config, logger *slog.Logger) (*chainadapter.Submitter, error) {
	if strings.TrimSpace(cfg.RPCURL) == "" || strings.TrimSpace(cfg.ContractAddress) == "" {
		logger.Warn("external ledger is not configured; votes will be rejected",
			"event", "bootstrap_ledger_unconfigured",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		return chainadapter.NewSubmitter(nil, nil), nil
	}

	client, err := chain.Dial(cfg.RPCURL, chain.Options{
		ContractAddress: cfg.ContractAddress,
		ChainID:         cfg.ChainID,
		GasMultiplier:   cfg.GasPriceMultiplier,
		StakeWei:        cfg.FundingStakeWei,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	funder, err := chain.NewFunder(cfg.FundingPrivateKey, client.ChainID(), client.Backend())
	if err != nil {
		return nil, fmt.Errorf("load funding key: %w", err)
	}
	return chainadapter.NewSubmitter(client, funder), nil
}

func defaultBallot() []entities.Candidate {
	names := []string{"Candidate One", "Candidate Two", "Candidate Three", "Candidate Four", "Candidate Five", "Candidate Six"}
	candidates := make([]entities.Candidate, 0, len(names))
	for i, name := range names {
		id := int64(i + 1)
		candidates = append(candidates, entities.Candidate{
			ID:           id,
			Name:         name,
			Position:     "Class Rep",
			ImageRef:     fmt.Sprintf("cand%d.jpg", id),
			ManifestoRef: fmt.Sprintf("manifesto_candidate%d", id),
			Active:       true,
		})
	}
	return candidates
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return w.reconciler.Run(ctx)
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
