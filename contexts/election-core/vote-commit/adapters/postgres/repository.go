package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ballotchain/contexts/election-core/vote-commit/domain/entities"
	domainerrors "ballotchain/contexts/election-core/vote-commit/domain/errors"
	"ballotchain/contexts/election-core/vote-commit/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists vote reservations and reads candidates plus the cycle
// configuration owned by cycle-control. The UNIQUE(voter_id, cycle_id) index
// is the double-vote guard; Reserve never does a check-then-insert.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

// Migrate creates the tables this module owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&voteRecordModel{}, &candidateModel{})
}

func (r *Repository) Reserve(ctx context.Context, voterID string, cycleID int64) error {
	row := voteRecordModel{
		ID:        uuid.NewString(),
		VoterID:   strings.TrimSpace(voterID),
		CycleID:   cycleID,
		CreatedAt: time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "voter_id"}, {Name: "cycle_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrAlreadyVoted
		}
		return r.logError("vote_repo_reserve_failed", create.Error,
			"voter_id", strings.TrimSpace(voterID),
			"cycle_id", cycleID,
		)
	}
	if create.RowsAffected == 0 {
		return domainerrors.ErrAlreadyVoted
	}
	return nil
}

func (r *Repository) Release(ctx context.Context, voterID string, cycleID int64) error {
	err := r.db.WithContext(ctx).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		Where("cycle_id = ?", cycleID).
		Delete(&voteRecordModel{}).Error
	if err != nil {
		return r.logError("vote_repo_release_failed", err,
			"voter_id", strings.TrimSpace(voterID),
			"cycle_id", cycleID,
		)
	}
	return nil
}

func (r *Repository) HasVoted(ctx context.Context, voterID string, cycleID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&voteRecordModel{}).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		Where("cycle_id = ?", cycleID).
		Count(&count).Error
	if err != nil {
		return false, r.logError("vote_repo_has_voted_failed", err,
			"voter_id", strings.TrimSpace(voterID),
			"cycle_id", cycleID,
		)
	}
	return count > 0, nil
}

func (r *Repository) Confirm(ctx context.Context, voterID string, cycleID int64, txHash string) error {
	result := r.db.WithContext(ctx).
		Model(&voteRecordModel{}).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		Where("cycle_id = ?", cycleID).
		Updates(map[string]any{
			"tx_hash":   strings.TrimSpace(txHash),
			"confirmed": true,
		})
	if result.Error != nil {
		return r.logError("vote_repo_confirm_failed", result.Error,
			"voter_id", strings.TrimSpace(voterID),
			"cycle_id", cycleID,
		)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) ListUnconfirmed(ctx context.Context, cutoff time.Time) ([]entities.VoteRecord, error) {
	var rows []voteRecordModel
	err := r.db.WithContext(ctx).
		Where("confirmed = ?", false).
		Where("created_at < ?", cutoff.UTC()).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("vote_repo_list_unconfirmed_failed", err)
	}
	records := make([]entities.VoteRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toEntity())
	}
	return records, nil
}

func (r *Repository) GetActiveCandidate(ctx context.Context, candidateID int64) (entities.Candidate, error) {
	var row candidateModel
	err := r.db.WithContext(ctx).
		Where("id = ?", candidateID).
		Where("active = ?", true).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Candidate{}, domainerrors.ErrUnknownCandidate
		}
		return entities.Candidate{}, r.logError("vote_repo_get_candidate_failed", err,
			"candidate_id", candidateID,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListActiveCandidates(ctx context.Context) ([]entities.Candidate, error) {
	var rows []candidateModel
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("vote_repo_list_candidates_failed", err)
	}
	candidates := make([]entities.Candidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, row.toEntity())
	}
	return candidates, nil
}

// SeedCandidates inserts the ballot once; existing ids are left untouched so
// soft-delete state survives restarts.
func (r *Repository) SeedCandidates(ctx context.Context, candidates []entities.Candidate) error {
	for _, candidate := range candidates {
		row := candidateModelFromEntity(candidate)
		create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).Create(&row)
		if create.Error != nil {
			return r.logError("vote_repo_seed_candidate_failed", create.Error,
				"candidate_id", candidate.ID,
			)
		}
	}
	return nil
}

func (r *Repository) CurrentCycle(ctx context.Context) (int64, error) {
	var row electionStateModel
	err := r.db.WithContext(ctx).
		Where("id = ?", electionStateRowID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Pointer row is created by cycle-control on first rollover;
			// until then the election runs as cycle 1.
			return 1, nil
		}
		return 0, r.logError("vote_repo_current_cycle_failed", err)
	}
	return row.CurrentCycle, nil
}

func (r *Repository) CycleSettings(ctx context.Context, cycleID int64) (ports.CycleProjection, error) {
	var row cycleSettingsModel
	err := r.db.WithContext(ctx).
		Where("cycle_id = ?", cycleID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.CycleProjection{CycleID: cycleID}, nil
		}
		return ports.CycleProjection{}, r.logError("vote_repo_cycle_settings_failed", err,
			"cycle_id", cycleID,
		)
	}
	return ports.CycleProjection{
		CycleID:  row.CycleID,
		Paused:   row.Paused,
		Deadline: normalizeOptionalTime(row.Deadline),
	}, nil
}

func (r *Repository) CycleOffset(ctx context.Context, cycleID int64, candidateID int64) (uint64, error) {
	var row cycleOffsetModel
	err := r.db.WithContext(ctx).
		Where("cycle_id = ?", cycleID).
		Where("candidate_id = ?", candidateID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, r.logError("vote_repo_cycle_offset_failed", err,
			"cycle_id", cycleID,
			"candidate_id", candidateID,
		)
	}
	return row.Offset, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "election-core/vote-commit",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("vote repository operation failed", fields...)
	return err
}

const electionStateRowID = 1

type voteRecordModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	VoterID   string    `gorm:"column:voter_id;uniqueIndex:idx_votes_voter_cycle"`
	CycleID   int64     `gorm:"column:cycle_id;uniqueIndex:idx_votes_voter_cycle"`
	TxHash    string    `gorm:"column:tx_hash"`
	Confirmed bool      `gorm:"column:confirmed"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (voteRecordModel) TableName() string {
	return "vote_records"
}

func (m voteRecordModel) toEntity() entities.VoteRecord {
	return entities.VoteRecord{
		RecordID:  m.ID,
		VoterID:   m.VoterID,
		CycleID:   m.CycleID,
		TxHash:    m.TxHash,
		Confirmed: m.Confirmed,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

type candidateModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	Name         string    `gorm:"column:name"`
	Position     string    `gorm:"column:position"`
	ImageRef     string    `gorm:"column:image_ref"`
	ManifestoRef string    `gorm:"column:manifesto_ref"`
	Active       bool      `gorm:"column:active"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (candidateModel) TableName() string {
	return "candidates"
}

func candidateModelFromEntity(candidate entities.Candidate) candidateModel {
	row := candidateModel{
		ID:           candidate.ID,
		Name:         strings.TrimSpace(candidate.Name),
		Position:     strings.TrimSpace(candidate.Position),
		ImageRef:     strings.TrimSpace(candidate.ImageRef),
		ManifestoRef: strings.TrimSpace(candidate.ManifestoRef),
		Active:       candidate.Active,
		CreatedAt:    candidate.CreatedAt.UTC(),
		UpdatedAt:    candidate.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m candidateModel) toEntity() entities.Candidate {
	return entities.Candidate{
		ID:           m.ID,
		Name:         m.Name,
		Position:     m.Position,
		ImageRef:     m.ImageRef,
		ManifestoRef: m.ManifestoRef,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

// Projection models over tables owned by cycle-control.

type electionStateModel struct {
	ID           int64 `gorm:"column:id;primaryKey"`
	CurrentCycle int64 `gorm:"column:current_cycle"`
	Version      int64 `gorm:"column:version"`
}

func (electionStateModel) TableName() string {
	return "election_state"
}

type cycleSettingsModel struct {
	CycleID  int64      `gorm:"column:cycle_id;primaryKey"`
	Paused   bool       `gorm:"column:paused"`
	Deadline *time.Time `gorm:"column:deadline"`
}

func (cycleSettingsModel) TableName() string {
	return "cycle_settings"
}

type cycleOffsetModel struct {
	CycleID     int64  `gorm:"column:cycle_id;primaryKey"`
	CandidateID int64  `gorm:"column:candidate_id;primaryKey"`
	Offset      uint64 `gorm:"column:tally_offset"`
}

func (cycleOffsetModel) TableName() string {
	return "cycle_offsets"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.VoteLedger = (*Repository)(nil)
var _ ports.CandidateRegistry = (*Repository)(nil)
var _ ports.CycleReader = (*Repository)(nil)

// SystemClock satisfies ports.Clock with wall time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
