package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ballotchain/contexts/election-core/cycle-control/domain/entities"
	domainerrors "ballotchain/contexts/election-core/cycle-control/domain/errors"
	"ballotchain/contexts/election-core/cycle-control/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository owns the cycle pointer, settings, and offset snapshots.
// AdvanceCycle is the one multi-write operation in the system; it runs in a
// single transaction with the snapshot insert ordered before the pointer
// update, so a crash can only leave the old cycle current.
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
	return db.AutoMigrate(&electionStateModel{}, &cycleSettingsModel{}, &cycleOffsetModel{})
}

const electionStateRowID = 1

func (r *Repository) CurrentCycle(ctx context.Context) (entities.CyclePointer, error) {
	row := electionStateModel{ID: electionStateRowID, CurrentCycle: 1, Version: 0}
	err := r.db.WithContext(ctx).
		Where(electionStateModel{ID: electionStateRowID}).
		Attrs(electionStateModel{CurrentCycle: 1, Version: 0}).
		FirstOrCreate(&row).Error
	if err != nil {
		return entities.CyclePointer{}, r.logError("cycle_repo_current_cycle_failed", err)
	}
	return entities.CyclePointer{CycleID: row.CurrentCycle, Version: row.Version}, nil
}

func (r *Repository) AdvanceCycle(ctx context.Context, from entities.CyclePointer, snapshot entities.OffsetSnapshot) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, offset := range snapshot.Offsets {
			row := cycleOffsetModel{
				CycleID:     snapshot.CycleID,
				CandidateID: offset.CandidateID,
				Offset:      offset.Offset,
				CapturedAt:  snapshot.CapturedAt.UTC(),
			}
			if err := tx.Create(&row).Error; err != nil {
				if isUniqueViolation(err) {
					return domainerrors.ErrSnapshotExists
				}
				return err
			}
		}

		result := tx.Model(&electionStateModel{}).
			Where("id = ?", electionStateRowID).
			Where("version = ?", from.Version).
			Updates(map[string]any{
				"current_cycle": snapshot.CycleID,
				"version":       from.Version + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrRolloverConflict
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrRolloverConflict) || errors.Is(err, domainerrors.ErrSnapshotExists) {
			return err
		}
		return r.logError("cycle_repo_advance_failed", err,
			"from_cycle", from.CycleID,
			"new_cycle", snapshot.CycleID,
		)
	}
	return nil
}

func (r *Repository) Settings(ctx context.Context, cycleID int64) (entities.CycleSettings, error) {
	var row cycleSettingsModel
	err := r.db.WithContext(ctx).
		Where("cycle_id = ?", cycleID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.CycleSettings{CycleID: cycleID}, nil
		}
		return entities.CycleSettings{}, r.logError("cycle_repo_settings_failed", err, "cycle_id", cycleID)
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveSettings(ctx context.Context, settings entities.CycleSettings) error {
	row := settingsModelFromEntity(settings)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cycle_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"paused":     row.Paused,
			"deadline":   row.Deadline,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("cycle_repo_save_settings_failed", create.Error, "cycle_id", settings.CycleID)
	}
	return nil
}

func (r *Repository) Offsets(ctx context.Context, cycleID int64) ([]entities.CandidateOffset, error) {
	var rows []cycleOffsetModel
	err := r.db.WithContext(ctx).
		Where("cycle_id = ?", cycleID).
		Order("candidate_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("cycle_repo_offsets_failed", err, "cycle_id", cycleID)
	}
	offsets := make([]entities.CandidateOffset, 0, len(rows))
	for _, row := range rows {
		offsets = append(offsets, entities.CandidateOffset{
			CandidateID: row.CandidateID,
			Offset:      row.Offset,
		})
	}
	return offsets, nil
}

func (r *Repository) ListActiveCandidateIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&candidateProjectionModel{}).
		Where("active = ?", true).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, r.logError("cycle_repo_list_candidates_failed", err)
	}
	return ids, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "election-core/cycle-control",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("cycle repository operation failed", fields...)
	return err
}

type electionStateModel struct {
	ID           int64 `gorm:"column:id;primaryKey"`
	CurrentCycle int64 `gorm:"column:current_cycle"`
	Version      int64 `gorm:"column:version"`
}

func (electionStateModel) TableName() string {
	return "election_state"
}

type cycleSettingsModel struct {
	CycleID   int64      `gorm:"column:cycle_id;primaryKey"`
	Paused    bool       `gorm:"column:paused"`
	Deadline  *time.Time `gorm:"column:deadline"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
}

func (cycleSettingsModel) TableName() string {
	return "cycle_settings"
}

func settingsModelFromEntity(settings entities.CycleSettings) cycleSettingsModel {
	row := cycleSettingsModel{
		CycleID:   settings.CycleID,
		Paused:    settings.Paused,
		Deadline:  normalizeOptionalTime(settings.Deadline),
		CreatedAt: settings.CreatedAt.UTC(),
		UpdatedAt: settings.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m cycleSettingsModel) toEntity() entities.CycleSettings {
	return entities.CycleSettings{
		CycleID:   m.CycleID,
		Paused:    m.Paused,
		Deadline:  normalizeOptionalTime(m.Deadline),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type cycleOffsetModel struct {
	CycleID     int64     `gorm:"column:cycle_id;primaryKey"`
	CandidateID int64     `gorm:"column:candidate_id;primaryKey"`
	Offset      uint64    `gorm:"column:tally_offset"`
	CapturedAt  time.Time `gorm:"column:captured_at"`
}

func (cycleOffsetModel) TableName() string {
	return "cycle_offsets"
}

// Projection over the candidates table owned by vote-commit.
type candidateProjectionModel struct {
	ID     int64 `gorm:"column:id;primaryKey"`
	Active bool  `gorm:"column:active"`
}

func (candidateProjectionModel) TableName() string {
	return "candidates"
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

var _ ports.CycleStore = (*Repository)(nil)
var _ ports.BallotSource = (*Repository)(nil)

// SystemClock satisfies ports.Clock with wall time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
