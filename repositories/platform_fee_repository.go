package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/playmatch/playmatch-server/models"
)

// PlatformFeeLogRepository — журнал платформенной комиссии, по строке на
// завершённый матч.
type PlatformFeeLogRepository interface {
	Create(ctx context.Context, log *models.PlatformFeeLog) error
	ExistsByMatch(ctx context.Context, matchID uuid.UUID) (bool, error)
}

type postgresPlatformFeeLogRepository struct {
	db *sql.DB
}

func NewPostgresPlatformFeeLogRepository(db *sql.DB) PlatformFeeLogRepository {
	return &postgresPlatformFeeLogRepository{db: db}
}

func (r *postgresPlatformFeeLogRepository) Create(ctx context.Context, log *models.PlatformFeeLog) error {
	query := `
		INSERT INTO platform_fee_logs (match_id, amount, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, log.MatchID, log.Amount, log.Status).
		Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create platform fee log: %w", err)
	}
	return nil
}

func (r *postgresPlatformFeeLogRepository) ExistsByMatch(ctx context.Context, matchID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM platform_fee_logs WHERE match_id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, matchID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check platform fee log: %w", err)
	}
	return exists, nil
}
