package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/playmatch/playmatch-server/models"
)

// BackoutLogRepository — журнал выбывших игроков, только добавление.
type BackoutLogRepository interface {
	Create(ctx context.Context, log *models.BackoutLog) error
}

type postgresBackoutLogRepository struct {
	db *sql.DB
}

func NewPostgresBackoutLogRepository(db *sql.DB) BackoutLogRepository {
	return &postgresBackoutLogRepository{db: db}
}

func (r *postgresBackoutLogRepository) Create(ctx context.Context, log *models.BackoutLog) error {
	query := `
		INSERT INTO backout_logs (match_id, user_id, reason, notes, logged_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		log.MatchID,
		log.UserID,
		log.Reason,
		log.Notes,
		log.LoggedBy,
	).Scan(&log.ID, &log.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" {
				return fmt.Errorf("backout log references missing match or user: %w", err)
			}
		}
		return fmt.Errorf("failed to create backout log: %w", err)
	}
	return nil
}
