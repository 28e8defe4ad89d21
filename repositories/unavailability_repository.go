package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/playmatch/playmatch-server/models"
)

// UnavailabilityRepository хранит явные отказы (RSVP-no) по паре (match, user).
type UnavailabilityRepository interface {
	// Create вставляет запись, если её ещё нет; повторная вставка не ошибка.
	Create(ctx context.Context, u *models.Unavailability) error
	Exists(ctx context.Context, matchID uuid.UUID, userID int) (bool, error)
	// DeleteByMatchAndUser удаляет отказ (пользователь передумал и вступил).
	// Отсутствие строки не считается ошибкой.
	DeleteByMatchAndUser(ctx context.Context, matchID uuid.UUID, userID int) error
}

type postgresUnavailabilityRepository struct {
	db *sql.DB
}

func NewPostgresUnavailabilityRepository(db *sql.DB) UnavailabilityRepository {
	return &postgresUnavailabilityRepository{db: db}
}

func (r *postgresUnavailabilityRepository) Create(ctx context.Context, u *models.Unavailability) error {
	query := `
		INSERT INTO match_unavailability (match_id, user_id)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, u.MatchID, u.UserID).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && pqErr.Constraint == "uq_unavailability_match_user" {
				return nil // уже отмечен недоступным
			}
		}
		return fmt.Errorf("failed to create unavailability: %w", err)
	}
	return nil
}

func (r *postgresUnavailabilityRepository) Exists(ctx context.Context, matchID uuid.UUID, userID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM match_unavailability WHERE match_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, matchID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check unavailability: %w", err)
	}
	return exists, nil
}

func (r *postgresUnavailabilityRepository) DeleteByMatchAndUser(ctx context.Context, matchID uuid.UUID, userID int) error {
	query := `DELETE FROM match_unavailability WHERE match_id = $1 AND user_id = $2`
	if _, err := r.db.ExecContext(ctx, query, matchID, userID); err != nil {
		return fmt.Errorf("failed to delete unavailability: %w", err)
	}
	return nil
}
