package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/playmatch/playmatch-server/models"
)

var ErrEmergencyRequestNotFound = errors.New("emergency request not found")

const emergencyColumns = `
	id, match_id, user_id, status, requested_at, lock_expires_at,
	approved_at, rejected_at, created_at, updated_at`

// EmergencyRequestRepository хранит заявки на экстренные слоты.
type EmergencyRequestRepository interface {
	Create(ctx context.Context, req *models.EmergencyRequest) error
	GetByID(ctx context.Context, id int) (*models.EmergencyRequest, error)
	// ExistsRequestedByUser проверяет глобальный (кросс-матчевый) инвариант:
	// не более одной активной заявки на пользователя.
	ExistsRequestedByUser(ctx context.Context, userID int) (bool, error)
	ListByMatchAndStatus(ctx context.Context, matchID uuid.UUID, status models.EmergencyRequestStatus) ([]*models.EmergencyRequest, error)
	SetApproved(ctx context.Context, id int, at time.Time) error
	SetRejected(ctx context.Context, id int, at time.Time) error
	SetExpired(ctx context.Context, id int) error
	// ExpireBefore переводит в EXPIRED все REQUESTED-заявки, чьё окно
	// блокировки истекло к моменту cutoff. Возвращает число затронутых строк.
	// Идемпотентна и безопасна при конкурентных действиях капитана.
	ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type postgresEmergencyRequestRepository struct {
	db *sql.DB
}

func NewPostgresEmergencyRequestRepository(db *sql.DB) EmergencyRequestRepository {
	return &postgresEmergencyRequestRepository{db: db}
}

func (r *postgresEmergencyRequestRepository) Create(ctx context.Context, req *models.EmergencyRequest) error {
	query := `
		INSERT INTO emergency_requests (match_id, user_id, status, requested_at, lock_expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		req.MatchID,
		req.UserID,
		req.Status,
		req.RequestedAt,
		req.LockExpiresAt,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create emergency request: %w", err)
	}
	return nil
}

func (r *postgresEmergencyRequestRepository) GetByID(ctx context.Context, id int) (*models.EmergencyRequest, error) {
	query := `SELECT` + emergencyColumns + ` FROM emergency_requests WHERE id = $1`

	req := &models.EmergencyRequest{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&req.ID,
		&req.MatchID,
		&req.UserID,
		&req.Status,
		&req.RequestedAt,
		&req.LockExpiresAt,
		&req.ApprovedAt,
		&req.RejectedAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEmergencyRequestNotFound
		}
		return nil, fmt.Errorf("failed to find emergency request: %w", err)
	}
	return req, nil
}

func (r *postgresEmergencyRequestRepository) ExistsRequestedByUser(ctx context.Context, userID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM emergency_requests WHERE user_id = $1 AND status = $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, models.EmergencyRequested).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active emergency request: %w", err)
	}
	return exists, nil
}

func (r *postgresEmergencyRequestRepository) ListByMatchAndStatus(ctx context.Context, matchID uuid.UUID, status models.EmergencyRequestStatus) ([]*models.EmergencyRequest, error) {
	query := `SELECT` + emergencyColumns + ` FROM emergency_requests WHERE match_id = $1 AND status = $2 ORDER BY requested_at`

	rows, err := r.db.QueryContext(ctx, query, matchID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list emergency requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*models.EmergencyRequest, 0)
	for rows.Next() {
		req := &models.EmergencyRequest{}
		if scanErr := rows.Scan(
			&req.ID,
			&req.MatchID,
			&req.UserID,
			&req.Status,
			&req.RequestedAt,
			&req.LockExpiresAt,
			&req.ApprovedAt,
			&req.RejectedAt,
			&req.CreatedAt,
			&req.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		requests = append(requests, req)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *postgresEmergencyRequestRepository) SetApproved(ctx context.Context, id int, at time.Time) error {
	query := `UPDATE emergency_requests SET status = $1, approved_at = $2, updated_at = NOW() WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, models.EmergencyApproved, at, id)
	if err != nil {
		return fmt.Errorf("failed to approve emergency request: %w", err)
	}
	return checkAffectedRows(result, ErrEmergencyRequestNotFound)
}

func (r *postgresEmergencyRequestRepository) SetRejected(ctx context.Context, id int, at time.Time) error {
	query := `UPDATE emergency_requests SET status = $1, rejected_at = $2, updated_at = NOW() WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, models.EmergencyRejected, at, id)
	if err != nil {
		return fmt.Errorf("failed to reject emergency request: %w", err)
	}
	return checkAffectedRows(result, ErrEmergencyRequestNotFound)
}

func (r *postgresEmergencyRequestRepository) SetExpired(ctx context.Context, id int) error {
	query := `UPDATE emergency_requests SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, models.EmergencyExpired, id)
	if err != nil {
		return fmt.Errorf("failed to expire emergency request: %w", err)
	}
	return checkAffectedRows(result, ErrEmergencyRequestNotFound)
}

func (r *postgresEmergencyRequestRepository) ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE emergency_requests
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND lock_expires_at <= $3`

	result, err := r.db.ExecContext(ctx, query, models.EmergencyExpired, models.EmergencyRequested, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale emergency requests: %w", err)
	}
	return result.RowsAffected()
}
