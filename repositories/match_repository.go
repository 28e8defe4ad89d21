package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/playmatch/playmatch-server/models"
)

var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchCaptainInvalid = errors.New("match captain conflict or invalid")
)

const matchColumns = `
	id, created_by, team_name, event_type, ball_category, ball_variant,
	ground_maps_url, ground_lat, ground_lng, overs, fee_per_person,
	emergency_fee, required_players, backup_slots, emergency_enabled,
	status, start_time, created_at, updated_at`

// MatchRepository определяет интерфейс для работы с матчами.
// Матчи физически не удаляются: жизненный цикл только через статус.
type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.MatchStatus) error
	// ListUserMatches возвращает все матчи, где пользователь — капитан
	// или участник, новые первыми.
	ListUserMatches(ctx context.Context, userID int) ([]*models.Match, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (
			id, created_by, team_name, event_type, ball_category, ball_variant,
			ground_maps_url, ground_lat, ground_lng, overs, fee_per_person,
			emergency_fee, required_players, backup_slots, emergency_enabled,
			status, start_time
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		match.ID,
		match.CreatedBy,
		match.TeamName,
		match.EventType,
		match.BallCategory,
		match.BallVariant,
		match.GroundMapsURL,
		match.GroundLat,
		match.GroundLng,
		match.Overs,
		match.FeePerPerson,
		match.EmergencyFee,
		match.RequiredPlayers,
		match.BackupSlots,
		match.EmergencyEnabled,
		match.Status,
		match.StartTime,
	).Scan(&match.CreatedAt, &match.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" && pqErr.Constraint == "matches_created_by_fkey" {
				return ErrMatchCaptainInvalid
			}
		}
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`

	match := &models.Match{}
	err := r.scanMatch(r.db.QueryRowContext(ctx, query, id), match)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to find match: %w", err)
	}
	return match, nil
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.MatchStatus) error {
	query := `UPDATE matches SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update match status: %w", err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) ListUserMatches(ctx context.Context, userID int) ([]*models.Match, error) {
	query := `
		SELECT m.id, m.created_by, m.team_name, m.event_type, m.ball_category, m.ball_variant,
		       m.ground_maps_url, m.ground_lat, m.ground_lng, m.overs, m.fee_per_person,
		       m.emergency_fee, m.required_players, m.backup_slots, m.emergency_enabled,
		       m.status, m.start_time, m.created_at, m.updated_at
		FROM matches m
		WHERE m.created_by = $1
		   OR EXISTS (
			SELECT 1 FROM match_participants p
			WHERE p.match_id = m.id AND p.user_id = $1
		   )
		ORDER BY m.start_time DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match := &models.Match{}
		if scanErr := r.scanMatch(rows, match); scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) scanMatch(rowScanner interface {
	Scan(dest ...interface{}) error
}, m *models.Match) error {
	return rowScanner.Scan(
		&m.ID,
		&m.CreatedBy,
		&m.TeamName,
		&m.EventType,
		&m.BallCategory,
		&m.BallVariant,
		&m.GroundMapsURL,
		&m.GroundLat,
		&m.GroundLng,
		&m.Overs,
		&m.FeePerPerson,
		&m.EmergencyFee,
		&m.RequiredPlayers,
		&m.BackupSlots,
		&m.EmergencyEnabled,
		&m.Status,
		&m.StartTime,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
}
