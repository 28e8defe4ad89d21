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
	ErrInviteNotFound      = errors.New("invite not found")
	ErrInviteTokenConflict = errors.New("invite token conflict")
	ErrInviteMatchInvalid  = errors.New("invite match conflict or invalid")
)

// InviteRepository определяет интерфейс для работы с приглашениями.
// Приглашения неизменяемы после создания.
type InviteRepository interface {
	Create(ctx context.Context, invite *models.MatchInvite) error
	GetByToken(ctx context.Context, token string) (*models.MatchInvite, error)
	ExistsByToken(ctx context.Context, token string) (bool, error)
	ListByMatch(ctx context.Context, matchID uuid.UUID) ([]*models.MatchInvite, error)
}

type postgresInviteRepository struct {
	db *sql.DB
}

func NewPostgresInviteRepository(db *sql.DB) InviteRepository {
	return &postgresInviteRepository{db: db}
}

func (r *postgresInviteRepository) Create(ctx context.Context, invite *models.MatchInvite) error {
	query := `
		INSERT INTO match_invites (token, match_id, type, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		invite.Token,
		invite.MatchID,
		invite.Type,
		invite.ExpiresAt,
	).Scan(&invite.ID, &invite.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "match_invites_token_key" {
					return ErrInviteTokenConflict
				}
			case "23503": // foreign_key_violation
				if pqErr.Constraint == "match_invites_match_id_fkey" {
					return ErrInviteMatchInvalid
				}
			}
		}
		return fmt.Errorf("failed to create invite: %w", err)
	}
	return nil
}

func (r *postgresInviteRepository) GetByToken(ctx context.Context, token string) (*models.MatchInvite, error) {
	query := `
		SELECT id, token, match_id, type, expires_at, created_at
		FROM match_invites
		WHERE token = $1`

	invite := &models.MatchInvite{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&invite.ID,
		&invite.Token,
		&invite.MatchID,
		&invite.Type,
		&invite.ExpiresAt,
		&invite.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to find invite: %w", err)
	}

	// Проверка истечения срока — ответственность сервисного слоя.
	return invite, nil
}

func (r *postgresInviteRepository) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]*models.MatchInvite, error) {
	query := `
		SELECT id, token, match_id, type, expires_at, created_at
		FROM match_invites
		WHERE match_id = $1
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list match invites: %w", err)
	}
	defer rows.Close()

	invites := make([]*models.MatchInvite, 0)
	for rows.Next() {
		invite := &models.MatchInvite{}
		if scanErr := rows.Scan(
			&invite.ID,
			&invite.Token,
			&invite.MatchID,
			&invite.Type,
			&invite.ExpiresAt,
			&invite.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		invites = append(invites, invite)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return invites, nil
}

func (r *postgresInviteRepository) ExistsByToken(ctx context.Context, token string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM match_invites WHERE token = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, token).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check invite token: %w", err)
	}
	return exists, nil
}
