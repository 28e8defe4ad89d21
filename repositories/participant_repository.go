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
	ErrParticipantNotFound     = errors.New("participant not found")
	ErrParticipantConflict     = errors.New("participant conflict: user already registered for this match")
	ErrParticipantUserInvalid  = errors.New("participant user conflict or invalid")
	ErrParticipantMatchInvalid = errors.New("participant match conflict or invalid")
)

const participantColumns = `
	id, match_id, user_id, role, status, fee_amount,
	payment_status, payment_mode, created_at, updated_at`

// ParticipantRepository — реестр участников: одна строка на пару (match, user).
// Уникальный констрейнт uq_participant_match_user превращает гонку двойной
// вставки в ErrParticipantConflict вместо тихого дублирования.
type ParticipantRepository interface {
	Create(ctx context.Context, p *models.Participant) error
	FindByMatchAndUser(ctx context.Context, matchID uuid.UUID, userID int) (*models.Participant, error)
	UpdateStatus(ctx context.Context, id int, status models.ParticipantStatus) error
	MarkPayment(ctx context.Context, id int, status models.PaymentStatus, mode models.PaymentMode) error
	CountConfirmed(ctx context.Context, matchID uuid.UUID) (int, error)
	CountConfirmedByRole(ctx context.Context, matchID uuid.UUID, role models.ParticipantRole) (int, error)
	// ListByMatch возвращает участников матча; при withUsers=true строки
	// обогащаются данными пользователя одним JOIN-запросом.
	ListByMatch(ctx context.Context, matchID uuid.UUID, withUsers bool) ([]*models.Participant, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	query := `
		INSERT INTO match_participants (match_id, user_id, role, status, fee_amount, payment_status, payment_mode)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		p.MatchID,
		p.UserID,
		p.Role,
		p.Status,
		p.FeeAmount,
		p.PaymentStatus,
		p.PaymentMode,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "uq_participant_match_user" {
					return ErrParticipantConflict
				}
			case "23503": // foreign_key_violation
				switch pqErr.Constraint {
				case "match_participants_user_id_fkey":
					return ErrParticipantUserInvalid
				case "match_participants_match_id_fkey":
					return ErrParticipantMatchInvalid
				}
			}
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (r *postgresParticipantRepository) FindByMatchAndUser(ctx context.Context, matchID uuid.UUID, userID int) (*models.Participant, error) {
	query := `SELECT` + participantColumns + ` FROM match_participants WHERE match_id = $1 AND user_id = $2`

	p := &models.Participant{}
	err := r.scanParticipant(r.db.QueryRowContext(ctx, query, matchID, userID), p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	return p, nil
}

func (r *postgresParticipantRepository) UpdateStatus(ctx context.Context, id int, status models.ParticipantStatus) error {
	query := `UPDATE match_participants SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update participant status: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) MarkPayment(ctx context.Context, id int, status models.PaymentStatus, mode models.PaymentMode) error {
	query := `UPDATE match_participants SET payment_status = $1, payment_mode = $2, updated_at = NOW() WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, mode, id)
	if err != nil {
		return fmt.Errorf("failed to mark participant payment: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) CountConfirmed(ctx context.Context, matchID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM match_participants WHERE match_id = $1 AND status = $2`
	var count int
	err := r.db.QueryRowContext(ctx, query, matchID, models.ParticipantConfirmed).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count confirmed participants: %w", err)
	}
	return count, nil
}

func (r *postgresParticipantRepository) CountConfirmedByRole(ctx context.Context, matchID uuid.UUID, role models.ParticipantRole) (int, error) {
	query := `SELECT COUNT(*) FROM match_participants WHERE match_id = $1 AND status = $2 AND role = $3`
	var count int
	err := r.db.QueryRowContext(ctx, query, matchID, models.ParticipantConfirmed, role).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count participants by role: %w", err)
	}
	return count, nil
}

func (r *postgresParticipantRepository) ListByMatch(ctx context.Context, matchID uuid.UUID, withUsers bool) ([]*models.Participant, error) {
	if !withUsers {
		query := `SELECT` + participantColumns + ` FROM match_participants WHERE match_id = $1 ORDER BY created_at`
		rows, err := r.db.QueryContext(ctx, query, matchID)
		if err != nil {
			return nil, fmt.Errorf("failed to list participants: %w", err)
		}
		defer rows.Close()
		return r.collect(rows, false)
	}

	query := `
		SELECT p.id, p.match_id, p.user_id, p.role, p.status, p.fee_amount,
		       p.payment_status, p.payment_mode, p.created_at, p.updated_at,
		       u.id, u.phone_number, u.name, u.area, u.created_at, u.updated_at
		FROM match_participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.match_id = $1
		ORDER BY p.created_at`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants with users: %w", err)
	}
	defer rows.Close()
	return r.collect(rows, true)
}

func (r *postgresParticipantRepository) collect(rows *sql.Rows, withUsers bool) ([]*models.Participant, error) {
	participants := make([]*models.Participant, 0)
	for rows.Next() {
		p := &models.Participant{}
		var err error
		if withUsers {
			user := &models.User{}
			err = rows.Scan(
				&p.ID, &p.MatchID, &p.UserID, &p.Role, &p.Status, &p.FeeAmount,
				&p.PaymentStatus, &p.PaymentMode, &p.CreatedAt, &p.UpdatedAt,
				&user.ID, &user.PhoneNumber, &user.Name, &user.Area, &user.CreatedAt, &user.UpdatedAt,
			)
			p.User = user
		} else {
			err = r.scanParticipant(rows, p)
		}
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *postgresParticipantRepository) scanParticipant(rowScanner interface {
	Scan(dest ...interface{}) error
}, p *models.Participant) error {
	return rowScanner.Scan(
		&p.ID,
		&p.MatchID,
		&p.UserID,
		&p.Role,
		&p.Status,
		&p.FeeAmount,
		&p.PaymentStatus,
		&p.PaymentMode,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}
