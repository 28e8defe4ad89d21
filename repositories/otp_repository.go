package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/playmatch/playmatch-server/models"
)

var ErrOtpNotFound = errors.New("otp verification not found")

// OtpRepository хранит выданные OTP-коды и счётчики rate limit по номеру.
type OtpRepository interface {
	CreateVerification(ctx context.Context, v *models.OtpVerification) error
	// GetLatestUnverified возвращает самый свежий непроверенный код номера.
	GetLatestUnverified(ctx context.Context, phoneNumber string) (*models.OtpVerification, error)
	IncrementAttempts(ctx context.Context, id int) error
	MarkVerified(ctx context.Context, id int) error

	GetRateLimit(ctx context.Context, phoneNumber string) (*models.OtpRateLimit, error)
	// IncrementRateLimit атомарно увеличивает счётчик текущего окна;
	// создаёт строку, если её нет.
	IncrementRateLimit(ctx context.Context, phoneNumber string, now time.Time) error
	ResetRateLimit(ctx context.Context, phoneNumber string, windowStart time.Time) error
}

type postgresOtpRepository struct {
	db *sql.DB
}

func NewPostgresOtpRepository(db *sql.DB) OtpRepository {
	return &postgresOtpRepository{db: db}
}

func (r *postgresOtpRepository) CreateVerification(ctx context.Context, v *models.OtpVerification) error {
	query := `
		INSERT INTO otp_verifications (phone_number, code_hash, attempts, verified, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		v.PhoneNumber,
		v.CodeHash,
		v.Attempts,
		v.Verified,
		v.ExpiresAt,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create otp verification: %w", err)
	}
	return nil
}

func (r *postgresOtpRepository) GetLatestUnverified(ctx context.Context, phoneNumber string) (*models.OtpVerification, error) {
	query := `
		SELECT id, phone_number, code_hash, attempts, verified, expires_at, created_at
		FROM otp_verifications
		WHERE phone_number = $1 AND verified = FALSE
		ORDER BY created_at DESC
		LIMIT 1`

	v := &models.OtpVerification{}
	err := r.db.QueryRowContext(ctx, query, phoneNumber).Scan(
		&v.ID,
		&v.PhoneNumber,
		&v.CodeHash,
		&v.Attempts,
		&v.Verified,
		&v.ExpiresAt,
		&v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOtpNotFound
		}
		return nil, fmt.Errorf("failed to find otp verification: %w", err)
	}
	return v, nil
}

func (r *postgresOtpRepository) IncrementAttempts(ctx context.Context, id int) error {
	query := `UPDATE otp_verifications SET attempts = attempts + 1 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment otp attempts: %w", err)
	}
	return checkAffectedRows(result, ErrOtpNotFound)
}

func (r *postgresOtpRepository) MarkVerified(ctx context.Context, id int) error {
	query := `UPDATE otp_verifications SET verified = TRUE WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark otp verified: %w", err)
	}
	return checkAffectedRows(result, ErrOtpNotFound)
}

func (r *postgresOtpRepository) GetRateLimit(ctx context.Context, phoneNumber string) (*models.OtpRateLimit, error) {
	query := `SELECT id, phone_number, request_count, window_start FROM otp_rate_limits WHERE phone_number = $1`

	rl := &models.OtpRateLimit{}
	err := r.db.QueryRowContext(ctx, query, phoneNumber).Scan(
		&rl.ID,
		&rl.PhoneNumber,
		&rl.RequestCount,
		&rl.WindowStart,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // отсутствие лимита — не ошибка
		}
		return nil, fmt.Errorf("failed to find otp rate limit: %w", err)
	}
	return rl, nil
}

func (r *postgresOtpRepository) IncrementRateLimit(ctx context.Context, phoneNumber string, now time.Time) error {
	// UPSERT по уникальному номеру: атомарный счётчик, переживающий рестарты.
	query := `
		INSERT INTO otp_rate_limits (phone_number, request_count, window_start)
		VALUES ($1, 1, $2)
		ON CONFLICT (phone_number)
		DO UPDATE SET request_count = otp_rate_limits.request_count + 1`

	if _, err := r.db.ExecContext(ctx, query, phoneNumber, now); err != nil {
		return fmt.Errorf("failed to increment otp rate limit: %w", err)
	}
	return nil
}

func (r *postgresOtpRepository) ResetRateLimit(ctx context.Context, phoneNumber string, windowStart time.Time) error {
	query := `
		INSERT INTO otp_rate_limits (phone_number, request_count, window_start)
		VALUES ($1, 1, $2)
		ON CONFLICT (phone_number)
		DO UPDATE SET request_count = 1, window_start = $2`

	if _, err := r.db.ExecContext(ctx, query, phoneNumber, windowStart); err != nil {
		return fmt.Errorf("failed to reset otp rate limit: %w", err)
	}
	return nil
}
