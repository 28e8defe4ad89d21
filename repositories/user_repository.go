package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/playmatch/playmatch-server/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserPhoneConflict = errors.New("phone number is already registered")
)

// UserRepository определяет интерфейс для работы с пользователями.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByPhone(ctx context.Context, phoneNumber string) (*models.User, error)
	UpdateProfile(ctx context.Context, id int, name, area string) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (phone_number, name, area)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.PhoneNumber,
		user.Name,
		user.Area,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && pqErr.Constraint == "users_phone_number_key" {
				return ErrUserPhoneConflict
			}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT id, phone_number, name, area, created_at, updated_at FROM users WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *postgresUserRepository) GetByPhone(ctx context.Context, phoneNumber string) (*models.User, error) {
	query := `SELECT id, phone_number, name, area, created_at, updated_at FROM users WHERE phone_number = $1`
	return r.findOne(ctx, query, phoneNumber)
}

func (r *postgresUserRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.PhoneNumber,
		&user.Name,
		&user.Area,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (r *postgresUserRepository) UpdateProfile(ctx context.Context, id int, name, area string) error {
	query := `UPDATE users SET name = $1, area = $2, updated_at = NOW() WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, name, area, id)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}
