package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/playmatch/playmatch-server/models"
)

var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamNameConflict   = errors.New("team name is already in use")
	ErrTeamMemberNotFound = errors.New("team member not found")
	ErrTeamMemberConflict = errors.New("user is already a member of this team")
)

// TeamRepository — постоянные команды и их составы.
type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	// GetByID возвращает только активную команду.
	GetByID(ctx context.Context, id int) (*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	UpdateLogoKey(ctx context.Context, id int, logoKey string) error
	// SoftDelete снимает флаг active и удаляет состав.
	SoftDelete(ctx context.Context, id int) error
	Search(ctx context.Context, city, name string, limit, offset int) ([]*models.Team, error)

	AddMember(ctx context.Context, member *models.TeamMember) error
	GetMember(ctx context.Context, teamID, userID int) (*models.TeamMember, error)
	RemoveMember(ctx context.Context, teamID, userID int) error
	ListMembers(ctx context.Context, teamID int) ([]*models.TeamMember, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (name, city, description, created_by_user_id, active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		team.Name,
		team.City,
		team.Description,
		team.CreatedByUserID,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && pqErr.Constraint == "teams_name_key" {
				return ErrTeamNameConflict
			}
		}
		return fmt.Errorf("failed to create team: %w", err)
	}
	team.Active = true
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, name, city, description, logo_key, created_by_user_id, active, created_at, updated_at
		FROM teams
		WHERE id = $1 AND active = TRUE`

	team := &models.Team{}
	err := r.scanTeam(r.db.QueryRowContext(ctx, query, id), team)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `
		UPDATE teams
		SET name = $1, city = $2, description = $3, updated_at = NOW()
		WHERE id = $4 AND active = TRUE`

	result, err := r.db.ExecContext(ctx, query, team.Name, team.City, team.Description, team.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && pqErr.Constraint == "teams_name_key" {
				return ErrTeamNameConflict
			}
		}
		return fmt.Errorf("failed to update team: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, id int, logoKey string) error {
	query := `UPDATE teams SET logo_key = $1, updated_at = NOW() WHERE id = $2 AND active = TRUE`
	result, err := r.db.ExecContext(ctx, query, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update team logo: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) SoftDelete(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin team delete: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM team_members WHERE team_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete team members: %w", err)
	}

	result, err := tx.ExecContext(ctx, `UPDATE teams SET active = FALSE, updated_at = NOW() WHERE id = $1 AND active = TRUE`, id)
	if err != nil {
		return fmt.Errorf("failed to soft delete team: %w", err)
	}
	if err = checkAffectedRows(result, ErrTeamNotFound); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *postgresTeamRepository) Search(ctx context.Context, city, name string, limit, offset int) ([]*models.Team, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, name, city, description, logo_key, created_by_user_id, active, created_at, updated_at
		FROM teams
		WHERE active = TRUE`)

	args := make([]interface{}, 0, 4)
	if city != "" {
		args = append(args, city)
		queryBuilder.WriteString(fmt.Sprintf(" AND city ILIKE $%d", len(args)))
	}
	if name != "" {
		args = append(args, "%"+name+"%")
		queryBuilder.WriteString(fmt.Sprintf(" AND name ILIKE $%d", len(args)))
	}
	args = append(args, limit)
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args)))
	args = append(args, offset)
	queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search teams: %w", err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team := &models.Team{}
		if scanErr := r.scanTeam(rows, team); scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, team)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *postgresTeamRepository) AddMember(ctx context.Context, member *models.TeamMember) error {
	query := `
		INSERT INTO team_members (team_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, member.TeamID, member.UserID, member.Role).
		Scan(&member.ID, &member.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && pqErr.Constraint == "uq_team_member" {
				return ErrTeamMemberConflict
			}
		}
		return fmt.Errorf("failed to add team member: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) GetMember(ctx context.Context, teamID, userID int) (*models.TeamMember, error) {
	query := `SELECT id, team_id, user_id, role, created_at FROM team_members WHERE team_id = $1 AND user_id = $2`

	member := &models.TeamMember{}
	err := r.db.QueryRowContext(ctx, query, teamID, userID).Scan(
		&member.ID,
		&member.TeamID,
		&member.UserID,
		&member.Role,
		&member.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamMemberNotFound
		}
		return nil, fmt.Errorf("failed to find team member: %w", err)
	}
	return member, nil
}

func (r *postgresTeamRepository) RemoveMember(ctx context.Context, teamID, userID int) error {
	query := `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}
	return checkAffectedRows(result, ErrTeamMemberNotFound)
}

func (r *postgresTeamRepository) ListMembers(ctx context.Context, teamID int) ([]*models.TeamMember, error) {
	query := `
		SELECT tm.id, tm.team_id, tm.user_id, tm.role, tm.created_at,
		       u.id, u.phone_number, u.name, u.area, u.created_at, u.updated_at
		FROM team_members tm
		JOIN users u ON u.id = tm.user_id
		WHERE tm.team_id = $1
		ORDER BY tm.created_at`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer rows.Close()

	members := make([]*models.TeamMember, 0)
	for rows.Next() {
		member := &models.TeamMember{}
		user := &models.User{}
		if scanErr := rows.Scan(
			&member.ID, &member.TeamID, &member.UserID, &member.Role, &member.CreatedAt,
			&user.ID, &user.PhoneNumber, &user.Name, &user.Area, &user.CreatedAt, &user.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		member.User = user
		members = append(members, member)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *postgresTeamRepository) scanTeam(rowScanner interface {
	Scan(dest ...interface{}) error
}, t *models.Team) error {
	return rowScanner.Scan(
		&t.ID,
		&t.Name,
		&t.City,
		&t.Description,
		&t.LogoKey,
		&t.CreatedByUserID,
		&t.Active,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
}
