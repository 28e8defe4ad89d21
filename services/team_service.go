package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/playmatch/playmatch-server/models"
	"github.com/playmatch/playmatch-server/repositories"
	"github.com/playmatch/playmatch-server/storage"
)

// logoExtensions — допустимые типы логотипа и расширения ключей.
var logoExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

var ErrUnsupportedLogoType = errors.New("unsupported logo content type")

type CreateTeamInput struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	City        *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

type UpdateTeamInput struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	City        *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

type AddTeamMemberInput struct {
	UserID int    `json:"user_id" validate:"required,gt=0"`
	Role   string `json:"role" validate:"required"`
}

type TeamService interface {
	// CreateTeam создаёт команду; создатель сразу становится ADMIN.
	CreateTeam(ctx context.Context, userID int, input CreateTeamInput) (*models.Team, error)
	// GetTeam возвращает активную команду с составом и ссылкой на логотип.
	GetTeam(ctx context.Context, teamID int) (*models.Team, error)
	UpdateTeam(ctx context.Context, teamID, userID int, input UpdateTeamInput) (*models.Team, error)
	// DeleteTeam — мягкое удаление: команда деактивируется, состав
	// очищается, логотип удаляется из хранилища по возможности.
	DeleteTeam(ctx context.Context, teamID, userID int) error
	SearchTeams(ctx context.Context, city, name string, limit, offset int) ([]*models.Team, error)

	AddMember(ctx context.Context, teamID, adminID int, input AddTeamMemberInput) (*models.TeamMember, error)
	RemoveMember(ctx context.Context, teamID, adminID, targetUserID int) error

	// UploadLogo заменяет логотип команды в объектном хранилище.
	UploadLogo(ctx context.Context, teamID, userID int, contentType string, file io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo repositories.TeamRepository
	userRepo repositories.UserRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
		uploader: uploader,
		logger:   logger,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, userID int, input CreateTeamInput) (*models.Team, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	team := &models.Team{
		Name:            input.Name,
		City:            input.City,
		Description:     input.Description,
		CreatedByUserID: userID,
		Active:          true,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	admin := &models.TeamMember{
		TeamID: team.ID,
		UserID: userID,
		Role:   models.TeamRoleAdmin,
	}
	if err := s.teamRepo.AddMember(ctx, admin); err != nil {
		return nil, fmt.Errorf("failed to add team creator as admin: %w", err)
	}
	team.Members = []models.TeamMember{*admin}

	s.logger.Info("team created",
		slog.Int("team_id", team.ID),
		slog.Int("created_by", userID))
	return team, nil
}

func (s *teamService) GetTeam(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	members, err := s.teamRepo.ListMembers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	team.Members = make([]models.TeamMember, 0, len(members))
	for _, m := range members {
		team.Members = append(team.Members, *m)
	}

	s.fillLogoURL(team)
	return team, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, teamID, userID int, input UpdateTeamInput) (*models.Team, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	team, err := s.requireAdmin(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}

	team.Name = input.Name
	team.City = input.City
	team.Description = input.Description
	if err := s.teamRepo.Update(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, fmt.Errorf("failed to update team: %w", err)
	}

	s.fillLogoURL(team)
	return team, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, teamID, userID int) error {
	team, err := s.requireAdmin(ctx, teamID, userID)
	if err != nil {
		return err
	}

	if err := s.teamRepo.SoftDelete(ctx, teamID); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}

	if team.LogoKey != nil && s.uploader != nil {
		if delErr := s.uploader.Delete(ctx, *team.LogoKey); delErr != nil {
			s.logger.Warn("failed to delete team logo from storage",
				slog.Int("team_id", teamID),
				slog.Any("error", delErr))
		}
	}

	s.logger.Info("team deleted", slog.Int("team_id", teamID))
	return nil
}

func (s *teamService) SearchTeams(ctx context.Context, city, name string, limit, offset int) ([]*models.Team, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	teams, err := s.teamRepo.Search(ctx, city, name, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search teams: %w", err)
	}
	for _, team := range teams {
		s.fillLogoURL(team)
	}
	return teams, nil
}

func (s *teamService) AddMember(ctx context.Context, teamID, adminID int, input AddTeamMemberInput) (*models.TeamMember, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	role, err := models.ParseTeamRole(input.Role)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"Role": err.Error()}}
	}

	if _, err := s.requireAdmin(ctx, teamID, adminID); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, input.UserID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	member := &models.TeamMember{
		TeamID: teamID,
		UserID: input.UserID,
		Role:   role,
	}
	if err := s.teamRepo.AddMember(ctx, member); err != nil {
		if errors.Is(err, repositories.ErrTeamMemberConflict) {
			return nil, ErrTeamMemberConflict
		}
		return nil, fmt.Errorf("failed to add team member: %w", err)
	}
	return member, nil
}

func (s *teamService) RemoveMember(ctx context.Context, teamID, adminID, targetUserID int) error {
	if _, err := s.requireAdmin(ctx, teamID, adminID); err != nil {
		return err
	}

	if err := s.teamRepo.RemoveMember(ctx, teamID, targetUserID); err != nil {
		if errors.Is(err, repositories.ErrTeamMemberNotFound) {
			return ErrTeamMemberNotFound
		}
		return fmt.Errorf("failed to remove team member: %w", err)
	}
	return nil
}

func (s *teamService) UploadLogo(ctx context.Context, teamID, userID int, contentType string, file io.Reader) (*models.Team, error) {
	ext, ok := logoExtensions[contentType]
	if !ok {
		return nil, ErrUnsupportedLogoType
	}

	team, err := s.requireAdmin(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, errors.New("file storage is not configured")
	}

	oldKey := team.LogoKey

	key := storage.TeamLogoKey(teamID, ext)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}

	if err := s.teamRepo.UpdateLogoKey(ctx, teamID, result.Key); err != nil {
		return nil, fmt.Errorf("failed to save team logo key: %w", err)
	}
	team.LogoKey = &result.Key

	if oldKey != nil && *oldKey != result.Key {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.Warn("failed to delete previous team logo",
				slog.Int("team_id", teamID),
				slog.Any("error", delErr))
		}
	}

	s.logger.Info("team logo uploaded",
		slog.Int("team_id", teamID),
		slog.String("key", result.Key))

	s.fillLogoURL(team)
	return team, nil
}

// requireAdmin загружает команду и проверяет, что пользователь — её ADMIN.
func (s *teamService) requireAdmin(ctx context.Context, teamID, userID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	member, err := s.teamRepo.GetMember(ctx, teamID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamMemberNotFound) {
			return nil, ErrTeamAdminForbidden
		}
		return nil, fmt.Errorf("failed to get team member: %w", err)
	}
	if member.Role != models.TeamRoleAdmin {
		return nil, ErrTeamAdminForbidden
	}
	return team, nil
}

func (s *teamService) fillLogoURL(team *models.Team) {
	if team.LogoKey == nil || s.uploader == nil {
		return
	}
	u := s.uploader.GetPublicURL(*team.LogoKey)
	if u != "" {
		team.LogoURL = &u
	}
}
