package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/playmatch/playmatch-server/models"
	"github.com/playmatch/playmatch-server/repositories"
)

type LogBackoutInput struct {
	UserID int     `json:"user_id" validate:"required,gt=0"`
	Reason string  `json:"reason" validate:"required"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// BackoutService — капитанский журнал выбывших игроков. Не меняет состав
// матча: запись ведётся отдельно от статуса участника.
type BackoutService interface {
	LogBackout(ctx context.Context, matchID uuid.UUID, captainID int, input LogBackoutInput) (*models.BackoutLog, error)
}

type backoutService struct {
	backoutRepo     repositories.BackoutLogRepository
	matchRepo       repositories.MatchRepository
	participantRepo repositories.ParticipantRepository
	logger          *slog.Logger
}

func NewBackoutService(
	backoutRepo repositories.BackoutLogRepository,
	matchRepo repositories.MatchRepository,
	participantRepo repositories.ParticipantRepository,
	logger *slog.Logger,
) BackoutService {
	return &backoutService{
		backoutRepo:     backoutRepo,
		matchRepo:       matchRepo,
		participantRepo: participantRepo,
		logger:          logger,
	}
}

func (s *backoutService) LogBackout(ctx context.Context, matchID uuid.UUID, captainID int, input LogBackoutInput) (*models.BackoutLog, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	reason, err := models.ParseBackoutReason(input.Reason)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"Reason": err.Error()}}
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	if !match.IsCaptain(captainID) {
		return nil, ErrNotCaptain
	}

	if _, err := s.participantRepo.FindByMatchAndUser(ctx, matchID, input.UserID); err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}

	log := &models.BackoutLog{
		MatchID:  matchID,
		UserID:   input.UserID,
		Reason:   reason,
		Notes:    input.Notes,
		LoggedBy: captainID,
	}
	if err := s.backoutRepo.Create(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to create backout log: %w", err)
	}

	s.logger.Info("backout logged",
		slog.String("match_id", matchID.String()),
		slog.Int("user_id", input.UserID),
		slog.String("reason", string(reason)))
	return log, nil
}
