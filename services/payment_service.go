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

// PaymentTracking — читающая проекция над реестром участников.
// Не хранится: считается из строк на каждый запрос.
type PaymentTracking struct {
	TotalPlayers   int                   `json:"total_players"`
	PaidCount      int                   `json:"paid_count"`
	UnpaidCount    int                   `json:"unpaid_count"`
	TotalCollected int                   `json:"total_collected"`
	TotalPending   int                   `json:"total_pending"`
	Players        []*models.Participant `json:"players"`
}

type MarkPaymentInput struct {
	TargetUserID int    `json:"target_user_id" validate:"required,gt=0"`
	PaymentMode  string `json:"payment_mode" validate:"required"`
}

type PaymentService interface {
	// MarkPayment — ручная отметка оплаты капитаном. Повторная отметка
	// уже оплаченной строки перезаписывает способ оплаты, это не ошибка.
	MarkPayment(ctx context.Context, matchID uuid.UUID, captainID int, input MarkPaymentInput) (*models.Participant, error)
	// GetPaymentTracking возвращает сводку по оплатам: капитан видит всех,
	// обычный участник — только собственную строку. Фильтр по статусу
	// применяется до подсчёта: агрегаты считаются по отфильтрованным
	// строкам.
	GetPaymentTracking(ctx context.Context, matchID uuid.UUID, userID int, filter *models.PaymentStatus) (*PaymentTracking, error)
}

type paymentService struct {
	matchRepo       repositories.MatchRepository
	participantRepo repositories.ParticipantRepository
	logger          *slog.Logger
}

func NewPaymentService(
	matchRepo repositories.MatchRepository,
	participantRepo repositories.ParticipantRepository,
	logger *slog.Logger,
) PaymentService {
	return &paymentService{
		matchRepo:       matchRepo,
		participantRepo: participantRepo,
		logger:          logger,
	}
}

func (s *paymentService) MarkPayment(ctx context.Context, matchID uuid.UUID, captainID int, input MarkPaymentInput) (*models.Participant, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	mode, err := models.ParsePaymentMode(input.PaymentMode)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"PaymentMode": err.Error()}}
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

	participant, err := s.participantRepo.FindByMatchAndUser(ctx, matchID, input.TargetUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}

	if participant.PaymentStatus == models.PaymentPaid {
		s.logger.Warn("re-marking already paid participant",
			slog.String("match_id", matchID.String()),
			slog.Int("user_id", input.TargetUserID),
			slog.String("new_mode", string(mode)))
	}

	if err := s.participantRepo.MarkPayment(ctx, participant.ID, models.PaymentPaid, mode); err != nil {
		return nil, fmt.Errorf("failed to mark payment: %w", err)
	}
	participant.PaymentStatus = models.PaymentPaid
	participant.PaymentMode = &mode

	s.logger.Info("payment marked",
		slog.String("match_id", matchID.String()),
		slog.Int("user_id", input.TargetUserID),
		slog.String("mode", string(mode)),
		slog.Int("fee_amount", participant.FeeAmount))
	return participant, nil
}

func (s *paymentService) GetPaymentTracking(ctx context.Context, matchID uuid.UUID, userID int, filter *models.PaymentStatus) (*PaymentTracking, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	var visible []*models.Participant
	if match.IsCaptain(userID) {
		visible, err = s.participantRepo.ListByMatch(ctx, matchID, true)
		if err != nil {
			return nil, fmt.Errorf("failed to list participants: %w", err)
		}
	} else {
		own, findErr := s.participantRepo.FindByMatchAndUser(ctx, matchID, userID)
		if findErr != nil {
			if errors.Is(findErr, repositories.ErrParticipantNotFound) {
				return nil, ErrParticipantNotFound
			}
			return nil, fmt.Errorf("failed to find participant: %w", findErr)
		}
		visible = []*models.Participant{own}
	}

	tracking := &PaymentTracking{Players: make([]*models.Participant, 0, len(visible))}
	for _, p := range visible {
		if filter != nil && p.PaymentStatus != *filter {
			continue
		}
		tracking.Players = append(tracking.Players, p)
		tracking.TotalPlayers++
		if p.PaymentStatus == models.PaymentPaid {
			tracking.PaidCount++
			tracking.TotalCollected += p.FeeAmount
		} else {
			tracking.UnpaidCount++
			tracking.TotalPending += p.FeeAmount
		}
	}
	return tracking, nil
}
