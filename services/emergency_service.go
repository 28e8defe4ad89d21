package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/playmatch/playmatch-server/live"
	"github.com/playmatch/playmatch-server/models"
	"github.com/playmatch/playmatch-server/repositories"
)

type EmergencyService interface {
	// RequestEmergencySlot создаёт заявку с окном блокировки. Пользователь
	// может держать не более одной REQUESTED-заявки во всей системе.
	RequestEmergencySlot(ctx context.Context, matchID uuid.UUID, userID int) (*models.EmergencyRequest, error)
	// ListPending возвращает капитану активные заявки матча. Заявки с
	// истёкшим окном тут же переводятся в EXPIRED и не показываются.
	ListPending(ctx context.Context, matchID uuid.UUID, captainID int) ([]*models.EmergencyRequest, error)
	// Approve превращает заявку в EMERGENCY-участника с зафиксированной
	// экстренной ставкой. Заявка должна принадлежать матчу из URL.
	// Истечение окна проверяется по времени, а не по статусу в БД:
	// фоновая чистка могла ещё не пройти.
	Approve(ctx context.Context, matchID uuid.UUID, requestID, captainID int) (*models.Participant, error)
	Reject(ctx context.Context, matchID uuid.UUID, requestID, captainID int) error
	// ExpireStaleLocks — фоновая чистка зависших REQUESTED-заявок.
	ExpireStaleLocks(ctx context.Context) (int64, error)
}

type emergencyService struct {
	emergencyRepo   repositories.EmergencyRequestRepository
	matchRepo       repositories.MatchRepository
	participantRepo repositories.ParticipantRepository
	broadcaster     LiveBroadcaster
	lockDuration    time.Duration
	logger          *slog.Logger
}

func NewEmergencyService(
	emergencyRepo repositories.EmergencyRequestRepository,
	matchRepo repositories.MatchRepository,
	participantRepo repositories.ParticipantRepository,
	broadcaster LiveBroadcaster,
	lockDuration time.Duration,
	logger *slog.Logger,
) EmergencyService {
	return &emergencyService{
		emergencyRepo:   emergencyRepo,
		matchRepo:       matchRepo,
		participantRepo: participantRepo,
		broadcaster:     broadcaster,
		lockDuration:    lockDuration,
		logger:          logger,
	}
}

func (s *emergencyService) RequestEmergencySlot(ctx context.Context, matchID uuid.UUID, userID int) (*models.EmergencyRequest, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	if !match.EmergencyEnabled {
		return nil, ErrEmergencyNotEnabled
	}
	if !match.Status.IsOpenForResponses() {
		return nil, ErrInvalidMatchStatus
	}

	exists, err := s.emergencyRepo.ExistsRequestedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active emergency request: %w", err)
	}
	if exists {
		return nil, ErrEmergencyAlreadyRequested
	}

	now := time.Now()
	request := &models.EmergencyRequest{
		MatchID:       matchID,
		UserID:        userID,
		Status:        models.EmergencyRequested,
		RequestedAt:   now,
		LockExpiresAt: now.Add(s.lockDuration),
	}
	if err := s.emergencyRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create emergency request: %w", err)
	}

	s.logger.Info("emergency slot requested",
		slog.String("match_id", matchID.String()),
		slog.Int("user_id", userID),
		slog.Time("lock_expires_at", request.LockExpiresAt))
	return request, nil
}

func (s *emergencyService) ListPending(ctx context.Context, matchID uuid.UUID, captainID int) ([]*models.EmergencyRequest, error) {
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

	requests, err := s.emergencyRepo.ListByMatchAndStatus(ctx, matchID, models.EmergencyRequested)
	if err != nil {
		return nil, fmt.Errorf("failed to list emergency requests: %w", err)
	}

	now := time.Now()
	active := make([]*models.EmergencyRequest, 0, len(requests))
	for _, req := range requests {
		if req.IsLockExpired(now) {
			if expireErr := s.emergencyRepo.SetExpired(ctx, req.ID); expireErr != nil {
				s.logger.Warn("failed to lazily expire emergency request",
					slog.Int("request_id", req.ID),
					slog.Any("error", expireErr))
			}
			continue
		}
		active = append(active, req)
	}
	return active, nil
}

func (s *emergencyService) Approve(ctx context.Context, matchID uuid.UUID, requestID, captainID int) (*models.Participant, error) {
	request, match, err := s.loadForDecision(ctx, matchID, requestID, captainID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if request.IsLockExpired(now) {
		if expireErr := s.emergencyRepo.SetExpired(ctx, request.ID); expireErr != nil {
			s.logger.Warn("failed to lazily expire emergency request",
				slog.Int("request_id", request.ID),
				slog.Any("error", expireErr))
		}
		return nil, ErrEmergencyLockExpired
	}

	existing, err := s.participantRepo.FindByMatchAndUser(ctx, match.ID, request.UserID)
	if err != nil && !errors.Is(err, repositories.ErrParticipantNotFound) {
		return nil, fmt.Errorf("failed to look up participant: %w", err)
	}
	if existing != nil {
		// Пользователь уже в матче (например, вступил по TEAM-ссылке,
		// пока заявка ждала решения). Заявку закрываем как обработанную.
		if rejectErr := s.emergencyRepo.SetRejected(ctx, request.ID, now); rejectErr != nil {
			return nil, fmt.Errorf("failed to close duplicate emergency request: %w", rejectErr)
		}
		return nil, ErrEmergencyAlreadyProcessed
	}

	// Сначала решение, потом строка участника: зависшая APPROVED-заявка
	// без участника видна в логе и не ре-одобряется повторным вызовом.
	if err := s.emergencyRepo.SetApproved(ctx, request.ID, now); err != nil {
		return nil, fmt.Errorf("failed to mark emergency request approved: %w", err)
	}

	participant := &models.Participant{
		MatchID:       match.ID,
		UserID:        request.UserID,
		Role:          models.RoleEmergency,
		Status:        models.ParticipantConfirmed,
		FeeAmount:     match.EmergencyParticipantFee(),
		PaymentStatus: models.PaymentUnpaid,
	}
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		if errors.Is(err, repositories.ErrParticipantConflict) {
			// Гонка с самостоятельным вступлением после предварительной
			// проверки: строка уже есть, заявка остаётся одобренной.
			return s.participantRepo.FindByMatchAndUser(ctx, match.ID, request.UserID)
		}
		s.logger.Error("approved emergency request without participant row",
			slog.Int("request_id", request.ID),
			slog.String("match_id", match.ID.String()),
			slog.Int("user_id", request.UserID),
			slog.Any("error", err))
		return nil, fmt.Errorf("failed to create emergency participant: %w", err)
	}

	s.logger.Info("emergency request approved",
		slog.Int("request_id", request.ID),
		slog.String("match_id", match.ID.String()),
		slog.Int("user_id", request.UserID),
		slog.Int("fee_amount", participant.FeeAmount))

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToMatch(match.ID.String(), live.Event{
			Type:    live.EventRosterUpdated,
			MatchID: match.ID.String(),
		})
	}
	return participant, nil
}

func (s *emergencyService) Reject(ctx context.Context, matchID uuid.UUID, requestID, captainID int) error {
	request, _, err := s.loadForDecision(ctx, matchID, requestID, captainID)
	if err != nil {
		return err
	}

	now := time.Now()
	if request.IsLockExpired(now) {
		if expireErr := s.emergencyRepo.SetExpired(ctx, request.ID); expireErr != nil {
			s.logger.Warn("failed to lazily expire emergency request",
				slog.Int("request_id", request.ID),
				slog.Any("error", expireErr))
		}
		return ErrEmergencyLockExpired
	}

	if err := s.emergencyRepo.SetRejected(ctx, request.ID, now); err != nil {
		return fmt.Errorf("failed to reject emergency request: %w", err)
	}

	s.logger.Info("emergency request rejected",
		slog.Int("request_id", request.ID),
		slog.Int("user_id", request.UserID))
	return nil
}

// loadForDecision достаёт заявку и матч, проверяет принадлежность заявки
// матчу из URL, право капитана и что заявка ещё не обработана.
func (s *emergencyService) loadForDecision(ctx context.Context, matchID uuid.UUID, requestID, captainID int) (*models.EmergencyRequest, *models.Match, error) {
	request, err := s.emergencyRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrEmergencyRequestNotFound) {
			return nil, nil, ErrEmergencyRequestNotFound
		}
		return nil, nil, fmt.Errorf("failed to get emergency request: %w", err)
	}
	// Заявка из чужого матча неотличима от несуществующей.
	if request.MatchID != matchID {
		return nil, nil, ErrEmergencyRequestNotFound
	}

	match, err := s.matchRepo.GetByID(ctx, request.MatchID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get match for emergency request: %w", err)
	}
	if !match.IsCaptain(captainID) {
		return nil, nil, ErrNotCaptain
	}
	if request.Status != models.EmergencyRequested {
		return nil, nil, ErrEmergencyAlreadyProcessed
	}
	return request, match, nil
}

func (s *emergencyService) ExpireStaleLocks(ctx context.Context) (int64, error) {
	expired, err := s.emergencyRepo.ExpireBefore(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		s.logger.Info("expired stale emergency requests", slog.Int64("count", expired))
	}
	return expired, nil
}
