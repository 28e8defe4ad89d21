package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/playmatch/playmatch-server/live"
	"github.com/playmatch/playmatch-server/models"
	"github.com/playmatch/playmatch-server/repositories"
	"github.com/playmatch/playmatch-server/utils"
)

// LiveBroadcaster уведомляет подписчиков матча об изменении состава.
// nil допустим: сервис работает и без live-канала.
type LiveBroadcaster interface {
	BroadcastToMatch(matchID string, event live.Event)
}

type CreateMatchInput struct {
	TeamName         string    `json:"team_name" validate:"required,min=2,max=100"`
	EventType        string    `json:"event_type" validate:"required"`
	BallCategory     string    `json:"ball_category" validate:"required"`
	BallVariant      string    `json:"ball_variant" validate:"required"`
	GroundMapsURL    string    `json:"ground_maps_url" validate:"required,url"`
	Overs            int       `json:"overs" validate:"required,min=1,max=50"`
	FeePerPerson     int       `json:"fee_per_person" validate:"gte=0"`
	EmergencyFee     *int      `json:"emergency_fee,omitempty" validate:"omitempty,gte=0"`
	RequiredPlayers  int       `json:"required_players" validate:"required,min=2,max=30"`
	BackupSlots      int       `json:"backup_slots" validate:"gte=0,max=30"`
	EmergencyEnabled bool      `json:"emergency_enabled"`
	StartTime        time.Time `json:"start_time" validate:"required"`
}

// CreateMatchResult — матч вместе со сгенерированными приглашениями.
type CreateMatchResult struct {
	Match   *models.Match         `json:"match"`
	Invites []*models.MatchInvite `json:"invites"`
}

// MatchDetails — матч глазами конкретного пользователя: состав,
// занятость слотов и собственная строка участника, если есть.
type MatchDetails struct {
	Match           *models.Match         `json:"match"`
	Participants    []*models.Participant `json:"participants"`
	ConfirmedTeam   int                   `json:"confirmed_team"`
	ConfirmedBackup int                   `json:"confirmed_backup"`
	ConfirmedTotal  int                   `json:"confirmed_total"`
	IsCaptain       bool                  `json:"is_captain"`
	MyParticipant   *models.Participant   `json:"my_participant,omitempty"`
	IsUnavailable   bool                  `json:"is_unavailable"`

	// Ссылки-приглашения возвращаются только капитану.
	TeamInviteURL      string `json:"team_invite_url,omitempty"`
	EmergencyInviteURL string `json:"emergency_invite_url,omitempty"`
}

// RoleCaptain — синтетическая роль для списка «мои игры»: капитан не
// обязан быть участником собственного матча.
const RoleCaptain = "CAPTAIN"

// MyGameEntry — матч в списке «мои игры»: роль пользователя, занятость
// и собственная строка участника со статусом оплаты.
type MyGameEntry struct {
	Match          *models.Match       `json:"match"`
	Role           string              `json:"role,omitempty"`
	ConfirmedTotal int                 `json:"confirmed_total"`
	MyParticipant  *models.Participant `json:"my_participant,omitempty"`
}

type MyGamesSummary struct {
	Total     int `json:"total"`
	Upcoming  int `json:"upcoming"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

type MyGamesResult struct {
	Games   []*MyGameEntry `json:"games"`
	Summary MyGamesSummary `json:"summary"`
}

type MatchService interface {
	// CreateMatch создаёт матч и приглашения: TEAM всегда,
	// EMERGENCY — только при включённом аварийном доборе.
	CreateMatch(ctx context.Context, captainID int, input CreateMatchInput) (*CreateMatchResult, error)
	GetMatch(ctx context.Context, matchID uuid.UUID, userID int) (*MatchDetails, error)
	// RespondYes — RSVP «иду». Роль выбирает аллокатор слотов;
	// повторный отклик и возврат после отказа идемпотентны.
	RespondYes(ctx context.Context, matchID uuid.UUID, userID int) (*models.Participant, error)
	// RespondNo — RSVP «не иду». Участника не удаляет, только помечает.
	RespondNo(ctx context.Context, matchID uuid.UUID, userID int) error
	// CompleteMatch переводит матч в COMPLETED и один раз фиксирует
	// платформенную комиссию. Повторный вызов — ошибка, но без
	// дублирования записи комиссии.
	CompleteMatch(ctx context.Context, matchID uuid.UUID, captainID int) error
	CancelMatch(ctx context.Context, matchID uuid.UUID, captainID int) error
	// GetMyGames — все матчи, где пользователь капитан или участник,
	// с ролью, занятостью и сводными счётчиками по статусам.
	GetMyGames(ctx context.Context, userID int) (*MyGamesResult, error)
}

type matchService struct {
	matchRepo       repositories.MatchRepository
	participantRepo repositories.ParticipantRepository
	unavailRepo     repositories.UnavailabilityRepository
	feeLogRepo      repositories.PlatformFeeLogRepository
	inviteRepo      repositories.InviteRepository
	inviteService   InviteService
	broadcaster     LiveBroadcaster
	platformFee     int
	logger          *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	participantRepo repositories.ParticipantRepository,
	unavailRepo repositories.UnavailabilityRepository,
	feeLogRepo repositories.PlatformFeeLogRepository,
	inviteRepo repositories.InviteRepository,
	inviteService InviteService,
	broadcaster LiveBroadcaster,
	platformFee int,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo:       matchRepo,
		participantRepo: participantRepo,
		unavailRepo:     unavailRepo,
		feeLogRepo:      feeLogRepo,
		inviteRepo:      inviteRepo,
		inviteService:   inviteService,
		broadcaster:     broadcaster,
		platformFee:     platformFee,
		logger:          logger,
	}
}

func (s *matchService) CreateMatch(ctx context.Context, captainID int, input CreateMatchInput) (*CreateMatchResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	eventType, err := models.ParseEventType(input.EventType)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"EventType": err.Error()}}
	}
	ballCategory, err := models.ParseBallCategory(input.BallCategory)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"BallCategory": err.Error()}}
	}
	ballVariant, err := models.ParseBallVariant(input.BallVariant)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"BallVariant": err.Error()}}
	}

	// Координаты best-effort: ссылка без "@lat,lng" оставляет их пустыми.
	lat, lng := utils.ParseMapsURL(input.GroundMapsURL)

	match := &models.Match{
		ID:               uuid.New(),
		CreatedBy:        captainID,
		TeamName:         input.TeamName,
		EventType:        eventType,
		BallCategory:     ballCategory,
		BallVariant:      ballVariant,
		GroundMapsURL:    input.GroundMapsURL,
		GroundLat:        lat,
		GroundLng:        lng,
		Overs:            input.Overs,
		FeePerPerson:     input.FeePerPerson,
		EmergencyFee:     input.EmergencyFee,
		RequiredPlayers:  input.RequiredPlayers,
		BackupSlots:      input.BackupSlots,
		EmergencyEnabled: input.EmergencyEnabled,
		Status:           models.MatchStatusCreated,
		StartTime:        input.StartTime,
	}

	if err := s.matchRepo.Create(ctx, match); err != nil {
		if errors.Is(err, repositories.ErrMatchCaptainInvalid) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	invites := make([]*models.MatchInvite, 0, 2)
	teamInvite, err := s.inviteService.CreateInvite(ctx, match.ID, models.InviteTypeTeam)
	if err != nil {
		return nil, err
	}
	invites = append(invites, teamInvite)

	if match.EmergencyEnabled {
		emergencyInvite, err := s.inviteService.CreateInvite(ctx, match.ID, models.InviteTypeEmergency)
		if err != nil {
			return nil, err
		}
		invites = append(invites, emergencyInvite)
	}

	s.logger.Info("match created",
		slog.String("match_id", match.ID.String()),
		slog.Int("captain_id", captainID),
		slog.Bool("emergency_enabled", match.EmergencyEnabled))

	return &CreateMatchResult{Match: match, Invites: invites}, nil
}

func (s *matchService) GetMatch(ctx context.Context, matchID uuid.UUID, userID int) (*MatchDetails, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	details := &MatchDetails{
		Match:     match,
		IsCaptain: match.IsCaptain(userID),
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		participants, pErr := s.participantRepo.ListByMatch(gCtx, matchID, true)
		if pErr != nil {
			return pErr
		}
		details.Participants = participants
		for _, p := range participants {
			if p.UserID == userID {
				details.MyParticipant = p
			}
		}
		return nil
	})
	g.Go(func() error {
		count, cErr := s.participantRepo.CountConfirmedByRole(gCtx, matchID, models.RoleTeam)
		if cErr != nil {
			return cErr
		}
		details.ConfirmedTeam = count
		return nil
	})
	g.Go(func() error {
		count, cErr := s.participantRepo.CountConfirmedByRole(gCtx, matchID, models.RoleBackup)
		if cErr != nil {
			return cErr
		}
		details.ConfirmedBackup = count
		return nil
	})
	g.Go(func() error {
		count, cErr := s.participantRepo.CountConfirmed(gCtx, matchID)
		if cErr != nil {
			return cErr
		}
		details.ConfirmedTotal = count
		return nil
	})
	g.Go(func() error {
		unavailable, uErr := s.unavailRepo.Exists(gCtx, matchID, userID)
		if uErr != nil {
			return uErr
		}
		details.IsUnavailable = unavailable
		return nil
	})

	if details.IsCaptain {
		g.Go(func() error {
			invites, iErr := s.inviteRepo.ListByMatch(gCtx, matchID)
			if iErr != nil {
				return iErr
			}
			for _, invite := range invites {
				switch invite.Type {
				case models.InviteTypeTeam:
					details.TeamInviteURL = s.inviteService.BuildInviteURL(invite.Token)
				case models.InviteTypeEmergency:
					details.EmergencyInviteURL = s.inviteService.BuildInviteURL(invite.Token)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load match details: %w", err)
	}

	return details, nil
}

// allocateRole решает, какой слот достаётся новому участнику, по одному
// общему счётчику подтверждённых: TEAM, пока занято меньше
// required_players, затем BACKUP до required_players + backup_slots,
// дальше матч полон. Роль освободившегося TEAM-игрока не возвращается
// в пул: новый отклик после отказа получает BACKUP.
func allocateRole(match *models.Match, confirmedCount int) (models.ParticipantRole, error) {
	if confirmedCount < match.RequiredPlayers {
		return models.RoleTeam, nil
	}
	if confirmedCount < match.RequiredPlayers+match.BackupSlots {
		return models.RoleBackup, nil
	}
	return "", ErrMatchFull
}

func (s *matchService) RespondYes(ctx context.Context, matchID uuid.UUID, userID int) (*models.Participant, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	if !match.Status.IsOpenForResponses() {
		return nil, ErrInvalidMatchStatus
	}

	existing, err := s.participantRepo.FindByMatchAndUser(ctx, matchID, userID)
	if err != nil && !errors.Is(err, repositories.ErrParticipantNotFound) {
		return nil, fmt.Errorf("failed to look up participant: %w", err)
	}
	if existing != nil {
		// Возврат после отказа восстанавливает исходную роль;
		// повторное «иду» — no-op.
		if existing.Status != models.ParticipantConfirmed {
			if err := s.participantRepo.UpdateStatus(ctx, existing.ID, models.ParticipantConfirmed); err != nil {
				return nil, fmt.Errorf("failed to re-confirm participant: %w", err)
			}
			existing.Status = models.ParticipantConfirmed
			s.notifyRoster(matchID)
		}
		if err := s.unavailRepo.DeleteByMatchAndUser(ctx, matchID, userID); err != nil {
			return nil, fmt.Errorf("failed to clear unavailability: %w", err)
		}
		return existing, nil
	}

	confirmedCount, err := s.participantRepo.CountConfirmed(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}

	role, err := allocateRole(match, confirmedCount)
	if err != nil {
		return nil, err
	}

	participant := &models.Participant{
		MatchID:       matchID,
		UserID:        userID,
		Role:          role,
		Status:        models.ParticipantConfirmed,
		FeeAmount:     match.FeePerPerson,
		PaymentStatus: models.PaymentUnpaid,
	}

	err = s.participantRepo.Create(ctx, participant)
	if err != nil {
		// Гонка двойного отклика одного пользователя: уникальный
		// констрейнт оставил одну строку, возвращаем её.
		if errors.Is(err, repositories.ErrParticipantConflict) {
			return s.participantRepo.FindByMatchAndUser(ctx, matchID, userID)
		}
		if errors.Is(err, repositories.ErrParticipantUserInvalid) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to register participant: %w", err)
	}

	if err := s.unavailRepo.DeleteByMatchAndUser(ctx, matchID, userID); err != nil {
		return nil, fmt.Errorf("failed to clear unavailability: %w", err)
	}

	s.logger.Info("participant joined match",
		slog.String("match_id", matchID.String()),
		slog.Int("user_id", userID),
		slog.String("role", string(role)))
	s.notifyRoster(matchID)

	return participant, nil
}

func (s *matchService) RespondNo(ctx context.Context, matchID uuid.UUID, userID int) error {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to get match: %w", err)
	}
	if !match.Status.IsOpenForResponses() {
		return ErrInvalidMatchStatus
	}

	existing, err := s.participantRepo.FindByMatchAndUser(ctx, matchID, userID)
	if err != nil && !errors.Is(err, repositories.ErrParticipantNotFound) {
		return fmt.Errorf("failed to look up participant: %w", err)
	}
	if existing != nil && existing.Status == models.ParticipantConfirmed {
		if err := s.participantRepo.UpdateStatus(ctx, existing.ID, models.ParticipantBackedOut); err != nil {
			return fmt.Errorf("failed to mark participant backed out: %w", err)
		}
		s.notifyRoster(matchID)
	}

	unavailability := &models.Unavailability{MatchID: matchID, UserID: userID}
	if err := s.unavailRepo.Create(ctx, unavailability); err != nil {
		return fmt.Errorf("failed to record unavailability: %w", err)
	}
	return nil
}

func (s *matchService) CompleteMatch(ctx context.Context, matchID uuid.UUID, captainID int) error {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to get match: %w", err)
	}
	if !match.IsCaptain(captainID) {
		return ErrNotCaptain
	}
	if match.Status == models.MatchStatusCompleted {
		return ErrMatchAlreadyCompleted
	}

	if err := s.matchRepo.UpdateStatus(ctx, matchID, models.MatchStatusCompleted); err != nil {
		return fmt.Errorf("failed to complete match: %w", err)
	}

	// Комиссия пишется не больше одного раза на матч, даже если
	// завершение по какой-то причине выполнилось повторно.
	exists, err := s.feeLogRepo.ExistsByMatch(ctx, matchID)
	if err != nil {
		return fmt.Errorf("failed to check platform fee log: %w", err)
	}
	if !exists {
		feeLog := &models.PlatformFeeLog{
			MatchID: matchID,
			Amount:  s.platformFee,
			Status:  models.PlatformFeeRecorded,
		}
		if err := s.feeLogRepo.Create(ctx, feeLog); err != nil {
			return fmt.Errorf("failed to record platform fee: %w", err)
		}
	}

	s.logger.Info("match completed",
		slog.String("match_id", matchID.String()),
		slog.Int("platform_fee", s.platformFee))
	return nil
}

func (s *matchService) CancelMatch(ctx context.Context, matchID uuid.UUID, captainID int) error {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to get match: %w", err)
	}
	if !match.IsCaptain(captainID) {
		return ErrNotCaptain
	}

	if err := s.matchRepo.UpdateStatus(ctx, matchID, models.MatchStatusCancelled); err != nil {
		return fmt.Errorf("failed to cancel match: %w", err)
	}

	s.logger.Info("match cancelled", slog.String("match_id", matchID.String()))
	s.notifyRoster(matchID)
	return nil
}

func (s *matchService) GetMyGames(ctx context.Context, userID int) (*MyGamesResult, error) {
	matches, err := s.matchRepo.ListUserMatches(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user matches: %w", err)
	}

	result := &MyGamesResult{Games: make([]*MyGameEntry, len(matches))}
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, match := range matches {
		g.Go(func() error {
			entry := &MyGameEntry{Match: match}

			count, cErr := s.participantRepo.CountConfirmed(gCtx, match.ID)
			if cErr != nil {
				return cErr
			}
			entry.ConfirmedTotal = count

			own, pErr := s.participantRepo.FindByMatchAndUser(gCtx, match.ID, userID)
			if pErr != nil && !errors.Is(pErr, repositories.ErrParticipantNotFound) {
				return pErr
			}
			if pErr == nil {
				entry.MyParticipant = own
			}

			switch {
			case match.IsCaptain(userID):
				entry.Role = RoleCaptain
			case entry.MyParticipant != nil:
				entry.Role = string(entry.MyParticipant.Role)
			}

			result.Games[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load my games: %w", err)
	}

	result.Summary.Total = len(matches)
	for _, match := range matches {
		switch match.Status {
		case models.MatchStatusCompleted:
			result.Summary.Completed++
		case models.MatchStatusCancelled:
			result.Summary.Cancelled++
		default:
			result.Summary.Upcoming++
		}
	}
	return result, nil
}

func (s *matchService) notifyRoster(matchID uuid.UUID) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToMatch(matchID.String(), live.Event{
		Type:    live.EventRosterUpdated,
		MatchID: matchID.String(),
	})
}
