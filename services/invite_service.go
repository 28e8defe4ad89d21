package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/playmatch/playmatch-server/models"
	"github.com/playmatch/playmatch-server/repositories"
)

const (
	inviteTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteTokenLength   = 8
	inviteMaxAttempts   = 3 // Попытки сгенерировать уникальный токен
)

type InviteService interface {
	// CreateInvite создаёт приглашение указанного класса для матча.
	// Вызывается один раз на класс при создании матча.
	CreateInvite(ctx context.Context, matchID uuid.UUID, inviteType models.InviteType) (*models.MatchInvite, error)
	// ResolveInvite — неаутентифицированная точка входа: ищет приглашение
	// по токену и проверяет срок действия.
	ResolveInvite(ctx context.Context, token string) (*models.MatchInvite, *models.Match, error)
	// BuildInviteURL собирает публичную ссылку приглашения.
	BuildInviteURL(token string) string
}

type inviteService struct {
	inviteRepo    repositories.InviteRepository
	matchRepo     repositories.MatchRepository
	inviteBaseURL string
}

func NewInviteService(
	inviteRepo repositories.InviteRepository,
	matchRepo repositories.MatchRepository,
	inviteBaseURL string,
) InviteService {
	return &inviteService{
		inviteRepo:    inviteRepo,
		matchRepo:     matchRepo,
		inviteBaseURL: strings.TrimRight(inviteBaseURL, "/"),
	}
}

// generateInviteToken возвращает 8 символов из алфавита A-Z0-9,
// полученных из криптографически стойкого источника.
func generateInviteToken() (string, error) {
	buf := make([]byte, inviteTokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	var b strings.Builder
	b.Grow(inviteTokenLength)
	for _, rb := range buf {
		b.WriteByte(inviteTokenAlphabet[int(rb)%len(inviteTokenAlphabet)])
	}
	return b.String(), nil
}

func (s *inviteService) CreateInvite(ctx context.Context, matchID uuid.UUID, inviteType models.InviteType) (*models.MatchInvite, error) {
	for attempt := 0; attempt < inviteMaxAttempts; attempt++ {
		token, err := generateInviteToken()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInviteGenerationFailed, err)
		}

		// Пространство 36^8 делает коллизии почти невозможными; проверка и
		// повтор существуют как страховка, а не из ожидания конфликтов.
		exists, err := s.inviteRepo.ExistsByToken(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("failed to check invite token uniqueness: %w", err)
		}
		if exists {
			continue
		}

		invite := &models.MatchInvite{
			Token:   token,
			MatchID: matchID,
			Type:    inviteType,
			// ExpiresAt не задаётся: срок действия приглашений не ограничен.
		}

		err = s.inviteRepo.Create(ctx, invite)
		if err == nil {
			return invite, nil
		}
		// Конкурентная вставка того же токена: пробуем следующий.
		if errors.Is(err, repositories.ErrInviteTokenConflict) {
			continue
		}
		if errors.Is(err, repositories.ErrInviteMatchInvalid) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrInviteGenerationFailed, inviteMaxAttempts)
}

func (s *inviteService) ResolveInvite(ctx context.Context, token string) (*models.MatchInvite, *models.Match, error) {
	invite, err := s.inviteRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return nil, nil, ErrInviteNotFound
		}
		return nil, nil, fmt.Errorf("failed to resolve invite: %w", err)
	}

	if invite.IsExpired(time.Now()) {
		return nil, nil, ErrInviteExpired
	}

	match, err := s.matchRepo.GetByID(ctx, invite.MatchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, nil, ErrMatchNotFound
		}
		return nil, nil, fmt.Errorf("failed to load match for invite: %w", err)
	}

	return invite, match, nil
}

func (s *inviteService) BuildInviteURL(token string) string {
	return s.inviteBaseURL + "/" + token
}
