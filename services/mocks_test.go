package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/playmatch/playmatch-server/live"
	"github.com/playmatch/playmatch-server/models"
	"github.com/playmatch/playmatch-server/repositories"
)

// Тестовые заглушки репозиториев: поведение задаётся функциональными
// полями, незаданный метод возвращает нулевые значения.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockMatchRepo struct {
	CreateFunc          func(ctx context.Context, match *models.Match) error
	GetByIDFunc         func(ctx context.Context, id uuid.UUID) (*models.Match, error)
	UpdateStatusFunc    func(ctx context.Context, id uuid.UUID, status models.MatchStatus) error
	ListUserMatchesFunc func(ctx context.Context, userID int) ([]*models.Match, error)

	UpdateStatusCalls []models.MatchStatus
}

func (m *mockMatchRepo) Create(ctx context.Context, match *models.Match) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, match)
	}
	return nil
}

func (m *mockMatchRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrMatchNotFound
}

func (m *mockMatchRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.MatchStatus) error {
	m.UpdateStatusCalls = append(m.UpdateStatusCalls, status)
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockMatchRepo) ListUserMatches(ctx context.Context, userID int) ([]*models.Match, error) {
	if m.ListUserMatchesFunc != nil {
		return m.ListUserMatchesFunc(ctx, userID)
	}
	return nil, nil
}

type mockParticipantRepo struct {
	CreateFunc               func(ctx context.Context, p *models.Participant) error
	FindByMatchAndUserFunc   func(ctx context.Context, matchID uuid.UUID, userID int) (*models.Participant, error)
	UpdateStatusFunc         func(ctx context.Context, id int, status models.ParticipantStatus) error
	MarkPaymentFunc          func(ctx context.Context, id int, status models.PaymentStatus, mode models.PaymentMode) error
	CountConfirmedFunc       func(ctx context.Context, matchID uuid.UUID) (int, error)
	CountConfirmedByRoleFunc func(ctx context.Context, matchID uuid.UUID, role models.ParticipantRole) (int, error)
	ListByMatchFunc          func(ctx context.Context, matchID uuid.UUID, withUsers bool) ([]*models.Participant, error)

	CreateCalls       []*models.Participant
	UpdateStatusCalls []models.ParticipantStatus
	MarkPaymentCalls  []models.PaymentMode
}

func (m *mockParticipantRepo) Create(ctx context.Context, p *models.Participant) error {
	m.CreateCalls = append(m.CreateCalls, p)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	return nil
}

func (m *mockParticipantRepo) FindByMatchAndUser(ctx context.Context, matchID uuid.UUID, userID int) (*models.Participant, error) {
	if m.FindByMatchAndUserFunc != nil {
		return m.FindByMatchAndUserFunc(ctx, matchID, userID)
	}
	return nil, repositories.ErrParticipantNotFound
}

func (m *mockParticipantRepo) UpdateStatus(ctx context.Context, id int, status models.ParticipantStatus) error {
	m.UpdateStatusCalls = append(m.UpdateStatusCalls, status)
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockParticipantRepo) MarkPayment(ctx context.Context, id int, status models.PaymentStatus, mode models.PaymentMode) error {
	m.MarkPaymentCalls = append(m.MarkPaymentCalls, mode)
	if m.MarkPaymentFunc != nil {
		return m.MarkPaymentFunc(ctx, id, status, mode)
	}
	return nil
}

func (m *mockParticipantRepo) CountConfirmed(ctx context.Context, matchID uuid.UUID) (int, error) {
	if m.CountConfirmedFunc != nil {
		return m.CountConfirmedFunc(ctx, matchID)
	}
	return 0, nil
}

func (m *mockParticipantRepo) CountConfirmedByRole(ctx context.Context, matchID uuid.UUID, role models.ParticipantRole) (int, error) {
	if m.CountConfirmedByRoleFunc != nil {
		return m.CountConfirmedByRoleFunc(ctx, matchID, role)
	}
	return 0, nil
}

func (m *mockParticipantRepo) ListByMatch(ctx context.Context, matchID uuid.UUID, withUsers bool) ([]*models.Participant, error) {
	if m.ListByMatchFunc != nil {
		return m.ListByMatchFunc(ctx, matchID, withUsers)
	}
	return nil, nil
}

type mockUnavailabilityRepo struct {
	CreateFunc func(ctx context.Context, u *models.Unavailability) error
	ExistsFunc func(ctx context.Context, matchID uuid.UUID, userID int) (bool, error)
	DeleteFunc func(ctx context.Context, matchID uuid.UUID, userID int) error

	CreateCalls int
	DeleteCalls int
}

func (m *mockUnavailabilityRepo) Create(ctx context.Context, u *models.Unavailability) error {
	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u)
	}
	return nil
}

func (m *mockUnavailabilityRepo) Exists(ctx context.Context, matchID uuid.UUID, userID int) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, matchID, userID)
	}
	return false, nil
}

func (m *mockUnavailabilityRepo) DeleteByMatchAndUser(ctx context.Context, matchID uuid.UUID, userID int) error {
	m.DeleteCalls++
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, matchID, userID)
	}
	return nil
}

type mockFeeLogRepo struct {
	CreateFunc        func(ctx context.Context, log *models.PlatformFeeLog) error
	ExistsByMatchFunc func(ctx context.Context, matchID uuid.UUID) (bool, error)

	CreateCalls []*models.PlatformFeeLog
}

func (m *mockFeeLogRepo) Create(ctx context.Context, log *models.PlatformFeeLog) error {
	m.CreateCalls = append(m.CreateCalls, log)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	return nil
}

func (m *mockFeeLogRepo) ExistsByMatch(ctx context.Context, matchID uuid.UUID) (bool, error) {
	if m.ExistsByMatchFunc != nil {
		return m.ExistsByMatchFunc(ctx, matchID)
	}
	return false, nil
}

type mockInviteRepo struct {
	CreateFunc        func(ctx context.Context, invite *models.MatchInvite) error
	GetByTokenFunc    func(ctx context.Context, token string) (*models.MatchInvite, error)
	ExistsByTokenFunc func(ctx context.Context, token string) (bool, error)
	ListByMatchFunc   func(ctx context.Context, matchID uuid.UUID) ([]*models.MatchInvite, error)

	CreateCalls []*models.MatchInvite
}

func (m *mockInviteRepo) Create(ctx context.Context, invite *models.MatchInvite) error {
	m.CreateCalls = append(m.CreateCalls, invite)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, invite)
	}
	return nil
}

func (m *mockInviteRepo) GetByToken(ctx context.Context, token string) (*models.MatchInvite, error) {
	if m.GetByTokenFunc != nil {
		return m.GetByTokenFunc(ctx, token)
	}
	return nil, repositories.ErrInviteNotFound
}

func (m *mockInviteRepo) ExistsByToken(ctx context.Context, token string) (bool, error) {
	if m.ExistsByTokenFunc != nil {
		return m.ExistsByTokenFunc(ctx, token)
	}
	return false, nil
}

func (m *mockInviteRepo) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]*models.MatchInvite, error) {
	if m.ListByMatchFunc != nil {
		return m.ListByMatchFunc(ctx, matchID)
	}
	return nil, nil
}

type mockEmergencyRepo struct {
	CreateFunc                func(ctx context.Context, req *models.EmergencyRequest) error
	GetByIDFunc               func(ctx context.Context, id int) (*models.EmergencyRequest, error)
	ExistsRequestedByUserFunc func(ctx context.Context, userID int) (bool, error)
	ListByMatchAndStatusFunc  func(ctx context.Context, matchID uuid.UUID, status models.EmergencyRequestStatus) ([]*models.EmergencyRequest, error)
	ExpireBeforeFunc          func(ctx context.Context, cutoff time.Time) (int64, error)

	CreateCalls      []*models.EmergencyRequest
	SetApprovedCalls []int
	SetRejectedCalls []int
	SetExpiredCalls  []int
}

func (m *mockEmergencyRepo) Create(ctx context.Context, req *models.EmergencyRequest) error {
	m.CreateCalls = append(m.CreateCalls, req)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return nil
}

func (m *mockEmergencyRepo) GetByID(ctx context.Context, id int) (*models.EmergencyRequest, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrEmergencyRequestNotFound
}

func (m *mockEmergencyRepo) ExistsRequestedByUser(ctx context.Context, userID int) (bool, error) {
	if m.ExistsRequestedByUserFunc != nil {
		return m.ExistsRequestedByUserFunc(ctx, userID)
	}
	return false, nil
}

func (m *mockEmergencyRepo) ListByMatchAndStatus(ctx context.Context, matchID uuid.UUID, status models.EmergencyRequestStatus) ([]*models.EmergencyRequest, error) {
	if m.ListByMatchAndStatusFunc != nil {
		return m.ListByMatchAndStatusFunc(ctx, matchID, status)
	}
	return nil, nil
}

func (m *mockEmergencyRepo) SetApproved(ctx context.Context, id int, at time.Time) error {
	m.SetApprovedCalls = append(m.SetApprovedCalls, id)
	return nil
}

func (m *mockEmergencyRepo) SetRejected(ctx context.Context, id int, at time.Time) error {
	m.SetRejectedCalls = append(m.SetRejectedCalls, id)
	return nil
}

func (m *mockEmergencyRepo) SetExpired(ctx context.Context, id int) error {
	m.SetExpiredCalls = append(m.SetExpiredCalls, id)
	return nil
}

func (m *mockEmergencyRepo) ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.ExpireBeforeFunc != nil {
		return m.ExpireBeforeFunc(ctx, cutoff)
	}
	return 0, nil
}

type mockUserRepo struct {
	CreateFunc        func(ctx context.Context, user *models.User) error
	GetByIDFunc       func(ctx context.Context, id int) (*models.User, error)
	GetByPhoneFunc    func(ctx context.Context, phoneNumber string) (*models.User, error)
	UpdateProfileFunc func(ctx context.Context, id int, name, area string) error

	CreateCalls []*models.User
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	m.CreateCalls = append(m.CreateCalls, user)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrUserNotFound
}

func (m *mockUserRepo) GetByPhone(ctx context.Context, phoneNumber string) (*models.User, error) {
	if m.GetByPhoneFunc != nil {
		return m.GetByPhoneFunc(ctx, phoneNumber)
	}
	return nil, repositories.ErrUserNotFound
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id int, name, area string) error {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, id, name, area)
	}
	return nil
}

type mockOtpRepo struct {
	CreateVerificationFunc  func(ctx context.Context, v *models.OtpVerification) error
	GetLatestUnverifiedFunc func(ctx context.Context, phoneNumber string) (*models.OtpVerification, error)
	GetRateLimitFunc        func(ctx context.Context, phoneNumber string) (*models.OtpRateLimit, error)

	CreateVerificationCalls []*models.OtpVerification
	IncrementAttemptsCalls  []int
	MarkVerifiedCalls       []int
	IncrementRateLimitCalls []string
	ResetRateLimitCalls     []string
}

func (m *mockOtpRepo) CreateVerification(ctx context.Context, v *models.OtpVerification) error {
	m.CreateVerificationCalls = append(m.CreateVerificationCalls, v)
	if m.CreateVerificationFunc != nil {
		return m.CreateVerificationFunc(ctx, v)
	}
	return nil
}

func (m *mockOtpRepo) GetLatestUnverified(ctx context.Context, phoneNumber string) (*models.OtpVerification, error) {
	if m.GetLatestUnverifiedFunc != nil {
		return m.GetLatestUnverifiedFunc(ctx, phoneNumber)
	}
	return nil, repositories.ErrOtpNotFound
}

func (m *mockOtpRepo) IncrementAttempts(ctx context.Context, id int) error {
	m.IncrementAttemptsCalls = append(m.IncrementAttemptsCalls, id)
	return nil
}

func (m *mockOtpRepo) MarkVerified(ctx context.Context, id int) error {
	m.MarkVerifiedCalls = append(m.MarkVerifiedCalls, id)
	return nil
}

func (m *mockOtpRepo) GetRateLimit(ctx context.Context, phoneNumber string) (*models.OtpRateLimit, error) {
	if m.GetRateLimitFunc != nil {
		return m.GetRateLimitFunc(ctx, phoneNumber)
	}
	return nil, nil
}

func (m *mockOtpRepo) IncrementRateLimit(ctx context.Context, phoneNumber string, now time.Time) error {
	m.IncrementRateLimitCalls = append(m.IncrementRateLimitCalls, phoneNumber)
	return nil
}

func (m *mockOtpRepo) ResetRateLimit(ctx context.Context, phoneNumber string, windowStart time.Time) error {
	m.ResetRateLimitCalls = append(m.ResetRateLimitCalls, phoneNumber)
	return nil
}

type mockSmsSender struct {
	SendOtpFunc func(ctx context.Context, phoneNumber, code string) error

	SentCodes []string
}

func (m *mockSmsSender) SendOtp(ctx context.Context, phoneNumber, code string) error {
	m.SentCodes = append(m.SentCodes, code)
	if m.SendOtpFunc != nil {
		return m.SendOtpFunc(ctx, phoneNumber, code)
	}
	return nil
}

type mockBroadcaster struct {
	Events []live.Event
}

func (m *mockBroadcaster) BroadcastToMatch(matchID string, event live.Event) {
	m.Events = append(m.Events, event)
}

type mockInviteService struct {
	CreateInviteFunc func(ctx context.Context, matchID uuid.UUID, inviteType models.InviteType) (*models.MatchInvite, error)
}

func (m *mockInviteService) CreateInvite(ctx context.Context, matchID uuid.UUID, inviteType models.InviteType) (*models.MatchInvite, error) {
	if m.CreateInviteFunc != nil {
		return m.CreateInviteFunc(ctx, matchID, inviteType)
	}
	return &models.MatchInvite{Token: "TESTTOKN", MatchID: matchID, Type: inviteType}, nil
}

func (m *mockInviteService) ResolveInvite(ctx context.Context, token string) (*models.MatchInvite, *models.Match, error) {
	return nil, nil, ErrInviteNotFound
}

func (m *mockInviteService) BuildInviteURL(token string) string {
	return "https://playmatch.app/invites/" + token
}
