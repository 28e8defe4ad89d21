package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/playmatch/playmatch-server/models"
	"github.com/playmatch/playmatch-server/repositories"
)

const (
	otpCodeLength = 6
	// bcrypt по умолчанию достаточно для шестизначного кода с коротким TTL.
	otpHashCost = bcrypt.DefaultCost

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// AuthConfig — параметры OTP-входа и выпуска токенов.
type AuthConfig struct {
	JWTSecret       []byte
	AccessTokenTTL  time.Duration // обычно 24h
	RefreshTokenTTL time.Duration // обычно 720h
	OTPExpiry       time.Duration // обычно 5m
	OTPMaxAttempts  int           // проверок кода до блокировки
	OTPRateWindow   time.Duration // скользящее окно запросов кода
	OTPMaxPerWindow int           // запросов кода в окне
}

type RequestOTPInput struct {
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
}

type VerifyOTPInput struct {
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
}

type UpdateProfileInput struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
	Area string `json:"area" validate:"max=100"`
}

// AuthResult — пользователь с парой токенов. RequiresProfile подсказывает
// клиенту, что профиль ещё не заполнен.
type AuthResult struct {
	User            *models.User `json:"user"`
	AccessToken     string       `json:"access_token"`
	RefreshToken    string       `json:"refresh_token"`
	RequiresProfile bool         `json:"requires_profile"`
}

type AuthService interface {
	// RequestOTP отправляет одноразовый код на номер. Хранится только
	// bcrypt-хеш кода; число запросов на номер ограничено окном.
	RequestOTP(ctx context.Context, input RequestOTPInput) error
	// VerifyOTP сверяет код и выпускает пару токенов. Первый успешный
	// вход регистрирует пользователя.
	VerifyOTP(ctx context.Context, input VerifyOTPInput) (*AuthResult, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*AuthResult, error)
	GetProfile(ctx context.Context, userID int) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error)
}

type authService struct {
	userRepo  repositories.UserRepository
	otpRepo   repositories.OtpRepository
	smsSender SmsSender
	cfg       AuthConfig
	logger    *slog.Logger
}

func NewAuthService(
	userRepo repositories.UserRepository,
	otpRepo repositories.OtpRepository,
	smsSender SmsSender,
	cfg AuthConfig,
	logger *slog.Logger,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		otpRepo:   otpRepo,
		smsSender: smsSender,
		cfg:       cfg,
		logger:    logger,
	}
}

// generateOTPCode возвращает шестизначный код из криптографически
// стойкого источника.
func generateOTPCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < otpCodeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpCodeLength, n), nil
}

func (s *authService) RequestOTP(ctx context.Context, input RequestOTPInput) error {
	if err := validateInput(input); err != nil {
		return err
	}

	now := time.Now()
	limit, err := s.otpRepo.GetRateLimit(ctx, input.PhoneNumber)
	if err != nil {
		return fmt.Errorf("failed to check otp rate limit: %w", err)
	}
	switch {
	case limit == nil || !limit.IsWithinWindow(now, s.cfg.OTPRateWindow):
		// Первый запрос номера или первое обращение в новом окне.
		if err := s.otpRepo.ResetRateLimit(ctx, input.PhoneNumber, now); err != nil {
			return fmt.Errorf("failed to reset otp rate limit: %w", err)
		}
	case limit.RequestCount >= s.cfg.OTPMaxPerWindow:
		return ErrOTPRateLimited
	default:
		if err := s.otpRepo.IncrementRateLimit(ctx, input.PhoneNumber, now); err != nil {
			return fmt.Errorf("failed to increment otp rate limit: %w", err)
		}
	}

	code, err := generateOTPCode()
	if err != nil {
		return fmt.Errorf("failed to generate otp code: %w", err)
	}
	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), otpHashCost)
	if err != nil {
		return fmt.Errorf("failed to hash otp code: %w", err)
	}

	verification := &models.OtpVerification{
		PhoneNumber: input.PhoneNumber,
		CodeHash:    string(codeHash),
		ExpiresAt:   now.Add(s.cfg.OTPExpiry),
	}
	if err := s.otpRepo.CreateVerification(ctx, verification); err != nil {
		return fmt.Errorf("failed to store otp verification: %w", err)
	}

	if err := s.smsSender.SendOtp(ctx, input.PhoneNumber, code); err != nil {
		return fmt.Errorf("failed to send otp: %w", err)
	}

	s.logger.Info("otp requested", slog.String("phone_number", input.PhoneNumber))
	return nil
}

func (s *authService) VerifyOTP(ctx context.Context, input VerifyOTPInput) (*AuthResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	verification, err := s.otpRepo.GetLatestUnverified(ctx, input.PhoneNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrOtpNotFound) {
			return nil, ErrInvalidOTP
		}
		return nil, fmt.Errorf("failed to load otp verification: %w", err)
	}

	now := time.Now()
	if verification.IsExpired(now) {
		return nil, ErrOTPExpired
	}
	if verification.Attempts >= s.cfg.OTPMaxAttempts {
		return nil, ErrOTPMaxAttempts
	}

	if err := bcrypt.CompareHashAndPassword([]byte(verification.CodeHash), []byte(input.Code)); err != nil {
		if incErr := s.otpRepo.IncrementAttempts(ctx, verification.ID); incErr != nil {
			return nil, fmt.Errorf("failed to record otp attempt: %w", incErr)
		}
		return nil, ErrInvalidOTP
	}

	if err := s.otpRepo.MarkVerified(ctx, verification.ID); err != nil {
		return nil, fmt.Errorf("failed to mark otp verified: %w", err)
	}

	user, err := s.userRepo.GetByPhone(ctx, input.PhoneNumber)
	if err != nil {
		if !errors.Is(err, repositories.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		user = &models.User{PhoneNumber: input.PhoneNumber}
		if createErr := s.userRepo.Create(ctx, user); createErr != nil {
			// Гонка двух одновременных верификаций одного номера.
			if errors.Is(createErr, repositories.ErrUserPhoneConflict) {
				user, err = s.userRepo.GetByPhone(ctx, input.PhoneNumber)
				if err != nil {
					return nil, fmt.Errorf("failed to load user after conflict: %w", err)
				}
			} else {
				return nil, fmt.Errorf("failed to register user: %w", createErr)
			}
		} else {
			s.logger.Info("user registered", slog.Int("user_id", user.ID))
		}
	}

	return s.issueTokens(user)
}

func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*AuthResult, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.cfg.JWTSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if tokenType, _ := claims["type"].(string); tokenType != tokenTypeRefresh {
		return nil, ErrInvalidToken
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, int(userIDFloat))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return s.issueTokens(user)
}

func (s *authService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, input.Name, input.Area); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.GetProfile(ctx, userID)
}

func (s *authService) issueTokens(user *models.User) (*AuthResult, error) {
	now := time.Now()

	accessClaims := jwt.MapClaims{
		"user_id": user.ID,
		"type":    tokenTypeAccess,
		"iat":     now.Unix(),
		"exp":     now.Add(s.cfg.AccessTokenTTL).Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(s.cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshClaims := jwt.MapClaims{
		"user_id": user.ID,
		"type":    tokenTypeRefresh,
		"iat":     now.Unix(),
		"exp":     now.Add(s.cfg.RefreshTokenTTL).Unix(),
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(s.cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &AuthResult{
		User:            user,
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		RequiresProfile: user.RequiresProfile(),
	}, nil
}
