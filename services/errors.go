package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrMatchNotFound            = errors.New("match not found")
	ErrInviteNotFound           = errors.New("invite not found")
	ErrEmergencyRequestNotFound = errors.New("emergency request not found")
	ErrParticipantNotFound      = errors.New("participant not found")
	ErrUserNotFound             = errors.New("user not found")
	ErrTeamNotFound             = errors.New("team not found")
	ErrTeamMemberNotFound       = errors.New("team member not found")
	ErrPlayerNotFound           = errors.New("player not found")

	// Конфликты и нарушения состояния
	ErrMatchFull                 = errors.New("match is full")
	ErrMatchAlreadyCompleted     = errors.New("match is already completed")
	ErrInvalidMatchStatus        = errors.New("invalid match status for this operation")
	ErrEmergencyNotEnabled       = errors.New("emergency requests not enabled for this match")
	ErrEmergencyAlreadyRequested = errors.New("user already has an active emergency request")
	ErrEmergencyAlreadyProcessed = errors.New("emergency request already processed")
	ErrEmergencyLockExpired      = errors.New("emergency request lock has expired")
	ErrTeamNameConflict          = errors.New("team name is already in use")
	ErrTeamMemberConflict        = errors.New("user is already a member of this team")

	// Аутентификация и авторизация
	ErrNotCaptain         = errors.New("only the match captain can perform this action")
	ErrTeamAdminForbidden = errors.New("only a team admin can perform this action")
	ErrInvalidToken       = errors.New("invalid or expired token")

	// OTP
	ErrInvalidOTP         = errors.New("invalid otp code")
	ErrOTPExpired         = errors.New("otp has expired")
	ErrOTPMaxAttempts     = errors.New("maximum otp attempts exceeded")
	ErrOTPRateLimited     = errors.New("otp rate limit exceeded")
	ErrInvalidPhoneNumber = errors.New("invalid phone number format")

	// Истечение срока и генерация
	ErrInviteExpired          = errors.New("invite has expired")
	ErrInviteGenerationFailed = errors.New("failed to generate unique invite token")
	ErrValidationFailed       = errors.New("validation failed")
)
