package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ParticipantRole string

const (
	RoleTeam      ParticipantRole = "TEAM"
	RoleBackup    ParticipantRole = "BACKUP"
	RoleEmergency ParticipantRole = "EMERGENCY"
)

func ParseParticipantRole(s string) (ParticipantRole, error) {
	switch ParticipantRole(s) {
	case RoleTeam, RoleBackup, RoleEmergency:
		return ParticipantRole(s), nil
	}
	return "", fmt.Errorf("unknown participant role: %q", s)
}

type ParticipantStatus string

const (
	ParticipantConfirmed ParticipantStatus = "CONFIRMED"
	ParticipantBackedOut ParticipantStatus = "BACKED_OUT"
)

func ParseParticipantStatus(s string) (ParticipantStatus, error) {
	switch ParticipantStatus(s) {
	case ParticipantConfirmed, ParticipantBackedOut:
		return ParticipantStatus(s), nil
	}
	return "", fmt.Errorf("unknown participant status: %q", s)
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "UNPAID"
	PaymentPaid   PaymentStatus = "PAID"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentUnpaid, PaymentPaid:
		return PaymentStatus(s), nil
	}
	return "", fmt.Errorf("unknown payment status: %q", s)
}

type PaymentMode string

const (
	PaymentModeCash  PaymentMode = "CASH"
	PaymentModeUPI   PaymentMode = "UPI"
	PaymentModeOther PaymentMode = "OTHER"
)

func ParsePaymentMode(s string) (PaymentMode, error) {
	switch PaymentMode(s) {
	case PaymentModeCash, PaymentModeUPI, PaymentModeOther:
		return PaymentMode(s), nil
	}
	return "", fmt.Errorf("unknown payment mode: %q", s)
}

// Participant — строка реестра участников: одна на пару (match, user).
// FeeAmount фиксируется в момент вступления и не пересчитывается при
// последующих изменениях ставки матча.
type Participant struct {
	ID            int               `json:"id" db:"id"`
	MatchID       uuid.UUID         `json:"match_id" db:"match_id"`
	UserID        int               `json:"user_id" db:"user_id"`
	Role          ParticipantRole   `json:"role" db:"role"`
	Status        ParticipantStatus `json:"status" db:"status"`
	FeeAmount     int               `json:"fee_amount" db:"fee_amount"`
	PaymentStatus PaymentStatus     `json:"payment_status" db:"payment_status"`
	PaymentMode   *PaymentMode      `json:"payment_mode,omitempty" db:"payment_mode"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" db:"updated_at"`

	// Опционально подгружаемый пользователь (не мапится напрямую).
	User *User `json:"user,omitempty" db:"-"`
}
