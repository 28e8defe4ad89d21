package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EmergencyRequestStatus string

const (
	EmergencyRequested EmergencyRequestStatus = "REQUESTED"
	EmergencyApproved  EmergencyRequestStatus = "APPROVED"
	EmergencyRejected  EmergencyRequestStatus = "REJECTED"
	EmergencyExpired   EmergencyRequestStatus = "EXPIRED"
)

func ParseEmergencyRequestStatus(s string) (EmergencyRequestStatus, error) {
	switch EmergencyRequestStatus(s) {
	case EmergencyRequested, EmergencyApproved, EmergencyRejected, EmergencyExpired:
		return EmergencyRequestStatus(s), nil
	}
	return "", fmt.Errorf("unknown emergency request status: %q", s)
}

// EmergencyRequest — заявка на экстренный слот. Пользователь может держать
// не более одной заявки в статусе REQUESTED во всей системе.
type EmergencyRequest struct {
	ID            int                    `json:"id" db:"id"`
	MatchID       uuid.UUID              `json:"match_id" db:"match_id"`
	UserID        int                    `json:"user_id" db:"user_id"`
	Status        EmergencyRequestStatus `json:"status" db:"status"`
	RequestedAt   time.Time              `json:"requested_at" db:"requested_at"`
	LockExpiresAt time.Time              `json:"lock_expires_at" db:"lock_expires_at"`
	ApprovedAt    *time.Time             `json:"approved_at,omitempty" db:"approved_at"`
	RejectedAt    *time.Time             `json:"rejected_at,omitempty" db:"rejected_at"`
	CreatedAt     time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at" db:"updated_at"`
}

// IsLockExpired — ленивый критерий истечения: заявка всё ещё REQUESTED,
// но окно блокировки уже прошло.
func (r *EmergencyRequest) IsLockExpired(now time.Time) bool {
	return r.Status == EmergencyRequested && now.After(r.LockExpiresAt)
}
