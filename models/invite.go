package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InviteType определяет, на какой трек ролей ведёт приглашение.
type InviteType string

const (
	InviteTypeTeam      InviteType = "TEAM"
	InviteTypeEmergency InviteType = "EMERGENCY"
)

func ParseInviteType(s string) (InviteType, error) {
	switch InviteType(s) {
	case InviteTypeTeam, InviteTypeEmergency:
		return InviteType(s), nil
	}
	return "", fmt.Errorf("unknown invite type: %q", s)
}

// MatchInvite — неизменяемая ссылка-приглашение на матч.
// Токен: 8 символов, A-Z0-9, глобально уникален.
type MatchInvite struct {
	ID        int        `json:"id" db:"id"`
	Token     string     `json:"token" db:"token"`
	MatchID   uuid.UUID  `json:"match_id" db:"match_id"`
	Type      InviteType `json:"type" db:"type"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

func (i *MatchInvite) IsExpired(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}
