package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type BackoutReason string

const (
	BackoutReasonInjury   BackoutReason = "INJURY"
	BackoutReasonTravel   BackoutReason = "TRAVEL"
	BackoutReasonWeather  BackoutReason = "WEATHER"
	BackoutReasonPersonal BackoutReason = "PERSONAL"
	BackoutReasonNoShow   BackoutReason = "NO_SHOW"
	BackoutReasonOther    BackoutReason = "OTHER"
)

func ParseBackoutReason(s string) (BackoutReason, error) {
	switch BackoutReason(s) {
	case BackoutReasonInjury, BackoutReasonTravel, BackoutReasonWeather,
		BackoutReasonPersonal, BackoutReasonNoShow, BackoutReasonOther:
		return BackoutReason(s), nil
	}
	return "", fmt.Errorf("unknown backout reason: %q", s)
}

// BackoutLog — журнальная запись капитана о выбывшем игроке. Только запись.
type BackoutLog struct {
	ID        int           `json:"id" db:"id"`
	MatchID   uuid.UUID     `json:"match_id" db:"match_id"`
	UserID    int           `json:"user_id" db:"user_id"`
	Reason    BackoutReason `json:"reason" db:"reason"`
	Notes     *string       `json:"notes,omitempty" db:"notes"`
	LoggedBy  int           `json:"logged_by" db:"logged_by"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}
