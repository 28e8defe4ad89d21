package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MatchStatus представляет статусы матча, соответствующие ENUM в БД.
type MatchStatus string

const (
	MatchStatusCreated   MatchStatus = "CREATED"
	MatchStatusActive    MatchStatus = "ACTIVE"
	MatchStatusCompleted MatchStatus = "COMPLETED"
	MatchStatusCancelled MatchStatus = "CANCELLED"
)

func ParseMatchStatus(s string) (MatchStatus, error) {
	switch MatchStatus(s) {
	case MatchStatusCreated, MatchStatusActive, MatchStatusCompleted, MatchStatusCancelled:
		return MatchStatus(s), nil
	}
	return "", fmt.Errorf("unknown match status: %q", s)
}

// IsOpenForResponses сообщает, принимает ли матч RSVP в текущем статусе.
func (s MatchStatus) IsOpenForResponses() bool {
	return s == MatchStatusCreated || s == MatchStatusActive
}

type EventType string

const (
	EventTypeTournament EventType = "TOURNAMENT"
	EventTypeLeague     EventType = "LEAGUE"
	EventTypeFriendly   EventType = "FRIENDLY"
)

func ParseEventType(s string) (EventType, error) {
	switch EventType(s) {
	case EventTypeTournament, EventTypeLeague, EventTypeFriendly:
		return EventType(s), nil
	}
	return "", fmt.Errorf("unknown event type: %q", s)
}

type BallCategory string

const (
	BallCategoryTennis  BallCategory = "TENNIS"
	BallCategoryLeather BallCategory = "LEATHER"
	BallCategoryOther   BallCategory = "OTHER"
)

func ParseBallCategory(s string) (BallCategory, error) {
	switch BallCategory(s) {
	case BallCategoryTennis, BallCategoryLeather, BallCategoryOther:
		return BallCategory(s), nil
	}
	return "", fmt.Errorf("unknown ball category: %q", s)
}

type BallVariant string

const (
	BallVariantLight BallVariant = "LIGHT"
	BallVariantHeavy BallVariant = "HEAVY"
	BallVariantHard  BallVariant = "HARD"
)

func ParseBallVariant(s string) (BallVariant, error) {
	switch BallVariant(s) {
	case BallVariantLight, BallVariantHeavy, BallVariantHard:
		return BallVariant(s), nil
	}
	return "", fmt.Errorf("unknown ball variant: %q", s)
}

// Match представляет матч. Капитан (CreatedBy) неизменяем после создания.
type Match struct {
	ID               uuid.UUID    `json:"id" db:"id"`
	CreatedBy        int          `json:"created_by" db:"created_by"`
	TeamName         string       `json:"team_name" db:"team_name"`
	EventType        EventType    `json:"event_type" db:"event_type"`
	BallCategory     BallCategory `json:"ball_category" db:"ball_category"`
	BallVariant      BallVariant  `json:"ball_variant" db:"ball_variant"`
	GroundMapsURL    string       `json:"ground_maps_url" db:"ground_maps_url"`
	GroundLat        *float64     `json:"ground_lat,omitempty" db:"ground_lat"`
	GroundLng        *float64     `json:"ground_lng,omitempty" db:"ground_lng"`
	Overs            int          `json:"overs" db:"overs"`
	FeePerPerson     int          `json:"fee_per_person" db:"fee_per_person"`
	EmergencyFee     *int         `json:"emergency_fee,omitempty" db:"emergency_fee"`
	RequiredPlayers  int          `json:"required_players" db:"required_players"`
	BackupSlots      int          `json:"backup_slots" db:"backup_slots"`
	EmergencyEnabled bool         `json:"emergency_enabled" db:"emergency_enabled"`
	Status           MatchStatus  `json:"status" db:"status"`
	StartTime        time.Time    `json:"start_time" db:"start_time"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
}

func (m *Match) IsCaptain(userID int) bool {
	return m.CreatedBy == userID
}

// EmergencyParticipantFee возвращает сумму, фиксируемую для EMERGENCY-участника:
// emergency_fee, если задана, иначе стандартная ставка.
func (m *Match) EmergencyParticipantFee() int {
	if m.EmergencyFee != nil {
		return *m.EmergencyFee
	}
	return m.FeePerPerson
}

// Unavailability фиксирует явный отказ пользователя от матча.
// Существует независимо от строки участника.
type Unavailability struct {
	ID        int       `json:"id" db:"id"`
	MatchID   uuid.UUID `json:"match_id" db:"match_id"`
	UserID    int       `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
