package models

import (
	"fmt"
	"time"
)

type TeamRole string

const (
	TeamRoleAdmin  TeamRole = "ADMIN"
	TeamRoleMember TeamRole = "MEMBER"
)

func ParseTeamRole(s string) (TeamRole, error) {
	switch TeamRole(s) {
	case TeamRoleAdmin, TeamRoleMember:
		return TeamRole(s), nil
	}
	return "", fmt.Errorf("unknown team role: %q", s)
}

// Team — постоянная команда (вне привязки к конкретному матчу).
// Удаление мягкое, через флаг Active.
type Team struct {
	ID              int       `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	City            *string   `json:"city,omitempty" db:"city"`
	Description     *string   `json:"description,omitempty" db:"description"`
	LogoKey         *string   `json:"-" db:"logo_key"`
	LogoURL         *string   `json:"logo_url,omitempty" db:"-"`
	CreatedByUserID int       `json:"created_by_user_id" db:"created_by_user_id"`
	Active          bool      `json:"active" db:"active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`

	Members []TeamMember `json:"members,omitempty" db:"-"`
}

type TeamMember struct {
	ID        int       `json:"id" db:"id"`
	TeamID    int       `json:"team_id" db:"team_id"`
	UserID    int       `json:"user_id" db:"user_id"`
	Role      TeamRole  `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}
