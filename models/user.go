package models

import "time"

// User — пользователь, идентифицируемый номером телефона (вход по OTP).
type User struct {
	ID          int       `json:"id" db:"id"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	Name        *string   `json:"name,omitempty" db:"name"`
	Area        *string   `json:"area,omitempty" db:"area"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// RequiresProfile сообщает, нужно ли пользователю ещё заполнить профиль.
func (u *User) RequiresProfile() bool {
	return u.Name == nil || *u.Name == ""
}
