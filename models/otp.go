package models

import "time"

// OtpVerification — выданный одноразовый код. Сам код хранится только
// в виде bcrypt-хеша.
type OtpVerification struct {
	ID          int       `json:"id" db:"id"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	CodeHash    string    `json:"-" db:"code_hash"`
	Attempts    int       `json:"attempts" db:"attempts"`
	Verified    bool      `json:"verified" db:"verified"`
	ExpiresAt   time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

func (o *OtpVerification) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// OtpRateLimit — счётчик запросов OTP на номер за скользящее окно.
// Хранится в БД, а не в памяти процесса, чтобы переживать рестарты.
type OtpRateLimit struct {
	ID           int       `json:"id" db:"id"`
	PhoneNumber  string    `json:"phone_number" db:"phone_number"`
	RequestCount int       `json:"request_count" db:"request_count"`
	WindowStart  time.Time `json:"window_start" db:"window_start"`
}

func (r *OtpRateLimit) IsWithinWindow(now time.Time, window time.Duration) bool {
	return now.Before(r.WindowStart.Add(window))
}
