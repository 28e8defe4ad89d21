package models

import (
	"time"

	"github.com/google/uuid"
)

// PlatformFeeLog — одна строка на завершённый матч с фиксированной
// платформенной комиссией. Вставка идемпотентна на уровне сервиса.
type PlatformFeeLog struct {
	ID        int       `json:"id" db:"id"`
	MatchID   uuid.UUID `json:"match_id" db:"match_id"`
	Amount    int       `json:"amount" db:"amount"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

const PlatformFeeRecorded = "RECORDED"
