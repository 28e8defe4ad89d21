package models

// BattingStats и BowlingStats — агрегаты статистики игрока.
// Заполняются вне API (импортом), сервис отдаёт их только на чтение.
type BattingStats struct {
	ID           int     `json:"id" db:"id"`
	PlayerID     int     `json:"player_id" db:"player_id"`
	Innings      int     `json:"innings" db:"innings"`
	RunsScored   int     `json:"runs_scored" db:"runs_scored"`
	AverageScore float64 `json:"average_score" db:"average_score"`
}

type BowlingStats struct {
	ID           int     `json:"id" db:"id"`
	PlayerID     int     `json:"player_id" db:"player_id"`
	Innings      int     `json:"innings" db:"innings"`
	WicketsTaken int     `json:"wickets_taken" db:"wickets_taken"`
	EconomyRate  float64 `json:"economy_rate" db:"economy_rate"`
}

// PlayerStats — сводка по одному игроку.
type PlayerStats struct {
	PlayerID   int            `json:"player_id"`
	PlayerName string         `json:"player_name"`
	Batting    []BattingStats `json:"batting_stats"`
	Bowling    []BowlingStats `json:"bowling_stats"`
}
