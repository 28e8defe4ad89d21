package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/playmatch/playmatch-server/models"
)

// StatsRepository — статистика игроков, только чтение.
type StatsRepository interface {
	ListBattingByPlayer(ctx context.Context, playerID int) ([]models.BattingStats, error)
	ListBowlingByPlayer(ctx context.Context, playerID int) ([]models.BowlingStats, error)
	// ListAllPlayersStats собирает сводку по всем игрокам одним проходом
	// на каждую таблицу статистики.
	ListAllPlayersStats(ctx context.Context) ([]*models.PlayerStats, error)
}

type postgresStatsRepository struct {
	db *sql.DB
}

func NewPostgresStatsRepository(db *sql.DB) StatsRepository {
	return &postgresStatsRepository{db: db}
}

func (r *postgresStatsRepository) ListBattingByPlayer(ctx context.Context, playerID int) ([]models.BattingStats, error) {
	query := `
		SELECT id, player_id, innings, runs_scored, average_score
		FROM batting_stats
		WHERE player_id = $1`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list batting stats: %w", err)
	}
	defer rows.Close()

	stats := make([]models.BattingStats, 0)
	for rows.Next() {
		var s models.BattingStats
		if scanErr := rows.Scan(&s.ID, &s.PlayerID, &s.Innings, &s.RunsScored, &s.AverageScore); scanErr != nil {
			return nil, scanErr
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *postgresStatsRepository) ListBowlingByPlayer(ctx context.Context, playerID int) ([]models.BowlingStats, error) {
	query := `
		SELECT id, player_id, innings, wickets_taken, economy_rate
		FROM bowling_stats
		WHERE player_id = $1`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bowling stats: %w", err)
	}
	defer rows.Close()

	stats := make([]models.BowlingStats, 0)
	for rows.Next() {
		var s models.BowlingStats
		if scanErr := rows.Scan(&s.ID, &s.PlayerID, &s.Innings, &s.WicketsTaken, &s.EconomyRate); scanErr != nil {
			return nil, scanErr
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *postgresStatsRepository) ListAllPlayersStats(ctx context.Context) ([]*models.PlayerStats, error) {
	byPlayer := make(map[int]*models.PlayerStats)
	order := make([]int, 0)

	get := func(playerID int, name string) *models.PlayerStats {
		if ps, ok := byPlayer[playerID]; ok {
			return ps
		}
		ps := &models.PlayerStats{
			PlayerID:   playerID,
			PlayerName: name,
			Batting:    make([]models.BattingStats, 0),
			Bowling:    make([]models.BowlingStats, 0),
		}
		byPlayer[playerID] = ps
		order = append(order, playerID)
		return ps
	}

	battingQuery := `
		SELECT bs.id, bs.player_id, bs.innings, bs.runs_scored, bs.average_score, COALESCE(u.name, '')
		FROM batting_stats bs
		JOIN users u ON u.id = bs.player_id
		ORDER BY bs.player_id`

	rows, err := r.db.QueryContext(ctx, battingQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list all batting stats: %w", err)
	}
	for rows.Next() {
		var s models.BattingStats
		var name string
		if scanErr := rows.Scan(&s.ID, &s.PlayerID, &s.Innings, &s.RunsScored, &s.AverageScore, &name); scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		ps := get(s.PlayerID, name)
		ps.Batting = append(ps.Batting, s)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	bowlingQuery := `
		SELECT bs.id, bs.player_id, bs.innings, bs.wickets_taken, bs.economy_rate, COALESCE(u.name, '')
		FROM bowling_stats bs
		JOIN users u ON u.id = bs.player_id
		ORDER BY bs.player_id`

	rows, err = r.db.QueryContext(ctx, bowlingQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list all bowling stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s models.BowlingStats
		var name string
		if scanErr := rows.Scan(&s.ID, &s.PlayerID, &s.Innings, &s.WicketsTaken, &s.EconomyRate, &name); scanErr != nil {
			return nil, scanErr
		}
		ps := get(s.PlayerID, name)
		ps.Bowling = append(ps.Bowling, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	result := make([]*models.PlayerStats, 0, len(order))
	for _, id := range order {
		result = append(result, byPlayer[id])
	}
	return result, nil
}
