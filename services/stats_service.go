package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/playmatch/playmatch-server/models"
	"github.com/playmatch/playmatch-server/repositories"
)

type StatsService interface {
	GetPlayerStats(ctx context.Context, playerID int) (*models.PlayerStats, error)
	ListAllPlayersStats(ctx context.Context) ([]*models.PlayerStats, error)
}

type statsService struct {
	statsRepo repositories.StatsRepository
	userRepo  repositories.UserRepository
}

func NewStatsService(statsRepo repositories.StatsRepository, userRepo repositories.UserRepository) StatsService {
	return &statsService{statsRepo: statsRepo, userRepo: userRepo}
}

func (s *statsService) GetPlayerStats(ctx context.Context, playerID int) (*models.PlayerStats, error) {
	user, err := s.userRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to look up player: %w", err)
	}

	stats := &models.PlayerStats{PlayerID: playerID}
	if user.Name != nil {
		stats.PlayerName = *user.Name
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		batting, bErr := s.statsRepo.ListBattingByPlayer(gCtx, playerID)
		if bErr != nil {
			return bErr
		}
		stats.Batting = batting
		return nil
	})
	g.Go(func() error {
		bowling, bErr := s.statsRepo.ListBowlingByPlayer(gCtx, playerID)
		if bErr != nil {
			return bErr
		}
		stats.Bowling = bowling
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load player stats: %w", err)
	}

	return stats, nil
}

func (s *statsService) ListAllPlayersStats(ctx context.Context) ([]*models.PlayerStats, error) {
	stats, err := s.statsRepo.ListAllPlayersStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players stats: %w", err)
	}
	return stats, nil
}
