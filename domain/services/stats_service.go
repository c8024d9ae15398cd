package services

import (
	"context"
	"fmt"

	"lambolotto/domain/entities"
	"lambolotto/domain/interfaces"
)

type statsService struct {
	statsRepo       interfaces.StatsRepository
	initialTreasury int64
}

// NewStatsService creates the read-side stats service.
func NewStatsService(statsRepo interfaces.StatsRepository, initialTreasury int64) interfaces.StatsService {
	return &statsService{statsRepo: statsRepo, initialTreasury: initialTreasury}
}

func (s *statsService) GetStats(ctx context.Context) (*entities.Stats, error) {
	stats, err := s.statsRepo.GetOrCreate(ctx, s.initialTreasury)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	return stats, nil
}
