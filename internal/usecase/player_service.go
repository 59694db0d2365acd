package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/player"
	"github.com/riskibarqy/matchday/internal/domain/rating"
	"github.com/riskibarqy/matchday/internal/domain/squad"
	"github.com/riskibarqy/matchday/internal/platform/id"
)

type RegisterPlayerInput struct {
	Name     string
	Position string
	Rating   *int
	Stats    map[string]float64
}

type PlayerService struct {
	playerRepo player.Repository
	idGen      id.Generator
	bounds     rating.Bounds
	now        func() time.Time
}

func NewPlayerService(playerRepo player.Repository, idGen id.Generator, bounds rating.Bounds) *PlayerService {
	return &PlayerService{
		playerRepo: playerRepo,
		idGen:      idGen,
		bounds:     bounds,
		now:        time.Now,
	}
}

func (s *PlayerService) RegisterPlayer(ctx context.Context, input RegisterPlayerInput) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.RegisterPlayer")
	defer span.End()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return player.Player{}, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}

	overall := squad.DefaultRating
	if input.Rating != nil {
		overall = *input.Rating
	}

	stats := rating.StatLine{}
	for raw, value := range input.Stats {
		attr, err := rating.ParseAttribute(raw)
		if err != nil {
			return player.Player{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if value < s.bounds.Min || value > s.bounds.Max {
			return player.Player{}, fmt.Errorf("%w: %s must be between %.0f and %.0f", ErrInvalidInput, attr, s.bounds.Min, s.bounds.Max)
		}
		stats[attr] = value
	}

	playerID, err := s.idGen.NewID()
	if err != nil {
		return player.Player{}, fmt.Errorf("generate player id: %w", err)
	}

	now := s.now().UTC()
	item := player.Player{
		ID:        playerID,
		Name:      name,
		Position:  strings.TrimSpace(input.Position),
		Rating:    overall,
		Stats:     player.SeedStats(overall, stats),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(input.Stats) > 0 && input.Rating == nil {
		item.Rating = item.Stats.Overall(s.bounds.Baseline)
	}
	if err := item.Validate(); err != nil {
		return player.Player{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.playerRepo.Create(ctx, item); err != nil {
		return player.Player{}, fmt.Errorf("create player: %w", err)
	}

	return item, nil
}

func (s *PlayerService) GetPlayer(ctx context.Context, playerID string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.GetPlayer")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return player.Player{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	item, exists, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return player.Player{}, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return player.Player{}, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}

	return item, nil
}
