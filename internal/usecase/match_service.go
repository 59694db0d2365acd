package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/player"
	"github.com/riskibarqy/matchday/internal/domain/position"
	"github.com/riskibarqy/matchday/internal/domain/squad"
	"github.com/riskibarqy/matchday/internal/platform/id"
)

type CreateMatchInput struct {
	Title       string
	ScheduledAt time.Time
	FormationA  string
	FormationB  string
}

type MatchService struct {
	matchRepo        match.Repository
	playerRepo       player.Repository
	squadRepo        squad.Repository
	idGen            id.Generator
	defaultFormation string
	now              func() time.Time
}

func NewMatchService(matchRepo match.Repository, playerRepo player.Repository, idGen id.Generator, defaultFormation string) *MatchService {
	if _, ok := position.LookupFormation(defaultFormation); !ok {
		defaultFormation = position.DefaultFormation
	}
	return &MatchService{
		matchRepo:        matchRepo,
		playerRepo:       playerRepo,
		idGen:            idGen,
		defaultFormation: defaultFormation,
		now:              time.Now,
	}
}

// WithSquadVoters makes CompleteMatch require a saved squad and limit voters to its members.
// Survey ratings credit each ballot to the voter's side, so they need it.
func (s *MatchService) WithSquadVoters(squadRepo squad.Repository) *MatchService {
	s.squadRepo = squadRepo
	return s
}

func (s *MatchService) CreateMatch(ctx context.Context, input CreateMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.CreateMatch")
	defer span.End()

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return match.Match{}, fmt.Errorf("%w: match title is required", ErrInvalidInput)
	}
	if input.ScheduledAt.IsZero() {
		return match.Match{}, fmt.Errorf("%w: scheduled_at is required", ErrInvalidInput)
	}

	matchID, err := s.idGen.NewID()
	if err != nil {
		return match.Match{}, fmt.Errorf("generate match id: %w", err)
	}

	now := s.now().UTC()
	item := match.Match{
		ID:          matchID,
		Title:       title,
		ScheduledAt: input.ScheduledAt.UTC(),
		Status:      match.StatusScheduled,
		Pins:        squad.PinMap{},
		FormationA:  position.ResolveFormation(input.FormationA, s.defaultFormation).Name,
		FormationB:  position.ResolveFormation(input.FormationB, s.defaultFormation).Name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := item.Validate(); err != nil {
		return match.Match{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.matchRepo.Create(ctx, item); err != nil {
		return match.Match{}, fmt.Errorf("create match: %w", err)
	}
	return item, nil
}

func (s *MatchService) GetMatch(ctx context.Context, matchID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.GetMatch")
	defer span.End()

	return s.loadMatch(ctx, matchID)
}

// SetAttendance marks a registered player as attending or not. Leaving also drops any pin.
func (s *MatchService) SetAttendance(ctx context.Context, matchID, playerID string, attending bool) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.SetAttendance")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return match.Match{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	item, err := s.loadOpenMatch(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}

	if attending {
		_, exists, err := s.playerRepo.GetByID(ctx, playerID)
		if err != nil {
			return match.Match{}, fmt.Errorf("get player: %w", err)
		}
		if !exists {
			return match.Match{}, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
		}
	}

	item.SetAttendance(playerID, attending)
	return s.save(ctx, item)
}

// SetPins replaces the pin map. Every pinned player must be attending.
func (s *MatchService) SetPins(ctx context.Context, matchID string, pins map[string]string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.SetPins")
	defer span.End()

	item, err := s.loadOpenMatch(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}

	next := make(squad.PinMap, len(pins))
	for uid, raw := range pins {
		uid = strings.TrimSpace(uid)
		team, ok := squad.ParseTeam(raw)
		if !ok {
			return match.Match{}, fmt.Errorf("%w: pin for %s must be A or B", ErrInvalidInput, uid)
		}
		if !item.IsAttending(uid) {
			return match.Match{}, fmt.Errorf("%w: pinned player %s is not attending", ErrInvalidInput, uid)
		}
		next[uid] = team
	}

	item.Pins = next
	return s.save(ctx, item)
}

// CompleteMatch records the score and opens voting for the current attendees, or for those on
// the saved squad when WithSquadVoters is set.
func (s *MatchService) CompleteMatch(ctx context.Context, matchID string, score match.Score) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.CompleteMatch")
	defer span.End()

	if score.A < 0 || score.B < 0 {
		return match.Match{}, fmt.Errorf("%w: score must not be negative", ErrInvalidInput)
	}

	item, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}
	if len(item.AttendeeIDs) == 0 {
		return match.Match{}, fmt.Errorf("%w: match has no attendees", ErrInvalidInput)
	}

	if err := s.complete(ctx, &item, score); err != nil {
		if errors.Is(err, match.ErrAlreadyCompleted) || errors.Is(err, match.ErrNoSquadVoters) {
			return match.Match{}, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return match.Match{}, err
	}

	if err := s.matchRepo.Update(ctx, item); err != nil {
		return match.Match{}, fmt.Errorf("update match: %w", err)
	}
	return item, nil
}

func (s *MatchService) complete(ctx context.Context, item *match.Match, score match.Score) error {
	now := s.now().UTC()
	if s.squadRepo == nil {
		return item.Complete(score, now)
	}
	if item.Completed() {
		return match.ErrAlreadyCompleted
	}
	saved, exists, err := s.squadRepo.GetByMatch(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("get squad: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: build a squad for match=%s before completing it", ErrConflict, item.ID)
	}
	return item.CompleteWithSquad(score, now, saved.Squad)
}

func (s *MatchService) loadMatch(ctx context.Context, matchID string) (match.Match, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return item, nil
}

func (s *MatchService) loadOpenMatch(ctx context.Context, matchID string) (match.Match, error) {
	item, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}
	if item.Completed() {
		return match.Match{}, fmt.Errorf("%w: match=%s already completed", ErrConflict, item.ID)
	}
	return item, nil
}

func (s *MatchService) save(ctx context.Context, item match.Match) (match.Match, error) {
	item.UpdatedAt = s.now().UTC()
	if err := s.matchRepo.Update(ctx, item); err != nil {
		return match.Match{}, fmt.Errorf("update match: %w", err)
	}
	return item, nil
}
