package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/matchday/internal/domain/event"
	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/player"
	"github.com/riskibarqy/matchday/internal/domain/position"
	"github.com/riskibarqy/matchday/internal/domain/squad"
	"github.com/riskibarqy/matchday/internal/platform/id"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/metrics"
)

type SquadConfig struct {
	DefaultFormation string
	ShuffleAttempts  int
	WorkerPoolSize   int
}

type BuildSquadInput struct {
	MatchID    string
	FormationA string
	FormationB string
	Seed       *uint64
}

// BuiltSquad is a saved squad plus the per-team summaries shown to organizers.
type BuiltSquad struct {
	Saved    squad.Saved
	Roster   squad.Roster
	AverageA int
	AverageB int
}

type SquadService struct {
	matchRepo  match.Repository
	playerRepo player.Repository
	squadRepo  squad.Repository
	publisher  event.Publisher
	metrics    *metrics.Manager
	idGen      id.Generator
	cfg        SquadConfig
	logger     *logging.Logger
	now        func() time.Time
	sourceFor  func(seed *uint64, attempt int) squad.RandomSource
}

func NewSquadService(
	matchRepo match.Repository,
	playerRepo player.Repository,
	squadRepo squad.Repository,
	publisher event.Publisher,
	metricsManager *metrics.Manager,
	idGen id.Generator,
	cfg SquadConfig,
	logger *logging.Logger,
) *SquadService {
	if logger == nil {
		logger = logging.Default()
	}
	if publisher == nil {
		publisher = event.Nop{}
	}
	if cfg.ShuffleAttempts < 1 {
		cfg.ShuffleAttempts = 1
	}
	if cfg.WorkerPoolSize < 1 {
		cfg.WorkerPoolSize = 1
	}
	if _, ok := position.LookupFormation(cfg.DefaultFormation); !ok {
		cfg.DefaultFormation = position.DefaultFormation
	}

	return &SquadService{
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		squadRepo:  squadRepo,
		publisher:  publisher,
		metrics:    metricsManager,
		idGen:      idGen,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
		sourceFor:  randomSourceFor,
	}
}

func randomSourceFor(seed *uint64, attempt int) squad.RandomSource {
	if seed == nil {
		return squad.DefaultRandomSource()
	}
	return squad.NewSeededSource(*seed + uint64(attempt))
}

// BuildSquad shuffles the match attendees into two balanced sides and saves the result.
func (s *SquadService) BuildSquad(ctx context.Context, input BuildSquadInput) (BuiltSquad, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.BuildSquad")
	defer span.End()

	matchID := strings.TrimSpace(input.MatchID)
	if matchID == "" {
		return BuiltSquad{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return BuiltSquad{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return BuiltSquad{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	if item.Completed() {
		return BuiltSquad{}, fmt.Errorf("%w: match=%s already completed", ErrConflict, matchID)
	}

	attendees, err := s.loadAttendees(ctx, item.AttendeeIDs)
	if err != nil {
		return BuiltSquad{}, err
	}

	formationA := position.ResolveFormation(firstNonEmpty(input.FormationA, item.FormationA), s.cfg.DefaultFormation)
	formationB := position.ResolveFormation(firstNonEmpty(input.FormationB, item.FormationB), s.cfg.DefaultFormation)

	roster := squad.NewRoster(attendees)
	built, err := s.bestOf(attendees, item.Pins, formationA, formationB, roster, input.Seed)
	if err != nil {
		return BuiltSquad{}, err
	}

	squadID, err := s.idGen.NewID()
	if err != nil {
		return BuiltSquad{}, fmt.Errorf("generate squad id: %w", err)
	}

	now := s.now().UTC()
	saved := squad.Saved{
		ID:        squadID,
		MatchID:   item.ID,
		Squad:     built,
		Pins:      item.Pins.Clone(),
		RatingA:   roster.RatingSum(built.A.Roster),
		RatingB:   roster.RatingSum(built.B.Roster),
		BuiltAt:   now,
		UpdatedAt: now,
	}
	if err := saved.Validate(); err != nil {
		return BuiltSquad{}, fmt.Errorf("validate squad: %w", err)
	}
	if err := s.squadRepo.Save(ctx, saved); err != nil {
		return BuiltSquad{}, fmt.Errorf("save squad: %w", err)
	}

	s.metrics.RecordSquadBuilt(saved.RatingA - saved.RatingB)
	s.logger.InfoContext(ctx, "squad built",
		"match_id", item.ID,
		"attendees", len(attendees),
		"rating_a", saved.RatingA,
		"rating_b", saved.RatingB,
	)

	evt := event.SquadBuilt{
		MatchID: item.ID,
		TeamA:   built.A.Roster,
		TeamB:   built.B.Roster,
		RatingA: saved.RatingA,
		RatingB: saved.RatingB,
		BuiltAt: now,
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.WarnContext(ctx, "publish squad built event failed", "match_id", item.ID, "error", err)
	}

	return BuiltSquad{
		Saved:    saved,
		Roster:   roster,
		AverageA: roster.AverageRating(built.A.Roster),
		AverageB: roster.AverageRating(built.B.Roster),
	}, nil
}

// GetSquad returns the last saved squad of a match with a fresh roster view.
func (s *SquadService) GetSquad(ctx context.Context, matchID string) (BuiltSquad, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.GetSquad")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return BuiltSquad{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	saved, exists, err := s.squadRepo.GetByMatch(ctx, matchID)
	if err != nil {
		return BuiltSquad{}, fmt.Errorf("get squad: %w", err)
	}
	if !exists {
		return BuiltSquad{}, fmt.Errorf("%w: squad for match=%s", ErrNotFound, matchID)
	}

	ids := append(append([]string{}, saved.Squad.A.Roster...), saved.Squad.B.Roster...)
	attendees, err := s.loadAttendees(ctx, ids)
	if err != nil {
		return BuiltSquad{}, err
	}
	roster := squad.NewRoster(attendees)

	return BuiltSquad{
		Saved:    saved,
		Roster:   roster,
		AverageA: roster.AverageRating(saved.Squad.A.Roster),
		AverageB: roster.AverageRating(saved.Squad.B.Roster),
	}, nil
}

func (s *SquadService) loadAttendees(ctx context.Context, ids []string) ([]squad.Attendee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	players, err := s.playerRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get attendees: %w", err)
	}

	byID := make(map[string]player.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	out := make([]squad.Attendee, 0, len(ids))
	for _, uid := range ids {
		p, ok := byID[uid]
		if !ok {
			s.logger.WarnContext(ctx, "attendee has no player record", "player_id", uid)
			continue
		}
		out = append(out, p.Attendee())
	}
	return out, nil
}

type shuffleAttempt struct {
	index int
	squad squad.Squad
	gap   int
}

// bestOf builds ShuffleAttempts squads concurrently and keeps the one with the smallest
// rating gap. Ties go to the lowest attempt index so seeded runs are reproducible.
func (s *SquadService) bestOf(
	attendees []squad.Attendee,
	pins squad.PinMap,
	formationA, formationB position.Formation,
	roster squad.Roster,
	seed *uint64,
) (squad.Squad, error) {
	attempts := s.cfg.ShuffleAttempts
	if attempts == 1 {
		return squad.Build(attendees, pins, formationA, formationB, s.sourceFor(seed, 0)), nil
	}

	results := make(chan shuffleAttempt, attempts)

	pool, err := ants.NewPool(min(s.cfg.WorkerPoolSize, attempts))
	if err != nil {
		return squad.Squad{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for i := 0; i < attempts; i++ {
		attempt := i
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			built := squad.Build(attendees, pins, formationA, formationB, s.sourceFor(seed, attempt))
			results <- shuffleAttempt{index: attempt, squad: built, gap: squad.RatingGap(built, roster)}
		}); err != nil {
			workers.Done()
			return squad.Squad{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	best := shuffleAttempt{index: -1}
	for res := range results {
		if best.index < 0 || res.gap < best.gap || (res.gap == best.gap && res.index < best.index) {
			best = res
		}
	}
	return best.squad, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
