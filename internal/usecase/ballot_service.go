package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/event"
	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/player"
	"github.com/riskibarqy/matchday/internal/domain/position"
	"github.com/riskibarqy/matchday/internal/domain/rating"
	"github.com/riskibarqy/matchday/internal/domain/squad"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/metrics"
	"github.com/sourcegraph/conc/pool"
)

// maxAggregationAttempts bounds re-runs when another match commits overlapping stats or tallies first.
const maxAggregationAttempts = 3

type SubmitBallotInput struct {
	MatchID string
	VoterID string
	Votes   map[string]string
	Answers map[string]float64
}

// SubmitBallotResult reports the counter after the ballot and, on the final ballot,
// the rating changes that were committed with it, as persisted.
type SubmitBallotResult struct {
	Progress match.Progress
	Final    bool
	Deltas   rating.DeltaSet
}

type BallotProgress struct {
	Received        int
	Eligible        int
	StatsCalculated bool
	Missing         []string
}

type BallotService struct {
	matchRepo  match.Repository
	playerRepo player.Repository
	squadRepo  squad.Repository
	ballotRepo rating.Repository
	aggregator rating.Aggregator
	cfg        rating.Config
	publisher  event.Publisher
	metrics    *metrics.Manager
	logger     *logging.Logger
	now        func() time.Time
}

func NewBallotService(
	matchRepo match.Repository,
	playerRepo player.Repository,
	squadRepo squad.Repository,
	ballotRepo rating.Repository,
	cfg rating.Config,
	publisher event.Publisher,
	metricsManager *metrics.Manager,
	logger *logging.Logger,
) (*BallotService, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if publisher == nil {
		publisher = event.Nop{}
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = rating.DefaultCategories()
	}
	aggregator, err := rating.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("create rating aggregator: %w", err)
	}

	return &BallotService{
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		squadRepo:  squadRepo,
		ballotRepo: ballotRepo,
		aggregator: aggregator,
		cfg:        cfg,
		publisher:  publisher,
		metrics:    metricsManager,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// SubmitBallot records one voter's ballot. The ballot that completes the eligible set also
// runs the configured aggregation and commits its result in the same write; if that run
// fails the ballot is rejected with ErrAggregationAborted and can be resubmitted.
func (s *BallotService) SubmitBallot(ctx context.Context, input SubmitBallotInput) (SubmitBallotResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BallotService.SubmitBallot")
	defer span.End()

	matchID := strings.TrimSpace(input.MatchID)
	voterID := strings.TrimSpace(input.VoterID)
	if matchID == "" {
		return SubmitBallotResult{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if voterID == "" {
		return SubmitBallotResult{}, fmt.Errorf("%w: voter id is required", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return SubmitBallotResult{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return SubmitBallotResult{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	if !item.Completed() {
		return SubmitBallotResult{}, fmt.Errorf("%w: %v", ErrConflict, match.ErrNotCompleted)
	}
	if item.StatsCalculated || item.Progress().Done() {
		return SubmitBallotResult{}, fmt.Errorf("%w: %v", ErrConflict, match.ErrVotingClosed)
	}
	if !item.IsEligibleVoter(voterID) {
		return SubmitBallotResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, match.ErrNotEligible)
	}

	if err := s.validateBallot(item, input); err != nil {
		return SubmitBallotResult{}, err
	}

	submitted, err := s.ballotRepo.HasBallot(ctx, matchID, voterID)
	if err != nil {
		return SubmitBallotResult{}, fmt.Errorf("check ballot: %w", err)
	}
	if submitted {
		return SubmitBallotResult{}, fmt.Errorf("%w: %v", ErrConflict, rating.ErrDuplicateBallot)
	}

	saved, hasSquad, err := s.squadRepo.GetByMatch(ctx, matchID)
	if err != nil {
		return SubmitBallotResult{}, fmt.Errorf("get squad: %w", err)
	}
	var team squad.Team
	if hasSquad {
		team, _ = saved.Squad.TeamOf(voterID)
	}
	if s.aggregator.Mode() == rating.ModeSurvey && team == "" {
		return SubmitBallotResult{}, fmt.Errorf("%w: voter %s is not on a squad for this match", ErrInvalidInput, voterID)
	}

	ballot := rating.Ballot{
		MatchID:     matchID,
		VoterID:     voterID,
		Team:        team,
		Votes:       trimVotes(input.Votes),
		Answers:     input.Answers,
		SubmittedAt: s.now().UTC(),
	}

	prior := item.Progress()
	next, final := prior.Advance()

	var applied rating.DeltaSet
	for attempt := 1; ; attempt++ {
		commit := rating.Commit{
			Ballot:           ballot,
			ExpectedReceived: prior.Received,
			Final:            final,
		}
		if final {
			applied, err = s.aggregate(ctx, item, ballot, saved, hasSquad, &commit)
			if err != nil {
				s.metrics.RecordAggregation(string(s.aggregator.Mode()), "aborted")
				s.logger.ErrorContext(ctx, "rating aggregation aborted", "match_id", matchID, "error", err)
				return SubmitBallotResult{}, err
			}
		}

		err = s.ballotRepo.Commit(ctx, commit)
		if final && errors.Is(err, rating.ErrStaleSnapshot) && attempt < maxAggregationAttempts {
			s.logger.WarnContext(ctx, "rating snapshot changed before commit, aggregating again",
				"match_id", matchID,
				"attempt", attempt,
				"error", err,
			)
			continue
		}
		break
	}

	if err != nil {
		if errors.Is(err, match.ErrVersionConflict) || errors.Is(err, rating.ErrDuplicateBallot) {
			if final {
				s.metrics.RecordAggregation(string(s.aggregator.Mode()), "conflict")
			}
			return SubmitBallotResult{}, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		if final {
			s.metrics.RecordAggregation(string(s.aggregator.Mode()), "aborted")
			return SubmitBallotResult{}, markAborted(err, "commit ballot for match=%s", matchID)
		}
		return SubmitBallotResult{}, fmt.Errorf("commit ballot: %w", err)
	}
	s.metrics.RecordBallot()

	result := SubmitBallotResult{Progress: next, Final: final}
	if !final {
		return result, nil
	}

	mode := string(s.aggregator.Mode())
	result.Deltas = applied
	s.metrics.RecordAggregation(mode, "applied")
	s.logger.InfoContext(ctx, "match ratings applied",
		"match_id", matchID,
		"mode", mode,
		"players_changed", len(applied),
	)

	evt := event.RatingsApplied{
		MatchID:   matchID,
		Mode:      mode,
		Deltas:    deltaPayload(applied),
		AppliedAt: ballot.SubmittedAt,
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.WarnContext(ctx, "publish ratings applied event failed", "match_id", matchID, "error", err)
	}

	return result, nil
}

// Progress reports how many eligible voters have submitted and who is still missing.
func (s *BallotService) Progress(ctx context.Context, matchID string) (BallotProgress, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BallotService.Progress")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return BallotProgress{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return BallotProgress{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return BallotProgress{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	ballots, err := s.ballotRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return BallotProgress{}, fmt.Errorf("list ballots: %w", err)
	}
	voted := make(map[string]struct{}, len(ballots))
	for _, b := range ballots {
		voted[b.VoterID] = struct{}{}
	}

	missing := make([]string, 0, len(item.EligibleVoters))
	for _, uid := range item.EligibleVoters {
		if _, ok := voted[uid]; !ok {
			missing = append(missing, uid)
		}
	}

	progress := item.Progress()
	return BallotProgress{
		Received:        progress.Received,
		Eligible:        progress.Eligible,
		StatsCalculated: item.StatsCalculated,
		Missing:         missing,
	}, nil
}

func (s *BallotService) validateBallot(item match.Match, input SubmitBallotInput) error {
	if !s.aggregator.Mode().UsesVotes() {
		if err := rating.ValidateAnswers(input.Answers); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil
	}

	if err := s.cfg.Categories.ValidateVotes(input.Votes); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	for category, candidate := range input.Votes {
		if !item.IsEligibleVoter(strings.TrimSpace(candidate)) {
			return fmt.Errorf("%w: %s candidate %s did not attend the match", ErrInvalidInput, category, candidate)
		}
	}
	return nil
}

type aggregationSnapshot struct {
	ballots []rating.Ballot
	tally   rating.Tally
	players []player.Player
}

// aggregate loads a snapshot concurrently, runs the aggregator and stages the outcome on commit.
// It returns the changes the commit will persist, after rounding and clamping.
func (s *BallotService) aggregate(
	ctx context.Context,
	item match.Match,
	current rating.Ballot,
	saved squad.Saved,
	hasSquad bool,
	commit *rating.Commit,
) (rating.DeltaSet, error) {
	snap, err := s.loadSnapshot(ctx, item)
	if err != nil {
		return nil, markAborted(err, "load snapshot for match=%s", item.ID)
	}

	ballots := append(snap.ballots, current)
	rating.SortBallots(ballots)

	loaded := make(map[string]player.Player, len(snap.players))
	ratings := make(map[string]rating.StatLine, len(snap.players))
	for _, p := range snap.players {
		loaded[p.ID] = p
		ratings[p.ID] = p.Stats.Clone()
	}

	// Only squad members whose stats were loaded take part; the rest did not play or cannot vote.
	var participants []rating.Participant
	if hasSquad {
		for _, team := range []squad.Team{squad.TeamA, squad.TeamB} {
			for _, uid := range saved.Squad.Side(team).Roster {
				p, ok := loaded[uid]
				if !ok {
					continue
				}
				participants = append(participants, rating.Participant{UID: uid, Team: team, Group: position.GroupOf(p.Position)})
			}
		}
	}

	results := map[squad.Team]rating.Result{}
	if item.Score != nil {
		results = rating.ResultsFromScore(item.Score.A, item.Score.B)
	}

	outcome, err := s.aggregator.Aggregate(rating.Snapshot{
		MatchID:      item.ID,
		Ballots:      ballots,
		Tally:        snap.tally,
		Ratings:      ratings,
		Participants: participants,
		Results:      results,
	})
	if err != nil {
		return nil, markAborted(err, "aggregate match=%s", item.ID)
	}

	commit.PriorRatings = make(map[string]rating.StatLine, len(outcome.Deltas))
	commit.Ratings = make(map[string]rating.StatLine, len(outcome.Deltas))
	commit.Overall = make(map[string]int, len(outcome.Deltas))
	for uid := range outcome.Deltas {
		if _, ok := loaded[uid]; !ok {
			return nil, markAborted(fmt.Errorf("player %s is not in the snapshot", uid), "aggregate match=%s", item.ID)
		}
		line := outcome.Ratings[uid]
		commit.PriorRatings[uid] = ratings[uid]
		commit.Ratings[uid] = line
		commit.Overall[uid] = line.Overall(s.cfg.Bounds.Baseline)
	}
	commit.TallyChanges = snap.tally.Changes(outcome.Tally)
	commit.CountedKeys = snap.tally.NewlyCounted(outcome.Tally)

	return rating.Applied(commit.PriorRatings, commit.Ratings, s.cfg.Bounds.Baseline), nil
}

func (s *BallotService) loadSnapshot(ctx context.Context, item match.Match) (aggregationSnapshot, error) {
	var snap aggregationSnapshot

	ballotKeys := make([]string, 0, len(item.EligibleVoters))
	for _, uid := range item.EligibleVoters {
		ballotKeys = append(ballotKeys, rating.Ballot{MatchID: item.ID, VoterID: uid}.Key())
	}

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		ballots, err := s.ballotRepo.ListByMatch(ctx, item.ID)
		if err != nil {
			return fmt.Errorf("list ballots: %w", err)
		}
		snap.ballots = ballots
		return nil
	})
	p.Go(func(ctx context.Context) error {
		if !s.aggregator.Mode().UsesVotes() {
			snap.tally = rating.NewTally()
			return nil
		}
		tally, err := s.ballotRepo.LoadTally(ctx, item.EligibleVoters, ballotKeys)
		if err != nil {
			return fmt.Errorf("load tally: %w", err)
		}
		snap.tally = tally
		return nil
	})
	p.Go(func(ctx context.Context) error {
		players, err := s.playerRepo.GetByIDs(ctx, item.EligibleVoters)
		if err != nil {
			return fmt.Errorf("get players: %w", err)
		}
		snap.players = players
		return nil
	})

	if err := p.Wait(); err != nil {
		return aggregationSnapshot{}, err
	}
	return snap, nil
}

func trimVotes(votes map[string]string) map[string]string {
	out := make(map[string]string, len(votes))
	for category, uid := range votes {
		out[strings.TrimSpace(category)] = strings.TrimSpace(uid)
	}
	return out
}

func deltaPayload(deltas rating.DeltaSet) map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(deltas))
	for uid, delta := range deltas {
		inner := make(map[string]float64, len(delta))
		for attr, v := range delta {
			inner[string(attr)] = v
		}
		out[uid] = inner
	}
	return out
}
