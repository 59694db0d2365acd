package rating

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/matchday/internal/domain/position"
	"github.com/riskibarqy/matchday/internal/domain/squad"
)

// Mode names an aggregation pipeline.
type Mode string

const (
	ModeCumulative Mode = "cumulative"
	ModeThreshold  Mode = "threshold"
	ModeSurvey     Mode = "survey"
)

func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeCumulative:
		return ModeCumulative, nil
	case ModeThreshold:
		return ModeThreshold, nil
	case ModeSurvey:
		return ModeSurvey, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, raw)
	}
}

// UsesVotes reports whether ballots for this mode carry category votes.
func (m Mode) UsesVotes() bool {
	return m == ModeCumulative || m == ModeThreshold
}

// Participant is a player who took part in the match.
type Participant struct {
	UID   string
	Team  squad.Team
	Group position.Group
}

// Snapshot is everything an aggregation reads. Callers load it consistently before aggregating.
type Snapshot struct {
	MatchID      string
	Ballots      []Ballot
	Tally        Tally
	Ratings      map[string]StatLine
	Participants []Participant
	Results      map[squad.Team]Result
}

// Outcome is the staged result of one aggregation. Nothing is applied until the caller commits it.
type Outcome struct {
	Mode    Mode
	Deltas  DeltaSet
	Ratings map[string]StatLine
	Tally   Tally
}

// Aggregator turns a ballot snapshot into rating changes.
type Aggregator interface {
	Mode() Mode
	Aggregate(snapshot Snapshot) (Outcome, error)
}

// Config collects the constants of all pipelines.
type Config struct {
	Mode       Mode
	Threshold  int
	Bounds     Bounds
	Categories Categories
	Survey     SurveyConfig
}

func DefaultConfig() Config {
	return Config{
		Mode:       ModeCumulative,
		Threshold:  3,
		Bounds:     DefaultBounds(),
		Categories: DefaultCategories(),
		Survey:     DefaultSurveyConfig(),
	}
}

// New builds the aggregator selected by cfg.Mode.
func New(cfg Config) (Aggregator, error) {
	if len(cfg.Categories) == 0 {
		cfg.Categories = DefaultCategories()
	}
	switch cfg.Mode {
	case ModeCumulative:
		if cfg.Threshold <= 0 {
			return nil, ErrInvalidThreshold
		}
		return &CumulativeAggregator{Threshold: cfg.Threshold, Categories: cfg.Categories, Bounds: cfg.Bounds}, nil
	case ModeThreshold:
		if cfg.Threshold <= 0 {
			return nil, ErrInvalidThreshold
		}
		return &ThresholdAggregator{Threshold: cfg.Threshold, Categories: cfg.Categories, Bounds: cfg.Bounds}, nil
	case ModeSurvey:
		return &SurveyAggregator{Config: cfg.Survey, Bounds: cfg.Bounds}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Mode)
	}
}
