// Package event holds the domain events emitted after squads and ratings change.
package event

import (
	"context"
	"time"
)

const (
	NameSquadBuilt     = "squad.built"
	NameRatingsApplied = "ratings.applied"
)

// Event is a fact published to downstream consumers.
type Event interface {
	EventName() string
}

// Publisher delivers events. Delivery is best effort; callers log failures and move on.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

type SquadBuilt struct {
	MatchID string    `json:"match_id"`
	TeamA   []string  `json:"team_a"`
	TeamB   []string  `json:"team_b"`
	RatingA int       `json:"rating_a"`
	RatingB int       `json:"rating_b"`
	BuiltAt time.Time `json:"built_at"`
}

func (SquadBuilt) EventName() string { return NameSquadBuilt }

type RatingsApplied struct {
	MatchID   string                        `json:"match_id"`
	Mode      string                        `json:"mode"`
	Deltas    map[string]map[string]float64 `json:"deltas"`
	AppliedAt time.Time                     `json:"applied_at"`
}

func (RatingsApplied) EventName() string { return NameRatingsApplied }

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
