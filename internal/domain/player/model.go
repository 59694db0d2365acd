package player

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/position"
	"github.com/riskibarqy/matchday/internal/domain/rating"
	"github.com/riskibarqy/matchday/internal/domain/squad"
)

// Player is a registered club member with a preferred position and attribute ratings.
type Player struct {
	ID        string
	Name      string
	Position  string
	Rating    int
	Stats     rating.StatLine
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	if p.Rating < 0 || p.Rating > 99 {
		return fmt.Errorf("player rating must be between 0 and 99")
	}
	return nil
}

func (p Player) Clone() Player {
	copied := p
	copied.Stats = p.Stats.Clone()
	return copied
}

// Canonical returns the player's position mapped onto the canonical set.
func (p Player) Canonical() position.Position {
	return position.Canonicalize(p.Position)
}

// Attendee projects the player into the squad builder input.
func (p Player) Attendee() squad.Attendee {
	return squad.Attendee{UID: p.ID, Name: p.Name, Position: p.Position, Rating: p.Rating}
}

// SeedStats fills every attribute from the overall rating when no stats were given.
func SeedStats(overall int, stats rating.StatLine) rating.StatLine {
	out := stats.Clone()
	for _, attr := range rating.Attributes {
		if _, ok := out[attr]; !ok {
			out[attr] = float64(overall)
		}
	}
	return out
}
