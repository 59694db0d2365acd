package squad

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/position"
)

// DefaultRating is used for identities that have no known rating.
const DefaultRating = 60

// Team labels one side of a match.
type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
)

func ParseTeam(raw string) (Team, bool) {
	switch Team(strings.ToUpper(strings.TrimSpace(raw))) {
	case TeamA:
		return TeamA, true
	case TeamB:
		return TeamB, true
	default:
		return "", false
	}
}

// Attendee is one confirmed participant as supplied by the roster provider.
type Attendee struct {
	UID      string
	Name     string
	Position string
	Rating   int
}

func (a Attendee) Canonical() position.Position {
	return position.Canonicalize(a.Position)
}

// PinMap forces attendees onto a team. Entries with labels other than A or B are ignored.
type PinMap map[string]Team

func (p PinMap) Clone() PinMap {
	out := make(PinMap, len(p))
	for uid, team := range p {
		out[uid] = team
	}
	return out
}

// SlotAssignment binds one formation slot to a starter. An empty UID is an unfilled slot.
type SlotAssignment struct {
	Slot position.Position
	UID  string
}

func (s SlotAssignment) Filled() bool {
	return s.UID != ""
}

// Side is the sheet for one team.
type Side struct {
	Formation string
	Roster    []string
	Slots     []SlotAssignment
	Bench     []string
}

func (s Side) Starters() []string {
	out := make([]string, 0, len(s.Slots))
	for _, slot := range s.Slots {
		if slot.Filled() {
			out = append(out, slot.UID)
		}
	}
	return out
}

func (s Side) clone() Side {
	return Side{
		Formation: s.Formation,
		Roster:    append([]string(nil), s.Roster...),
		Slots:     append([]SlotAssignment(nil), s.Slots...),
		Bench:     append([]string(nil), s.Bench...),
	}
}

// Squad is the result of one balancing run for both sides.
type Squad struct {
	A Side
	B Side
}

func (s Squad) Side(team Team) Side {
	if team == TeamB {
		return s.B
	}
	return s.A
}

func (s Squad) Clone() Squad {
	return Squad{A: s.A.clone(), B: s.B.clone()}
}

// TeamOf reports which side uid was placed on.
func (s Squad) TeamOf(uid string) (Team, bool) {
	for _, id := range s.A.Roster {
		if id == uid {
			return TeamA, true
		}
	}
	for _, id := range s.B.Roster {
		if id == uid {
			return TeamB, true
		}
	}
	return "", false
}

// Saved is a persisted squad together with the inputs that produced it.
type Saved struct {
	ID        string
	MatchID   string
	Squad     Squad
	Pins      PinMap
	RatingA   int
	RatingB   int
	BuiltAt   time.Time
	UpdatedAt time.Time
}

func (s Saved) Clone() Saved {
	copied := s
	copied.Squad = s.Squad.Clone()
	copied.Pins = s.Pins.Clone()
	return copied
}

func (s Saved) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("squad id is required")
	}
	if s.MatchID == "" {
		return fmt.Errorf("squad match id is required")
	}
	return nil
}

var parenthesised = regexp.MustCompile(`\s*\([^)]*\)\s*`)

// CleanName strips parenthesised annotations such as "Kim (GK)".
func CleanName(name string) string {
	return strings.TrimSpace(parenthesised.ReplaceAllString(name, " "))
}
