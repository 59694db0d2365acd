package rating

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/squad"
)

// Category is a role-based vote ("best attacker") and the attributes it raises.
type Category struct {
	ID         string
	Attributes []Attribute
}

// Categories is an ordered category catalog.
type Categories []Category

func DefaultCategories() Categories {
	return Categories{
		{ID: "bomber", Attributes: []Attribute{SHO}},
		{ID: "midfielder", Attributes: []Attribute{PAS}},
		{ID: "defender", Attributes: []Attribute{DEF}},
		{ID: "goalkeeper", Attributes: []Attribute{PHY}},
	}
}

func (c Categories) Lookup(id string) (Category, bool) {
	for _, cat := range c {
		if cat.ID == id {
			return cat, true
		}
	}
	return Category{}, false
}

func (c Categories) IDs() []string {
	out := make([]string, 0, len(c))
	for _, cat := range c {
		out = append(out, cat.ID)
	}
	return out
}

// ValidateVotes requires a known category for every vote and a candidate for every category.
func (c Categories) ValidateVotes(votes map[string]string) error {
	for id := range votes {
		if _, ok := c.Lookup(id); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCategory, id)
		}
	}
	for _, cat := range c {
		if strings.TrimSpace(votes[cat.ID]) == "" {
			return fmt.Errorf("missing vote for category %s", cat.ID)
		}
	}
	return nil
}

// Ballot is one voter's post-match submission.
type Ballot struct {
	MatchID     string
	VoterID     string
	Team        squad.Team
	Votes       map[string]string
	Answers     map[string]float64
	SubmittedAt time.Time
}

// Key identifies a ballot across matches.
func (b Ballot) Key() string {
	return b.MatchID + "/" + b.VoterID
}

func (b Ballot) Clone() Ballot {
	out := b
	out.Votes = make(map[string]string, len(b.Votes))
	for k, v := range b.Votes {
		out.Votes[k] = v
	}
	out.Answers = make(map[string]float64, len(b.Answers))
	for k, v := range b.Answers {
		out.Answers[k] = v
	}
	return out
}

// SortBallots orders ballots by submission time, then voter.
func SortBallots(items []Ballot) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].SubmittedAt.Equal(items[j].SubmittedAt) {
			return items[i].SubmittedAt.Before(items[j].SubmittedAt)
		}
		return items[i].VoterID < items[j].VoterID
	})
}

// Result is a team's match outcome.
type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
	ResultDraw Result = "draw"
)

// ResultsFromScore derives both teams' outcomes from a final score.
func ResultsFromScore(scoreA, scoreB int) map[squad.Team]Result {
	switch {
	case scoreA > scoreB:
		return map[squad.Team]Result{squad.TeamA: ResultWin, squad.TeamB: ResultLoss}
	case scoreA < scoreB:
		return map[squad.Team]Result{squad.TeamA: ResultLoss, squad.TeamB: ResultWin}
	default:
		return map[squad.Team]Result{squad.TeamA: ResultDraw, squad.TeamB: ResultDraw}
	}
}
