package match

import (
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/squad"
)

var (
	ErrAlreadyCompleted = errors.New("match already completed")
	ErrNotCompleted     = errors.New("match is not completed")
	ErrNotEligible      = errors.New("voter is not eligible for this match")
	ErrVotingClosed     = errors.New("voting is closed for this match")
	ErrVersionConflict  = errors.New("match was modified concurrently")
	ErrNoSquadVoters    = errors.New("no attendee is on the saved squad")
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
)

// Score is the final result of a completed match.
type Score struct {
	A int
	B int
}

// Match is one scheduled game with its attendance, squad inputs and ballot progress.
type Match struct {
	ID              string
	Title           string
	ScheduledAt     time.Time
	Status          Status
	AttendeeIDs     []string
	Pins            squad.PinMap
	FormationA      string
	FormationB      string
	Score           *Score
	EligibleVoters  []string
	BallotsReceived int
	StatsCalculated bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (m Match) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("match id is required")
	}
	if m.Title == "" {
		return fmt.Errorf("match title is required")
	}
	if m.ScheduledAt.IsZero() {
		return fmt.Errorf("match scheduled time is required")
	}
	return nil
}

func (m Match) Completed() bool {
	return m.Status == StatusCompleted
}

func (m Match) IsAttending(uid string) bool {
	for _, id := range m.AttendeeIDs {
		if id == uid {
			return true
		}
	}
	return false
}

func (m Match) IsEligibleVoter(uid string) bool {
	for _, id := range m.EligibleVoters {
		if id == uid {
			return true
		}
	}
	return false
}

// SetAttendance adds or removes uid from the attendee list, keeping order.
func (m *Match) SetAttendance(uid string, attending bool) {
	filtered := make([]string, 0, len(m.AttendeeIDs)+1)
	for _, id := range m.AttendeeIDs {
		if id != uid {
			filtered = append(filtered, id)
		}
	}
	if attending {
		filtered = append(filtered, uid)
	}
	m.AttendeeIDs = filtered
	if !attending {
		delete(m.Pins, uid)
	}
}

// Complete records the score and freezes the eligible voter set to the current attendees.
func (m *Match) Complete(score Score, at time.Time) error {
	if m.Completed() {
		return ErrAlreadyCompleted
	}
	m.complete(score, at, append([]string(nil), m.AttendeeIDs...))
	return nil
}

// CompleteWithSquad freezes as voters only the attendees who are on the saved squad.
// Players dropped after the build and late joiners have no side to rate.
func (m *Match) CompleteWithSquad(score Score, at time.Time, sq squad.Squad) error {
	if m.Completed() {
		return ErrAlreadyCompleted
	}
	voters := make([]string, 0, len(m.AttendeeIDs))
	for _, uid := range m.AttendeeIDs {
		if _, ok := sq.TeamOf(uid); ok {
			voters = append(voters, uid)
		}
	}
	if len(voters) == 0 {
		return ErrNoSquadVoters
	}
	m.complete(score, at, voters)
	return nil
}

func (m *Match) complete(score Score, at time.Time, voters []string) {
	m.Status = StatusCompleted
	m.Score = &score
	m.EligibleVoters = voters
	m.BallotsReceived = 0
	m.UpdatedAt = at
}

// Progress returns the ballot counter state.
func (m Match) Progress() Progress {
	return Progress{Received: m.BallotsReceived, Eligible: len(m.EligibleVoters)}
}

func (m Match) Clone() Match {
	out := m
	out.AttendeeIDs = append([]string(nil), m.AttendeeIDs...)
	out.EligibleVoters = append([]string(nil), m.EligibleVoters...)
	out.Pins = m.Pins.Clone()
	if m.Score != nil {
		score := *m.Score
		out.Score = &score
	}
	return out
}

// Progress counts ballots against the eligible voter set.
type Progress struct {
	Received int
	Eligible int
}

// Advance moves the counter by one ballot. final is true only on the transition that
// reaches the eligible count, so aggregation fires at most once per match.
func (p Progress) Advance() (next Progress, final bool) {
	next = Progress{Received: p.Received + 1, Eligible: p.Eligible}
	final = p.Received < p.Eligible && next.Received >= p.Eligible
	return next, final
}

func (p Progress) Done() bool {
	return p.Eligible > 0 && p.Received >= p.Eligible
}
