package postgres

import (
	"time"

	"github.com/riskibarqy/matchday/internal/domain/position"
	"github.com/riskibarqy/matchday/internal/domain/squad"
)

type squadTableModel struct {
	PublicID      string    `db:"public_id"`
	MatchPublicID string    `db:"match_public_id"`
	Squad         []byte    `db:"squad"`
	Pins          []byte    `db:"pins"`
	RatingA       int       `db:"rating_a"`
	RatingB       int       `db:"rating_b"`
	BuiltAt       time.Time `db:"built_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// squadDocument is the jsonb shape of a built squad.
type squadDocument struct {
	A sideDocument `json:"a"`
	B sideDocument `json:"b"`
}

type sideDocument struct {
	Formation string         `json:"formation"`
	Roster    []string       `json:"roster"`
	Slots     []slotDocument `json:"slots"`
	Bench     []string       `json:"bench"`
}

type slotDocument struct {
	Slot string `json:"slot"`
	UID  string `json:"uid,omitempty"`
}

func toSquadDocument(s squad.Squad) squadDocument {
	return squadDocument{A: toSideDocument(s.A), B: toSideDocument(s.B)}
}

func toSideDocument(side squad.Side) sideDocument {
	slots := make([]slotDocument, 0, len(side.Slots))
	for _, slot := range side.Slots {
		slots = append(slots, slotDocument{Slot: string(slot.Slot), UID: slot.UID})
	}
	return sideDocument{Formation: side.Formation, Roster: side.Roster, Slots: slots, Bench: side.Bench}
}

func (d squadDocument) toDomain() squad.Squad {
	return squad.Squad{A: d.A.toDomain(), B: d.B.toDomain()}
}

func (d sideDocument) toDomain() squad.Side {
	slots := make([]squad.SlotAssignment, 0, len(d.Slots))
	for _, slot := range d.Slots {
		slots = append(slots, squad.SlotAssignment{Slot: position.Position(slot.Slot), UID: slot.UID})
	}
	return squad.Side{Formation: d.Formation, Roster: d.Roster, Slots: slots, Bench: d.Bench}
}
