package position

import (
	"fmt"
	"math"
	"strings"
)

// Position is a canonical on-pitch role code.
type Position string

const (
	GK  Position = "GK"
	CB  Position = "CB"
	RB  Position = "RB"
	LB  Position = "LB"
	CDM Position = "CDM"
	CM  Position = "CM"
	CAM Position = "CAM"
	RW  Position = "RW"
	LW  Position = "LW"
	ST  Position = "ST"
)

// MissingCost is returned for non-goalkeeper pairs the similarity table does not list.
const MissingCost = 99.0

var All = []Position{GK, CB, RB, LB, CDM, CM, CAM, RW, LW, ST}

// Group is the coarse role bucket used for rating weights.
type Group string

const (
	GroupGoalkeeper Group = "GK"
	GroupDefender   Group = "DF"
	GroupMidfielder Group = "MF"
	GroupForward    Group = "FW"
)

// Canonicalize maps a free-form label onto a canonical position. Unknown labels become CM.
func Canonicalize(raw string) Position {
	label := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case label == "":
		return CM
	case strings.Contains(label, "GK"), label == "GOALKEEPER", label == "KEEPER":
		return GK
	case strings.Contains(label, "CDM"), label == "DM":
		return CDM
	case strings.Contains(label, "CAM"), label == "AM":
		return CAM
	case strings.Contains(label, "RWB"):
		return RB
	case strings.Contains(label, "LWB"):
		return LB
	case strings.Contains(label, "CB"):
		return CB
	case strings.Contains(label, "RB"):
		return RB
	case strings.Contains(label, "LB"):
		return LB
	case strings.Contains(label, "CM"), label == "MID", label == "MF":
		return CM
	case strings.Contains(label, "RW"), label == "RM":
		return RW
	case strings.Contains(label, "LW"), label == "LM":
		return LW
	case strings.Contains(label, "ST"), strings.Contains(label, "CF"), label == "FW":
		return ST
	default:
		return CM
	}
}

// Parse accepts only exact canonical codes.
func Parse(raw string) (Position, error) {
	candidate := Position(strings.ToUpper(strings.TrimSpace(raw)))
	for _, p := range All {
		if p == candidate {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown canonical position %q", raw)
}

func (p Position) IsGoalkeeper() bool {
	return p == GK
}

// GroupOf buckets a free-form label for rating weights. It reads the raw label rather than the
// canonical code so wide midfielders (RM, LM) stay midfielders. Unknown labels are midfielders.
func GroupOf(raw string) Group {
	label := strings.ToUpper(strings.TrimSpace(raw))
	contains := func(parts ...string) bool {
		for _, part := range parts {
			if strings.Contains(label, part) {
				return true
			}
		}
		return false
	}
	switch {
	case contains("GK") || label == "GOALKEEPER" || label == "KEEPER":
		return GroupGoalkeeper
	case contains("CB", "RB", "LB", "WB"):
		return GroupDefender
	case contains("CDM", "CM", "CAM", "RM", "LM", "MF"):
		return GroupMidfielder
	case contains("ST", "CF", "RW", "LW", "FW"):
		return GroupForward
	default:
		return GroupMidfielder
	}
}

// similarity rows are keyed by slot, columns by the player's position.
var similarity = map[Position]map[Position]float64{
	RB:  {RB: 0, CB: 1, CDM: 2, LB: 3, CM: 4, RW: 5, LW: 6, CAM: 7, ST: 8},
	LB:  {LB: 0, CB: 1, CDM: 2, RB: 3, CM: 4, LW: 5, RW: 6, CAM: 7, ST: 8},
	CB:  {CB: 0, RB: 1, LB: 1, CDM: 2, CM: 3, RW: 5, LW: 5, ST: 7, CAM: 8},
	CDM: {CDM: 0, CM: 1, CB: 2, RB: 3, LB: 3, CAM: 4, RW: 5, LW: 5, ST: 6},
	CM:  {CM: 0, CDM: 1, CAM: 1, RW: 3, LW: 3, RB: 4, LB: 4, ST: 4, CB: 5},
	CAM: {CAM: 0, CM: 1, ST: 2, RW: 3, LW: 3, CDM: 4, RB: 6, LB: 6, CB: 7},
	ST:  {ST: 0, CAM: 2, RW: 3, LW: 3, CM: 4, CDM: 5, RB: 7, LB: 7, CB: 8},
	RW:  {RW: 0, ST: 3, CAM: 3, CM: 4, LW: 5, CDM: 6, RB: 6, LB: 7, CB: 8},
	LW:  {LW: 0, ST: 3, CAM: 3, CM: 4, RW: 5, CDM: 6, LB: 6, RB: 7, CB: 8},
}

// Cost is the substitution penalty of playing `player` in `slot`.
// Goalkeeper and outfield roles never substitute for each other.
func Cost(slot, player Position) float64 {
	if slot.IsGoalkeeper() != player.IsGoalkeeper() {
		return math.Inf(1)
	}
	if slot == player {
		return 0
	}
	if row, ok := similarity[slot]; ok {
		if cost, ok := row[player]; ok {
			return cost
		}
	}
	return MissingCost
}
