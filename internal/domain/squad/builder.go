package squad

import (
	"math"
	"sort"

	"github.com/riskibarqy/matchday/internal/domain/position"
)

// Partition is the output of the team split.
type Partition struct {
	A []string
	B []string
}

// Split divides attendees into two sides. Pinned attendees go straight to their side;
// the rest are shuffled and handed one by one to whichever side has the lower rating
// sum so far, with ties going to A. Duplicate uids are dropped.
func Split(attendees []Attendee, pins PinMap, rng RandomSource) Partition {
	if rng == nil {
		rng = DefaultRandomSource()
	}

	out := Partition{A: []string{}, B: []string{}}
	seen := make(map[string]struct{}, len(attendees))
	unpinned := make([]Attendee, 0, len(attendees))
	sumA, sumB := 0, 0

	for _, a := range attendees {
		if a.UID == "" {
			continue
		}
		if _, dup := seen[a.UID]; dup {
			continue
		}
		seen[a.UID] = struct{}{}

		switch pins[a.UID] {
		case TeamA:
			out.A = append(out.A, a.UID)
			sumA += a.Rating
		case TeamB:
			out.B = append(out.B, a.UID)
			sumB += a.Rating
		default:
			unpinned = append(unpinned, a)
		}
	}

	for i := len(unpinned) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		unpinned[i], unpinned[j] = unpinned[j], unpinned[i]
	}

	for _, a := range unpinned {
		if sumA <= sumB {
			out.A = append(out.A, a.UID)
			sumA += a.Rating
			continue
		}
		out.B = append(out.B, a.UID)
		sumB += a.Rating
	}

	return out
}

// SelectStarters picks up to needed starters from team. The best goalkeeper is always
// taken first; the remaining places go by rating across everyone else.
// Bench keeps the roster order.
func SelectStarters(team []string, roster Roster, needed int) (starters, bench []string) {
	starters = []string{}
	if needed <= 0 {
		return starters, append([]string{}, team...)
	}

	var keepers, field []string
	for _, uid := range team {
		if roster.Position(uid).IsGoalkeeper() {
			keepers = append(keepers, uid)
		} else {
			field = append(field, uid)
		}
	}
	byRating := func(ids []string) {
		sort.SliceStable(ids, func(i, j int) bool {
			return roster.Rating(ids[i]) > roster.Rating(ids[j])
		})
	}
	byRating(keepers)
	byRating(field)

	if len(keepers) > 0 {
		starters = append(starters, keepers[0])
		keepers = keepers[1:]
	}

	pool := make([]string, 0, len(keepers)+len(field))
	pool = append(pool, keepers...)
	pool = append(pool, field...)
	byRating(pool)

	remaining := needed - len(starters)
	if remaining > len(pool) {
		remaining = len(pool)
	}
	if remaining > 0 {
		starters = append(starters, pool[:remaining]...)
	}

	picked := make(map[string]struct{}, len(starters))
	for _, uid := range starters {
		picked[uid] = struct{}{}
	}
	bench = []string{}
	for _, uid := range team {
		if _, ok := picked[uid]; !ok {
			bench = append(bench, uid)
		}
	}

	return starters, bench
}

// AssignSlots places starters onto slots, returning one assignment per slot in order.
// Exact position matches are made first, highest rating winning. Remaining slots take
// the starter with the lowest cost*100 - rating; slots with no finite-cost candidate stay empty.
func AssignSlots(starters []string, slots []position.Position, roster Roster) []SlotAssignment {
	out := make([]SlotAssignment, len(slots))
	for i, slot := range slots {
		out[i] = SlotAssignment{Slot: slot}
	}

	available := make([]string, 0, len(starters))
	seen := make(map[string]struct{}, len(starters))
	for _, uid := range starters {
		if _, dup := seen[uid]; dup || uid == "" {
			continue
		}
		seen[uid] = struct{}{}
		available = append(available, uid)
	}
	take := func(idx int) string {
		uid := available[idx]
		available = append(available[:idx], available[idx+1:]...)
		return uid
	}

	for i := range out {
		best := -1
		for j, uid := range available {
			if roster.Position(uid) != out[i].Slot {
				continue
			}
			if best < 0 || roster.Rating(uid) > roster.Rating(available[best]) {
				best = j
			}
		}
		if best >= 0 {
			out[i].UID = take(best)
		}
	}

	for i := range out {
		if out[i].Filled() || len(available) == 0 {
			continue
		}
		best := -1
		bestScore := math.Inf(1)
		for j, uid := range available {
			cost := position.Cost(out[i].Slot, roster.Position(uid))
			if math.IsInf(cost, 1) {
				continue
			}
			score := cost*100 - float64(roster.Rating(uid))
			if score < bestScore {
				bestScore = score
				best = j
			}
		}
		if best >= 0 {
			out[i].UID = take(best)
		}
	}

	return out
}

// Build runs split, starter selection and slot assignment for both sides.
// Starters that no slot could take are returned to the bench.
func Build(attendees []Attendee, pins PinMap, formationA, formationB position.Formation, rng RandomSource) Squad {
	roster := NewRoster(attendees)
	split := Split(attendees, pins, rng)

	return Squad{
		A: buildSide(split.A, formationA, roster),
		B: buildSide(split.B, formationB, roster),
	}
}

func buildSide(team []string, formation position.Formation, roster Roster) Side {
	starters, _ := SelectStarters(team, roster, formation.Size())
	slots := AssignSlots(starters, formation.Slots, roster)

	slotted := make(map[string]struct{}, len(slots))
	for _, s := range slots {
		if s.Filled() {
			slotted[s.UID] = struct{}{}
		}
	}
	bench := make([]string, 0, len(team))
	for _, uid := range team {
		if _, ok := slotted[uid]; !ok {
			bench = append(bench, uid)
		}
	}

	return Side{
		Formation: formation.Name,
		Roster:    append([]string{}, team...),
		Slots:     slots,
		Bench:     bench,
	}
}

// RatingGap is the absolute difference between both sides' rating sums.
func RatingGap(s Squad, roster Roster) int {
	gap := roster.RatingSum(s.A.Roster) - roster.RatingSum(s.B.Roster)
	if gap < 0 {
		return -gap
	}
	return gap
}
