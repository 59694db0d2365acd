package squad

import (
	"math"
	"math/rand/v2"

	"github.com/riskibarqy/matchday/internal/domain/position"
)

// RandomSource drives the shuffle step. *rand.Rand satisfies it.
type RandomSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int {
	return rand.IntN(n)
}

// DefaultRandomSource is safe for concurrent use.
func DefaultRandomSource() RandomSource {
	return globalSource{}
}

// NewSeededSource returns a deterministic source. It is not safe for concurrent use.
func NewSeededSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Roster indexes attendees by uid. Unknown uids resolve to the default rating and CM.
type Roster map[string]Attendee

func NewRoster(attendees []Attendee) Roster {
	out := make(Roster, len(attendees))
	for _, a := range attendees {
		if a.UID == "" {
			continue
		}
		if _, exists := out[a.UID]; exists {
			continue
		}
		out[a.UID] = a
	}
	return out
}

func (r Roster) Rating(uid string) int {
	if a, ok := r[uid]; ok {
		return a.Rating
	}
	return DefaultRating
}

func (r Roster) Position(uid string) position.Position {
	if a, ok := r[uid]; ok {
		return a.Canonical()
	}
	return position.CM
}

// RatingSum adds up ratings for uids.
func (r Roster) RatingSum(uids []string) int {
	total := 0
	for _, uid := range uids {
		total += r.Rating(uid)
	}
	return total
}

// AverageRating is the rounded mean rating of uids, 0 for an empty list.
func (r Roster) AverageRating(uids []string) int {
	if len(uids) == 0 {
		return 0
	}
	return int(math.Round(float64(r.RatingSum(uids)) / float64(len(uids))))
}
