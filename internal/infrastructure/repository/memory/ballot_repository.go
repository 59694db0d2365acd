package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/rating"
)

type BallotRepository struct {
	store *Store
}

func (r *BallotRepository) ListByMatch(_ context.Context, matchID string) ([]rating.Ballot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	byVoter := r.store.ballots[matchID]
	out := make([]rating.Ballot, 0, len(byVoter))
	for _, b := range byVoter {
		out = append(out, b.Clone())
	}
	rating.SortBallots(out)
	return out, nil
}

func (r *BallotRepository) HasBallot(_ context.Context, matchID, voterID string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, ok := r.store.ballots[matchID][voterID]
	return ok, nil
}

func (r *BallotRepository) LoadTally(_ context.Context, candidateIDs, ballotKeys []string) (rating.Tally, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := rating.NewTally()
	for category, byUID := range r.store.tally.Counts {
		for _, uid := range candidateIDs {
			if n, ok := byUID[uid]; ok {
				if out.Counts[category] == nil {
					out.Counts[category] = make(map[string]int)
				}
				out.Counts[category][uid] = n
			}
		}
	}
	for _, key := range ballotKeys {
		if r.store.tally.HasCounted(key) {
			out.Counted[key] = struct{}{}
		}
	}
	return out, nil
}

// Commit applies a ballot and, when final, the staged aggregation under the store lock.
// The staged values are only written over the rows they were computed from.
func (r *BallotRepository) Commit(_ context.Context, c rating.Commit) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.matches[c.Ballot.MatchID]
	if !ok {
		return fmt.Errorf("match %s not found", c.Ballot.MatchID)
	}
	if item.BallotsReceived != c.ExpectedReceived {
		return match.ErrVersionConflict
	}
	if _, exists := r.store.ballots[item.ID][c.Ballot.VoterID]; exists {
		return rating.ErrDuplicateBallot
	}
	if c.Final {
		for uid := range c.Ratings {
			p, ok := r.store.players[uid]
			if !ok {
				return fmt.Errorf("player %s not found", uid)
			}
			if !p.Stats.Equal(c.PriorRatings[uid]) {
				return fmt.Errorf("%w: stats of player %s changed", rating.ErrStaleSnapshot, uid)
			}
		}
		for _, entry := range c.TallyChanges {
			if got := r.store.tally.Count(entry.Category, entry.UID); got != entry.Prior {
				return fmt.Errorf("%w: %s tally of %s is %d, read %d", rating.ErrStaleSnapshot, entry.Category, entry.UID, got, entry.Prior)
			}
		}
	}

	if r.store.ballots[item.ID] == nil {
		r.store.ballots[item.ID] = make(map[string]rating.Ballot)
	}
	r.store.ballots[item.ID][c.Ballot.VoterID] = c.Ballot.Clone()
	item.BallotsReceived = c.ExpectedReceived + 1
	item.UpdatedAt = c.Ballot.SubmittedAt

	if c.Final {
		for uid, line := range c.Ratings {
			p := r.store.players[uid]
			p.Stats = line.Clone()
			p.Rating = c.Overall[uid]
			p.UpdatedAt = c.Ballot.SubmittedAt
			r.store.players[uid] = p
		}
		for _, entry := range c.TallyChanges {
			if r.store.tally.Counts[entry.Category] == nil {
				r.store.tally.Counts[entry.Category] = make(map[string]int)
			}
			r.store.tally.Counts[entry.Category][entry.UID] = entry.Votes
		}
		for _, key := range c.CountedKeys {
			r.store.tally.Counted[key] = struct{}{}
		}
		item.StatsCalculated = true
	}

	r.store.matches[item.ID] = item
	return nil
}
