package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/matchday/internal/domain/match"
)

type MatchRepository struct {
	store *Store
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.matches[matchID]
	if !ok {
		return match.Match{}, false, nil
	}
	return item.Clone(), true, nil
}

func (r *MatchRepository) Create(_ context.Context, item match.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.matches[item.ID]; exists {
		return fmt.Errorf("match %s already exists", item.ID)
	}
	r.store.matches[item.ID] = item.Clone()
	return nil
}

// Update replaces the match details. Ballot progress is owned by the ballot commit and is
// not overwritten here.
func (r *MatchRepository) Update(_ context.Context, item match.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.matches[item.ID]
	if !ok {
		return fmt.Errorf("match %s not found", item.ID)
	}
	next := item.Clone()
	if current.Completed() {
		next.BallotsReceived = current.BallotsReceived
		next.StatsCalculated = current.StatsCalculated
	}
	r.store.matches[item.ID] = next
	return nil
}
