package memory

import (
	"context"

	"github.com/riskibarqy/matchday/internal/domain/squad"
)

type SquadRepository struct {
	store *Store
}

func (r *SquadRepository) GetByMatch(_ context.Context, matchID string) (squad.Saved, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.squads[matchID]
	if !ok {
		return squad.Saved{}, false, nil
	}
	return item.Clone(), true, nil
}

// Save keeps one squad per match; a rebuild replaces the previous one.
func (r *SquadRepository) Save(_ context.Context, item squad.Saved) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.squads[item.MatchID] = item.Clone()
	return nil
}
