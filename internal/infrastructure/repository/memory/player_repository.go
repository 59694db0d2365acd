package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/matchday/internal/domain/player"
)

type PlayerRepository struct {
	store *Store
}

func (r *PlayerRepository) GetByID(_ context.Context, playerID string) (player.Player, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.players[playerID]
	if !ok {
		return player.Player{}, false, nil
	}
	return item.Clone(), true, nil
}

func (r *PlayerRepository) GetByIDs(_ context.Context, playerIDs []string) ([]player.Player, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]player.Player, 0, len(playerIDs))
	for _, id := range playerIDs {
		item, ok := r.store.players[id]
		if !ok {
			continue
		}
		out = append(out, item.Clone())
	}
	return out, nil
}

func (r *PlayerRepository) Create(_ context.Context, item player.Player) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.players[item.ID]; exists {
		return fmt.Errorf("player %s already exists", item.ID)
	}
	r.store.players[item.ID] = item.Clone()
	return nil
}
