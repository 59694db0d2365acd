package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/player"
	"github.com/riskibarqy/matchday/internal/domain/rating"
	"github.com/riskibarqy/matchday/internal/domain/squad"
	basecache "github.com/riskibarqy/matchday/internal/platform/cache"
)

const (
	playerKeyPrefix = "player:"
	squadKeyPrefix  = "squad:"
)

type lookup[V any] struct {
	value  V
	exists bool
}

// Stores holds the per-type caches shared by the decorators so writes through one
// repository can evict entries read through another.
type Stores struct {
	players *basecache.Store[lookup[player.Player]]
	squads  *basecache.Store[lookup[squad.Saved]]
}

func NewStores(ttl time.Duration) *Stores {
	return &Stores{
		players: basecache.NewStore[lookup[player.Player]](ttl),
		squads:  basecache.NewStore[lookup[squad.Saved]](ttl),
	}
}

// PlayerRepository caches profile reads. GetByIDs is not cached: it feeds aggregation,
// which must see the stats of the last commit.
type PlayerRepository struct {
	next   player.Repository
	stores *Stores
}

func NewPlayerRepository(next player.Repository, stores *Stores) *PlayerRepository {
	return &PlayerRepository{next: next, stores: stores}
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	v, err := r.stores.players.GetOrLoad(ctx, playerKeyPrefix+playerID, func(ctx context.Context) (lookup[player.Player], error) {
		item, exists, err := r.next.GetByID(ctx, playerID)
		if err != nil {
			return lookup[player.Player]{}, err
		}
		return lookup[player.Player]{value: item, exists: exists}, nil
	})
	if err != nil {
		return player.Player{}, false, err
	}
	return v.value.Clone(), v.exists, nil
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []string) ([]player.Player, error) {
	return r.next.GetByIDs(ctx, playerIDs)
}

func (r *PlayerRepository) Create(ctx context.Context, item player.Player) error {
	if err := r.next.Create(ctx, item); err != nil {
		return err
	}
	r.stores.players.Delete(ctx, playerKeyPrefix+item.ID)
	return nil
}

type SquadRepository struct {
	next   squad.Repository
	stores *Stores
}

func NewSquadRepository(next squad.Repository, stores *Stores) *SquadRepository {
	return &SquadRepository{next: next, stores: stores}
}

func (r *SquadRepository) GetByMatch(ctx context.Context, matchID string) (squad.Saved, bool, error) {
	v, err := r.stores.squads.GetOrLoad(ctx, squadKeyPrefix+matchID, func(ctx context.Context) (lookup[squad.Saved], error) {
		item, exists, err := r.next.GetByMatch(ctx, matchID)
		if err != nil {
			return lookup[squad.Saved]{}, err
		}
		return lookup[squad.Saved]{value: item, exists: exists}, nil
	})
	if err != nil {
		return squad.Saved{}, false, err
	}
	return v.value.Clone(), v.exists, nil
}

func (r *SquadRepository) Save(ctx context.Context, item squad.Saved) error {
	if err := r.next.Save(ctx, item); err != nil {
		return err
	}
	r.stores.squads.Delete(ctx, squadKeyPrefix+item.MatchID)
	return nil
}

// BallotRepository passes everything through and evicts the players a final commit rewrote.
type BallotRepository struct {
	next   rating.Repository
	stores *Stores
}

func NewBallotRepository(next rating.Repository, stores *Stores) *BallotRepository {
	return &BallotRepository{next: next, stores: stores}
}

func (r *BallotRepository) ListByMatch(ctx context.Context, matchID string) ([]rating.Ballot, error) {
	return r.next.ListByMatch(ctx, matchID)
}

func (r *BallotRepository) HasBallot(ctx context.Context, matchID, voterID string) (bool, error) {
	return r.next.HasBallot(ctx, matchID, voterID)
}

func (r *BallotRepository) LoadTally(ctx context.Context, candidateIDs, ballotKeys []string) (rating.Tally, error) {
	return r.next.LoadTally(ctx, candidateIDs, ballotKeys)
}

func (r *BallotRepository) Commit(ctx context.Context, c rating.Commit) error {
	if err := r.next.Commit(ctx, c); err != nil {
		return err
	}
	if len(c.Ratings) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.Ratings))
	for uid := range c.Ratings {
		keys = append(keys, playerKeyPrefix+uid)
	}
	r.stores.players.Delete(ctx, keys...)
	return nil
}
