package squad

import "context"

// Repository persists the latest built squad per match.
type Repository interface {
	GetByMatch(ctx context.Context, matchID string) (Saved, bool, error)
	Save(ctx context.Context, item Saved) error
}
