package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday/internal/domain/squad"
	qb "github.com/riskibarqy/matchday/internal/platform/querybuilder"
)

type SquadRepository struct {
	db *sqlx.DB
}

func NewSquadRepository(db *sqlx.DB) *SquadRepository {
	return &SquadRepository{db: db}
}

func (r *SquadRepository) GetByMatch(ctx context.Context, matchID string) (squad.Saved, bool, error) {
	query, args, err := qb.Select("public_id", "match_public_id", "squad", "pins", "rating_a", "rating_b", "built_at", "updated_at").
		From("match_squads").
		Where(qb.Eq("match_public_id", matchID)).
		ToSQL()
	if err != nil {
		return squad.Saved{}, false, fmt.Errorf("build select squad query: %w", err)
	}

	var row squadTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return squad.Saved{}, false, nil
		}
		return squad.Saved{}, false, fmt.Errorf("get squad: %w", err)
	}

	var doc squadDocument
	if err := decodeJSON(row.Squad, &doc); err != nil {
		return squad.Saved{}, false, fmt.Errorf("decode squad for match=%s: %w", matchID, err)
	}
	pins, err := decodePins(row.Pins)
	if err != nil {
		return squad.Saved{}, false, fmt.Errorf("decode squad pins for match=%s: %w", matchID, err)
	}

	return squad.Saved{
		ID:        row.PublicID,
		MatchID:   row.MatchPublicID,
		Squad:     doc.toDomain(),
		Pins:      pins,
		RatingA:   row.RatingA,
		RatingB:   row.RatingB,
		BuiltAt:   row.BuiltAt,
		UpdatedAt: row.UpdatedAt,
	}, true, nil
}

// Save upserts the one squad kept per match.
func (r *SquadRepository) Save(ctx context.Context, item squad.Saved) error {
	doc, err := encodeJSON(toSquadDocument(item.Squad))
	if err != nil {
		return fmt.Errorf("encode squad: %w", err)
	}
	pins := make(map[string]string, len(item.Pins))
	for uid, team := range item.Pins {
		pins[uid] = string(team)
	}
	rawPins, err := encodeJSON(pins)
	if err != nil {
		return fmt.Errorf("encode squad pins: %w", err)
	}

	query, args, err := qb.InsertModel("match_squads", squadTableModel{
		PublicID:      item.ID,
		MatchPublicID: item.MatchID,
		Squad:         doc,
		Pins:          rawPins,
		RatingA:       item.RatingA,
		RatingB:       item.RatingB,
		BuiltAt:       item.BuiltAt,
		UpdatedAt:     item.UpdatedAt,
	}, `ON CONFLICT (match_public_id) DO UPDATE SET
    public_id = EXCLUDED.public_id,
    squad = EXCLUDED.squad,
    pins = EXCLUDED.pins,
    rating_a = EXCLUDED.rating_a,
    rating_b = EXCLUDED.rating_b,
    built_at = EXCLUDED.built_at,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert squad query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert squad: %w", err)
	}
	return nil
}
