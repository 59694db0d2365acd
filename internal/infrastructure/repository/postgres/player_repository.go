package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday/internal/domain/player"
	"github.com/riskibarqy/matchday/internal/domain/rating"
	qb "github.com/riskibarqy/matchday/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

var playerColumns = []string{"id", "public_id", "name", "position", "rating", "stats", "created_at", "updated_at"}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	query, args, err := qb.Select(playerColumns...).From("players").
		Where(qb.Eq("public_id", playerID)).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build select player query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player: %w", err)
	}

	item, err := mapPlayerRow(row)
	if err != nil {
		return player.Player{}, false, err
	}
	return item, true, nil
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []string) ([]player.Player, error) {
	if len(playerIDs) == 0 {
		return nil, nil
	}
	query, args, err := qb.Select(playerColumns...).From("players").
		Where(qb.InStrings("public_id", playerIDs)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by ids query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get players by ids: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		item, err := mapPlayerRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *PlayerRepository) Create(ctx context.Context, item player.Player) error {
	stats, err := encodeJSON(item.Stats)
	if err != nil {
		return fmt.Errorf("encode player stats: %w", err)
	}

	query, args, err := qb.InsertModel("players", playerTableModel{
		PublicID:  item.ID,
		Name:      item.Name,
		Position:  item.Position,
		Rating:    item.Rating,
		Stats:     stats,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert player query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

func mapPlayerRow(row playerTableModel) (player.Player, error) {
	stats := rating.StatLine{}
	if err := decodeJSON(row.Stats, &stats); err != nil {
		return player.Player{}, fmt.Errorf("decode stats for player=%s: %w", row.PublicID, err)
	}
	return player.Player{
		ID:        row.PublicID,
		Name:      row.Name,
		Position:  row.Position,
		Rating:    row.Rating,
		Stats:     stats,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
