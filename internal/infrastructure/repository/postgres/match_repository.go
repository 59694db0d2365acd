package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/squad"
	qb "github.com/riskibarqy/matchday/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("public_id", matchID)).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match: %w", err)
	}

	item, err := mapMatchRow(row)
	if err != nil {
		return match.Match{}, false, err
	}
	return item, true, nil
}

func (r *MatchRepository) Create(ctx context.Context, item match.Match) error {
	row, err := toMatchRow(item)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel("matches", row, "")
	if err != nil {
		return fmt.Errorf("build insert match query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

// Update writes match details. ballots_received and stats_calculated belong to the ballot commit.
func (r *MatchRepository) Update(ctx context.Context, item match.Match) error {
	row, err := toMatchRow(item)
	if err != nil {
		return err
	}

	query, args, err := qb.Update("matches").
		Set("title", row.Title).
		Set("scheduled_at", row.ScheduledAt).
		Set("status", row.Status).
		Set("attendee_ids", row.AttendeeIDs).
		Set("pins", row.Pins).
		Set("formation_a", row.FormationA).
		Set("formation_b", row.FormationB).
		Set("score_a", row.ScoreA).
		Set("score_b", row.ScoreB).
		Set("eligible_voters", row.EligibleVoters).
		SetExpr("version", "version + 1").
		Set("updated_at", row.UpdatedAt).
		Where(qb.Eq("public_id", row.PublicID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update match rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update match: %w", sql.ErrNoRows)
	}
	return nil
}

func toMatchRow(item match.Match) (matchTableModel, error) {
	pins := make(map[string]string, len(item.Pins))
	for uid, team := range item.Pins {
		pins[uid] = string(team)
	}
	rawPins, err := encodeJSON(pins)
	if err != nil {
		return matchTableModel{}, fmt.Errorf("encode match pins: %w", err)
	}

	row := matchTableModel{
		PublicID:        item.ID,
		Title:           item.Title,
		ScheduledAt:     item.ScheduledAt,
		Status:          string(item.Status),
		AttendeeIDs:     pq.StringArray(nonNilStrings(item.AttendeeIDs)),
		Pins:            rawPins,
		FormationA:      item.FormationA,
		FormationB:      item.FormationB,
		EligibleVoters:  pq.StringArray(nonNilStrings(item.EligibleVoters)),
		BallotsReceived: item.BallotsReceived,
		StatsCalculated: item.StatsCalculated,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
	if item.Score != nil {
		row.ScoreA = sql.NullInt64{Int64: int64(item.Score.A), Valid: true}
		row.ScoreB = sql.NullInt64{Int64: int64(item.Score.B), Valid: true}
	}
	return row, nil
}

func mapMatchRow(row matchTableModel) (match.Match, error) {
	pins, err := decodePins(row.Pins)
	if err != nil {
		return match.Match{}, fmt.Errorf("decode pins for match=%s: %w", row.PublicID, err)
	}

	item := match.Match{
		ID:              row.PublicID,
		Title:           row.Title,
		ScheduledAt:     row.ScheduledAt,
		Status:          match.Status(row.Status),
		AttendeeIDs:     []string(row.AttendeeIDs),
		Pins:            pins,
		FormationA:      row.FormationA,
		FormationB:      row.FormationB,
		EligibleVoters:  []string(row.EligibleVoters),
		BallotsReceived: row.BallotsReceived,
		StatsCalculated: row.StatsCalculated,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if row.ScoreA.Valid && row.ScoreB.Valid {
		item.Score = &match.Score{A: int(row.ScoreA.Int64), B: int(row.ScoreB.Int64)}
	}
	return item, nil
}

// decodePins drops entries whose team no longer parses.
func decodePins(raw []byte) (squad.PinMap, error) {
	rawPins := map[string]string{}
	if err := decodeJSON(raw, &rawPins); err != nil {
		return nil, err
	}
	pins := make(squad.PinMap, len(rawPins))
	for uid, value := range rawPins {
		if team, ok := squad.ParseTeam(value); ok {
			pins[uid] = team
		}
	}
	return pins, nil
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
