package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/rating"
	"github.com/riskibarqy/matchday/internal/domain/squad"
	qb "github.com/riskibarqy/matchday/internal/platform/querybuilder"
)

type BallotRepository struct {
	db *sqlx.DB
}

func NewBallotRepository(db *sqlx.DB) *BallotRepository {
	return &BallotRepository{db: db}
}

func (r *BallotRepository) ListByMatch(ctx context.Context, matchID string) ([]rating.Ballot, error) {
	query, args, err := qb.Select("match_public_id", "voter_id", "team", "votes", "answers", "submitted_at").
		From("match_ballots").
		Where(qb.Eq("match_public_id", matchID)).
		OrderBy("submitted_at", "voter_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list ballots query: %w", err)
	}

	var rows []ballotTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list ballots: %w", err)
	}

	out := make([]rating.Ballot, 0, len(rows))
	for _, row := range rows {
		b := rating.Ballot{
			MatchID:     row.MatchPublicID,
			VoterID:     row.VoterID,
			Votes:       map[string]string{},
			Answers:     map[string]float64{},
			SubmittedAt: row.SubmittedAt,
		}
		if team, ok := squad.ParseTeam(row.Team); ok {
			b.Team = team
		}
		if err := decodeJSON(row.Votes, &b.Votes); err != nil {
			return nil, fmt.Errorf("decode votes for voter=%s: %w", row.VoterID, err)
		}
		if err := decodeJSON(row.Answers, &b.Answers); err != nil {
			return nil, fmt.Errorf("decode answers for voter=%s: %w", row.VoterID, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *BallotRepository) HasBallot(ctx context.Context, matchID, voterID string) (bool, error) {
	query, args, err := qb.Select("COUNT(1) > 0").From("match_ballots").
		Where(qb.Eq("match_public_id", matchID), qb.Eq("voter_id", voterID)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build check ballot query: %w", err)
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, fmt.Errorf("check ballot: %w", err)
	}
	return exists, nil
}

func (r *BallotRepository) LoadTally(ctx context.Context, candidateIDs, ballotKeys []string) (rating.Tally, error) {
	out := rating.NewTally()

	if len(candidateIDs) > 0 {
		query, args, err := qb.Select("user_id", "category", "votes").From("vote_tallies").
			Where(qb.InStrings("user_id", candidateIDs)).
			ToSQL()
		if err != nil {
			return rating.Tally{}, fmt.Errorf("build list vote tallies query: %w", err)
		}
		var rows []tallyTableModel
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return rating.Tally{}, fmt.Errorf("list vote tallies: %w", err)
		}
		for _, row := range rows {
			if out.Counts[row.Category] == nil {
				out.Counts[row.Category] = make(map[string]int)
			}
			out.Counts[row.Category][row.UserID] = row.Votes
		}
	}

	if len(ballotKeys) > 0 {
		query, args, err := qb.Select("ballot_key").From("vote_tally_ledger").
			Where(qb.InStrings("ballot_key", ballotKeys)).
			ToSQL()
		if err != nil {
			return rating.Tally{}, fmt.Errorf("build list tally ledger query: %w", err)
		}
		var keys []string
		if err := r.db.SelectContext(ctx, &keys, query, args...); err != nil {
			return rating.Tally{}, fmt.Errorf("list tally ledger: %w", err)
		}
		for _, key := range keys {
			out.Counted[key] = struct{}{}
		}
	}

	return out, nil
}

// Commit writes the ballot, advances the progress counter guarded by the expected value and,
// for the final ballot, applies stats, tallies and the ledger in the same transaction.
func (r *BallotRepository) Commit(ctx context.Context, c rating.Commit) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for ballot commit: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	progressSQL, progressArgs, err := qb.Update("matches").
		Set("ballots_received", c.ExpectedReceived+1).
		SetExpr("stats_calculated", "stats_calculated OR ?", c.Final).
		SetExpr("version", "version + 1").
		Set("updated_at", c.Ballot.SubmittedAt).
		Where(
			qb.Eq("public_id", c.Ballot.MatchID),
			qb.Eq("ballots_received", c.ExpectedReceived),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build ballot progress query: %w", err)
	}
	res, err := tx.ExecContext(ctx, progressSQL, progressArgs...)
	if err != nil {
		return fmt.Errorf("advance ballot progress: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("advance ballot progress rows affected: %w", err)
	}
	if affected == 0 {
		return match.ErrVersionConflict
	}

	votes, err := encodeJSON(c.Ballot.Votes)
	if err != nil {
		return fmt.Errorf("encode ballot votes: %w", err)
	}
	answers, err := encodeJSON(c.Ballot.Answers)
	if err != nil {
		return fmt.Errorf("encode ballot answers: %w", err)
	}

	ballotSQL, ballotArgs, err := qb.InsertModel("match_ballots", ballotTableModel{
		MatchPublicID: c.Ballot.MatchID,
		VoterID:       c.Ballot.VoterID,
		Team:          string(c.Ballot.Team),
		Votes:         votes,
		Answers:       answers,
		SubmittedAt:   c.Ballot.SubmittedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert ballot query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, ballotSQL, ballotArgs...); err != nil {
		if isUniqueViolation(err) {
			return rating.ErrDuplicateBallot
		}
		return fmt.Errorf("insert ballot: %w", err)
	}

	if c.Final {
		if err := applyAggregation(ctx, tx, c); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ballot tx: %w", err)
	}
	return nil
}

// applyAggregation writes the staged outcome over rows locked in this transaction. Stats are
// locked with SELECT ... FOR UPDATE and must still equal what the aggregation read; tallies are
// incremented in place and must land on the staged totals. Anything else is ErrStaleSnapshot.
func applyAggregation(ctx context.Context, tx *sqlx.Tx, c rating.Commit) error {
	if err := checkPlayerStats(ctx, tx, c); err != nil {
		return err
	}

	for uid, line := range c.Ratings {
		stats, err := encodeJSON(line)
		if err != nil {
			return fmt.Errorf("encode stats player=%s: %w", uid, err)
		}
		query, args, err := qb.Update("players").
			Set("stats", stats).
			Set("rating", c.Overall[uid]).
			Set("updated_at", c.Ballot.SubmittedAt).
			Where(qb.Eq("public_id", uid)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build update stats player=%s query: %w", uid, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update stats player=%s: %w", uid, err)
		}
	}

	if err := incrementTallies(ctx, tx, c); err != nil {
		return err
	}

	if len(c.CountedKeys) > 0 {
		const ledgerQuery = `
INSERT INTO vote_tally_ledger (ballot_key)
SELECT UNNEST($1::text[])
ON CONFLICT (ballot_key) DO NOTHING`
		if _, err := tx.ExecContext(ctx, ledgerQuery, pq.Array(c.CountedKeys)); err != nil {
			return fmt.Errorf("record counted ballots: %w", err)
		}
	}
	return nil
}

func checkPlayerStats(ctx context.Context, tx *sqlx.Tx, c rating.Commit) error {
	if len(c.Ratings) == 0 {
		return nil
	}
	uids := make([]string, 0, len(c.Ratings))
	for uid := range c.Ratings {
		uids = append(uids, uid)
	}
	sort.Strings(uids)

	query, args, err := qb.Select("public_id", "stats").From("players").
		Where(qb.InStrings("public_id", uids)).
		OrderBy("public_id").
		ForUpdate().
		ToSQL()
	if err != nil {
		return fmt.Errorf("build lock players query: %w", err)
	}
	var rows []playerStatsRow
	if err := tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("lock players: %w", err)
	}
	if len(rows) != len(uids) {
		return fmt.Errorf("lock players: found %d of %d", len(rows), len(uids))
	}

	for _, row := range rows {
		current := rating.StatLine{}
		if err := decodeJSON(row.Stats, &current); err != nil {
			return fmt.Errorf("decode stats player=%s: %w", row.PublicID, err)
		}
		if !current.Equal(c.PriorRatings[row.PublicID]) {
			return fmt.Errorf("%w: stats of player %s changed", rating.ErrStaleSnapshot, row.PublicID)
		}
	}
	return nil
}

func incrementTallies(ctx context.Context, tx *sqlx.Tx, c rating.Commit) error {
	if len(c.TallyChanges) == 0 {
		return nil
	}

	want := make(map[[2]string]int, len(c.TallyChanges))
	insert := qb.InsertInto("vote_tallies").Columns("user_id", "category", "votes", "updated_at")
	for _, entry := range c.TallyChanges {
		insert.Values(entry.UID, entry.Category, entry.Votes-entry.Prior, c.Ballot.SubmittedAt)
		want[[2]string{entry.UID, entry.Category}] = entry.Votes
	}
	query, args, err := insert.
		Suffix("ON CONFLICT (user_id, category) DO UPDATE SET votes = vote_tallies.votes + EXCLUDED.votes, updated_at = EXCLUDED.updated_at RETURNING user_id, category, votes").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build increment tallies query: %w", err)
	}

	var rows []tallyTableModel
	if err := tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("increment tallies: %w", err)
	}
	for _, row := range rows {
		if expected := want[[2]string{row.UserID, row.Category}]; row.Votes != expected {
			return fmt.Errorf("%w: %s tally of %s is %d, expected %d", rating.ErrStaleSnapshot, row.Category, row.UserID, row.Votes, expected)
		}
	}
	return nil
}
