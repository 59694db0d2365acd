package postgres

import "time"

type ballotTableModel struct {
	MatchPublicID string    `db:"match_public_id"`
	VoterID       string    `db:"voter_id"`
	Team          string    `db:"team"`
	Votes         []byte    `db:"votes"`
	Answers       []byte    `db:"answers"`
	SubmittedAt   time.Time `db:"submitted_at"`
}

type tallyTableModel struct {
	UserID   string `db:"user_id"`
	Category string `db:"category"`
	Votes    int    `db:"votes"`
}

type playerStatsRow struct {
	PublicID string `db:"public_id"`
	Stats    []byte `db:"stats"`
}
