package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type matchTableModel struct {
	ID              int64          `db:"id,readonly"`
	PublicID        string         `db:"public_id"`
	Title           string         `db:"title"`
	ScheduledAt     time.Time      `db:"scheduled_at"`
	Status          string         `db:"status"`
	AttendeeIDs     pq.StringArray `db:"attendee_ids"`
	Pins            []byte         `db:"pins"`
	FormationA      string         `db:"formation_a"`
	FormationB      string         `db:"formation_b"`
	ScoreA          sql.NullInt64  `db:"score_a"`
	ScoreB          sql.NullInt64  `db:"score_b"`
	EligibleVoters  pq.StringArray `db:"eligible_voters"`
	BallotsReceived int            `db:"ballots_received"`
	StatsCalculated bool           `db:"stats_calculated"`
	Version         int64          `db:"version"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}
