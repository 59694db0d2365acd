package postgres

import "time"

type playerTableModel struct {
	ID        int64     `db:"id,readonly"`
	PublicID  string    `db:"public_id"`
	Name      string    `db:"name"`
	Position  string    `db:"position"`
	Rating    int       `db:"rating"`
	Stats     []byte    `db:"stats"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
