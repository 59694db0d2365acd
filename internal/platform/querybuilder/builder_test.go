package querybuilder

import (
	"testing"
	"time"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("public_id", "name").
		From("players").
		Where(InStrings("public_id", []string{"p1", "p2"}), Eq("position", "ST")).
		OrderBy("id").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT public_id, name FROM players WHERE public_id IN ($1, $2) AND position = $3 ORDER BY id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "p1" || args[1] != "p2" || args[2] != "ST" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderForUpdate(t *testing.T) {
	query, args, err := Select("public_id", "stats").
		From("players").
		Where(InStrings("public_id", []string{"p1", "p2"})).
		OrderBy("public_id").
		ForUpdate().
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	want := "SELECT public_id, stats FROM players WHERE public_id IN ($1, $2) ORDER BY public_id FOR UPDATE"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestEmptyInMatchesNothing(t *testing.T) {
	query, args, err := Select("*").From("players").Where(InStrings("public_id", nil)).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT * FROM players WHERE 1=0" || len(args) != 0 {
		t.Fatalf("unexpected query %q args %+v", query, args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("vote_tallies").
		Columns("user_id", "category", "votes").
		Values("u1", "mvp", 3).
		Suffix("ON CONFLICT (user_id, category) DO UPDATE SET votes = vote_tallies.votes + EXCLUDED.votes RETURNING votes").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO vote_tallies (user_id, category, votes) VALUES ($1, $2, $3) ON CONFLICT (user_id, category) DO UPDATE SET votes = vote_tallies.votes + EXCLUDED.votes RETURNING votes"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "u1" || args[2] != 3 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilderRejectsRaggedRows(t *testing.T) {
	_, _, err := InsertInto("players").Columns("public_id", "name").Values("p1").ToSQL()
	if err == nil {
		t.Fatalf("expected error for short row")
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("matches").
		Set("ballots_received", 2).
		SetExpr("stats_calculated", "stats_calculated OR ?", true).
		SetExpr("version", "version + 1").
		Where(Eq("public_id", "m1"), Eq("ballots_received", 1)).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE matches SET ballots_received = $1, stats_calculated = stats_calculated OR $2, version = version + 1 WHERE public_id = $3 AND ballots_received = $4"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[0] != 2 || args[1] != true || args[2] != "m1" || args[3] != 1 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModelSkipsReadonlyColumns(t *testing.T) {
	type row struct {
		ID        int64     `db:"id,readonly"`
		PublicID  string    `db:"public_id"`
		Name      string    `db:"name"`
		CreatedAt time.Time `db:"created_at"`
		internal  string
	}
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	query, args, err := InsertModel("players", row{ID: 9, PublicID: "p1", Name: "Ana", CreatedAt: now, internal: "x"}, "")
	if err != nil {
		t.Fatalf("build insert model query: %v", err)
	}
	want := "INSERT INTO players (public_id, name, created_at) VALUES ($1, $2, $3)"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 3 || args[0] != "p1" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := InsertModel("players", (*row)(nil), ""); err == nil {
		t.Fatalf("expected error for nil model")
	}
}
