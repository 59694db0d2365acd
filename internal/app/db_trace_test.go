package app

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFormatDBQueryForTrace(t *testing.T) {
	got := formatDBQueryForTrace(" SELECT   *\nFROM matches \t WHERE public_id = $1 ")
	want := "SELECT * FROM matches WHERE public_id = $1"
	if got != want {
		t.Fatalf("unexpected formatted query: %q", got)
	}
}

func TestFormatDBQueryForTraceCollapsesPlaceholderLists(t *testing.T) {
	cases := []struct {
		query string
		want  string
	}{
		{
			query: "SELECT public_id, stats FROM players WHERE public_id IN ($1, $2, $3, $4, $5) ORDER BY public_id FOR UPDATE",
			want:  "SELECT public_id, stats FROM players WHERE public_id IN ($1, ..., $5) ORDER BY public_id FOR UPDATE",
		},
		{
			query: "SELECT * FROM players WHERE public_id IN ($2, $3, $4, $5) AND position = $1",
			want:  "SELECT * FROM players WHERE public_id IN ($2, ..., $5) AND position = $1",
		},
		{
			query: "INSERT INTO vote_tallies (user_id, category, votes) VALUES ($1, $2, $3)",
			want:  "INSERT INTO vote_tallies (user_id, category, votes) VALUES ($1, $2, $3)",
		},
	}
	for _, tc := range cases {
		if got := formatDBQueryForTrace(tc.query); got != tc.want {
			t.Fatalf("formatDBQueryForTrace(%q) = %q, want %q", tc.query, got, tc.want)
		}
	}
}

func TestFormatDBQueryForTraceTruncates(t *testing.T) {
	got := formatDBQueryForTrace("SELECT " + strings.Repeat("a, ", 400) + "b FROM players")
	if len(got) != maxTracedQueryLength+3 || !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncated query, got len=%d", len(got))
	}
}

func TestFormatDBQueryForTraceKeepsRunesWhole(t *testing.T) {
	query := "SELECT '" + strings.Repeat("a", maxTracedQueryLength-9) + strings.Repeat("é", 10) + "'"
	got := formatDBQueryForTrace(query)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncated query, got len=%d", len(got))
	}
	if !utf8.ValidString(strings.TrimSuffix(got, "...")) {
		t.Fatalf("truncation split a multi-byte rune: %q", got[len(got)-8:])
	}
}

