package player

import (
	"testing"

	"github.com/riskibarqy/matchday/internal/domain/position"
	"github.com/riskibarqy/matchday/internal/domain/rating"
)

func TestPlayerValidateAndProjection(t *testing.T) {
	t.Parallel()

	p := Player{ID: "p1", Name: "Dani (guest)", Position: "rwb", Rating: 71}
	if err := p.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if p.Canonical() != position.RB {
		t.Fatalf("expected RB, got %s", p.Canonical())
	}
	if a := p.Attendee(); a.UID != "p1" || a.Rating != 71 {
		t.Fatalf("unexpected attendee: %+v", a)
	}

	p.Rating = 120
	if err := p.Validate(); err == nil {
		t.Fatalf("expected rating range error")
	}
}

func TestSeedStats(t *testing.T) {
	t.Parallel()

	got := SeedStats(70, rating.StatLine{rating.SHO: 80})
	if got[rating.SHO] != 80 || got[rating.DEF] != 70 || len(got) != len(rating.Attributes) {
		t.Fatalf("unexpected stats: %v", got)
	}
}
