package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/event"
	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/squad"
	"github.com/riskibarqy/matchday/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchday/internal/platform/id"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/metrics"
)

func squadFixture(t *testing.T, attendees int) *memory.Store {
	t.Helper()

	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	store.Seed(memory.SeedPlayers(now))

	seeded := memory.SeedPlayers(now)
	ids := make([]string, 0, attendees)
	for i := 0; i < attendees && i < len(seeded); i++ {
		ids = append(ids, seeded[i].ID)
	}

	err := store.Matches().Create(context.Background(), match.Match{
		ID:          "m1",
		Title:       "Weekly game",
		ScheduledAt: now,
		Status:      match.StatusScheduled,
		AttendeeIDs: ids,
		Pins:        squad.PinMap{"seed-gk-01": squad.TeamA},
		FormationA:  "4-4-2",
		FormationB:  "4-3-3",
	})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	return store
}

func newSquadServiceForTest(store *memory.Store, attempts int, publisher event.Publisher) *SquadService {
	service := NewSquadService(
		store.Matches(),
		store.Players(),
		store.Squads(),
		publisher,
		metrics.NewNop(),
		id.Static("squad-001"),
		SquadConfig{DefaultFormation: "4-3-3", ShuffleAttempts: attempts, WorkerPoolSize: 2},
		logging.NewNop(),
	)
	service.now = func() time.Time { return time.Date(2026, 2, 11, 12, 5, 0, 0, time.UTC) }
	return service
}

func TestSquadService_BuildSquad_SavesAndPublishes(t *testing.T) {
	t.Parallel()

	store := squadFixture(t, 14)
	publisher := &recordingPublisher{}
	service := newSquadServiceForTest(store, 1, publisher)

	seed := uint64(7)
	built, err := service.BuildSquad(t.Context(), BuildSquadInput{MatchID: "m1", Seed: &seed})
	if err != nil {
		t.Fatalf("build squad: %v", err)
	}

	if built.Saved.ID != "squad-001" {
		t.Fatalf("expected squad id squad-001, got %s", built.Saved.ID)
	}
	if got := len(built.Saved.Squad.A.Roster) + len(built.Saved.Squad.B.Roster); got != 14 {
		t.Fatalf("expected every attendee placed, got %d", got)
	}
	if team, _ := built.Saved.Squad.TeamOf("seed-gk-01"); team != squad.TeamA {
		t.Fatalf("expected pinned keeper on team A, got %q", team)
	}
	if built.Saved.Squad.A.Formation != "4-4-2" || built.Saved.Squad.B.Formation != "4-3-3" {
		t.Fatalf("unexpected formations: %s / %s", built.Saved.Squad.A.Formation, built.Saved.Squad.B.Formation)
	}

	stored, err := service.GetSquad(t.Context(), "m1")
	if err != nil {
		t.Fatalf("get squad: %v", err)
	}
	if stored.Saved.RatingA != built.Saved.RatingA || stored.AverageA != built.AverageA {
		t.Fatalf("stored squad differs from built squad")
	}

	if len(publisher.events) != 1 || publisher.events[0].EventName() != event.NameSquadBuilt {
		t.Fatalf("expected one squad built event, got %v", publisher.events)
	}
}

func TestSquadService_BuildSquad_SeededIsReproducible(t *testing.T) {
	t.Parallel()

	store := squadFixture(t, 12)
	service := newSquadServiceForTest(store, 5, nil)

	seed := uint64(42)
	first, err := service.BuildSquad(t.Context(), BuildSquadInput{MatchID: "m1", Seed: &seed})
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	second, err := service.BuildSquad(t.Context(), BuildSquadInput{MatchID: "m1", Seed: &seed})
	if err != nil {
		t.Fatalf("second build: %v", err)
	}

	if fmt.Sprint(first.Saved.Squad.A.Roster) != fmt.Sprint(second.Saved.Squad.A.Roster) {
		t.Fatalf("expected identical rosters for the same seed: %v vs %v", first.Saved.Squad.A.Roster, second.Saved.Squad.A.Roster)
	}

	single := newSquadServiceForTest(store, 1, nil)
	plain, err := single.BuildSquad(t.Context(), BuildSquadInput{MatchID: "m1", Seed: &seed})
	if err != nil {
		t.Fatalf("single build: %v", err)
	}
	gap := func(b BuiltSquad) int {
		d := b.Saved.RatingA - b.Saved.RatingB
		if d < 0 {
			return -d
		}
		return d
	}
	if gap(first) > gap(plain) {
		t.Fatalf("best of five (gap=%d) must not be worse than its first attempt (gap=%d)", gap(first), gap(plain))
	}
}

func TestSquadService_BuildSquad_Errors(t *testing.T) {
	t.Parallel()

	store := squadFixture(t, 4)
	service := newSquadServiceForTest(store, 1, nil)

	if _, err := service.BuildSquad(t.Context(), BuildSquadInput{MatchID: " "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := service.BuildSquad(t.Context(), BuildSquadInput{MatchID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := service.GetSquad(t.Context(), "m1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before any build, got %v", err)
	}

	item, _, _ := store.Matches().GetByID(t.Context(), "m1")
	if err := item.Complete(match.Score{A: 1, B: 0}, time.Now()); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := store.Matches().Update(t.Context(), item); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := service.BuildSquad(t.Context(), BuildSquadInput{MatchID: "m1"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for completed match, got %v", err)
	}
}

func TestSquadService_BuildSquad_EmptyAttendance(t *testing.T) {
	t.Parallel()

	store := squadFixture(t, 0)
	service := newSquadServiceForTest(store, 3, nil)

	built, err := service.BuildSquad(t.Context(), BuildSquadInput{MatchID: "m1"})
	if err != nil {
		t.Fatalf("build squad: %v", err)
	}
	if len(built.Saved.Squad.A.Roster) != 0 || len(built.Saved.Squad.B.Roster) != 0 {
		t.Fatalf("expected empty sides")
	}
	for _, slot := range built.Saved.Squad.A.Slots {
		if slot.Filled() {
			t.Fatalf("expected unfilled slots, got %+v", slot)
		}
	}
}
