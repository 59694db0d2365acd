package squad

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/riskibarqy/matchday/internal/domain/position"
	"github.com/stretchr/testify/assert"
)

// keepOrder makes the shuffle a no-op so greedy placement can be asserted exactly.
type keepOrder struct{}

func (keepOrder) IntN(n int) int { return n - 1 }

func attendee(uid, pos string, rating int) Attendee {
	return Attendee{UID: uid, Name: uid, Position: pos, Rating: rating}
}

func elevenAttendees() []Attendee {
	return []Attendee{
		attendee("gk", "GK", 70),
		attendee("rb", "RB", 64),
		attendee("cb1", "CB", 72),
		attendee("cb2", "RCB", 68),
		attendee("lb", "LWB", 61),
		attendee("cdm", "CDM", 66),
		attendee("cm", "RCM", 74),
		attendee("cam", "CAM", 77),
		attendee("rw", "RM", 69),
		attendee("st", "ST", 80),
		attendee("lw", "LW", 71),
	}
}

func TestSplit_GreedyBalancingTiesFavorA(t *testing.T) {
	t.Parallel()

	attendees := []Attendee{
		attendee("p1", "CM", 70),
		attendee("p2", "CM", 60),
		attendee("p3", "CM", 50),
		attendee("p4", "CM", 40),
	}

	got := Split(attendees, nil, keepOrder{})
	if !reflect.DeepEqual(got.A, []string{"p1", "p4"}) || !reflect.DeepEqual(got.B, []string{"p2", "p3"}) {
		t.Fatalf("unexpected split: A=%v B=%v", got.A, got.B)
	}
}

func TestSplit_PinnedRatingsCountTowardsBalance(t *testing.T) {
	t.Parallel()

	attendees := []Attendee{
		attendee("p1", "CM", 70),
		attendee("p2", "CM", 60),
		attendee("p3", "CM", 50),
		attendee("p4", "CM", 40),
		attendee("p5", "CM", 80),
	}

	got := Split(attendees, PinMap{"p5": TeamB}, keepOrder{})
	if !reflect.DeepEqual(got.A, []string{"p1", "p2", "p4"}) {
		t.Fatalf("unexpected team A: %v", got.A)
	}
	if !reflect.DeepEqual(got.B, []string{"p5", "p3"}) {
		t.Fatalf("unexpected team B: %v", got.B)
	}
}

func TestSplit_CompletenessAndPinsAcrossSeeds(t *testing.T) {
	t.Parallel()

	attendees := elevenAttendees()
	attendees = append(attendees, attendee("x1", "ST", 55), attendee("x2", "GK", 58), attendee("x1", "ST", 99))
	pins := PinMap{"cm": TeamB, "gk": TeamA, "st": "C"}

	for seed := uint64(0); seed < 50; seed++ {
		got := Split(attendees, pins, NewSeededSource(seed))

		seen := make(map[string]Team)
		for team, ids := range map[Team][]string{TeamA: got.A, TeamB: got.B} {
			for _, uid := range ids {
				if prev, dup := seen[uid]; dup {
					t.Fatalf("seed=%d uid=%s on both %s and %s", seed, uid, prev, team)
				}
				seen[uid] = team
			}
		}
		if len(seen) != 13 {
			t.Fatalf("seed=%d expected 13 distinct attendees, got %d", seed, len(seen))
		}
		if seen["cm"] != TeamB || seen["gk"] != TeamA {
			t.Fatalf("seed=%d pins not respected: %v", seed, seen)
		}
		if _, ok := seen["st"]; !ok {
			t.Fatalf("seed=%d attendee with invalid pin was dropped", seed)
		}
	}
}

func TestSplit_SameSeedIsDeterministic(t *testing.T) {
	t.Parallel()

	first := Split(elevenAttendees(), nil, NewSeededSource(42))
	second := Split(elevenAttendees(), nil, NewSeededSource(42))
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical splits for identical seeds: %v vs %v", first, second)
	}
}

func TestSelectStarters(t *testing.T) {
	t.Parallel()

	roster := NewRoster([]Attendee{
		attendee("gk1", "GK", 50),
		attendee("gk2", "GK", 65),
		attendee("f90", "ST", 90),
		attendee("f80", "CM", 80),
		attendee("f60", "CB", 60),
	})

	cases := []struct {
		name         string
		team         []string
		needed       int
		wantStarters []string
		wantBench    []string
	}{
		{
			name:         "best keeper forced in",
			team:         []string{"f80", "gk1", "f90", "f60"},
			needed:       2,
			wantStarters: []string{"gk1", "f90"},
			wantBench:    []string{"f80", "f60"},
		},
		{
			name:         "spare keeper competes on rating",
			team:         []string{"gk1", "gk2", "f60"},
			needed:       2,
			wantStarters: []string{"gk2", "f60"},
			wantBench:    []string{"gk1"},
		},
		{
			name:         "short roster starts everyone",
			team:         []string{"f60", "f90"},
			needed:       11,
			wantStarters: []string{"f90", "f60"},
			wantBench:    []string{},
		},
		{
			name:         "zero needed",
			team:         []string{"f60", "f90"},
			needed:       0,
			wantStarters: []string{},
			wantBench:    []string{"f60", "f90"},
		},
		{
			name:         "empty team",
			team:         nil,
			needed:       11,
			wantStarters: []string{},
			wantBench:    []string{},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			starters, bench := SelectStarters(tc.team, roster, tc.needed)
			if !reflect.DeepEqual(starters, tc.wantStarters) {
				t.Fatalf("starters: got=%v want=%v", starters, tc.wantStarters)
			}
			if !reflect.DeepEqual(bench, tc.wantBench) {
				t.Fatalf("bench: got=%v want=%v", bench, tc.wantBench)
			}
		})
	}
}

func TestAssignSlots_ExactMatchPrefersHigherRating(t *testing.T) {
	t.Parallel()

	roster := NewRoster([]Attendee{attendee("cb1", "CB", 70), attendee("cb2", "CB", 80)})
	got := AssignSlots([]string{"cb1", "cb2"}, []position.Position{position.CB, position.CB}, roster)

	want := []SlotAssignment{{Slot: position.CB, UID: "cb2"}, {Slot: position.CB, UID: "cb1"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected assignment: %+v", got)
	}
}

func TestAssignSlots_BestFitUsesCostBeforeRating(t *testing.T) {
	t.Parallel()

	roster := NewRoster([]Attendee{attendee("cm", "CM", 80), attendee("cam", "CAM", 60)})
	got := AssignSlots([]string{"cm", "cam"}, []position.Position{position.GK, position.ST}, roster)

	if got[0].Filled() {
		t.Fatalf("goalkeeper slot must stay empty without a keeper, got %s", got[0].UID)
	}
	if got[1].UID != "cam" {
		t.Fatalf("expected the cheaper substitution for ST, got %s", got[1].UID)
	}
}

func TestAssignSlots_KeeperNeverPlaysOutfield(t *testing.T) {
	t.Parallel()

	roster := NewRoster([]Attendee{attendee("gk", "GK", 99)})
	got := AssignSlots([]string{"gk"}, []position.Position{position.ST, position.CB}, roster)
	for _, slot := range got {
		if slot.Filled() {
			t.Fatalf("keeper placed in %s", slot.Slot)
		}
	}
}

func TestBuild_ElevenAttendeesFourThreeThree(t *testing.T) {
	t.Parallel()

	formation := position.ResolveFormation("4-3-3", "")
	for seed := uint64(0); seed < 25; seed++ {
		s := Build(elevenAttendees(), nil, formation, formation, NewSeededSource(seed))

		if len(s.A.Roster)+len(s.B.Roster) != 11 {
			t.Fatalf("seed=%d rosters do not cover attendees: %d+%d", seed, len(s.A.Roster), len(s.B.Roster))
		}
		for _, side := range []Side{s.A, s.B} {
			assertSideLayout(t, side, formation)
		}
	}
}

func TestBuild_AllPinnedToOneSide(t *testing.T) {
	t.Parallel()

	attendees := elevenAttendees()
	pins := PinMap{}
	for _, a := range attendees {
		pins[a.UID] = TeamA
	}
	formation := position.ResolveFormation("4-3-3", "")

	s := Build(attendees, pins, formation, formation, nil)
	if len(s.B.Roster) != 0 || len(s.B.Bench) != 0 {
		t.Fatalf("expected empty team B, got roster=%v bench=%v", s.B.Roster, s.B.Bench)
	}
	if len(s.B.Slots) != formation.Size() {
		t.Fatalf("expected %d slots for B, got %d", formation.Size(), len(s.B.Slots))
	}
	for _, slot := range s.B.Slots {
		if slot.Filled() {
			t.Fatalf("expected only empty slots for B, got %+v", slot)
		}
	}
	if len(s.A.Starters()) != 11 || len(s.A.Bench) != 0 {
		t.Fatalf("expected a full team A, got starters=%d bench=%d", len(s.A.Starters()), len(s.A.Bench))
	}
	for _, slot := range s.A.Slots {
		if slot.Slot == position.GK && slot.UID != "gk" {
			t.Fatalf("expected the keeper in goal, got %q", slot.UID)
		}
	}
}

func TestBuildSide_UnslottedStarterMovesToBench(t *testing.T) {
	t.Parallel()

	attendees := []Attendee{attendee("gk1", "GK", 90), attendee("gk2", "GK", 85)}
	team := []string{"gk1", "gk2"}
	for i := 0; i < 9; i++ {
		uid := fmt.Sprintf("f%d", i)
		attendees = append(attendees, attendee(uid, "CM", 50))
		team = append(team, uid)
	}
	formation := position.ResolveFormation("4-3-3", "")

	side := buildSide(team, formation, NewRoster(attendees))
	assertSideLayout(t, side, formation)
	assert.Equal(t, []string{"gk2"}, side.Bench)
	assert.Len(t, side.Starters(), 10)
}

func TestRosterHelpers(t *testing.T) {
	t.Parallel()

	roster := NewRoster([]Attendee{attendee("a", "ST", 71), attendee("b", "CB", 60)})
	assert.Equal(t, 66, roster.AverageRating([]string{"a", "b"}))
	assert.Equal(t, 0, roster.AverageRating(nil))
	assert.Equal(t, DefaultRating, roster.Rating("deleted-user"))
	assert.Equal(t, 191, roster.RatingSum([]string{"a", "b", "ghost"}))

	s := Squad{A: Side{Roster: []string{"a"}}, B: Side{Roster: []string{"b"}}}
	assert.Equal(t, 11, RatingGap(s, roster))
	team, ok := s.TeamOf("b")
	assert.True(t, ok)
	assert.Equal(t, TeamB, team)

	assert.Equal(t, "Kim", CleanName("Kim (GK)"))
	assert.Equal(t, "Lee Park", CleanName(" Lee (c) Park "))
}

func assertSideLayout(t *testing.T, side Side, formation position.Formation) {
	t.Helper()

	if len(side.Slots) != formation.Size() {
		t.Fatalf("expected %d slots, got %d", formation.Size(), len(side.Slots))
	}

	inRoster := make(map[string]struct{}, len(side.Roster))
	for _, uid := range side.Roster {
		inRoster[uid] = struct{}{}
	}

	placed := make(map[string]string)
	goalkeeperSlots := 0
	for _, slot := range side.Slots {
		if slot.Slot == position.GK {
			goalkeeperSlots++
		}
		if !slot.Filled() {
			continue
		}
		if _, ok := inRoster[slot.UID]; !ok {
			t.Fatalf("slot uid %s not in roster", slot.UID)
		}
		if _, dup := placed[slot.UID]; dup {
			t.Fatalf("uid %s assigned twice", slot.UID)
		}
		placed[slot.UID] = "slot"
	}
	for _, uid := range side.Bench {
		if _, dup := placed[uid]; dup {
			t.Fatalf("uid %s both starting and on the bench", uid)
		}
		placed[uid] = "bench"
	}
	if len(placed) != len(side.Roster) {
		t.Fatalf("slots+bench=%d do not cover roster=%d", len(placed), len(side.Roster))
	}
	if goalkeeperSlots != 1 {
		t.Fatalf("expected exactly one GK slot, got %d", goalkeeperSlots)
	}
}
