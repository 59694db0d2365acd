package memory

import (
	"time"

	"github.com/riskibarqy/matchday/internal/domain/player"
)

// SeedPlayers is a small club roster for local runs with STORAGE_DRIVER=memory.
func SeedPlayers(now time.Time) []player.Player {
	raw := []struct {
		id, name, position string
		rating             int
	}{
		{"seed-gk-01", "Arif (GK)", "GK", 68},
		{"seed-gk-02", "Bayu", "Keeper", 61},
		{"seed-df-01", "Candra", "CB", 72},
		{"seed-df-02", "Dimas", "RB", 65},
		{"seed-df-03", "Eko", "LWB", 63},
		{"seed-df-04", "Fajar", "CB", 70},
		{"seed-mf-01", "Gilang", "CDM", 69},
		{"seed-mf-02", "Hadi", "CM", 74},
		{"seed-mf-03", "Irfan", "CAM", 77},
		{"seed-mf-04", "Joko", "RM", 66},
		{"seed-fw-01", "Kevin", "ST", 80},
		{"seed-fw-02", "Lutfi", "LW", 71},
		{"seed-fw-03", "Made", "CF", 67},
		{"seed-fw-04", "Nanda", "RW", 64},
	}

	out := make([]player.Player, 0, len(raw))
	for _, r := range raw {
		out = append(out, player.Player{
			ID:        r.id,
			Name:      r.name,
			Position:  r.position,
			Rating:    r.rating,
			Stats:     player.SeedStats(r.rating, nil),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return out
}

// Seed loads players into the store, skipping ids that already exist.
func (s *Store) Seed(players []player.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range players {
		if _, exists := s.players[p.ID]; exists {
			continue
		}
		s.players[p.ID] = p.Clone()
	}
}
