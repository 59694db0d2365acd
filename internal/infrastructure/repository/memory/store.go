package memory

import (
	"sync"

	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/player"
	"github.com/riskibarqy/matchday/internal/domain/rating"
	"github.com/riskibarqy/matchday/internal/domain/squad"
)

// Store is the shared in-process state behind every memory repository.
// A single lock lets the ballot commit touch matches, players and tallies atomically.
type Store struct {
	mu      sync.RWMutex
	players map[string]player.Player
	matches map[string]match.Match
	squads  map[string]squad.Saved
	ballots map[string]map[string]rating.Ballot
	tally   rating.Tally
}

func NewStore() *Store {
	return &Store{
		players: make(map[string]player.Player),
		matches: make(map[string]match.Match),
		squads:  make(map[string]squad.Saved),
		ballots: make(map[string]map[string]rating.Ballot),
		tally:   rating.NewTally(),
	}
}

func (s *Store) Players() *PlayerRepository { return &PlayerRepository{store: s} }
func (s *Store) Matches() *MatchRepository   { return &MatchRepository{store: s} }
func (s *Store) Squads() *SquadRepository    { return &SquadRepository{store: s} }
func (s *Store) Ballots() *BallotRepository  { return &BallotRepository{store: s} }
