package rating

import (
	"context"
	"errors"
)

var (
	ErrDuplicateBallot = errors.New("ballot already submitted")
	// ErrStaleSnapshot means stats or tallies changed between the aggregation read and the commit.
	ErrStaleSnapshot = errors.New("aggregation snapshot is stale")
)

// Commit is everything one ballot submission writes. When Final is set it also
// carries the staged aggregation so stats, tally and the completion flag land together.
// PriorRatings and TallyEntry.Prior are the values the aggregation read; a store must
// reject the commit with ErrStaleSnapshot when the rows it overwrites no longer hold them.
type Commit struct {
	Ballot           Ballot
	ExpectedReceived int
	Final            bool
	PriorRatings     map[string]StatLine
	Ratings          map[string]StatLine
	Overall          map[string]int
	TallyChanges     []TallyEntry
	CountedKeys      []string
}

// Repository stores ballots and the cross-match vote tally.
type Repository interface {
	ListByMatch(ctx context.Context, matchID string) ([]Ballot, error)
	HasBallot(ctx context.Context, matchID, voterID string) (bool, error)
	// LoadTally returns counters for the given candidates and which of the given ballot keys are already counted.
	LoadTally(ctx context.Context, candidateIDs, ballotKeys []string) (Tally, error)
	Commit(ctx context.Context, c Commit) error
}
