package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/player"
	"github.com/riskibarqy/matchday/internal/domain/rating"
	"github.com/riskibarqy/matchday/internal/domain/squad"
	playermock "github.com/riskibarqy/matchday/internal/mocks/domain/player"
	ratingmock "github.com/riskibarqy/matchday/internal/mocks/domain/rating"
	squadmock "github.com/riskibarqy/matchday/internal/mocks/domain/squad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPlayerRepository_GetByIDCachesAndClones(t *testing.T) {
	ctx := context.Background()
	next := playermock.NewRepository(t)
	next.On("GetByID", mock.Anything, "p1").
		Return(player.Player{ID: "p1", Name: "Ana", Stats: rating.StatLine{rating.SHO: 70}}, true, nil).
		Once()

	repo := NewPlayerRepository(next, NewStores(time.Minute))

	first, ok, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	first.Stats[rating.SHO] = 1

	second, ok, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 70.0, second.Stats[rating.SHO])
}

func TestPlayerRepository_CachesMissesAndSkipsErrors(t *testing.T) {
	ctx := context.Background()
	next := playermock.NewRepository(t)
	next.On("GetByID", mock.Anything, "ghost").Return(player.Player{}, false, nil).Once()
	next.On("GetByID", mock.Anything, "p2").Return(player.Player{}, false, errors.New("db down")).Once()
	next.On("GetByID", mock.Anything, "p2").Return(player.Player{ID: "p2"}, true, nil).Once()

	repo := NewPlayerRepository(next, NewStores(time.Minute))

	for range 2 {
		_, ok, err := repo.GetByID(ctx, "ghost")
		require.NoError(t, err)
		assert.False(t, ok)
	}

	_, _, err := repo.GetByID(ctx, "p2")
	require.Error(t, err)
	got, ok, err := repo.GetByID(ctx, "p2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "p2", got.ID)
}

func TestPlayerRepository_GetByIDsPassesThrough(t *testing.T) {
	ctx := context.Background()
	next := playermock.NewRepository(t)
	next.On("GetByIDs", mock.Anything, []string{"p1"}).Return([]player.Player{{ID: "p1"}}, nil).Twice()

	repo := NewPlayerRepository(next, NewStores(time.Minute))
	for range 2 {
		got, err := repo.GetByIDs(ctx, []string{"p1"})
		require.NoError(t, err)
		require.Len(t, got, 1)
	}
}

func TestSquadRepository_SaveEvicts(t *testing.T) {
	ctx := context.Background()
	next := squadmock.NewRepository(t)
	old := squad.Saved{ID: "s1", MatchID: "m1", RatingA: 70}
	fresh := squad.Saved{ID: "s2", MatchID: "m1", RatingA: 72}
	next.On("GetByMatch", mock.Anything, "m1").Return(old, true, nil).Once()
	next.On("Save", mock.Anything, fresh).Return(nil).Once()
	next.On("GetByMatch", mock.Anything, "m1").Return(fresh, true, nil).Once()

	repo := NewSquadRepository(next, NewStores(time.Minute))

	got, _, err := repo.GetByMatch(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	got, _, err = repo.GetByMatch(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)

	require.NoError(t, repo.Save(ctx, fresh))
	got, _, err = repo.GetByMatch(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "s2", got.ID)
}

func TestBallotRepository_CommitEvictsRatedPlayers(t *testing.T) {
	ctx := context.Background()
	stores := NewStores(time.Minute)

	players := playermock.NewRepository(t)
	players.On("GetByID", mock.Anything, "p1").Return(player.Player{ID: "p1", Rating: 60}, true, nil).Once()
	players.On("GetByID", mock.Anything, "p1").Return(player.Player{ID: "p1", Rating: 61}, true, nil).Once()
	ballots := ratingmock.NewRepository(t)

	commit := rating.Commit{
		Ballot:  rating.Ballot{MatchID: "m1", VoterID: "p2"},
		Final:   true,
		Ratings: map[string]rating.StatLine{"p1": {rating.SHO: 61}},
		Overall: map[string]int{"p1": 61},
	}
	ballots.On("Commit", mock.Anything, commit).Return(nil).Once()

	playerRepo := NewPlayerRepository(players, stores)
	ballotRepo := NewBallotRepository(ballots, stores)

	before, _, err := playerRepo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 60, before.Rating)

	require.NoError(t, ballotRepo.Commit(ctx, commit))

	after, _, err := playerRepo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 61, after.Rating)
}

func TestBallotRepository_FailedCommitKeepsCache(t *testing.T) {
	ctx := context.Background()
	stores := NewStores(time.Minute)
	ballots := ratingmock.NewRepository(t)
	commit := rating.Commit{Ballot: rating.Ballot{MatchID: "m1", VoterID: "p2"}}
	ballots.On("Commit", mock.Anything, commit).Return(rating.ErrDuplicateBallot).Once()

	err := NewBallotRepository(ballots, stores).Commit(ctx, commit)
	assert.ErrorIs(t, err, rating.ErrDuplicateBallot)
}
