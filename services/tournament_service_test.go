package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTournamentPersistsBracket(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tournament, err := f.tournaments.CreateTournament(ctx, "alice", []string{"alice", "bob", "carol", "dave"})
	require.NoError(t, err)

	assert.NotEmpty(t, tournament.ID)
	assert.Equal(t, "alice", tournament.Host)
	assert.Len(t, tournament.Bracket, 3)
	assert.Equal(t, 2, tournament.Rounds())
	assert.False(t, tournament.Finished)
	assert.Nil(t, tournament.Winner)
	assert.False(t, tournament.CreatedAt.IsZero())

	detail, err := f.tournaments.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, detail.Matches, 3)

	// Every persisted match is reachable through the bracket map.
	for _, m := range detail.Matches {
		entry, ok := tournament.EntryFor(m.ID)
		require.True(t, ok, "match %s missing from bracket map", m.ID)
		assert.Equal(t, m.Round, entry.Round)
		require.NotNil(t, m.TournamentID)
		assert.Equal(t, tournament.ID, *m.TournamentID)
	}
}

func TestCreateTournamentRejectsInvalidSeeds(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.tournaments.CreateTournament(ctx, "alice", []string{"alice"})
	assert.ErrorIs(t, err, ErrInvalidBracket)

	_, err = f.tournaments.CreateTournament(ctx, "zed", []string{"alice", "bob"})
	assert.ErrorIs(t, err, ErrInvalidBracket)

	tournaments, err := f.tournaments.ListTournaments(ctx)
	require.NoError(t, err)
	assert.Empty(t, tournaments, "rejected creations must leave nothing behind")
}

func TestCreateTournamentRollsBackOnMatchFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// The second match insert of the bracket fails; the tournament row and
	// the first match must both disappear with it.
	f.matchRepo.failCreateAt = 2
	_, err := f.tournaments.CreateTournament(ctx, "alice", []string{"alice", "bob", "carol", "dave"})
	require.Error(t, err)

	tournaments, err := f.tournaments.ListTournaments(ctx)
	require.NoError(t, err)
	assert.Empty(t, tournaments)

	matches, err := f.matches.ListMatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestGetTournamentNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.tournaments.GetTournament(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestListTournamentsByHost(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.tournaments.CreateTournament(ctx, "alice", []string{"alice", "bob"})
	require.NoError(t, err)
	_, err = f.tournaments.CreateTournament(ctx, "carol", []string{"carol", "dave"})
	require.NoError(t, err)

	hosted, err := f.tournaments.ListTournamentsByHost(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, hosted, 1)
	assert.Equal(t, "alice", hosted[0].Host)
}

func TestUpdateTournamentRejectsEmptyParams(t *testing.T) {
	f := newFixture()

	_, err := f.tournaments.UpdateTournament(context.Background(), "whatever", UpdateTournamentParams{})
	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)
}

func TestUpdateTournamentOverride(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tournament, err := f.tournaments.CreateTournament(ctx, "alice", []string{"alice", "bob"})
	require.NoError(t, err)

	updated, err := f.tournaments.UpdateTournament(ctx, tournament.ID, UpdateTournamentParams{
		Winner:   stringPtr("bob"),
		Finished: boolPtr(true),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Winner)
	assert.Equal(t, "bob", *updated.Winner)
	assert.True(t, updated.Finished)
}

func TestUpdateTournamentNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.tournaments.UpdateTournament(context.Background(), "missing", UpdateTournamentParams{
		Finished: boolPtr(true),
	})
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
