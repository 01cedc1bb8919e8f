package tournament

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(v int) *int { return &v }

func TestValidateScore(t *testing.T) {
	assert.NoError(t, ValidateScore(24, 13, 11))
	assert.NoError(t, ValidateScore(24, 24, 0))
	assert.ErrorIs(t, ValidateScore(24, 13, 12), ErrInvalidScore)
	assert.ErrorIs(t, ValidateScore(24, -1, 25), ErrInvalidScore)
}

func TestValidPoints(t *testing.T) {
	for _, p := range []int{16, 21, 24, 32} {
		assert.True(t, ValidPoints(p), p)
	}
	for _, p := range []int{0, 15, 20, 33} {
		assert.False(t, ValidPoints(p), p)
	}
}

func TestStandingsOrdering(t *testing.T) {
	ps := []*Participant{
		{ID: "a", DisplayName: "Ana"},
		{ID: "b", DisplayName: "Ben"},
		{ID: "c", DisplayName: "Cal"},
		{ID: "d", DisplayName: "Dee"},
	}
	matches := []*Match{
		{Round: 1, Court: 1, TeamA: [2]string{"a", "d"}, TeamB: [2]string{"b", "c"}, ScoreA: score(14), ScoreB: score(10)},
		{Round: 2, Court: 1, TeamA: [2]string{"a", "c"}, TeamB: [2]string{"d", "b"}, ScoreA: score(8), ScoreB: score(16)},
		// Unrecorded matches do not count.
		{Round: 3, Court: 1, TeamA: [2]string{"a", "b"}, TeamB: [2]string{"c", "d"}},
	}

	got := Standings(ps, matches)
	require.Len(t, got, 4)

	names := make([]string, len(got))
	for i, s := range got {
		names[i] = s.DisplayName
	}
	// Dee 30, Ben 26, Ana 22, Cal 18.
	assert.Equal(t, []string{"Dee", "Ben", "Ana", "Cal"}, names)

	assert.Equal(t, Standing{ParticipantID: "d", DisplayName: "Dee", Played: 2, Points: 30, Wins: 2, Diff: 12}, got[0])
	assert.Equal(t, 1, got[1].Wins)
	assert.Equal(t, 2, got[2].Played)
}

func TestStandingsTieBreaks(t *testing.T) {
	ps := []*Participant{
		{ID: "z", DisplayName: "Zoe"},
		{ID: "y", DisplayName: "Yan"},
		{ID: "x", DisplayName: "Xia"},
		{ID: "w", DisplayName: "Wes"},
	}
	// A draw leaves every player level on points, wins and diff, so names decide.
	matches := []*Match{
		{Round: 1, TeamA: [2]string{"z", "y"}, TeamB: [2]string{"x", "w"}, ScoreA: score(8), ScoreB: score(8)},
	}

	got := Standings(ps, matches)
	names := []string{got[0].DisplayName, got[1].DisplayName, got[2].DisplayName, got[3].DisplayName}
	assert.Equal(t, []string{"Wes", "Xia", "Yan", "Zoe"}, names)
	assert.Equal(t, 1, got[0].Draws)
}

func TestGroupRounds(t *testing.T) {
	matches := []*Match{
		{ID: "r2c1", Round: 2, Court: 1},
		{ID: "r1c2", Round: 1, Court: 2},
		{ID: "r1c1", Round: 1, Court: 1},
	}
	rounds := GroupRounds(matches)
	require.Len(t, rounds, 2)
	assert.Equal(t, 1, rounds[0].Number)
	assert.Equal(t, "r1c1", rounds[0].Matches[0].ID)
	assert.Equal(t, "r1c2", rounds[0].Matches[1].ID)
	assert.Equal(t, "r2c1", rounds[1].Matches[0].ID)
}
