package tournament

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func players(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("p%02d", i)
	}
	return out
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "+" + b
}

func TestScheduleFullRotation(t *testing.T) {
	for _, n := range []int{4, 8, 12, 16} {
		t.Run(fmt.Sprintf("%d players", n), func(t *testing.T) {
			plan, err := Schedule(players(n), 0)
			require.NoError(t, err)
			require.Len(t, plan, n-1)

			partners := map[string]int{}
			for r, round := range plan {
				require.Len(t, round, n/4, "round %d", r+1)

				seen := map[string]bool{}
				for i, m := range round {
					assert.Equal(t, i+1, m.Court)
					for _, p := range append(m.TeamA[:], m.TeamB[:]...) {
						assert.False(t, seen[p], "%s plays twice in round %d", p, r+1)
						seen[p] = true
					}
					partners[pairKey(m.TeamA[0], m.TeamA[1])]++
					partners[pairKey(m.TeamB[0], m.TeamB[1])]++
				}
				assert.Len(t, seen, n, "everyone plays round %d", r+1)
			}

			assert.Len(t, partners, n*(n-1)/2)
			for pair, count := range partners {
				assert.Equal(t, 1, count, pair)
			}
		})
	}
}

func TestScheduleShortenedAndInvalid(t *testing.T) {
	plan, err := Schedule(players(8), 3)
	require.NoError(t, err)
	assert.Len(t, plan, 3)

	_, err = Schedule(players(6), 0)
	assert.ErrorIs(t, err, ErrInvalidPlayerCount)

	_, err = Schedule(players(2), 0)
	assert.ErrorIs(t, err, ErrInvalidPlayerCount)

	_, err = Schedule(players(4), 4)
	assert.ErrorIs(t, err, ErrInvalidRounds)

	_, err = Schedule(players(4), -1)
	assert.ErrorIs(t, err, ErrInvalidRounds)
}

func TestScheduleDoesNotMutateInput(t *testing.T) {
	in := players(8)
	_, err := Schedule(in, 0)
	require.NoError(t, err)
	assert.Equal(t, players(8), in)
}
