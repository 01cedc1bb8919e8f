package tournament

// Pairing is a planned match before it is stored.
type Pairing struct {
	Court int
	TeamA [2]string
	TeamB [2]string
}

// Schedule plans rounds of Americano with the circle method. The first player stays
// fixed while the others rotate one seat per round; seats facing each other across
// the circle are partners. Over len(players)-1 rounds every pair partners exactly
// once. Consecutive partnerships meet on courts 1..len(players)/4.
func Schedule(players []string, rounds int) ([][]Pairing, error) {
	n := len(players)
	if n < 4 || n%4 != 0 {
		return nil, ErrInvalidPlayerCount
	}
	if rounds == 0 {
		rounds = n - 1
	}
	if rounds < 1 || rounds > n-1 {
		return nil, ErrInvalidRounds
	}

	seats := make([]string, n)
	copy(seats, players)

	plan := make([][]Pairing, 0, rounds)
	for r := 0; r < rounds; r++ {
		teams := make([][2]string, 0, n/2)
		for i := 0; i < n/2; i++ {
			teams = append(teams, [2]string{seats[i], seats[n-1-i]})
		}

		matches := make([]Pairing, 0, n/4)
		for i := 0; i+1 < len(teams); i += 2 {
			matches = append(matches, Pairing{
				Court: i/2 + 1,
				TeamA: teams[i],
				TeamB: teams[i+1],
			})
		}
		plan = append(plan, matches)

		// Rotate every seat but the first one step clockwise.
		last := seats[n-1]
		copy(seats[2:], seats[1:n-1])
		seats[1] = last
	}
	return plan, nil
}
