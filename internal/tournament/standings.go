package tournament

import (
	"sort"
)

// Standing is one player's line in the leaderboard.
type Standing struct {
	ParticipantID string
	DisplayName   string
	Played        int
	Points        int
	Wins          int
	Draws         int
	Losses        int
	Diff          int
}

// ValidateScore checks a result against the points played per match.
func ValidateScore(pointsPerMatch, a, b int) error {
	if a < 0 || b < 0 || a+b != pointsPerMatch {
		return ErrInvalidScore
	}
	return nil
}

// Standings totals the recorded matches. Every player earns the points their team
// scored. Ties break on wins, then point difference, then name.
func Standings(participants []*Participant, matches []*Match) []Standing {
	rows := make(map[string]*Standing, len(participants))
	out := make([]*Standing, 0, len(participants))
	for _, p := range participants {
		s := &Standing{ParticipantID: p.ID, DisplayName: p.DisplayName}
		rows[p.ID] = s
		out = append(out, s)
	}

	credit := func(team [2]string, scored, conceded int) {
		for _, id := range team {
			s, ok := rows[id]
			if !ok {
				continue
			}
			s.Played++
			s.Points += scored
			s.Diff += scored - conceded
			switch {
			case scored > conceded:
				s.Wins++
			case scored < conceded:
				s.Losses++
			default:
				s.Draws++
			}
		}
	}
	for _, m := range matches {
		if !m.Recorded() {
			continue
		}
		credit(m.TeamA, *m.ScoreA, *m.ScoreB)
		credit(m.TeamB, *m.ScoreB, *m.ScoreA)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Diff != b.Diff {
			return a.Diff > b.Diff
		}
		return a.DisplayName < b.DisplayName
	})

	result := make([]Standing, len(out))
	for i, s := range out {
		result[i] = *s
	}
	return result
}

// GroupRounds buckets matches by round, ordered by round and court.
func GroupRounds(matches []*Match) []Round {
	sorted := make([]*Match, len(matches))
	copy(sorted, matches)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Round != sorted[j].Round {
			return sorted[i].Round < sorted[j].Round
		}
		return sorted[i].Court < sorted[j].Court
	})

	var rounds []Round
	for _, m := range sorted {
		if len(rounds) == 0 || rounds[len(rounds)-1].Number != m.Round {
			rounds = append(rounds, Round{Number: m.Round})
		}
		last := &rounds[len(rounds)-1]
		last.Matches = append(last.Matches, m)
	}
	return rounds
}
