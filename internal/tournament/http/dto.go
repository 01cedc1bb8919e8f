package http

import (
	"time"

	"github.com/nekogravitycat/class-booking-backend/internal/tournament"
)

type TournamentResponse struct {
	ID              string    `json:"id"`
	ClassInstanceID string    `json:"class_instance_id"`
	OrganizationID  string    `json:"organization_id"`
	Name            string    `json:"name"`
	PointsPerMatch  int       `json:"points_per_match"`
	Status          string    `json:"status"`
	CurrentRound    int       `json:"current_round"`
	TotalRounds     int       `json:"total_rounds"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewTournamentResponse(t *tournament.Tournament) TournamentResponse {
	return TournamentResponse{
		ID:              t.ID,
		ClassInstanceID: t.ClassInstanceID,
		OrganizationID:  t.OrganizationID,
		Name:            t.Name,
		PointsPerMatch:  t.PointsPerMatch,
		Status:          string(t.Status),
		CurrentRound:    t.CurrentRound,
		TotalRounds:     t.TotalRounds,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

type ParticipantResponse struct {
	ID          string    `json:"id"`
	UserID      *string   `json:"user_id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewParticipantResponse(p *tournament.Participant) ParticipantResponse {
	return ParticipantResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		CreatedAt:   p.CreatedAt,
	}
}

type MatchResponse struct {
	ID         string     `json:"id"`
	Round      int        `json:"round"`
	Court      int        `json:"court"`
	TeamA      [2]string  `json:"team_a"`
	TeamB      [2]string  `json:"team_b"`
	ScoreA     *int       `json:"score_a"`
	ScoreB     *int       `json:"score_b"`
	RecordedAt *time.Time `json:"recorded_at"`
}

func NewMatchResponse(m *tournament.Match) MatchResponse {
	return MatchResponse{
		ID:         m.ID,
		Round:      m.Round,
		Court:      m.Court,
		TeamA:      m.TeamA,
		TeamB:      m.TeamB,
		ScoreA:     m.ScoreA,
		ScoreB:     m.ScoreB,
		RecordedAt: m.RecordedAt,
	}
}

type RoundResponse struct {
	Number  int             `json:"number"`
	Matches []MatchResponse `json:"matches"`
}

type StandingResponse struct {
	Rank          int    `json:"rank"`
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	Played        int    `json:"played"`
	Points        int    `json:"points"`
	Wins          int    `json:"wins"`
	Draws         int    `json:"draws"`
	Losses        int    `json:"losses"`
	Diff          int    `json:"point_diff"`
}

type StateResponse struct {
	Tournament   TournamentResponse    `json:"tournament"`
	Participants []ParticipantResponse `json:"participants"`
	Rounds       []RoundResponse       `json:"rounds"`
	Standings    []StandingResponse    `json:"standings"`
}

func NewStateResponse(st *tournament.State) StateResponse {
	resp := StateResponse{
		Tournament:   NewTournamentResponse(st.Tournament),
		Participants: make([]ParticipantResponse, len(st.Participants)),
		Rounds:       make([]RoundResponse, len(st.Rounds)),
		Standings:    make([]StandingResponse, len(st.Standings)),
	}
	for i, p := range st.Participants {
		resp.Participants[i] = NewParticipantResponse(p)
	}
	for i, r := range st.Rounds {
		matches := make([]MatchResponse, len(r.Matches))
		for j, m := range r.Matches {
			matches[j] = NewMatchResponse(m)
		}
		resp.Rounds[i] = RoundResponse{Number: r.Number, Matches: matches}
	}
	for i, s := range st.Standings {
		resp.Standings[i] = StandingResponse{
			Rank:          i + 1,
			ParticipantID: s.ParticipantID,
			DisplayName:   s.DisplayName,
			Played:        s.Played,
			Points:        s.Points,
			Wins:          s.Wins,
			Draws:         s.Draws,
			Losses:        s.Losses,
			Diff:          s.Diff,
		}
	}
	return resp
}

type CreateTournamentRequest struct {
	ClassInstanceID string `json:"class_instance_id" binding:"required,uuid"`
	Name            string `json:"name" binding:"omitempty,max=120"`
	PointsPerMatch  int    `json:"points_per_match" binding:"omitempty,oneof=16 21 24 32"`
}

type AddParticipantRequest struct {
	UserID      *string `json:"user_id" binding:"omitempty,uuid"`
	DisplayName string  `json:"display_name" binding:"omitempty,max=80"`
}

type ParticipantURI struct {
	ID            string `uri:"id" binding:"required,uuid"`
	ParticipantID string `uri:"participant_id" binding:"required,uuid"`
}

type MatchURI struct {
	ID      string `uri:"id" binding:"required,uuid"`
	MatchID string `uri:"match_id" binding:"required,uuid"`
}

type StartRequest struct {
	Rounds int `json:"rounds" binding:"omitempty,min=1"`
}

type RecordResultRequest struct {
	ScoreA *int `json:"score_a" binding:"required,min=0"`
	ScoreB *int `json:"score_b" binding:"required,min=0"`
}

type ImportResponse struct {
	Added int           `json:"added"`
	State StateResponse `json:"state"`
}
