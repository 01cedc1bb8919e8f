package tournament

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/class-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound             = apperror.New(http.StatusNotFound, "tournament not found")
	ErrAlreadyExists        = apperror.New(http.StatusConflict, "class already has a tournament")
	ErrNameRequired         = apperror.New(http.StatusBadRequest, "tournament name is required")
	ErrInvalidPoints        = apperror.New(http.StatusBadRequest, "points per match must be 16, 21, 24 or 32")
	ErrNotDraft             = apperror.New(http.StatusConflict, "tournament has already started")
	ErrNotInProgress        = apperror.New(http.StatusConflict, "tournament is not in progress")
	ErrInvalidPlayerCount   = apperror.New(http.StatusBadRequest, "americano needs at least 4 players and a multiple of 4")
	ErrInvalidRounds        = apperror.New(http.StatusBadRequest, "rounds must be between 1 and players minus one")
	ErrParticipantNotFound  = apperror.New(http.StatusNotFound, "participant not found")
	ErrDuplicateParticipant = apperror.New(http.StatusConflict, "user is already a participant")
	ErrDisplayNameRequired  = apperror.New(http.StatusBadRequest, "display name is required for guests")
	ErrMatchNotFound        = apperror.New(http.StatusNotFound, "match not found")
	ErrNotCurrentRound      = apperror.New(http.StatusConflict, "match is not in the current round")
	ErrInvalidScore         = apperror.New(http.StatusBadRequest, "scores must be non-negative and add up to the points per match")
	ErrRoundIncomplete      = apperror.New(http.StatusConflict, "every match of the current round needs a result")
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// DefaultPoints is used when a tournament is created without a points setting.
const DefaultPoints = 21

// ValidPoints reports whether p is an allowed points-per-match setting.
func ValidPoints(p int) bool {
	switch p {
	case 16, 21, 24, 32:
		return true
	}
	return false
}

// Tournament is an Americano widget attached to one class instance.
type Tournament struct {
	ID              string
	ClassInstanceID string
	OrganizationID  string
	Name            string
	PointsPerMatch  int
	Status          Status
	CurrentRound    int
	TotalRounds     int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Participant struct {
	ID           string
	TournamentID string
	UserID       *string
	DisplayName  string
	CreatedAt    time.Time
}

// Match is one game on one court. Each team is a pair of participant ids.
type Match struct {
	ID           string
	TournamentID string
	Round        int
	Court        int
	TeamA        [2]string
	TeamB        [2]string
	ScoreA       *int
	ScoreB       *int
	RecordedAt   *time.Time
}

func (m *Match) Recorded() bool {
	return m.ScoreA != nil && m.ScoreB != nil
}

// Round groups the matches played at the same time.
type Round struct {
	Number  int
	Matches []*Match
}

// State is everything a client needs to render the widget.
type State struct {
	Tournament   *Tournament
	Participants []*Participant
	Rounds       []Round
	Standings    []Standing
}
