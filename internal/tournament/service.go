package tournament

import (
	"context"
	"errors"
	"strings"

	"github.com/nekogravitycat/class-booking-backend/internal/booking"
	"github.com/nekogravitycat/class-booking-backend/internal/classinstance"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/events"
	"github.com/nekogravitycat/class-booking-backend/internal/user"
)

type CreateRequest struct {
	ClassInstanceID string
	Name            string
	PointsPerMatch  int
}

// AddParticipantRequest adds a registered user or, without UserID, a guest.
type AddParticipantRequest struct {
	UserID      *string
	DisplayName string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Tournament, error)
	GetByID(ctx context.Context, id string) (*Tournament, error)
	GetState(ctx context.Context, id string) (*State, error)
	GetStateByClass(ctx context.Context, classID string) (*State, error)
	Delete(ctx context.Context, id string) error

	AddParticipant(ctx context.Context, id string, req AddParticipantRequest) (*Participant, error)
	RemoveParticipant(ctx context.Context, id, participantID string) error
	// ImportFromBookings adds every confirmed booker of the class not yet taking part.
	ImportFromBookings(ctx context.Context, id string) (int, error)

	// Start generates the schedule. Zero rounds plays the full rotation.
	Start(ctx context.Context, id string, rounds int) (*State, error)
	RecordMatchResult(ctx context.Context, id, matchID string, scoreA, scoreB int) (*Match, error)
	AdvanceRound(ctx context.Context, id string) (*State, error)
}

type service struct {
	repo           Repository
	classService   classinstance.Service
	bookingService booking.Service
	userService    user.Service
	publisher      events.Publisher
}

func NewService(
	repo Repository,
	classService classinstance.Service,
	bookingService booking.Service,
	userService user.Service,
	publisher events.Publisher,
) Service {
	return &service{
		repo:           repo,
		classService:   classService,
		bookingService: bookingService,
		userService:    userService,
		publisher:      publisher,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Tournament, error) {
	class, err := s.classService.GetByID(ctx, req.ClassInstanceID)
	if err != nil {
		return nil, err
	}
	if class.Status == classinstance.StatusCancelled {
		return nil, classinstance.ErrClassCancelled
	}

	points := req.PointsPerMatch
	if points == 0 {
		points = DefaultPoints
	}
	if !ValidPoints(points) {
		return nil, ErrInvalidPoints
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = class.Name
	}
	if name == "" {
		return nil, ErrNameRequired
	}

	t := &Tournament{
		ClassInstanceID: class.ID,
		OrganizationID:  class.OrganizationID,
		Name:            name,
		PointsPerMatch:  points,
		Status:          StatusDraft,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Tournament, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) state(ctx context.Context, t *Tournament) (*State, error) {
	participants, err := s.repo.ListParticipants(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	matches, err := s.repo.ListMatches(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return &State{
		Tournament:   t,
		Participants: participants,
		Rounds:       GroupRounds(matches),
		Standings:    Standings(participants, matches),
	}, nil
}

func (s *service) GetState(ctx context.Context, id string) (*State, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.state(ctx, t)
}

func (s *service) GetStateByClass(ctx context.Context, classID string) (*State, error) {
	t, err := s.repo.GetByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	return s.state(ctx, t)
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) draft(ctx context.Context, id string) (*Tournament, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status != StatusDraft {
		return nil, ErrNotDraft
	}
	return t, nil
}

func (s *service) AddParticipant(ctx context.Context, id string, req AddParticipantRequest) (*Participant, error) {
	if _, err := s.draft(ctx, id); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.DisplayName)
	if req.UserID != nil && name == "" {
		u, err := s.userService.GetByID(ctx, *req.UserID)
		if err != nil {
			return nil, err
		}
		name = u.Name()
	}
	if name == "" {
		return nil, ErrDisplayNameRequired
	}

	p := &Participant{TournamentID: id, UserID: req.UserID, DisplayName: name}
	if err := s.repo.AddParticipant(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) RemoveParticipant(ctx context.Context, id, participantID string) error {
	if _, err := s.draft(ctx, id); err != nil {
		return err
	}
	return s.repo.RemoveParticipant(ctx, id, participantID)
}

func (s *service) ImportFromBookings(ctx context.Context, id string) (int, error) {
	t, err := s.draft(ctx, id)
	if err != nil {
		return 0, err
	}

	roster, err := s.bookingService.Roster(ctx, t.ClassInstanceID)
	if err != nil {
		return 0, err
	}
	existing, err := s.repo.ListParticipants(ctx, id)
	if err != nil {
		return 0, err
	}
	present := make(map[string]bool, len(existing))
	for _, p := range existing {
		if p.UserID != nil {
			present[*p.UserID] = true
		}
	}

	added := 0
	for _, b := range roster {
		if b.Status != booking.StatusConfirmed || present[b.UserID] {
			continue
		}
		userID := b.UserID
		p := &Participant{TournamentID: id, UserID: &userID, DisplayName: b.UserName}
		if err := s.repo.AddParticipant(ctx, p); err != nil {
			if errors.Is(err, ErrDuplicateParticipant) {
				continue
			}
			return added, err
		}
		present[userID] = true
		added++
	}
	return added, nil
}

func (s *service) Start(ctx context.Context, id string, rounds int) (*State, error) {
	t, err := s.draft(ctx, id)
	if err != nil {
		return nil, err
	}
	participants, err := s.repo.ListParticipants(ctx, id)
	if err != nil {
		return nil, err
	}

	players := make([]string, len(participants))
	for i, p := range participants {
		players[i] = p.ID
	}
	plan, err := Schedule(players, rounds)
	if err != nil {
		return nil, err
	}

	var matches []*Match
	for r, round := range plan {
		for _, p := range round {
			matches = append(matches, &Match{
				TournamentID: id,
				Round:        r + 1,
				Court:        p.Court,
				TeamA:        p.TeamA,
				TeamB:        p.TeamB,
			})
		}
	}

	t.Status = StatusInProgress
	t.CurrentRound = 1
	t.TotalRounds = len(plan)
	if err := s.repo.Start(ctx, t, matches); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.TournamentStarted, map[string]any{
		"tournament_id":     t.ID,
		"class_instance_id": t.ClassInstanceID,
		"players":           len(players),
		"total_rounds":      t.TotalRounds,
	})
	return s.state(ctx, t)
}

func (s *service) inProgress(ctx context.Context, id string) (*Tournament, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status != StatusInProgress {
		return nil, ErrNotInProgress
	}
	return t, nil
}

func (s *service) RecordMatchResult(ctx context.Context, id, matchID string, scoreA, scoreB int) (*Match, error) {
	t, err := s.inProgress(ctx, id)
	if err != nil {
		return nil, err
	}
	m, err := s.repo.GetMatch(ctx, id, matchID)
	if err != nil {
		return nil, err
	}
	if m.Round != t.CurrentRound {
		return nil, ErrNotCurrentRound
	}
	if err := ValidateScore(t.PointsPerMatch, scoreA, scoreB); err != nil {
		return nil, err
	}

	m.ScoreA, m.ScoreB = &scoreA, &scoreB
	if err := s.repo.RecordMatch(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) AdvanceRound(ctx context.Context, id string) (*State, error) {
	t, err := s.inProgress(ctx, id)
	if err != nil {
		return nil, err
	}
	matches, err := s.repo.ListMatches(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		if m.Round == t.CurrentRound && !m.Recorded() {
			return nil, ErrRoundIncomplete
		}
	}

	from := t.CurrentRound
	key := events.TournamentRoundAdvanced
	if t.CurrentRound >= t.TotalRounds {
		t.Status = StatusCompleted
		key = events.TournamentCompleted
	} else {
		t.CurrentRound++
	}
	if err := s.repo.Advance(ctx, t, from); err != nil {
		return nil, err
	}

	st, err := s.state(ctx, t)
	if err != nil {
		return nil, err
	}
	data := map[string]any{
		"tournament_id":     t.ID,
		"class_instance_id": t.ClassInstanceID,
		"current_round":     t.CurrentRound,
		"total_rounds":      t.TotalRounds,
	}
	if t.Status == StatusCompleted && len(st.Standings) > 0 {
		data["winner"] = st.Standings[0].DisplayName
	}
	events.Emit(ctx, s.publisher, key, data)
	return st, nil
}
