package venue

import (
	"context"
	"strings"
	"time"

	"github.com/nekogravitycat/class-booking-backend/internal/organization"
)

// CreateVenueRequest carries data to create a venue.
type CreateVenueRequest struct {
	OrganizationID string
	Name           string
	Address        string
	Description    string
	Latitude       *float64
	Longitude      *float64
}

// UpdateVenueRequest carries data for partial updates.
type UpdateVenueRequest struct {
	Name        *string
	Address     *string
	Description *string
	Latitude    *float64
	Longitude   *float64
}

type Service interface {
	Create(ctx context.Context, req CreateVenueRequest) (*Venue, error)
	GetByID(ctx context.Context, id string) (*Venue, error)
	List(ctx context.Context, filter VenueFilter) ([]*Venue, int, error)
	Update(ctx context.Context, id string, req UpdateVenueRequest) (*Venue, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo       Repository
	orgService organization.Service
	now        func() time.Time
}

func NewService(repo Repository, orgService organization.Service) Service {
	return &service{repo: repo, orgService: orgService, now: time.Now}
}

// validateVenue checks name and coordinates.
func validateVenue(v *Venue) error {
	if strings.TrimSpace(v.Name) == "" {
		return ErrNameRequired
	}
	if v.Latitude != nil && (*v.Latitude < -90 || *v.Latitude > 90) {
		return ErrInvalidGeo
	}
	if v.Longitude != nil && (*v.Longitude < -180 || *v.Longitude > 180) {
		return ErrInvalidGeo
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateVenueRequest) (*Venue, error) {
	if _, err := s.orgService.GetByID(ctx, req.OrganizationID); err != nil {
		return nil, err
	}

	v := &Venue{
		OrganizationID: req.OrganizationID,
		Name:           strings.TrimSpace(req.Name),
		Address:        strings.TrimSpace(req.Address),
		Description:    req.Description,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
	}
	if err := validateVenue(v); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Venue, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter VenueFilter) ([]*Venue, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateVenueRequest) (*Venue, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		v.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		v.Address = strings.TrimSpace(*req.Address)
	}
	if req.Description != nil {
		v.Description = *req.Description
	}
	if req.Latitude != nil {
		v.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		v.Longitude = req.Longitude
	}

	if err := validateVenue(v); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Delete refuses while classes are still scheduled there.
func (s *service) Delete(ctx context.Context, id string) error {
	busy, err := s.repo.HasUpcomingClasses(ctx, id, s.now())
	if err != nil {
		return err
	}
	if busy {
		return ErrInUse
	}
	return s.repo.Delete(ctx, id)
}
