package classtemplate

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nekogravitycat/class-booking-backend/internal/media"
	"github.com/nekogravitycat/class-booking-backend/internal/organization"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/class-booking-backend/internal/venue"
)

type CreateRequest struct {
	OrganizationID          string
	VenueID                 *string
	Name                    string
	Description             string
	DurationMinutes         int
	Capacity                int
	PriceCredits            int
	CancellationWindowHours int
}

type UpdateRequest struct {
	VenueID                 *string
	Name                    *string
	Description             *string
	DurationMinutes         *int
	Capacity                *int
	PriceCredits            *int
	CancellationWindowHours *int
	IsActive                *bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*ClassTemplate, error)
	GetByID(ctx context.Context, id string) (*ClassTemplate, error)
	List(ctx context.Context, filter Filter) ([]*ClassTemplate, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*ClassTemplate, error)
	// Delete removes the template, or deactivates it when classes were already scheduled
	// from it. The returned flag reports which happened.
	Delete(ctx context.Context, id string) (deactivated bool, err error)
	SetCoverImage(ctx context.Context, id, fileID string) error
}

type service struct {
	repo         Repository
	orgService   organization.Service
	venueService venue.Service
	mediaService media.Service
}

func NewService(repo Repository, orgService organization.Service, venueService venue.Service, mediaService media.Service) Service {
	return &service{
		repo:         repo,
		orgService:   orgService,
		venueService: venueService,
		mediaService: mediaService,
	}
}

// checkVenue verifies the venue, if any, belongs to orgID.
func (s *service) checkVenue(ctx context.Context, orgID string, venueID *string) error {
	if venueID == nil || *venueID == "" {
		return nil
	}
	v, err := s.venueService.GetByID(ctx, *venueID)
	if err != nil {
		return err
	}
	if v.OrganizationID != orgID {
		return ErrVenueMismatch
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*ClassTemplate, error) {
	if _, err := s.orgService.GetByID(ctx, req.OrganizationID); err != nil {
		return nil, err
	}

	t := &ClassTemplate{
		OrganizationID:          req.OrganizationID,
		VenueID:                 req.VenueID,
		Name:                    strings.TrimSpace(req.Name),
		Description:             strings.TrimSpace(req.Description),
		DurationMinutes:         req.DurationMinutes,
		Capacity:                req.Capacity,
		PriceCredits:            req.PriceCredits,
		CancellationWindowHours: req.CancellationWindowHours,
		IsActive:                true,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkVenue(ctx, t.OrganizationID, t.VenueID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*ClassTemplate, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*ClassTemplate, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*ClassTemplate, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.VenueID != nil {
		if *req.VenueID == "" {
			t.VenueID = nil
		} else {
			t.VenueID = req.VenueID
		}
	}
	if req.Name != nil {
		t.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		t.Description = strings.TrimSpace(*req.Description)
	}
	if req.DurationMinutes != nil {
		t.DurationMinutes = *req.DurationMinutes
	}
	if req.Capacity != nil {
		t.Capacity = *req.Capacity
	}
	if req.PriceCredits != nil {
		t.PriceCredits = *req.PriceCredits
	}
	if req.CancellationWindowHours != nil {
		t.CancellationWindowHours = *req.CancellationWindowHours
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	if req.VenueID != nil {
		if err := s.checkVenue(ctx, t.OrganizationID, t.VenueID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Delete(ctx context.Context, id string) (bool, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	used, err := s.repo.HasInstances(ctx, id)
	if err != nil {
		return false, err
	}
	if used {
		t.IsActive = false
		if err := s.repo.Update(ctx, t); err != nil {
			return false, err
		}
		return true, nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return false, err
	}
	if t.CoverImageID != nil {
		s.dropCover(ctx, *t.CoverImageID)
	}
	return false, nil
}

// SetCoverImage points the template at an uploaded file and discards the previous cover.
func (s *service) SetCoverImage(ctx context.Context, id, fileID string) error {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	previous := t.CoverImageID
	t.CoverImageID = &fileID
	if err := s.repo.Update(ctx, t); err != nil {
		return err
	}

	if previous != nil && *previous != fileID {
		s.dropCover(ctx, *previous)
	}
	return nil
}

func (s *service) dropCover(ctx context.Context, fileID string) {
	if err := s.mediaService.Delete(ctx, fileID); err != nil {
		logger.FromContext(ctx).Warn("delete old cover failed", slog.String("file_id", fileID), logger.Err(err))
	}
}
