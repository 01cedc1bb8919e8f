package organization

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nekogravitycat/class-booking-backend/internal/pkg/tz"
	"github.com/nekogravitycat/class-booking-backend/internal/user"
)

// CreateOrganizationRequest carries data to create an organization.
type CreateOrganizationRequest struct {
	Name     string
	Timezone string
}

// OnboardRequest carries the self-service business signup.
type OnboardRequest struct {
	Name     string
	Timezone string
	Venue    *VenueSeed
}

// OnboardResult is the created business plus the optional first venue id.
type OnboardResult struct {
	Organization *Organization
	VenueID      string
}

// UpdateOrganizationRequest defines the fields that can be updated.
type UpdateOrganizationRequest struct {
	Name     *string
	Timezone *string
	IsActive *bool
}

// Service defines business logic for organizations.
type Service interface {
	// Organization methods
	Create(ctx context.Context, req CreateOrganizationRequest) (*Organization, error)
	Onboard(ctx context.Context, userID string, req OnboardRequest) (*OnboardResult, error)
	GetByID(ctx context.Context, id string) (*Organization, error)
	Location(ctx context.Context, id string) (*time.Location, error)
	List(ctx context.Context, filter OrganizationFilter) ([]*Organization, int, error)
	Update(ctx context.Context, id string, req UpdateOrganizationRequest) (*Organization, error)
	Delete(ctx context.Context, id string) error
	// Member methods
	GetMember(ctx context.Context, orgID string, userID string) (*Member, error)
	AddMember(ctx context.Context, actorID, orgID, userID, role string) error
	UpdateMemberRole(ctx context.Context, actorID, orgID, userID, role string) error
	RemoveMember(ctx context.Context, actorID, orgID, userID string) error
	ListMembers(ctx context.Context, orgID string, filter MemberFilter) ([]*Member, int, error)
	// Permission methods. System admins pass every check.
	IsOwner(ctx context.Context, orgID string, userID string) (bool, error)
	IsManagerOrAbove(ctx context.Context, orgID string, userID string) (bool, error)
	IsStaffOrAbove(ctx context.Context, orgID string, userID string) (bool, error)
}

type service struct {
	repo        Repository
	userService user.Service
}

// NewService creates a new organization service.
func NewService(repo Repository, userService user.Service) Service {
	return &service{repo: repo, userService: userService}
}

// ------------------------
//   Organization methods
// ------------------------

func normalizeOrg(name, timezone string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", ErrNameRequired
	}
	timezone = strings.TrimSpace(timezone)
	if timezone == "" {
		timezone = "UTC"
	}
	if !tz.IsValid(timezone) {
		return "", "", ErrInvalidTimezone
	}
	return name, timezone, nil
}

func (s *service) Create(ctx context.Context, req CreateOrganizationRequest) (*Organization, error) {
	name, timezone, err := normalizeOrg(req.Name, req.Timezone)
	if err != nil {
		return nil, err
	}

	org := &Organization{
		Name:     name,
		Timezone: timezone,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *service) Onboard(ctx context.Context, userID string, req OnboardRequest) (*OnboardResult, error) {
	name, timezone, err := normalizeOrg(req.Name, req.Timezone)
	if err != nil {
		return nil, err
	}

	var venue *VenueSeed
	if req.Venue != nil && strings.TrimSpace(req.Venue.Name) != "" {
		venue = &VenueSeed{
			Name:    strings.TrimSpace(req.Venue.Name),
			Address: strings.TrimSpace(req.Venue.Address),
		}
	}

	org := &Organization{
		Name:     name,
		Timezone: timezone,
		IsActive: true,
	}
	venueID, err := s.repo.CreateWithOwner(ctx, org, userID, venue)
	if err != nil {
		return nil, err
	}
	return &OnboardResult{Organization: org, VenueID: venueID}, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Organization, error) {
	return s.repo.GetByID(ctx, id)
}

// Location returns the business timezone of the organization.
func (s *service) Location(ctx context.Context, id string) (*time.Location, error) {
	org, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return tz.LoadOrUTC(org.Timezone), nil
}

func (s *service) List(ctx context.Context, filter OrganizationFilter) ([]*Organization, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateOrganizationRequest) (*Organization, error) {
	org, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		newName := strings.TrimSpace(*req.Name)
		if newName == "" {
			return nil, ErrNameRequired
		}
		org.Name = newName
	}
	if req.Timezone != nil {
		if !tz.IsValid(*req.Timezone) {
			return nil, ErrInvalidTimezone
		}
		org.Timezone = *req.Timezone
	}
	if req.IsActive != nil {
		org.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ------------------------
//     Member methods
// ------------------------

func (s *service) GetMember(ctx context.Context, orgID string, userID string) (*Member, error) {
	return s.repo.GetMember(ctx, orgID, userID)
}

func (s *service) AddMember(ctx context.Context, actorID, orgID, userID, role string) error {
	role = strings.ToLower(strings.TrimSpace(role))
	if !IsValidRole(role) {
		return ErrInvalidRole
	}

	if _, err := s.repo.GetByID(ctx, orgID); err != nil {
		return err
	}
	if _, err := s.userService.GetByID(ctx, userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if role == RoleOwner {
		if err := s.requireOwner(ctx, orgID, actorID); err != nil {
			return err
		}
	}
	return s.repo.AddMember(ctx, orgID, userID, role)
}

func (s *service) UpdateMemberRole(ctx context.Context, actorID, orgID, userID, role string) error {
	role = strings.ToLower(strings.TrimSpace(role))
	if !IsValidRole(role) {
		return ErrInvalidRole
	}

	member, err := s.repo.GetMember(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if member.Role == role {
		return nil
	}

	if role == RoleOwner || member.Role == RoleOwner {
		if err := s.requireOwner(ctx, orgID, actorID); err != nil {
			return err
		}
	}
	if member.Role == RoleOwner {
		if err := s.ensureAnotherOwner(ctx, orgID); err != nil {
			return err
		}
	}
	return s.repo.UpdateMemberRole(ctx, orgID, userID, role)
}

func (s *service) RemoveMember(ctx context.Context, actorID, orgID, userID string) error {
	member, err := s.repo.GetMember(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if member.Role == RoleOwner {
		if err := s.requireOwner(ctx, orgID, actorID); err != nil {
			return err
		}
		if err := s.ensureAnotherOwner(ctx, orgID); err != nil {
			return err
		}
	}
	return s.repo.RemoveMember(ctx, orgID, userID)
}

func (s *service) ListMembers(ctx context.Context, orgID string, filter MemberFilter) ([]*Member, int, error) {
	if _, err := s.repo.GetByID(ctx, orgID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListMembers(ctx, orgID, filter)
}

func (s *service) requireOwner(ctx context.Context, orgID, actorID string) error {
	ok, err := s.IsOwner(ctx, orgID, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOwnerRequired
	}
	return nil
}

func (s *service) ensureAnotherOwner(ctx context.Context, orgID string) error {
	n, err := s.repo.CountOwners(ctx, orgID)
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastOwner
	}
	return nil
}

// ------------------------
//     Permission methods
// ------------------------

func (s *service) IsOwner(ctx context.Context, orgID string, userID string) (bool, error) {
	return s.hasRole(ctx, orgID, userID, RoleOwner)
}

func (s *service) IsManagerOrAbove(ctx context.Context, orgID string, userID string) (bool, error) {
	return s.hasRole(ctx, orgID, userID, RoleManager)
}

func (s *service) IsStaffOrAbove(ctx context.Context, orgID string, userID string) (bool, error) {
	return s.hasRole(ctx, orgID, userID, RoleStaff)
}

func (s *service) hasRole(ctx context.Context, orgID, userID, minRole string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	isAdmin, err := s.userService.IsSystemAdmin(ctx, userID)
	if err != nil {
		return false, err
	}
	if isAdmin {
		return true, nil
	}

	member, err := s.repo.GetMember(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotMember) {
			return false, nil
		}
		return false, err
	}
	return atLeast(member.Role, minRole), nil
}
