package http

import (
	"time"

	"github.com/nekogravitycat/class-booking-backend/internal/organization"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/request"
)

// OrganizationResponse is the public shape of a business.
type OrganizationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Timezone  string    `json:"timezone"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func NewOrganizationResponse(o *organization.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:        o.ID,
		Name:      o.Name,
		Timezone:  o.Timezone,
		IsActive:  o.IsActive,
		CreatedAt: o.CreatedAt,
	}
}

// OrganizationTag is a brief representation of a business.
type OrganizationTag struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Timezone string `json:"timezone,omitempty"`
}

// ListOrganizationsRequest defines query parameters for listing organizations.
type ListOrganizationsRequest struct {
	request.ListParams
	Name   string `form:"name"`
	SortBy string `form:"sort_by" binding:"omitempty,oneof=name created_at"`
}

// CreateOrganizationRequest is the payload for POST /organizations.
type CreateOrganizationRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Timezone string `json:"timezone" binding:"omitempty,timezone"`
}

// OnboardVenueRequest is the optional first venue of an onboarding request.
type OnboardVenueRequest struct {
	Name    string `json:"name" binding:"required,max=120"`
	Address string `json:"address" binding:"omitempty,max=255"`
}

// OnboardRequest is the payload for POST /organizations/onboard.
type OnboardRequest struct {
	Name     string               `json:"name" binding:"required,max=120"`
	Timezone string               `json:"timezone" binding:"required,timezone"`
	Venue    *OnboardVenueRequest `json:"venue"`
}

// OnboardResponse returns the new business and its first venue, if any.
type OnboardResponse struct {
	Organization OrganizationResponse `json:"organization"`
	VenueID      *string              `json:"venue_id"`
}

// UpdateOrganizationRequest is the payload for PATCH /organizations/:id.
type UpdateOrganizationRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=120"`
	Timezone *string `json:"timezone" binding:"omitempty,timezone"`
	IsActive *bool   `json:"is_active"`
}

// MemberResponse describes one member of an organization.
type MemberResponse struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName *string   `json:"display_name"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
}

func NewMemberResponse(m *organization.Member) MemberResponse {
	return MemberResponse{
		UserID:      m.UserID,
		Email:       m.Email,
		DisplayName: m.DisplayName,
		Role:        m.Role,
		JoinedAt:    m.CreatedAt,
	}
}

// ListMembersRequest defines query parameters for listing members.
type ListMembersRequest struct {
	request.ListParams
	Role   string `form:"role" binding:"omitempty,oneof=owner manager staff"`
	SortBy string `form:"sort_by" binding:"omitempty,oneof=role email created_at"`
}

// OrgMemberURI binds /organizations/:id/members/:user_id.
type OrgMemberURI struct {
	ID     string `uri:"id" binding:"required,uuid"`
	UserID string `uri:"user_id" binding:"required,uuid"`
}

// AddMemberRequest is the payload for POST /organizations/:id/members.
type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Role   string `json:"role" binding:"required,oneof=owner manager staff"`
}

// UpdateMemberRoleRequest is the payload for PATCH /organizations/:id/members/:user_id.
type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=owner manager staff"`
}
