package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/class-booking-backend/internal/auth"
	"github.com/nekogravitycat/class-booking-backend/internal/organization"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/response"
)

type OrganizationHandler struct {
	service organization.Service
}

func NewHandler(service organization.Service) *OrganizationHandler {
	return &OrganizationHandler{service: service}
}

// authorize reports whether the caller passes check for orgID, writing the error
// response itself when it does not.
func (h *OrganizationHandler) authorize(c *gin.Context, orgID string, check func(context.Context, string, string) (bool, error)) bool {
	ok, err := check(c.Request.Context(), orgID, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return false
	}
	if !ok {
		response.Error(c, apperror.ErrPermissionDenied)
		return false
	}
	return true
}

// List retrieves a paginated list of active organizations.
func (h *OrganizationHandler) List(c *gin.Context) {
	var req ListOrganizationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	orgs, total, err := h.service.List(c.Request.Context(), organization.OrganizationFilter{
		Name:      req.Name,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]OrganizationResponse, len(orgs))
	for i, o := range orgs {
		items[i] = NewOrganizationResponse(o)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.ListParams, total))
}

// Create adds a new organization without members.
// Access Control: System Admin only.
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	org, err := h.service.Create(c.Request.Context(), organization.CreateOrganizationRequest{
		Name:     req.Name,
		Timezone: req.Timezone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewOrganizationResponse(org))
}

// Onboard lets any authenticated user open a business and become its owner.
func (h *OrganizationHandler) Onboard(c *gin.Context) {
	var req OnboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	in := organization.OnboardRequest{Name: req.Name, Timezone: req.Timezone}
	if req.Venue != nil {
		in.Venue = &organization.VenueSeed{Name: req.Venue.Name, Address: req.Venue.Address}
	}

	res, err := h.service.Onboard(c.Request.Context(), auth.GetUserID(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := OnboardResponse{Organization: NewOrganizationResponse(res.Organization)}
	if res.VenueID != "" {
		resp.VenueID = &res.VenueID
	}
	c.JSON(http.StatusCreated, resp)
}

// Get retrieves a specific organization by its ID.
func (h *OrganizationHandler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	org, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewOrganizationResponse(org))
}

// Update modifies name, timezone or active flag.
// Access Control: Owner or System Admin.
func (h *OrganizationHandler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	if !h.authorize(c, uri.ID, h.service.IsOwner) {
		return
	}

	org, err := h.service.Update(c.Request.Context(), uri.ID, organization.UpdateOrganizationRequest{
		Name:     body.Name,
		Timezone: body.Timezone,
		IsActive: body.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewOrganizationResponse(org))
}

// Delete deactivates an organization.
// Access Control: System Admin only.
func (h *OrganizationHandler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), req.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListMembers lists the members of an organization.
// Access Control: any member of the organization.
func (h *OrganizationHandler) ListMembers(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var req ListMembersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	if !h.authorize(c, uri.ID, h.service.IsStaffOrAbove) {
		return
	}

	members, total, err := h.service.ListMembers(c.Request.Context(), uri.ID, organization.MemberFilter{
		Role:      req.Role,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]MemberResponse, len(members))
	for i, m := range members {
		items[i] = NewMemberResponse(m)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.ListParams, total))
}

// AddMember adds a user to the organization with a role.
// Access Control: Manager or above; granting owner requires an owner.
func (h *OrganizationHandler) AddMember(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body AddMemberRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	if !h.authorize(c, uri.ID, h.service.IsManagerOrAbove) {
		return
	}

	if err := h.service.AddMember(c.Request.Context(), auth.GetUserID(c), uri.ID, body.UserID, body.Role); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

// UpdateMemberRole changes a member's role.
// Access Control: Manager or above; owner changes require an owner.
func (h *OrganizationHandler) UpdateMemberRole(c *gin.Context) {
	var uri OrgMemberURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	if !h.authorize(c, uri.ID, h.service.IsManagerOrAbove) {
		return
	}

	if err := h.service.UpdateMemberRole(c.Request.Context(), auth.GetUserID(c), uri.ID, uri.UserID, body.Role); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveMember removes a user from the organization.
// Access Control: Manager or above; removing an owner requires an owner.
func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	var uri OrgMemberURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	if !h.authorize(c, uri.ID, h.service.IsManagerOrAbove) {
		return
	}

	if err := h.service.RemoveMember(c.Request.Context(), auth.GetUserID(c), uri.ID, uri.UserID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
