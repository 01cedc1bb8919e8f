package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/class-booking-backend/internal/auth"
	"github.com/nekogravitycat/class-booking-backend/internal/organization"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/class-booking-backend/internal/venue"
)

type VenueHandler struct {
	service    venue.Service
	orgService organization.Service
}

func NewHandler(service venue.Service, orgService organization.Service) *VenueHandler {
	return &VenueHandler{service: service, orgService: orgService}
}

// checkPermission verifies the caller manages orgID, writing the error response otherwise.
func (h *VenueHandler) checkPermission(c *gin.Context, orgID string) bool {
	ok, err := h.orgService.IsManagerOrAbove(c.Request.Context(), orgID, auth.GetUserID(c))
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

func (h *VenueHandler) List(c *gin.Context) {
	var req ListVenuesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	venues, total, err := h.service.List(c.Request.Context(), venue.VenueFilter{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Page:           req.Page,
		PageSize:       req.PageSize,
		SortBy:         req.SortBy,
		SortOrder:      req.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]VenueResponse, len(venues))
	for i, v := range venues {
		items[i] = NewVenueResponse(v)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.ListParams, total))
}

func (h *VenueHandler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	v, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewVenueResponse(v))
}

// Create adds a venue to an organization.
// Access Control: Manager or above of the organization.
func (h *VenueHandler) Create(c *gin.Context) {
	var body CreateVenueRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	if !h.checkPermission(c, body.OrganizationID) {
		return
	}

	v, err := h.service.Create(c.Request.Context(), venue.CreateVenueRequest{
		OrganizationID: body.OrganizationID,
		Name:           body.Name,
		Address:        body.Address,
		Description:    body.Description,
		Latitude:       body.Latitude,
		Longitude:      body.Longitude,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewVenueResponse(v))
}

// Update modifies a venue.
// Access Control: Manager or above of the owning organization.
func (h *VenueHandler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body UpdateVenueRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	existing, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !h.checkPermission(c, existing.OrganizationID) {
		return
	}

	v, err := h.service.Update(c.Request.Context(), uri.ID, venue.UpdateVenueRequest{
		Name:        body.Name,
		Address:     body.Address,
		Description: body.Description,
		Latitude:    body.Latitude,
		Longitude:   body.Longitude,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewVenueResponse(v))
}

// Delete removes a venue with no upcoming classes.
// Access Control: Manager or above of the owning organization.
func (h *VenueHandler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	existing, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !h.checkPermission(c, existing.OrganizationID) {
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
