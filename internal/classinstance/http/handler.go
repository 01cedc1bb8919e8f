package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/class-booking-backend/internal/auth"
	"github.com/nekogravitycat/class-booking-backend/internal/classinstance"
	"github.com/nekogravitycat/class-booking-backend/internal/classtemplate"
	"github.com/nekogravitycat/class-booking-backend/internal/organization"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/response"
)

type ClassHandler struct {
	service         classinstance.Service
	templateService classtemplate.Service
	orgService      organization.Service
}

func NewHandler(
	service classinstance.Service,
	templateService classtemplate.Service,
	orgService organization.Service,
) *ClassHandler {
	return &ClassHandler{
		service:         service,
		templateService: templateService,
		orgService:      orgService,
	}
}

func (h *ClassHandler) templateOrg(ctx context.Context, templateID string) (string, error) {
	t, err := h.templateService.GetByID(ctx, templateID)
	if err != nil {
		return "", err
	}
	return t.OrganizationID, nil
}

func (h *ClassHandler) checkPermission(c *gin.Context, orgID string, check func(context.Context, string, string) (bool, error)) bool {
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

func (h *ClassHandler) loadManaged(c *gin.Context) (*classinstance.ClassInstance, bool) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return nil, false
	}

	ci, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	if !h.checkPermission(c, ci.OrganizationID, h.orgService.IsManagerOrAbove) {
		return nil, false
	}
	return ci, true
}

// List returns the calendar of an organization.
// Access Control: Staff or above, since cancelled classes and seat counts are internal.
func (h *ClassHandler) List(c *gin.Context) {
	var req ListClassesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	if !h.checkPermission(c, req.OrganizationID, h.orgService.IsStaffOrAbove) {
		return
	}

	sortOrder := req.SortOrder
	if c.Query("sort_order") == "" {
		sortOrder = "ASC"
	}
	items, total, err := h.service.List(c.Request.Context(), classinstance.ListQuery{
		Filter: classinstance.Filter{
			OrganizationID: req.OrganizationID,
			VenueID:        req.VenueID,
			TemplateID:     req.TemplateID,
			Status:         req.Status,
			From:           req.From,
			To:             req.To,
			Page:           req.Page,
			PageSize:       req.PageSize,
			SortOrder:      sortOrder,
		},
		Date: req.Date,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewPageResponse(newClassResponses(items), req.ListParams, total))
}

func (h *ClassHandler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	ci, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewClassResponse(ci))
}

// Create schedules a class from a template.
// Access Control: Manager or above of the template's organization (checked after lookup).
func (h *ClassHandler) Create(c *gin.Context) {
	var body CreateClassRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	orgID, err := h.templateOrg(c.Request.Context(), body.TemplateID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !h.checkPermission(c, orgID, h.orgService.IsManagerOrAbove) {
		return
	}

	ci, err := h.service.Create(c.Request.Context(), classinstance.CreateRequest{
		TemplateID:              body.TemplateID,
		VenueID:                 body.VenueID,
		Name:                    body.Name,
		StartTime:               body.StartTime,
		Date:                    body.Date,
		Time:                    body.Time,
		DurationMinutes:         body.DurationMinutes,
		Capacity:                body.Capacity,
		PriceCredits:            body.PriceCredits,
		CancellationWindowHours: body.CancellationWindowHours,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewClassResponse(ci))
}

func (h *ClassHandler) Update(c *gin.Context) {
	existing, ok := h.loadManaged(c)
	if !ok {
		return
	}

	var body UpdateClassRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	ci, err := h.service.Update(c.Request.Context(), existing.ID, classinstance.UpdateRequest{
		VenueID:                 body.VenueID,
		Name:                    body.Name,
		StartTime:               body.StartTime,
		Date:                    body.Date,
		Time:                    body.Time,
		DurationMinutes:         body.DurationMinutes,
		Capacity:                body.Capacity,
		PriceCredits:            body.PriceCredits,
		CancellationWindowHours: body.CancellationWindowHours,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewClassResponse(ci))
}

// Cancel cancels the class and every active booking on it with a full refund.
// Repeating the call on a cancelled class retries bookings a previous attempt missed.
func (h *ClassHandler) Cancel(c *gin.Context) {
	existing, ok := h.loadManaged(c)
	if !ok {
		return
	}

	ci, n, err := h.service.Cancel(c.Request.Context(), existing.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, CancelClassResponse{Class: NewClassResponse(ci), CancelledBookings: n})
}

func (h *ClassHandler) Delete(c *gin.Context) {
	existing, ok := h.loadManaged(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), existing.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Schedule is the public day view of an organization.
func (h *ClassHandler) Schedule(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	var req ScheduleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	day, err := h.service.Schedule(c.Request.Context(), uri.ID, req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ScheduleResponse{
		OrganizationID: day.OrganizationID,
		Date:           day.Date,
		Timezone:       day.Timezone,
		Classes:        newClassResponses(day.Classes),
	})
}
