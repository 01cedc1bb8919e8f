package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/class-booking-backend/internal/auth"
	"github.com/nekogravitycat/class-booking-backend/internal/booking"
	"github.com/nekogravitycat/class-booking-backend/internal/classinstance"
	"github.com/nekogravitycat/class-booking-backend/internal/organization"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/tz"
)

var errInvalidRange = apperror.New(http.StatusBadRequest, "start_time_from must be before start_time_to")

func localStart(b *booking.Booking) (string, string) {
	loc := tz.LoadOrUTC(b.Timezone)
	return tz.FormatDate(b.ClassStart, loc), tz.FormatTime(b.ClassStart, loc)
}

type Handler struct {
	service      booking.Service
	classService classinstance.Service
	orgService   organization.Service
}

func NewHandler(service booking.Service, classService classinstance.Service, orgService organization.Service) *Handler {
	return &Handler{
		service:      service,
		classService: classService,
		orgService:   orgService,
	}
}

func (h *Handler) require(c *gin.Context, orgID string, check func(context.Context, string, string) (bool, error)) bool {
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

// load fetches the booking in the URI and reports whether the caller is its booker.
// Anyone else must be staff of the business to see it.
func (h *Handler) load(c *gin.Context) (*booking.Booking, bool, bool) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return nil, false, false
	}

	b, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return nil, false, false
	}
	if b.UserID == auth.GetUserID(c) {
		return b, true, true
	}
	if !h.require(c, b.OrganizationID, h.orgService.IsStaffOrAbove) {
		return nil, false, false
	}
	return b, false, true
}

// List returns the bookings of a business.
// Access Control: Staff or above of the organization.
func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}
	req.Normalize()

	if !h.require(c, req.OrganizationID, h.orgService.IsStaffOrAbove) {
		return
	}

	items, total, err := h.service.List(c.Request.Context(), booking.Filter{
		OrganizationID:  req.OrganizationID,
		ClassInstanceID: req.ClassInstanceID,
		UserID:          req.UserID,
		Status:          req.Status,
		From:            req.StartTimeFrom,
		To:              req.StartTimeTo,
		Page:            req.Page,
		PageSize:        req.PageSize,
		SortBy:          req.SortBy,
		SortOrder:       req.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewPageResponse(newBookingResponses(items), req.ListParams, total))
}

// Mine returns the caller's bookings grouped for one view of the bookings screen.
func (h *Handler) Mine(c *gin.Context) {
	var req MyBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	if req.View == "" {
		req.View = booking.ViewUpcoming
	}

	groups, err := h.service.ListMine(c.Request.Context(), auth.GetUserID(c), req.View)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewMyBookingsResponse(req.View, groups))
}

// Roster lists the bookings of one class.
// Access Control: Staff or above of the class's organization.
func (h *Handler) Roster(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	class, err := h.classService.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !h.require(c, class.OrganizationID, h.orgService.IsStaffOrAbove) {
		return
	}

	items, err := h.service.Roster(c.Request.Context(), class.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": newBookingResponses(items)})
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		UserID:          auth.GetUserID(c),
		ClassInstanceID: body.ClassInstanceID,
		PaymentMethod:   booking.PaymentMethod(body.PaymentMethod),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) Get(c *gin.Context) {
	b, _, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Confirm marks a checkout booking as paid.
// Access Control: Manager or above (system admins cover the checkout callback).
func (h *Handler) Confirm(c *gin.Context) {
	b, _, ok := h.load(c)
	if !ok {
		return
	}
	if !h.require(c, b.OrganizationID, h.orgService.IsManagerOrAbove) {
		return
	}

	confirmed, err := h.service.Confirm(c.Request.Context(), b.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(confirmed))
}

// CancellationPreview shows what cancelling now would refund to the booker.
func (h *Handler) CancellationPreview(c *gin.Context) {
	b, _, ok := h.load(c)
	if !ok {
		return
	}

	p, err := h.service.CancellationPreview(c.Request.Context(), b.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewCancellationResponse(p.Info, p.RefundCredits))
}

// Cancel cancels a booking. The booker gets the policy refund; a manager of the
// business cancelling someone else's booking refunds it in full.
func (h *Handler) Cancel(c *gin.Context) {
	b, isBooker, ok := h.load(c)
	if !ok {
		return
	}
	byManager := false
	if !isBooker {
		if !h.require(c, b.OrganizationID, h.orgService.IsManagerOrAbove) {
			return
		}
		byManager = true
	}

	cancelled, err := h.service.Cancel(c.Request.Context(), b.ID, byManager)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(cancelled))
}

// GrantFreeCancel sets or clears the booker's free-cancellation privilege.
// Access Control: Manager or above.
func (h *Handler) GrantFreeCancel(c *gin.Context) {
	b, _, ok := h.load(c)
	if !ok {
		return
	}
	if !h.require(c, b.OrganizationID, h.orgService.IsManagerOrAbove) {
		return
	}

	var body FreeCancelRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	updated, err := h.service.GrantFreeCancel(c.Request.Context(), b.ID, body.Until)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(updated))
}
