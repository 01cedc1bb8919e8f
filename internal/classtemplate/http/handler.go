package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/class-booking-backend/internal/auth"
	"github.com/nekogravitycat/class-booking-backend/internal/classtemplate"
	"github.com/nekogravitycat/class-booking-backend/internal/media"
	mediahttp "github.com/nekogravitycat/class-booking-backend/internal/media/http"
	"github.com/nekogravitycat/class-booking-backend/internal/organization"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/response"
)

type TemplateHandler struct {
	service      classtemplate.Service
	orgService   organization.Service
	mediaHandler *mediahttp.Handler
}

func NewHandler(service classtemplate.Service, orgService organization.Service, mediaHandler *mediahttp.Handler) *TemplateHandler {
	return &TemplateHandler{
		service:      service,
		orgService:   orgService,
		mediaHandler: mediaHandler,
	}
}

func (h *TemplateHandler) checkPermission(c *gin.Context, orgID string) bool {
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

// loadManaged fetches the template in the URI and checks the caller manages its organization.
func (h *TemplateHandler) loadManaged(c *gin.Context) (*classtemplate.ClassTemplate, bool) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return nil, false
	}

	t, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	if !h.checkPermission(c, t.OrganizationID) {
		return nil, false
	}
	return t, true
}

func (h *TemplateHandler) List(c *gin.Context) {
	var req ListTemplatesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	items, total, err := h.service.List(c.Request.Context(), classtemplate.Filter{
		OrganizationID: req.OrganizationID,
		VenueID:        req.VenueID,
		IsActive:       req.IsActive,
		Page:           req.Page,
		PageSize:       req.PageSize,
		SortBy:         req.SortBy,
		SortOrder:      req.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.MapPage(items, NewTemplateResponse, req.ListParams, total))
}

func (h *TemplateHandler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewTemplateResponse(t))
}

// Create adds a template card.
// Access Control: Manager or above of the organization.
func (h *TemplateHandler) Create(c *gin.Context) {
	var body CreateTemplateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	if !h.checkPermission(c, body.OrganizationID) {
		return
	}

	t, err := h.service.Create(c.Request.Context(), classtemplate.CreateRequest{
		OrganizationID:          body.OrganizationID,
		VenueID:                 body.VenueID,
		Name:                    body.Name,
		Description:             body.Description,
		DurationMinutes:         body.DurationMinutes,
		Capacity:                body.Capacity,
		PriceCredits:            body.PriceCredits,
		CancellationWindowHours: body.CancellationWindowHours,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewTemplateResponse(t))
}

func (h *TemplateHandler) Update(c *gin.Context) {
	existing, ok := h.loadManaged(c)
	if !ok {
		return
	}

	var body UpdateTemplateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	t, err := h.service.Update(c.Request.Context(), existing.ID, classtemplate.UpdateRequest{
		VenueID:                 body.VenueID,
		Name:                    body.Name,
		Description:             body.Description,
		DurationMinutes:         body.DurationMinutes,
		Capacity:                body.Capacity,
		PriceCredits:            body.PriceCredits,
		CancellationWindowHours: body.CancellationWindowHours,
		IsActive:                body.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewTemplateResponse(t))
}

func (h *TemplateHandler) Delete(c *gin.Context) {
	existing, ok := h.loadManaged(c)
	if !ok {
		return
	}

	deactivated, err := h.service.Delete(c.Request.Context(), existing.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if deactivated {
		c.JSON(http.StatusOK, DeleteTemplateResponse{Deactivated: true})
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadCover stores a cover image and attaches it to the template.
func (h *TemplateHandler) UploadCover(c *gin.Context) {
	existing, ok := h.loadManaged(c)
	if !ok {
		return
	}

	h.mediaHandler.HandleFileUpload(c, mediahttp.FileUploadConfig{
		FormFieldName: "cover",
		MaxSizeBytes:  media.CoverMaxBytes,
		AllowedTypes:  media.CoverTypes,
		RequireImage:  true,
		AfterUpload: func(ctx context.Context, fileID string) error {
			return h.service.SetCoverImage(ctx, existing.ID, fileID)
		},
	})
}
