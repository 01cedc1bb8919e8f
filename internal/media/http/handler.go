package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/class-booking-backend/internal/auth"
	"github.com/nekogravitycat/class-booking-backend/internal/media"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/response"
)

type Handler struct {
	mediaService media.Service
}

func NewHandler(mediaService media.Service) *Handler {
	return &Handler{mediaService: mediaService}
}

// Upload accepts a standalone image upload from an authenticated user.
func (h *Handler) Upload(c *gin.Context) {
	h.HandleFileUpload(c, FileUploadConfig{
		MaxSizeBytes: media.CoverMaxBytes,
		AllowedTypes: media.CoverTypes,
		RequireImage: true,
	})
}

// Get returns file metadata.
func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	f, err := h.mediaService.Get(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewFileResponse(f))
}

// ServeFile streams the original upload.
func (h *Handler) ServeFile(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	stream, f, err := h.mediaService.Download(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	c.Header("Content-Type", f.ContentType)
	c.Header("Content-Disposition", "inline; filename=\""+f.Filename+"\"")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		logger.FromContext(c.Request.Context()).Warn("stream file aborted", slog.String("file_id", f.ID), logger.Err(err))
	}
}

// ServeThumbnail streams the JPEG thumbnail.
func (h *Handler) ServeThumbnail(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	stream, f, err := h.mediaService.DownloadThumbnail(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	c.Header("Content-Type", "image/jpeg")
	c.Header("Content-Disposition", "inline; filename=\""+f.ID+"_thumb.jpg\"")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		logger.FromContext(c.Request.Context()).Warn("stream thumbnail aborted", slog.String("file_id", f.ID), logger.Err(err))
	}
}

// Delete removes a file. Only the uploader may delete it.
func (h *Handler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	f, err := h.mediaService.Get(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if f.UserID == nil || *f.UserID != auth.GetUserID(c) {
		response.Error(c, apperror.ErrPermissionDenied)
		return
	}

	if err := h.mediaService.Delete(c.Request.Context(), req.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
