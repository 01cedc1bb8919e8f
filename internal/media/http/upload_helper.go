package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/class-booking-backend/internal/auth"
	"github.com/nekogravitycat/class-booking-backend/internal/media"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/response"
)

// FileUploadConfig defines the configuration for a multipart upload endpoint.
type FileUploadConfig struct {
	FormFieldName string                                         // default: "file"
	MaxSizeBytes  int64                                          // 0 = no limit
	AllowedTypes  []string                                       // empty = allow all
	RequireImage  bool                                           // reject non-images
	AfterUpload   func(ctx context.Context, fileID string) error // optional; failure rolls the upload back
}

// HandleFileUpload stores the uploaded file, runs the after-upload hook and writes the response.
func (h *Handler) HandleFileUpload(c *gin.Context, config FileUploadConfig) {
	fieldName := config.FormFieldName
	if fieldName == "" {
		fieldName = "file"
	}

	fileHeader, err := c.FormFile(fieldName)
	if err != nil {
		response.BadRequest(c, fieldName+" is required", err)
		return
	}

	f, err := h.mediaService.Upload(c.Request.Context(), media.UploadInput{
		FileHeader:   fileHeader,
		UserID:       auth.GetUserID(c),
		MaxSizeBytes: config.MaxSizeBytes,
		AllowedTypes: config.AllowedTypes,
		RequireImage: config.RequireImage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if config.AfterUpload != nil {
		if err := config.AfterUpload(c.Request.Context(), f.ID); err != nil {
			_ = h.mediaService.Delete(c.Request.Context(), f.ID)
			response.Error(c, err)
			return
		}
	}

	resp := FileUploadResponse{
		Message: "file uploaded successfully",
		FileID:  f.ID,
		URL:     media.FileURL(f.ID),
	}
	if f.ThumbnailPath != nil {
		t := media.ThumbnailURL(f.ID)
		resp.ThumbnailURL = &t
	}

	c.JSON(http.StatusOK, resp)
}
