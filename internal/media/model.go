package media

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/class-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "file not found")
	ErrFileTooLarge     = apperror.New(http.StatusRequestEntityTooLarge, "file is too large")
	ErrUnsupportedType  = apperror.New(http.StatusUnsupportedMediaType, "file type is not allowed")
	ErrNotAnImage       = apperror.New(http.StatusBadRequest, "file is not a decodable image")
	ErrThumbnailMissing = apperror.New(http.StatusNotFound, "thumbnail not available for this file")
	ErrEmptyFile        = apperror.New(http.StatusBadRequest, "file is empty")
)

// Cover image limits for class templates.
const (
	CoverMaxBytes = 5 << 20
	ThumbnailSize = 400
)

// CoverTypes are the MIME types accepted for template covers.
var CoverTypes = []string{"image/jpeg", "image/png", "image/webp"}

// File is a stored upload. Paths are internal to the storage backend.
type File struct {
	ID            string
	UserID        *string
	Filename      string
	StoragePath   string
	ThumbnailPath *string
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

// FileURL returns the API path serving a file.
func FileURL(id string) string {
	return "/v1/media/" + id
}

// ThumbnailURL returns the API path serving a file's thumbnail.
func ThumbnailURL(id string) string {
	return "/v1/media/" + id + "/thumbnail"
}
