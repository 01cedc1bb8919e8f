package venue

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/class-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound     = apperror.New(http.StatusNotFound, "venue not found")
	ErrNameRequired = apperror.New(http.StatusBadRequest, "venue name is required")
	ErrInvalidGeo   = apperror.New(http.StatusBadRequest, "latitude must be within [-90, 90] and longitude within [-180, 180]")
	ErrInUse        = apperror.New(http.StatusConflict, "venue still has scheduled classes")
)

// Venue is a physical place where a business runs its classes.
type Venue struct {
	ID             string
	OrganizationID string
	Name           string
	Address        string
	Description    string
	Latitude       *float64
	Longitude      *float64
	CreatedAt      time.Time
}

// VenueFilter defines filter options for listing venues.
type VenueFilter struct {
	OrganizationID string
	Name           string
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
