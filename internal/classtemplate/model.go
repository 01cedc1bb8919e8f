package classtemplate

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nekogravitycat/class-booking-backend/internal/pkg/apperror"
)

// Form ranges enforced on every template.
const (
	MinDurationMinutes = 5
	MaxDurationMinutes = 600
	MinCapacity        = 1
	MaxCapacity        = 500
	MinPriceCredits    = 0
	MaxPriceCredits    = 1000
	MinWindowHours     = 0
	MaxWindowHours     = 168
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "class template not found")
	ErrNameRequired     = apperror.New(http.StatusBadRequest, "template name is required")
	ErrInvalidDuration  = apperror.New(http.StatusBadRequest, fmt.Sprintf("duration must be between %d and %d minutes", MinDurationMinutes, MaxDurationMinutes))
	ErrInvalidCapacity  = apperror.New(http.StatusBadRequest, fmt.Sprintf("capacity must be between %d and %d", MinCapacity, MaxCapacity))
	ErrInvalidPrice     = apperror.New(http.StatusBadRequest, fmt.Sprintf("price must be between %d and %d credits", MinPriceCredits, MaxPriceCredits))
	ErrInvalidWindow    = apperror.New(http.StatusBadRequest, fmt.Sprintf("cancellation window must be between %d and %d hours", MinWindowHours, MaxWindowHours))
	ErrVenueMismatch    = apperror.New(http.StatusBadRequest, "venue belongs to another organization")
	ErrTemplateInactive = apperror.New(http.StatusConflict, "class template is inactive")
)

// ClassTemplate is the reusable definition behind scheduled classes.
type ClassTemplate struct {
	ID                      string
	OrganizationID          string
	VenueID                 *string
	Name                    string
	Description             string
	DurationMinutes         int
	Capacity                int
	PriceCredits            int
	CancellationWindowHours int
	CoverImageID            *string
	IsActive                bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Duration returns the default length of a class.
func (t *ClassTemplate) Duration() time.Duration {
	return time.Duration(t.DurationMinutes) * time.Minute
}

// Validate checks the form ranges.
func (t *ClassTemplate) Validate() error {
	switch {
	case t.Name == "":
		return ErrNameRequired
	case t.DurationMinutes < MinDurationMinutes || t.DurationMinutes > MaxDurationMinutes:
		return ErrInvalidDuration
	case t.Capacity < MinCapacity || t.Capacity > MaxCapacity:
		return ErrInvalidCapacity
	case t.PriceCredits < MinPriceCredits || t.PriceCredits > MaxPriceCredits:
		return ErrInvalidPrice
	case t.CancellationWindowHours < MinWindowHours || t.CancellationWindowHours > MaxWindowHours:
		return ErrInvalidWindow
	}
	return nil
}

// Filter defines parameters for listing class templates.
type Filter struct {
	OrganizationID string
	VenueID        string
	IsActive       *bool
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
