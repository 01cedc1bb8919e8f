package classinstance

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/class-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound            = apperror.New(http.StatusNotFound, "class not found")
	ErrStartRequired       = apperror.New(http.StatusBadRequest, "start_time or date and time are required")
	ErrStartInPast         = apperror.New(http.StatusBadRequest, "class must start in the future")
	ErrInvalidDuration     = apperror.New(http.StatusBadRequest, "duration must be between 5 and 600 minutes")
	ErrInvalidCapacity     = apperror.New(http.StatusBadRequest, "capacity must be between 1 and 500")
	ErrInvalidPrice        = apperror.New(http.StatusBadRequest, "price must be between 0 and 1000 credits")
	ErrInvalidWindow       = apperror.New(http.StatusBadRequest, "cancellation window must be between 0 and 168 hours")
	ErrInvalidDate         = apperror.New(http.StatusBadRequest, "date must be YYYY-MM-DD and time HH:MM")
	ErrCapacityBelowBooked = apperror.New(http.StatusConflict, "capacity cannot be lower than the number of booked seats")
	ErrClassCancelled      = apperror.New(http.StatusConflict, "class is cancelled")
	ErrClassStarted        = apperror.New(http.StatusConflict, "class has already started")
	ErrHasActiveBookings   = apperror.New(http.StatusConflict, "class still has active bookings; cancel it instead")
	ErrTemplateInactive    = apperror.New(http.StatusConflict, "class template is inactive")
	ErrVenueMismatch       = apperror.New(http.StatusBadRequest, "venue belongs to another organization")
)

// Statuses matching the class_status enum.
const (
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
)

// ClassInstance is one scheduled occurrence of a class template.
type ClassInstance struct {
	ID                      string    `json:"id"`
	OrganizationID          string    `json:"organization_id"`
	TemplateID              string    `json:"template_id"`
	VenueID                 *string   `json:"venue_id"`
	VenueName               *string   `json:"venue_name"`
	Name                    string    `json:"name"`
	StartTime               time.Time `json:"start_time"`
	EndTime                 time.Time `json:"end_time"`
	Capacity                int       `json:"capacity"`
	BookedCount             int       `json:"booked_count"`
	PriceCredits            int       `json:"price_credits"`
	CancellationWindowHours int       `json:"cancellation_window_hours"`
	Status                  string    `json:"status"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// SeatsLeft returns the number of unbooked seats.
func (c *ClassInstance) SeatsLeft() int {
	if c.BookedCount >= c.Capacity {
		return 0
	}
	return c.Capacity - c.BookedCount
}

// HasStarted reports whether the class start time has passed.
func (c *ClassInstance) HasStarted(now time.Time) bool {
	return !now.Before(c.StartTime)
}

// Bookable reports whether a new booking may be placed at now.
func (c *ClassInstance) Bookable(now time.Time) error {
	if c.Status == StatusCancelled {
		return ErrClassCancelled
	}
	if c.HasStarted(now) {
		return ErrClassStarted
	}
	return nil
}

// Filter defines parameters for listing class instances.
type Filter struct {
	OrganizationID string
	VenueID        string
	TemplateID     string
	Status         string
	From           *time.Time
	To             *time.Time
	Page           int
	PageSize       int
	SortOrder      string
}

// DaySchedule is the public class list of one business day.
type DaySchedule struct {
	OrganizationID string           `json:"organization_id"`
	Date           string           `json:"date"`
	Timezone       string           `json:"timezone"`
	Classes        []*ClassInstance `json:"classes"`
}
