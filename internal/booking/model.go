package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/class-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "booking not found")
	ErrClassFull          = apperror.New(http.StatusConflict, "class is full")
	ErrAlreadyBooked      = apperror.New(http.StatusConflict, "you already hold a booking for this class")
	ErrInvalidPayment     = apperror.New(http.StatusBadRequest, "payment method must be credits or checkout")
	ErrNotPending         = apperror.New(http.StatusConflict, "booking is not pending")
	ErrNotCancellable     = apperror.New(http.StatusConflict, "booking can no longer be cancelled")
	ErrAlreadyCancelled   = apperror.New(http.StatusConflict, "booking is already cancelled")
	ErrInvalidFreeCancel  = apperror.New(http.StatusBadRequest, "free cancellation must end in the future and before the class ends")
	ErrClassNotBookable   = apperror.New(http.StatusConflict, "class can no longer be booked")
	ErrPermissionDenied   = apperror.New(http.StatusForbidden, "permission denied")
	ErrInvalidView        = apperror.New(http.StatusBadRequest, "view must be upcoming, history, cancelled or pending")
	ErrCheckoutNotAllowed = apperror.New(http.StatusBadRequest, "free classes are booked with credits")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Active reports whether the booking holds a seat.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

type PaymentMethod string

const (
	PaymentCredits  PaymentMethod = "credits"
	PaymentCheckout PaymentMethod = "checkout"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCredits || m == PaymentCheckout
}

// Cancel reasons stored on the booking.
const (
	ReasonUser    = "user"
	ReasonManager = "manager"
	ReasonClass   = "class_cancelled"
	ReasonExpired = "checkout_expired"
)

// Booking is a user's seat in a class instance, joined with the class, venue and
// business it belongs to.
type Booking struct {
	ID               string
	ClassInstanceID  string
	UserID           string
	UserName         string
	Status           Status
	PaymentMethod    PaymentMethod
	PriceCredits     int
	FreeCancelUntil  *time.Time
	RefundPercent    *int
	RefundedCredits  int
	CancelReason     string
	CancelledAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ClassName        string
	ClassStart       time.Time
	ClassEnd         time.Time
	WindowHours      int
	VenueID          *string
	VenueName        *string
	OrganizationID   string
	OrganizationName string
	Timezone         string
}

type Filter struct {
	UserID          string
	ClassInstanceID string
	OrganizationID  string
	Status          string
	From            *time.Time // class starts at or after
	To              *time.Time // class starts before
	Page            int
	PageSize        int
	SortBy          string
	SortOrder       string
}

// CancelCommand describes one cancellation to persist.
type CancelCommand struct {
	BookingID     string
	Reason        string
	RefundPercent int
	Refund        int
	At            time.Time
}
