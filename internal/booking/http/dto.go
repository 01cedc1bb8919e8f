package http

import (
	"time"

	"github.com/nekogravitycat/class-booking-backend/internal/booking"
	"github.com/nekogravitycat/class-booking-backend/internal/cancellation"
	orgHttp "github.com/nekogravitycat/class-booking-backend/internal/organization/http"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/request"
	userHttp "github.com/nekogravitycat/class-booking-backend/internal/user/http"
	venueHttp "github.com/nekogravitycat/class-booking-backend/internal/venue/http"
)

// ListBookingsRequest defines query parameters for listing bookings of a business.
type ListBookingsRequest struct {
	request.ListParams
	OrganizationID  string     `form:"organization_id" binding:"required,uuid"`
	ClassInstanceID string     `form:"class_instance_id" binding:"omitempty,uuid"`
	UserID          string     `form:"user_id" binding:"omitempty,uuid"`
	Status          string     `form:"status" binding:"omitempty,oneof=pending confirmed cancelled completed"`
	StartTimeFrom   *time.Time `form:"start_time_from" time_format:"2006-01-02T15:04:05Z07:00"`
	StartTimeTo     *time.Time `form:"start_time_to" time_format:"2006-01-02T15:04:05Z07:00"`
	SortBy          string     `form:"sort_by" binding:"omitempty,oneof=start_time created_at status"`
}

// Validate performs custom validation for ListBookingsRequest.
func (r *ListBookingsRequest) Validate() error {
	if r.StartTimeFrom != nil && r.StartTimeTo != nil && r.StartTimeFrom.After(*r.StartTimeTo) {
		return errInvalidRange
	}
	return nil
}

type MyBookingsRequest struct {
	View string `form:"view" binding:"omitempty,oneof=upcoming history cancelled pending"`
}

type CreateBookingRequest struct {
	ClassInstanceID string `json:"class_instance_id" binding:"required,uuid"`
	PaymentMethod   string `json:"payment_method" binding:"omitempty,oneof=credits checkout"`
}

// FreeCancelRequest grants or, with a null until, revokes free cancellation.
type FreeCancelRequest struct {
	Until *time.Time `json:"until"`
}

type ClassTag struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	WindowHours int       `json:"cancellation_window_hours"`
}

type CancellationResponse struct {
	IsFree            bool       `json:"is_free"`
	RefundPercent     int        `json:"refund_percent"`
	RefundCredits     int        `json:"refund_credits"`
	TimeRemaining     int64      `json:"time_remaining_seconds"`
	TimeRemainingText string     `json:"time_remaining_text"`
	Deadline          *time.Time `json:"deadline"`
}

func NewCancellationResponse(info cancellation.Info, refund int) CancellationResponse {
	return CancellationResponse{
		IsFree:            info.IsFree,
		RefundPercent:     info.RefundPercent,
		RefundCredits:     refund,
		TimeRemaining:     int64(info.TimeRemaining.Seconds()),
		TimeRemainingText: info.TimeRemainingText,
		Deadline:          info.Deadline,
	}
}

type BookingResponse struct {
	ID              string                  `json:"id"`
	Class           ClassTag                `json:"class"`
	User            userHttp.UserTag        `json:"user"`
	Venue           *venueHttp.VenueTag     `json:"venue"`
	Organization    orgHttp.OrganizationTag `json:"organization"`
	Status          string                  `json:"status"`
	PaymentMethod   string                  `json:"payment_method"`
	PriceCredits    int                     `json:"price_credits"`
	FreeCancelUntil *time.Time              `json:"free_cancel_until"`
	RefundPercent   *int                    `json:"refund_percent"`
	RefundedCredits int                     `json:"refunded_credits"`
	CancelReason    string                  `json:"cancel_reason,omitempty"`
	CancelledAt     *time.Time              `json:"cancelled_at"`
	LocalDate       string                  `json:"local_date"`
	LocalTime       string                  `json:"local_time"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	resp := BookingResponse{
		ID: b.ID,
		Class: ClassTag{
			ID:          b.ClassInstanceID,
			Name:        b.ClassName,
			StartTime:   b.ClassStart,
			EndTime:     b.ClassEnd,
			WindowHours: b.WindowHours,
		},
		User: userHttp.UserTag{ID: b.UserID, Name: b.UserName},
		Organization: orgHttp.OrganizationTag{
			ID:       b.OrganizationID,
			Name:     b.OrganizationName,
			Timezone: b.Timezone,
		},
		Status:          string(b.Status),
		PaymentMethod:   string(b.PaymentMethod),
		PriceCredits:    b.PriceCredits,
		FreeCancelUntil: b.FreeCancelUntil,
		RefundPercent:   b.RefundPercent,
		RefundedCredits: b.RefundedCredits,
		CancelReason:    b.CancelReason,
		CancelledAt:     b.CancelledAt,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if b.VenueID != nil && b.VenueName != nil {
		resp.Venue = &venueHttp.VenueTag{ID: *b.VenueID, Name: *b.VenueName}
	}
	resp.LocalDate, resp.LocalTime = localStart(b)
	return resp
}

func newBookingResponses(items []*booking.Booking) []BookingResponse {
	out := make([]BookingResponse, len(items))
	for i, b := range items {
		out[i] = NewBookingResponse(b)
	}
	return out
}

type DayGroupResponse struct {
	Date     string            `json:"date"`
	Label    string            `json:"label"`
	Bookings []BookingResponse `json:"bookings"`
}

type MyBookingsResponse struct {
	View   string             `json:"view"`
	Groups []DayGroupResponse `json:"groups"`
}

func NewMyBookingsResponse(view string, groups []booking.DayGroup) MyBookingsResponse {
	out := make([]DayGroupResponse, len(groups))
	for i, g := range groups {
		out[i] = DayGroupResponse{
			Date:     g.Date,
			Label:    g.Label,
			Bookings: newBookingResponses(g.Bookings),
		}
	}
	return MyBookingsResponse{View: view, Groups: out}
}
