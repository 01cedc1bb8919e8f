package http

import (
	"time"

	"github.com/nekogravitycat/class-booking-backend/internal/classinstance"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/request"
)

type ClassResponse struct {
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
	SeatsLeft               int       `json:"seats_left"`
	PriceCredits            int       `json:"price_credits"`
	CancellationWindowHours int       `json:"cancellation_window_hours"`
	Status                  string    `json:"status"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

func NewClassResponse(c *classinstance.ClassInstance) ClassResponse {
	return ClassResponse{
		ID:                      c.ID,
		OrganizationID:          c.OrganizationID,
		TemplateID:              c.TemplateID,
		VenueID:                 c.VenueID,
		VenueName:               c.VenueName,
		Name:                    c.Name,
		StartTime:               c.StartTime,
		EndTime:                 c.EndTime,
		Capacity:                c.Capacity,
		BookedCount:             c.BookedCount,
		SeatsLeft:               c.SeatsLeft(),
		PriceCredits:            c.PriceCredits,
		CancellationWindowHours: c.CancellationWindowHours,
		Status:                  c.Status,
		CreatedAt:               c.CreatedAt,
		UpdatedAt:               c.UpdatedAt,
	}
}

func newClassResponses(items []*classinstance.ClassInstance) []ClassResponse {
	out := make([]ClassResponse, len(items))
	for i, c := range items {
		out[i] = NewClassResponse(c)
	}
	return out
}

type ListClassesRequest struct {
	request.ListParams
	OrganizationID string     `form:"organization_id" binding:"required,uuid"`
	VenueID        string     `form:"venue_id" binding:"omitempty,uuid"`
	TemplateID     string     `form:"template_id" binding:"omitempty,uuid"`
	Status         string     `form:"status" binding:"omitempty,oneof=scheduled cancelled"`
	Date           string     `form:"date" binding:"omitempty,datetime=2006-01-02"`
	From           *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To             *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

type CreateClassRequest struct {
	TemplateID              string     `json:"template_id" binding:"required,uuid"`
	VenueID                 *string    `json:"venue_id" binding:"omitempty,uuid"`
	Name                    *string    `json:"name" binding:"omitempty,max=120"`
	StartTime               *time.Time `json:"start_time"`
	Date                    string     `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time                    string     `json:"time" binding:"omitempty,datetime=15:04"`
	DurationMinutes         *int       `json:"duration_minutes" binding:"omitempty,min=5,max=600"`
	Capacity                *int       `json:"capacity" binding:"omitempty,min=1,max=500"`
	PriceCredits            *int       `json:"price_credits" binding:"omitempty,min=0,max=1000"`
	CancellationWindowHours *int       `json:"cancellation_window_hours" binding:"omitempty,min=0,max=168"`
}

type UpdateClassRequest struct {
	VenueID                 *string    `json:"venue_id" binding:"omitempty,max=36"`
	Name                    *string    `json:"name" binding:"omitempty,max=120"`
	StartTime               *time.Time `json:"start_time"`
	Date                    string     `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time                    string     `json:"time" binding:"omitempty,datetime=15:04"`
	DurationMinutes         *int       `json:"duration_minutes" binding:"omitempty,min=5,max=600"`
	Capacity                *int       `json:"capacity" binding:"omitempty,min=1,max=500"`
	PriceCredits            *int       `json:"price_credits" binding:"omitempty,min=0,max=1000"`
	CancellationWindowHours *int       `json:"cancellation_window_hours" binding:"omitempty,min=0,max=168"`
}

type CancelClassResponse struct {
	Class             ClassResponse `json:"class"`
	CancelledBookings int           `json:"cancelled_bookings"`
}

type ScheduleRequest struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

type ScheduleResponse struct {
	OrganizationID string          `json:"organization_id"`
	Date           string          `json:"date"`
	Timezone       string          `json:"timezone"`
	Classes        []ClassResponse `json:"classes"`
}
