package http

import (
	"time"

	"github.com/nekogravitycat/class-booking-backend/internal/classtemplate"
	"github.com/nekogravitycat/class-booking-backend/internal/media"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/request"
)

type TemplateResponse struct {
	ID                      string    `json:"id"`
	OrganizationID          string    `json:"organization_id"`
	VenueID                 *string   `json:"venue_id"`
	Name                    string    `json:"name"`
	Description             string    `json:"description"`
	DurationMinutes         int       `json:"duration_minutes"`
	Capacity                int       `json:"capacity"`
	PriceCredits            int       `json:"price_credits"`
	CancellationWindowHours int       `json:"cancellation_window_hours"`
	CoverURL                *string   `json:"cover_url"`
	CoverThumbnailURL       *string   `json:"cover_thumbnail_url"`
	IsActive                bool      `json:"is_active"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

func NewTemplateResponse(t *classtemplate.ClassTemplate) TemplateResponse {
	resp := TemplateResponse{
		ID:                      t.ID,
		OrganizationID:          t.OrganizationID,
		VenueID:                 t.VenueID,
		Name:                    t.Name,
		Description:             t.Description,
		DurationMinutes:         t.DurationMinutes,
		Capacity:                t.Capacity,
		PriceCredits:            t.PriceCredits,
		CancellationWindowHours: t.CancellationWindowHours,
		IsActive:                t.IsActive,
		CreatedAt:               t.CreatedAt,
		UpdatedAt:               t.UpdatedAt,
	}
	if t.CoverImageID != nil {
		u := media.FileURL(*t.CoverImageID)
		th := media.ThumbnailURL(*t.CoverImageID)
		resp.CoverURL = &u
		resp.CoverThumbnailURL = &th
	}
	return resp
}

type ListTemplatesRequest struct {
	request.ListParams
	OrganizationID string `form:"organization_id" binding:"required,uuid"`
	VenueID        string `form:"venue_id" binding:"omitempty,uuid"`
	IsActive       *bool  `form:"is_active"`
	SortBy         string `form:"sort_by" binding:"omitempty,oneof=name price created_at"`
}

type CreateTemplateRequest struct {
	OrganizationID          string  `json:"organization_id" binding:"required,uuid"`
	VenueID                 *string `json:"venue_id" binding:"omitempty,uuid"`
	Name                    string  `json:"name" binding:"required,max=120"`
	Description             string  `json:"description" binding:"omitempty,max=2000"`
	DurationMinutes         int     `json:"duration_minutes" binding:"required,min=5,max=600"`
	Capacity                int     `json:"capacity" binding:"required,min=1,max=500"`
	PriceCredits            int     `json:"price_credits" binding:"min=0,max=1000"`
	CancellationWindowHours int     `json:"cancellation_window_hours" binding:"min=0,max=168"`
}

type UpdateTemplateRequest struct {
	VenueID                 *string `json:"venue_id" binding:"omitempty,max=36"`
	Name                    *string `json:"name" binding:"omitempty,max=120"`
	Description             *string `json:"description" binding:"omitempty,max=2000"`
	DurationMinutes         *int    `json:"duration_minutes" binding:"omitempty,min=5,max=600"`
	Capacity                *int    `json:"capacity" binding:"omitempty,min=1,max=500"`
	PriceCredits            *int    `json:"price_credits" binding:"omitempty,min=0,max=1000"`
	CancellationWindowHours *int    `json:"cancellation_window_hours" binding:"omitempty,min=0,max=168"`
	IsActive                *bool   `json:"is_active"`
}

type DeleteTemplateResponse struct {
	Deactivated bool `json:"deactivated"`
}
