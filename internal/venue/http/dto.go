package http

import (
	"time"

	"github.com/nekogravitycat/class-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/class-booking-backend/internal/venue"
)

type VenueResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	Description    string    `json:"description"`
	Latitude       *float64  `json:"latitude"`
	Longitude      *float64  `json:"longitude"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewVenueResponse(v *venue.Venue) VenueResponse {
	return VenueResponse{
		ID:             v.ID,
		OrganizationID: v.OrganizationID,
		Name:           v.Name,
		Address:        v.Address,
		Description:    v.Description,
		Latitude:       v.Latitude,
		Longitude:      v.Longitude,
		CreatedAt:      v.CreatedAt,
	}
}

// VenueTag is a brief representation of a venue.
type VenueTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ListVenuesRequest struct {
	request.ListParams
	OrganizationID string `form:"organization_id" binding:"omitempty,uuid"`
	Name           string `form:"name"`
	SortBy         string `form:"sort_by" binding:"omitempty,oneof=name created_at"`
}

type CreateVenueRequest struct {
	OrganizationID string   `json:"organization_id" binding:"required,uuid"`
	Name           string   `json:"name" binding:"required,max=120"`
	Address        string   `json:"address" binding:"omitempty,max=255"`
	Description    string   `json:"description" binding:"omitempty,max=2000"`
	Latitude       *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude      *float64 `json:"longitude" binding:"omitempty,longitude"`
}

type UpdateVenueRequest struct {
	Name        *string  `json:"name" binding:"omitempty,max=120"`
	Address     *string  `json:"address" binding:"omitempty,max=255"`
	Description *string  `json:"description" binding:"omitempty,max=2000"`
	Latitude    *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" binding:"omitempty,longitude"`
}
