package venue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/class-booking-backend/internal/organization"
)

type memRepo struct {
	venues map[string]*Venue
	busy   map[string]bool
}

func (r *memRepo) Create(_ context.Context, v *Venue) error {
	v.ID = "v" + v.Name
	cp := *v
	r.venues[v.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*Venue, error) {
	v, ok := r.venues[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *memRepo) List(context.Context, VenueFilter) ([]*Venue, int, error) { return nil, 0, nil }

func (r *memRepo) Update(_ context.Context, v *Venue) error {
	cp := *v
	r.venues[v.ID] = &cp
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	delete(r.venues, id)
	return nil
}

func (r *memRepo) HasUpcomingClasses(_ context.Context, id string, _ time.Time) (bool, error) {
	return r.busy[id], nil
}

type stubOrgs struct {
	organization.Service
}

func (stubOrgs) GetByID(_ context.Context, id string) (*organization.Organization, error) {
	if id != "org" {
		return nil, organization.ErrOrgNotFound
	}
	return &organization.Organization{ID: id, Timezone: "UTC", IsActive: true}, nil
}

func ptr[T any](v T) *T { return &v }

func TestVenueLifecycle(t *testing.T) {
	repo := &memRepo{venues: map[string]*Venue{}, busy: map[string]bool{}}
	svc := NewService(repo, stubOrgs{})
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateVenueRequest{OrganizationID: "missing", Name: "Hall"})
	assert.ErrorIs(t, err, organization.ErrOrgNotFound)

	_, err = svc.Create(ctx, CreateVenueRequest{OrganizationID: "org", Name: "  "})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Create(ctx, CreateVenueRequest{OrganizationID: "org", Name: "Hall", Latitude: ptr(91.0)})
	assert.ErrorIs(t, err, ErrInvalidGeo)

	v, err := svc.Create(ctx, CreateVenueRequest{OrganizationID: "org", Name: " Hall ", Latitude: ptr(40.4), Longitude: ptr(-3.7)})
	require.NoError(t, err)
	assert.Equal(t, "Hall", v.Name)

	updated, err := svc.Update(ctx, v.ID, UpdateVenueRequest{Address: ptr("Gran Via 1")})
	require.NoError(t, err)
	assert.Equal(t, "Gran Via 1", updated.Address)
	assert.Equal(t, "Hall", updated.Name)

	_, err = svc.Update(ctx, v.ID, UpdateVenueRequest{Longitude: ptr(200.0)})
	assert.ErrorIs(t, err, ErrInvalidGeo)

	repo.busy[v.ID] = true
	assert.ErrorIs(t, svc.Delete(ctx, v.ID), ErrInUse)

	repo.busy[v.ID] = false
	require.NoError(t, svc.Delete(ctx, v.ID))
	_, err = svc.GetByID(ctx, v.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
