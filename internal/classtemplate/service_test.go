package classtemplate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/class-booking-backend/internal/media"
	"github.com/nekogravitycat/class-booking-backend/internal/organization"
	"github.com/nekogravitycat/class-booking-backend/internal/venue"
)

type memRepo struct {
	items     map[string]*ClassTemplate
	instances map[string]bool
}

func (r *memRepo) Create(_ context.Context, t *ClassTemplate) error {
	t.ID = "tpl-" + t.Name
	cp := *t
	r.items[t.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*ClassTemplate, error) {
	t, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memRepo) List(context.Context, Filter) ([]*ClassTemplate, int, error) { return nil, 0, nil }

func (r *memRepo) Update(_ context.Context, t *ClassTemplate) error {
	cp := *t
	r.items[t.ID] = &cp
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

func (r *memRepo) HasInstances(_ context.Context, id string) (bool, error) {
	return r.instances[id], nil
}

type stubOrgs struct{ organization.Service }

func (stubOrgs) GetByID(_ context.Context, id string) (*organization.Organization, error) {
	return &organization.Organization{ID: id, Timezone: "UTC", IsActive: true}, nil
}

type stubVenues struct{ venue.Service }

func (stubVenues) GetByID(_ context.Context, id string) (*venue.Venue, error) {
	switch id {
	case "hall":
		return &venue.Venue{ID: id, OrganizationID: "org"}, nil
	case "elsewhere":
		return &venue.Venue{ID: id, OrganizationID: "other-org"}, nil
	}
	return nil, venue.ErrNotFound
}

type recordingMedia struct {
	media.Service
	deleted []string
}

func (m *recordingMedia) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func newTestService() (Service, *memRepo, *recordingMedia) {
	repo := &memRepo{items: map[string]*ClassTemplate{}, instances: map[string]bool{}}
	m := &recordingMedia{}
	return NewService(repo, stubOrgs{}, stubVenues{}, m), repo, m
}

func ptr[T any](v T) *T { return &v }

func validRequest() CreateRequest {
	return CreateRequest{
		OrganizationID:          "org",
		Name:                    "Pilates",
		DurationMinutes:         50,
		Capacity:                10,
		PriceCredits:            8,
		CancellationWindowHours: 12,
	}
}

func TestCreateChecksVenueOwnership(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	req := validRequest()
	req.VenueID = ptr("elsewhere")
	_, err := svc.Create(ctx, req)
	assert.ErrorIs(t, err, ErrVenueMismatch)

	req.VenueID = ptr("missing")
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, venue.ErrNotFound)

	req.VenueID = ptr("hall")
	tpl, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.True(t, tpl.IsActive)
	assert.Equal(t, 50*60, int(tpl.Duration().Seconds()))
}

func TestUpdateRevalidates(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	tpl, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	_, err = svc.Update(ctx, tpl.ID, UpdateRequest{Capacity: ptr(0)})
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	updated, err := svc.Update(ctx, tpl.ID, UpdateRequest{Capacity: ptr(20), VenueID: ptr("hall")})
	require.NoError(t, err)
	assert.Equal(t, 20, updated.Capacity)
	require.NotNil(t, updated.VenueID)

	updated, err = svc.Update(ctx, tpl.ID, UpdateRequest{VenueID: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, updated.VenueID)
}

func TestDeleteDeactivatesUsedTemplates(t *testing.T) {
	svc, repo, m := newTestService()
	ctx := context.Background()

	used, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)
	repo.instances[used.ID] = true

	deactivated, err := svc.Delete(ctx, used.ID)
	require.NoError(t, err)
	assert.True(t, deactivated)
	assert.False(t, repo.items[used.ID].IsActive)

	req := validRequest()
	req.Name = "Spin"
	unused, err := svc.Create(ctx, req)
	require.NoError(t, err)
	require.NoError(t, svc.SetCoverImage(ctx, unused.ID, "cover-1"))

	deactivated, err = svc.Delete(ctx, unused.ID)
	require.NoError(t, err)
	assert.False(t, deactivated)
	assert.NotContains(t, repo.items, unused.ID)
	assert.Equal(t, []string{"cover-1"}, m.deleted)
}

func TestSetCoverImageReplacesPrevious(t *testing.T) {
	svc, repo, m := newTestService()
	ctx := context.Background()

	tpl, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.SetCoverImage(ctx, tpl.ID, "a"))
	require.NoError(t, svc.SetCoverImage(ctx, tpl.ID, "b"))

	assert.Equal(t, "b", *repo.items[tpl.ID].CoverImageID)
	assert.Equal(t, []string{"a"}, m.deleted)
}
