package organization

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/class-booking-backend/internal/user"
)

type memRepo struct {
	orgs    map[string]*Organization
	members map[string]map[string]string // org -> user -> role
	venues  int
}

func newMemRepo() *memRepo {
	return &memRepo{orgs: map[string]*Organization{}, members: map[string]map[string]string{}}
}

func (r *memRepo) Create(_ context.Context, org *Organization) error {
	org.ID = "org-" + org.Name
	cp := *org
	r.orgs[org.ID] = &cp
	r.members[org.ID] = map[string]string{}
	return nil
}

func (r *memRepo) CreateWithOwner(ctx context.Context, org *Organization, ownerID string, venue *VenueSeed) (string, error) {
	if err := r.Create(ctx, org); err != nil {
		return "", err
	}
	r.members[org.ID][ownerID] = RoleOwner
	if venue == nil {
		return "", nil
	}
	r.venues++
	return "venue-1", nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*Organization, error) {
	o, ok := r.orgs[id]
	if !ok || !o.IsActive {
		return nil, ErrOrgNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *memRepo) List(context.Context, OrganizationFilter) ([]*Organization, int, error) {
	return nil, 0, nil
}

func (r *memRepo) Update(_ context.Context, org *Organization) error {
	cp := *org
	r.orgs[org.ID] = &cp
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.orgs[id].IsActive = false
	return nil
}

func (r *memRepo) GetMember(_ context.Context, orgID, userID string) (*Member, error) {
	role, ok := r.members[orgID][userID]
	if !ok {
		return nil, ErrUserNotMember
	}
	return &Member{UserID: userID, Role: role}, nil
}

func (r *memRepo) AddMember(_ context.Context, orgID, userID, role string) error {
	if _, ok := r.members[orgID][userID]; ok {
		return ErrUserAlreadyMember
	}
	r.members[orgID][userID] = role
	return nil
}

func (r *memRepo) RemoveMember(_ context.Context, orgID, userID string) error {
	delete(r.members[orgID], userID)
	return nil
}

func (r *memRepo) UpdateMemberRole(_ context.Context, orgID, userID, role string) error {
	r.members[orgID][userID] = role
	return nil
}

func (r *memRepo) ListMembers(_ context.Context, orgID string, _ MemberFilter) ([]*Member, int, error) {
	var out []*Member
	for id, role := range r.members[orgID] {
		out = append(out, &Member{UserID: id, Role: role})
	}
	return out, len(out), nil
}

func (r *memRepo) CountOwners(_ context.Context, orgID string) (int, error) {
	n := 0
	for _, role := range r.members[orgID] {
		if role == RoleOwner {
			n++
		}
	}
	return n, nil
}

// stubUsers knows a fixed set of users; "admin" is a system admin.
type stubUsers struct {
	user.Service
}

func (stubUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	if id == "ghost" {
		return nil, user.ErrNotFound
	}
	return &user.User{ID: id, IsActive: true, IsSystemAdmin: id == "admin"}, nil
}

func (stubUsers) IsSystemAdmin(_ context.Context, id string) (bool, error) {
	return id == "admin", nil
}

func newTestService() (Service, *memRepo) {
	repo := newMemRepo()
	return NewService(repo, stubUsers{}), repo
}

func TestOnboardMakesCallerOwner(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	res, err := svc.Onboard(ctx, "alice", OnboardRequest{
		Name:     " Padel Club ",
		Timezone: "Europe/Madrid",
		Venue:    &VenueSeed{Name: "Main hall"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Padel Club", res.Organization.Name)
	assert.Equal(t, "venue-1", res.VenueID)
	assert.Equal(t, 1, repo.venues)

	ok, err := svc.IsOwner(ctx, res.Organization.ID, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	loc, err := svc.Location(ctx, res.Organization.ID)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Madrid", loc.String())
}

func TestOnboardValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Onboard(ctx, "alice", OnboardRequest{Name: "  ", Timezone: "UTC"})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Onboard(ctx, "alice", OnboardRequest{Name: "Club", Timezone: "Nowhere/City"})
	assert.ErrorIs(t, err, ErrInvalidTimezone)

	org, err := svc.Create(ctx, CreateOrganizationRequest{Name: "Studio"})
	require.NoError(t, err)
	assert.Equal(t, "UTC", org.Timezone)
}

func TestRoleHierarchy(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	org, err := svc.Create(ctx, CreateOrganizationRequest{Name: "Gym", Timezone: "UTC"})
	require.NoError(t, err)
	repo.members[org.ID]["owner"] = RoleOwner
	repo.members[org.ID]["manager"] = RoleManager
	repo.members[org.ID]["staff"] = RoleStaff

	cases := []struct {
		user           string
		owner, manager bool
		staff          bool
	}{
		{"owner", true, true, true},
		{"manager", false, true, true},
		{"staff", false, false, true},
		{"stranger", false, false, false},
		{"admin", true, true, true},
		{"", false, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.user, func(t *testing.T) {
			got, err := svc.IsOwner(ctx, org.ID, tc.user)
			require.NoError(t, err)
			assert.Equal(t, tc.owner, got)

			got, err = svc.IsManagerOrAbove(ctx, org.ID, tc.user)
			require.NoError(t, err)
			assert.Equal(t, tc.manager, got)

			got, err = svc.IsStaffOrAbove(ctx, org.ID, tc.user)
			require.NoError(t, err)
			assert.Equal(t, tc.staff, got)
		})
	}
}

func TestMemberOwnerRules(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	res, err := svc.Onboard(ctx, "owner", OnboardRequest{Name: "Club", Timezone: "UTC"})
	require.NoError(t, err)
	orgID := res.Organization.ID

	require.NoError(t, svc.AddMember(ctx, "owner", orgID, "manager", RoleManager))

	// A manager cannot mint owners.
	err = svc.AddMember(ctx, "manager", orgID, "bob", RoleOwner)
	assert.ErrorIs(t, err, ErrOwnerRequired)

	require.NoError(t, svc.AddMember(ctx, "manager", orgID, "bob", RoleStaff))
	assert.Equal(t, RoleStaff, repo.members[orgID]["bob"])

	err = svc.AddMember(ctx, "owner", orgID, "ghost", RoleStaff)
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = svc.AddMember(ctx, "owner", orgID, "bob", "janitor")
	assert.ErrorIs(t, err, ErrInvalidRole)

	// The last owner cannot be demoted or removed.
	err = svc.UpdateMemberRole(ctx, "owner", orgID, "owner", RoleManager)
	assert.ErrorIs(t, err, ErrLastOwner)
	err = svc.RemoveMember(ctx, "owner", orgID, "owner")
	assert.ErrorIs(t, err, ErrLastOwner)

	// With a second owner the first may step down.
	require.NoError(t, svc.UpdateMemberRole(ctx, "owner", orgID, "manager", RoleOwner))
	require.NoError(t, svc.UpdateMemberRole(ctx, "owner", orgID, "owner", RoleManager))
	assert.Equal(t, RoleManager, repo.members[orgID]["owner"])

	err = svc.RemoveMember(ctx, "owner", orgID, "manager")
	assert.ErrorIs(t, err, ErrOwnerRequired)
}
