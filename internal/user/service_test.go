package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nekogravitycat/class-booking-backend/internal/auth"
)

type memRepo struct {
	byID map[string]*User
	seq  int
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[string]*User{}}
}

func (r *memRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memRepo) Create(_ context.Context, u *User) error {
	r.seq++
	u.ID = string(rune('a' + r.seq))
	u.CreatedAt = time.Now()
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *memRepo) UpdateLastLogin(_ context.Context, id string, t time.Time) error {
	if u, ok := r.byID[id]; ok {
		u.LastLoginAt = &t
	}
	return nil
}

func (r *memRepo) List(_ context.Context, _ UserFilter) ([]*User, int, error) {
	var out []*User
	for _, u := range r.byID {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (r *memRepo) Update(_ context.Context, u *User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return ErrNotFound
	}
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func newTestService() (Service, *memRepo) {
	repo := newMemRepo()
	return NewService(repo, auth.NewBcryptPasswordHasher(bcrypt.MinCost)), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "  Alice@Example.com ", "password123", " Alice ")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	require.NotNil(t, u.DisplayName)
	assert.Equal(t, "Alice", *u.DisplayName)
	assert.True(t, u.IsActive)

	_, err = svc.Register(ctx, "alice@example.com", "password123", "")
	assert.ErrorIs(t, err, ErrEmailAlreadyUsed)

	logged, err := svc.Login(ctx, "ALICE@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)
	assert.NotNil(t, logged.LastLoginAt)

	_, err = svc.Login(ctx, "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "   ", "password123", "")
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = svc.Register(ctx, "bob@example.com", "short", "")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestDeactivatedUserCannotLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "carol@example.com", "password123", "")
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", u.Name())

	require.NoError(t, svc.Deactivate(ctx, u.ID))

	_, err = svc.Login(ctx, "carol@example.com", "password123")
	assert.ErrorIs(t, err, ErrInactiveUser)
}

func TestIsSystemAdmin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "root@example.com", "password123", "")
	require.NoError(t, err)

	ok, err := svc.IsSystemAdmin(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	yes := true
	_, err = svc.Update(ctx, u.ID, UpdateUserRequest{IsSystemAdmin: &yes})
	require.NoError(t, err)

	ok, err = svc.IsSystemAdmin(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsSystemAdmin(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
