package organization

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/class-booking-backend/internal/pkg/apperror"
)

var (
	ErrOrgNotFound       = apperror.New(http.StatusNotFound, "organization not found")
	ErrNameRequired      = apperror.New(http.StatusBadRequest, "organization name is required")
	ErrInvalidTimezone   = apperror.New(http.StatusBadRequest, "unknown IANA timezone")
	ErrInvalidRole       = apperror.New(http.StatusBadRequest, "role must be one of owner, manager, staff")
	ErrUserAlreadyMember = apperror.New(http.StatusConflict, "user is already a member of this organization")
	ErrUserNotMember     = apperror.New(http.StatusNotFound, "user is not a member of this organization")
	ErrUserNotFound      = apperror.New(http.StatusNotFound, "user not found")
	ErrOwnerRequired     = apperror.New(http.StatusForbidden, "only an owner can grant, change or remove the owner role")
	ErrLastOwner         = apperror.New(http.StatusConflict, "an organization must keep at least one owner")
)

// Organization is a business (tenant) that runs classes.
type Organization struct {
	ID        string
	Name      string
	Timezone  string
	CreatedAt time.Time
	IsActive  bool
}

// OrganizationFilter defines filter options for listing organizations.
type OrganizationFilter struct {
	Name      string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Roles matching the member_role database enum, from most to least privileged.
const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

var roleRank = map[string]int{
	RoleOwner:   3,
	RoleManager: 2,
	RoleStaff:   1,
}

// IsValidRole reports whether role is a known member role.
func IsValidRole(role string) bool {
	_, ok := roleRank[role]
	return ok
}

// atLeast reports whether role grants at least the privileges of minRole.
func atLeast(role, minRole string) bool {
	return roleRank[role] > 0 && roleRank[role] >= roleRank[minRole]
}

// Member represents a user with a specific role within an organization.
type Member struct {
	UserID      string
	Email       string
	DisplayName *string
	Role        string
	CreatedAt   time.Time
}

// MemberFilter defines filter options for listing members.
type MemberFilter struct {
	Role      string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// VenueSeed is the optional first venue created during onboarding.
type VenueSeed struct {
	Name    string
	Address string
}
