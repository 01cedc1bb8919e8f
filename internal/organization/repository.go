package organization

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines methods for accessing organization data.
type Repository interface {
	// Organization methods
	Create(ctx context.Context, org *Organization) error
	CreateWithOwner(ctx context.Context, org *Organization, ownerID string, venue *VenueSeed) (venueID string, err error)
	GetByID(ctx context.Context, id string) (*Organization, error)
	List(ctx context.Context, filter OrganizationFilter) ([]*Organization, int, error)
	Update(ctx context.Context, org *Organization) error
	Delete(ctx context.Context, id string) error
	// Member methods
	GetMember(ctx context.Context, orgID string, userID string) (*Member, error)
	AddMember(ctx context.Context, orgID string, userID string, role string) error
	RemoveMember(ctx context.Context, orgID string, userID string) error
	UpdateMemberRole(ctx context.Context, orgID string, userID string, role string) error
	ListMembers(ctx context.Context, orgID string, filter MemberFilter) ([]*Member, int, error)
	CountOwners(ctx context.Context, orgID string) (int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new organization repository.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// ------------------------
//   Organization methods
// ------------------------

func (r *pgxRepository) Create(ctx context.Context, org *Organization) error {
	query, args, err := psql.Insert("public.organizations").
		Columns("name", "timezone", "is_active").
		Values(org.Name, org.Timezone, org.IsActive).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create organization query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&org.ID, &org.CreatedAt); err != nil {
		return fmt.Errorf("create organization failed: %w", err)
	}
	return nil
}

// CreateWithOwner inserts the organization, its owner membership and the optional first
// venue in one transaction.
func (r *pgxRepository) CreateWithOwner(ctx context.Context, org *Organization, ownerID string, venue *VenueSeed) (string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin onboarding tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	query, args, err := psql.Insert("public.organizations").
		Columns("name", "timezone", "is_active").
		Values(org.Name, org.Timezone, org.IsActive).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build create organization query failed: %w", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&org.ID, &org.CreatedAt); err != nil {
		return "", fmt.Errorf("create organization failed: %w", err)
	}

	query, args, err = psql.Insert("public.organization_members").
		Columns("organization_id", "user_id", "role").
		Values(org.ID, ownerID, RoleOwner).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build add owner query failed: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("add owner failed: %w", err)
	}

	var venueID string
	if venue != nil {
		query, args, err = psql.Insert("public.venues").
			Columns("organization_id", "name", "address").
			Values(org.ID, venue.Name, venue.Address).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return "", fmt.Errorf("build create venue query failed: %w", err)
		}
		if err := tx.QueryRow(ctx, query, args...).Scan(&venueID); err != nil {
			return "", fmt.Errorf("create first venue failed: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit onboarding tx failed: %w", err)
	}
	return venueID, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Organization, error) {
	query, args, err := psql.Select("id", "name", "timezone", "created_at", "is_active").
		From("public.organizations").
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get organization query failed: %w", err)
	}

	var org Organization
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&org.ID, &org.Name, &org.Timezone, &org.CreatedAt, &org.IsActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrgNotFound
		}
		return nil, fmt.Errorf("get organization failed: %w", err)
	}
	return &org, nil
}

func (r *pgxRepository) List(ctx context.Context, filter OrganizationFilter) ([]*Organization, int, error) {
	queryBuilder := psql.Select("id", "name", "timezone", "created_at", "is_active", "count(*) OVER() AS total_count").
		From("public.organizations").
		Where(squirrel.Eq{"is_active": true})

	if filter.Name != "" {
		queryBuilder = queryBuilder.Where(squirrel.ILike{"name": "%" + filter.Name + "%"})
	}

	orderBy := "created_at"
	if filter.SortBy == "name" {
		orderBy = "name"
	}
	orderDir := "DESC"
	if filter.SortOrder == "ASC" {
		orderDir = "ASC"
	}
	queryBuilder = queryBuilder.OrderBy(orderBy + " " + orderDir)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	queryBuilder = queryBuilder.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list organizations query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list organizations failed: %w", err)
	}
	defer rows.Close()

	var orgs []*Organization
	var total int
	for rows.Next() {
		var o Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Timezone, &o.CreatedAt, &o.IsActive, &total); err != nil {
			return nil, 0, fmt.Errorf("scan organization failed: %w", err)
		}
		orgs = append(orgs, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate organizations failed: %w", err)
	}

	return orgs, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, org *Organization) error {
	query, args, err := psql.Update("public.organizations").
		Set("name", org.Name).
		Set("timezone", org.Timezone).
		Set("is_active", org.IsActive).
		Where(squirrel.Eq{"id": org.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update organization query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update organization failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrOrgNotFound
	}
	return nil
}

// Delete is a soft delete; classes and bookings stay for history.
func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Update("public.organizations").
		Set("is_active", false).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete (soft) organization query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete (soft) organization failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrOrgNotFound
	}
	return nil
}

// ------------------------
//     Member methods
// ------------------------

// GetMember returns ErrUserNotMember if the user is not a member of the organization.
func (r *pgxRepository) GetMember(ctx context.Context, orgID string, userID string) (*Member, error) {
	query, args, err := psql.Select("u.id", "u.email", "u.display_name", "m.role", "m.created_at").
		From("public.organization_members m").
		Join("public.users u ON m.user_id = u.id").
		Where(squirrel.Eq{"m.organization_id": orgID}).
		Where(squirrel.Eq{"m.user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get member query failed: %w", err)
	}

	var m Member
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&m.UserID, &m.Email, &m.DisplayName, &m.Role, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotMember
		}
		return nil, fmt.Errorf("get member failed: %w", err)
	}
	return &m, nil
}

func (r *pgxRepository) AddMember(ctx context.Context, orgID string, userID string, role string) error {
	query, args, err := psql.Insert("public.organization_members").
		Columns("organization_id", "user_id", "role").
		Values(orgID, userID, role).
		ToSql()
	if err != nil {
		return fmt.Errorf("build add member query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return ErrUserAlreadyMember
			case pgerrcode.ForeignKeyViolation:
				return ErrUserNotFound
			}
		}
		return fmt.Errorf("add member failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) RemoveMember(ctx context.Context, orgID string, userID string) error {
	query, args, err := psql.Delete("public.organization_members").
		Where(squirrel.Eq{"organization_id": orgID}).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build remove member query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("remove member failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrUserNotMember
	}
	return nil
}

func (r *pgxRepository) UpdateMemberRole(ctx context.Context, orgID string, userID string, role string) error {
	query, args, err := psql.Update("public.organization_members").
		Set("role", role).
		Where(squirrel.Eq{"organization_id": orgID}).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update member role query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update member role failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrUserNotMember
	}
	return nil
}

func (r *pgxRepository) ListMembers(ctx context.Context, orgID string, filter MemberFilter) ([]*Member, int, error) {
	queryBuilder := psql.Select(
		"u.id", "u.email", "u.display_name", "m.role", "m.created_at",
		"count(*) OVER() AS total_count",
	).
		From("public.organization_members m").
		Join("public.users u ON m.user_id = u.id").
		Where(squirrel.Eq{"m.organization_id": orgID})

	if filter.Role != "" {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"m.role": filter.Role})
	}

	orderBy := "m.created_at"
	switch filter.SortBy {
	case "role":
		orderBy = "m.role"
	case "email":
		orderBy = "u.email"
	}
	orderDir := "ASC"
	if filter.SortOrder == "DESC" {
		orderDir = "DESC"
	}
	queryBuilder = queryBuilder.OrderBy(orderBy + " " + orderDir)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	queryBuilder = queryBuilder.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list members query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list members failed: %w", err)
	}
	defer rows.Close()

	var members []*Member
	var total int
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.UserID, &m.Email, &m.DisplayName, &m.Role, &m.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan member failed: %w", err)
		}
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate members failed: %w", err)
	}

	return members, total, nil
}

func (r *pgxRepository) CountOwners(ctx context.Context, orgID string) (int, error) {
	query, args, err := psql.Select("count(*)").
		From("public.organization_members").
		Where(squirrel.Eq{"organization_id": orgID, "role": RoleOwner}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count owners query failed: %w", err)
	}

	var n int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count owners failed: %w", err)
	}
	return n, nil
}
