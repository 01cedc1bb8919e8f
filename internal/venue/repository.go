package venue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, v *Venue) error
	GetByID(ctx context.Context, id string) (*Venue, error)
	List(ctx context.Context, filter VenueFilter) ([]*Venue, int, error)
	Update(ctx context.Context, v *Venue) error
	Delete(ctx context.Context, id string) error
	HasUpcomingClasses(ctx context.Context, id string, now time.Time) (bool, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var venueColumns = []string{
	"id", "organization_id", "name", "address", "description", "latitude", "longitude", "created_at",
}

func (r *pgxRepository) Create(ctx context.Context, v *Venue) error {
	query, args, err := psql.Insert("public.venues").
		Columns("organization_id", "name", "address", "description", "latitude", "longitude").
		Values(v.OrganizationID, v.Name, v.Address, v.Description, v.Latitude, v.Longitude).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create venue query failed: %w", err)
	}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&v.ID, &v.CreatedAt); err != nil {
		return fmt.Errorf("create venue failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Venue, error) {
	query, args, err := psql.Select(venueColumns...).
		From("public.venues").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get venue query failed: %w", err)
	}

	var v Venue
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&v.ID, &v.OrganizationID, &v.Name, &v.Address, &v.Description, &v.Latitude, &v.Longitude, &v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get venue failed: %w", err)
	}
	return &v, nil
}

func (r *pgxRepository) List(ctx context.Context, filter VenueFilter) ([]*Venue, int, error) {
	qb := psql.Select(append(venueColumns, "count(*) OVER() AS total_count")...).
		From("public.venues")

	if filter.OrganizationID != "" {
		qb = qb.Where(squirrel.Eq{"organization_id": filter.OrganizationID})
	}
	if filter.Name != "" {
		qb = qb.Where(squirrel.ILike{"name": "%" + filter.Name + "%"})
	}

	orderBy := "created_at"
	if filter.SortBy == "name" {
		orderBy = "name"
	}
	orderDir := "DESC"
	if filter.SortOrder == "ASC" {
		orderDir = "ASC"
	}
	qb = qb.OrderBy(orderBy + " " + orderDir)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	qb = qb.Limit(uint64(filter.PageSize)).Offset(uint64((filter.Page - 1) * filter.PageSize))

	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list venues query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list venues failed: %w", err)
	}
	defer rows.Close()

	var venues []*Venue
	var total int
	for rows.Next() {
		var v Venue
		if err := rows.Scan(
			&v.ID, &v.OrganizationID, &v.Name, &v.Address, &v.Description, &v.Latitude, &v.Longitude, &v.CreatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan venue failed: %w", err)
		}
		venues = append(venues, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate venues failed: %w", err)
	}
	return venues, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, v *Venue) error {
	query, args, err := psql.Update("public.venues").
		Set("name", v.Name).
		Set("address", v.Address).
		Set("description", v.Description).
		Set("latitude", v.Latitude).
		Set("longitude", v.Longitude).
		Where(squirrel.Eq{"id": v.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update venue query failed: %w", err)
	}
	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update venue failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("public.venues").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete venue query failed: %w", err)
	}
	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete venue failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) HasUpcomingClasses(ctx context.Context, id string, now time.Time) (bool, error) {
	sub := psql.Select("1").
		From("public.class_instances").
		Where(squirrel.Eq{"venue_id": id, "status": "scheduled"}).
		Where(squirrel.Gt{"start_time": now})
	query, args, err := sub.Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("build upcoming classes query failed: %w", err)
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check upcoming classes failed: %w", err)
	}
	return exists, nil
}
