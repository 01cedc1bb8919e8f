package classtemplate

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, t *ClassTemplate) error
	GetByID(ctx context.Context, id string) (*ClassTemplate, error)
	List(ctx context.Context, filter Filter) ([]*ClassTemplate, int, error)
	Update(ctx context.Context, t *ClassTemplate) error
	Delete(ctx context.Context, id string) error
	HasInstances(ctx context.Context, id string) (bool, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var templateColumns = []string{
	"id", "organization_id", "venue_id", "name", "description", "duration_minutes", "capacity",
	"price_credits", "cancellation_window_hours", "cover_image_id", "is_active", "created_at", "updated_at",
}

func scanTemplate(row pgx.Row, extra ...any) (*ClassTemplate, error) {
	var t ClassTemplate
	dest := append([]any{
		&t.ID, &t.OrganizationID, &t.VenueID, &t.Name, &t.Description, &t.DurationMinutes, &t.Capacity,
		&t.PriceCredits, &t.CancellationWindowHours, &t.CoverImageID, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *pgxRepository) Create(ctx context.Context, t *ClassTemplate) error {
	query, args, err := psql.Insert("public.class_templates").
		Columns("organization_id", "venue_id", "name", "description", "duration_minutes", "capacity",
			"price_credits", "cancellation_window_hours", "is_active").
		Values(t.OrganizationID, t.VenueID, t.Name, t.Description, t.DurationMinutes, t.Capacity,
			t.PriceCredits, t.CancellationWindowHours, t.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create template query failed: %w", err)
	}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return fmt.Errorf("create template failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*ClassTemplate, error) {
	query, args, err := psql.Select(templateColumns...).
		From("public.class_templates").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get template query failed: %w", err)
	}

	t, err := scanTemplate(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get template failed: %w", err)
	}
	return t, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*ClassTemplate, int, error) {
	qb := psql.Select(append(templateColumns, "count(*) OVER() AS total_count")...).
		From("public.class_templates")

	if filter.OrganizationID != "" {
		qb = qb.Where(squirrel.Eq{"organization_id": filter.OrganizationID})
	}
	if filter.VenueID != "" {
		qb = qb.Where(squirrel.Eq{"venue_id": filter.VenueID})
	}
	if filter.IsActive != nil {
		qb = qb.Where(squirrel.Eq{"is_active": *filter.IsActive})
	}

	orderBy := "created_at"
	switch filter.SortBy {
	case "name":
		orderBy = "name"
	case "price":
		orderBy = "price_credits"
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
		return nil, 0, fmt.Errorf("build list templates query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list templates failed: %w", err)
	}
	defer rows.Close()

	var items []*ClassTemplate
	var total int
	for rows.Next() {
		t, err := scanTemplate(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan template failed: %w", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate templates failed: %w", err)
	}
	return items, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, t *ClassTemplate) error {
	query, args, err := psql.Update("public.class_templates").
		Set("venue_id", t.VenueID).
		Set("name", t.Name).
		Set("description", t.Description).
		Set("duration_minutes", t.DurationMinutes).
		Set("capacity", t.Capacity).
		Set("price_credits", t.PriceCredits).
		Set("cancellation_window_hours", t.CancellationWindowHours).
		Set("cover_image_id", t.CoverImageID).
		Set("is_active", t.IsActive).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": t.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update template query failed: %w", err)
	}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update template failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("public.class_templates").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete template query failed: %w", err)
	}
	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete template failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) HasInstances(ctx context.Context, id string) (bool, error) {
	query, args, err := psql.Select("1").
		From("public.class_instances").
		Where(squirrel.Eq{"template_id": id}).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build template instances query failed: %w", err)
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check template instances failed: %w", err)
	}
	return exists, nil
}
