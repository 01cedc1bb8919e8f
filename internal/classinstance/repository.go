package classinstance

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, c *ClassInstance) error
	GetByID(ctx context.Context, id string) (*ClassInstance, error)
	List(ctx context.Context, filter Filter) ([]*ClassInstance, int, error)
	Update(ctx context.Context, c *ClassInstance) error
	SetStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	HasActiveBookings(ctx context.Context, id string) (bool, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func selectInstances() squirrel.SelectBuilder {
	return psql.Select(
		"c.id", "c.organization_id", "c.template_id", "c.venue_id", "v.name", "c.name",
		"c.start_time", "c.end_time", "c.capacity", "c.booked_count", "c.price_credits",
		"c.cancellation_window_hours", "c.status", "c.created_at", "c.updated_at",
	).
		From("public.class_instances c").
		LeftJoin("public.venues v ON v.id = c.venue_id")
}

func scanInstance(row pgx.Row, extra ...any) (*ClassInstance, error) {
	var c ClassInstance
	dest := append([]any{
		&c.ID, &c.OrganizationID, &c.TemplateID, &c.VenueID, &c.VenueName, &c.Name,
		&c.StartTime, &c.EndTime, &c.Capacity, &c.BookedCount, &c.PriceCredits,
		&c.CancellationWindowHours, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *pgxRepository) Create(ctx context.Context, c *ClassInstance) error {
	query, args, err := psql.Insert("public.class_instances").
		Columns("organization_id", "template_id", "venue_id", "name", "start_time", "end_time",
			"capacity", "price_credits", "cancellation_window_hours", "status").
		Values(c.OrganizationID, c.TemplateID, c.VenueID, c.Name, c.StartTime, c.EndTime,
			c.Capacity, c.PriceCredits, c.CancellationWindowHours, c.Status).
		Suffix("RETURNING id, booked_count, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create class query failed: %w", err)
	}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&c.ID, &c.BookedCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("create class failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*ClassInstance, error) {
	query, args, err := selectInstances().Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get class query failed: %w", err)
	}

	c, err := scanInstance(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get class failed: %w", err)
	}
	return c, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*ClassInstance, int, error) {
	qb := selectInstances().Column("count(*) OVER() AS total_count")

	if filter.OrganizationID != "" {
		qb = qb.Where(squirrel.Eq{"c.organization_id": filter.OrganizationID})
	}
	if filter.VenueID != "" {
		qb = qb.Where(squirrel.Eq{"c.venue_id": filter.VenueID})
	}
	if filter.TemplateID != "" {
		qb = qb.Where(squirrel.Eq{"c.template_id": filter.TemplateID})
	}
	if filter.Status != "" {
		qb = qb.Where(squirrel.Eq{"c.status": filter.Status})
	}
	if filter.From != nil {
		qb = qb.Where(squirrel.GtOrEq{"c.start_time": *filter.From})
	}
	if filter.To != nil {
		qb = qb.Where(squirrel.Lt{"c.start_time": *filter.To})
	}

	orderDir := "ASC"
	if filter.SortOrder == "DESC" {
		orderDir = "DESC"
	}
	qb = qb.OrderBy("c.start_time "+orderDir, "c.name ASC")

	if filter.PageSize > 0 {
		if filter.Page < 1 {
			filter.Page = 1
		}
		qb = qb.Limit(uint64(filter.PageSize)).Offset(uint64((filter.Page - 1) * filter.PageSize))
	}

	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list classes query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list classes failed: %w", err)
	}
	defer rows.Close()

	var items []*ClassInstance
	var total int
	for rows.Next() {
		c, err := scanInstance(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan class failed: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate classes failed: %w", err)
	}
	return items, total, nil
}

// Update writes the editable fields. The capacity guard runs in the same statement so a
// concurrent booking cannot slip in between the check and the write.
func (r *pgxRepository) Update(ctx context.Context, c *ClassInstance) error {
	query, args, err := psql.Update("public.class_instances").
		Set("venue_id", c.VenueID).
		Set("name", c.Name).
		Set("start_time", c.StartTime).
		Set("end_time", c.EndTime).
		Set("capacity", c.Capacity).
		Set("price_credits", c.PriceCredits).
		Set("cancellation_window_hours", c.CancellationWindowHours).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": c.ID}).
		Where(squirrel.LtOrEq{"booked_count": c.Capacity}).
		Suffix("RETURNING booked_count, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update class query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&c.BookedCount, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, c.ID); getErr != nil {
				return getErr
			}
			return ErrCapacityBelowBooked
		}
		return fmt.Errorf("update class failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) SetStatus(ctx context.Context, id, status string) error {
	query, args, err := psql.Update("public.class_instances").
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set class status query failed: %w", err)
	}
	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set class status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("public.class_instances").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete class query failed: %w", err)
	}
	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete class failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) HasActiveBookings(ctx context.Context, id string) (bool, error) {
	query, args, err := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"class_instance_id": id, "status": []string{"pending", "confirmed"}}).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build active bookings query failed: %w", err)
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active bookings failed: %w", err)
	}
	return exists, nil
}
