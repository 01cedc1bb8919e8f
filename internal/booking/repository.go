package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/class-booking-backend/internal/classinstance"
	"github.com/nekogravitycat/class-booking-backend/internal/credit"
	"github.com/nekogravitycat/class-booking-backend/internal/db"
)

type Repository interface {
	// Create reserves a seat, inserts the booking and, for credit payments, charges
	// the price in one transaction. Any failure releases the seat.
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Confirm(ctx context.Context, id string) error
	// Cancel marks an active booking cancelled, frees its seat and refunds credits.
	Cancel(ctx context.Context, cmd CancelCommand) error
	SetFreeCancelUntil(ctx context.Context, id string, until *time.Time) error
	ActiveForClass(ctx context.Context, classID string) ([]*Booking, error)
	// ExpirePending cancels checkout bookings created before cutoff and returns their ids.
	ExpirePending(ctx context.Context, cutoff time.Time) ([]string, error)
	// CompleteFinished marks confirmed bookings of classes that ended before now.
	CompleteFinished(ctx context.Context, now time.Time) (int64, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func selectBookings() squirrel.SelectBuilder {
	return psql.Select(
		"b.id", "b.class_instance_id", "b.user_id", "COALESCE(u.display_name, u.email)",
		"b.status", "b.payment_method", "b.price_credits", "b.free_cancel_until",
		"b.refund_percent", "b.refunded_credits", "b.cancel_reason", "b.cancelled_at",
		"b.created_at", "b.updated_at",
		"c.name", "c.start_time", "c.end_time", "c.cancellation_window_hours",
		"c.venue_id", "v.name", "o.id", "o.name", "o.timezone",
	).
		From("public.bookings b").
		Join("public.users u ON u.id = b.user_id").
		Join("public.class_instances c ON c.id = b.class_instance_id").
		Join("public.organizations o ON o.id = c.organization_id").
		LeftJoin("public.venues v ON v.id = c.venue_id")
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	dest := append([]any{
		&b.ID, &b.ClassInstanceID, &b.UserID, &b.UserName,
		&b.Status, &b.PaymentMethod, &b.PriceCredits, &b.FreeCancelUntil,
		&b.RefundPercent, &b.RefundedCredits, &b.CancelReason, &b.CancelledAt,
		&b.CreatedAt, &b.UpdatedAt,
		&b.ClassName, &b.ClassStart, &b.ClassEnd, &b.WindowHours,
		&b.VenueID, &b.VenueName, &b.OrganizationID, &b.OrganizationName, &b.Timezone,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		// 1. Reserve the seat. The guard makes concurrent bookings of the last seat safe.
		query, args, err := psql.Update("public.class_instances").
			Set("booked_count", squirrel.Expr("booked_count + 1")).
			Set("updated_at", squirrel.Expr("now()")).
			Where(squirrel.Eq{"id": b.ClassInstanceID, "status": "scheduled"}).
			Where("booked_count < capacity").
			Suffix("RETURNING organization_id").
			ToSql()
		if err != nil {
			return fmt.Errorf("build reserve seat query failed: %w", err)
		}
		if err := tx.QueryRow(ctx, query, args...).Scan(&b.OrganizationID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrClassFull
			}
			return fmt.Errorf("reserve seat failed: %w", err)
		}

		// 2. Insert the booking.
		query, args, err = psql.Insert("public.bookings").
			Columns("class_instance_id", "user_id", "status", "payment_method", "price_credits").
			Values(b.ClassInstanceID, b.UserID, b.Status, b.PaymentMethod, b.PriceCredits).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("build create booking query failed: %w", err)
		}
		if err := tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return ErrAlreadyBooked
			}
			return fmt.Errorf("create booking failed: %w", err)
		}

		// 3. Charge credits.
		if b.PaymentMethod != PaymentCredits || b.PriceCredits == 0 {
			return nil
		}
		return credit.ApplyEntry(ctx, tx, &credit.Transaction{
			UserID:         b.UserID,
			OrganizationID: b.OrganizationID,
			Amount:         -b.PriceCredits,
			Kind:           credit.KindBooking,
			BookingID:      &b.ID,
		})
	})
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query, args, err := selectBookings().Where(squirrel.Eq{"b.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

var sortColumns = map[string]string{
	"created_at": "b.created_at",
	"start_time": "c.start_time",
	"status":     "b.status",
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	query := selectBookings().Column("count(*) OVER() AS total_count")

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"b.user_id": filter.UserID})
	}
	if filter.ClassInstanceID != "" {
		query = query.Where(squirrel.Eq{"b.class_instance_id": filter.ClassInstanceID})
	}
	if filter.OrganizationID != "" {
		query = query.Where(squirrel.Eq{"o.id": filter.OrganizationID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}
	if filter.From != nil {
		query = query.Where(squirrel.GtOrEq{"c.start_time": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.Lt{"c.start_time": *filter.To})
	}

	orderBy, ok := sortColumns[filter.SortBy]
	if !ok {
		orderBy = "b.created_at"
	}
	orderDir := "DESC"
	if filter.SortOrder == "ASC" {
		orderDir = "ASC"
	}
	query = query.OrderBy(orderBy+" "+orderDir, "b.id")

	// PageSize 0 returns everything; the grouped views need the full list.
	if filter.PageSize > 0 {
		if filter.Page < 1 {
			filter.Page = 1
		}
		query = query.Limit(uint64(filter.PageSize)).Offset(uint64((filter.Page - 1) * filter.PageSize))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings failed: %w", err)
	}
	return bookings, total, nil
}

func (r *pgxRepository) Confirm(ctx context.Context, id string) error {
	query, args, err := psql.Update("public.bookings").
		Set("status", StatusConfirmed).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "status": StatusPending}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build confirm booking query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("confirm booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotPending
	}
	return nil
}

func (r *pgxRepository) Cancel(ctx context.Context, cmd CancelCommand) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		query, args, err := psql.Update("public.bookings").
			Set("status", StatusCancelled).
			Set("refund_percent", cmd.RefundPercent).
			Set("refunded_credits", cmd.Refund).
			Set("cancel_reason", cmd.Reason).
			Set("cancelled_at", cmd.At).
			Set("updated_at", squirrel.Expr("now()")).
			Where(squirrel.Eq{"id": cmd.BookingID, "status": []Status{StatusPending, StatusConfirmed}}).
			Suffix("RETURNING class_instance_id, user_id").
			ToSql()
		if err != nil {
			return fmt.Errorf("build cancel booking query failed: %w", err)
		}

		var classID, userID string
		if err := tx.QueryRow(ctx, query, args...).Scan(&classID, &userID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrAlreadyCancelled
			}
			return fmt.Errorf("cancel booking failed: %w", err)
		}

		// The count never goes below zero, so a drifted counter cannot block the cancel.
		query, args, err = psql.Update("public.class_instances").
			Set("booked_count", squirrel.Expr("GREATEST(booked_count - 1, 0)")).
			Set("updated_at", squirrel.Expr("now()")).
			Where(squirrel.Eq{"id": classID}).
			Suffix("RETURNING organization_id").
			ToSql()
		if err != nil {
			return fmt.Errorf("build release seat query failed: %w", err)
		}
		var orgID string
		if err := tx.QueryRow(ctx, query, args...).Scan(&orgID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return classinstance.ErrNotFound
			}
			return fmt.Errorf("release seat failed: %w", err)
		}

		if cmd.Refund <= 0 {
			return nil
		}
		return credit.ApplyEntry(ctx, tx, &credit.Transaction{
			UserID:         userID,
			OrganizationID: orgID,
			Amount:         cmd.Refund,
			Kind:           credit.KindRefund,
			BookingID:      &cmd.BookingID,
		})
	})
}

func (r *pgxRepository) SetFreeCancelUntil(ctx context.Context, id string, until *time.Time) error {
	query, args, err := psql.Update("public.bookings").
		Set("free_cancel_until", until).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build free cancel query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set free cancel failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ActiveForClass(ctx context.Context, classID string) ([]*Booking, error) {
	items, _, err := r.List(ctx, Filter{
		ClassInstanceID: classID,
		SortBy:          "created_at",
		SortOrder:       "ASC",
	})
	if err != nil {
		return nil, err
	}
	var out []*Booking
	for _, b := range items {
		if b.Status.Active() {
			out = append(out, b)
		}
	}
	return out, nil
}

// expireSQL cancels stale checkout bookings and frees their seats in one statement.
const expireSQL = `
WITH expired AS (
	UPDATE public.bookings
	SET status = 'cancelled', cancel_reason = $2, cancelled_at = now(), updated_at = now(),
	    refund_percent = 0
	WHERE status = 'pending' AND payment_method = 'checkout' AND created_at < $1
	RETURNING id, class_instance_id
), released AS (
	UPDATE public.class_instances c
	SET booked_count = GREATEST(c.booked_count - e.n, 0), updated_at = now()
	FROM (SELECT class_instance_id, count(*) AS n FROM expired GROUP BY class_instance_id) e
	WHERE c.id = e.class_instance_id
)
SELECT id FROM expired`

func (r *pgxRepository) ExpirePending(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx, expireSQL, cutoff, ReasonExpired)
	if err != nil {
		return nil, fmt.Errorf("expire pending bookings failed: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect expired bookings failed: %w", err)
	}
	return ids, nil
}

func (r *pgxRepository) CompleteFinished(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := psql.Update("public.bookings b").
		Set("status", StatusCompleted).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"b.status": StatusConfirmed}).
		Where("b.class_instance_id IN (SELECT id FROM public.class_instances WHERE end_time < ? AND status = 'scheduled')", now).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build complete bookings query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("complete bookings failed: %w", err)
	}
	return ct.RowsAffected(), nil
}
