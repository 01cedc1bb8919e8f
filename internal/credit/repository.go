package credit

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/class-booking-backend/internal/db"
)

type Repository interface {
	GetAccount(ctx context.Context, userID, orgID string) (*Account, error)
	ListAccounts(ctx context.Context, userID string) ([]*Account, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]*Transaction, int, error)
	// Apply writes the entry and moves the balance in one transaction.
	Apply(ctx context.Context, t *Transaction) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// ApplyEntry moves the balance by t.Amount and appends t to the ledger using q, which
// is usually a transaction owned by the caller. A balance that would drop below zero
// yields ErrInsufficientCredits and leaves the account untouched.
func ApplyEntry(ctx context.Context, q db.DBTX, t *Transaction) error {
	query, args, err := psql.Insert("public.credit_accounts").
		Columns("user_id", "organization_id").
		Values(t.UserID, t.OrganizationID).
		Suffix("ON CONFLICT (user_id, organization_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build open account query failed: %w", err)
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("open account failed: %w", err)
	}

	query, args, err = psql.Update("public.credit_accounts").
		Set("balance", squirrel.Expr("balance + ?", t.Amount)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"user_id": t.UserID, "organization_id": t.OrganizationID}).
		Where(squirrel.Expr("balance + ? >= 0", t.Amount)).
		Suffix("RETURNING balance").
		ToSql()
	if err != nil {
		return fmt.Errorf("build balance query failed: %w", err)
	}
	if err := q.QueryRow(ctx, query, args...).Scan(&t.BalanceAfter); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInsufficientCredits
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation {
			return ErrInsufficientCredits
		}
		return fmt.Errorf("update balance failed: %w", err)
	}

	query, args, err = psql.Insert("public.credit_transactions").
		Columns("user_id", "organization_id", "amount", "kind", "booking_id", "note").
		Values(t.UserID, t.OrganizationID, t.Amount, t.Kind, t.BookingID, t.Note).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build ledger query failed: %w", err)
	}
	if err := q.QueryRow(ctx, query, args...).Scan(&t.ID, &t.CreatedAt); err != nil {
		return fmt.Errorf("insert ledger entry failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Apply(ctx context.Context, t *Transaction) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return ApplyEntry(ctx, tx, t)
	})
}

// GetAccount returns the balance, or a zero account when the user never held credits there.
func (r *pgxRepository) GetAccount(ctx context.Context, userID, orgID string) (*Account, error) {
	query, args, err := psql.Select("balance", "updated_at").
		From("public.credit_accounts").
		Where(squirrel.Eq{"user_id": userID, "organization_id": orgID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get account query failed: %w", err)
	}

	a := Account{UserID: userID, OrganizationID: orgID}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&a.Balance, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &a, nil
		}
		return nil, fmt.Errorf("get account failed: %w", err)
	}
	return &a, nil
}

func (r *pgxRepository) ListAccounts(ctx context.Context, userID string) ([]*Account, error) {
	query, args, err := psql.Select("a.organization_id", "o.name", "a.balance", "a.updated_at").
		From("public.credit_accounts a").
		Join("public.organizations o ON o.id = a.organization_id").
		Where(squirrel.Eq{"a.user_id": userID, "o.is_active": true}).
		OrderBy("o.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list accounts query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts failed: %w", err)
	}
	defer rows.Close()

	var out []*Account
	for rows.Next() {
		a := Account{UserID: userID}
		if err := rows.Scan(&a.OrganizationID, &a.OrganizationName, &a.Balance, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan account failed: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *pgxRepository) ListTransactions(ctx context.Context, filter TransactionFilter) ([]*Transaction, int, error) {
	qb := psql.Select(
		"id", "user_id", "organization_id", "amount", "kind", "booking_id", "note", "created_at",
		"count(*) OVER() AS total_count",
	).From("public.credit_transactions")

	if filter.UserID != "" {
		qb = qb.Where(squirrel.Eq{"user_id": filter.UserID})
	}
	if filter.OrganizationID != "" {
		qb = qb.Where(squirrel.Eq{"organization_id": filter.OrganizationID})
	}
	if filter.Kind != "" {
		qb = qb.Where(squirrel.Eq{"kind": filter.Kind})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	qb = qb.OrderBy("created_at DESC", "id DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64((filter.Page - 1) * filter.PageSize))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list transactions query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions failed: %w", err)
	}
	defer rows.Close()

	var out []*Transaction
	var total int
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.OrganizationID, &t.Amount, &t.Kind, &t.BookingID, &t.Note, &t.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan transaction failed: %w", err)
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transactions failed: %w", err)
	}
	return out, total, nil
}
