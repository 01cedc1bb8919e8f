package tournament

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
	Create(ctx context.Context, t *Tournament) error
	GetByID(ctx context.Context, id string) (*Tournament, error)
	GetByClass(ctx context.Context, classID string) (*Tournament, error)
	Delete(ctx context.Context, id string) error

	// AddParticipant and RemoveParticipant return ErrNotDraft once the tournament has started.
	AddParticipant(ctx context.Context, p *Participant) error
	RemoveParticipant(ctx context.Context, tournamentID, participantID string) error
	ListParticipants(ctx context.Context, tournamentID string) ([]*Participant, error)

	// Start stores the whole schedule and moves a draft tournament to round 1 atomically.
	// It returns ErrNotDraft when another caller started it first.
	Start(ctx context.Context, t *Tournament, matches []*Match) error
	// Advance writes t's new round and status only while the tournament is still
	// in progress at fromRound. Otherwise it returns ErrNotCurrentRound.
	Advance(ctx context.Context, t *Tournament, fromRound int) error
	ListMatches(ctx context.Context, tournamentID string) ([]*Match, error)
	GetMatch(ctx context.Context, tournamentID, matchID string) (*Match, error)
	// RecordMatch stores a score only for a match of the current round of an
	// in-progress tournament. Otherwise it returns ErrNotCurrentRound.
	RecordMatch(ctx context.Context, m *Match) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

var tournamentColumns = []string{
	"id", "class_instance_id", "organization_id", "name", "points_per_match",
	"status", "current_round", "total_rounds", "created_at", "updated_at",
}

func scanTournament(row pgx.Row) (*Tournament, error) {
	var t Tournament
	if err := row.Scan(
		&t.ID, &t.ClassInstanceID, &t.OrganizationID, &t.Name, &t.PointsPerMatch,
		&t.Status, &t.CurrentRound, &t.TotalRounds, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *pgxRepository) Create(ctx context.Context, t *Tournament) error {
	query, args, err := psql.Insert("public.tournaments").
		Columns("class_instance_id", "organization_id", "name", "points_per_match", "status").
		Values(t.ClassInstanceID, t.OrganizationID, t.Name, t.PointsPerMatch, t.Status).
		Suffix("RETURNING id, current_round, total_rounds, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create tournament query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&t.ID, &t.CurrentRound, &t.TotalRounds, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create tournament failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) getBy(ctx context.Context, where squirrel.Eq) (*Tournament, error) {
	query, args, err := psql.Select(tournamentColumns...).
		From("public.tournaments").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get tournament query failed: %w", err)
	}

	t, err := scanTournament(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get tournament failed: %w", err)
	}
	return t, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Tournament, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id})
}

func (r *pgxRepository) GetByClass(ctx context.Context, classID string) (*Tournament, error) {
	return r.getBy(ctx, squirrel.Eq{"class_instance_id": classID})
}

// updateTournament writes the progress columns of t when the row still matches
// expect. A row that moved on returns conflict.
func updateTournament(ctx context.Context, q db.DBTX, t *Tournament, expect squirrel.Eq, conflict error) error {
	where := squirrel.Eq{"id": t.ID}
	for k, v := range expect {
		where[k] = v
	}
	query, args, err := psql.Update("public.tournaments").
		Set("status", t.Status).
		Set("current_round", t.CurrentRound).
		Set("total_rounds", t.TotalRounds).
		Set("updated_at", squirrel.Expr("now()")).
		Where(where).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update tournament query failed: %w", err)
	}

	if err := q.QueryRow(ctx, query, args...).Scan(&t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return conflict
		}
		return fmt.Errorf("update tournament failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Advance(ctx context.Context, t *Tournament, fromRound int) error {
	expect := squirrel.Eq{"status": StatusInProgress, "current_round": fromRound}
	return updateTournament(ctx, r.pool, t, expect, ErrNotCurrentRound)
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("public.tournaments").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete tournament query failed: %w", err)
	}
	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete tournament failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// draftExists matches only while the tournament bound to the placeholder is a draft.
const draftExists = "EXISTS (SELECT 1 FROM public.tournaments WHERE id = ? AND status = 'draft')"

func (r *pgxRepository) AddParticipant(ctx context.Context, p *Participant) error {
	sel := psql.Select().
		Column("?::uuid", p.TournamentID).
		Column("?::uuid", p.UserID).
		Column("?::text", p.DisplayName).
		Where(draftExists, p.TournamentID)
	query, args, err := psql.Insert("public.tournament_participants").
		Columns("tournament_id", "user_id", "display_name").
		Select(sel).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build add participant query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotDraft
		}
		if isUniqueViolation(err) {
			return ErrDuplicateParticipant
		}
		return fmt.Errorf("add participant failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) RemoveParticipant(ctx context.Context, tournamentID, participantID string) error {
	query, args, err := psql.Delete("public.tournament_participants").
		Where(squirrel.Eq{"id": participantID, "tournament_id": tournamentID}).
		Where(draftExists, tournamentID).
		ToSql()
	if err != nil {
		return fmt.Errorf("build remove participant query failed: %w", err)
	}
	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("remove participant failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		if t, err := r.GetByID(ctx, tournamentID); err == nil && t.Status != StatusDraft {
			return ErrNotDraft
		}
		return ErrParticipantNotFound
	}
	return nil
}

func (r *pgxRepository) ListParticipants(ctx context.Context, tournamentID string) ([]*Participant, error) {
	query, args, err := psql.Select("id", "tournament_id", "user_id", "display_name", "created_at").
		From("public.tournament_participants").
		Where(squirrel.Eq{"tournament_id": tournamentID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list participants query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list participants failed: %w", err)
	}
	defer rows.Close()

	var out []*Participant
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.ID, &p.TournamentID, &p.UserID, &p.DisplayName, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan participant failed: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *pgxRepository) Start(ctx context.Context, t *Tournament, matches []*Match) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		// Claim the draft first so a concurrent start never inserts a second schedule.
		if err := updateTournament(ctx, tx, t, squirrel.Eq{"status": StatusDraft}, ErrNotDraft); err != nil {
			return err
		}
		if len(matches) > 0 {
			ib := psql.Insert("public.tournament_matches").
				Columns("tournament_id", "round", "court", "team_a_1", "team_a_2", "team_b_1", "team_b_2")
			for _, m := range matches {
				ib = ib.Values(t.ID, m.Round, m.Court, m.TeamA[0], m.TeamA[1], m.TeamB[0], m.TeamB[1])
			}
			query, args, err := ib.ToSql()
			if err != nil {
				return fmt.Errorf("build insert matches query failed: %w", err)
			}
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return fmt.Errorf("insert matches failed: %w", err)
			}
		}
		return nil
	})
}

var matchColumns = []string{
	"id", "tournament_id", "round", "court", "team_a_1", "team_a_2", "team_b_1", "team_b_2",
	"score_a", "score_b", "recorded_at",
}

func scanMatch(row pgx.Row) (*Match, error) {
	var m Match
	if err := row.Scan(
		&m.ID, &m.TournamentID, &m.Round, &m.Court,
		&m.TeamA[0], &m.TeamA[1], &m.TeamB[0], &m.TeamB[1],
		&m.ScoreA, &m.ScoreB, &m.RecordedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *pgxRepository) ListMatches(ctx context.Context, tournamentID string) ([]*Match, error) {
	query, args, err := psql.Select(matchColumns...).
		From("public.tournament_matches").
		Where(squirrel.Eq{"tournament_id": tournamentID}).
		OrderBy("round ASC", "court ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list matches query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list matches failed: %w", err)
	}
	defer rows.Close()

	var out []*Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match failed: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *pgxRepository) GetMatch(ctx context.Context, tournamentID, matchID string) (*Match, error) {
	query, args, err := psql.Select(matchColumns...).
		From("public.tournament_matches").
		Where(squirrel.Eq{"id": matchID, "tournament_id": tournamentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get match query failed: %w", err)
	}

	m, err := scanMatch(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("get match failed: %w", err)
	}
	return m, nil
}

func (r *pgxRepository) RecordMatch(ctx context.Context, m *Match) error {
	query, args, err := psql.Update("public.tournament_matches").
		Set("score_a", m.ScoreA).
		Set("score_b", m.ScoreB).
		Set("recorded_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": m.ID, "tournament_id": m.TournamentID}).
		Where("round = (SELECT current_round FROM public.tournaments WHERE id = ? AND status = 'in_progress')", m.TournamentID).
		Suffix("RETURNING recorded_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build record match query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&m.RecordedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotCurrentRound
		}
		return fmt.Errorf("record match failed: %w", err)
	}
	return nil
}
