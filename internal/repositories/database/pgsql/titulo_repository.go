package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tesouro-direto/titulo_tesouro_app/internal/apperrors"
	"github.com/tesouro-direto/titulo_tesouro_app/internal/core/domain"
	portsrepo "github.com/tesouro-direto/titulo_tesouro_app/internal/core/ports/repositories"
)

const uniqueViolation = "23505"

type PgxTituloRepository struct {
	pool *pgxpool.Pool
}

// NewTituloRepository creates the pgx-backed repository for the
// tesouro_direto_series table.
func NewTituloRepository(pool *pgxpool.Pool) portsrepo.TituloRepository {
	return &PgxTituloRepository{pool: pool}
}

func (r *PgxTituloRepository) Insert(ctx context.Context, titulo domain.TituloTesouro) (int64, error) {
	query := `
		INSERT INTO tesouro_direto_series (category, action, expire_at, amount, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id;
	`
	now := time.Now().UTC()

	var id int64
	err := r.pool.QueryRow(ctx, query,
		titulo.Category,
		string(titulo.Action),
		titulo.ExpireAt(),
		titulo.Amount,
		now,
	).Scan(&id)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			// The driver diagnostic is the compatibility contract here;
			// clients substring-match the constraint name.
			return 0, apperrors.NewConflictError(pgErr.Message)
		}
		return 0, fmt.Errorf("failed to insert titulo: %w", err)
	}
	return id, nil
}

func (r *PgxTituloRepository) FindByID(ctx context.Context, id int64) (*domain.TituloTesouro, error) {
	query := selectTitulo + ` WHERE id = $1;`
	return r.findOne(ctx, query, id)
}

func (r *PgxTituloRepository) FindByIDAndAction(ctx context.Context, id int64, action domain.Action) (*domain.TituloTesouro, error) {
	query := selectTitulo + ` WHERE id = $1 AND action = $2;`
	return r.findOne(ctx, query, id, string(action))
}

const selectTitulo = `
	SELECT id, category, action,
	       EXTRACT(MONTH FROM expire_at)::int,
	       EXTRACT(YEAR FROM expire_at)::int,
	       amount
	FROM tesouro_direto_series`

func (r *PgxTituloRepository) findOne(ctx context.Context, query string, args ...any) (*domain.TituloTesouro, error) {
	var titulo domain.TituloTesouro
	var action string
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&titulo.ID,
		&titulo.Category,
		&action,
		&titulo.Month,
		&titulo.Year,
		&titulo.Amount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find titulo: %w", err)
	}
	titulo.Action = domain.Action(action)
	return &titulo, nil
}

func (r *PgxTituloRepository) Patch(ctx context.Context, id int64, patch domain.TituloPatch) error {
	sets := []string{"last_updated_at = now()"}
	args := []any{id}
	next := 2

	if patch.Month != nil || patch.Year != nil {
		// Month and year live inside the expiry key; untouched components
		// are kept from the stored date.
		sets = append(sets, fmt.Sprintf(
			"expire_at = make_date(COALESCE($%d, EXTRACT(YEAR FROM expire_at)::int), COALESCE($%d, EXTRACT(MONTH FROM expire_at)::int), 1)",
			next, next+1))
		args = append(args, patch.Year, patch.Month)
		next += 2
	}
	if patch.Action != nil {
		sets = append(sets, fmt.Sprintf("action = $%d", next))
		args = append(args, string(*patch.Action))
		next++
	}
	if patch.Amount != nil {
		sets = append(sets, fmt.Sprintf("amount = $%d", next))
		args = append(args, *patch.Amount)
		next++
	}

	query := fmt.Sprintf("UPDATE tesouro_direto_series SET %s WHERE id = $1;", strings.Join(sets, ", "))
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperrors.NewConflictError(pgErr.Message)
		}
		return fmt.Errorf("failed to patch titulo %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxTituloRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tesouro_direto_series WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("failed to delete titulo %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxTituloRepository) ListSeries(ctx context.Context, category string, action domain.Action, from *time.Time) ([]domain.SeriesPoint, error) {
	query := `
		SELECT EXTRACT(MONTH FROM expire_at)::int,
		       EXTRACT(YEAR FROM expire_at)::int,
		       amount
		FROM tesouro_direto_series
		WHERE category = $1 AND action = $2
		  AND ($3::date IS NULL OR expire_at >= $3)
		ORDER BY expire_at;
	`
	rows, err := r.pool.Query(ctx, query, category, string(action), from)
	if err != nil {
		return nil, fmt.Errorf("failed to query series %s/%s: %w", category, action, err)
	}
	defer rows.Close()

	points, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SeriesPoint, error) {
		var p domain.SeriesPoint
		err := row.Scan(&p.Month, &p.Year, &p.Amount)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan series %s/%s: %w", category, action, err)
	}
	return points, nil
}
