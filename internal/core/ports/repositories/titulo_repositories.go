package repositories

import (
	"context"
	"time"

	"github.com/tesouro-direto/titulo_tesouro_app/internal/core/domain"
)

// TituloRepository defines persistence operations for treasury-bond records.
// Implementations map storage diagnostics to apperrors: a missing row returns
// apperrors.ErrNotFound and a composite-key collision returns an
// apperrors.AppError built with NewConflictError carrying the driver text.
type TituloRepository interface {
	// Insert stores a new record and returns the store-assigned id.
	Insert(ctx context.Context, titulo domain.TituloTesouro) (int64, error)
	// FindByID fetches one record by surrogate id.
	FindByID(ctx context.Context, id int64) (*domain.TituloTesouro, error)
	// FindByIDAndAction fetches one record by id scoped to a canonical action.
	FindByIDAndAction(ctx context.Context, id int64, action domain.Action) (*domain.TituloTesouro, error)
	// Patch applies a partial update; absent fields stay untouched.
	Patch(ctx context.Context, id int64, patch domain.TituloPatch) error
	// Delete removes a record; deletion is terminal.
	Delete(ctx context.Context, id int64) error
	// ListSeries returns the (category, action) time-series ordered by
	// expiry, optionally starting at from.
	ListSeries(ctx context.Context, category string, action domain.Action, from *time.Time) ([]domain.SeriesPoint, error)
}
