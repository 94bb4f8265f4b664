package services

import (
	"context"

	"github.com/tesouro-direto/titulo_tesouro_app/internal/dto"
)

// TituloSvcFacade is the rule engine in front of persistence: it validates a
// parsed request (raw body, path and query parameters), dispatches the
// resulting command to the repository and maps storage outcomes to domain
// errors. Every failure is terminal for the request; there are no retries.
type TituloSvcFacade interface {
	// CreateTitulo validates and inserts a record, returning the created
	// record with the canonical action and the normalized amount.
	CreateTitulo(ctx context.Context, body []byte) (*dto.TituloResponse, error)
	// UpdateTitulo applies a partial update and returns the id plus only the
	// fields actually supplied, echoed as they were sent.
	UpdateTitulo(ctx context.Context, idParam string, body []byte) (map[string]any, error)
	// DeleteTitulo removes a record by id.
	DeleteTitulo(ctx context.Context, idParam string) error
	// GetHistory returns a record's series, optionally from data_inicio.
	GetHistory(ctx context.Context, idParam, dataInicio string, hasDataInicio bool) (*dto.TituloHistoryResponse, error)
	// GetHistoryByAction is GetHistory with an action-scoped existence check.
	GetHistoryByAction(ctx context.Context, actionParam, idParam, dataInicio string, hasDataInicio bool) (*dto.TituloHistoryResponse, error)
	// CompareTitulos returns the side-by-side histories of several records.
	CompareTitulos(ctx context.Context, ids []string, idsPresent bool, dataInicio string, hasDataInicio bool) ([]dto.TituloHistoryResponse, error)
}
