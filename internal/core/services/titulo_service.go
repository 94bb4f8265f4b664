package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tesouro-direto/titulo_tesouro_app/internal/apperrors"
	"github.com/tesouro-direto/titulo_tesouro_app/internal/core/domain"
	portsrepo "github.com/tesouro-direto/titulo_tesouro_app/internal/core/ports/repositories"
	portssvc "github.com/tesouro-direto/titulo_tesouro_app/internal/core/ports/services"
	"github.com/tesouro-direto/titulo_tesouro_app/internal/core/validation"
	"github.com/tesouro-direto/titulo_tesouro_app/internal/dto"
)

const (
	msgNoRegister        = `"titulo_id" has no register.`
	msgTituloIDMustBeInt = `"titulo_id" must be an int.`
	msgIDNotFound        = "One of the ids was not found."
	msgMissingIDs        = `Missing mandatory parameter "ids".`
	msgIDsMustBeList     = `Parameter "ids" must be a list.`
)

type tituloService struct {
	repo      portsrepo.TituloRepository
	validator *validation.RecordValidator
}

// NewTituloService builds the titulo rule engine over the given repository.
// units is the ingestion-time unit-multiplier lookup table.
func NewTituloService(repo portsrepo.TituloRepository, units map[string]float64) portssvc.TituloSvcFacade {
	return &tituloService{
		repo:      repo,
		validator: validation.NewRecordValidator(units),
	}
}

func (s *tituloService) CreateTitulo(ctx context.Context, body []byte) (*dto.TituloResponse, error) {
	titulo, err := s.validator.Create(body)
	if err != nil {
		return nil, err
	}

	id, err := s.repo.Insert(ctx, *titulo)
	if err != nil {
		return nil, err
	}
	titulo.ID = id

	resp := dto.ToTituloResponse(titulo)
	return &resp, nil
}

func (s *tituloService) UpdateTitulo(ctx context.Context, idParam string, body []byte) (map[string]any, error) {
	fields, err := s.validator.DecodeUpdate(body)
	if err != nil {
		return nil, err
	}
	id, err := validation.CoerceTituloID(idParam)
	if err != nil {
		return nil, err
	}

	// Existence is checked before the immutable-category rejection: an
	// unknown id is a 404 even when the body would otherwise be refused.
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, mapNotFound(err, msgNoRegister)
	}

	patch, echo, err := s.validator.UpdateFields(fields)
	if err != nil {
		return nil, err
	}
	if !patch.IsEmpty() {
		if err := s.repo.Patch(ctx, id, patch); err != nil {
			return nil, mapNotFound(err, msgNoRegister)
		}
	}

	echo["id"] = id
	return echo, nil
}

func (s *tituloService) DeleteTitulo(ctx context.Context, idParam string) error {
	id, err := validation.CoerceTituloID(idParam)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapNotFound(err, msgNoRegister)
	}
	return nil
}

func (s *tituloService) GetHistory(ctx context.Context, idParam, dataInicio string, hasDataInicio bool) (*dto.TituloHistoryResponse, error) {
	id, err := validation.CoerceTituloID(idParam)
	if err != nil {
		return nil, err
	}
	from, err := startDateFilter(dataInicio, hasDataInicio)
	if err != nil {
		return nil, err
	}

	titulo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, msgNoRegister)
	}
	return s.assembleHistory(ctx, titulo, from)
}

func (s *tituloService) GetHistoryByAction(ctx context.Context, actionParam, idParam, dataInicio string, hasDataInicio bool) (*dto.TituloHistoryResponse, error) {
	id, err := validation.CoerceTituloID(idParam)
	if err != nil {
		return nil, err
	}
	from, err := startDateFilter(dataInicio, hasDataInicio)
	if err != nil {
		return nil, err
	}

	// The action label itself is not validated; an unrecognized label simply
	// matches no record. The 404 echoes the label as it was supplied.
	action, _ := domain.ParseAction(actionParam)
	titulo, err := s.repo.FindByIDAndAction(ctx, id, action)
	if err != nil {
		return nil, mapNotFound(err, fmt.Sprintf(`"titulo_id" has no register for action %q.`, actionParam))
	}
	return s.assembleHistory(ctx, titulo, from)
}

func (s *tituloService) CompareTitulos(ctx context.Context, ids []string, idsPresent bool, dataInicio string, hasDataInicio bool) ([]dto.TituloHistoryResponse, error) {
	if !idsPresent {
		return nil, apperrors.NewValidationFailedError(msgMissingIDs)
	}
	// A query key occurring once is a scalar; a list is the key repeated.
	if len(ids) < 2 {
		return nil, apperrors.NewValidationFailedError(msgIDsMustBeList)
	}

	// Every element must type-check before any existence check runs.
	parsed := make([]int64, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, apperrors.NewValidationFailedError(msgTituloIDMustBeInt)
		}
		parsed = append(parsed, id)
	}

	from, err := startDateFilter(dataInicio, hasDataInicio)
	if err != nil {
		return nil, err
	}

	titulos := make([]*domain.TituloTesouro, 0, len(parsed))
	for _, id := range parsed {
		titulo, err := s.repo.FindByID(ctx, id)
		if err != nil {
			// Short-circuits on the first missing id without revealing it.
			return nil, mapNotFound(err, msgIDNotFound)
		}
		titulos = append(titulos, titulo)
	}

	out := make([]dto.TituloHistoryResponse, 0, len(titulos))
	for _, titulo := range titulos {
		history, err := s.assembleHistory(ctx, titulo, from)
		if err != nil {
			return nil, err
		}
		out = append(out, *history)
	}
	return out, nil
}

func (s *tituloService) assembleHistory(ctx context.Context, titulo *domain.TituloTesouro, from *time.Time) (*dto.TituloHistoryResponse, error) {
	points, err := s.repo.ListSeries(ctx, titulo.Category, titulo.Action, from)
	if err != nil {
		return nil, err
	}
	resp := dto.ToHistoryResponse(titulo, points)
	return &resp, nil
}

func startDateFilter(dataInicio string, hasDataInicio bool) (*time.Time, error) {
	if !hasDataInicio {
		return nil, nil
	}
	from, err := validation.ValidateStartDate(dataInicio)
	if err != nil {
		return nil, err
	}
	return &from, nil
}

// mapNotFound turns a repository not-found into the documented 404 message
// and passes every other error (conflicts included) through unchanged.
func mapNotFound(err error, message string) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NewNotFoundError(message)
	}
	return err
}
