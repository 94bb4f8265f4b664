package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tesouro-direto/titulo_tesouro_app/internal/apperrors"
	"github.com/tesouro-direto/titulo_tesouro_app/internal/core/domain"
	portsrepo "github.com/tesouro-direto/titulo_tesouro_app/internal/core/ports/repositories"
	portssvc "github.com/tesouro-direto/titulo_tesouro_app/internal/core/ports/services"
	"github.com/tesouro-direto/titulo_tesouro_app/internal/core/services"
	"github.com/tesouro-direto/titulo_tesouro_app/internal/platform/config"
)

const duplicateKeyMessage = `duplicate key value violates unique constraint "tesouro_direto_series_category_action_expire_at_key"`

// --- Mock TituloRepository ---

type MockTituloRepository struct {
	mock.Mock
}

func (m *MockTituloRepository) Insert(ctx context.Context, titulo domain.TituloTesouro) (int64, error) {
	args := m.Called(ctx, titulo)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTituloRepository) FindByID(ctx context.Context, id int64) (*domain.TituloTesouro, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TituloTesouro), args.Error(1)
}

func (m *MockTituloRepository) FindByIDAndAction(ctx context.Context, id int64, action domain.Action) (*domain.TituloTesouro, error) {
	args := m.Called(ctx, id, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TituloTesouro), args.Error(1)
}

func (m *MockTituloRepository) Patch(ctx context.Context, id int64, patch domain.TituloPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockTituloRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTituloRepository) ListSeries(ctx context.Context, category string, action domain.Action, from *time.Time) ([]domain.SeriesPoint, error) {
	args := m.Called(ctx, category, action, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SeriesPoint), args.Error(1)
}

var _ portsrepo.TituloRepository = (*MockTituloRepository)(nil)

func newService(t *testing.T) (portssvc.TituloSvcFacade, *MockTituloRepository) {
	t.Helper()
	repo := new(MockTituloRepository)
	return services.NewTituloService(repo, config.DefaultUnitMultipliers()), repo
}

func assertAppError(t *testing.T, err error, code int, message string) {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
	assert.Equal(t, message, appErr.Message)
}

// --- Create ---

func TestCreateTituloValid(t *testing.T) {
	svc, repo := newService(t)

	expected := domain.TituloTesouro{
		Category: "NTN-B",
		Month:    4,
		Year:     2017,
		Action:   domain.ActionVenda,
		Amount:   15000,
	}
	repo.On("Insert", mock.Anything, expected).Return(int64(1), nil).Once()

	body := `{"categoria_titulo": "NTN-B", "mês": 4, "ano": 2017, "ação": "venda", "valor": 15000}`
	created, err := svc.CreateTitulo(context.Background(), []byte(body))
	require.NoError(t, err)

	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "NTN-B", created.Category)
	assert.Equal(t, 4, created.Month)
	assert.Equal(t, 2017, created.Year)
	assert.Equal(t, "VENDA", created.Action)
	assert.Equal(t, 15000.0, created.Amount)
	repo.AssertExpectations(t)
}

func TestCreateTituloInvalidBodyNeverReachesStore(t *testing.T) {
	svc, repo := newService(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "no body", body: "", want: "No request body."},
		{name: "incomplete", body: `{"categoria_titulo": "NTN-B"}`, want: "Mandatory fields ['mês', 'ano', 'ação', 'valor'] missing."},
		{name: "bad month", body: `{"categoria_titulo": "NTN-B", "mês": 0, "ano": 2017, "ação": "venda", "valor": 15000}`, want: `"month" must be in interval [1, 12].`},
		{name: "bad amount", body: `{"categoria_titulo": "NTN-B", "mês": 4, "ano": 2017, "ação": "venda", "valor": "15000"}`, want: `"amount" must be a float or a int.`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTitulo(context.Background(), []byte(tt.body))
			assertAppError(t, err, 400, tt.want)
		})
	}
	repo.AssertNotCalled(t, "Insert")
}

func TestCreateTituloDuplicateConflictPassesDriverTextThrough(t *testing.T) {
	svc, repo := newService(t)

	repo.On("Insert", mock.Anything, mock.Anything).
		Return(int64(0), apperrors.NewConflictError(duplicateKeyMessage)).Once()

	body := `{"categoria_titulo": "NTN-B", "mês": 5, "ano": 2017, "ação": "venda", "valor": 25000}`
	_, err := svc.CreateTitulo(context.Background(), []byte(body))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
	assert.Contains(t, appErr.Message, duplicateKeyMessage)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	repo.AssertExpectations(t)
}

// --- Update ---

func TestUpdateTituloBodyChecksPrecedeEverything(t *testing.T) {
	svc, repo := newService(t)

	_, err := svc.UpdateTitulo(context.Background(), "1", nil)
	assertAppError(t, err, 400, "No request body.")

	_, err = svc.UpdateTitulo(context.Background(), "1", []byte("{}"))
	assertAppError(t, err, 400, "Empty request body.")

	repo.AssertNotCalled(t, "FindByID")
}

func TestUpdateTituloIDCoercion(t *testing.T) {
	svc, repo := newService(t)

	body := []byte(`{"categoria_titulo": "NTN-B Principal"}`)

	_, err := svc.UpdateTitulo(context.Background(), "three", body)
	assertAppError(t, err, 400, `"titulo_id" must be an int.`)

	_, err = svc.UpdateTitulo(context.Background(), "0", body)
	assertAppError(t, err, 400, `"titulo_id" must be greater than zero.`)

	repo.AssertNotCalled(t, "FindByID")
}

func TestUpdateTituloUnknownIDWinsOverImmutableCategory(t *testing.T) {
	svc, repo := newService(t)

	repo.On("FindByID", mock.Anything, int64(1)).Return(nil, apperrors.ErrNotFound).Once()

	// Even with the forbidden field in the body, an unknown id is a 404.
	_, err := svc.UpdateTitulo(context.Background(), "1", []byte(`{"categoria_titulo": "NTN-B Principal"}`))
	assertAppError(t, err, 404, `"titulo_id" has no register.`)
	repo.AssertNotCalled(t, "Patch")
	repo.AssertExpectations(t)
}

func TestUpdateTituloCategoryIsImmutable(t *testing.T) {
	svc, repo := newService(t)

	existing := &domain.TituloTesouro{ID: 1, Category: "NTN-B", Month: 5, Year: 2017, Action: domain.ActionVenda, Amount: 666}
	repo.On("FindByID", mock.Anything, int64(1)).Return(existing, nil).Once()

	_, err := svc.UpdateTitulo(context.Background(), "1", []byte(`{"categoria_titulo": "NTN-B Principal"}`))
	assertAppError(t, err, 400, `Field "categoria_titulo" cannot be updated`)
	repo.AssertNotCalled(t, "Patch")
	repo.AssertExpectations(t)
}

func TestUpdateTituloEchoesOnlySuppliedFields(t *testing.T) {
	svc, repo := newService(t)

	existing := &domain.TituloTesouro{ID: 1, Category: "NTN-B", Month: 5, Year: 2017, Action: domain.ActionVenda, Amount: 666}
	repo.On("FindByID", mock.Anything, int64(1)).Return(existing, nil).Once()
	repo.On("Patch", mock.Anything, int64(1), mock.MatchedBy(func(p domain.TituloPatch) bool {
		return p.Action != nil && *p.Action == domain.ActionResgate &&
			p.Month == nil && p.Year == nil && p.Amount == nil
	})).Return(nil).Once()

	updated, err := svc.UpdateTitulo(context.Background(), "1", []byte(`{"ação": "resgate"}`))
	require.NoError(t, err)

	// The response echoes the value exactly as supplied, not canonicalized.
	assert.Equal(t, map[string]any{"id": int64(1), "ação": "resgate"}, updated)
	repo.AssertExpectations(t)
}

func TestUpdateTituloPatchConflictPassesThrough(t *testing.T) {
	svc, repo := newService(t)

	existing := &domain.TituloTesouro{ID: 1, Category: "NTN-B", Month: 5, Year: 2017, Action: domain.ActionVenda, Amount: 666}
	repo.On("FindByID", mock.Anything, int64(1)).Return(existing, nil).Once()
	repo.On("Patch", mock.Anything, int64(1), mock.Anything).
		Return(apperrors.NewConflictError(duplicateKeyMessage)).Once()

	_, err := svc.UpdateTitulo(context.Background(), "1", []byte(`{"mês": 6}`))
	assertAppError(t, err, 400, duplicateKeyMessage)
	repo.AssertExpectations(t)
}

// --- Delete ---

func TestDeleteTitulo(t *testing.T) {
	svc, repo := newService(t)

	err := svc.DeleteTitulo(context.Background(), "three")
	assertAppError(t, err, 400, `"titulo_id" must be an int.`)

	err = svc.DeleteTitulo(context.Background(), "0")
	assertAppError(t, err, 400, `"titulo_id" must be greater than zero.`)

	repo.On("Delete", mock.Anything, int64(7)).Return(apperrors.ErrNotFound).Once()
	err = svc.DeleteTitulo(context.Background(), "7")
	assertAppError(t, err, 404, `"titulo_id" has no register.`)

	repo.On("Delete", mock.Anything, int64(1)).Return(nil).Once()
	err = svc.DeleteTitulo(context.Background(), "1")
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

// --- History ---

func TestGetHistoryDateFilterValidatedBeforeExistence(t *testing.T) {
	svc, repo := newService(t)

	_, err := svc.GetHistory(context.Background(), "1", "-2015-05", true)
	assertAppError(t, err, 400, `date not in format "YYYY-mm"`)

	_, err = svc.GetHistory(context.Background(), "1", "2015-May", true)
	assertAppError(t, err, 400, "month must be a positive int.")

	repo.AssertNotCalled(t, "FindByID")
}

func TestGetHistory(t *testing.T) {
	svc, repo := newService(t)

	titulo := &domain.TituloTesouro{ID: 1, Category: "NTN-B", Month: 4, Year: 2017, Action: domain.ActionVenda, Amount: 15000}
	points := []domain.SeriesPoint{
		{Month: 4, Year: 2017, Amount: 15000},
		{Month: 5, Year: 2017, Amount: 25000},
	}
	from := time.Date(2015, time.May, 1, 0, 0, 0, 0, time.UTC)

	repo.On("FindByID", mock.Anything, int64(1)).Return(titulo, nil).Once()
	repo.On("ListSeries", mock.Anything, "NTN-B", domain.ActionVenda, &from).Return(points, nil).Once()

	history, err := svc.GetHistory(context.Background(), "1", "2015-05", true)
	require.NoError(t, err)

	assert.Equal(t, int64(1), history.ID)
	assert.Equal(t, "NTN-B", history.Category)
	assert.Equal(t, "VENDA", history.Action)
	require.Len(t, history.History, 2)
	assert.Equal(t, 5, history.History[1].Month)
	assert.Equal(t, 25000.0, history.History[1].Amount)
	repo.AssertExpectations(t)
}

func TestGetHistoryUnknownID(t *testing.T) {
	svc, repo := newService(t)

	repo.On("FindByID", mock.Anything, int64(99999)).Return(nil, apperrors.ErrNotFound).Once()

	_, err := svc.GetHistory(context.Background(), "99999", "", false)
	assertAppError(t, err, 404, `"titulo_id" has no register.`)
	repo.AssertExpectations(t)
}

func TestGetHistoryByActionUnknownIDEchoesActionAsSupplied(t *testing.T) {
	svc, repo := newService(t)

	repo.On("FindByIDAndAction", mock.Anything, int64(99999), domain.ActionVenda).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := svc.GetHistoryByAction(context.Background(), "venda", "99999", "", false)
	assertAppError(t, err, 404, `"titulo_id" has no register for action "venda".`)
	repo.AssertExpectations(t)
}

func TestGetHistoryByActionUnrecognizedLabelFallsOutAsNotFound(t *testing.T) {
	svc, repo := newService(t)

	repo.On("FindByIDAndAction", mock.Anything, int64(1), domain.Action("")).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := svc.GetHistoryByAction(context.Background(), "aluguel", "1", "", false)
	assertAppError(t, err, 404, `"titulo_id" has no register for action "aluguel".`)
	repo.AssertExpectations(t)
}

func TestGetHistoryByAction(t *testing.T) {
	svc, repo := newService(t)

	titulo := &domain.TituloTesouro{ID: 1, Category: "NTN-B", Month: 4, Year: 2017, Action: domain.ActionVenda, Amount: 15000}
	repo.On("FindByIDAndAction", mock.Anything, int64(1), domain.ActionVenda).Return(titulo, nil).Once()
	repo.On("ListSeries", mock.Anything, "NTN-B", domain.ActionVenda, (*time.Time)(nil)).
		Return([]domain.SeriesPoint{{Month: 4, Year: 2017, Amount: 15000}}, nil).Once()

	history, err := svc.GetHistoryByAction(context.Background(), "VENDA", "1", "", false)
	require.NoError(t, err)
	assert.Equal(t, "VENDA", history.Action)
	repo.AssertExpectations(t)
}

// --- Compare ---

func TestCompareTitulosParameterChecks(t *testing.T) {
	svc, repo := newService(t)

	_, err := svc.CompareTitulos(context.Background(), nil, false, "", false)
	assertAppError(t, err, 400, `Missing mandatory parameter "ids".`)

	// A single occurrence of the key is a scalar, not a list.
	_, err = svc.CompareTitulos(context.Background(), []string{"[1, 33, 643]"}, true, "", false)
	assertAppError(t, err, 400, `Parameter "ids" must be a list.`)

	repo.AssertNotCalled(t, "FindByID")
}

func TestCompareTitulosNonIntegerElementFailsBeforeExistence(t *testing.T) {
	svc, repo := newService(t)

	_, err := svc.CompareTitulos(context.Background(), []string{"one", "33", "643"}, true, "", false)
	assertAppError(t, err, 400, `"titulo_id" must be an int.`)

	// Idempotent regardless of element order.
	_, err = svc.CompareTitulos(context.Background(), []string{"33", "643", "one"}, true, "", false)
	assertAppError(t, err, 400, `"titulo_id" must be an int.`)

	repo.AssertNotCalled(t, "FindByID")
}

func TestCompareTitulosMissingIDNeverRevealed(t *testing.T) {
	svc, repo := newService(t)

	titulo := &domain.TituloTesouro{ID: 1, Category: "NTN-B", Month: 4, Year: 2017, Action: domain.ActionVenda, Amount: 15000}
	repo.On("FindByID", mock.Anything, int64(1)).Return(titulo, nil).Once()
	repo.On("FindByID", mock.Anything, int64(33)).Return(nil, apperrors.ErrNotFound).Once()

	_, err := svc.CompareTitulos(context.Background(), []string{"1", "33", "999999"}, true, "", false)
	assertAppError(t, err, 404, "One of the ids was not found.")

	// Short-circuits on the first missing id.
	repo.AssertNotCalled(t, "FindByID", mock.Anything, int64(999999))
	repo.AssertNotCalled(t, "ListSeries")
	repo.AssertExpectations(t)
}

func TestCompareTitulos(t *testing.T) {
	svc, repo := newService(t)

	first := &domain.TituloTesouro{ID: 1, Category: "NTN-B", Month: 4, Year: 2017, Action: domain.ActionVenda, Amount: 15000}
	second := &domain.TituloTesouro{ID: 2, Category: "LTN", Month: 7, Year: 2015, Action: domain.ActionResgate, Amount: 500}

	repo.On("FindByID", mock.Anything, int64(1)).Return(first, nil).Once()
	repo.On("FindByID", mock.Anything, int64(2)).Return(second, nil).Once()
	repo.On("ListSeries", mock.Anything, "NTN-B", domain.ActionVenda, (*time.Time)(nil)).
		Return([]domain.SeriesPoint{{Month: 4, Year: 2017, Amount: 15000}}, nil).Once()
	repo.On("ListSeries", mock.Anything, "LTN", domain.ActionResgate, (*time.Time)(nil)).
		Return([]domain.SeriesPoint{{Month: 7, Year: 2015, Amount: 500}}, nil).Once()

	histories, err := svc.CompareTitulos(context.Background(), []string{"1", "2"}, true, "", false)
	require.NoError(t, err)

	require.Len(t, histories, 2)
	assert.Equal(t, int64(1), histories[0].ID)
	assert.Equal(t, int64(2), histories[1].ID)
	repo.AssertExpectations(t)
}

// Unexpected repository failures must not leak as AppErrors.
func TestUnexpectedStorageErrorIsNotAnAppError(t *testing.T) {
	svc, repo := newService(t)

	repo.On("Delete", mock.Anything, int64(1)).Return(errors.New("connection refused")).Once()

	err := svc.DeleteTitulo(context.Background(), "1")
	var appErr *apperrors.AppError
	assert.False(t, errors.As(err, &appErr))
	repo.AssertExpectations(t)
}

// The raw map decoding keeps numbers opaque until coercion; this guards the
// echo of numeric update values through JSON marshaling.
func TestUpdateEchoMarshalsNumbersPlainly(t *testing.T) {
	svc, repo := newService(t)

	existing := &domain.TituloTesouro{ID: 1, Category: "NTN-B", Month: 5, Year: 2017, Action: domain.ActionVenda, Amount: 666}
	repo.On("FindByID", mock.Anything, int64(1)).Return(existing, nil).Once()
	repo.On("Patch", mock.Anything, int64(1), mock.Anything).Return(nil).Once()

	updated, err := svc.UpdateTitulo(context.Background(), "1", []byte(`{"valor": 25000}`))
	require.NoError(t, err)

	raw, err := json.Marshal(updated)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 1, "valor": 25000}`, string(raw))
	repo.AssertExpectations(t)
}
