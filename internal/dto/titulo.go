package dto

import "github.com/tesouro-direto/titulo_tesouro_app/internal/core/domain"

// Response envelope: exactly one top-level key, either "success" or "err".

type SuccessResponse struct {
	Success any `json:"success"`
}

type ErrorResponse struct {
	Err string `json:"err"`
}

// TituloResponse echoes a created record, with the action canonicalized to
// uppercase and the amount unit-normalized.
type TituloResponse struct {
	ID       int64   `json:"id"`
	Category string  `json:"categoria_titulo"`
	Month    int     `json:"mês"`
	Year     int     `json:"ano"`
	Action   string  `json:"ação"`
	Amount   float64 `json:"valor"`
}

// ToTituloResponse converts a persisted record to its wire form.
func ToTituloResponse(t *domain.TituloTesouro) TituloResponse {
	return TituloResponse{
		ID:       t.ID,
		Category: t.Category,
		Month:    t.Month,
		Year:     t.Year,
		Action:   string(t.Action),
		Amount:   t.Amount,
	}
}

// HistoryPoint is one month of a series history.
type HistoryPoint struct {
	Month  int     `json:"mês"`
	Year   int     `json:"ano"`
	Amount float64 `json:"valor"`
}

// TituloHistoryResponse is the history view of one record: the time-series of
// its (category, action) pair, optionally filtered from a start month/year.
type TituloHistoryResponse struct {
	ID       int64          `json:"id"`
	Category string         `json:"categoria_titulo"`
	Action   string         `json:"ação"`
	History  []HistoryPoint `json:"histórico"`
}

// ToHistoryResponse assembles the history view for a record.
func ToHistoryResponse(t *domain.TituloTesouro, points []domain.SeriesPoint) TituloHistoryResponse {
	history := make([]HistoryPoint, len(points))
	for i, p := range points {
		history[i] = HistoryPoint{Month: p.Month, Year: p.Year, Amount: p.Amount}
	}
	return TituloHistoryResponse{
		ID:       t.ID,
		Category: t.Category,
		Action:   string(t.Action),
		History:  history,
	}
}
