package domain

import (
	"strings"
	"time"
)

// Action is the transaction type of a Tesouro Direto series record.
// Stored and returned in the canonical uppercase form.
type Action string

const (
	ActionVenda   Action = "VENDA"
	ActionResgate Action = "RESGATE"
)

// Actions returns the recognized actions in their canonical order.
func Actions() []Action {
	return []Action{ActionVenda, ActionResgate}
}

// ParseAction matches raw case-insensitively against the recognized actions
// and returns the canonical form.
func ParseAction(raw string) (Action, bool) {
	for _, a := range Actions() {
		if strings.EqualFold(raw, string(a)) {
			return a, true
		}
	}
	return "", false
}

// categories is the closed set of bond product lines. It is fixed at build
// time; the API never extends it.
var categories = []string{
	"LFT",
	"LTN",
	"NTN-B",
	"NTN-B Principal",
	"NTN-C",
	"NTN-F",
}

// Categories returns the allowed bond categories in their canonical order.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// IsCategory reports whether s is an allowed bond category (exact match).
func IsCategory(s string) bool {
	for _, c := range categories {
		if s == c {
			return true
		}
	}
	return false
}

// TituloTesouro is one sale/redemption record of a treasury-bond series,
// bucketed by category, month and year.
type TituloTesouro struct {
	ID       int64
	Category string
	Month    int
	Year     int
	Action   Action
	Amount   float64
}

// ExpireAt derives the expiration key used, together with category and
// action, to enforce record uniqueness.
func (t TituloTesouro) ExpireAt() time.Time {
	return time.Date(t.Year, time.Month(t.Month), 1, 0, 0, 0, 0, time.UTC)
}

// TituloPatch holds the subset of updatable fields supplied by a partial
// update. Nil means the field was not supplied and stays untouched.
type TituloPatch struct {
	Month  *int
	Year   *int
	Action *Action
	Amount *float64
}

// IsEmpty reports whether the patch carries no field at all.
func (p TituloPatch) IsEmpty() bool {
	return p.Month == nil && p.Year == nil && p.Action == nil && p.Amount == nil
}

// SeriesPoint is one month of a series history.
type SeriesPoint struct {
	Month  int
	Year   int
	Amount float64
}
