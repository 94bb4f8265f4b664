package validation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tesouro-direto/titulo_tesouro_app/internal/apperrors"
	"github.com/tesouro-direto/titulo_tesouro_app/internal/core/domain"
)

// Field coercion rules. Each takes a raw JSON value (decoded with
// json.Number, so integers, floats and numeric strings stay distinguishable)
// and returns the normalized value or a 400 AppError whose message is fixed
// by the wire contract.

// quoteList renders labels as ['a', 'b', ...], the bracketed form the
// contract uses for enumerations and field lists.
func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = "'" + it + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func categoryList() string {
	return quoteList(domain.Categories())
}

func actionList() string {
	actions := domain.Actions()
	labels := make([]string, len(actions))
	for i, a := range actions {
		labels[i] = string(a)
	}
	return quoteList(labels)
}

// CoerceCategory validates the bond category label.
func CoerceCategory(raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", apperrors.NewValidationFailedError(`"category" must be a string.`)
	}
	if !domain.IsCategory(s) {
		return "", apperrors.NewValidationFailedError(fmt.Sprintf(`"category" must be one of %s.`, categoryList()))
	}
	return s, nil
}

// CoerceMonth validates the month as an integer in [1, 12].
func CoerceMonth(raw any) (int, error) {
	n, ok := raw.(json.Number)
	if !ok {
		return 0, apperrors.NewValidationFailedError(`"month" must be an integer.`)
	}
	month, err := n.Int64()
	if err != nil {
		return 0, apperrors.NewValidationFailedError(`"month" must be an integer.`)
	}
	if month < 1 || month > 12 {
		return 0, apperrors.NewValidationFailedError(`"month" must be in interval [1, 12].`)
	}
	return int(month), nil
}

// CoerceYear validates the year as an integer no earlier than 2002, the
// first year the program recognizes data for.
func CoerceYear(raw any) (int, error) {
	n, ok := raw.(json.Number)
	if !ok {
		return 0, apperrors.NewValidationFailedError(`"year" must be an integer.`)
	}
	year, err := n.Int64()
	if err != nil {
		return 0, apperrors.NewValidationFailedError(`"year" must be an integer.`)
	}
	if year < 2002 {
		return 0, apperrors.NewValidationFailedError(`"year" must be greater than or equal to 2002.`)
	}
	return int(year), nil
}

// CoerceAction matches the action label case-insensitively and returns the
// canonical uppercase form.
func CoerceAction(raw any) (domain.Action, error) {
	s, ok := raw.(string)
	if !ok {
		return "", apperrors.NewValidationFailedError(`"action" must be a string.`)
	}
	action, ok := domain.ParseAction(s)
	if !ok {
		return "", apperrors.NewValidationFailedError(fmt.Sprintf(`"action" must be one of %s.`, actionList()))
	}
	return action, nil
}

// CoerceAmount validates the monetary value as a strictly positive number.
// Numeric strings are rejected.
func CoerceAmount(raw any) (float64, error) {
	n, ok := raw.(json.Number)
	if !ok {
		return 0, apperrors.NewValidationFailedError(`"amount" must be a float or a int.`)
	}
	amount, err := n.Float64()
	if err != nil {
		return 0, apperrors.NewValidationFailedError(`"amount" must be a float or a int.`)
	}
	if amount <= 0 {
		return 0, apperrors.NewValidationFailedError(`"amount" must be greater than zero.`)
	}
	return amount, nil
}

// CoerceTituloID validates the titulo_id path parameter.
func CoerceTituloID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationFailedError(`"titulo_id" must be an int.`)
	}
	if id <= 0 {
		return 0, apperrors.NewValidationFailedError(`"titulo_id" must be greater than zero.`)
	}
	return id, nil
}
