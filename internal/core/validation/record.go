package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/tesouro-direto/titulo_tesouro_app/internal/apperrors"
	"github.com/tesouro-direto/titulo_tesouro_app/internal/core/domain"
)

// Wire field names. The API speaks the domain's native (Portuguese) labels.
const (
	FieldCategory = "categoria_titulo"
	FieldMonth    = "mês"
	FieldYear     = "ano"
	FieldAction   = "ação"
	FieldAmount   = "valor"
	FieldUnit     = "unidade"
)

// mandatoryFields lists the create fields in the canonical order used both
// for the missing-fields message and for the fail-fast coercion pass.
var mandatoryFields = []string{FieldCategory, FieldMonth, FieldYear, FieldAction, FieldAmount}

// RecordValidator applies the per-operation field contracts for create and
// partial update. The unit table maps optional "unidade" labels to the
// multiplier applied once to the amount at ingestion.
type RecordValidator struct {
	units      map[string]float64
	unitLabels []string
}

func NewRecordValidator(units map[string]float64) *RecordValidator {
	labels := make([]string, 0, len(units))
	for label := range units {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return &RecordValidator{units: units, unitLabels: labels}
}

// decodeFields parses a JSON object keeping numbers as json.Number so the
// coercion rules can tell integers, floats and numeric strings apart.
func decodeFields(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// Create validates a create request body and returns the normalized record
// ready for insertion. An absent or undecodable body is indistinguishable on
// the wire and both fail as a missing body.
func (v *RecordValidator) Create(body []byte) (*domain.TituloTesouro, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, apperrors.NewValidationFailedError("No request body.")
	}
	fields, err := decodeFields(body)
	if err != nil {
		return nil, apperrors.NewValidationFailedError("No request body.")
	}

	var missing []string
	for _, name := range mandatoryFields {
		if _, ok := fields[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("Mandatory fields %s missing.", quoteList(missing)))
	}

	category, err := CoerceCategory(fields[FieldCategory])
	if err != nil {
		return nil, err
	}
	month, err := CoerceMonth(fields[FieldMonth])
	if err != nil {
		return nil, err
	}
	year, err := CoerceYear(fields[FieldYear])
	if err != nil {
		return nil, err
	}
	action, err := CoerceAction(fields[FieldAction])
	if err != nil {
		return nil, err
	}
	amount, err := CoerceAmount(fields[FieldAmount])
	if err != nil {
		return nil, err
	}
	if rawUnit, ok := fields[FieldUnit]; ok {
		multiplier, err := v.coerceUnit(rawUnit)
		if err != nil {
			return nil, err
		}
		amount *= multiplier
	}

	return &domain.TituloTesouro{
		Category: category,
		Month:    month,
		Year:     year,
		Action:   action,
		Amount:   amount,
	}, nil
}

// coerceUnit resolves the optional unit-suffix label to its multiplier.
func (v *RecordValidator) coerceUnit(raw any) (float64, error) {
	s, ok := raw.(string)
	if !ok {
		return 0, apperrors.NewValidationFailedError(`"unit" must be a string.`)
	}
	multiplier, ok := v.units[s]
	if !ok {
		return 0, apperrors.NewValidationFailedError(fmt.Sprintf(`"unit" must be one of %s.`, quoteList(v.unitLabels)))
	}
	return multiplier, nil
}

// DecodeUpdate checks update body presence and returns the raw field map.
// The body must exist and decode to a non-empty object.
func (v *RecordValidator) DecodeUpdate(body []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, apperrors.NewValidationFailedError("No request body.")
	}
	fields, err := decodeFields(body)
	if err != nil {
		return nil, apperrors.NewValidationFailedError("No request body.")
	}
	if len(fields) == 0 {
		return nil, apperrors.NewValidationFailedError("Empty request body.")
	}
	return fields, nil
}

// UpdateFields validates the fields of a partial update. The category is
// structurally immutable: its presence fails the request before any per-field
// coercion runs. The echo map preserves the supplied values untouched for the
// response; unknown keys are ignored.
func (v *RecordValidator) UpdateFields(fields map[string]any) (domain.TituloPatch, map[string]any, error) {
	var patch domain.TituloPatch
	if _, ok := fields[FieldCategory]; ok {
		return patch, nil, apperrors.NewValidationFailedError(`Field "categoria_titulo" cannot be updated`)
	}

	echo := make(map[string]any, len(fields))
	if raw, ok := fields[FieldMonth]; ok {
		month, err := CoerceMonth(raw)
		if err != nil {
			return patch, nil, err
		}
		patch.Month = &month
		echo[FieldMonth] = raw
	}
	if raw, ok := fields[FieldYear]; ok {
		year, err := CoerceYear(raw)
		if err != nil {
			return patch, nil, err
		}
		patch.Year = &year
		echo[FieldYear] = raw
	}
	if raw, ok := fields[FieldAction]; ok {
		action, err := CoerceAction(raw)
		if err != nil {
			return patch, nil, err
		}
		patch.Action = &action
		echo[FieldAction] = raw
	}
	if raw, ok := fields[FieldAmount]; ok {
		amount, err := CoerceAmount(raw)
		if err != nil {
			return patch, nil, err
		}
		patch.Amount = &amount
		echo[FieldAmount] = raw
	}
	return patch, echo, nil
}
