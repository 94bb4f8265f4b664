package validation

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tesouro-direto/titulo_tesouro_app/internal/apperrors"
)

var yearShape = regexp.MustCompile(`^\d{4}$`)

// ValidateStartDate parses the optional data_inicio history filter,
// expected as "YYYY-mm". The shape check runs first: exactly one hyphen,
// preceded by a 4-digit year with no leading sign. The month component must
// then parse as a positive int. Month values above 12 are not rejected here;
// time.Date normalizes them when the filter is built.
func ValidateStartDate(raw string) (time.Time, error) {
	parts := strings.Split(raw, "-")
	if len(parts) != 2 || !yearShape.MatchString(parts[0]) {
		return time.Time{}, apperrors.NewValidationFailedError(`date not in format "YYYY-mm"`)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month <= 0 {
		return time.Time{}, apperrors.NewValidationFailedError("month must be a positive int.")
	}
	year, _ := strconv.Atoi(parts[0])
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}
