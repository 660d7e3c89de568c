package programrule

import (
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/TimurManjosov/trackerrules/internal/metadata"
)

const dateLayout = "2006-01-02"

// Plain decimal notation only. big.Int and big.Rat also accept base
// prefixes, digit separators and fractions.
var (
	integerPattern = regexp.MustCompile(`^[+-]?\d+$`)
	decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
)

// IsEqual compares two stored values the way their value type defines
// equality. Empty values are absent and never equal anything, including
// another absent value. Values that do not parse as their type are not
// equal either.
func IsEqual(oldValue, newValue string, valueType metadata.ValueType) bool {
	if oldValue == "" || newValue == "" {
		return false
	}

	switch {
	case valueType.IsBoolean():
		a, okA := parseBool(oldValue)
		b, okB := parseBool(newValue)
		return okA && okB && a == b
	case valueType.IsInteger():
		a, okA := parseInteger(oldValue)
		b, okB := parseInteger(newValue)
		return okA && okB && a.Cmp(b) == 0
	case valueType.IsNumeric():
		a, okA := parseDecimal(oldValue)
		b, okB := parseDecimal(newValue)
		return okA && okB && a.Cmp(b) == 0
	case valueType.IsDate():
		a, errA := parseDate(oldValue)
		b, errB := parseDate(newValue)
		return errA == nil && errB == nil && a.Equal(b)
	default:
		return oldValue == newValue
	}
}

// parseBool accepts only the literals "true" and "false", in any case.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

func parseInteger(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	if !integerPattern.MatchString(s) {
		return nil, false
	}
	return new(big.Int).SetString(s, 10)
}

// parseDecimal parses an exact decimal, so "23" and "23.0" compare equal
// without float rounding.
func parseDecimal(s string) (*big.Rat, bool) {
	s = strings.TrimSpace(s)
	if !decimalPattern.MatchString(s) {
		return nil, false
	}
	return new(big.Rat).SetString(s)
}

// parseDate reads the calendar date; a trailing time part is ignored.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) && s[len(dateLayout)] == 'T' {
		s = s[:len(dateLayout)]
	}
	return time.Parse(dateLayout, s)
}
