package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"portfolio-tracker/internal/domain"
)

var (
	numericPattern = regexp.MustCompile(`^[+-]?([0-9]*[.])?[0-9]+$`)
	intPattern     = regexp.MustCompile(`^[+-]?[0-9]+$`)

	validate = validator.New()

	transactionTypes = map[domain.TransactionType]struct{}{
		domain.TransactionTypeBuy:  {},
		domain.TransactionTypeSell: {},
	}
	executionTypes = map[domain.ExecutionType]struct{}{
		domain.ExecutionTypeMarket: {},
		domain.ExecutionTypeLimit:  {},
	}

	timeLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02",
	}
)

// IsTransactionTypeValid reports whether v names a member of the closed transaction type set.
func IsTransactionTypeValid(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, ok = transactionTypes[domain.TransactionType(s)]
	return ok
}

// IsExecutionTypeValid reports whether v names a member of the closed execution type set.
func IsExecutionTypeValid(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, ok = executionTypes[domain.ExecutionType(s)]
	return ok
}

// IsNumeric accepts JSON numbers and strings of optionally signed decimal digits.
func IsNumeric(v any) bool {
	switch n := v.(type) {
	case json.Number:
		_, err := decimal.NewFromString(n.String())
		return err == nil
	case float64:
		return !math.IsNaN(n) && !math.IsInf(n, 0)
	case int, int64:
		return true
	case string:
		return numericPattern.MatchString(n)
	default:
		return false
	}
}

// IsInt accepts whole JSON numbers and strings of optionally signed digits
// that fit in an int64, so every accepted value converts with Int64.
func IsInt(v any) bool {
	switch n := v.(type) {
	case json.Number:
		_, err := n.Int64()
		return err == nil
	case float64:
		return n == math.Trunc(n) && n >= math.MinInt64 && n < math.MaxInt64
	case int, int64:
		return true
	case string:
		if !intPattern.MatchString(n) {
			return false
		}
		_, err := Int64(n)
		return err == nil
	default:
		return false
	}
}

// IsISO8601 accepts date or date-time strings.
func IsISO8601(v any) bool {
	_, err := Time(v)
	return err == nil
}

func IsString(v any) bool {
	_, ok := v.(string)
	return ok
}

func IsEmail(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	return validate.Var(s, "required,email") == nil
}

func NotEmpty(v any) bool {
	return Stringify(v) != ""
}

// Stringify renders a raw JSON value the way it would appear in the request body.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func length(v any) int {
	return utf8.RuneCountInString(Stringify(v))
}

// Decimal converts a value that passed IsNumeric.
func Decimal(v any) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimPrefix(Stringify(v), "+"))
}

// Int64 converts a value that passed IsInt.
func Int64(v any) (int64, error) {
	return strconv.ParseInt(strings.TrimPrefix(Stringify(v), "+"), 10, 64)
}

// Time parses an ISO-8601 date or date-time. Values without a zone are taken as UTC.
func Time(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, fmt.Errorf("not a date string")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
