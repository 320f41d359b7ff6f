package validation_test

import (
	"encoding/json"
	"testing"
	"time"

	"portfolio-tracker/internal/validation"
)

func TestIsTransactionTypeValid(t *testing.T) {
	for _, v := range []any{"buy", "sell"} {
		if !validation.IsTransactionTypeValid(v) {
			t.Fatalf("expected %v to be valid", v)
		}
	}
	for _, v := range []any{"BUY", "", "dividend", nil, 1} {
		if validation.IsTransactionTypeValid(v) {
			t.Fatalf("expected %v to be invalid", v)
		}
	}
}

func TestIsExecutionTypeValid(t *testing.T) {
	for _, v := range []any{"market", "limit"} {
		if !validation.IsExecutionTypeValid(v) {
			t.Fatalf("expected %v to be valid", v)
		}
	}
	for _, v := range []any{"Market", "stop", nil} {
		if validation.IsExecutionTypeValid(v) {
			t.Fatalf("expected %v to be invalid", v)
		}
	}
}

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		value any
		want  bool
	}{
		{"12", true},
		{"-3.5", true},
		{".5", true},
		{"+7", true},
		{json.Number("1e3"), true},
		{12.25, true},
		{"abc", false},
		{"1.", false},
		{"", false},
		{nil, false},
		{true, false},
	}
	for _, tc := range tests {
		if got := validation.IsNumeric(tc.value); got != tc.want {
			t.Fatalf("IsNumeric(%#v) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestIsInt(t *testing.T) {
	if !validation.IsInt(json.Number("42")) || !validation.IsInt("-1") || !validation.IsInt(float64(3)) {
		t.Fatal("expected integers to be accepted")
	}
	if validation.IsInt(json.Number("4.2")) || validation.IsInt("4.0") || validation.IsInt(nil) {
		t.Fatal("expected non-integers to be rejected")
	}
	for _, v := range []any{"99999999999999999999", json.Number("99999999999999999999"), float64(1e20), "++5"} {
		if validation.IsInt(v) {
			t.Fatalf("expected %#v to be rejected", v)
		}
	}
}

func TestTime(t *testing.T) {
	got, err := validation.Time("2022-03-20")
	if err != nil {
		t.Fatalf("Time: %v", err)
	}
	if !got.Equal(time.Date(2022, 3, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time %v", got)
	}

	got, err = validation.Time("2022-03-20T10:30:00+02:00")
	if err != nil {
		t.Fatalf("Time: %v", err)
	}
	if got.Hour() != 8 {
		t.Fatalf("expected UTC conversion, got %v", got)
	}

	if _, err := validation.Time("20/03/2022"); err == nil {
		t.Fatal("expected error for non ISO date")
	}
}

func TestDecimal(t *testing.T) {
	d, err := validation.Decimal(json.Number("10.25"))
	if err != nil {
		t.Fatalf("Decimal: %v", err)
	}
	if d.String() != "10.25" {
		t.Fatalf("expected 10.25, got %s", d)
	}
	d, err = validation.Decimal("+3")
	if err != nil || d.String() != "3" {
		t.Fatalf("expected 3, got %s (%v)", d, err)
	}
}
