package schema

import (
	"errors"
	"testing"
)

func TestEvalRange_Literal(t *testing.T) {
	t.Parallel()

	got, err := evalRange("42", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestEvalRange_Arithmetic(t *testing.T) {
	t.Parallel()

	got, err := evalRange("(2 + 3) * 4 - 1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != 19 {
		t.Fatalf("got %d, want 19", got)
	}
}

func TestEvalRange_Symbol(t *testing.T) {
	t.Parallel()

	got, err := evalRange("MAX - 1", map[string]int64{"MAX": 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != 9 {
		t.Fatalf("got %d, want 9", got)
	}
}

func TestEvalRange_UnresolvedIdentifier(t *testing.T) {
	t.Parallel()

	_, err := evalRange("UNDEFINED + 1", map[string]int64{})
	if err == nil {
		t.Fatal("expected an error for an unresolved identifier")
	}

	var rangeErr *RangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected a *RangeError, got %T: %v", err, err)
	}
}

func TestEvalRange_DivisionByZero(t *testing.T) {
	t.Parallel()

	_, err := evalRange("1 / 0", nil)
	if err == nil {
		t.Fatal("expected a division-by-zero error")
	}
}

func TestParseRangeEndpoints(t *testing.T) {
	t.Parallel()

	lo, hi, err := parseRangeEndpoints("-10..MAX", map[string]int64{"MAX": 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lo != -10 || hi != 20 {
		t.Fatalf("got [%d, %d], want [-10, 20]", lo, hi)
	}
}

func TestParseRangeEndpoints_Malformed(t *testing.T) {
	t.Parallel()

	_, _, err := parseRangeEndpoints("no-dots-here", nil)
	if err == nil {
		t.Fatal("expected an error for a malformed range")
	}
}
