package main

import (
	"errors"
	"testing"
)

func TestComputeReorderDateBySize(t *testing.T) {
	cases := []struct {
		name     string
		category string
		ordered  int
		want     string
	}{
		{"large order uses window max", "wellness", 10, "2024-02-05"},
		{"small order uses window min", "wellness", 3, "2024-01-29"},
		{"mid order uses floor midpoint", "beverages", 5, "2024-01-25"},
		{"size boundary at ten", "beverages", 9, "2024-01-25"},
		{"zero cases uses window min", "food", 0, "2024-01-15"},
	}

	for _, tc := range cases {
		got, err := computeReorderDate("2024-01-01", tc.category, tc.ordered)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestComputeReorderDateUnknownCategory(t *testing.T) {
	// Unknown categories fall back to the (21, 35) default window.
	got, err := computeReorderDate("2024-01-01", "glassware", 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2024-02-05" {
		t.Fatalf("expected default max 2024-02-05, got %s", got)
	}

	got, err = computeReorderDate("2024-01-01", "", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2024-01-22" {
		t.Fatalf("expected default min 2024-01-22, got %s", got)
	}
}

func TestComputeReorderDateCategoryCase(t *testing.T) {
	upper, err := computeReorderDate("2024-01-01", "Wellness", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lower, err := computeReorderDate("2024-01-01", "wellness", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upper != lower {
		t.Fatalf("category match should be case-insensitive: %s vs %s", upper, lower)
	}
}

func TestComputeReorderDateInvalidDate(t *testing.T) {
	for _, value := range []string{"", "not-a-date", "01/02/2024", "2024-1-2"} {
		_, err := computeReorderDate(value, "wellness", 5)
		if !errors.Is(err, errInvalidDate) {
			t.Fatalf("date %q: expected errInvalidDate, got %v", value, err)
		}
	}
}

func TestComputeReorderDateInvalidQuantity(t *testing.T) {
	_, err := computeReorderDate("2024-01-01", "wellness", -1)
	if !errors.Is(err, errInvalidQuantity) {
		t.Fatalf("expected errInvalidQuantity, got %v", err)
	}
}
