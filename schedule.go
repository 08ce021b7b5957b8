package main

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errInvalidDate     = errors.New("invalid date")
	errInvalidQuantity = errors.New("invalid quantity")
)

// reorderWindow is the policy interval, in days after an order, within which
// a follow-up reorder is expected.
type reorderWindow struct {
	MinDays int
	MaxDays int
}

var reorderWindows = map[string]reorderWindow{
	"beverages": {MinDays: 21, MaxDays: 28},
	"wellness":  {MinDays: 28, MaxDays: 35},
	"tobacco":   {MinDays: 21, MaxDays: 30},
	"food":      {MinDays: 14, MaxDays: 21},
}

var defaultReorderWindow = reorderWindow{MinDays: 21, MaxDays: 35}

func reorderWindowFor(category string) reorderWindow {
	if window, ok := reorderWindows[strings.ToLower(strings.TrimSpace(category))]; ok {
		return window
	}
	return defaultReorderWindow
}

// computeReorderDate picks the recommended reorder date for an order. Larger
// orders sit at the far edge of the category window; small ones at the near
// edge. Order size selects an edge, it is not interpolated.
func computeReorderDate(orderDate string, category string, casesOrdered int) (string, error) {
	if casesOrdered < 0 {
		return "", fmt.Errorf("cases ordered %d: %w", casesOrdered, errInvalidQuantity)
	}

	orderDay, err := parseDay(orderDate)
	if err != nil {
		return "", fmt.Errorf("order date %q: %w", orderDate, errInvalidDate)
	}

	window := reorderWindowFor(category)
	offsetDays := window.MinDays
	switch {
	case casesOrdered >= 10:
		offsetDays = window.MaxDays
	case casesOrdered >= 5:
		offsetDays = (window.MinDays + window.MaxDays) / 2
	}

	return formatDay(orderDay.AddDate(0, 0, offsetDays)), nil
}
