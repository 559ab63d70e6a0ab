// Package pricing derives the displayed total for a prospective booking
// from the selected date range, the nightly rate, and the activity cart.
// Everything here is a pure function of its inputs.
package pricing

import (
	"fmt"
	"strconv"
	"time"

	"staybook/internal/domain"
)

// Mode says which of the two display forms a Quote takes.
type Mode string

const (
	// ModePerNight is the fallback: no valid stay selected, show the
	// nightly rate alone.
	ModePerNight Mode = "per_night"
	// ModeStay is a priced stay: nightly rate times nights plus paid
	// activities.
	ModeStay Mode = "stay"
)

// Quote is a computed price display.
type Quote struct {
	Mode    Mode    `json:"mode"`
	Nightly float64 `json:"price_per_night"`
	Total   float64 `json:"total"`
	// Nights is the whole-day length of the stay; 0 in per-night mode.
	Nights int `json:"nights"`
	// Activities counts cart entries with a positive payment amount.
	// Free activities contribute nothing and are not counted.
	Activities int `json:"activities"`
}

// Compute builds a Quote from the nightly rate, the optional date range,
// and the current cart contents.
//
// When either date is missing or the range is not strictly positive, the
// quote falls back to per-night mode regardless of cart contents.
func Compute(nightlyRate float64, start, end time.Time, cart []domain.Activity) Quote {
	activityTotal, paid := activitySum(cart)

	if start.IsZero() || end.IsZero() || !end.After(start) {
		return Quote{Mode: ModePerNight, Nightly: nightlyRate, Total: nightlyRate}
	}
	nights := int(end.Sub(start).Hours() / 24)
	if nights <= 0 {
		return Quote{Mode: ModePerNight, Nightly: nightlyRate, Total: nightlyRate}
	}

	return Quote{
		Mode:       ModeStay,
		Nightly:    nightlyRate,
		Total:      nightlyRate*float64(nights) + activityTotal,
		Nights:     nights,
		Activities: paid,
	}
}

// Display renders the quote's amount, e.g. "100.00".
func (q Quote) Display() string {
	return fmt.Sprintf("%.2f", q.Total)
}

// Label renders the quote's qualifier: "/ night" in per-night mode, or
// "for 3 days and 1 activity" for a priced stay. The activity suffix is
// omitted when no paid activities are in the cart.
func (q Quote) Label() string {
	if q.Mode == ModePerNight {
		return "/ night"
	}
	label := fmt.Sprintf("for %d %s", q.Nights, plural(q.Nights, "day", "days"))
	if q.Activities > 0 {
		label += fmt.Sprintf(" and %d %s", q.Activities, plural(q.Activities, "activity", "activities"))
	}
	return label
}

// ParseAmount converts a decimal string amount (e.g. "20.00") to a float.
// Malformed amounts are treated as zero, matching the tolerance the rest
// of the system has for upstream data.
func ParseAmount(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// activitySum totals the paid activities in the cart and counts them.
func activitySum(cart []domain.Activity) (total float64, paid int) {
	for _, a := range cart {
		if amt := ParseAmount(a.PaymentAmount); amt > 0 {
			total += amt
			paid++
		}
	}
	return total, paid
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
