package student

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Edit is a raw per-installment override as submitted by the admin form.
// Either field may be empty or malformed; malformed values mean "no edit".
type Edit struct {
	DueDate string `json:"dueDate"`
	Amount  string `json:"amount"`
}

// Edits maps a 0-based installment position to its override.
type Edits map[int]Edit

const dateLayout = "2006-01-02"

// ParseRequestedTotal parses a requested installment count, falling back to
// the student's stored total when the input is blank, malformed or negative.
func ParseRequestedTotal(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// parseDateField parses an optional YYYY-MM-DD form value. A blank or
// malformed value reports ok=false, meaning the field was not edited.
func parseDateField(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseAmountField parses an optional non-negative decimal form value.
func parseAmountField(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}
	amt, err := decimal.NewFromString(raw)
	if err != nil || amt.IsNegative() {
		return decimal.Zero, false
	}
	return amt, true
}

// addMonths advances a date by whole calendar months, clamping the day of
// month to the last valid day of the target month (Jan 31 + 1 -> Feb 28/29).
func addMonths(base time.Time, months int) time.Time {
	y := base.Year() + (int(base.Month())-1+months)/12
	m := time.Month((int(base.Month())-1+months)%12 + 1)
	d := base.Day()
	if last := daysInMonth(y, m); d > last {
		d = last
	}
	return time.Date(y, m, d, 0, 0, 0, 0, base.Location())
}

func daysInMonth(year int, month time.Month) int {
	// day 0 of the next month normalizes to the last day of this month
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
