package dormancy

import (
	"strconv"
	"strings"
	"time"
)

// Window is the period a dormancy analysis is run against. Membership and
// recency are both tested against it: a dormant customer transacted inside
// the window and never after End.
type Window struct {
	Start time.Time
	End   time.Time
	Label string

	// inclusiveEnd distinguishes an explicit [start, end] range from a
	// calendar month, whose End is the exclusive start of the next month.
	inclusiveEnd bool
}

// MonthWindow builds the calendar-month window containing t.
func MonthWindow(t time.Time) Window {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	return Window{
		Start: start,
		End:   end,
		Label: start.Format("January 2006"),
	}
}

// RangeWindow builds an explicit inclusive [start, end] window.
func RangeWindow(start, end time.Time) Window {
	return Window{
		Start:        start,
		End:          end,
		Label:        start.Format(longDate) + " to " + end.Format(longDate),
		inclusiveEnd: true,
	}
}

// Contains reports whether d falls inside the window.
func (w Window) Contains(d time.Time) bool {
	if d.Before(w.Start) {
		return false
	}

	if w.inclusiveEnd {
		return !d.After(w.End)
	}

	return d.Before(w.End)
}

// After reports whether d lies strictly after the window's end. A customer
// with any such transaction is not dormant.
func (w Window) After(d time.Time) bool {
	return d.After(w.End)
}

// ParseTargetMonth parses a "YYYY-MM" month selector into its calendar
// window. Malformed input is recovered locally by falling back to the
// calendar month of now; the second return value reports whether the input
// parsed.
func ParseTargetMonth(target string, now time.Time) (Window, bool) {
	parts := strings.Split(strings.TrimSpace(target), "-")
	if len(parts) == 2 {
		year, errY := strconv.Atoi(parts[0])
		month, errM := strconv.Atoi(parts[1])
		if errY == nil && errM == nil && year > 0 && month >= 1 && month <= 12 {
			return MonthWindow(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)), true
		}
	}

	return MonthWindow(now.UTC()), false
}
