package filter

import "time"

// DefaultDateWindow returns the date range used when the URL carries no
// start or end date: tomorrow through tomorrow plus three days, relative
// to the supplied clock.
func DefaultDateWindow(now time.Time) (start, end time.Time) {
	start = truncateDay(now).AddDate(0, 0, 1)
	end = start.AddDate(0, 0, 3)
	return start, end
}

// CanSelectStart reports whether a calendar date may be chosen as the
// check-in date. Dates before today are unselectable.
func CanSelectStart(candidate, today time.Time) bool {
	return !truncateDay(candidate).Before(truncateDay(today))
}

// CanSelectEnd reports whether a calendar date may be chosen as the
// check-out date. Dates earlier than the chosen start date — or earlier
// than today when no start date is chosen — are unselectable. An invalid
// end date is rejected here, never silently swapped with the start date.
func CanSelectEnd(candidate, start, today time.Time) bool {
	floor := truncateDay(today)
	if !start.IsZero() {
		floor = truncateDay(start)
	}
	return !truncateDay(candidate).Before(floor)
}

// SelectStart applies a new start date to p and reports whether the
// check-out picker should be opened as a prompt: that happens when the new
// start date has moved past the currently chosen end date. The invalid end
// date is left in place for the user to correct.
func SelectStart(p *Params, date time.Time) (promptEnd bool) {
	p.StartDate = truncateDay(date)
	return !p.EndDate.IsZero() && p.StartDate.After(p.EndDate)
}

// SelectEnd applies a new end date to p if it is selectable, reporting
// whether the selection was accepted.
func SelectEnd(p *Params, date, today time.Time) bool {
	if !CanSelectEnd(date, p.StartDate, today) {
		return false
	}
	p.EndDate = truncateDay(date)
	return true
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
