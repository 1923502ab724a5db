package wargame

import "time"

// DateLayout is the ISO form used for all clock dates.
const DateLayout = "2006-01-02"

// DayOfWeek maps a calendar date to the game's day encoding:
// Monday=1 ... Saturday=6, Sunday=7.
func DayOfWeek(t time.Time) int {
	wd := int(t.Weekday()) // time.Weekday has Sunday=0
	if wd == 0 {
		return 7
	}
	return wd
}

// NextDate returns the ISO date one calendar day after the given one.
// Clock dates are generated by the clock itself, so input is assumed
// parseable; a malformed date degrades to the zero date's successor.
func NextDate(iso string) string {
	return parseDate(iso).AddDate(0, 0, 1).Format(DateLayout)
}

// DaysBetween returns the whole-day difference between two clock states.
// Returns 0 if either state is still in a planning phase (dates are not
// meaningful there). The result is negative when `to` precedes `from`;
// callers rely on that to mean "not yet reached".
func DaysBetween(from, to TurnState) int {
	if from.Phase != PhaseTurn || to.Phase != PhaseTurn {
		return 0
	}
	f := parseDate(from.CurrentDate)
	t := parseDate(to.CurrentDate)
	return int(t.Sub(f).Hours() / 24)
}

func parseDate(iso string) time.Time {
	t, _ := time.Parse(DateLayout, iso)
	return t
}
