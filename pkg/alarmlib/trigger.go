package alarmlib

import "time"

// WeekdayBit maps a time.Weekday onto the alarm bitmask layout
// (Monday=1 .. Sunday=64).
func WeekdayBit(d time.Weekday) int {
	switch d {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// NextTrigger computes the next instant the alarm should fire, strictly
// after now, in now's location.
//
// One-time alarms fire today at HH:MM if that is still in the future,
// otherwise at the same wall-clock time tomorrow. Repeating alarms scan up
// to seven days forward for the first day whose weekday bit is set,
// skipping today's slot when it has already passed (or is exactly now).
// The comparison is on the full date-time, not time of day.
//
// The result depends on now's zone only; nothing is carried across calls,
// so a zone change between calls changes subsequent results.
func NextTrigger(a *Alarm, now time.Time) time.Time {
	y, m, d := now.Date()
	today := time.Date(y, m, d, a.Hour, a.Minute, 0, 0, now.Location())

	if !a.Repeating() {
		if today.After(now) {
			return today
		}
		return today.AddDate(0, 0, 1)
	}

	for offset := 0; offset <= 7; offset++ {
		candidate := today.AddDate(0, 0, offset)
		if offset == 0 && !candidate.After(now) {
			continue
		}
		if a.DayEnabled(WeekdayBit(candidate.Weekday())) {
			return candidate
		}
	}

	// Unreachable for a well-formed non-empty mask: a 7-day window
	// revisits every weekday. Fall back to tomorrow instead of failing.
	return today.AddDate(0, 0, 1)
}
