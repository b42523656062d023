package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/groupalarm/alarmd/pkg/alarmlib"
)

const weekdayMask = alarmlib.Monday | alarmlib.Tuesday | alarmlib.Wednesday |
	alarmlib.Thursday | alarmlib.Friday

var dayNames = map[string]int{
	"mon": alarmlib.Monday,
	"tue": alarmlib.Tuesday,
	"wed": alarmlib.Wednesday,
	"thu": alarmlib.Thursday,
	"fri": alarmlib.Friday,
	"sat": alarmlib.Saturday,
	"sun": alarmlib.Sunday,
}

// dayOrder is the display order, Monday first.
var dayOrder = []struct {
	bit  int
	name string
}{
	{alarmlib.Monday, "Mon"},
	{alarmlib.Tuesday, "Tue"},
	{alarmlib.Wednesday, "Wed"},
	{alarmlib.Thursday, "Thu"},
	{alarmlib.Friday, "Fri"},
	{alarmlib.Saturday, "Sat"},
	{alarmlib.Sunday, "Sun"},
}

// parseDays turns a comma-separated day list, or one of the aliases
// daily, weekdays and weekend, into a day bitmask. Empty input means a
// one-time alarm.
func parseDays(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return 0, nil
	case "daily", "everyday":
		return alarmlib.AllDays, nil
	case "weekdays":
		return weekdayMask, nil
	case "weekend":
		return alarmlib.Saturday | alarmlib.Sunday, nil
	}

	mask := 0
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		bit, ok := dayNames[part]
		if !ok && len(part) > 3 {
			// Allow full names like "monday".
			bit, ok = dayNames[part[:3]]
		}
		if !ok {
			return 0, fmt.Errorf("unknown day %q", part)
		}
		mask |= bit
	}
	return mask, nil
}

// formatDays renders a day bitmask for display.
func formatDays(mask int) string {
	switch mask {
	case 0:
		return "once"
	case alarmlib.AllDays:
		return "daily"
	case weekdayMask:
		return "weekdays"
	}
	var names []string
	for _, d := range dayOrder {
		if mask&d.bit != 0 {
			names = append(names, d.name)
		}
	}
	return strings.Join(names, ",")
}

// parseClock parses an "HH:MM" argument.
func parseClock(s string) (hour, minute int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err == nil {
		minute, err = strconv.Atoi(parts[1])
	}
	if err != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	return hour, minute, nil
}
