// Package alarmlib contains the core alarm domain model for GroupAlarm:
// alarm and group definitions, the weekday bitmask, next-trigger-time
// computation and the group-silence predicate. Everything in this package
// is pure computation — side effects (timers, storage, sound) live in the
// internal packages that consume it.
package alarmlib

import "fmt"

// Weekday bits for Alarm.DaysOfWeek. The layout is fixed and part of the
// persisted format: Monday is the lowest bit, Sunday the highest.
const (
	Monday    = 1 << iota // 1
	Tuesday               // 2
	Wednesday             // 4
	Thursday              // 8
	Friday                // 16
	Saturday              // 32
	Sunday                // 64

	// AllDays has every weekday bit set.
	AllDays = Monday | Tuesday | Wednesday | Thursday | Friday | Saturday | Sunday
)

// DayValues lists the weekday bits in Monday-first order.
var DayValues = []int{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Alarm is a single alarm definition. A zero DaysOfWeek means a one-time
// alarm; any set bits make it repeat weekly on those days.
type Alarm struct {
	ID         int64  `json:"id"`
	GroupID    int64  `json:"groupId"`
	Hour       int    `json:"hour"`
	Minute     int    `json:"minute"`
	DaysOfWeek int    `json:"daysOfWeek"`
	Enabled    bool   `json:"enabled"`
	SoundURI   string `json:"soundUri,omitempty"`
	Label      string `json:"label,omitempty"`
}

// Repeating reports whether the alarm fires on a weekly schedule.
func (a *Alarm) Repeating() bool {
	return a.DaysOfWeek != 0
}

// DayEnabled reports whether the given weekday bit is set.
func (a *Alarm) DayEnabled(day int) bool {
	return a.DaysOfWeek&day != 0
}

// TimeFormatted returns the alarm time as "HH:MM".
func (a *Alarm) TimeFormatted() string {
	return fmt.Sprintf("%02d:%02d", a.Hour, a.Minute)
}

// Validate checks that the alarm definition is well formed: time of day in
// range, only defined weekday bits set, and a group reference present.
func (a *Alarm) Validate() error {
	switch {
	case a.GroupID == 0:
		return fmt.Errorf("%w: missing group id", ErrInvalidAlarm)
	case a.Hour < 0 || a.Hour > 23:
		return fmt.Errorf("%w: hour %d out of range", ErrInvalidAlarm, a.Hour)
	case a.Minute < 0 || a.Minute > 59:
		return fmt.Errorf("%w: minute %d out of range", ErrInvalidAlarm, a.Minute)
	case a.DaysOfWeek&^AllDays != 0:
		return fmt.Errorf("%w: unknown weekday bits in %#x", ErrInvalidAlarm, a.DaysOfWeek)
	}
	return nil
}
