package alarmlib

import "time"

// DateLayout is the calendar-date form used for Group.SilencedDate.
const DateLayout = "2006-01-02"

// Group is a named collection of alarms. SilencedDate, when non-empty,
// suppresses ringing of member alarms on that one calendar date. A past
// date is simply stale — it is never cleaned up eagerly, just ignored.
type Group struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	SilencedDate string `json:"silencedDate,omitempty"`
}

// SilencedOn reports whether the group suppresses firing on the calendar
// day of t, in t's location. Pure; recomputed on every check so a stale
// silence naturally expires at midnight.
func (g *Group) SilencedOn(t time.Time) bool {
	return g.SilencedDate != "" && g.SilencedDate == t.Format(DateLayout)
}
