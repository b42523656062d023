package cmd

const DESCRIPTION = `
alarmctl manages the alarm daemon: create alarms and alarm groups,
enable or disable them, silence a whole group for the day and resolve
a ringing alarm with dismiss or snooze.
`

const (
	AddDescription = `The add command creates a new alarm. TIME is HH:MM in the
daemon's local time zone; without --days the alarm rings once, at the
next occurrence of that time.

Examples:
        alarmctl add 07:30 --days mon,tue,wed,thu,fri --label "work"
        alarmctl add 06:00 --days daily --group 2
        alarmctl add 14:45

`
	ListDescription = `The list command displays every alarm with its id, time,
repeat days, group and the instant it rings next.

Example:
        alarmctl list

`
	GroupsDescription = `The groups command displays every alarm group, how many
alarms it holds and whether it is silenced today.

Example:
        alarmctl groups

`
	SilenceDescription = `The silence command suppresses every alarm of a group
for the rest of today. Repeating alarms resume tomorrow on their own;
use unsilence to lift the suppression early.

Example:
        alarmctl silence 2

`
	WatchDescription = `The watch command streams alarm and group changes from
the daemon until interrupted.

Example:
        alarmctl watch

`
)
