// Package session owns the live ringing episode: the firing state machine
// that turns a timer fire into sound, vibration and an interactive
// notification, and resolves it on dismiss, snooze or group silence. At
// most one session is active at a time; a newer firing tears the previous
// one down (last-fired-wins, no queueing).
package session

// Action names one of the interactive choices exposed on a ringing alarm.
type Action string

const (
	ActionDismiss      Action = "dismiss"
	ActionSnooze       Action = "snooze"
	ActionSilenceGroup Action = "silence-group"
)

// Notification is the interactive alarm surface handed to the
// notification port: high priority, expected to bypass do-not-disturb.
type Notification struct {
	AlarmID int64
	Title   string
	Group   string
	Actions []Action
}

// NotificationPort presents and withdraws the alarm notification.
type NotificationPort interface {
	// Present shows the interactive notification. A failure here aborts
	// the session.
	Present(n Notification) error

	// FullScreen attempts to raise a full-screen interactive surface.
	// Best-effort; failures are logged and ignored.
	FullScreen(alarmID int64) error

	// Withdraw removes whatever Present put up. Idempotent.
	Withdraw()
}

// SoundHandle is a live looping playback.
type SoundHandle interface {
	Stop()
}

// SoundPort acquires a looping playback for a sound reference. The
// session tries references through a fallback chain and, if configured,
// retries them through a more tolerant secondary port before giving up
// and ringing silently.
type SoundPort interface {
	Play(ref string) (SoundHandle, error)
}

// VibrationPort drives the repeating vibration waveform.
type VibrationPort interface {
	Start() error
	Stop()
}
