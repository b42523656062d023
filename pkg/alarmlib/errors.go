package alarmlib

import "errors"

var (
	ErrInvalidAlarm = errors.New("alarm definition is invalid")

	ErrAlarmNotFound = errors.New("alarm not found")
	ErrGroupNotFound = errors.New("alarm group not found")

	// ErrPermissionDenied is reported when the wall-clock wake-up
	// capability refuses a registration. Non-fatal: the alarm is simply
	// left unarmed.
	ErrPermissionDenied = errors.New("exact timer registration denied")
)
