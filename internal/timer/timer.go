// Package timer provides the wall-clock wake-up capability consumed by the
// alarm scheduler: registrations keyed by alarm id, with separate regular
// and snooze namespaces, delivered at-least-once to a fire handler.
//
// Runtime is the in-process implementation: a single goroutine over a
// min-heap of registrations, sleeping until the earliest one with a
// max-sleep cap so NTP steps, DST transitions and system sleep cannot park
// it past a due alarm.
package timer

import (
	"fmt"
	"time"
)

// Kind separates the registration namespaces per alarm id. A snooze
// registration never replaces or cancels a regular one, and vice versa.
type Kind uint8

const (
	Regular Kind = iota
	Snooze
)

func (k Kind) String() string {
	if k == Snooze {
		return "snooze"
	}
	return "regular"
}

// Key identifies one registration: at most one per (Kind, AlarmID) pair
// exists at a time.
type Key struct {
	Kind    Kind
	AlarmID int64
}

func RegularKey(alarmID int64) Key { return Key{Regular, alarmID} }
func SnoozeKey(alarmID int64) Key  { return Key{Snooze, alarmID} }

func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Kind, k.AlarmID)
}

// Fire is delivered to the handler when a registration comes due. Delivery
// is at-least-once; consumers must tolerate duplicates for the same key.
type Fire struct {
	Key Key
	At  time.Time // the instant the registration asked for
}

// Handler receives fires. Called from the runtime goroutine, one at a time.
type Handler func(Fire)

// Port is the wake-up registration capability. Arm replaces any existing
// registration under the same key. Cancel of an unknown key is a no-op.
// Implementations backed by an OS scheduling facility may refuse Arm
// (alarmlib.ErrPermissionDenied); the in-process Runtime never does.
type Port interface {
	Arm(key Key, at time.Time) error
	Cancel(key Key) error
}
