// Package scheduler arms and cancels wall-clock wake-ups for alarms. It
// computes the next trigger instant with alarmlib.NextTrigger and keeps at
// most one regular and one snooze registration per alarm id through the
// timer port. It owns no firing logic — fires flow from the timer runtime
// to the session manager.
package scheduler

import (
	"fmt"
	"time"

	"github.com/groupalarm/alarmd/internal/timer"
	"github.com/groupalarm/alarmd/pkg/alarmlib"
	"github.com/groupalarm/alarmd/pkg/logger"
)

// DefaultSnoozeAfter is how far out a snooze wake-up is armed.
const DefaultSnoozeAfter = 5 * time.Minute

type Scheduler struct {
	timers      timer.Port
	log         logger.Logger
	snoozeAfter time.Duration

	// Now is the clock; replaced in tests.
	Now func() time.Time
}

// New creates a scheduler over the given timer port. A non-positive
// snoozeAfter falls back to DefaultSnoozeAfter.
func New(timers timer.Port, l logger.Logger, snoozeAfter time.Duration) *Scheduler {
	if snoozeAfter <= 0 {
		snoozeAfter = DefaultSnoozeAfter
	}
	return &Scheduler{
		timers:      timers,
		log:         l,
		snoozeAfter: snoozeAfter,
		Now:         time.Now,
	}
}

// Schedule arms the regular wake-up for the alarm's next trigger instant,
// replacing any previous registration for the same alarm id. Disabled
// alarms are a no-op. A refused registration is logged and returned; the
// alarm stays unarmed and no other state changes.
func (s *Scheduler) Schedule(a *alarmlib.Alarm) error {
	if !a.Enabled {
		return nil
	}
	at := alarmlib.NextTrigger(a, s.Now())
	if err := s.timers.Arm(timer.RegularKey(a.ID), at); err != nil {
		s.log.Error("alarm %d: arm for %v refused: %v", a.ID, at, err)
		return fmt.Errorf("schedule alarm %d: %w", a.ID, err)
	}
	s.log.Info("alarm %d armed for %v", a.ID, at)
	return nil
}

// Cancel removes the regular registration for the alarm id. Idempotent;
// cancelling an unarmed alarm is not an error.
func (s *Scheduler) Cancel(alarmID int64) {
	if err := s.timers.Cancel(timer.RegularKey(alarmID)); err != nil {
		s.log.Error("alarm %d: cancel failed: %v", alarmID, err)
	}
}

// CancelSnooze removes a pending snooze registration, if any.
func (s *Scheduler) CancelSnooze(alarmID int64) {
	if err := s.timers.Cancel(timer.SnoozeKey(alarmID)); err != nil {
		s.log.Error("alarm %d: cancel snooze failed: %v", alarmID, err)
	}
}

// ScheduleSnooze arms a one-shot snooze wake-up at now + snoozeAfter. The
// snooze key namespace is distinct from the regular one, so a pending
// regular registration for the same alarm is untouched.
func (s *Scheduler) ScheduleSnooze(alarmID int64) error {
	at := s.Now().Add(s.snoozeAfter)
	if err := s.timers.Arm(timer.SnoozeKey(alarmID), at); err != nil {
		s.log.Error("alarm %d: arm snooze for %v refused: %v", alarmID, at, err)
		return fmt.Errorf("schedule snooze for alarm %d: %w", alarmID, err)
	}
	s.log.Info("alarm %d snoozed until %v", alarmID, at)
	return nil
}
