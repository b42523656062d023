package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/groupalarm/alarmd/internal/scheduler"
	"github.com/groupalarm/alarmd/internal/store"
	"github.com/groupalarm/alarmd/internal/timer"
	"github.com/groupalarm/alarmd/pkg/alarmlib"
	"github.com/groupalarm/alarmd/pkg/logger"
)

// State of the active session.
type State uint8

const (
	StateIdle State = iota
	StateStarting
	StateRinging
	StateResolved
)

// Outcome is the terminal result of a session.
type Outcome string

const (
	OutcomeDismissed Outcome = "dismissed"
	OutcomeSnoozed   Outcome = "snoozed"
	OutcomeSkipped   Outcome = "group-silenced"
	OutcomeAborted   Outcome = "aborted"
	// OutcomeReplaced marks a session torn down because a newer firing
	// arrived while it was still ringing (last-fired-wins).
	OutcomeReplaced Outcome = "replaced"
)

// DefaultMaxRing bounds how long vibration and sound run without a
// resolution event, so a lost dismiss cannot hold the resources forever.
const DefaultMaxRing = 10 * time.Minute

// Config carries the session manager's tunables.
type Config struct {
	// DefaultAlarmSound is tried when the alarm has no configured sound.
	DefaultAlarmSound string

	// DefaultNotificationSound is the last resort of the fallback chain.
	DefaultNotificationSound string

	// MaxRing is the hard auto-release bound; zero means DefaultMaxRing.
	MaxRing time.Duration
}

func (c Config) maxRing() time.Duration {
	if c.MaxRing <= 0 {
		return DefaultMaxRing
	}
	return c.MaxRing
}

// Handlers are optional observation hooks. OnResolve runs with the
// manager's lock held; it must not call back into the Manager.
type Handlers struct {
	OnResolve func(alarmID int64, outcome Outcome)
}

// session is one ringing episode and the resources it holds.
type session struct {
	id      string
	alarmID int64
	snooze  bool
	state   State

	sound     SoundHandle
	vibrating bool
	notified  bool
	ringTimer *time.Timer
}

// Manager is the firing state machine. All mutations of the current
// session go through one mutex (single-writer discipline), so concurrent
// fires, user actions and the auto-release timer cannot double-acquire or
// double-release the sound/vibration resources.
type Manager struct {
	store    store.Store
	sched    *scheduler.Scheduler
	notifier NotificationPort
	sound    SoundPort
	fallback SoundPort // tolerant secondary, may be nil
	vibe     VibrationPort
	cfg      Config
	handlers Handlers
	log      logger.Logger

	// Now is the clock; replaced in tests.
	Now func() time.Time

	mu  sync.Mutex
	cur *session
}

// NewManager wires the state machine to its collaborators. fallback may
// be nil to disable the secondary playback mechanism.
func NewManager(st store.Store, sched *scheduler.Scheduler, notifier NotificationPort,
	sound, fallback SoundPort, vibe VibrationPort, cfg Config, h Handlers, l logger.Logger) *Manager {
	return &Manager{
		store:    st,
		sched:    sched,
		notifier: notifier,
		sound:    sound,
		fallback: fallback,
		vibe:     vibe,
		cfg:      cfg,
		handlers: h,
		log:      l,
		Now:      time.Now,
	}
}

// Active reports the alarm id of the current session, if one is live.
func (m *Manager) Active() (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur == nil {
		return 0, false
	}
	return m.cur.alarmID, true
}

// HandleFire is the timer fire entry point. Duplicate fires for the same
// key are not errors: each one is a fresh Starting transition, subject to
// the single-active-session teardown.
func (m *Manager) HandleFire(f timer.Fire) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur != nil {
		m.log.Info("alarm %d fired while alarm %d was active, replacing session", f.Key.AlarmID, m.cur.alarmID)
		m.releaseLocked(m.cur, OutcomeReplaced)
	}

	s := &session{
		id:      uuid.NewString(),
		alarmID: f.Key.AlarmID,
		snooze:  f.Key.Kind == timer.Snooze,
		state:   StateStarting,
	}
	m.cur = s

	ctx := context.Background()
	alarm, group, err := m.store.AlarmWithGroup(ctx, s.alarmID)
	if err != nil {
		m.log.Error("alarm %d: fire aborted: %v", s.alarmID, err)
		m.releaseLocked(s, OutcomeAborted)
		return
	}
	if !alarm.Enabled && !s.snooze {
		m.log.Info("alarm %d disabled since arming, skipping", s.alarmID)
		m.releaseLocked(s, OutcomeAborted)
		return
	}

	if !s.snooze && group.SilencedOn(m.Now()) {
		m.log.Info("group %q silenced today, suppressing alarm %d", group.Name, alarm.ID)
		if alarm.Repeating() {
			// Re-arm before exiting so tomorrow's occurrence still
			// fires; errors are logged by the scheduler.
			m.sched.Schedule(alarm)
		}
		m.releaseLocked(s, OutcomeSkipped)
		return
	}

	// Vibration is fire-and-forget: its failure never blocks the rest.
	if err := m.vibe.Start(); err != nil {
		m.log.Error("alarm %d: start vibration: %v", alarm.ID, err)
	} else {
		s.vibrating = true
	}
	s.ringTimer = time.AfterFunc(m.cfg.maxRing(), func() { m.autoRelease(s.id) })

	s.sound = m.acquireSound(alarm)

	n := Notification{
		AlarmID: alarm.ID,
		Title:   alarmTitle(alarm),
		Group:   group.Name,
		Actions: []Action{ActionDismiss, ActionSnooze, ActionSilenceGroup},
	}
	if err := m.notifier.Present(n); err != nil {
		m.log.Error("alarm %d: present notification: %v", alarm.ID, err)
		m.releaseLocked(s, OutcomeAborted)
		return
	}
	s.notified = true
	if err := m.notifier.FullScreen(alarm.ID); err != nil {
		m.log.Warning("alarm %d: full-screen surface: %v", alarm.ID, err)
	}

	// Re-arm repeating alarms now, not at resolution: a dismissal that
	// never arrives must not block future occurrences. Snooze firings
	// leave the regular schedule alone — it was already re-armed when
	// the original firing rang.
	if alarm.Repeating() && !s.snooze {
		m.sched.Schedule(alarm)
	}

	s.state = StateRinging
	m.log.Info("alarm %d ringing, session %s", alarm.ID, s.id)
}

// Dismiss resolves the ringing session for alarmID. A second call, or a
// call for an alarm that is not ringing, is a no-op.
func (m *Manager) Dismiss(alarmID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.activeLocked(alarmID)
	if s == nil {
		return
	}
	m.releaseLocked(s, OutcomeDismissed)
}

// Snooze resolves the session and arms a snooze wake-up. The regular
// schedule, if any, is untouched.
func (m *Manager) Snooze(alarmID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.activeLocked(alarmID)
	if s == nil {
		return
	}
	m.releaseLocked(s, OutcomeSnoozed)
	if err := m.sched.ScheduleSnooze(alarmID); err != nil {
		m.log.Error("alarm %d: schedule snooze: %v", alarmID, err)
	}
}

// SilenceGroup marks the alarm's group silenced for today and resolves
// the session. It does not cancel a future re-arm already made on entry
// to Ringing: tomorrow's occurrence rings unless tomorrow is also
// silenced at fire time.
func (m *Manager) SilenceGroup(alarmID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.activeLocked(alarmID)
	if s == nil {
		return
	}

	ctx := context.Background()
	if alarm, err := m.store.Alarm(ctx, alarmID); err != nil {
		m.log.Error("alarm %d: silence group lookup: %v", alarmID, err)
	} else {
		date := m.Now().Format(alarmlib.DateLayout)
		if err := m.store.SilenceGroup(ctx, alarm.GroupID, date); err != nil {
			m.log.Error("alarm %d: silence group %d: %v", alarmID, alarm.GroupID, err)
		}
	}
	m.releaseLocked(s, OutcomeSkipped)
}

// activeLocked returns the current session iff it belongs to alarmID and
// is not already resolved.
func (m *Manager) activeLocked(alarmID int64) *session {
	s := m.cur
	if s == nil || s.alarmID != alarmID {
		return nil
	}
	if s.state != StateStarting && s.state != StateRinging {
		return nil
	}
	return s
}

// releaseLocked releases every resource the session holds, exactly once,
// and records the outcome. Caller holds m.mu.
func (m *Manager) releaseLocked(s *session, outcome Outcome) {
	if s.state == StateResolved {
		return
	}
	s.state = StateResolved

	if s.ringTimer != nil {
		s.ringTimer.Stop()
	}
	if s.sound != nil {
		s.sound.Stop()
		s.sound = nil
	}
	if s.vibrating {
		m.vibe.Stop()
		s.vibrating = false
	}
	if s.notified {
		m.notifier.Withdraw()
		s.notified = false
	}
	if m.cur == s {
		m.cur = nil
	}

	m.log.Info("alarm %d session %s resolved: %s", s.alarmID, s.id, outcome)
	if m.handlers.OnResolve != nil {
		m.handlers.OnResolve(s.alarmID, outcome)
	}
}

// autoRelease is the hard upper bound on vibration and sound. It fires
// from the ring timer when no resolution event arrived in time; the
// notification stays up so the user can still resolve the session.
func (m *Manager) autoRelease(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.cur
	if s == nil || s.id != sessionID || s.state != StateRinging {
		return
	}
	m.log.Warning("alarm %d: ring timeout, releasing sound and vibration", s.alarmID)
	if s.sound != nil {
		s.sound.Stop()
		s.sound = nil
	}
	if s.vibrating {
		m.vibe.Stop()
		s.vibrating = false
	}
}

// acquireSound walks the fallback chain: the alarm's configured sound if
// set, then the default alarm sound, then the default notification sound.
// Each candidate is tried on the primary port first; if none succeeds and
// a tolerant secondary port is configured, the same candidates are
// retried there. Total failure returns nil — the alarm rings silently
// rather than aborting (vibration and notification still happen).
func (m *Manager) acquireSound(alarm *alarmlib.Alarm) SoundHandle {
	var candidates []string
	if alarm.SoundURI != "" {
		candidates = append(candidates, alarm.SoundURI)
	}
	if m.cfg.DefaultAlarmSound != "" {
		candidates = append(candidates, m.cfg.DefaultAlarmSound)
	}
	if m.cfg.DefaultNotificationSound != "" {
		candidates = append(candidates, m.cfg.DefaultNotificationSound)
	}

	for _, ref := range candidates {
		h, err := m.sound.Play(ref)
		if err == nil {
			return h
		}
		m.log.Warning("alarm %d: play %q: %v", alarm.ID, ref, err)
	}
	if m.fallback != nil {
		for _, ref := range candidates {
			h, err := m.fallback.Play(ref)
			if err == nil {
				m.log.Info("alarm %d: playing %q via fallback mechanism", alarm.ID, ref)
				return h
			}
			m.log.Warning("alarm %d: fallback play %q: %v", alarm.ID, ref, err)
		}
	}
	m.log.Warning("alarm %d: no sound candidate playable, ringing silently", alarm.ID)
	return nil
}

func alarmTitle(a *alarmlib.Alarm) string {
	if a.Label != "" {
		return a.Label
	}
	return "Alarm " + a.TimeFormatted()
}
