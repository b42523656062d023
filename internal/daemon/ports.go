package daemon

import (
	"github.com/groupalarm/alarmd/internal/session"
	"github.com/groupalarm/alarmd/pkg/audio"
	"github.com/groupalarm/alarmd/pkg/logger"
)

// logNotifier surfaces ringing alarms through the daemon log. Clients
// watching the /events feed render their own UI; the log entry is what a
// headless host shows.
type logNotifier struct {
	log logger.Logger
}

var _ session.NotificationPort = (*logNotifier)(nil)

func (n *logNotifier) Present(note session.Notification) error {
	n.log.Info("RINGING: %s (group %s), actions: %v", note.Title, note.Group, note.Actions)
	return nil
}

func (n *logNotifier) FullScreen(alarmID int64) error {
	// No full-screen surface on a headless host.
	return nil
}

func (n *logNotifier) Withdraw() {
	n.log.Info("ring notification withdrawn")
}

// logVibrator stands in for a vibration motor.
type logVibrator struct {
	log logger.Logger
}

var _ session.VibrationPort = (*logVibrator)(nil)

func (v *logVibrator) Start() error {
	v.log.Info("vibration pattern started")
	return nil
}

func (v *logVibrator) Stop() {
	v.log.Info("vibration stopped")
}

// soundPort adapts an audio.Player to the session sound contract.
type soundPort struct {
	player *audio.Player
}

var _ session.SoundPort = (*soundPort)(nil)

func (p *soundPort) Play(ref string) (session.SoundHandle, error) {
	h, err := p.player.Play(ref)
	if err != nil {
		return nil, err
	}
	return h, nil
}
