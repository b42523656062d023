// Package daemon wires the alarm components together and runs them: the
// sqlite store, the timer runtime, the scheduler, the session manager
// and the RPC server over the unix socket.
package daemon

import (
	"context"
	"fmt"

	"github.com/groupalarm/alarmd/internal/config"
	"github.com/groupalarm/alarmd/internal/scheduler"
	"github.com/groupalarm/alarmd/internal/server"
	"github.com/groupalarm/alarmd/internal/session"
	"github.com/groupalarm/alarmd/internal/store"
	"github.com/groupalarm/alarmd/internal/timer"
	"github.com/groupalarm/alarmd/pkg/audio"
	"github.com/groupalarm/alarmd/pkg/logger"
)

// Daemon is one configured daemon instance.
type Daemon struct {
	cfg *config.Config
	log logger.Logger

	// Version is reported over RPC.
	Version string
}

// New creates a daemon from a loaded configuration.
func New(cfg *config.Config, l logger.Logger, version string) *Daemon {
	return &Daemon{cfg: cfg, log: l, Version: version}
}

// Run starts everything and blocks until ctx is cancelled or RPC
// shutdown is requested. The boot sequence deliberately arms timers only
// after the session manager exists, so a fire during startup has
// somewhere to go.
func (d *Daemon) Run(ctx context.Context) error {
	st, err := store.Shared(d.cfg.Daemon.DatabasePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if d.cfg.Daemon.DefaultGroup != "" {
		id, err := st.EnsureDefaultGroup(ctx, d.cfg.Daemon.DefaultGroup)
		if err != nil {
			return fmt.Errorf("bootstrap default group: %w", err)
		}
		if id != 0 {
			d.log.Info("created default group %q (id %d)", d.cfg.Daemon.DefaultGroup, id)
		}
	}

	// The runtime needs a fire handler before the manager exists; the
	// indirection closes that loop.
	var mgr *session.Manager
	rt := timer.NewRuntime(d.log, func(f timer.Fire) { mgr.HandleFire(f) })
	sched := scheduler.New(rt, d.log, d.cfg.Ring.SnoozeAfter)

	mgr = session.NewManager(st, sched,
		&logNotifier{log: d.log},
		&soundPort{player: audio.NewPlayer(d.log)},
		&soundPort{player: audio.NewRawPlayer(d.log)},
		&logVibrator{log: d.log},
		session.Config{
			DefaultAlarmSound:        d.cfg.Ring.AlarmSound,
			DefaultNotificationSound: d.cfg.Ring.NotificationSound,
			MaxRing:                  d.cfg.Ring.MaxRing,
		},
		session.Handlers{}, d.log)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	rt.Run(runCtx)

	armed := scheduler.RecoverAll(ctx, st, sched, d.log)
	d.log.Info("boot recovery armed %d alarm(s)", armed)

	rpc := server.NewRPCServer(server.Deps{
		Store:    st,
		Sched:    sched,
		Sessions: mgr,
		Log:      d.log,
		Version:  d.Version,
		Shutdown: cancel,
	})
	events := server.NewEventServer(st, d.log)
	srv := server.New(d.cfg.Daemon.SocketPath, rpc, events, d.log)

	return srv.Start(runCtx)
}
