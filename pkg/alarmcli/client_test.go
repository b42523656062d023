package alarmcli_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/groupalarm/alarmd/internal/scheduler"
	"github.com/groupalarm/alarmd/internal/server"
	"github.com/groupalarm/alarmd/internal/session"
	"github.com/groupalarm/alarmd/internal/store"
	"github.com/groupalarm/alarmd/internal/timer"
	"github.com/groupalarm/alarmd/pkg/alarmcli"
	"github.com/groupalarm/alarmd/pkg/alarmlib"
	"github.com/groupalarm/alarmd/pkg/logger"
)

type nullPort struct{}

func (nullPort) Arm(timer.Key, time.Time) error { return nil }
func (nullPort) Cancel(timer.Key) error         { return nil }

type nullNotifier struct{}

func (nullNotifier) Present(session.Notification) error { return nil }
func (nullNotifier) FullScreen(int64) error             { return nil }
func (nullNotifier) Withdraw()                          {}

type nullSound struct{}

func (nullSound) Play(string) (session.SoundHandle, error) { return nullHandle{}, nil }

type nullHandle struct{}

func (nullHandle) Stop() {}

type nullVibe struct{}

func (nullVibe) Start() error { return nil }
func (nullVibe) Stop()        {}

// startServer boots a real RPC server on a temp unix socket and returns
// a client connected to it.
func startServer(t *testing.T) *alarmcli.Client {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "alarmd.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	l := logger.NewNopLogger()
	sched := scheduler.New(nullPort{}, l, 0)
	sessions := session.NewManager(st, sched, nullNotifier{}, nullSound{}, nil,
		nullVibe{}, session.Config{}, session.Handlers{}, l)

	rpc := server.NewRPCServer(server.Deps{
		Store:    st,
		Sched:    sched,
		Sessions: sessions,
		Log:      l,
		Version:  "cli-test",
	})
	socketPath := filepath.Join(dir, "alarmd.sock")
	srv := server.New(socketPath, rpc, server.NewEventServer(st, l), l)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Start(ctx); err != nil {
			t.Errorf("server: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(socketPath); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("socket never appeared")
		}
		time.Sleep(20 * time.Millisecond)
	}
	return alarmcli.NewClient(socketPath)
}

func TestClientRoundTrip(t *testing.T) {
	c := startServer(t)
	ctx := context.Background()

	v, err := c.Version(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v.Version != "cli-test" {
		t.Errorf("version = %q", v.Version)
	}

	gid, err := c.AddGroup(ctx, "Workdays")
	if err != nil {
		t.Fatal(err)
	}

	id, err := c.AddAlarm(ctx, 6, 45, alarmlib.Monday|alarmlib.Friday, &alarmcli.AddAlarmOpts{
		GroupID: gid,
		Label:   "early shift",
	})
	if err != nil {
		t.Fatal(err)
	}

	alarms, err := c.Alarms(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(alarms) != 1 {
		t.Fatalf("len(alarms) = %d", len(alarms))
	}
	a := alarms[0]
	if a.ID != id || a.Time != "06:45" || a.Label != "early shift" || a.NextRing == "" {
		t.Errorf("alarm = %+v", a)
	}

	if err := c.SilenceGroup(ctx, gid); err != nil {
		t.Fatal(err)
	}
	groups, err := c.Groups(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 || groups[0].AlarmCount != 1 {
		t.Fatalf("groups = %+v", groups)
	}
	if want := time.Now().Format(alarmlib.DateLayout); groups[0].SilencedDate != want {
		t.Errorf("silencedDate = %q, want %q", groups[0].SilencedDate, want)
	}
	if err := c.UnsilenceGroup(ctx, gid); err != nil {
		t.Fatal(err)
	}

	if err := c.EnableAlarm(ctx, id, false); err != nil {
		t.Fatal(err)
	}
	alarms, err = c.Alarms(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if alarms[0].Enabled || alarms[0].NextRing != "" {
		t.Errorf("disabled alarm = %+v", alarms[0])
	}

	status, err := c.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if status.Ringing {
		t.Errorf("status = %+v", status)
	}

	if err := c.RemoveAlarm(ctx, id); err != nil {
		t.Fatal(err)
	}
}

func TestClientErrorMapping(t *testing.T) {
	c := startServer(t)
	ctx := context.Background()

	err := c.RemoveAlarm(ctx, 12345)
	var rpcErr *alarmcli.RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("err = %v, want *RPCError", err)
	}
	if rpcErr.Code != alarmcli.CodeAlarmNotFound {
		t.Errorf("code = %d, want %d", rpcErr.Code, alarmcli.CodeAlarmNotFound)
	}

	// Session actions are no-ops when nothing rings.
	if err := c.Dismiss(ctx, 1); err != nil {
		t.Errorf("dismiss while idle: %v", err)
	}
}

func TestClientWatch(t *testing.T) {
	c := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes, err := c.Watch(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// Let the feed's subscription register before mutating.
	time.Sleep(100 * time.Millisecond)

	gid, err := c.AddGroup(ctx, "Watched")
	if err != nil {
		t.Fatal(err)
	}

	select {
	case ch := <-changes:
		if ch.Table != "alarm_groups" || ch.Op != "create" || ch.ID != gid {
			t.Errorf("change = %+v", ch)
		}
	case <-ctx.Done():
		t.Fatal("no change received")
	}
}
