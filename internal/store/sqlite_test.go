package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/groupalarm/alarmd/pkg/alarmlib"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "alarmd.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustCreateGroup(t *testing.T, s *SQLite, name string) int64 {
	t.Helper()
	id, err := s.CreateGroup(context.Background(), &alarmlib.Group{Name: name})
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	return id
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alarmd.db")
	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	mustCreateGroup(t, s1, "Work")
	if err := s1.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopening must not rerun migrations or lose data.
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s2.Close()
	n, err := s2.CountGroups(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("CountGroups = %d, %v; want 1, nil", n, err)
	}
}

func TestAlarmCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	gid := mustCreateGroup(t, s, "Work")

	a := &alarmlib.Alarm{
		GroupID:    gid,
		Hour:       7,
		Minute:     30,
		DaysOfWeek: alarmlib.Monday | alarmlib.Friday,
		Enabled:    true,
		Label:      "standup",
	}
	id, err := s.CreateAlarm(ctx, a)
	if err != nil {
		t.Fatalf("CreateAlarm: %v", err)
	}

	got, err := s.Alarm(ctx, id)
	if err != nil {
		t.Fatalf("Alarm: %v", err)
	}
	if got.Hour != 7 || got.Minute != 30 || got.Label != "standup" || !got.Enabled {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.DaysOfWeek != alarmlib.Monday|alarmlib.Friday {
		t.Errorf("DaysOfWeek = %d", got.DaysOfWeek)
	}

	got.Minute = 45
	if err := s.UpdateAlarm(ctx, got); err != nil {
		t.Fatalf("UpdateAlarm: %v", err)
	}
	if again, _ := s.Alarm(ctx, id); again.Minute != 45 {
		t.Errorf("Minute after update = %d, want 45", again.Minute)
	}

	if err := s.SetAlarmEnabled(ctx, id, false); err != nil {
		t.Fatalf("SetAlarmEnabled: %v", err)
	}
	enabled, err := s.EnabledAlarms(ctx)
	if err != nil {
		t.Fatalf("EnabledAlarms: %v", err)
	}
	if len(enabled) != 0 {
		t.Errorf("EnabledAlarms after disable = %d entries", len(enabled))
	}

	if err := s.DeleteAlarm(ctx, id); err != nil {
		t.Fatalf("DeleteAlarm: %v", err)
	}
	if _, err := s.Alarm(ctx, id); !errors.Is(err, alarmlib.ErrAlarmNotFound) {
		t.Errorf("Alarm after delete = %v, want ErrAlarmNotFound", err)
	}
	if err := s.DeleteAlarm(ctx, id); !errors.Is(err, alarmlib.ErrAlarmNotFound) {
		t.Errorf("second delete = %v, want ErrAlarmNotFound", err)
	}
}

func TestAlarmWithGroup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	gid := mustCreateGroup(t, s, "Home")
	id, err := s.CreateAlarm(ctx, &alarmlib.Alarm{GroupID: gid, Hour: 6, Enabled: true})
	if err != nil {
		t.Fatal(err)
	}

	a, g, err := s.AlarmWithGroup(ctx, id)
	if err != nil {
		t.Fatalf("AlarmWithGroup: %v", err)
	}
	if a.ID != id || g.ID != gid || g.Name != "Home" {
		t.Errorf("got alarm %+v group %+v", a, g)
	}

	if _, _, err := s.AlarmWithGroup(ctx, 9999); !errors.Is(err, alarmlib.ErrAlarmNotFound) {
		t.Errorf("missing alarm = %v, want ErrAlarmNotFound", err)
	}
}

func TestDeleteGroupCascades(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	gid := mustCreateGroup(t, s, "Doomed")
	id, err := s.CreateAlarm(ctx, &alarmlib.Alarm{GroupID: gid, Hour: 8, Enabled: true})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteGroup(ctx, gid); err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}
	if _, err := s.Alarm(ctx, id); !errors.Is(err, alarmlib.ErrAlarmNotFound) {
		t.Errorf("member alarm survived cascade: %v", err)
	}
}

func TestSilenceGroup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	gid := mustCreateGroup(t, s, "Work")

	today := time.Now().Format(alarmlib.DateLayout)
	if err := s.SilenceGroup(ctx, gid, today); err != nil {
		t.Fatalf("SilenceGroup: %v", err)
	}
	date, err := s.SilencedDate(ctx, gid)
	if err != nil || date != today {
		t.Fatalf("SilencedDate = %q, %v; want %q", date, err, today)
	}
	g, err := s.Group(ctx, gid)
	if err != nil || !g.SilencedOn(time.Now()) {
		t.Fatalf("group not silenced today: %+v, %v", g, err)
	}

	// Clearing stores NULL, read back as empty.
	if err := s.SilenceGroup(ctx, gid, ""); err != nil {
		t.Fatalf("unsilence: %v", err)
	}
	if date, _ := s.SilencedDate(ctx, gid); date != "" {
		t.Errorf("SilencedDate after clear = %q", date)
	}

	if err := s.SilenceGroup(ctx, 9999, today); !errors.Is(err, alarmlib.ErrGroupNotFound) {
		t.Errorf("missing group = %v, want ErrGroupNotFound", err)
	}
}

func TestEnsureDefaultGroup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.EnsureDefaultGroup(ctx, "General")
	if err != nil || id == 0 {
		t.Fatalf("EnsureDefaultGroup = %d, %v", id, err)
	}
	// Second call is a no-op.
	again, err := s.EnsureDefaultGroup(ctx, "General")
	if err != nil || again != 0 {
		t.Fatalf("second EnsureDefaultGroup = %d, %v; want 0, nil", again, err)
	}
	if n, _ := s.CountGroups(ctx); n != 1 {
		t.Errorf("CountGroups = %d, want 1", n)
	}
}

func TestSubscribeReceivesChanges(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sub := s.Subscribe()
	defer sub.Close()

	gid := mustCreateGroup(t, s, "Watched")

	select {
	case ch := <-sub.C():
		if ch.Table != "alarm_groups" || ch.Op != OpCreate || ch.ID != gid {
			t.Errorf("change = %+v", ch)
		}
	case <-time.After(time.Second):
		t.Fatal("no change delivered")
	}

	if err := s.SilenceGroup(ctx, gid, "2026-03-03"); err != nil {
		t.Fatal(err)
	}
	select {
	case ch := <-sub.C():
		if ch.Op != OpUpdate || ch.ID != gid {
			t.Errorf("change = %+v", ch)
		}
	case <-time.After(time.Second):
		t.Fatal("no update delivered")
	}
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	s := openTestStore(t)

	sub := s.Subscribe()
	// Never drain; overflow the buffer plus one.
	for i := 0; i <= subBufferSize; i++ {
		mustCreateGroup(t, s, "g")
	}

	// The channel must be closed once the buffer overflows.
	closed := false
	for i := 0; i < subBufferSize+1; i++ {
		if _, ok := <-sub.C(); !ok {
			closed = true
			break
		}
	}
	if !closed {
		t.Error("slow subscription was not dropped")
	}
}

func TestSharedReturnsSingleHandle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	s1, err := Shared(path)
	if err != nil {
		t.Fatalf("Shared: %v", err)
	}
	s2, err := Shared(filepath.Join(t.TempDir(), "other.db"))
	if err != nil {
		t.Fatalf("Shared (second): %v", err)
	}
	if s1 != s2 {
		t.Error("Shared returned two distinct handles")
	}
}
