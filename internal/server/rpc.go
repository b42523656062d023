package server

import (
	"context"
	"errors"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/groupalarm/alarmd/internal/scheduler"
	"github.com/groupalarm/alarmd/internal/session"
	"github.com/groupalarm/alarmd/internal/store"
	"github.com/groupalarm/alarmd/pkg/alarmlib"
	"github.com/groupalarm/alarmd/pkg/logger"
)

// Custom JSON-RPC error codes for alarm operations.
const (
	codeAlarmNotFound   = jrpc2.Code(-32001)
	codeGroupNotFound   = jrpc2.Code(-32002)
	codeInvalidParams   = jrpc2.Code(-32602)
	codeInternalFailure = jrpc2.Code(-32603)
)

// Deps are the daemon components the RPC surface drives.
type Deps struct {
	Store    store.Store
	Sched    *scheduler.Scheduler
	Sessions *session.Manager
	Log      logger.Logger

	// Version reported by system.getVersion.
	Version string

	// Shutdown asks the daemon to stop; invoked by system.shutdown.
	Shutdown func()
}

// RPCServer exposes the alarm daemon over JSON-RPC 2.0 via an HTTP
// bridge mounted by Server.
type RPCServer struct {
	bridge jhttp.Bridge
	deps   Deps
}

// VersionResult is the response for system.getVersion.
type VersionResult struct {
	Version string `json:"version"`
}

// RecoverResult is the response for system.recover.
type RecoverResult struct {
	Armed int `json:"armed"`
}

// AlarmParams is the input for alarm.add and alarm.update.
type AlarmParams struct {
	ID         int64  `json:"id,omitempty"` // required for alarm.update
	GroupID    int64  `json:"groupId,omitempty"`
	Hour       int    `json:"hour"`
	Minute     int    `json:"minute"`
	DaysOfWeek int    `json:"daysOfWeek"`
	Enabled    *bool  `json:"enabled,omitempty"` // default true on add
	SoundURI   string `json:"soundUri,omitempty"`
	Label      string `json:"label,omitempty"`
}

// IDParam is a common input with just an alarm or group id.
type IDParam struct {
	ID int64 `json:"id"`
}

// EnableParams is the input for alarm.enable.
type EnableParams struct {
	ID      int64 `json:"id"`
	Enabled bool  `json:"enabled"`
}

// AlarmItem is a single entry in the alarm.list response.
type AlarmItem struct {
	ID         int64  `json:"id"`
	GroupID    int64  `json:"groupId"`
	Time       string `json:"time"`
	DaysOfWeek int    `json:"daysOfWeek"`
	Enabled    bool   `json:"enabled"`
	SoundURI   string `json:"soundUri,omitempty"`
	Label      string `json:"label,omitempty"`
	NextRing   string `json:"nextRing,omitempty"` // RFC 3339, enabled alarms only
}

// AlarmListResult is the response for alarm.list.
type AlarmListResult struct {
	Alarms []*AlarmItem `json:"alarms"`
}

// AddResult is the response for alarm.add and group.add.
type AddResult struct {
	ID int64 `json:"id"`
}

// GroupParams is the input for group.add.
type GroupParams struct {
	Name string `json:"name"`
}

// GroupItem is a single entry in the group.list response.
type GroupItem struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	SilencedDate string `json:"silencedDate,omitempty"`
	AlarmCount   int    `json:"alarmCount"`
}

// GroupListResult is the response for group.list.
type GroupListResult struct {
	Groups []*GroupItem `json:"groups"`
}

// SessionStatusResult is the response for session.status.
type SessionStatusResult struct {
	Ringing bool  `json:"ringing"`
	AlarmID int64 `json:"alarmId,omitempty"`
}

// EmptyResult is a placeholder for methods that return no data.
type EmptyResult struct{}

// NewRPCServer creates an RPCServer with all method handlers registered.
func NewRPCServer(deps Deps) *RPCServer {
	rs := &RPCServer{deps: deps}

	methods := handler.Map{
		"system.getVersion": handler.New(rs.systemGetVersion),
		"system.recover":    handler.New(rs.systemRecover),
		"system.shutdown":   handler.New(rs.systemShutdown),

		"alarm.add":    handler.New(rs.alarmAdd),
		"alarm.update": handler.New(rs.alarmUpdate),
		"alarm.remove": handler.New(rs.alarmRemove),
		"alarm.enable": handler.New(rs.alarmEnable),
		"alarm.list":   handler.New(rs.alarmList),

		"group.add":       handler.New(rs.groupAdd),
		"group.remove":    handler.New(rs.groupRemove),
		"group.list":      handler.New(rs.groupList),
		"group.silence":   handler.New(rs.groupSilence),
		"group.unsilence": handler.New(rs.groupUnsilence),

		"session.status":       handler.New(rs.sessionStatus),
		"session.dismiss":      handler.New(rs.sessionDismiss),
		"session.snooze":       handler.New(rs.sessionSnooze),
		"session.silenceGroup": handler.New(rs.sessionSilenceGroup),
	}

	rs.bridge = jhttp.NewBridge(methods, nil)
	return rs
}

func (rs *RPCServer) systemGetVersion(_ context.Context) (*VersionResult, error) {
	return &VersionResult{Version: rs.deps.Version}, nil
}

// systemRecover re-arms every enabled alarm from the database, the same
// pass the daemon runs at boot.
func (rs *RPCServer) systemRecover(ctx context.Context) (*RecoverResult, error) {
	n := scheduler.RecoverAll(ctx, rs.deps.Store, rs.deps.Sched, rs.deps.Log)
	return &RecoverResult{Armed: n}, nil
}

func (rs *RPCServer) systemShutdown(_ context.Context) (*EmptyResult, error) {
	if rs.deps.Shutdown != nil {
		// Let the response flush before the listener goes away.
		go rs.deps.Shutdown()
	}
	return &EmptyResult{}, nil
}

func (rs *RPCServer) alarmAdd(ctx context.Context, p *AlarmParams) (*AddResult, error) {
	a := &alarmlib.Alarm{
		GroupID:    p.GroupID,
		Hour:       p.Hour,
		Minute:     p.Minute,
		DaysOfWeek: p.DaysOfWeek,
		Enabled:    true,
		SoundURI:   p.SoundURI,
		Label:      p.Label,
	}
	if p.Enabled != nil {
		a.Enabled = *p.Enabled
	}
	if err := a.Validate(); err != nil {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: err.Error()}
	}
	if a.GroupID != 0 {
		if _, err := rs.deps.Store.Group(ctx, a.GroupID); err != nil {
			return nil, storeError(err)
		}
	}

	id, err := rs.deps.Store.CreateAlarm(ctx, a)
	if err != nil {
		return nil, storeError(err)
	}
	a.ID = id
	if err := rs.deps.Sched.Schedule(a); err != nil {
		return nil, &jrpc2.Error{Code: codeInternalFailure, Message: err.Error()}
	}
	return &AddResult{ID: id}, nil
}

func (rs *RPCServer) alarmUpdate(ctx context.Context, p *AlarmParams) (*EmptyResult, error) {
	if p.ID == 0 {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: id"}
	}
	cur, err := rs.deps.Store.Alarm(ctx, p.ID)
	if err != nil {
		return nil, storeError(err)
	}

	a := &alarmlib.Alarm{
		ID:         p.ID,
		GroupID:    cur.GroupID,
		Hour:       p.Hour,
		Minute:     p.Minute,
		DaysOfWeek: p.DaysOfWeek,
		Enabled:    cur.Enabled,
		SoundURI:   p.SoundURI,
		Label:      p.Label,
	}
	if p.GroupID != 0 {
		a.GroupID = p.GroupID
	}
	if p.Enabled != nil {
		a.Enabled = *p.Enabled
	}
	if err := a.Validate(); err != nil {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: err.Error()}
	}
	if a.GroupID != cur.GroupID {
		if _, err := rs.deps.Store.Group(ctx, a.GroupID); err != nil {
			return nil, storeError(err)
		}
	}
	if err := rs.deps.Store.UpdateAlarm(ctx, a); err != nil {
		return nil, storeError(err)
	}

	// The old registrations describe the old time; replace or drop them.
	rs.deps.Sched.Cancel(a.ID)
	rs.deps.Sched.CancelSnooze(a.ID)
	if a.Enabled {
		if err := rs.deps.Sched.Schedule(a); err != nil {
			return nil, &jrpc2.Error{Code: codeInternalFailure, Message: err.Error()}
		}
	}
	return &EmptyResult{}, nil
}

func (rs *RPCServer) alarmRemove(ctx context.Context, p *IDParam) (*EmptyResult, error) {
	if err := rs.deps.Store.DeleteAlarm(ctx, p.ID); err != nil {
		return nil, storeError(err)
	}
	rs.deps.Sched.Cancel(p.ID)
	rs.deps.Sched.CancelSnooze(p.ID)
	// If it is ringing right now, stop it too.
	rs.deps.Sessions.Dismiss(p.ID)
	return &EmptyResult{}, nil
}

func (rs *RPCServer) alarmEnable(ctx context.Context, p *EnableParams) (*EmptyResult, error) {
	if err := rs.deps.Store.SetAlarmEnabled(ctx, p.ID, p.Enabled); err != nil {
		return nil, storeError(err)
	}
	if p.Enabled {
		a, err := rs.deps.Store.Alarm(ctx, p.ID)
		if err != nil {
			return nil, storeError(err)
		}
		if err := rs.deps.Sched.Schedule(a); err != nil {
			return nil, &jrpc2.Error{Code: codeInternalFailure, Message: err.Error()}
		}
	} else {
		rs.deps.Sched.Cancel(p.ID)
		rs.deps.Sched.CancelSnooze(p.ID)
	}
	return &EmptyResult{}, nil
}

func (rs *RPCServer) alarmList(ctx context.Context) (*AlarmListResult, error) {
	alarms, err := rs.deps.Store.Alarms(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	now := time.Now()
	items := make([]*AlarmItem, 0, len(alarms))
	for _, a := range alarms {
		item := &AlarmItem{
			ID:         a.ID,
			GroupID:    a.GroupID,
			Time:       a.TimeFormatted(),
			DaysOfWeek: a.DaysOfWeek,
			Enabled:    a.Enabled,
			SoundURI:   a.SoundURI,
			Label:      a.Label,
		}
		if a.Enabled {
			item.NextRing = alarmlib.NextTrigger(a, now).Format(time.RFC3339)
		}
		items = append(items, item)
	}
	return &AlarmListResult{Alarms: items}, nil
}

func (rs *RPCServer) groupAdd(ctx context.Context, p *GroupParams) (*AddResult, error) {
	if p.Name == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: name"}
	}
	id, err := rs.deps.Store.CreateGroup(ctx, &alarmlib.Group{Name: p.Name})
	if err != nil {
		return nil, storeError(err)
	}
	return &AddResult{ID: id}, nil
}

// groupRemove deletes a group and, through the cascade, its alarms. The
// alarms' timers are cancelled first so nothing fires for a deleted row.
func (rs *RPCServer) groupRemove(ctx context.Context, p *IDParam) (*EmptyResult, error) {
	alarms, err := rs.deps.Store.AlarmsInGroup(ctx, p.ID)
	if err != nil {
		return nil, storeError(err)
	}
	for _, a := range alarms {
		rs.deps.Sched.Cancel(a.ID)
		rs.deps.Sched.CancelSnooze(a.ID)
		rs.deps.Sessions.Dismiss(a.ID)
	}
	if err := rs.deps.Store.DeleteGroup(ctx, p.ID); err != nil {
		return nil, storeError(err)
	}
	return &EmptyResult{}, nil
}

func (rs *RPCServer) groupList(ctx context.Context) (*GroupListResult, error) {
	groups, err := rs.deps.Store.Groups(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	items := make([]*GroupItem, 0, len(groups))
	for _, g := range groups {
		alarms, err := rs.deps.Store.AlarmsInGroup(ctx, g.ID)
		if err != nil {
			return nil, storeError(err)
		}
		items = append(items, &GroupItem{
			ID:           g.ID,
			Name:         g.Name,
			SilencedDate: g.SilencedDate,
			AlarmCount:   len(alarms),
		})
	}
	return &GroupListResult{Groups: items}, nil
}

func (rs *RPCServer) groupSilence(ctx context.Context, p *IDParam) (*EmptyResult, error) {
	date := time.Now().Format(alarmlib.DateLayout)
	if err := rs.deps.Store.SilenceGroup(ctx, p.ID, date); err != nil {
		return nil, storeError(err)
	}
	return &EmptyResult{}, nil
}

func (rs *RPCServer) groupUnsilence(ctx context.Context, p *IDParam) (*EmptyResult, error) {
	if err := rs.deps.Store.SilenceGroup(ctx, p.ID, ""); err != nil {
		return nil, storeError(err)
	}
	return &EmptyResult{}, nil
}

func (rs *RPCServer) sessionStatus(_ context.Context) (*SessionStatusResult, error) {
	id, ok := rs.deps.Sessions.Active()
	return &SessionStatusResult{Ringing: ok, AlarmID: id}, nil
}

// Session actions succeed even when nothing is ringing: a second dismiss,
// or one racing the ring timeout, is a no-op rather than an error. Clients
// that care call session.status first.

func (rs *RPCServer) sessionDismiss(_ context.Context, p *IDParam) (*EmptyResult, error) {
	rs.deps.Sessions.Dismiss(p.ID)
	return &EmptyResult{}, nil
}

func (rs *RPCServer) sessionSnooze(_ context.Context, p *IDParam) (*EmptyResult, error) {
	rs.deps.Sessions.Snooze(p.ID)
	return &EmptyResult{}, nil
}

func (rs *RPCServer) sessionSilenceGroup(_ context.Context, p *IDParam) (*EmptyResult, error) {
	rs.deps.Sessions.SilenceGroup(p.ID)
	return &EmptyResult{}, nil
}

// storeError maps repository sentinel errors to JSON-RPC codes.
func storeError(err error) error {
	switch {
	case errors.Is(err, alarmlib.ErrAlarmNotFound):
		return &jrpc2.Error{Code: codeAlarmNotFound, Message: "alarm not found"}
	case errors.Is(err, alarmlib.ErrGroupNotFound):
		return &jrpc2.Error{Code: codeGroupNotFound, Message: "group not found"}
	default:
		return &jrpc2.Error{Code: codeInternalFailure, Message: err.Error()}
	}
}

// Close shuts down the jrpc2 bridge, releasing internal goroutines.
func (rs *RPCServer) Close() {
	rs.bridge.Close()
}
