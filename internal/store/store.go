// Package store is the durable repository of alarm and group records. The
// canonical implementation is SQLite-backed; the Store interface exists so
// session and scheduler logic can be tested against an in-memory fake.
package store

import (
	"context"

	"github.com/groupalarm/alarmd/pkg/alarmlib"
)

// Op classifies a change event.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change describes one mutation, published to subscribers so external UI
// layers can refresh without polling.
type Change struct {
	Table string `json:"table"` // "alarms" or "alarm_groups"
	Op    Op     `json:"op"`
	ID    int64  `json:"id"`
}

// Subscription is a live change feed.
//
// If the subscriber can't drain the channel fast enough, the store drops
// the subscription and closes the channel; the holder must re-subscribe.
type Subscription interface {
	C() <-chan Change
	Close() error
}

// Store is the alarm repository contract. Lookups for missing rows return
// alarmlib.ErrAlarmNotFound / alarmlib.ErrGroupNotFound.
type Store interface {
	Alarm(ctx context.Context, id int64) (*alarmlib.Alarm, error)
	AlarmWithGroup(ctx context.Context, id int64) (*alarmlib.Alarm, *alarmlib.Group, error)
	Alarms(ctx context.Context) ([]*alarmlib.Alarm, error)
	EnabledAlarms(ctx context.Context) ([]*alarmlib.Alarm, error)
	AlarmsInGroup(ctx context.Context, groupID int64) ([]*alarmlib.Alarm, error)
	CreateAlarm(ctx context.Context, a *alarmlib.Alarm) (int64, error)
	UpdateAlarm(ctx context.Context, a *alarmlib.Alarm) error
	DeleteAlarm(ctx context.Context, id int64) error
	SetAlarmEnabled(ctx context.Context, id int64, enabled bool) error

	Group(ctx context.Context, id int64) (*alarmlib.Group, error)
	Groups(ctx context.Context) ([]*alarmlib.Group, error)
	CreateGroup(ctx context.Context, g *alarmlib.Group) (int64, error)
	UpdateGroup(ctx context.Context, g *alarmlib.Group) error
	DeleteGroup(ctx context.Context, id int64) error
	CountGroups(ctx context.Context) (int, error)

	// SilenceGroup sets the group's silenced date; an empty date clears it.
	SilenceGroup(ctx context.Context, groupID int64, date string) error
	SilencedDate(ctx context.Context, groupID int64) (string, error)

	Subscribe() Subscription
	Close() error
}
