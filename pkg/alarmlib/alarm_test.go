package alarmlib_test

import (
	"errors"
	"testing"
	"time"

	"github.com/groupalarm/alarmd/pkg/alarmlib"
)

func TestAlarmValidate(t *testing.T) {
	tests := []struct {
		name    string
		alarm   alarmlib.Alarm
		wantErr bool
	}{{
		name:  "valid one-time",
		alarm: alarmlib.Alarm{GroupID: 1, Hour: 7, Minute: 30},
	}, {
		name:  "valid repeating",
		alarm: alarmlib.Alarm{GroupID: 1, Hour: 23, Minute: 59, DaysOfWeek: alarmlib.AllDays},
	}, {
		name:    "missing group",
		alarm:   alarmlib.Alarm{Hour: 7},
		wantErr: true,
	}, {
		name:    "hour out of range",
		alarm:   alarmlib.Alarm{GroupID: 1, Hour: 24},
		wantErr: true,
	}, {
		name:    "minute out of range",
		alarm:   alarmlib.Alarm{GroupID: 1, Minute: 60},
		wantErr: true,
	}, {
		name:    "undefined weekday bit",
		alarm:   alarmlib.Alarm{GroupID: 1, DaysOfWeek: 128},
		wantErr: true,
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.alarm.Validate()
			if tt.wantErr {
				if !errors.Is(err, alarmlib.ErrInvalidAlarm) {
					t.Errorf("Validate() = %v, want ErrInvalidAlarm", err)
				}
			} else if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestGroupSilencedOn(t *testing.T) {
	now := time.Date(2026, 3, 3, 8, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		date string
		want bool
	}{
		{"not silenced", "", false},
		{"silenced today", now.Format(alarmlib.DateLayout), true},
		{"stale yesterday", now.AddDate(0, 0, -1).Format(alarmlib.DateLayout), false},
		{"future date", now.AddDate(0, 0, 1).Format(alarmlib.DateLayout), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &alarmlib.Group{ID: 1, Name: "Work", SilencedDate: tt.date}
			if got := g.SilencedOn(now); got != tt.want {
				t.Errorf("SilencedOn = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeFormatted(t *testing.T) {
	a := &alarmlib.Alarm{Hour: 7, Minute: 5}
	if got := a.TimeFormatted(); got != "07:05" {
		t.Errorf("TimeFormatted = %q, want %q", got, "07:05")
	}
}
