package alarmcli

import "context"

// Version is the response of Version.
type Version struct {
	Version string `json:"version"`
}

// Alarm is one alarm as reported by List.
type Alarm struct {
	ID         int64  `json:"id"`
	GroupID    int64  `json:"groupId"`
	Time       string `json:"time"`
	DaysOfWeek int    `json:"daysOfWeek"`
	Enabled    bool   `json:"enabled"`
	SoundURI   string `json:"soundUri,omitempty"`
	Label      string `json:"label,omitempty"`
	NextRing   string `json:"nextRing,omitempty"`
}

// Group is one alarm group as reported by Groups.
type Group struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	SilencedDate string `json:"silencedDate,omitempty"`
	AlarmCount   int    `json:"alarmCount"`
}

// SessionStatus reports whether an alarm is ringing right now.
type SessionStatus struct {
	Ringing bool  `json:"ringing"`
	AlarmID int64 `json:"alarmId,omitempty"`
}

// AddAlarmOpts are the optional fields of AddAlarm.
type AddAlarmOpts struct {
	GroupID  int64  `json:"groupId,omitempty"`
	SoundURI string `json:"soundUri,omitempty"`
	Label    string `json:"label,omitempty"`
	Disabled bool   `json:"-"`
}

type alarmParams struct {
	ID         int64  `json:"id,omitempty"`
	GroupID    int64  `json:"groupId,omitempty"`
	Hour       int    `json:"hour"`
	Minute     int    `json:"minute"`
	DaysOfWeek int    `json:"daysOfWeek"`
	Enabled    *bool  `json:"enabled,omitempty"`
	SoundURI   string `json:"soundUri,omitempty"`
	Label      string `json:"label,omitempty"`
}

type idParam struct {
	ID int64 `json:"id"`
}

type addResult struct {
	ID int64 `json:"id"`
}

func (c *Client) Version(ctx context.Context) (*Version, error) {
	return invoke[Version](ctx, c, "system.getVersion", nil)
}

// Recover re-runs boot recovery and returns how many alarms were armed.
func (c *Client) Recover(ctx context.Context) (int, error) {
	out, err := invoke[struct {
		Armed int `json:"armed"`
	}](ctx, c, "system.recover", nil)
	if err != nil {
		return 0, err
	}
	return out.Armed, nil
}

// Shutdown asks the daemon to stop.
func (c *Client) Shutdown(ctx context.Context) error {
	_, err := c.call(ctx, "system.shutdown", nil)
	return err
}

// AddAlarm creates an alarm ringing at hour:minute on the days named by
// the daysOfWeek bitmask (zero means one-time) and returns its id.
func (c *Client) AddAlarm(ctx context.Context, hour, minute, daysOfWeek int, opts *AddAlarmOpts) (int64, error) {
	if opts == nil {
		opts = &AddAlarmOpts{}
	}
	p := &alarmParams{
		GroupID:    opts.GroupID,
		Hour:       hour,
		Minute:     minute,
		DaysOfWeek: daysOfWeek,
		SoundURI:   opts.SoundURI,
		Label:      opts.Label,
	}
	if opts.Disabled {
		enabled := false
		p.Enabled = &enabled
	}
	out, err := invoke[addResult](ctx, c, "alarm.add", p)
	if err != nil {
		return 0, err
	}
	return out.ID, nil
}

// UpdateAlarm replaces the alarm's time, days and optional fields.
func (c *Client) UpdateAlarm(ctx context.Context, id int64, hour, minute, daysOfWeek int, opts *AddAlarmOpts) error {
	if opts == nil {
		opts = &AddAlarmOpts{}
	}
	p := &alarmParams{
		ID:         id,
		GroupID:    opts.GroupID,
		Hour:       hour,
		Minute:     minute,
		DaysOfWeek: daysOfWeek,
		SoundURI:   opts.SoundURI,
		Label:      opts.Label,
	}
	_, err := c.call(ctx, "alarm.update", p)
	return err
}

// RemoveAlarm deletes the alarm and cancels its timers.
func (c *Client) RemoveAlarm(ctx context.Context, id int64) error {
	_, err := c.call(ctx, "alarm.remove", &idParam{ID: id})
	return err
}

// EnableAlarm toggles the alarm; enabling also arms its next trigger.
func (c *Client) EnableAlarm(ctx context.Context, id int64, enabled bool) error {
	_, err := c.call(ctx, "alarm.enable", map[string]any{"id": id, "enabled": enabled})
	return err
}

// Alarms lists every alarm.
func (c *Client) Alarms(ctx context.Context) ([]Alarm, error) {
	out, err := invoke[struct {
		Alarms []Alarm `json:"alarms"`
	}](ctx, c, "alarm.list", nil)
	if err != nil {
		return nil, err
	}
	return out.Alarms, nil
}

// AddGroup creates an alarm group and returns its id.
func (c *Client) AddGroup(ctx context.Context, name string) (int64, error) {
	out, err := invoke[addResult](ctx, c, "group.add", map[string]any{"name": name})
	if err != nil {
		return 0, err
	}
	return out.ID, nil
}

// RemoveGroup deletes the group and, through the cascade, its alarms.
func (c *Client) RemoveGroup(ctx context.Context, id int64) error {
	_, err := c.call(ctx, "group.remove", &idParam{ID: id})
	return err
}

// Groups lists every group.
func (c *Client) Groups(ctx context.Context) ([]Group, error) {
	out, err := invoke[struct {
		Groups []Group `json:"groups"`
	}](ctx, c, "group.list", nil)
	if err != nil {
		return nil, err
	}
	return out.Groups, nil
}

// SilenceGroup suppresses the group's alarms for the rest of today.
func (c *Client) SilenceGroup(ctx context.Context, id int64) error {
	_, err := c.call(ctx, "group.silence", &idParam{ID: id})
	return err
}

// UnsilenceGroup clears a silence set for today.
func (c *Client) UnsilenceGroup(ctx context.Context, id int64) error {
	_, err := c.call(ctx, "group.unsilence", &idParam{ID: id})
	return err
}

// Status reports the ringing session, if any.
func (c *Client) Status(ctx context.Context) (*SessionStatus, error) {
	return invoke[SessionStatus](ctx, c, "session.status", nil)
}

// Dismiss resolves the ringing alarm.
func (c *Client) Dismiss(ctx context.Context, id int64) error {
	_, err := c.call(ctx, "session.dismiss", &idParam{ID: id})
	return err
}

// Snooze resolves the ringing alarm and re-arms it a few minutes out.
func (c *Client) Snooze(ctx context.Context, id int64) error {
	_, err := c.call(ctx, "session.snooze", &idParam{ID: id})
	return err
}

// SilenceRingingGroup silences the ringing alarm's whole group for today.
func (c *Client) SilenceRingingGroup(ctx context.Context, id int64) error {
	_, err := c.call(ctx, "session.silenceGroup", &idParam{ID: id})
	return err
}
