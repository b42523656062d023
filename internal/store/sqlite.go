package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/groupalarm/alarmd/pkg/alarmlib"
)

// SQLite is the durable Store implementation on modernc.org/sqlite.
type SQLite struct {
	db   *sql.DB
	subs *subscribers
}

var _ Store = (*SQLite)(nil)

// Open opens (creating if needed) the database at path and applies pending
// migrations. Foreign keys are enabled so deleting a group cascades to its
// alarms.
func Open(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return &SQLite{db: db, subs: newSubscribers()}, nil
}

// Close closes the change feed and the underlying database.
func (s *SQLite) Close() error {
	s.subs.closeAll()
	return s.db.Close()
}

const alarmCols = "id, group_id, hour, minute, days_of_week, is_enabled, sound_uri, label"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlarm(r rowScanner) (*alarmlib.Alarm, error) {
	var a alarmlib.Alarm
	err := r.Scan(&a.ID, &a.GroupID, &a.Hour, &a.Minute, &a.DaysOfWeek, &a.Enabled, &a.SoundURI, &a.Label)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *SQLite) Alarm(ctx context.Context, id int64) (*alarmlib.Alarm, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+alarmCols+" FROM alarms WHERE id = ?", id)
	a, err := scanAlarm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("alarm %d: %w", id, alarmlib.ErrAlarmNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get alarm %d: %w", id, err)
	}
	return a, nil
}

func (s *SQLite) AlarmWithGroup(ctx context.Context, id int64) (*alarmlib.Alarm, *alarmlib.Group, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.group_id, a.hour, a.minute, a.days_of_week, a.is_enabled, a.sound_uri, a.label,
		       g.id, g.name, g.silenced_date
		FROM alarms a JOIN alarm_groups g ON g.id = a.group_id
		WHERE a.id = ?`, id)

	var (
		a        alarmlib.Alarm
		g        alarmlib.Group
		silenced sql.NullString
	)
	err := row.Scan(&a.ID, &a.GroupID, &a.Hour, &a.Minute, &a.DaysOfWeek, &a.Enabled, &a.SoundURI, &a.Label,
		&g.ID, &g.Name, &silenced)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("alarm %d: %w", id, alarmlib.ErrAlarmNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get alarm %d with group: %w", id, err)
	}
	g.SilencedDate = silenced.String
	return &a, &g, nil
}

func (s *SQLite) queryAlarms(ctx context.Context, query string, args ...any) ([]*alarmlib.Alarm, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alarms []*alarmlib.Alarm
	for rows.Next() {
		a, err := scanAlarm(rows)
		if err != nil {
			return nil, err
		}
		alarms = append(alarms, a)
	}
	return alarms, rows.Err()
}

// Alarms returns all alarms, ordered by time of day.
func (s *SQLite) Alarms(ctx context.Context) ([]*alarmlib.Alarm, error) {
	return s.queryAlarms(ctx, "SELECT "+alarmCols+" FROM alarms ORDER BY hour, minute")
}

func (s *SQLite) EnabledAlarms(ctx context.Context) ([]*alarmlib.Alarm, error) {
	return s.queryAlarms(ctx, "SELECT "+alarmCols+" FROM alarms WHERE is_enabled = 1")
}

func (s *SQLite) AlarmsInGroup(ctx context.Context, groupID int64) ([]*alarmlib.Alarm, error) {
	return s.queryAlarms(ctx, "SELECT "+alarmCols+" FROM alarms WHERE group_id = ? ORDER BY hour, minute", groupID)
}

func (s *SQLite) CreateAlarm(ctx context.Context, a *alarmlib.Alarm) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO alarms (group_id, hour, minute, days_of_week, is_enabled, sound_uri, label)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.GroupID, a.Hour, a.Minute, a.DaysOfWeek, a.Enabled, a.SoundURI, a.Label)
	if err != nil {
		return 0, fmt.Errorf("create alarm: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create alarm: %w", err)
	}
	a.ID = id
	s.subs.broadcast(Change{Table: "alarms", Op: OpCreate, ID: id})
	return id, nil
}

func (s *SQLite) UpdateAlarm(ctx context.Context, a *alarmlib.Alarm) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE alarms SET group_id = ?, hour = ?, minute = ?, days_of_week = ?,
		       is_enabled = ?, sound_uri = ?, label = ?
		WHERE id = ?`,
		a.GroupID, a.Hour, a.Minute, a.DaysOfWeek, a.Enabled, a.SoundURI, a.Label, a.ID)
	if err != nil {
		return fmt.Errorf("update alarm %d: %w", a.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("alarm %d: %w", a.ID, alarmlib.ErrAlarmNotFound)
	}
	s.subs.broadcast(Change{Table: "alarms", Op: OpUpdate, ID: a.ID})
	return nil
}

func (s *SQLite) DeleteAlarm(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM alarms WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete alarm %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("alarm %d: %w", id, alarmlib.ErrAlarmNotFound)
	}
	s.subs.broadcast(Change{Table: "alarms", Op: OpDelete, ID: id})
	return nil
}

func (s *SQLite) SetAlarmEnabled(ctx context.Context, id int64, enabled bool) error {
	res, err := s.db.ExecContext(ctx, "UPDATE alarms SET is_enabled = ? WHERE id = ?", enabled, id)
	if err != nil {
		return fmt.Errorf("set alarm %d enabled: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("alarm %d: %w", id, alarmlib.ErrAlarmNotFound)
	}
	s.subs.broadcast(Change{Table: "alarms", Op: OpUpdate, ID: id})
	return nil
}

func (s *SQLite) Group(ctx context.Context, id int64) (*alarmlib.Group, error) {
	var (
		g        alarmlib.Group
		silenced sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, silenced_date FROM alarm_groups WHERE id = ?", id).
		Scan(&g.ID, &g.Name, &silenced)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %d: %w", id, alarmlib.ErrGroupNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get group %d: %w", id, err)
	}
	g.SilencedDate = silenced.String
	return &g, nil
}

// Groups returns all groups, ordered by name.
func (s *SQLite) Groups(ctx context.Context) ([]*alarmlib.Group, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, silenced_date FROM alarm_groups ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*alarmlib.Group
	for rows.Next() {
		var (
			g        alarmlib.Group
			silenced sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.Name, &silenced); err != nil {
			return nil, err
		}
		g.SilencedDate = silenced.String
		groups = append(groups, &g)
	}
	return groups, rows.Err()
}

func (s *SQLite) CreateGroup(ctx context.Context, g *alarmlib.Group) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO alarm_groups (name, silenced_date) VALUES (?, ?)",
		g.Name, nullable(g.SilencedDate))
	if err != nil {
		return 0, fmt.Errorf("create group: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create group: %w", err)
	}
	g.ID = id
	s.subs.broadcast(Change{Table: "alarm_groups", Op: OpCreate, ID: id})
	return id, nil
}

func (s *SQLite) UpdateGroup(ctx context.Context, g *alarmlib.Group) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE alarm_groups SET name = ?, silenced_date = ? WHERE id = ?",
		g.Name, nullable(g.SilencedDate), g.ID)
	if err != nil {
		return fmt.Errorf("update group %d: %w", g.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("group %d: %w", g.ID, alarmlib.ErrGroupNotFound)
	}
	s.subs.broadcast(Change{Table: "alarm_groups", Op: OpUpdate, ID: g.ID})
	return nil
}

func (s *SQLite) DeleteGroup(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM alarm_groups WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete group %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("group %d: %w", id, alarmlib.ErrGroupNotFound)
	}
	s.subs.broadcast(Change{Table: "alarm_groups", Op: OpDelete, ID: id})
	return nil
}

func (s *SQLite) CountGroups(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM alarm_groups").Scan(&n); err != nil {
		return 0, fmt.Errorf("count groups: %w", err)
	}
	return n, nil
}

func (s *SQLite) SilenceGroup(ctx context.Context, groupID int64, date string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE alarm_groups SET silenced_date = ? WHERE id = ?",
		nullable(date), groupID)
	if err != nil {
		return fmt.Errorf("silence group %d: %w", groupID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("group %d: %w", groupID, alarmlib.ErrGroupNotFound)
	}
	s.subs.broadcast(Change{Table: "alarm_groups", Op: OpUpdate, ID: groupID})
	return nil
}

func (s *SQLite) SilencedDate(ctx context.Context, groupID int64) (string, error) {
	var silenced sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT silenced_date FROM alarm_groups WHERE id = ?", groupID).Scan(&silenced)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("group %d: %w", groupID, alarmlib.ErrGroupNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get silenced date of group %d: %w", groupID, err)
	}
	return silenced.String, nil
}

// Subscribe returns a live change feed for this store.
func (s *SQLite) Subscribe() Subscription {
	return s.subs.add()
}

// EnsureDefaultGroup creates a group with the given name iff no group
// exists yet. Returns the default group's id, or 0 when groups already
// exist. Runs once at daemon start, before any UI can query the store.
func (s *SQLite) EnsureDefaultGroup(ctx context.Context, name string) (int64, error) {
	n, err := s.CountGroups(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	return s.CreateGroup(ctx, &alarmlib.Group{Name: name})
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
