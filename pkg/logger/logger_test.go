package logger

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestStandardLoggerPrefixes(t *testing.T) {
	var buf bytes.Buffer
	l := NewStandardLogger(log.New(&buf, "", 0))

	l.Info("alarm %d armed", 3)
	l.Warning("sound fallback for alarm %d", 3)
	l.Error("arm failed: %v", "denied")

	out := buf.String()
	for _, want := range []string{
		"[INFO] alarm 3 armed",
		"[WARNING] sound fallback for alarm 3",
		"[ERROR] arm failed: denied",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestMockLoggerRecords(t *testing.T) {
	m := NewMockLogger()
	m.Info("a %d", 1)
	m.Warning("b")
	m.Error("c")

	if len(m.InfoCalls) != 1 || m.InfoCalls[0] != "a 1" {
		t.Errorf("InfoCalls = %v", m.InfoCalls)
	}
	if len(m.WarningCalls) != 1 || len(m.ErrorCalls) != 1 {
		t.Errorf("recorded calls = %v %v", m.WarningCalls, m.ErrorCalls)
	}
	if err := m.Close(); err != nil || !m.Closed {
		t.Errorf("Close: err=%v closed=%v", err, m.Closed)
	}
}
