// Package logger defines the logging interface shared by all alarmd
// components. The daemon logs to the console through StandardLogger;
// tests plug in MockLogger to assert on emitted messages.
package logger

import (
	"fmt"
	"log"
)

// Logger is implemented by all alarmd log sinks.
type Logger interface {
	// Info logs routine events ("alarm 3 armed for 07:00").
	Info(format string, args ...any)

	// Warning logs degraded-but-continuing conditions ("sound fallback").
	Warning(format string, args ...any)

	// Error logs failures. No alarmd error is process-terminating; the
	// daemon keeps arming and firing subsequent alarms after any of them.
	Error(format string, args ...any)

	// Close releases any resources held by the sink. Safe to call twice.
	Close() error
}

// StandardLogger writes through a stdlib *log.Logger with level prefixes.
type StandardLogger struct {
	l *log.Logger
}

// NewStandardLogger wraps the given *log.Logger. Passing log.Default()
// gives plain stderr output.
func NewStandardLogger(l *log.Logger) *StandardLogger {
	return &StandardLogger{l: l}
}

func (s *StandardLogger) Info(format string, args ...any) {
	s.l.Printf("[INFO] "+format, args...)
}

func (s *StandardLogger) Warning(format string, args ...any) {
	s.l.Printf("[WARNING] "+format, args...)
}

func (s *StandardLogger) Error(format string, args ...any) {
	s.l.Printf("[ERROR] "+format, args...)
}

func (s *StandardLogger) Close() error { return nil }

// NopLogger discards everything. Used to silence components in tests.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (NopLogger) Info(string, ...any)    {}
func (NopLogger) Warning(string, ...any) {}
func (NopLogger) Error(string, ...any)   {}
func (NopLogger) Close() error           { return nil }

var (
	_ Logger = (*StandardLogger)(nil)
	_ Logger = (*NopLogger)(nil)
	_ Logger = (*MockLogger)(nil)
)

// MockLogger records formatted messages for test assertions. It is not
// safe for concurrent use without external synchronization.
type MockLogger struct {
	InfoCalls    []string
	WarningCalls []string
	ErrorCalls   []string
	Closed       bool
}

func NewMockLogger() *MockLogger { return &MockLogger{} }

func (m *MockLogger) Info(format string, args ...any) {
	m.InfoCalls = append(m.InfoCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Warning(format string, args ...any) {
	m.WarningCalls = append(m.WarningCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Error(format string, args ...any) {
	m.ErrorCalls = append(m.ErrorCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Close() error {
	m.Closed = true
	return nil
}
