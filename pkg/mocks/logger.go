package mocks

import (
	"fmt"
	"sync"

	"github.com/user/pixdiff/pkg/ports"
)

// Logger is a mock implementation of ports.Logger that records
// messages for verification.
type Logger struct {
	mu       sync.Mutex
	Messages []LogMessage
}

// LogMessage is one recorded log call.
type LogMessage struct {
	Level     ports.LogLevel
	Component string
	Message   string
}

// NewLogger creates a new recording Logger.
func NewLogger() *Logger {
	return &Logger{}
}

func (m *Logger) Debug(msg string, args ...interface{}) { m.record(ports.LevelDebug, msg, args...) }
func (m *Logger) Info(msg string, args ...interface{})  { m.record(ports.LevelInfo, msg, args...) }
func (m *Logger) Warn(msg string, args ...interface{})  { m.record(ports.LevelWarn, msg, args...) }
func (m *Logger) Error(msg string, args ...interface{}) { m.record(ports.LevelError, msg, args...) }

func (m *Logger) WithComponent(component string) ports.Logger {
	return &componentLogger{parent: m, component: component}
}

func (m *Logger) record(level ports.LogLevel, msg string, args ...interface{}) {
	m.recordComponent(level, "", msg, args...)
}

func (m *Logger) recordComponent(level ports.LogLevel, component, msg string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, LogMessage{
		Level:     level,
		Component: component,
		Message:   fmt.Sprintf(msg, args...),
	})
}

// MessagesAt returns the recorded messages at the given level.
func (m *Logger) MessagesAt(level ports.LogLevel) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, msg := range m.Messages {
		if msg.Level == level {
			out = append(out, msg.Message)
		}
	}
	return out
}

type componentLogger struct {
	parent    *Logger
	component string
}

func (l *componentLogger) Debug(msg string, args ...interface{}) {
	l.parent.recordComponent(ports.LevelDebug, l.component, msg, args...)
}

func (l *componentLogger) Info(msg string, args ...interface{}) {
	l.parent.recordComponent(ports.LevelInfo, l.component, msg, args...)
}

func (l *componentLogger) Warn(msg string, args ...interface{}) {
	l.parent.recordComponent(ports.LevelWarn, l.component, msg, args...)
}

func (l *componentLogger) Error(msg string, args ...interface{}) {
	l.parent.recordComponent(ports.LevelError, l.component, msg, args...)
}

func (l *componentLogger) WithComponent(component string) ports.Logger {
	return &componentLogger{parent: l.parent, component: component}
}

var _ ports.Logger = (*Logger)(nil)
