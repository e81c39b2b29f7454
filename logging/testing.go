package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// testAppender logs through tb so output is attributed to the test that produced it.
type testAppender struct {
	tb testing.TB
}

func (a testAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	a.tb.Helper()
	line, err := formatEntry(entry, fields)
	a.tb.Log(line)
	return err
}

func (a testAppender) Sync() error {
	return nil
}

// NewTestLogger returns a DEBUG logger writing to tb in local time.
func NewTestLogger(tb testing.TB) Logger {
	logger, _ := NewObservedTestLogger(tb)
	return logger
}

// NewObservedTestLogger is like NewTestLogger but also keeps every entry in memory.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	l := &logger{
		level:    zap.NewAtomicLevelAt(DEBUG),
		out:      &sinks{appenders: []Appender{testAppender{tb}, core}},
		registry: newRegistry(),
	}
	return l, logs
}
