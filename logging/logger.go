package logging

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logger handed to profiles, sessions and bus backends. Runs log each step at debug,
// computed divider values at info and anything a bring-up engineer must look at (missing DP video,
// FIFO overflow) at warn. Failures are returned as errors, not logged.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warn(args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})

	// CDebugf and CDebugw also log below the logger's level when ctx came from EnableDebugMode.
	CDebugf(ctx context.Context, template string, args ...interface{})
	CDebugw(ctx context.Context, msg string, keysAndValues ...interface{})

	// Sublogger returns the logger named "<name>.<subname>", creating it on first use.
	Sublogger(subname string) Logger
	// AddAppender adds an output to this logger, its root and every other logger of that root.
	AddAppender(appender Appender)
	Sync() error
}

// sinks are the appenders shared by a root logger and its subloggers.
type sinks struct {
	mu        sync.RWMutex
	appenders []Appender
}

func (s *sinks) add(appender Appender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appenders = append(s.appenders, appender)
}

func (s *sinks) write(entry zapcore.Entry, fields []zapcore.Field) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var err error
	for _, appender := range s.appenders {
		err = multierr.Append(err, appender.Write(entry, fields))
	}
	return err
}

func (s *sinks) sync() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var err error
	for _, appender := range s.appenders {
		err = multierr.Append(err, appender.Sync())
	}
	return err
}

type logger struct {
	name     string
	level    zap.AtomicLevel
	utc      bool
	out      *sinks
	registry *Registry
}

func (l *logger) Sublogger(subname string) Logger {
	name := subname
	if l.name != "" {
		name = l.name + "." + subname
	}
	return l.registry.getOrRegister(&logger{
		name:     name,
		level:    zap.NewAtomicLevelAt(l.level.Level()),
		utc:      l.utc,
		out:      l.out,
		registry: l.registry,
	})
}

func (l *logger) AddAppender(appender Appender) {
	l.out.add(appender)
}

func (l *logger) Sync() error {
	return l.out.sync()
}

func (l *logger) Debugw(msg string, keysAndValues ...interface{}) {
	if l.level.Enabled(DEBUG) {
		l.emit(DEBUG, msg, sweeten(keysAndValues))
	}
}

func (l *logger) Infof(template string, args ...interface{}) {
	if l.level.Enabled(INFO) {
		l.emit(INFO, fmt.Sprintf(template, args...), nil)
	}
}

func (l *logger) Infow(msg string, keysAndValues ...interface{}) {
	if l.level.Enabled(INFO) {
		l.emit(INFO, msg, sweeten(keysAndValues))
	}
}

func (l *logger) Warn(args ...interface{}) {
	if l.level.Enabled(WARN) {
		l.emit(WARN, fmt.Sprint(args...), nil)
	}
}

func (l *logger) Warnw(msg string, keysAndValues ...interface{}) {
	if l.level.Enabled(WARN) {
		l.emit(WARN, msg, sweeten(keysAndValues))
	}
}

func (l *logger) CDebugf(ctx context.Context, template string, args ...interface{}) {
	if l.level.Enabled(DEBUG) || IsDebugMode(ctx) {
		l.emit(DEBUG, fmt.Sprintf(template, args...), nil)
	}
}

func (l *logger) CDebugw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	if l.level.Enabled(DEBUG) || IsDebugMode(ctx) {
		l.emit(DEBUG, msg, sweeten(keysAndValues))
	}
}

// emit must be called directly from the exported logging methods so the caller lookup lands on
// their caller.
func (l *logger) emit(level Level, msg string, fields []zapcore.Field) {
	entry := zapcore.Entry{
		Level:      level,
		Time:       time.Now(),
		LoggerName: l.name,
		Message:    msg,
	}
	if l.utc {
		entry.Time = entry.Time.UTC()
	}
	if pc, file, line, ok := runtime.Caller(2); ok {
		entry.Caller = zapcore.NewEntryCaller(pc, file, line, true)
	}
	if err := l.out.write(entry, fields); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

// sweeten turns alternating keys and values into zap fields. An unpaired trailing key is kept with
// an error value so the mistake shows up in the output.
func sweeten(keysAndValues []interface{}) []zapcore.Field {
	if len(keysAndValues) == 0 {
		return nil
	}
	fields := make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			fields = append(fields, zap.String(key, "unpaired log key"))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
