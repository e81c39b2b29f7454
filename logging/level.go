package logging

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

// Level is a log level. Configs may use DEBUG through ERROR.
type Level = zapcore.Level

// Levels accepted in logger patterns.
const (
	DEBUG = zapcore.DebugLevel
	INFO  = zapcore.InfoLevel
	WARN  = zapcore.WarnLevel
	ERROR = zapcore.ErrorLevel
)

// LevelFromString parses one of "debug", "info", "warn" (or "warning") and "error", ignoring case.
func LevelFromString(inp string) (Level, error) {
	name := strings.ToLower(inp)
	if name == "warning" {
		name = "warn"
	}
	level, err := zapcore.ParseLevel(name)
	if name == "" || err != nil || level > ERROR {
		return INFO, errors.Errorf("unknown log level %q, expected debug, info, warn or error", inp)
	}
	return level, nil
}
