package logging

import (
	"regexp"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// LoggerPatternConfig sets the level of every logger whose name matches Pattern. A "*" section
// matches any run of characters, e.g. "fpdlink.board.*".
type LoggerPatternConfig struct {
	Pattern string `json:"pattern"`
	Level   string `json:"level"`
}

var patternRegexp = regexp.MustCompile(`^([a-zA-Z0-9]+([_-]*[a-zA-Z0-9]+)*|\*)(\.([a-zA-Z0-9]+([_-]*[a-zA-Z0-9]+)*|\*))*$`)

func validatePattern(pattern string) bool {
	return patternRegexp.MatchString(pattern)
}

func compilePattern(pattern string) *regexp.Regexp {
	sections := strings.Split(pattern, ".")
	for i, section := range sections {
		if section == "*" {
			sections[i] = ".*"
		} else {
			sections[i] = regexp.QuoteMeta(section)
		}
	}
	return regexp.MustCompile(`^` + strings.Join(sections, `\.`) + `$`)
}

type levelPattern struct {
	re    *regexp.Regexp
	level Level
}

// Registry holds the loggers of one root logger by name so level patterns reach loggers created
// both before and after the patterns are set.
type Registry struct {
	mu       sync.Mutex
	loggers  map[string]*logger
	patterns []levelPattern
}

func newRegistry() *Registry {
	return &Registry{loggers: map[string]*logger{}}
}

// levelFor returns the level of the last pattern matching name. Callers hold mu.
func (r *Registry) levelFor(name string) (Level, bool) {
	level, matched := INFO, false
	for _, p := range r.patterns {
		if p.re.MatchString(name) {
			level, matched = p.level, true
		}
	}
	return level, matched
}

// UpdateConfig replaces the level patterns and applies them to every logger of the registry.
// Loggers no pattern matches go back to INFO. Malformed patterns are reported on warnLogger and
// skipped; an unknown level is an error.
func (r *Registry) UpdateConfig(logConfig []LoggerPatternConfig, warnLogger Logger) error {
	patterns := make([]levelPattern, 0, len(logConfig))
	for _, lpc := range logConfig {
		if !validatePattern(lpc.Pattern) {
			warnLogger.Warnw("ignoring malformed logger pattern", "pattern", lpc.Pattern)
			continue
		}
		level, err := LevelFromString(lpc.Level)
		if err != nil {
			return errors.Wrapf(err, "logger pattern %q", lpc.Pattern)
		}
		patterns = append(patterns, levelPattern{compilePattern(lpc.Pattern), level})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = patterns
	for name, l := range r.loggers {
		level, _ := r.levelFor(name)
		l.level.SetLevel(level)
	}
	return nil
}

// getOrRegister returns the logger already registered under l's name, or registers l with the
// level of the matching patterns.
func (r *Registry) getOrRegister(l *logger) *logger {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.loggers[l.name]; ok {
		return existing
	}
	if level, ok := r.levelFor(l.name); ok {
		l.level.SetLevel(level)
	}
	r.loggers[l.name] = l
	return l
}
