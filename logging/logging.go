// Package logging contains the zap-backed loggers used by the fpdlink tool and its tests.
//
// A root logger from New owns a Registry and a set of appenders. Its subloggers share both, so
// one call to AddAppender or Registry.UpdateConfig reaches every part of a run.
package logging

import "go.uber.org/zap"

// New returns a root logger at INFO with no appenders, logging in UTC, and its registry.
func New(name string) (Logger, *Registry) {
	reg := newRegistry()
	root := &logger{
		name:     name,
		level:    zap.NewAtomicLevelAt(INFO),
		utc:      true,
		out:      &sinks{},
		registry: reg,
	}
	return reg.getOrRegister(root), reg
}
