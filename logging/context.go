package logging

import "context"

type debugRunKey struct{}

// EnableDebugMode marks ctx so the CDebug methods log for the run named run whatever the logger
// levels are. fpdlink run --trace-steps uses it to see every step of one run.
func EnableDebugMode(ctx context.Context, run string) context.Context {
	if run == "" {
		run = "run"
	}
	return context.WithValue(ctx, debugRunKey{}, run)
}

// IsDebugMode reports whether ctx came from EnableDebugMode.
func IsDebugMode(ctx context.Context) bool {
	_, ok := DebugRun(ctx)
	return ok
}

// DebugRun returns the run name EnableDebugMode attached to ctx.
func DebugRun(ctx context.Context) (string, bool) {
	run, ok := ctx.Value(debugRunKey{}).(string)
	return run, ok
}
