package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"go.viam.com/test"
)

type stepSummary struct {
	Index int
	Note  string
	dev   string
}

// assertLogMatches checks the next line of out against expected. The timestamp is compared by
// shape and the caller by file name only.
func assertLogMatches(t *testing.T, out *bytes.Buffer, expected string) {
	t.Helper()

	line, err := out.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	got := strings.Split(strings.TrimSuffix(line, "\n"), "\t")
	want := strings.Split(expected, "\t")
	test.That(t, len(got), test.ShouldEqual, len(want))
	test.That(t, len(got[0]), test.ShouldEqual, len(want[0]))
	test.That(t, got[1:3], test.ShouldResemble, want[1:3])

	gotFile, gotLine, found := strings.Cut(got[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	wantFile, _, _ := strings.Cut(want[3], ":")
	test.That(t, gotFile, test.ShouldEqual, wantFile)
	_, err = strconv.Atoi(gotLine)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, got[4], test.ShouldEqual, want[4])
	if len(got) == 5 {
		return
	}
	var gotFields, wantFields map[string]any
	test.That(t, json.Unmarshal([]byte(got[5]), &gotFields), test.ShouldBeNil)
	test.That(t, json.Unmarshal([]byte(want[5]), &wantFields), test.ShouldBeNil)
	test.That(t, gotFields, test.ShouldResemble, wantFields)
}

func newBufferLogger(t *testing.T) (Logger, *Registry, *bytes.Buffer) {
	t.Helper()
	logger, reg := New("fpdlink")
	out := &bytes.Buffer{}
	logger.AddAppender(NewWriterAppender(out))
	return logger, reg, out
}

func TestConsoleOutputFormat(t *testing.T) {
	logger, reg, out := newBufferLogger(t)
	test.That(t, reg.UpdateConfig([]LoggerPatternConfig{{Pattern: "fpdlink", Level: "debug"}}, NewTestLogger(t)), test.ShouldBeNil)

	logger.Infof("SER m_value: %d", 13757)
	assertLogMatches(t, out,
		"2023-10-30T13:12:09.459Z\tINFO\tfpdlink\tlogging/logger_test.go:63\tSER m_value: 13757")

	logger.Debugw("write", "addr", "0x18", "reg", 1)
	assertLogMatches(t, out,
		"2023-10-30T13:12:09.459Z\tDEBUG\tfpdlink\tlogging/logger_test.go:67\twrite\t{\"addr\":\"0x18\",\"reg\":1}")

	// Only exported fields are serialized.
	logger.Warnw("step", "summary", stepSummary{3, "Enable PLL0", "ser"})
	assertLogMatches(t, out,
		"2023-10-30T13:12:09.459Z\tWARN\tfpdlink\tlogging/logger_test.go:72\tstep\t{\"summary\":{\"Index\":3,\"Note\":\"Enable PLL0\"}}")

	logger.Warnw("unpaired", "lonely")
	assertLogMatches(t, out,
		"2023-10-30T13:12:09.459Z\tWARN\tfpdlink\tlogging/logger_test.go:76\tunpaired\t{\"lonely\":\"unpaired log key\"}")

	logger.Warn("no DP video input ", 2)
	assertLogMatches(t, out,
		"2023-10-30T13:12:09.459Z\tWARN\tfpdlink\tlogging/logger_test.go:80\tno DP video input 2")
}

func TestLevelFiltering(t *testing.T) {
	logger, _, out := newBufferLogger(t)

	logger.Debugw("dropped")
	logger.CDebugf(context.Background(), "dropped %d", 1)
	test.That(t, out.Len(), test.ShouldEqual, 0)

	logger.Infow("kept")
	test.That(t, out.String(), test.ShouldContainSubstring, "kept")
	out.Reset()

	// A debug run context lifts the level for the CDebug methods only.
	ctx := EnableDebugMode(context.Background(), "dual-3400x1300-v9")
	test.That(t, IsDebugMode(ctx), test.ShouldBeTrue)
	run, ok := DebugRun(ctx)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, run, test.ShouldEqual, "dual-3400x1300-v9")
	logger.CDebugw(ctx, "step", "index", 1)
	test.That(t, out.String(), test.ShouldContainSubstring, `{"index":1}`)
	out.Reset()
	logger.Debugw("dropped")
	test.That(t, out.Len(), test.ShouldEqual, 0)

	test.That(t, IsDebugMode(EnableDebugMode(context.Background(), "")), test.ShouldBeTrue)
	test.That(t, IsDebugMode(context.Background()), test.ShouldBeFalse)
}

func TestSubloggers(t *testing.T) {
	logger, reg, out := newBufferLogger(t)
	warnings := NewTestLogger(t)

	err := reg.UpdateConfig([]LoggerPatternConfig{
		{Pattern: "fpdlink.board.*", Level: "debug"},
		{Pattern: "..bad", Level: "debug"},
	}, warnings)
	test.That(t, err, test.ShouldBeNil)

	mcp := logger.Sublogger("board").Sublogger("mcp2221")
	mcp.Debugw("hid report", "len", 64)
	test.That(t, out.String(), test.ShouldContainSubstring, "fpdlink.board.mcp2221")
	out.Reset()

	session := logger.Sublogger("session")
	session.Debugw("dropped")
	test.That(t, out.Len(), test.ShouldEqual, 0)
	test.That(t, logger.Sublogger("session"), test.ShouldEqual, session)

	// Appenders added later reach existing subloggers.
	var later bytes.Buffer
	logger.AddAppender(NewWriterAppender(&later))
	session.Infow("late")
	test.That(t, later.String(), test.ShouldContainSubstring, "fpdlink.session")
	test.That(t, logger.Sync(), test.ShouldBeNil)

	// Patterns are reapplied; loggers without a match go back to INFO.
	out.Reset()
	test.That(t, reg.UpdateConfig(nil, warnings), test.ShouldBeNil)
	mcp.Debugw("dropped")
	test.That(t, out.Len(), test.ShouldEqual, 0)

	test.That(t, reg.UpdateConfig([]LoggerPatternConfig{{Pattern: "*", Level: "error"}}, warnings), test.ShouldBeNil)
	session.Warnw("dropped")
	test.That(t, out.Len(), test.ShouldEqual, 0)

	err = reg.UpdateConfig([]LoggerPatternConfig{{Pattern: "fpdlink", Level: "loud"}}, warnings)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `logger pattern "fpdlink"`)

	// Roots do not share subloggers.
	other, _ := New("fpdlink")
	test.That(t, other.Sublogger("session"), test.ShouldNotEqual, session)
}

func TestObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Sublogger("checks").Warnw("no DP video input detected", "hres", 0, "vres", 810)
	test.That(t, logs.FilterMessage("no DP video input detected").Len(), test.ShouldEqual, 1)
	entry := logs.All()[0]
	test.That(t, entry.LoggerName, test.ShouldEqual, "checks")
	test.That(t, entry.ContextMap()["vres"], test.ShouldEqual, int64(810))
}
