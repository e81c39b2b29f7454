package logging

import (
	"testing"

	"go.viam.com/test"
)

func TestValidatePattern(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		pattern string
		isValid bool
	}{
		{"fpdlink", true},
		{"fpdlink.session", true},
		{"fpdlink.*", true},
		{"fpdlink.*.mcp2221", true},
		{"*", true},
		{"fpdlink.board_linux", true},

		{"fpdlink..session", false},
		{"fpdlink.session.", false},
		{".fpdlink", false},
		{"fpdlink.**", false},
		{"_.fpdlink", false},
		{"fpdlink.-", false},
		{"fpdlink session", false},
	} {
		tc := tc
		t.Run(tc.pattern, func(t *testing.T) {
			t.Parallel()
			test.That(t, validatePattern(tc.pattern), test.ShouldEqual, tc.isValid)
		})
	}
}

func TestCompilePattern(t *testing.T) {
	re := compilePattern("fpdlink.*.mcp2221")
	test.That(t, re.MatchString("fpdlink.board.mcp2221"), test.ShouldBeTrue)
	test.That(t, re.MatchString("fpdlink.board.linux"), test.ShouldBeFalse)
	test.That(t, compilePattern("fpdlink").MatchString("fpdlinkX"), test.ShouldBeFalse)
	test.That(t, compilePattern("*").MatchString("fpdlink.session"), test.ShouldBeTrue)
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		in  string
		out Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warn", WARN},
		{"warning", WARN},
		{"error", ERROR},
	} {
		level, err := LevelFromString(tc.in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.out)
	}

	for _, bad := range []string{"verbose", "", "fatal"} {
		_, err := LevelFromString(bad)
		test.That(t, err, test.ShouldNotBeNil)
	}
}
