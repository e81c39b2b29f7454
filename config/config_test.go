package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"

	"go.viam.com/fpdlink/components/board"
	_ "go.viam.com/fpdlink/components/board/fake"
	"go.viam.com/fpdlink/fpdlink"
	"go.viam.com/fpdlink/logging"
)

const benchConfig = `{
	// two benches on one host
	board: {
		buses: [
			{id: 0, name: "bench", type: "fake"},
			{id: 4, name: "nld", type: "fake", speed_hz: "400000"},
		],
	},
	addresses: {ser: 24, des: 88, des_alias: "0x5a"},
	profiles: {
		"dual-3400x1300-v9": {des_pclk_mhz: 282.96, patgen: false},
	},
	log: [{pattern: "fpdlink.session", level: "debug"}],
	log_file: "${FPDLINK_TEST_LOG_DIR}/fpdlink.log",
}`

func TestFromReader(t *testing.T) {
	logger := logging.NewTestLogger(t)
	cfg, err := FromReader("bench.json5", strings.NewReader(benchConfig), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, "bench.json5")
	test.That(t, cfg.Board.Buses, test.ShouldHaveLength, 2)
	test.That(t, cfg.Board.Buses[1], test.ShouldResemble,
		board.BusConfig{ID: 4, Name: "nld", Type: "fake", SpeedHz: 400000})
	test.That(t, cfg.LinkAddresses(), test.ShouldResemble, fpdlink.Addresses{Ser: 0x18, DesAddr: 0x58, DesAlias: 0x5a})
	test.That(t, cfg.LogConfig, test.ShouldResemble, []logging.LoggerPatternConfig{{Pattern: "fpdlink.session", Level: "debug"}})
	// Only Read expands the environment.
	test.That(t, cfg.LogFile, test.ShouldEqual, "${FPDLINK_TEST_LOG_DIR}/fpdlink.log")

	p, err := fpdlink.Lookup("dual-3400x1300-v9")
	test.That(t, err, test.ShouldBeNil)
	params := cfg.Params(p, fpdlink.ParamOverrides{})
	test.That(t, params, test.ShouldResemble, fpdlink.Params{DesPCLK: 282.96, SerPCLK: 283.4, PatGen: false})

	serPCLK := 282.5
	patGen := true
	params = cfg.Params(p, fpdlink.ParamOverrides{SerPCLK: &serPCLK, PatGen: &patGen})
	test.That(t, params, test.ShouldResemble, fpdlink.Params{DesPCLK: 282.96, SerPCLK: 282.5, PatGen: true})

	other, err := fpdlink.Lookup("oldi-11p3in")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Params(other, fpdlink.ParamOverrides{}), test.ShouldResemble, other.Defaults)
}

func TestRead(t *testing.T) {
	logger := logging.NewTestLogger(t)
	dir := t.TempDir()
	t.Setenv("FPDLINK_TEST_LOG_DIR", dir)
	path := filepath.Join(dir, "bench.json5")
	test.That(t, os.WriteFile(path, []byte(benchConfig), 0o600), test.ShouldBeNil)

	cfg, err := Read(path, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, path)
	test.That(t, cfg.LogFile, test.ShouldEqual, filepath.Join(dir, "fpdlink.log"))

	_, err = Read(filepath.Join(dir, "missing.json5"), logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFromReaderErrors(t *testing.T) {
	logger := logging.NewTestLogger(t)
	for _, tc := range []struct {
		name string
		conf string
		err  string
	}{
		{"syntax", `{board: `, "failed to decode Config from json"},
		{"unknown field", `{board: {buses: [{id: 0, name: "a", type: "fake"}]}, boards: 1}`, "boards"},
		{"no buses", `{board: {}}`, `"buses" is required`},
		{"bus type", `{board: {buses: [{id: 0, name: "a", type: "spi"}]}}`, `unknown bus type "spi"`},
		{"default", `{board: {buses: [{id: 1, name: "a", type: "fake"}]}}`, "default_id 0 does not name a bus"},
		{
			"odd address",
			`{board: {buses: [{id: 0, name: "a", type: "fake"}]}, addresses: {ser: 25, des: 88, des_alias: 88}}`,
			"ser address 0x19",
		},
		{
			"missing address",
			`{board: {buses: [{id: 0, name: "a", type: "fake"}]}, addresses: {ser: 24, des: 88}}`,
			`"des_alias" is required`,
		},
		{
			"unknown profile",
			`{board: {buses: [{id: 0, name: "a", type: "fake"}]}, profiles: {nope: {}}}`,
			`unknown profile "nope"`,
		},
		{
			"bad pclk",
			`{board: {buses: [{id: 0, name: "a", type: "fake"}]}, profiles: {"oldi-11p3in": {des_pclk_mhz: -1}}}`,
			"des_pclk_mhz must be positive",
		},
		{
			"bad level",
			`{board: {buses: [{id: 0, name: "a", type: "fake"}]}, log: [{pattern: "fpdlink", level: "loud"}]}`,
			"log.0",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromReader("", strings.NewReader(tc.conf), logger)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.err)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	test.That(t, cfg.Validate(), test.ShouldBeNil)
	test.That(t, cfg.Board.Buses, test.ShouldResemble, []board.BusConfig{
		{ID: 0, Name: "bench0", Type: "fake"},
		{ID: 4, Name: "bench4", Type: "fake"},
		{ID: 2, Name: "bench2", Type: "fake"},
	})
	test.That(t, cfg.LinkAddresses(), test.ShouldResemble, fpdlink.DefaultAddresses)
}

func TestSchema(t *testing.T) {
	schema, err := Schema()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(schema), test.ShouldContainSubstring, `"speed_hz"`)
	test.That(t, string(schema), test.ShouldContainSubstring, `"des_pclk_mhz"`)
	test.That(t, string(schema), test.ShouldNotContainSubstring, "ConfigFilePath")
	// Bus entries only carry what a bench file sets.
	for _, key := range []string{`"id"`, `"name"`, `"type"`, `"bus"`, `"index"`} {
		test.That(t, string(schema), test.ShouldContainSubstring, key)
	}
	test.That(t, string(schema), test.ShouldNotContainSubstring, "fail_new")
}
