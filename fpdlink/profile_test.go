package fpdlink_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/test"

	"go.viam.com/fpdlink/components/board"
	"go.viam.com/fpdlink/components/board/buses"
	"go.viam.com/fpdlink/components/board/fake"
	"go.viam.com/fpdlink/fpdlink"
	"go.viam.com/fpdlink/logging"
	"go.viam.com/fpdlink/testutils/inject"
	"go.viam.com/fpdlink/trace"
)

var profileNames = []string{
	"988-11in-nld-patgen",
	"dual-3400x1300-v5-patgen",
	"dual-3400x1300-v9",
	"oldi-11p3in",
	"tianma-11in-ld-patgen",
}

func readGolden(t *testing.T, name string) *trace.Trace {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name+".trace"))
	test.That(t, err, test.ShouldBeNil)
	defer f.Close()
	tr, err := trace.Decode(f)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tr.Name, test.ShouldEqual, name)
	return tr
}

// run performs the profile on bus, advancing a mock clock until it returns.
func run(ctx context.Context, t *testing.T, logger logging.Logger, name string, bus buses.I2C) (*fpdlink.Report, error) {
	t.Helper()
	p, err := fpdlink.Lookup(name)
	test.That(t, err, test.ShouldBeNil)
	return runOn(ctx, logger, p, board.NewFromBuses(map[int]buses.I2C{p.Defaults.BoardID: bus}, p.Defaults.BoardID, logger))
}

// runOn performs the profile with its default params on b, advancing a mock clock until it returns.
func runOn(ctx context.Context, logger logging.Logger, p *fpdlink.Profile, b board.Board) (*fpdlink.Report, error) {
	ps := p.Defaults
	clk := clock.NewMock()
	s := fpdlink.NewSession(b, logger)
	s.Clock = clk

	var (
		report *fpdlink.Report
		err    error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		report, err = p.Run(ctx, s, ps)
	}()
	for {
		select {
		case <-done:
			return report, err
		default:
			clk.Add(10 * time.Millisecond)
		}
	}
}

func TestRegistry(t *testing.T) {
	test.That(t, fpdlink.Names(), test.ShouldResemble, profileNames)
	test.That(t, len(fpdlink.Profiles()), test.ShouldEqual, len(profileNames))

	_, err := fpdlink.Lookup("nope")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "dual-3400x1300-v9")

	p, err := fpdlink.Lookup("oldi-11p3in")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, func() { fpdlink.Register(p) }, test.ShouldPanic)
}

func TestProfilesMatchGoldenTraces(t *testing.T) {
	for _, name := range profileNames {
		t.Run(name, func(t *testing.T) {
			logger := logging.NewTestLogger(t)
			golden := readGolden(t, name)

			bus := fake.NewBus(logger)
			fake.BenchPresets().Apply(bus)
			rec := trace.NewRecorder(bus)
			_, err := run(context.Background(), t, logger, name, rec)
			test.That(t, err, test.ShouldBeNil)
			got := rec.Trace(name)
			test.That(t, trace.Diff(golden, got), test.ShouldEqual, "")
			test.That(t, got.String(), test.ShouldEqual, golden.String())
		})
	}
}

func TestProfilesReplay(t *testing.T) {
	for _, name := range profileNames {
		t.Run(name, func(t *testing.T) {
			logger := logging.NewTestLogger(t)
			replay := trace.NewReplay(readGolden(t, name))
			_, err := run(context.Background(), t, logger, name, replay)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, replay.Done(), test.ShouldBeNil)
		})
	}
}

func TestDualV9Report(t *testing.T) {
	logger := logging.NewTestLogger(t)
	bus := fake.NewBus(logger)
	fake.BenchPresets().Apply(bus)
	report, err := run(context.Background(), t, logger, "dual-3400x1300-v9", bus)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, report.Profile, test.ShouldEqual, "dual-3400x1300-v9")
	test.That(t, report.Params.DesPCLK, test.ShouldEqual, 283.0)
	test.That(t, report.Temperature.TempC, test.ShouldEqual, 37)
	test.That(t, report.Temperature.Codes, test.ShouldResemble, []int{0})
	test.That(t, report.VideoInputReset, test.ShouldBeTrue)
	// One settle after the link comes up and one after the cap-code patch.
	test.That(t, report.Delay, test.ShouldEqual, 80*time.Millisecond)

	test.That(t, bus.Indirect(0x58, 0x3c, 0xf5), test.ShouldEqual, byte(0x01))
	test.That(t, bus.Register(0x18, 0x02), test.ShouldEqual, byte(0xd1))
	test.That(t, bus.Register(0x18, 0x07), test.ShouldEqual, byte(0x98))
	test.That(t, bus.APB(0x58, 0x1ac), test.ShouldEqual, uint32(34345))
	test.That(t, bus.APB(0x58, 0x1b4), test.ShouldEqual, uint32(fpdlink.DPNvid))
}

func TestDualV9Params(t *testing.T) {
	p, err := fpdlink.Lookup("dual-3400x1300-v9")
	test.That(t, err, test.ShouldBeNil)

	params := p.Defaults
	steps, err := p.Steps(fpdlink.DefaultAddresses, params)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fpdlink.Describe(steps), test.ShouldContainSubstring, "Enable PATGEN on VP0")

	params.PatGen = false
	noPatGen, err := p.Steps(fpdlink.DefaultAddresses, params)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(noPatGen), test.ShouldEqual, len(steps)-1)
	test.That(t, fpdlink.Describe(noPatGen), test.ShouldNotContainSubstring, "Enable PATGEN on VP0")
	// Only the data write goes; the offset write before it stays, as in the vendor scripts.
	for i, st := range noPatGen {
		if st.Note == "PATGEN control of VP0" {
			test.That(t, st.String(), test.ShouldEqual, "write ser 0x41 = 0x28: PATGEN control of VP0")
			test.That(t, noPatGen[i+1].String(), test.ShouldEqual, "write ser 0x01 = 0x30: Reset PLLs")
		}
	}
	test.That(t, fpdlink.Describe(noPatGen), test.ShouldContainSubstring, "PATGEN control of VP0")

	params.SerPCLK = 282.96
	params.DesPCLK = 282.96
	steps, err = p.Steps(fpdlink.DefaultAddresses, params)
	test.That(t, err, test.ShouldBeNil)
	desc := fpdlink.Describe(steps)
	// M 13736, 282960 and Mvid 34340.
	test.That(t, desc, test.ShouldContainSubstring, "write ser 0x42 = 0xa8: M value")
	test.That(t, desc, test.ShouldContainSubstring, "write des 0xb2 = 0x50: Program M value lower byte")
	test.That(t, desc, test.ShouldContainSubstring, "write des 0x4b = 0x24")

	params.DesPCLK = -1
	_, err = p.Steps(fpdlink.DefaultAddresses, params)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "building profile dual-3400x1300-v9")

	addrs := fpdlink.Addresses{Ser: 0x18, DesAddr: 0x58, DesAlias: 0x5a}
	steps, err = p.Steps(addrs, p.Defaults)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, steps[3].String(), test.ShouldEqual, "write ser 0x78 = 0x5a")
}

func TestTianmaWorkarounds(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	bus := fake.NewBus(logger)
	fake.BenchPresets().Apply(bus)
	bus.SetAPB(0x58, 0x1cc, 1)
	bus.SetIndirect(0x58, 0x50, 0x43, 0xad)
	bus.SetAPB(0x18, 0x514, 0)

	rec := trace.NewRecorder(bus)
	report, err := run(context.Background(), t, logger, "tianma-11in-ld-patgen", rec)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, report.FIFOOverflow, test.ShouldEqual, uint32(1))
	test.That(t, *report.Vtotal, test.ShouldEqual, uint16(941))
	test.That(t, report.Resets, test.ShouldEqual, 2)
	test.That(t, *report.Resolution, test.ShouldResemble, fpdlink.Resolution{H: 2000, V: 0})
	test.That(t, logs.FilterMessageSnippet("no DP video input").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessageSnippet("Vtotal mismatch").Len(), test.ShouldEqual, 1)

	// Both resets land after the checks that found the faults.
	ops := rec.Trace("").Ops
	golden := readGolden(t, "tianma-11in-ld-patgen").Ops
	test.That(t, len(ops), test.ShouldEqual, len(golden)+2)
	test.That(t, ops[len(ops)-1], test.ShouldResemble, trace.W(0x58, 0x01, 0x01))
}

func TestRunErrors(t *testing.T) {
	t.Run("nack names the step", func(t *testing.T) {
		logger := logging.NewTestLogger(t)
		bus := fake.NewBus(logger)
		bus.FailAddr = 0x58
		_, err := run(context.Background(), t, logger, "dual-3400x1300-v9", bus)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "step 2 (write des 0x01 = 0x02: Hard Reset)")
		test.That(t, err.Error(), test.ShouldContainSubstring, "NACK")
	})

	t.Run("missing board", func(t *testing.T) {
		logger := logging.NewTestLogger(t)
		p, err := fpdlink.Lookup("dual-3400x1300-v5-patgen")
		test.That(t, err, test.ShouldBeNil)
		b := board.NewFromBuses(map[int]buses.I2C{0: fake.NewBus(logger)}, 0, logger)
		_, err = p.Run(context.Background(), fpdlink.NewSession(b, logger), p.Defaults)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "selecting board 2")
	})

	t.Run("ending the session fails", func(t *testing.T) {
		logger := logging.NewTestLogger(t)
		p, err := fpdlink.Lookup("dual-3400x1300-v5-patgen")
		test.That(t, err, test.ShouldBeNil)
		bus := fake.NewBus(logger)
		fake.BenchPresets().Apply(bus)
		var selected []int
		b := &inject.Board{Board: board.NewFromBuses(map[int]buses.I2C{2: bus}, 2, logger)}
		b.SetIDFunc = func(ctx context.Context, id int) error {
			selected = append(selected, id)
			return b.Board.SetID(ctx, id)
		}
		b.EndI2CFunc = func(ctx context.Context) error {
			return multierr.Combine(b.Board.EndI2C(ctx), errors.New("adapter unplugged"))
		}

		report, err := runOn(context.Background(), logger, p, b)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "ending I2C session: adapter unplugged")
		test.That(t, selected, test.ShouldResemble, []int{2})
		// Every step ran before the session ended.
		test.That(t, report.Steps, test.ShouldBeGreaterThan, 0)
	})

	t.Run("session released", func(t *testing.T) {
		logger := logging.NewTestLogger(t)
		bus := fake.NewBus(logger)
		_, err := run(context.Background(), t, logger, "988-11in-nld-patgen", bus)
		test.That(t, err, test.ShouldBeNil)
		h, err := bus.OpenHandle(board.BusAddress(0x18))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, h.Close(), test.ShouldBeNil)
	})

	t.Run("cancelled while waiting", func(t *testing.T) {
		logger := logging.NewTestLogger(t)
		p, err := fpdlink.Lookup("oldi-11p3in")
		test.That(t, err, test.ShouldBeNil)
		b := board.NewFromBuses(map[int]buses.I2C{0: fake.NewBus(logger)}, 0, logger)
		s := fpdlink.NewSession(b, logger)
		s.Clock = clock.NewMock()

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			_, err := p.Run(ctx, s, p.Defaults)
			errCh <- err
		}()
		cancel()
		err = <-errCh
		test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
		test.That(t, strings.Contains(err.Error(), "oldi-11p3in"), test.ShouldBeTrue)
	})
}
