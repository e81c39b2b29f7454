package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/fpdlink/components/board"
	"go.viam.com/fpdlink/components/board/buses"
	"go.viam.com/fpdlink/components/board/fake"
	"go.viam.com/fpdlink/fpdlink"
	"go.viam.com/fpdlink/logging"
	"go.viam.com/fpdlink/trace"
)

// RunProfileAction is the corresponding Action for 'run'.
func RunProfileAction(c *cli.Context) (err error) {
	b, err := newBench(c)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, b.Close())
	}()
	p, params, err := b.profile(c)
	if err != nil {
		return err
	}

	ctx := c.Context
	if c.Bool(flagTraceSteps) {
		ctx = logging.EnableDebugMode(ctx, p.Name)
	}
	boardLogger := b.logger.Sublogger("board")
	opened, err := board.OpenBuses(ctx, b.cfg.Board, boardLogger)
	if err != nil {
		return err
	}
	var rec *trace.Recorder
	if c.String(flagTrace) != "" {
		rec = recordBuses(opened)
	}
	brd := board.NewFromBuses(opened, b.cfg.Board.DefaultID, boardLogger)
	defer func() {
		err = multierr.Combine(err, brd.Close(ctx))
	}()

	s := fpdlink.NewSession(brd, b.logger.Sublogger("session"))
	s.Addr = b.cfg.LinkAddresses()
	report, err := p.Run(ctx, s, params)
	if rec != nil {
		// A partial trace shows where a failed run stopped.
		if writeErr := writeTrace(c.String(flagTrace), rec.Trace(p.Name)); writeErr != nil {
			err = multierr.Combine(err, writeErr)
		}
	}
	if report != nil {
		printReport(c.App.Writer, report)
	}
	return err
}

// recordBuses replaces every bus with a recorder sharing one log.
func recordBuses(opened map[int]buses.I2C) *trace.Recorder {
	var rec *trace.Recorder
	for _, id := range lo.Keys(opened) {
		if rec == nil {
			rec = trace.NewRecorder(opened[id])
			opened[id] = rec
			continue
		}
		opened[id] = rec.Wrap(opened[id])
	}
	return rec
}

func writeTrace(path string, tr *trace.Trace) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return errors.Wrapf(tr.Encode(f), "writing trace %s", path)
}

func readTrace(path string) (tr *trace.Trace, err error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	tr, err = trace.Decode(f)
	return tr, errors.Wrapf(err, "reading trace %s", path)
}

func printReport(w io.Writer, r *fpdlink.Report) {
	t := table.NewWriter()
	t.AppendRow(table.Row{"Profile", r.Profile})
	t.AppendRow(table.Row{"Steps", r.Steps})
	t.AppendRow(table.Row{"Delays", r.Delay})
	if r.Resolution != nil {
		t.AppendRow(table.Row{"DP input", r.Resolution.String()})
	}
	if tp := r.Temperature; tp != nil {
		codes := "none"
		if len(tp.Codes) > 0 {
			codes = fmt.Sprint(tp.Codes)
		}
		t.AppendRow(table.Row{"Temperature", fmt.Sprintf("%d C (raw 0x%02x)", tp.TempC, tp.Raw)})
		t.AppendRow(table.Row{"Cap codes", codes})
	}
	if r.VideoInputReset {
		t.AppendRow(table.Row{"Video input", "reset"})
	}
	if r.FIFOOverflow > 0 {
		t.AppendRow(table.Row{"FIFO overflow", r.FIFOOverflow})
	}
	if r.Vtotal != nil {
		t.AppendRow(table.Row{"Vtotal", *r.Vtotal})
	}
	if r.Resets > 0 {
		t.AppendRow(table.Row{"Resets", r.Resets})
	}
	printf(w, "%s", t.Render())
}

// simulatedBoard returns a board whose only bus, with the id the profile selects, is bus.
func simulatedBoard(bus buses.I2C, params fpdlink.Params, logger logging.Logger) *board.I2CBoard {
	return board.NewFromBuses(map[int]buses.I2C{params.BoardID: bus}, params.BoardID, logger)
}

// RecordProfileAction is the corresponding Action for 'record'.
func RecordProfileAction(c *cli.Context) (err error) {
	b, err := newBench(c)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, b.Close())
	}()
	p, params, err := b.profile(c)
	if err != nil {
		return err
	}

	bus := fake.NewBus(b.logger.Sublogger("fake"))
	fake.BenchPresets().Apply(bus)
	rec := trace.NewRecorder(bus)
	s := fpdlink.NewSession(simulatedBoard(rec, params, b.logger.Sublogger("board")), b.logger.Sublogger("session"))
	s.Addr = b.cfg.LinkAddresses()
	if _, err := runWithoutDelays(c.Context, p, s, params); err != nil {
		return err
	}

	tr := rec.Trace(p.Name)
	if path := c.String(flagOutput); path != "" {
		return writeTrace(path, tr)
	}
	return tr.Encode(c.App.Writer)
}

// VerifyProfileAction is the corresponding Action for 'verify'.
func VerifyProfileAction(c *cli.Context) (err error) {
	b, err := newBench(c)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, b.Close())
	}()
	p, params, err := b.profile(c)
	if err != nil {
		return err
	}
	if c.Args().Len() < 2 {
		return errors.New("a reference trace file is required")
	}
	path := c.Args().Get(1)
	ref, err := readTrace(path)
	if err != nil {
		return err
	}

	replay := trace.NewReplay(ref)
	rec := trace.NewRecorder(replay)
	s := fpdlink.NewSession(simulatedBoard(rec, params, b.logger.Sublogger("board")), b.logger.Sublogger("session"))
	s.Addr = b.cfg.LinkAddresses()
	_, runErr := runWithoutDelays(c.Context, p, s, params)
	if runErr == nil {
		runErr = replay.Done()
	}
	if runErr != nil {
		printf(c.App.Writer, "%s", trace.Diff(ref, rec.Trace(p.Name)))
		return errors.Wrapf(runErr, "%s does not match %s", p.Name, path)
	}
	printf(c.App.Writer, "%s matches %s (%d operations)", p.Name, path, len(ref.Ops))
	return nil
}
