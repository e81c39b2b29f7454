package cli

import (
	"context"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/fpdlink/config"
	"go.viam.com/fpdlink/fpdlink"
	"go.viam.com/fpdlink/logging"
)

// bench is what every profile command loads first: the config and a logger writing to the
// app's error stream and, if configured, a log file.
type bench struct {
	cfg     *config.Config
	logger  logging.Logger
	logFile io.Closer
}

func newBench(c *cli.Context) (*bench, error) {
	logger, reg := logging.New("fpdlink")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	var patterns []logging.LoggerPatternConfig
	if c.Bool(flagDebug) {
		patterns = append(patterns, logging.LoggerPatternConfig{Pattern: "*", Level: "debug"})
		if err := reg.UpdateConfig(patterns, logger); err != nil {
			return nil, err
		}
	}

	b := &bench{cfg: config.Default(), logger: logger}
	if path := c.String(flagConfig); path != "" {
		cfg, err := config.Read(path, logger)
		if err != nil {
			return nil, errors.Wrapf(err, "reading config %s", path)
		}
		b.cfg = cfg
	}

	logFile := b.cfg.LogFile
	if c.IsSet(flagLogFile) {
		logFile = c.String(flagLogFile)
	}
	if logFile != "" {
		appender, closer := logging.NewFileAppender(logFile)
		logger.AddAppender(appender)
		b.logFile = closer
	}

	if len(b.cfg.LogConfig) > 0 {
		patterns = append(patterns, b.cfg.LogConfig...)
		if err := reg.UpdateConfig(patterns, logger); err != nil {
			return nil, multierr.Combine(err, b.Close())
		}
	}
	return b, nil
}

// Close flushes the logger and closes the log file.
func (b *bench) Close() error {
	//nolint:errcheck // syncing a terminal fails on some platforms
	b.logger.Sync()
	if b.logFile == nil {
		return nil
	}
	return b.logFile.Close()
}

// profile looks up the profile named by the first argument and resolves its params from the
// defaults, the config file and the command line, in that order.
func (b *bench) profile(c *cli.Context) (*fpdlink.Profile, fpdlink.Params, error) {
	if c.Args().Len() < 1 {
		return nil, fpdlink.Params{}, errors.New("a profile name is required, see fpdlink list")
	}
	p, err := fpdlink.Lookup(c.Args().First())
	if err != nil {
		return nil, fpdlink.Params{}, err
	}
	overrides := paramOverrides(c)
	if p.Defaults.DesPCLK == 0 && (overrides.DesPCLK != nil || overrides.SerPCLK != nil) {
		warningf(c.App.ErrWriter, "profile %s uses fixed dividers, --%s and --%s are ignored", p.Name, flagDesPCLK, flagSerPCLK)
	}
	if !p.SelectsBoard && overrides.BoardID != nil {
		warningf(c.App.ErrWriter, "profile %s runs on the default bus, --%s is ignored", p.Name, flagBoardID)
	}
	return p, b.cfg.Params(p, overrides), nil
}

func paramOverrides(c *cli.Context) fpdlink.ParamOverrides {
	var o fpdlink.ParamOverrides
	if c.IsSet(flagDesPCLK) {
		v := c.Float64(flagDesPCLK)
		o.DesPCLK = &v
	}
	if c.IsSet(flagSerPCLK) {
		v := c.Float64(flagSerPCLK)
		o.SerPCLK = &v
	}
	if c.IsSet(flagNoPatGen) {
		v := !c.Bool(flagNoPatGen)
		o.PatGen = &v
	}
	if c.IsSet(flagBoardID) {
		v := c.Int(flagBoardID)
		o.BoardID = &v
	}
	return o
}

// runWithoutDelays runs p with a mock clock that is advanced until the run returns, so simulated
// and replayed benches do not wait out the open loop delays.
func runWithoutDelays(
	ctx context.Context,
	p *fpdlink.Profile,
	s *fpdlink.Session,
	params fpdlink.Params,
) (*fpdlink.Report, error) {
	clk := clock.NewMock()
	s.Clock = clk

	type result struct {
		report *fpdlink.Report
		err    error
	}
	done := make(chan result, 1)
	go func() {
		report, err := p.Run(ctx, s, params)
		done <- result{report, err}
	}()
	for {
		select {
		case res := <-done:
			return res.report, res.err
		default:
			clk.Add(50 * time.Millisecond)
		}
	}
}
