// Package genericlinux provides I2C buses through the Linux i2c-dev interface using periph.io.
package genericlinux

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"go.viam.com/fpdlink/components/board"
	"go.viam.com/fpdlink/components/board/buses"
	"go.viam.com/fpdlink/logging"
)

var hostInit = sync.OnceValue(func() error {
	_, err := host.Init()
	return err
})

func init() {
	board.RegisterBus("linux", newBus)
}

// busName maps "/dev/i2c-1" and "i2c-1" to the "1" periph registers the bus under.
func busName(bus string) string {
	bus = strings.TrimPrefix(bus, "/dev/")
	return strings.TrimPrefix(bus, "i2c-")
}

func newBus(ctx context.Context, conf board.BusConfig, logger logging.Logger) (buses.I2C, error) {
	if err := hostInit(); err != nil {
		return nil, errors.Wrap(err, "initializing periph host drivers")
	}
	name := busName(conf.Bus)
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "opening i2c bus %q", name)
	}
	if conf.SpeedHz != 0 {
		if err := bus.SetSpeed(physic.Frequency(conf.SpeedHz) * physic.Hertz); err != nil {
			logger.Warnw("bus does not support setting the clock", "bus", name, "error", err)
		}
	}
	logger.CDebugw(ctx, "opened i2c bus", "bus", bus.String())
	return newI2cBus(bus, name), nil
}
