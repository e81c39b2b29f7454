package board

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/fpdlink/components/board/buses"
	"go.viam.com/fpdlink/logging"
)

type handleKey struct {
	busID int
	addr  byte
}

// I2CBoard implements Board over a set of numbered buses. Handles are opened lazily per device and
// kept until EndI2C.
type I2CBoard struct {
	mu        sync.Mutex
	logger    logging.Logger
	buses     map[int]buses.I2C
	defaultID int
	current   int
	handles   map[handleKey]buses.I2CHandle
}

// New opens every bus in conf using the registered backends.
func New(ctx context.Context, conf Config, logger logging.Logger) (*I2CBoard, error) {
	opened, err := OpenBuses(ctx, conf, logger)
	if err != nil {
		return nil, err
	}
	return NewFromBuses(opened, conf.DefaultID, logger), nil
}

// OpenBuses opens every bus in conf, keyed by bus id. On error, buses already opened are closed.
func OpenBuses(ctx context.Context, conf Config, logger logging.Logger) (map[int]buses.I2C, error) {
	if err := conf.Validate("board"); err != nil {
		return nil, err
	}
	opened := make(map[int]buses.I2C, len(conf.Buses))
	for _, busConf := range conf.Buses {
		constructor, _ := lookupBus(busConf.Type)
		bus, err := constructor(ctx, busConf, logger.Sublogger(busConf.Name))
		if err != nil {
			closeErr := closeBuses(opened)
			return nil, multierr.Combine(errors.Wrapf(err, "opening %s bus %q", busConf.Type, busConf.Name), closeErr)
		}
		opened[busConf.ID] = bus
	}
	return opened, nil
}

// NewFromBuses returns a board over already opened buses.
func NewFromBuses(busesByID map[int]buses.I2C, defaultID int, logger logging.Logger) *I2CBoard {
	return &I2CBoard{
		logger:    logger,
		buses:     busesByID,
		defaultID: defaultID,
		current:   defaultID,
		handles:   map[handleKey]buses.I2CHandle{},
	}
}

// handle returns the open handle for addr on the current bus. Callers hold mu.
func (b *I2CBoard) handle(addr byte) (buses.I2CHandle, error) {
	key := handleKey{b.current, BusAddress(addr)}
	if h, ok := b.handles[key]; ok {
		return h, nil
	}
	bus, ok := b.buses[b.current]
	if !ok {
		return nil, errors.Errorf("no bus with id %d", b.current)
	}
	h, err := bus.OpenHandle(key.addr)
	if err != nil {
		return nil, errors.Wrapf(err, "opening handle for device 0x%02x", addr)
	}
	b.handles[key] = h
	return h, nil
}

func (b *I2CBoard) writeI2C(ctx context.Context, addr, register, value byte) error {
	h, err := b.handle(addr)
	if err != nil {
		return err
	}
	if err := h.WriteByteData(ctx, register, value); err != nil {
		return errors.Wrapf(err, "writing 0x%02x to register 0x%02x of device 0x%02x", value, register, addr)
	}
	return nil
}

func (b *I2CBoard) readI2C(ctx context.Context, addr, register byte, count int) ([]byte, error) {
	if count < 1 || count > 0xFF {
		return nil, errors.Errorf("cannot read %d bytes from device 0x%02x", count, addr)
	}
	h, err := b.handle(addr)
	if err != nil {
		return nil, err
	}
	if count == 1 {
		val, err := h.ReadByteData(ctx, register)
		if err != nil {
			return nil, errors.Wrapf(err, "reading register 0x%02x of device 0x%02x", register, addr)
		}
		return []byte{val}, nil
	}
	data, err := h.ReadBlockData(ctx, register, uint8(count))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %d bytes at register 0x%02x of device 0x%02x", count, register, addr)
	}
	return data, nil
}

// WriteI2C writes a single byte register.
func (b *I2CBoard) WriteI2C(ctx context.Context, addr, register, value byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writeI2C(ctx, addr, register, value)
}

// ReadI2C reads count consecutive registers.
func (b *I2CBoard) ReadI2C(ctx context.Context, addr, register byte, count int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.readI2C(ctx, addr, register, count)
}

// ReadAPBI2C reads a 32 bit APB register.
func (b *I2CBoard) ReadAPBI2C(ctx context.Context, addr byte, apbRegister uint16) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, w := range [][2]byte{
		{RegAPBAddrLo, byte(apbRegister)},
		{RegAPBAddrHi, byte(apbRegister >> 8)},
		{RegAPBCtl, APBRead},
	} {
		if err := b.writeI2C(ctx, addr, w[0], w[1]); err != nil {
			return 0, errors.Wrapf(err, "APB read of 0x%03x", apbRegister)
		}
	}
	data, err := b.readI2C(ctx, addr, RegAPBData, 4)
	if err != nil {
		return 0, errors.Wrapf(err, "APB read of 0x%03x", apbRegister)
	}
	return uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24, nil
}

// SetID selects the bus later calls use.
func (b *I2CBoard) SetID(ctx context.Context, id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.buses[id]; !ok {
		return errors.Errorf("no bus with id %d", id)
	}
	if id != b.current {
		b.logger.CDebugf(ctx, "selecting bus %d", id)
	}
	b.current = id
	return nil
}

// EndI2C closes every open handle and reselects the default bus.
func (b *I2CBoard) EndI2C(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.endI2C(ctx)
}

func (b *I2CBoard) endI2C(ctx context.Context) error {
	var errs error
	for key, h := range b.handles {
		if err := h.Close(); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "closing handle for device 0x%02x on bus %d",
				DeviceAddress(key.addr), key.busID))
		}
	}
	b.logger.CDebugf(ctx, "released %d handles", len(b.handles))
	b.handles = map[handleKey]buses.I2CHandle{}
	b.current = b.defaultID
	return errs
}

// Close ends the session and closes the buses that hold OS resources.
func (b *I2CBoard) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return multierr.Combine(b.endI2C(ctx), closeBuses(b.buses))
}

func closeBuses(busesByID map[int]buses.I2C) error {
	var errs error
	for id, bus := range busesByID {
		if closer, ok := bus.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = multierr.Append(errs, errors.Wrapf(err, "closing bus %d", id))
			}
		}
	}
	return errs
}
