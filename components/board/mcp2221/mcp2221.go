// Package mcp2221 drives I2C through a Microchip MCP2221A USB-HID bridge, for benches where the
// SerDes board is not wired to a Linux I2C controller.
//
// Datasheet: http://ww1.microchip.com/downloads/en/devicedoc/20005565b.pdf
package mcp2221

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/karalabe/hid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/fpdlink/components/board"
	"go.viam.com/fpdlink/components/board/buses"
	"go.viam.com/fpdlink/logging"
)

// USB identifiers of a factory programmed MCP2221A.
const (
	VID uint16 = 0x04D8
	PID uint16 = 0x00DD
)

const (
	msgSize = 64
	clkHz   = 12000000

	// DefaultSpeedHz is the bus clock used when the config does not set one.
	DefaultSpeedHz = 400000

	cmdStatus          byte = 0x10
	cmdI2CWrite        byte = 0x90
	cmdI2CWriteNoStop  byte = 0x94
	cmdI2CRead         byte = 0x91
	cmdI2CReadRepStart byte = 0x93
	cmdI2CReadGetData  byte = 0x40

	stateIdle         byte = 0x00
	stateAddrNACK     byte = 0x25
	statePartialData  byte = 0x41
	stateWritingNoStp byte = 0x45
	stateReadPartial  byte = 0x54
	stateReadComplete byte = 0x55
	stateReadError    byte = 0x7F

	transferMax = 60
	maxRetries  = 50
	retryDelay  = 300 * time.Microsecond
)

var timeoutStates = map[byte]bool{0x12: true, 0x17: true, 0x23: true, 0x44: true, 0x52: true, 0x62: true}

func init() {
	board.RegisterBus("mcp2221", func(ctx context.Context, conf board.BusConfig, logger logging.Logger) (buses.I2C, error) {
		return Open(conf.Index, conf.SpeedHz, logger)
	})
}

// device is the part of *hid.Device the bridge uses.
type device interface {
	Write(b []byte) (int, error)
	Read(b []byte) (int, error)
	Close() error
}

// Bus is an I2C bus behind one MCP2221A.
type Bus struct {
	mu     sync.Mutex
	dev    device
	clk    clock.Clock
	logger logging.Logger
	open   map[byte]bool
}

// Open opens the idx'th attached MCP2221A and sets its I2C clock.
func Open(idx int, speedHz uint32, logger logging.Logger) (*Bus, error) {
	if !hid.Supported() {
		return nil, errors.New("USB HID is not supported on this platform")
	}
	infos := hid.Enumerate(VID, PID)
	if idx < 0 || idx >= len(infos) {
		return nil, errors.Errorf("MCP2221A index %d out of range, %d attached", idx, len(infos))
	}
	dev, err := infos[idx].Open()
	if err != nil {
		return nil, errors.Wrapf(err, "opening MCP2221A %s", infos[idx].Serial)
	}
	logger.Debugw("opened MCP2221A", "serial", infos[idx].Serial, "path", infos[idx].Path)
	bus := newBus(dev, clock.New(), logger)
	if speedHz == 0 {
		speedHz = DefaultSpeedHz
	}
	if err := bus.SetSpeed(speedHz); err != nil {
		return nil, multierr.Combine(err, dev.Close())
	}
	return bus, nil
}

func newBus(dev device, clk clock.Clock, logger logging.Logger) *Bus {
	return &Bus{dev: dev, clk: clk, logger: logger, open: map[byte]bool{}}
}

// send writes one report and reads its response. Callers hold mu.
func (b *Bus) send(cmd []byte) ([]byte, error) {
	if _, err := b.dev.Write(cmd); err != nil {
		return nil, errors.Wrapf(err, "writing report 0x%02x", cmd[0])
	}
	rsp := make([]byte, msgSize)
	n, err := b.dev.Read(rsp)
	if err != nil {
		return nil, errors.Wrapf(err, "reading response to 0x%02x", cmd[0])
	}
	if n < msgSize {
		return nil, errors.Errorf("short response to 0x%02x: %d of %d bytes", cmd[0], n, msgSize)
	}
	if rsp[0] != cmd[0] {
		return nil, errors.Errorf("response 0x%02x does not echo command 0x%02x", rsp[0], cmd[0])
	}
	return rsp, nil
}

func newCmd(cmd byte) []byte {
	msg := make([]byte, msgSize)
	msg[0] = cmd
	return msg
}

// state returns the bridge's I2C state machine state. Callers hold mu.
func (b *Bus) state() (byte, error) {
	rsp, err := b.send(newCmd(cmdStatus))
	if err != nil {
		return 0, err
	}
	return rsp[8], nil
}

// cancel aborts a stuck transfer. Callers hold mu.
func (b *Bus) cancel() error {
	cmd := newCmd(cmdStatus)
	cmd[2] = 0x10
	if _, err := b.send(cmd); err != nil {
		return errors.Wrap(err, "cancelling I2C transfer")
	}
	b.clk.Sleep(retryDelay)
	return nil
}

// SetSpeed sets the I2C clock.
func (b *Bus) SetSpeed(hz uint32) error {
	if hz > clkHz/3 || hz < clkHz/258 {
		return errors.Errorf("invalid I2C speed %d Hz", hz)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	cmd := newCmd(cmdStatus)
	cmd[3] = 0x20
	cmd[4] = byte(clkHz/hz - 3)
	rsp, err := b.send(cmd)
	if err != nil {
		return err
	}
	if rsp[3] == 0x21 {
		return errors.New("cannot change I2C speed while a transfer is in progress")
	}
	return nil
}

func checkState(state, addr byte) error {
	if state == stateAddrNACK {
		return errors.Errorf("I2C NACK from address 0x%02x", addr)
	}
	if timeoutStates[state] {
		return errors.Errorf("I2C transfer to address 0x%02x timed out (state 0x%02x)", addr, state)
	}
	return nil
}

// prepare cancels any transfer left behind by an earlier failure. Callers hold mu.
func (b *Bus) prepare(allowNoStop bool) error {
	state, err := b.state()
	if err != nil {
		return err
	}
	if state == stateIdle || (allowNoStop && state == stateWritingNoStp) {
		return nil
	}
	return b.cancel()
}

// write transfers data to the 7-bit addr. Without stop the bus is held for a repeated start.
// Callers hold mu.
func (b *Bus) write(ctx context.Context, addr byte, data []byte, stop bool) error {
	if len(data) > transferMax {
		return errors.Errorf("cannot write %d bytes in one transfer", len(data))
	}
	if err := b.prepare(false); err != nil {
		return err
	}
	cmd := newCmd(cmdI2CWrite)
	if !stop {
		cmd[0] = cmdI2CWriteNoStop
	}
	cmd[1] = byte(len(data))
	cmd[2] = byte(len(data) >> 8)
	cmd[3] = addr << 1
	copy(cmd[4:], data)

	sent := false
	for retry := 0; retry < maxRetries && !sent; retry++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		rsp, err := b.send(cmd)
		if err != nil {
			return err
		}
		if rsp[1] == 0 {
			sent = true
			break
		}
		if err := checkState(rsp[2], addr); err != nil {
			return err
		}
		b.clk.Sleep(retryDelay)
	}
	if !sent {
		return errors.Errorf("write to address 0x%02x: too many retries", addr)
	}

	for retry := 0; retry < maxRetries; retry++ {
		state, err := b.state()
		if err != nil {
			return err
		}
		if state == stateIdle || (!stop && state == stateWritingNoStp) {
			return nil
		}
		if err := checkState(state, addr); err != nil {
			return err
		}
		b.clk.Sleep(retryDelay)
	}
	return errors.Errorf("write to address 0x%02x: too many retries", addr)
}

// read reads count bytes from the 7-bit addr, with a repeated start after a no-stop write.
// Callers hold mu.
func (b *Bus) read(ctx context.Context, addr byte, count int, repStart bool) ([]byte, error) {
	if count > transferMax {
		return nil, errors.Errorf("cannot read %d bytes in one transfer", count)
	}
	if err := b.prepare(repStart); err != nil {
		return nil, err
	}
	cmd := newCmd(cmdI2CRead)
	if repStart {
		cmd[0] = cmdI2CReadRepStart
	}
	cmd[1] = byte(count)
	cmd[2] = byte(count >> 8)
	cmd[3] = addr<<1 | 0x01
	rsp, err := b.send(cmd)
	if err != nil {
		return nil, err
	}
	if rsp[1] != 0 {
		if err := checkState(rsp[2], addr); err != nil {
			return nil, err
		}
		return nil, errors.Errorf("read from address 0x%02x rejected (state 0x%02x)", addr, rsp[2])
	}

	for retry := 0; retry < maxRetries; retry++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rsp, err := b.send(newCmd(cmdI2CReadGetData))
		if err != nil {
			return nil, err
		}
		if rsp[1] == statePartialData || rsp[3] == stateReadError {
			b.clk.Sleep(retryDelay)
			continue
		}
		if err := checkState(rsp[2], addr); err != nil {
			return nil, err
		}
		if rsp[2] == stateIdle || rsp[2] == stateReadComplete || rsp[2] == stateReadPartial {
			if int(rsp[3]) < count {
				return nil, errors.Errorf("read from address 0x%02x returned %d of %d bytes", addr, rsp[3], count)
			}
			out := make([]byte, count)
			copy(out, rsp[4:4+count])
			return out, nil
		}
		b.clk.Sleep(retryDelay)
	}
	return nil, errors.Errorf("read from address 0x%02x: too many retries", addr)
}

// OpenHandle opens a handle to the 7-bit address.
func (b *Bus) OpenHandle(addr byte) (buses.I2CHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.open[addr] {
		return nil, errors.Errorf("handle for address 0x%02x already open", addr)
	}
	b.open[addr] = true
	return &handle{bus: b, addr: addr}, nil
}

// Close releases the USB device.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dev.Close()
}

type handle struct {
	bus  *Bus
	addr byte
}

func (h *handle) Write(ctx context.Context, tx []byte) error {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	return h.bus.write(ctx, h.addr, tx, true)
}

func (h *handle) Read(ctx context.Context, count int) ([]byte, error) {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	return h.bus.read(ctx, h.addr, count, false)
}

func (h *handle) ReadByteData(ctx context.Context, register byte) (byte, error) {
	data, err := h.ReadBlockData(ctx, register, 1)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

func (h *handle) WriteByteData(ctx context.Context, register, data byte) error {
	return h.Write(ctx, []byte{register, data})
}

func (h *handle) ReadBlockData(ctx context.Context, register byte, numBytes uint8) ([]byte, error) {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	if err := h.bus.write(ctx, h.addr, []byte{register}, false); err != nil {
		return nil, err
	}
	return h.bus.read(ctx, h.addr, int(numBytes), true)
}

func (h *handle) WriteBlockData(ctx context.Context, register byte, data []byte) error {
	return h.Write(ctx, append([]byte{register}, data...))
}

func (h *handle) Close() error {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	delete(h.bus.open, h.addr)
	return nil
}
