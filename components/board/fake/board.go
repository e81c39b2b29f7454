// Package fake implements an in-memory I2C bus modelling the register windows of a DS90Ux98x
// serializer and deserializer. It backs `fpdlink record` and the tests.
package fake

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/fpdlink/components/board"
	"go.viam.com/fpdlink/components/board/buses"
	"go.viam.com/fpdlink/logging"
)

// Indirect register window and page select bits.
const (
	regPageSelect byte = 0x40
	regIndOffset  byte = 0x41
	regIndData    byte = 0x42

	pageAutoIncrement byte = 0x02
	pageMask          byte = 0xFC

	apbLatch byte = 0x02
)

func init() {
	board.RegisterBus("fake", func(ctx context.Context, conf board.BusConfig, logger logging.Logger) (buses.I2C, error) {
		bus := NewBus(logger)
		BenchPresets().Apply(bus)
		return bus, nil
	})
}

type indKey struct {
	page   byte
	offset byte
}

// chip is the register state of one device.
type chip struct {
	regs     [256]byte
	indirect map[indKey]byte
	apb      map[uint16]uint32
	pointer  byte
}

func newChip() *chip {
	return &chip{indirect: map[indKey]byte{}, apb: map[uint16]uint32{}}
}

func (c *chip) page() byte {
	return c.regs[regPageSelect]
}

func (c *chip) apbAddr() uint16 {
	return uint16(c.regs[board.RegAPBAddrLo]) | uint16(c.regs[board.RegAPBAddrHi])<<8
}

func (c *chip) write(reg, val byte) {
	c.regs[reg] = val
	switch reg {
	case regIndData:
		off := c.regs[regIndOffset]
		c.indirect[indKey{c.page() & pageMask, off}] = val
		if c.page()&pageAutoIncrement != 0 {
			c.regs[regIndOffset] = off + 1
		}
	case board.RegAPBCtl:
		if val&apbLatch != 0 {
			data := c.apb[c.apbAddr()]
			for i := 0; i < 4; i++ {
				c.regs[board.RegAPBData+byte(i)] = byte(data >> (8 * i))
			}
		}
	case board.RegAPBData + 3:
		ctl := c.regs[board.RegAPBCtl]
		if ctl&board.APBEnable != 0 && ctl&apbLatch == 0 {
			var data uint32
			for i := 0; i < 4; i++ {
				data |= uint32(c.regs[board.RegAPBData+byte(i)]) << (8 * i)
			}
			c.apb[c.apbAddr()] = data
		}
	}
}

func (c *chip) read(reg byte) byte {
	if reg != regIndData {
		return c.regs[reg]
	}
	off := c.regs[regIndOffset]
	val := c.indirect[indKey{c.page() & pageMask, off}]
	if c.page()&pageAutoIncrement != 0 {
		c.regs[regIndOffset] = off + 1
	}
	return val
}

// Bus is an in-memory I2C bus. Every address answers; reads of registers never written return 0
// unless preset.
type Bus struct {
	mu     sync.Mutex
	logger logging.Logger
	chips  map[byte]*chip
	open   map[byte]bool

	// FailAddr, when non-zero, makes every transfer to that 8-bit address fail with a NACK.
	FailAddr byte
}

// NewBus returns an empty bus.
func NewBus(logger logging.Logger) *Bus {
	return &Bus{logger: logger, chips: map[byte]*chip{}, open: map[byte]bool{}}
}

// chipAt returns the chip at the 8-bit address, creating it. Callers hold mu.
func (b *Bus) chipAt(addr byte) *chip {
	c, ok := b.chips[addr]
	if !ok {
		c = newChip()
		b.chips[addr] = c
	}
	return c
}

// SetRegister presets a directly addressed register.
func (b *Bus) SetRegister(addr, reg, val byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chipAt(addr).regs[reg] = val
}

// Register returns a directly addressed register.
func (b *Bus) Register(addr, reg byte) byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chipAt(addr).regs[reg]
}

// SetIndirect presets a register behind the page/offset window. Only the page bits above the
// control bits are significant.
func (b *Bus) SetIndirect(addr, page, offset, val byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chipAt(addr).indirect[indKey{page & pageMask, offset}] = val
}

// Indirect returns a register behind the page/offset window.
func (b *Bus) Indirect(addr, page, offset byte) byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chipAt(addr).indirect[indKey{page & pageMask, offset}]
}

// SetAPB presets an APB register.
func (b *Bus) SetAPB(addr byte, reg uint16, val uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chipAt(addr).apb[reg] = val
}

// APB returns an APB register.
func (b *Bus) APB(addr byte, reg uint16) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chipAt(addr).apb[reg]
}

// OpenHandle opens a handle to the 7-bit address. Only one handle per address may be open.
func (b *Bus) OpenHandle(addr byte) (buses.I2CHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	devAddr := board.DeviceAddress(addr)
	if b.open[devAddr] {
		return nil, errors.Errorf("handle for device 0x%02x already open", devAddr)
	}
	b.open[devAddr] = true
	return &handle{bus: b, addr: devAddr}, nil
}

type handle struct {
	bus    *Bus
	addr   byte
	closed bool
}

func (h *handle) check() error {
	if h.closed {
		return errors.New("handle closed")
	}
	if h.bus.FailAddr != 0 && h.bus.FailAddr == h.addr {
		return errors.Errorf("I2C NACK from device 0x%02x", h.addr)
	}
	return nil
}

func (h *handle) Write(ctx context.Context, tx []byte) error {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	if err := h.check(); err != nil {
		return err
	}
	if len(tx) == 0 {
		return nil
	}
	c := h.bus.chipAt(h.addr)
	c.pointer = tx[0]
	for i, val := range tx[1:] {
		c.write(tx[0]+byte(i), val)
	}
	return nil
}

func (h *handle) Read(ctx context.Context, count int) ([]byte, error) {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	if err := h.check(); err != nil {
		return nil, err
	}
	c := h.bus.chipAt(h.addr)
	out := make([]byte, count)
	for i := range out {
		out[i] = c.read(c.pointer)
		c.pointer++
	}
	return out, nil
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
	c := h.bus.chipAt(h.addr)
	c.pointer = register
	h.bus.mu.Unlock()
	return h.Read(ctx, int(numBytes))
}

func (h *handle) WriteBlockData(ctx context.Context, register byte, data []byte) error {
	return h.Write(ctx, append([]byte{register}, data...))
}

func (h *handle) Close() error {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	delete(h.bus.open, h.addr)
	return nil
}
