package genericlinux

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"

	"go.viam.com/fpdlink/components/board/buses"
)

// i2cBus wraps a periph bus and enforces one open handle per address.
type i2cBus struct {
	mu   sync.Mutex
	bus  i2c.Bus
	name string
	open map[byte]bool
}

func newI2cBus(bus i2c.Bus, name string) *i2cBus {
	return &i2cBus{bus: bus, name: name, open: map[byte]bool{}}
}

// This lets the i2cBus type implement the buses.I2C interface.
func (b *i2cBus) OpenHandle(addr byte) (buses.I2CHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.open[addr] {
		return nil, errors.Errorf("handle for address 0x%02x on bus %s already open", addr, b.name)
	}
	b.open[addr] = true
	return &localI2c{parent: b, dev: &i2c.Dev{Bus: b.bus, Addr: uint16(addr)}}, nil
}

func (b *i2cBus) Close() error {
	if closer, ok := b.bus.(i2c.BusCloser); ok {
		return closer.Close()
	}
	return nil
}

// localI2c is a handle to one device on an i2cBus.
type localI2c struct {
	parent *i2cBus
	dev    *i2c.Dev
}

func (h *localI2c) tx(ctx context.Context, w, r []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := h.dev.Tx(w, r); err != nil {
		return errors.Wrapf(err, "I2C transfer to address 0x%02x on bus %s", h.dev.Addr, h.parent.name)
	}
	return nil
}

// This helps the localI2c struct implement the buses.I2CHandle interface.
func (h *localI2c) Write(ctx context.Context, tx []byte) error {
	return h.tx(ctx, tx, nil)
}

// This helps the localI2c struct implement the buses.I2CHandle interface.
func (h *localI2c) Read(ctx context.Context, count int) ([]byte, error) {
	buffer := make([]byte, count)
	if err := h.tx(ctx, nil, buffer); err != nil {
		return nil, err
	}
	return buffer, nil
}

// This helps the localI2c struct implement the buses.I2CHandle interface.
func (h *localI2c) ReadByteData(ctx context.Context, register byte) (byte, error) {
	data, err := h.ReadBlockData(ctx, register, 1)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

// This helps the localI2c struct implement the buses.I2CHandle interface.
func (h *localI2c) WriteByteData(ctx context.Context, register, data byte) error {
	return h.tx(ctx, []byte{register, data}, nil)
}

// ReadBlockData writes the register address and reads numBytes back in a single combined
// transfer. The DS90Ux98x advances its register pointer after each byte.
func (h *localI2c) ReadBlockData(ctx context.Context, register byte, numBytes uint8) ([]byte, error) {
	results := make([]byte, numBytes)
	if err := h.tx(ctx, []byte{register}, results); err != nil {
		return nil, err
	}
	return results, nil
}

// This helps the localI2c struct implement the buses.I2CHandle interface.
func (h *localI2c) WriteBlockData(ctx context.Context, register byte, data []byte) error {
	rawData := make([]byte, len(data)+1)
	rawData[0] = register
	copy(rawData[1:], data)
	return h.tx(ctx, rawData, nil)
}

func (h *localI2c) Close() error {
	h.parent.mu.Lock()
	defer h.parent.mu.Unlock()
	delete(h.parent.open, byte(h.dev.Addr))
	return nil
}
