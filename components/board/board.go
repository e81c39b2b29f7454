// Package board defines the I2C transaction API bring-up profiles run against, and an
// implementation of it over one or more configured buses.
//
// Device addresses are written the way the TI tooling prints them: the 8-bit form with the R/W bit
// clear (0x18 for a 983 serializer, 0x58 for a 984/988 deserializer). Buses take 7-bit addresses.
package board

import (
	"context"
)

// APB bridge registers. An APB read writes the address to RegAPBAddrLo/Hi, issues APBRead on
// RegAPBCtl and reads four little endian data bytes from RegAPBData.
const (
	RegAPBCtl    byte = 0x48
	RegAPBAddrLo byte = 0x49
	RegAPBAddrHi byte = 0x4a
	RegAPBData   byte = 0x4b

	// APBEnable enables the APB interface; writing the last data byte commits the write.
	APBEnable byte = 0x01
	// APBRead enables the interface and latches the addressed register into the data bytes.
	APBRead byte = 0x03
)

// A Board performs synchronous I2C transactions on the bus selected with SetID.
type Board interface {
	// WriteI2C writes a single byte register.
	WriteI2C(ctx context.Context, addr, register, value byte) error
	// ReadI2C reads count bytes starting at register.
	ReadI2C(ctx context.Context, addr, register byte, count int) ([]byte, error)
	// ReadAPBI2C reads a 32 bit APB register through the I2C mapped bridge.
	ReadAPBI2C(ctx context.Context, addr byte, apbRegister uint16) (uint32, error)
	// SetID selects the bus later calls use.
	SetID(ctx context.Context, id int) error
	// EndI2C releases every handle opened since the last EndI2C and reselects the default bus.
	EndI2C(ctx context.Context) error
}

// BusAddress converts an 8-bit TI style device address to the 7-bit address buses expect.
func BusAddress(addr byte) byte {
	return addr >> 1
}

// DeviceAddress converts a 7-bit bus address back to the 8-bit TI form.
func DeviceAddress(busAddr byte) byte {
	return busAddr << 1
}

// UpdateI2C performs a read-modify-write of one register: the byte read is passed to fn and its
// result written back. The written value is returned.
func UpdateI2C(ctx context.Context, b Board, addr, register byte, fn func(byte) byte) (byte, error) {
	data, err := b.ReadI2C(ctx, addr, register, 1)
	if err != nil {
		return 0, err
	}
	next := fn(data[0])
	return next, b.WriteI2C(ctx, addr, register, next)
}
