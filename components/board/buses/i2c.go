// Package buses defines the I2C bus and handle interfaces shared by every board backend.
package buses

import (
	"context"
)

// I2C is one I2C bus of a bench.
type I2C interface {
	// OpenHandle returns a handle for the 7-bit address addr. It MUST be closed when done.
	OpenHandle(addr byte) (I2CHandle, error)
}

// I2CHandle performs transfers to one device of a bus.
type I2CHandle interface {
	Write(ctx context.Context, tx []byte) error
	Read(ctx context.Context, count int) ([]byte, error)

	ReadByteData(ctx context.Context, register byte) (byte, error)
	WriteByteData(ctx context.Context, register, data byte) error

	// ReadBlockData reads numBytes consecutive registers starting at register in one transfer.
	ReadBlockData(ctx context.Context, register byte, numBytes uint8) ([]byte, error)
	WriteBlockData(ctx context.Context, register byte, data []byte) error

	// Close releases the handle.
	Close() error
}
