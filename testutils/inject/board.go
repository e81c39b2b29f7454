// Package inject provides dependency injected structures for testing.
package inject

import (
	"context"

	"go.viam.com/fpdlink/components/board"
)

// Board is an injected board.
type Board struct {
	board.Board
	WriteI2CFunc   func(ctx context.Context, addr, register, value byte) error
	ReadI2CFunc    func(ctx context.Context, addr, register byte, count int) ([]byte, error)
	ReadAPBI2CFunc func(ctx context.Context, addr byte, apbRegister uint16) (uint32, error)
	SetIDFunc      func(ctx context.Context, id int) error
	EndI2CFunc     func(ctx context.Context) error
}

// WriteI2C calls the injected WriteI2C or the real version.
func (b *Board) WriteI2C(ctx context.Context, addr, register, value byte) error {
	if b.WriteI2CFunc == nil {
		return b.Board.WriteI2C(ctx, addr, register, value)
	}
	return b.WriteI2CFunc(ctx, addr, register, value)
}

// ReadI2C calls the injected ReadI2C or the real version.
func (b *Board) ReadI2C(ctx context.Context, addr, register byte, count int) ([]byte, error) {
	if b.ReadI2CFunc == nil {
		return b.Board.ReadI2C(ctx, addr, register, count)
	}
	return b.ReadI2CFunc(ctx, addr, register, count)
}

// ReadAPBI2C calls the injected ReadAPBI2C or the real version.
func (b *Board) ReadAPBI2C(ctx context.Context, addr byte, apbRegister uint16) (uint32, error) {
	if b.ReadAPBI2CFunc == nil {
		return b.Board.ReadAPBI2C(ctx, addr, apbRegister)
	}
	return b.ReadAPBI2CFunc(ctx, addr, apbRegister)
}

// SetID calls the injected SetID or the real version.
func (b *Board) SetID(ctx context.Context, id int) error {
	if b.SetIDFunc == nil {
		return b.Board.SetID(ctx, id)
	}
	return b.SetIDFunc(ctx, id)
}

// EndI2C calls the injected EndI2C or the real version.
func (b *Board) EndI2C(ctx context.Context) error {
	if b.EndI2CFunc == nil {
		return b.Board.EndI2C(ctx)
	}
	return b.EndI2CFunc(ctx)
}
