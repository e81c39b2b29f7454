package fpdlink

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/fpdlink/components/board"
	"go.viam.com/fpdlink/logging"
)

// Device is one of the two chips of a link.
type Device int

// The chips of a link.
const (
	Ser Device = iota
	Des
)

func (d Device) String() string {
	switch d {
	case Ser:
		return "ser"
	case Des:
		return "des"
	default:
		return fmt.Sprintf("device(%d)", int(d))
	}
}

// Registers shared by the 983 serializer and the 984/988 deserializers.
const (
	RegReset      byte = 0x01
	RegGeneralCfg byte = 0x02
	RegI2CControl byte = 0x07
	RegPageSelect byte = 0x40
	RegIndOffset  byte = 0x41
	RegIndData    byte = 0x42
	RegAPBCtl     byte = board.RegAPBCtl
	RegAPBAddrLo  byte = board.RegAPBAddrLo
	RegAPBAddrHi  byte = board.RegAPBAddrHi
	RegAPBData    byte = board.RegAPBData

	// SoftReset restarts the digital blocks without losing register state.
	SoftReset byte = 0x01
)

// Addresses are the 8-bit device addresses of a link.
type Addresses struct {
	Ser byte `json:"ser"`
	// DesAddr is the deserializer's strap address, programmed into the serializer.
	DesAddr byte `json:"des"`
	// DesAlias is the address the serializer answers for the deserializer. All deserializer
	// transfers go to it.
	DesAlias byte `json:"des_alias"`
}

// DefaultAddresses are the strap addresses of the supported boards.
var DefaultAddresses = Addresses{Ser: 0x18, DesAddr: 0x58, DesAlias: 0x58}

// Resolution is the DisplayPort input resolution the serializer detected.
type Resolution struct {
	H uint32
	V uint32
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.H, r.V)
}

// Report collects what a run measured along the way.
type Report struct {
	Profile     string
	Params      Params
	Steps       int
	Resolution  *Resolution
	Temperature *TempPlan
	// VideoInputReset is set when the serializer had no valid video and was reset.
	VideoInputReset bool
	FIFOOverflow    uint32
	Vtotal          *uint16
	// Resets counts soft resets issued by checks that found a fault.
	Resets int
	// Delay is the total time spent in open loop delays.
	Delay time.Duration
}

// Session is one bring-up run against a board.
type Session struct {
	Board  board.Board
	Addr   Addresses
	Clock  clock.Clock
	Logger logging.Logger
	Report *Report
}

// NewSession returns a session using the real clock and the default addresses.
func NewSession(b board.Board, logger logging.Logger) *Session {
	return &Session{
		Board:  b,
		Addr:   DefaultAddresses,
		Clock:  clock.New(),
		Logger: logger,
		Report: &Report{},
	}
}

// Address returns the 8-bit address transfers to d go to.
func (s *Session) Address(d Device) byte {
	if d == Ser {
		return s.Addr.Ser
	}
	return s.Addr.DesAlias
}

// Write writes a register of d.
func (s *Session) Write(ctx context.Context, d Device, reg, val byte) error {
	return s.Board.WriteI2C(ctx, s.Address(d), reg, val)
}

// Read reads a register of d.
func (s *Session) Read(ctx context.Context, d Device, reg byte) (byte, error) {
	data, err := s.Board.ReadI2C(ctx, s.Address(d), reg, 1)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

// Update performs a read-modify-write of a register of d.
func (s *Session) Update(ctx context.Context, d Device, reg byte, fn func(byte) byte) error {
	_, err := board.UpdateI2C(ctx, s.Board, s.Address(d), reg, fn)
	return err
}

// ReadAPB reads a 32-bit APB register of d.
func (s *Session) ReadAPB(ctx context.Context, d Device, apbReg uint16) (uint32, error) {
	return s.Board.ReadAPBI2C(ctx, s.Address(d), apbReg)
}

// WriteAPB writes a 32-bit APB register of d. The interface must already be enabled.
func (s *Session) WriteAPB(ctx context.Context, d Device, apbReg uint16, data uint32) error {
	for _, step := range APB(d, apbReg, data, "") {
		if err := s.Write(ctx, d, step.Reg, step.Val); err != nil {
			return err
		}
	}
	return nil
}

// SoftReset resets the digital blocks of d.
func (s *Session) SoftReset(ctx context.Context, d Device) error {
	return s.Write(ctx, d, RegReset, SoftReset)
}

// Sleep waits d on the session clock, returning early if ctx is done.
func (s *Session) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := s.Clock.Timer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "waiting %v", d)
	case <-timer.C:
		s.Report.Delay += d
		return nil
	}
}
