package mcp2221

import (
	"context"
	"fmt"
	"testing"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"

	"go.viam.com/fpdlink/logging"
)

// simBridge answers HID reports the way an MCP2221A with targets behind it does.
type simBridge struct {
	regs     map[byte]map[byte]byte
	pointer  map[byte]byte
	nackAddr byte
	busy     int
	state    byte
	pending  []byte
	divider  byte
	reports  [][]byte
	last     []byte
	closed   bool
}

func newSimBridge() *simBridge {
	return &simBridge{regs: map[byte]map[byte]byte{}, pointer: map[byte]byte{}}
}

func (s *simBridge) target(addr byte) map[byte]byte {
	if s.regs[addr] == nil {
		s.regs[addr] = map[byte]byte{}
	}
	return s.regs[addr]
}

func (s *simBridge) Write(b []byte) (int, error) {
	s.reports = append(s.reports, append([]byte(nil), b...))
	rsp := make([]byte, msgSize)
	rsp[0] = b[0]
	switch b[0] {
	case cmdStatus:
		if b[2] == 0x10 {
			s.state = stateIdle
		}
		if b[3] == 0x20 {
			s.divider = b[4]
		}
		rsp[8] = s.state
	case cmdI2CWrite, cmdI2CWriteNoStop:
		if s.busy > 0 {
			s.busy--
			rsp[1] = 0x01
			rsp[2] = statePartialData
			break
		}
		addr := b[3] >> 1
		if addr == s.nackAddr {
			s.state = stateAddrNACK
			break
		}
		data := b[4 : 4+int(b[1])]
		s.pointer[addr] = data[0]
		for i, v := range data[1:] {
			s.target(addr)[data[0]+byte(i)] = v
		}
		s.state = stateIdle
		if b[0] == cmdI2CWriteNoStop {
			s.state = stateWritingNoStp
		}
	case cmdI2CRead, cmdI2CReadRepStart:
		addr := b[3] >> 1
		s.pending = nil
		for i := 0; i < int(b[1]); i++ {
			s.pending = append(s.pending, s.target(addr)[s.pointer[addr]+byte(i)])
		}
		s.state = stateReadComplete
	case cmdI2CReadGetData:
		rsp[2] = stateReadComplete
		rsp[3] = byte(len(s.pending))
		copy(rsp[4:], s.pending)
		s.state = stateIdle
	}
	s.last = rsp
	return len(b), nil
}

func (s *simBridge) Read(b []byte) (int, error) {
	return copy(b, s.last), nil
}

func (s *simBridge) Close() error {
	s.closed = true
	return nil
}

func TestRegisterAccess(t *testing.T) {
	ctx := context.Background()
	sim := newSimBridge()
	bus := newBus(sim, clock.New(), logging.NewTestLogger(t))

	test.That(t, bus.SetSpeed(400000), test.ShouldBeNil)
	test.That(t, sim.divider, test.ShouldEqual, byte(27))
	test.That(t, bus.SetSpeed(10), test.ShouldNotBeNil)

	h, err := bus.OpenHandle(0x0c)
	test.That(t, err, test.ShouldBeNil)
	_, err = bus.OpenHandle(0x0c)
	test.That(t, err, test.ShouldNotBeNil)

	test.That(t, h.WriteByteData(ctx, 0x07, 0x98), test.ShouldBeNil)
	test.That(t, sim.regs[0x0c][0x07], test.ShouldEqual, byte(0x98))
	write := sim.reports[len(sim.reports)-2]
	test.That(t, write[:6], test.ShouldResemble, []byte{cmdI2CWrite, 2, 0, 0x18, 0x07, 0x98})

	sim.target(0x0c)[0x4b] = 0xd0
	sim.target(0x0c)[0x4c] = 0x07
	data, err := h.ReadBlockData(ctx, 0x4b, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, data, test.ShouldResemble, []byte{0xd0, 0x07})

	v, err := h.ReadByteData(ctx, 0x07)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldEqual, byte(0x98))

	// A busy bridge is retried.
	sim.busy = 2
	test.That(t, h.WriteByteData(ctx, 0x01, 0x01), test.ShouldBeNil)
	test.That(t, sim.regs[0x0c][0x01], test.ShouldEqual, byte(0x01))

	test.That(t, h.Close(), test.ShouldBeNil)
	test.That(t, bus.Close(), test.ShouldBeNil)
	test.That(t, sim.closed, test.ShouldBeTrue)
}

func TestNACKRecovers(t *testing.T) {
	ctx := context.Background()
	sim := newSimBridge()
	sim.nackAddr = 0x2c
	bus := newBus(sim, clock.New(), logging.NewTestLogger(t))

	des, err := bus.OpenHandle(0x2c)
	test.That(t, err, test.ShouldBeNil)
	err = des.WriteByteData(ctx, 0x01, 0x01)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "NACK from address 0x2c")
	test.That(t, fmt.Sprintf("%+v", err), test.ShouldContainSubstring, "mcp2221.checkState")

	// The next transfer cancels the failed one first.
	ser, err := bus.OpenHandle(0x0c)
	test.That(t, err, test.ShouldBeNil)
	reports := len(sim.reports)
	test.That(t, ser.WriteByteData(ctx, 0x01, 0x02), test.ShouldBeNil)
	cancel := sim.reports[reports+1]
	test.That(t, cancel[0], test.ShouldEqual, cmdStatus)
	test.That(t, cancel[2], test.ShouldEqual, byte(0x10))

	_, err = ser.ReadBlockData(ctx, 0x00, transferMax+1)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, fmt.Sprintf("%+v", err), test.ShouldContainSubstring, "mcp2221.(*Bus).read")

	err = bus.SetSpeed(10)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, fmt.Sprintf("%+v", err), test.ShouldContainSubstring, "mcp2221.(*Bus).SetSpeed")
}
