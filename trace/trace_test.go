package trace

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.viam.com/test"

	"go.viam.com/fpdlink/components/board"
	"go.viam.com/fpdlink/components/board/buses"
	"go.viam.com/fpdlink/components/board/fake"
	"go.viam.com/fpdlink/logging"
)

const sample = `# sample

W 0x58 0x40 0x6c
W 0x58 0x41 0x13
# temperature code
R 0x58 0x42 0x9b
`

func TestDecode(t *testing.T) {
	tr, err := Decode(strings.NewReader(sample))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tr.Name, test.ShouldEqual, "sample")
	test.That(t, tr.Ops, test.ShouldResemble, []Op{
		W(0x58, 0x40, 0x6c),
		W(0x58, 0x41, 0x13),
		R(0x58, 0x42, 0x9b),
	})
	test.That(t, tr.Reads(), test.ShouldEqual, 1)

	var buf bytes.Buffer
	test.That(t, tr.Encode(&buf), test.ShouldBeNil)
	test.That(t, buf.String(), test.ShouldEqual, "# sample\nW 0x58 0x40 0x6c\nW 0x58 0x41 0x13\nR 0x58 0x42 0x9b\n")

	_, err = Decode(strings.NewReader("W 0x58 0x40\n"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "line 1")

	_, err = Decode(strings.NewReader("X 0x58 0x40 0x00\n"))
	test.That(t, err, test.ShouldNotBeNil)

	_, err = Decode(strings.NewReader("W 0x58 0x140 0x00\n"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestDiff(t *testing.T) {
	want := &Trace{Name: "a", Ops: []Op{W(0x18, 0x01, 0x02), W(0x18, 0x70, 0x58), R(0x18, 0x07, 0x00)}}
	test.That(t, Diff(want, &Trace{Name: "b", Ops: want.Ops}), test.ShouldEqual, "")

	got := &Trace{Ops: []Op{W(0x18, 0x01, 0x02), W(0x18, 0x70, 0x5a), R(0x18, 0x07, 0x00)}}
	test.That(t, Diff(want, got), test.ShouldEqual, "-W 0x18 0x70 0x58\n+W 0x18 0x70 0x5a\n")
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	bus := fake.NewBus(logging.NewTestLogger(t))
	bus.SetAPB(0x18, 0x500, 2000)
	rec := NewRecorder(bus)
	b := board.NewFromBuses(map[int]buses.I2C{0: rec}, 0, logging.NewTestLogger(t))

	test.That(t, b.WriteI2C(ctx, 0x18, 0x07, 0x08), test.ShouldBeNil)
	hres, err := b.ReadAPBI2C(ctx, 0x18, 0x500)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, hres, test.ShouldEqual, uint32(2000))

	test.That(t, rec.Trace("apb").Ops, test.ShouldResemble, []Op{
		W(0x18, 0x07, 0x08),
		W(0x18, 0x49, 0x00),
		W(0x18, 0x4a, 0x05),
		W(0x18, 0x48, 0x03),
		R(0x18, 0x4b, 0xd0),
		R(0x18, 0x4c, 0x07),
		R(0x18, 0x4d, 0x00),
		R(0x18, 0x4e, 0x00),
	})
	rec.Reset()
	test.That(t, rec.Trace("").Ops, test.ShouldBeEmpty)
}

func TestRecorderWrap(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	rec := NewRecorder(fake.NewBus(logger))
	b := board.NewFromBuses(map[int]buses.I2C{0: rec, 2: rec.Wrap(fake.NewBus(logger))}, 0, logger)

	test.That(t, b.WriteI2C(ctx, 0x18, 0x01, 0x01), test.ShouldBeNil)
	test.That(t, b.SetID(ctx, 2), test.ShouldBeNil)
	test.That(t, b.WriteI2C(ctx, 0x58, 0x01, 0x01), test.ShouldBeNil)
	test.That(t, b.EndI2C(ctx), test.ShouldBeNil)
	test.That(t, b.WriteI2C(ctx, 0x18, 0x02, 0x00), test.ShouldBeNil)

	test.That(t, rec.Trace("").Ops, test.ShouldResemble, []Op{
		W(0x18, 0x01, 0x01),
		W(0x58, 0x01, 0x01),
		W(0x18, 0x02, 0x00),
	})
}

func TestReplay(t *testing.T) {
	ctx := context.Background()
	ref, err := Decode(strings.NewReader(sample))
	test.That(t, err, test.ShouldBeNil)

	replay := NewReplay(ref)
	b := board.NewFromBuses(map[int]buses.I2C{0: replay}, 0, logging.NewTestLogger(t))
	test.That(t, b.WriteI2C(ctx, 0x58, 0x40, 0x6c), test.ShouldBeNil)
	test.That(t, replay.Done(), test.ShouldNotBeNil)
	test.That(t, b.WriteI2C(ctx, 0x58, 0x41, 0x13), test.ShouldBeNil)
	data, err := b.ReadI2C(ctx, 0x58, 0x42, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, data, test.ShouldResemble, []byte{0x9b})
	test.That(t, replay.Done(), test.ShouldBeNil)

	err = b.WriteI2C(ctx, 0x58, 0x01, 0x01)
	var mismatch *MismatchError
	test.That(t, errors.As(err, &mismatch), test.ShouldBeTrue)
	test.That(t, mismatch.Index, test.ShouldEqual, 3)
	test.That(t, mismatch.Want, test.ShouldBeNil)

	replay = NewReplay(ref)
	b = board.NewFromBuses(map[int]buses.I2C{0: replay}, 0, logging.NewTestLogger(t))
	err = b.WriteI2C(ctx, 0x58, 0x40, 0x6d)
	test.That(t, errors.As(err, &mismatch), test.ShouldBeTrue)
	test.That(t, mismatch.Error(), test.ShouldEqual, "operation 1: got W 0x58 0x40 0x6d, want W 0x58 0x40 0x6c")
}
