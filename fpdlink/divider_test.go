package fpdlink

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestSerVPMN(t *testing.T) {
	// 13757.69 truncates to 13757.
	div, err := SerVPMN(283.4)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, div, test.ShouldResemble, Divider{M: 13757, N: 15})
	test.That(t, LowerByte(div.M), test.ShouldEqual, byte(0xbd))
	test.That(t, UpperByte(div.M), test.ShouldEqual, byte(0x35))

	div, err = SerVPMN(282.96)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, div.M, test.ShouldEqual, uint32(13736))

	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1), 1400} {
		_, err := SerVPMN(bad)
		test.That(t, err, test.ShouldNotBeNil)
	}
}

func TestDesQuadPixelClock(t *testing.T) {
	div, err := DesQuadPixelClock(283)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, div, test.ShouldResemble, Divider{M: 283000, N: 1080000})
	test.That(t, []byte{LowerByte(div.M), UpperByte(div.M), UpperByte24(div.M)},
		test.ShouldResemble, []byte{0x78, 0x51, 0x04})
	test.That(t, []byte{LowerByte(div.N), UpperByte(div.N), UpperByte24(div.N)},
		test.ShouldResemble, []byte{0xc0, 0x7a, 0x10})

	div, err = DesQuadPixelClock(282.96)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, div.M, test.ShouldEqual, uint32(282960))

	_, err = DesQuadPixelClock(20000)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = DesQuadPixelClock(-283)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestDPMvid(t *testing.T) {
	mvid, err := DPMvid(283)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mvid, test.ShouldEqual, uint32(34345))

	mvid, err = DPMvid(270)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mvid, test.ShouldEqual, uint32(DPNvid))

	_, err = DPMvid(600)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = DPMvid(0)
	test.That(t, err, test.ShouldNotBeNil)
}
