package fpdlink

import (
	"context"
)

const (
	i2cPassThrough byte = 0x08
	crcErrorReset  byte = 0x20

	pageVPStatus     byte = 0x30
	offVPStatus      byte = 0x30
	vpVideoAvailable byte = 0x01

	apbVideoInputReset uint16 = 0x054
	apbDPHRes          uint16 = 0x500
	apbDPVRes          uint16 = 0x514
	apbFIFOOverflow    uint16 = 0x1cc

	pageDTGMeasure byte = 0x53
	offVtotal      byte = 0x42
)

// EnablePassThrough sets the serializer's I2C pass-through bit so the deserializer answers at its
// alias.
func EnablePassThrough() []Step {
	return Do("Enable I2C Passthrough", func(ctx context.Context, s *Session) error {
		return s.Update(ctx, Ser, RegI2CControl, func(v byte) byte { return v | i2cPassThrough })
	})
}

// ClearCRCErrors pulses the serializer's CRC error reset bit.
func ClearCRCErrors() []Step {
	return Do("CRC Error Reset", func(ctx context.Context, s *Session) error {
		if err := s.Update(ctx, Ser, RegGeneralCfg, func(v byte) byte { return v | crcErrorReset }); err != nil {
			return err
		}
		return s.Update(ctx, Ser, RegGeneralCfg, func(v byte) byte { return v &^ crcErrorReset })
	})
}

// VideoInputCheck resets the serializer video input when VP0 reports no valid video.
func VideoInputCheck() []Step {
	return Seq(
		Page(Ser, pageVPStatus, "Check VP0 video status"),
		W(Ser, RegIndOffset, offVPStatus, ""),
		Do("Video Input Reset if no video is available", func(ctx context.Context, s *Session) error {
			status, err := s.Read(ctx, Ser, RegIndData)
			if err != nil {
				return err
			}
			if status&vpVideoAvailable != 0 {
				return nil
			}
			s.Logger.Infof("VP0 status 0x%02x has no video, resetting video input", status)
			s.Report.VideoInputReset = true
			return s.WriteAPB(ctx, Ser, apbVideoInputReset, 0x1)
		}),
	)
}

// ReadDPResolution reads back the DisplayPort input resolution the serializer detected, and warns
// when the source is not sending video.
func ReadDPResolution() []Step {
	return Do("Read back DP input resolution", func(ctx context.Context, s *Session) error {
		h, err := s.ReadAPB(ctx, Ser, apbDPHRes)
		if err != nil {
			return err
		}
		v, err := s.ReadAPB(ctx, Ser, apbDPVRes)
		if err != nil {
			return err
		}
		res := Resolution{H: h, V: v}
		s.Report.Resolution = &res
		s.Logger.Infow("detected DP input resolution", "resolution", res.String())
		if h == 0 || v == 0 {
			s.Logger.Warn("no DP video input to the serializer detected; try adding more delay after HPD is pulled high")
		}
		return nil
	})
}

// FIFOOverflowCheck resets the deserializer when its DP FIFO overflowed.
func FIFOOverflowCheck() []Step {
	return Do("Reset deserializer on FIFO overflow", func(ctx context.Context, s *Session) error {
		ov, err := s.ReadAPB(ctx, Des, apbFIFOOverflow)
		if err != nil {
			return err
		}
		s.Report.FIFOOverflow = ov
		if ov == 0 {
			return nil
		}
		s.Logger.Warnw("deserializer FIFO overflow, resetting", "overflow", ov)
		s.Report.Resets++
		return s.SoftReset(ctx, Des)
	})
}

// VtotalCheck measures the deserializer's output Vtotal and resets it when the timing generator
// did not lock to want.
func VtotalCheck(want uint16) []Step {
	return Seq(
		Page(Des, pageDTGMeasure, "Measure Vtotal"),
		W(Des, RegIndOffset, offVtotal, ""),
		Do("Reset deserializer on Vtotal mismatch", func(ctx context.Context, s *Session) error {
			var measure [2]byte
			for i := range measure {
				b, err := s.Read(ctx, Des, RegIndData)
				if err != nil {
					return err
				}
				measure[i] = b
			}
			vtotal := uint16(measure[0])<<8 | uint16(measure[1])
			s.Report.Vtotal = &vtotal
			if vtotal == want {
				return nil
			}
			s.Logger.Warnw("Vtotal mismatch, resetting deserializer", "vtotal", vtotal, "want", want)
			s.Report.Resets++
			return s.SoftReset(ctx, Des)
		}),
	)
}
