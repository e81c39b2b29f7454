package fpdlink

import (
	"math"

	"github.com/pkg/errors"
)

// Fixed link parameters of the supported boards.
const (
	// SerVPN is the N of the serializer video processor divider.
	SerVPN = 15
	// DPNvid is the DisplayPort Nvid the deserializer is programmed with.
	DPNvid = 32768

	fpd4RateMbps   = 6750.0
	dpLinkRateGbps = 2.7
)

// Divider is an M/N clock divider setting.
type Divider struct {
	M uint32
	N uint32
}

func checkPCLK(name string, mhz float64) error {
	if !(mhz > 0) || math.IsInf(mhz, 0) {
		return errors.Errorf("%s must be a positive frequency in MHz, got %v", name, mhz)
	}
	return nil
}

// SerVPMN returns the serializer video processor divider for a pixel clock in MHz. The 16-bit M
// is truncated, not rounded, matching the vendor tool.
func SerVPMN(serPCLK float64) (Divider, error) {
	if err := checkPCLK("serializer pixel clock", serPCLK); err != nil {
		return Divider{}, err
	}
	m := serPCLK / 4.0 * (1 << 15) / (fpd4RateMbps / 40.0)
	if m >= 1<<16 {
		return Divider{}, errors.Errorf("serializer pixel clock %v MHz out of range: M %v needs more than 16 bits", serPCLK, m)
	}
	return Divider{M: uint32(m), N: SerVPN}, nil
}

// DesQuadPixelClock returns the deserializer quad pixel clock divider for a pixel clock in MHz.
// Both values are programmed as 24-bit numbers.
func DesQuadPixelClock(desPCLK float64) (Divider, error) {
	if err := checkPCLK("deserializer pixel clock", desPCLK); err != nil {
		return Divider{}, err
	}
	rate := dpLinkRateGbps
	m := desPCLK * 1000
	n := rate * 400000
	if m >= 1<<24 {
		return Divider{}, errors.Errorf("deserializer pixel clock %v MHz out of range: M %v needs more than 24 bits", desPCLK, m)
	}
	return Divider{M: uint32(m), N: uint32(n)}, nil
}

// DPMvid returns the DisplayPort Mvid for a pixel clock in MHz against an Nvid of DPNvid.
func DPMvid(desPCLK float64) (uint32, error) {
	if err := checkPCLK("deserializer pixel clock", desPCLK); err != nil {
		return 0, err
	}
	rate := dpLinkRateGbps
	mvid := desPCLK * 10.0 / (rate * 1000) * DPNvid
	if mvid >= 1<<16 {
		return 0, errors.Errorf("deserializer pixel clock %v MHz out of range: Mvid %v needs more than 16 bits", desPCLK, mvid)
	}
	return uint32(mvid), nil
}
