package fpdlink

import (
	"context"
	"time"
)

// Deserializer temperature sensor and cap-code registers.
const (
	pageTempSensor byte = 0x6c
	offTempCtl     byte = 0x0d
	offTempCode    byte = 0x13
	pageCapCode    byte = 0x3c
	offCapCode     byte = 0xf5

	// One ramp code covers 190/11 C, truncated.
	tempPerCode = 190 / 11
	maxCapCode  = 7
)

// TempPlan is the cap-code correction for one temperature reading.
type TempPlan struct {
	Raw      byte
	TempC    int
	Baseline int
	UpCodes  int
	DnCodes  int
	UpDelta  int
	DnDelta  int
	// Codes are the cap codes to program, in order. Empty when no correction is needed.
	Codes []int
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// PlanTempComp computes the cap-code patch for a raw deserializer temperature code against the
// cap code the part runs at by default.
func PlanTempComp(raw byte, baseline int) TempPlan {
	p := TempPlan{Raw: raw, Baseline: baseline, TempC: 2*int(raw) - 273}
	p.UpCodes = floorDiv(150-p.TempC, tempPerCode) + 1
	p.DnCodes = floorDiv(p.TempC-30, tempPerCode) + 1
	p.UpDelta = p.UpCodes - 4
	p.DnDelta = p.DnCodes - 7
	if p.UpDelta > 0 {
		p.Codes = append(p.Codes, max(baseline-p.UpDelta, 0))
	}
	if p.DnDelta > 0 {
		p.Codes = append(p.Codes, min(baseline+p.DnDelta, maxCapCode))
	}
	return p
}

// TempCompensation reads the deserializer temperature and patches the ramp cap code.
type TempCompensation struct {
	// Baseline is the cap code the part uses without a patch.
	Baseline int
	// OverrideEfuse programs Baseline over the efuse code before patching.
	OverrideEfuse bool
	// Settle is waited after each patch.
	Settle time.Duration
}

// Steps returns the steps that read the temperature and apply the plan.
func (tc TempCompensation) Steps() []Step {
	return Seq(
		Page(Des, pageTempSensor, "Read Deserializer 0 Temp"),
		Ind(Des, offTempCtl, "", 0x00),
		W(Des, RegIndOffset, offTempCode, ""),
		Do("Set up Deserializer 0 Temp Ramp Optimizations", tc.apply),
	)
}

func (tc TempCompensation) apply(ctx context.Context, s *Session) error {
	raw, err := s.Read(ctx, Des, RegIndData)
	if err != nil {
		return err
	}
	plan := PlanTempComp(raw, tc.Baseline)
	s.Report.Temperature = &plan
	s.Logger.Infow("deserializer temperature", "celsius", plan.TempC, "up_delta", plan.UpDelta,
		"dn_delta", plan.DnDelta, "cap_codes", plan.Codes)

	if tc.OverrideEfuse {
		if err := s.Write(ctx, Des, RegPageSelect, pageCapCode); err != nil {
			return err
		}
		if err := s.Write(ctx, Des, RegIndOffset, offCapCode); err != nil {
			return err
		}
		if err := s.Write(ctx, Des, RegIndData, byte(tc.Baseline<<4)+1); err != nil {
			return err
		}
	}
	for _, code := range plan.Codes {
		if err := tc.patch(ctx, s, code); err != nil {
			return err
		}
	}
	return nil
}

// patch programs code into bits 4-6 of the cap-code register, enables the override and resets the
// deserializer.
func (tc TempCompensation) patch(ctx context.Context, s *Session, code int) error {
	if !tc.OverrideEfuse {
		if err := s.Write(ctx, Des, RegPageSelect, pageCapCode); err != nil {
			return err
		}
	}
	if err := s.Write(ctx, Des, RegIndOffset, offCapCode); err != nil {
		return err
	}
	if err := s.Update(ctx, Des, RegIndData, func(rb byte) byte {
		return rb&0x8F | byte(code)<<4
	}); err != nil {
		return err
	}
	if err := s.Update(ctx, Des, RegIndData, func(rb byte) byte {
		return rb&0xFE | 0x01
	}); err != nil {
		return err
	}
	if err := s.SoftReset(ctx, Des); err != nil {
		return err
	}
	return s.Sleep(ctx, tc.Settle)
}
