package fpdlink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// StepKind says what a Step does.
type StepKind int

// The step kinds.
const (
	// StepWrite writes Val to register Reg of Device.
	StepWrite StepKind = iota
	// StepSleep waits Delay.
	StepSleep
	// StepDo runs Do, which may read registers and decide what to write.
	StepDo
)

// A Step is one line of a bring-up sequence.
type Step struct {
	Kind   StepKind
	Device Device
	Reg    byte
	Val    byte
	Delay  time.Duration
	Do     func(ctx context.Context, s *Session) error
	Note   string
}

func (st Step) String() string {
	var desc string
	switch st.Kind {
	case StepWrite:
		desc = fmt.Sprintf("write %s 0x%02x = 0x%02x", st.Device, st.Reg, st.Val)
	case StepSleep:
		desc = fmt.Sprintf("sleep %v", st.Delay)
	case StepDo:
		desc = "check"
	}
	if st.Note == "" {
		return desc
	}
	return desc + ": " + st.Note
}

// W writes one register.
func W(d Device, reg, val byte, note string) []Step {
	return []Step{{Kind: StepWrite, Device: d, Reg: reg, Val: val, Note: note}}
}

// Page selects an indirect register page.
func Page(d Device, page byte, note string) []Step {
	return W(d, RegPageSelect, page, note)
}

// Ind writes vals through the indirect window starting at offset. The page must auto increment
// when more than one value is given.
func Ind(d Device, offset byte, note string, vals ...byte) []Step {
	steps := W(d, RegIndOffset, offset, note)
	for _, v := range vals {
		steps = append(steps, W(d, RegIndData, v, "")...)
	}
	return steps
}

// APB writes a 32-bit APB register. The interface must be enabled with RegAPBCtl first.
func APB(d Device, apbReg uint16, data uint32, note string) []Step {
	steps := Seq(
		W(d, RegAPBAddrLo, LowerByte(uint32(apbReg)), note),
		W(d, RegAPBAddrHi, UpperByte(uint32(apbReg)), ""),
	)
	for i, b := range SplitLE32(data) {
		steps = append(steps, W(d, RegAPBData+byte(i), b, "")...)
	}
	return steps
}

// Sleep waits an open loop delay.
func Sleep(d time.Duration, note string) []Step {
	return []Step{{Kind: StepSleep, Delay: d, Note: note}}
}

// Do runs fn as a step.
func Do(note string, fn func(ctx context.Context, s *Session) error) []Step {
	return []Step{{Kind: StepDo, Do: fn, Note: note}}
}

// When returns steps if cond holds.
func When(cond bool, steps ...[]Step) []Step {
	if !cond {
		return nil
	}
	return Seq(steps...)
}

// Seq concatenates groups of steps.
func Seq(groups ...[]Step) []Step {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	steps := make([]Step, 0, n)
	for _, g := range groups {
		steps = append(steps, g...)
	}
	return steps
}

// Run performs steps in order and stops at the first failure.
func Run(ctx context.Context, s *Session, steps []Step) error {
	for i, st := range steps {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "step %d (%s)", i+1, st)
		}
		s.Logger.CDebugw(ctx, "step", "index", i+1, "step", st.String())
		var err error
		switch st.Kind {
		case StepWrite:
			err = s.Write(ctx, st.Device, st.Reg, st.Val)
		case StepSleep:
			err = s.Sleep(ctx, st.Delay)
		case StepDo:
			err = st.Do(ctx, s)
		default:
			err = errors.Errorf("unknown step kind %d", st.Kind)
		}
		if err != nil {
			return errors.Wrapf(err, "step %d (%s)", i+1, st)
		}
		s.Report.Steps++
	}
	return nil
}

// Describe renders steps one per line, for logs and tests.
func Describe(steps []Step) string {
	var sb strings.Builder
	for i, st := range steps {
		fmt.Fprintf(&sb, "%3d %s\n", i+1, st)
	}
	return sb.String()
}
