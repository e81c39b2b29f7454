// Package trace records, replays and compares the ordered I2C operations of a bring-up run.
//
// A trace is a text file with one operation per line:
//
//	# dual-3400x1300-v9
//	W 0x18 0x01 0x02
//	R 0x58 0x42 0x9b
//
// The first comment names the trace. Addresses are in the 8-bit TI form.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind is the direction of an operation.
type Kind byte

// The operation kinds.
const (
	Write Kind = 'W'
	Read  Kind = 'R'
)

// Op is a single register transfer. For reads Val is the value the device returned.
type Op struct {
	Kind Kind
	Addr byte
	Reg  byte
	Val  byte
}

// W returns a write operation.
func W(addr, reg, val byte) Op {
	return Op{Kind: Write, Addr: addr, Reg: reg, Val: val}
}

// R returns a read operation.
func R(addr, reg, val byte) Op {
	return Op{Kind: Read, Addr: addr, Reg: reg, Val: val}
}

func (op Op) String() string {
	return fmt.Sprintf("%c 0x%02x 0x%02x 0x%02x", op.Kind, op.Addr, op.Reg, op.Val)
}

// Trace is a named, ordered list of operations.
type Trace struct {
	Name string
	Ops  []Op
}

// Reads returns the number of read operations.
func (t *Trace) Reads() int {
	n := 0
	for _, op := range t.Ops {
		if op.Kind == Read {
			n++
		}
	}
	return n
}

// Encode writes t in the text form.
func (t *Trace) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if t.Name != "" {
		if _, err := fmt.Fprintf(bw, "# %s\n", t.Name); err != nil {
			return err
		}
	}
	for _, op := range t.Ops {
		if _, err := fmt.Fprintln(bw, op.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (t *Trace) String() string {
	var sb strings.Builder
	//nolint:errcheck
	t.Encode(&sb)
	return sb.String()
}

// Decode reads a trace in the text form.
func Decode(r io.Reader) (*Trace, error) {
	t := &Trace{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if t.Name == "" && len(t.Ops) == 0 {
				t.Name = strings.TrimSpace(strings.TrimPrefix(line, "#"))
			}
			continue
		}
		op, err := parseOp(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		t.Ops = append(t.Ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func parseOp(line string) (Op, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return Op{}, errors.Errorf("expected 4 fields, got %d in %q", len(fields), line)
	}
	var op Op
	switch fields[0] {
	case "W":
		op.Kind = Write
	case "R":
		op.Kind = Read
	default:
		return Op{}, errors.Errorf("unknown operation %q", fields[0])
	}
	for i, dst := range []*byte{&op.Addr, &op.Reg, &op.Val} {
		v, err := strconv.ParseUint(fields[i+1], 0, 8)
		if err != nil {
			return Op{}, errors.Wrapf(err, "field %d", i+2)
		}
		*dst = byte(v)
	}
	return op, nil
}
