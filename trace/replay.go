package trace

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/fpdlink/components/board"
	"go.viam.com/fpdlink/components/board/buses"
)

// MismatchError reports the first operation that deviated from the reference trace.
type MismatchError struct {
	// Index is the zero based position in the reference trace.
	Index int
	Got   Op
	// Want is nil when the reference trace had already ended.
	Want *Op
}

func (e *MismatchError) Error() string {
	if e.Want == nil {
		return fmt.Sprintf("operation %d: got %s after the end of the trace", e.Index+1, e.Got)
	}
	return fmt.Sprintf("operation %d: got %s, want %s", e.Index+1, e.Got, *e.Want)
}

// Replay is a bus that plays a device back from a reference trace. Reads return the recorded
// values; any transfer that does not match the next operation fails with a *MismatchError.
type Replay struct {
	mu  sync.Mutex
	ref *Trace
	pos int
}

// NewReplay returns a bus replaying ref from its first operation.
func NewReplay(ref *Trace) *Replay {
	return &Replay{ref: ref}
}

// OpenHandle opens a handle to the 7-bit address.
func (r *Replay) OpenHandle(addr byte) (buses.I2CHandle, error) {
	return &replayHandle{replay: r, addr: board.DeviceAddress(addr)}, nil
}

// Done returns an error unless every operation of the reference trace was performed.
func (r *Replay) Done() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if left := len(r.ref.Ops) - r.pos; left > 0 {
		return errors.Errorf("%d of %d operations not performed, next is %s", left, len(r.ref.Ops), r.ref.Ops[r.pos])
	}
	return nil
}

// next consumes the next operation if it matches got, and returns its value.
func (r *Replay) next(got Op) (byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pos >= len(r.ref.Ops) {
		return 0, &MismatchError{Index: r.pos, Got: got}
	}
	want := r.ref.Ops[r.pos]
	matches := want.Kind == got.Kind && want.Addr == got.Addr && want.Reg == got.Reg
	if got.Kind == Write {
		matches = matches && want.Val == got.Val
	}
	if !matches {
		return 0, &MismatchError{Index: r.pos, Got: got, Want: &want}
	}
	r.pos++
	return want.Val, nil
}

type replayHandle struct {
	replay  *Replay
	addr    byte
	pointer byte
}

func (h *replayHandle) Write(ctx context.Context, tx []byte) error {
	if len(tx) == 0 {
		return nil
	}
	h.pointer = tx[0]
	return h.WriteBlockData(ctx, tx[0], tx[1:])
}

func (h *replayHandle) Read(ctx context.Context, count int) ([]byte, error) {
	return h.readBlock(h.pointer, count)
}

func (h *replayHandle) ReadByteData(ctx context.Context, register byte) (byte, error) {
	return h.replay.next(R(h.addr, register, 0))
}

func (h *replayHandle) WriteByteData(ctx context.Context, register, data byte) error {
	_, err := h.replay.next(W(h.addr, register, data))
	return err
}

func (h *replayHandle) ReadBlockData(ctx context.Context, register byte, numBytes uint8) ([]byte, error) {
	return h.readBlock(register, int(numBytes))
}

func (h *replayHandle) readBlock(register byte, count int) ([]byte, error) {
	data := make([]byte, count)
	for i := range data {
		v, err := h.replay.next(R(h.addr, register+byte(i), 0))
		if err != nil {
			return nil, err
		}
		data[i] = v
	}
	return data, nil
}

func (h *replayHandle) WriteBlockData(ctx context.Context, register byte, data []byte) error {
	for i, v := range data {
		if _, err := h.replay.next(W(h.addr, register+byte(i), v)); err != nil {
			return err
		}
	}
	return nil
}

func (h *replayHandle) Close() error {
	return nil
}
