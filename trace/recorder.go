package trace

import (
	"context"
	"io"
	"sync"

	"go.viam.com/fpdlink/components/board"
	"go.viam.com/fpdlink/components/board/buses"
)

type opLog struct {
	mu  sync.Mutex
	ops []Op
}

// Recorder is a bus that logs every register transfer made through it to the underlying bus.
// Writes are logged when attempted, reads once they return.
type Recorder struct {
	bus buses.I2C
	log *opLog
}

// NewRecorder wraps bus.
func NewRecorder(bus buses.I2C) *Recorder {
	return &Recorder{bus: bus, log: &opLog{}}
}

// Wrap returns a recorder over another bus that appends to the same log as r. A board with
// several buses records one trace in the order transfers happened.
func (r *Recorder) Wrap(bus buses.I2C) *Recorder {
	return &Recorder{bus: bus, log: r.log}
}

// OpenHandle opens a recording handle to the 7-bit address.
func (r *Recorder) OpenHandle(addr byte) (buses.I2CHandle, error) {
	h, err := r.bus.OpenHandle(addr)
	if err != nil {
		return nil, err
	}
	return &recordingHandle{rec: r, handle: h, addr: board.DeviceAddress(addr)}, nil
}

// Trace returns a copy of the operations recorded so far.
func (r *Recorder) Trace(name string) *Trace {
	r.log.mu.Lock()
	defer r.log.mu.Unlock()
	return &Trace{Name: name, Ops: append([]Op(nil), r.log.ops...)}
}

// Reset drops the recorded operations.
func (r *Recorder) Reset() {
	r.log.mu.Lock()
	defer r.log.mu.Unlock()
	r.log.ops = nil
}

// Close closes the underlying bus if it holds resources.
func (r *Recorder) Close() error {
	if closer, ok := r.bus.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (r *Recorder) record(ops ...Op) {
	r.log.mu.Lock()
	defer r.log.mu.Unlock()
	r.log.ops = append(r.log.ops, ops...)
}

type recordingHandle struct {
	rec     *Recorder
	handle  buses.I2CHandle
	addr    byte
	pointer byte
}

func (h *recordingHandle) writes(register byte, data []byte) []Op {
	ops := make([]Op, 0, len(data))
	for i, v := range data {
		ops = append(ops, W(h.addr, register+byte(i), v))
	}
	return ops
}

func (h *recordingHandle) reads(register byte, data []byte) []Op {
	ops := make([]Op, 0, len(data))
	for i, v := range data {
		ops = append(ops, R(h.addr, register+byte(i), v))
	}
	return ops
}

func (h *recordingHandle) Write(ctx context.Context, tx []byte) error {
	if len(tx) > 0 {
		h.pointer = tx[0]
		h.rec.record(h.writes(tx[0], tx[1:])...)
	}
	return h.handle.Write(ctx, tx)
}

func (h *recordingHandle) Read(ctx context.Context, count int) ([]byte, error) {
	data, err := h.handle.Read(ctx, count)
	if err != nil {
		return nil, err
	}
	h.rec.record(h.reads(h.pointer, data)...)
	return data, nil
}

func (h *recordingHandle) ReadByteData(ctx context.Context, register byte) (byte, error) {
	v, err := h.handle.ReadByteData(ctx, register)
	if err != nil {
		return 0, err
	}
	h.rec.record(R(h.addr, register, v))
	return v, nil
}

func (h *recordingHandle) WriteByteData(ctx context.Context, register, data byte) error {
	h.rec.record(W(h.addr, register, data))
	return h.handle.WriteByteData(ctx, register, data)
}

func (h *recordingHandle) ReadBlockData(ctx context.Context, register byte, numBytes uint8) ([]byte, error) {
	data, err := h.handle.ReadBlockData(ctx, register, numBytes)
	if err != nil {
		return nil, err
	}
	h.rec.record(h.reads(register, data)...)
	return data, nil
}

func (h *recordingHandle) WriteBlockData(ctx context.Context, register byte, data []byte) error {
	h.rec.record(h.writes(register, data)...)
	return h.handle.WriteBlockData(ctx, register, data)
}

func (h *recordingHandle) Close() error {
	return h.handle.Close()
}
