package mpu6500

import (
	"context"
	"errors"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

var errTransport = errors.New("spi: transfer failed")

// csPin records every level driven on it.
type csPin struct {
	gpiotest.Pin
	levels []gpio.Level
}

func newCSPin() *csPin {
	return &csPin{Pin: gpiotest.Pin{N: "CS", Num: 8, L: gpio.High}}
}

func (p *csPin) Out(l gpio.Level) error {
	p.levels = append(p.levels, l)
	return p.Pin.Out(l)
}

// fakeBus hands out canned responses and records the frames written. When
// cs is set it also records whether CS was asserted during each transfer.
type fakeBus struct {
	cs     *csPin
	resp   [][]byte
	err    error
	frames [][]byte
	csLow  []bool
}

func (b *fakeBus) Tx(ctx context.Context, w, r []byte) error {
	b.frames = append(b.frames, append([]byte(nil), w...))
	if b.cs != nil {
		b.csLow = append(b.csLow, b.cs.L == gpio.Low)
	}
	if len(r) != len(w) {
		return errors.New("fakeBus: length mismatch")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.err != nil {
		return b.err
	}
	if len(b.resp) > 0 {
		copy(r, b.resp[0])
		b.resp = b.resp[1:]
	}
	return nil
}

// sampleResp is a burst response; byte 0 is garbage the driver must skip.
func sampleResp(words ...byte) []byte {
	return append([]byte{0xEE}, words...)
}
