package spibus

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

var errBus = errors.New("bus failure")

type csPin struct {
	gpiotest.Pin
	mu     sync.Mutex
	levels []gpio.Level
	fail   error
}

func newCSPin(name string) *csPin {
	return &csPin{Pin: gpiotest.Pin{N: name, L: gpio.High}}
}

func (p *csPin) Out(l gpio.Level) error {
	if p.fail != nil {
		return p.fail
	}
	p.mu.Lock()
	p.levels = append(p.levels, l)
	p.mu.Unlock()
	return p.Pin.Out(l)
}

func (p *csPin) history() []gpio.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]gpio.Level(nil), p.levels...)
}

type funcBus func(ctx context.Context, w, r []byte) error

func (f funcBus) Tx(ctx context.Context, w, r []byte) error { return f(ctx, w, r) }

func TestTransferFramesCS(t *testing.T) {
	cs := newCSPin("CS0")
	var during gpio.Level
	bus := funcBus(func(_ context.Context, w, r []byte) error {
		during = cs.Read()
		copy(r, []byte{0xAA, 0xBB})
		return nil
	})
	r := make([]byte, 2)
	if err := Transfer(context.Background(), bus, cs, []byte{1, 2}, r); err != nil {
		t.Fatal(err)
	}
	if during != gpio.Low {
		t.Error("CS not asserted during transfer")
	}
	if got := cs.history(); len(got) != 2 || got[0] != gpio.Low || got[1] != gpio.High {
		t.Errorf("CS history %v", got)
	}
	if !bytes.Equal(r, []byte{0xAA, 0xBB}) {
		t.Errorf("r = %#v", r)
	}
}

func TestTransferErrorReleasesCS(t *testing.T) {
	cs := newCSPin("CS0")
	bus := funcBus(func(context.Context, []byte, []byte) error { return errBus })
	if err := Transfer(context.Background(), bus, cs, []byte{1}, make([]byte, 1)); err != errBus {
		t.Errorf("err = %v, want %v", err, errBus)
	}
	if cs.Read() != gpio.High {
		t.Error("CS left asserted after failed transfer")
	}
}

func TestTransferAssertFailure(t *testing.T) {
	cs := newCSPin("CS0")
	cs.fail = errors.New("gpio busy")
	called := false
	bus := funcBus(func(context.Context, []byte, []byte) error {
		called = true
		return nil
	})
	if err := Transfer(context.Background(), bus, cs, []byte{1}, make([]byte, 1)); !errors.Is(err, cs.fail) {
		t.Errorf("err = %v", err)
	}
	if called {
		t.Error("transfer ran without CS")
	}
}

func TestConnBus(t *testing.T) {
	pb := &conntest.Playback{
		Ops:       []conntest.IO{{W: []byte{0xF5, 0x00}, R: []byte{0x00, 0x70}}},
		DontPanic: true,
	}
	b := ConnBus{Conn: pb}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Tx(ctx, []byte{0xF5, 0x00}, make([]byte, 2)); err != context.Canceled {
		t.Errorf("cancelled Tx err = %v", err)
	}

	r := make([]byte, 2)
	if err := b.Tx(context.Background(), []byte{0xF5, 0x00}, r); err != nil {
		t.Fatal(err)
	}
	if r[1] != 0x70 {
		t.Errorf("r = %#v", r)
	}
	if err := pb.Close(); err != nil {
		t.Error(err)
	}
}
