package spibus

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
)

func TestSharedSerialisesDevices(t *testing.T) {
	pins := []*csPin{newCSPin("CS0"), newCSPin("CS1"), newCSPin("CS2")}

	var active, overlaps int32
	var wrongCS int32
	bus := funcBus(func(_ context.Context, w, r []byte) error {
		if atomic.AddInt32(&active, 1) > 1 {
			atomic.AddInt32(&overlaps, 1)
		}
		low := 0
		for _, p := range pins {
			if p.Read() == gpio.Low {
				low++
			}
		}
		if low != 1 {
			atomic.AddInt32(&wrongCS, 1)
		}
		time.Sleep(100 * time.Microsecond)
		atomic.AddInt32(&active, -1)
		return nil
	})

	shared := NewShared(bus)
	var wg sync.WaitGroup
	for _, p := range pins {
		dev := shared.Device(p)
		for g := 0; g < 3; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 20; i++ {
					if err := dev.Tx(context.Background(), []byte{0x80}, make([]byte, 1)); err != nil {
						t.Error(err)
						return
					}
				}
			}()
		}
	}
	wg.Wait()

	if overlaps != 0 {
		t.Errorf("%d overlapping transfers", overlaps)
	}
	if wrongCS != 0 {
		t.Errorf("%d transfers without exactly one CS asserted", wrongCS)
	}
	for _, p := range pins {
		if n := len(p.history()); n != 2*3*20 {
			t.Errorf("%s driven %d times", p, n)
		}
	}
}

func TestSharedCancelledWaiter(t *testing.T) {
	entered := make(chan struct{})
	unblock := make(chan struct{})
	bus := funcBus(func(context.Context, []byte, []byte) error {
		close(entered)
		<-unblock
		return nil
	})
	shared := NewShared(bus)
	cs0, cs1 := newCSPin("CS0"), newCSPin("CS1")

	done := make(chan error, 1)
	go func() {
		done <- shared.Device(cs0).Tx(context.Background(), []byte{1}, make([]byte, 1))
	}()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := shared.Device(cs1).Tx(ctx, []byte{2}, make([]byte, 1)); err != context.DeadlineExceeded {
		t.Errorf("waiter err = %v, want %v", err, context.DeadlineExceeded)
	}
	if len(cs1.history()) != 0 {
		t.Error("waiter touched its CS pin without the bus lock")
	}

	close(unblock)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if cs0.Read() != gpio.High {
		t.Error("CS0 left asserted")
	}
}

func TestBlockingDevice(t *testing.T) {
	cs := newCSPin("CS0")
	bus := funcBus(func(_ context.Context, w, r []byte) error {
		copy(r, w)
		return nil
	})
	conn := NewShared(bus).Device(cs).Blocking()
	r := make([]byte, 3)
	if err := conn.Tx([]byte{1, 2, 3}, r); err != nil {
		t.Fatal(err)
	}
	if r[2] != 3 {
		t.Errorf("r = %v", r)
	}
	if got := cs.history(); len(got) != 2 {
		t.Errorf("CS history %v", got)
	}
}
