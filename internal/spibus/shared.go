// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package spibus

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
	"periph.io/x/conn/v3/gpio"
)

// Shared guards a Bus so several devices, each with its own CS pin, can
// use it. The lock is held for one transfer at a time. Waiters are not
// served in any guaranteed order.
type Shared struct {
	bus Bus
	sem *semaphore.Weighted
}

// NewShared wraps bus. Nothing else may use bus directly afterwards.
func NewShared(bus Bus) *Shared {
	return &Shared{
		bus: bus,
		sem: semaphore.NewWeighted(1),
	}
}

// Device returns a handle for the device selected by cs.
func (s *Shared) Device(cs gpio.PinOut) *Device {
	return &Device{shared: s, cs: cs}
}

// Device is one chip on a Shared bus.
type Device struct {
	shared *Shared
	cs     gpio.PinOut
}

func (d *Device) String() string {
	return fmt.Sprintf("spibus.Device{cs=%s}", d.cs)
}

// Tx locks the bus, asserts CS, transfers, releases CS and unlocks, in
// that order. A cancelled ctx while waiting for the lock returns
// ctx.Err() without touching CS.
func (d *Device) Tx(ctx context.Context, w, r []byte) error {
	if err := d.shared.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer d.shared.sem.Release(1)
	return Transfer(ctx, d.shared.bus, d.cs, w, r)
}

// Blocking returns a view of d without a context, for drivers built on
// blocking connections.
func (d *Device) Blocking() *BlockingDevice {
	return &BlockingDevice{dev: d}
}

// BlockingDevice is a Device used from blocking code.
type BlockingDevice struct {
	dev *Device
}

// Tx implements Conn.
func (b *BlockingDevice) Tx(w, r []byte) error {
	return b.dev.Tx(context.Background(), w, r)
}
