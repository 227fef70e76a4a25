// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package spibus provides the SPI plumbing the MPU6500 drivers run on:
// a context-aware adapter for periph.io connections, a scoped chip-select
// guard, a mutex-guarded shared bus handing out per-device handles, and a
// serial SPI bridge.
package spibus

import (
	"context"
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Bus is a full-duplex SPI bus. Tx clocks out w and clocks in r, which must
// have the same length.
type Bus interface {
	Tx(ctx context.Context, w, r []byte) error
}

// Conn is a blocking full-duplex connection, as implemented by periph.io
// spi.Conn.
type Conn interface {
	Tx(w, r []byte) error
}

// ConnBus adapts a blocking Conn to Bus. The context is checked before the
// transfer starts; a spidev transfer cannot be interrupted once submitted.
type ConnBus struct {
	Conn Conn
}

// Tx implements Bus.
func (b ConnBus) Tx(ctx context.Context, w, r []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.Conn.Tx(w, r)
}

// Select asserts cs (active low) and returns the function that releases it.
// Callers defer the release so CS goes high on every return path.
func Select(cs gpio.PinOut) (release func() error, err error) {
	if err := cs.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("spibus: assert CS %s: %w", cs, err)
	}
	return func() error {
		if err := cs.Out(gpio.High); err != nil {
			return fmt.Errorf("spibus: release CS %s: %w", cs, err)
		}
		return nil
	}, nil
}

// Transfer runs one CS-framed transfer on bus. The transfer error is
// returned as is; a release error is only reported when the transfer
// itself succeeded.
func Transfer(ctx context.Context, bus Bus, cs gpio.PinOut, w, r []byte) (err error) {
	release, err := Select(cs)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := release(); err == nil {
			err = rerr
		}
	}()
	return bus.Tx(ctx, w, r)
}
