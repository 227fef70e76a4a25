// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6500

import (
	"context"

	"periph.io/x/conn/v3/gpio"

	"github.com/relabs-tech/mpu6500_lab/internal/spibus"
)

// Bus is a raw full-duplex SPI bus. The driver drives chip-select itself.
type Bus interface {
	Tx(ctx context.Context, w, r []byte) error
}

// Device is an SPI device handle that asserts chip-select and locks the
// underlying bus for the duration of one Tx.
type Device interface {
	Tx(ctx context.Context, w, r []byte) error
}

// Conn is a blocking SPI connection that handles chip-select on its own,
// such as a periph.io spi.Conn opened on a spidev node.
type Conn interface {
	Tx(w, r []byte) error
}

// txFunc runs one full-duplex transfer; len(r) == len(w).
type txFunc func(w, r []byte) error

func busTx(ctx context.Context, bus Bus, cs gpio.PinOut) txFunc {
	return func(w, r []byte) error {
		return spibus.Transfer(ctx, bus, cs, w, r)
	}
}

func deviceTx(ctx context.Context, dev Device) txFunc {
	return func(w, r []byte) error {
		return dev.Tx(ctx, w, r)
	}
}

// probe reads WHO_AM_I. Errors count as "not connected".
func probe(tx txFunc) bool {
	w := BuildRead(WhoAmI, 1)
	r := make([]byte, len(w))
	if err := tx(w, r); err != nil {
		return false
	}
	return DecodeRead(r, 1)[0] == WhoAmIValue
}

func writeConfig(tx txFunc, reg Register, v byte) error {
	w := BuildWrite(reg, v)
	r := make([]byte, len(w))
	return tx(w, r)
}

func readSample(tx txFunc, reg Register) (x, y, z int16, err error) {
	w := BuildRead(reg, sampleLen)
	r := make([]byte, len(w))
	if err = tx(w, r); err != nil {
		return 0, 0, 0, err
	}
	x, y, z = decodeTriple(DecodeRead(r, sampleLen))
	return x, y, z, nil
}
