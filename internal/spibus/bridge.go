// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package spibus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	serial "github.com/jacobsa/go-serial/serial"
	"github.com/sigurn/crc8"
)

// Bridge frames:
//
//	request:  0xA5 len payload[len] crc8(len, payload)
//	response: 0x5A status len payload[len] crc8(status, len, payload)
//
// The bridge firmware asserts its CS around each request, so a Bridge is a
// device handle, not a raw bus.
const (
	bridgeReqSync  = 0xA5
	bridgeRespSync = 0x5A
	bridgeStatusOK = 0x00

	// MaxBridgePayload is the largest transfer one frame can carry.
	MaxBridgePayload = 255

	// maxBridgeResync bounds the junk skipped while looking for a response.
	maxBridgeResync = 2 * (MaxBridgePayload + 4)
)

var (
	ErrBridgeFrameSize = errors.New("spibus: bridge frame size out of range")
	ErrBridgeSync      = errors.New("spibus: bridge response out of sync")
	ErrBridgeCRC       = errors.New("spibus: bridge response crc mismatch")
	ErrBridgeLength    = errors.New("spibus: bridge response length mismatch")
	ErrBridgeStatus    = errors.New("spibus: bridge reported failure")
)

var bridgeCRC = crc8.MakeTable(crc8.CRC8)

// BridgeOptions selects the serial port of a bridge.
type BridgeOptions struct {
	PortName string
	BaudRate int
	// TimeoutMS bounds the gap between response bytes. Defaults to 100.
	TimeoutMS int
}

// Bridge is an SPI device reached through a USB-serial SPI bridge.
type Bridge struct {
	mu   sync.Mutex
	port io.ReadWriteCloser
}

// OpenBridge opens the serial port of a bridge, 8N1.
func OpenBridge(o BridgeOptions) (*Bridge, error) {
	timeout := o.TimeoutMS
	if timeout <= 0 {
		timeout = 100
	}
	port, err := serial.Open(serial.OpenOptions{
		PortName:              o.PortName,
		BaudRate:              uint(o.BaudRate),
		DataBits:              8,
		StopBits:              1,
		ParityMode:            serial.PARITY_NONE,
		MinimumReadSize:       0,
		InterCharacterTimeout: uint(timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("spibus: open bridge %s: %w", o.PortName, err)
	}
	return NewBridge(port), nil
}

// NewBridge returns a Bridge speaking over port.
func NewBridge(port io.ReadWriteCloser) *Bridge {
	return &Bridge{port: port}
}

func (b *Bridge) String() string {
	return "spibus.Bridge"
}

// Close closes the serial port.
func (b *Bridge) Close() error {
	return b.port.Close()
}

// Tx sends w to the bridge and fills r with the bytes clocked in. ctx is
// checked before the request is written; an exchange in flight runs to
// completion or to the port timeout.
func (b *Bridge) Tx(ctx context.Context, w, r []byte) error {
	if len(w) == 0 || len(w) > MaxBridgePayload || len(r) != len(w) {
		return ErrBridgeFrameSize
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.port.Write(encodeBridgeRequest(w)); err != nil {
		return fmt.Errorf("spibus: bridge write: %w", err)
	}

	if err := b.syncResponse(); err != nil {
		return err
	}
	hdr := make([]byte, 2)
	if _, err := io.ReadFull(b.port, hdr); err != nil {
		return fmt.Errorf("spibus: bridge read header: %w", err)
	}
	status, n := hdr[0], int(hdr[1])

	rest := make([]byte, n+1)
	if _, err := io.ReadFull(b.port, rest); err != nil {
		return fmt.Errorf("spibus: bridge read payload: %w", err)
	}
	payload, sum := rest[:n], rest[n]

	covered := append(append(make([]byte, 0, n+2), hdr...), payload...)
	if crc8.Checksum(covered, bridgeCRC) != sum {
		return ErrBridgeCRC
	}
	if status != bridgeStatusOK {
		return fmt.Errorf("%w: status 0x%02X", ErrBridgeStatus, status)
	}
	if n != len(w) {
		return ErrBridgeLength
	}
	copy(r, payload)
	return nil
}

// syncResponse discards bytes up to and including the next response sync
// byte. Leftovers of a corrupted or late frame are skipped this way. Running
// out of input after skipping bytes is ErrBridgeSync.
func (b *Bridge) syncResponse() error {
	one := make([]byte, 1)
	for skipped := 0; skipped <= maxBridgeResync; skipped++ {
		if _, err := io.ReadFull(b.port, one); err != nil {
			if skipped > 0 {
				return fmt.Errorf("%w: %d bytes skipped", ErrBridgeSync, skipped)
			}
			return fmt.Errorf("spibus: bridge read header: %w", err)
		}
		if one[0] == bridgeRespSync {
			return nil
		}
	}
	return ErrBridgeSync
}

func encodeBridgeRequest(w []byte) []byte {
	frame := make([]byte, 0, len(w)+3)
	frame = append(frame, bridgeReqSync, byte(len(w)))
	frame = append(frame, w...)
	return append(frame, crc8.Checksum(frame[1:], bridgeCRC))
}
