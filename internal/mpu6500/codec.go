// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6500

import "encoding/binary"

const readBit = 1 << 7

// BuildRead returns the frame that reads n registers starting at a.
// The trailing zero bytes only clock the response in.
func BuildRead(a Register, n int) []byte {
	w := make([]byte, n+1)
	w[0] = readBit | byte(a)
	return w
}

// BuildWrite returns the frame that writes v to register a.
func BuildWrite(a Register, v byte) []byte {
	return []byte{byte(a) &^ readBit, v}
}

// DecodeRead returns the n register bytes of a read response. Byte 0 is
// clocked out while the command byte goes in and carries no data.
func DecodeRead(resp []byte, n int) []byte {
	return resp[1 : n+1]
}

// DecodeWord decodes a big-endian (high byte first) signed 16-bit word.
func DecodeWord(b []byte) int16 {
	return int16(binary.BigEndian.Uint16(b))
}

// decodeTriple decodes an X_H,X_L,Y_H,Y_L,Z_H,Z_L burst.
func decodeTriple(b []byte) (x, y, z int16) {
	return DecodeWord(b[0:2]), DecodeWord(b[2:4]), DecodeWord(b[4:6])
}
