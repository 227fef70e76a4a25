// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package mpu6500 drives an InvenSense MPU6500 accelerometer/gyroscope over SPI.
//
// Three driver variants share the same register protocol and differ only in
// who owns the SPI bus and the chip-select line:
//
//   - BusDev owns a raw bus and the CS pin for its whole lifetime.
//   - Dev talks to a device handle that locks a shared bus per transfer.
//   - BlockingDev is the same as Dev without a context, for plain
//     periph.io spi.Conn connections.
package mpu6500

import "fmt"

// Register is an MPU6500 register address.
type Register byte

// Registers used by the drivers.
const (
	GyroConfig  Register = 0x1B // GYRO_CONFIG, bits [4:3] GYRO_FS_SEL
	AccelConfig Register = 0x1C // ACCEL_CONFIG, bits [4:3] ACCEL_FS_SEL
	AccelXOutH  Register = 0x3B // ACCEL_XOUT_H, start of the 6 byte accel burst
	GyroXOutH   Register = 0x43 // GYRO_XOUT_H, start of the 6 byte gyro burst
	WhoAmI      Register = 0x75 // WHO_AM_I
)

// WhoAmIValue is the identity byte an MPU6500 returns from WHO_AM_I.
const WhoAmIValue byte = 0x70

// G is the standard gravity in m/s².
const G = 9.80665

// sampleLen is the length of one X/Y/Z burst (three 16-bit words).
const sampleLen = 6

// fsSelShift is the position of the full-scale select field in the config registers.
const fsSelShift = 3

func (r Register) String() string {
	switch r {
	case GyroConfig:
		return "GYRO_CONFIG"
	case AccelConfig:
		return "ACCEL_CONFIG"
	case AccelXOutH:
		return "ACCEL_XOUT_H"
	case GyroXOutH:
		return "GYRO_XOUT_H"
	case WhoAmI:
		return "WHO_AM_I"
	}
	return fmt.Sprintf("0x%02X", byte(r))
}

// AccelScale is the accelerometer full-scale range. The value is the
// ACCEL_FS_SEL encoding.
type AccelScale byte

// Accelerometer full-scale ranges.
const (
	Accel2G  AccelScale = 0b00
	Accel4G  AccelScale = 0b01
	Accel8G  AccelScale = 0b10
	Accel16G AccelScale = 0b11
)

// Magnitude returns the full-scale value in m/s².
func (s AccelScale) Magnitude() float64 {
	switch s & 0b11 {
	case Accel4G:
		return 4 * G
	case Accel8G:
		return 8 * G
	case Accel16G:
		return 16 * G
	}
	return 2 * G
}

func (s AccelScale) configValue() byte { return byte(s&0b11) << fsSelShift }

func (s AccelScale) String() string {
	return fmt.Sprintf("±%dg", []int{2, 4, 8, 16}[s&0b11])
}

// GyroScale is the gyroscope full-scale range. The value is the GYRO_FS_SEL
// encoding.
type GyroScale byte

// Gyroscope full-scale ranges.
const (
	Gyro250DPS  GyroScale = 0b00
	Gyro500DPS  GyroScale = 0b01
	Gyro1000DPS GyroScale = 0b10
	Gyro2000DPS GyroScale = 0b11
)

// Magnitude returns the full-scale value in deg/s.
func (s GyroScale) Magnitude() float64 {
	switch s & 0b11 {
	case Gyro500DPS:
		return 500
	case Gyro1000DPS:
		return 1000
	case Gyro2000DPS:
		return 2000
	}
	return 250
}

func (s GyroScale) configValue() byte { return byte(s&0b11) << fsSelShift }

func (s GyroScale) String() string {
	return fmt.Sprintf("±%d°/s", []int{250, 500, 1000, 2000}[s&0b11])
}

// DefaultAccelScale and DefaultGyroScale are the power-on ranges of the sensor.
const (
	DefaultAccelScale = Accel2G
	DefaultGyroScale  = Gyro250DPS
)

// Acceleration is an accelerometer sample in m/s².
type Acceleration struct {
	X, Y, Z float64
}

// Gyro is a gyroscope sample in deg/s.
type Gyro struct {
	X, Y, Z float64
}

// RawAcceleration is an accelerometer sample as the sensor reports it.
type RawAcceleration struct {
	X, Y, Z int16
}

// RawGyro is a gyroscope sample as the sensor reports it.
type RawGyro struct {
	X, Y, Z int16
}
