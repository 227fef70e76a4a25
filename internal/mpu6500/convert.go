// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6500

import "math"

// ToPhysical scales a raw sample to the unit of magnitude. +32767 maps to
// +magnitude; -32768 lands one count past -magnitude.
func ToPhysical(raw int16, magnitude float64) float64 {
	return float64(raw) * magnitude / math.MaxInt16
}

// Convert scales a raw accelerometer sample to m/s².
func (a RawAcceleration) Convert(scale AccelScale) Acceleration {
	m := scale.Magnitude()
	return Acceleration{
		X: ToPhysical(a.X, m),
		Y: ToPhysical(a.Y, m),
		Z: ToPhysical(a.Z, m),
	}
}

// Convert scales a raw gyroscope sample to deg/s.
func (g RawGyro) Convert(scale GyroScale) Gyro {
	m := scale.Magnitude()
	return Gyro{
		X: ToPhysical(g.X, m),
		Y: ToPhysical(g.Y, m),
		Z: ToPhysical(g.Z, m),
	}
}
