// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6500

import (
	"context"
	"fmt"
)

// Dev is the MPU6500 driver for a shared bus. The Device handle owns CS and
// locks the bus per transfer, so other devices can use the bus between
// calls.
//
// Reads return raw sensor words. Use RawAcceleration.Convert with
// AccelScale() (and RawGyro.Convert with GyroScale()) for physical units.
type Dev struct {
	dev Device

	accelScale AccelScale
	gyroScale  GyroScale
}

// New returns a driver talking through dev. It does not touch the device.
func New(dev Device) *Dev {
	return &Dev{
		dev:        dev,
		accelScale: DefaultAccelScale,
		gyroScale:  DefaultGyroScale,
	}
}

func (d *Dev) String() string {
	return fmt.Sprintf("MPU6500{device, accel=%s, gyro=%s}", d.accelScale, d.gyroScale)
}

// IsConnected reports whether an MPU6500 answers. A transfer error is
// reported as false.
func (d *Dev) IsConnected(ctx context.Context) bool {
	return probe(deviceTx(ctx, d.dev))
}

// SetAccelScale configures the accelerometer range.
func (d *Dev) SetAccelScale(ctx context.Context, scale AccelScale) error {
	if err := writeConfig(deviceTx(ctx, d.dev), AccelConfig, scale.configValue()); err != nil {
		return err
	}
	d.accelScale = scale
	return nil
}

// SetGyroScale configures the gyroscope range.
func (d *Dev) SetGyroScale(ctx context.Context, scale GyroScale) error {
	if err := writeConfig(deviceTx(ctx, d.dev), GyroConfig, scale.configValue()); err != nil {
		return err
	}
	d.gyroScale = scale
	return nil
}

// AccelScale returns the configured accelerometer range.
func (d *Dev) AccelScale() AccelScale { return d.accelScale }

// GyroScale returns the configured gyroscope range.
func (d *Dev) GyroScale() GyroScale { return d.gyroScale }

// ReadAcceleration reads the raw accelerometer words.
func (d *Dev) ReadAcceleration(ctx context.Context) (RawAcceleration, error) {
	x, y, z, err := readSample(deviceTx(ctx, d.dev), AccelXOutH)
	if err != nil {
		return RawAcceleration{}, err
	}
	return RawAcceleration{X: x, Y: y, Z: z}, nil
}

// ReadGyro reads the raw gyroscope words.
func (d *Dev) ReadGyro(ctx context.Context) (RawGyro, error) {
	x, y, z, err := readSample(deviceTx(ctx, d.dev), GyroXOutH)
	if err != nil {
		return RawGyro{}, err
	}
	return RawGyro{X: x, Y: y, Z: z}, nil
}
