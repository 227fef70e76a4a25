// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6500

import (
	"context"
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// BusDev is the MPU6500 driver that owns the SPI bus and the CS pin.
//
// Nothing else may use the bus while a BusDev exists, even between
// transfers. In exchange there is no lock: CS is asserted, the transfer
// runs, and CS is released on return, including when ctx is cancelled
// or the transfer fails.
//
// Reads return physical units scaled by the configured ranges.
type BusDev struct {
	bus Bus
	cs  gpio.PinOut

	accelScale AccelScale
	gyroScale  GyroScale
}

// NewBus returns a driver for the sensor selected by cs on bus. It does not
// touch the device. cs should be idle (high) already.
func NewBus(bus Bus, cs gpio.PinOut) *BusDev {
	return &BusDev{
		bus:        bus,
		cs:         cs,
		accelScale: DefaultAccelScale,
		gyroScale:  DefaultGyroScale,
	}
}

func (d *BusDev) String() string {
	return fmt.Sprintf("MPU6500{bus, cs=%s, accel=%s, gyro=%s}", d.cs, d.accelScale, d.gyroScale)
}

// IsConnected reports whether an MPU6500 answers on the bus. A transfer
// error is reported as false.
func (d *BusDev) IsConnected(ctx context.Context) bool {
	return probe(busTx(ctx, d.bus, d.cs))
}

// SetAccelScale configures the accelerometer range. The stored range only
// changes when the write succeeds.
func (d *BusDev) SetAccelScale(ctx context.Context, scale AccelScale) error {
	if err := writeConfig(busTx(ctx, d.bus, d.cs), AccelConfig, scale.configValue()); err != nil {
		return err
	}
	d.accelScale = scale
	return nil
}

// SetGyroScale configures the gyroscope range. The stored range only
// changes when the write succeeds.
func (d *BusDev) SetGyroScale(ctx context.Context, scale GyroScale) error {
	if err := writeConfig(busTx(ctx, d.bus, d.cs), GyroConfig, scale.configValue()); err != nil {
		return err
	}
	d.gyroScale = scale
	return nil
}

// AccelScale returns the configured accelerometer range.
func (d *BusDev) AccelScale() AccelScale { return d.accelScale }

// GyroScale returns the configured gyroscope range.
func (d *BusDev) GyroScale() GyroScale { return d.gyroScale }

// ReadAcceleration reads the accelerometer in m/s².
func (d *BusDev) ReadAcceleration(ctx context.Context) (Acceleration, error) {
	x, y, z, err := readSample(busTx(ctx, d.bus, d.cs), AccelXOutH)
	if err != nil {
		return Acceleration{}, err
	}
	return RawAcceleration{X: x, Y: y, Z: z}.Convert(d.accelScale), nil
}

// ReadGyro reads the gyroscope in deg/s.
func (d *BusDev) ReadGyro(ctx context.Context) (Gyro, error) {
	x, y, z, err := readSample(busTx(ctx, d.bus, d.cs), GyroXOutH)
	if err != nil {
		return Gyro{}, err
	}
	return RawGyro{X: x, Y: y, Z: z}.Convert(d.gyroScale), nil
}
