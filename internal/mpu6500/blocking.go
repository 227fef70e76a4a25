// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6500

import "fmt"

// BlockingDev is the MPU6500 driver over a blocking connection. Every call
// occupies the calling goroutine until the transfer completes.
//
// Reads return physical units scaled by the configured ranges.
type BlockingDev struct {
	conn Conn

	accelScale AccelScale
	gyroScale  GyroScale
}

// NewBlocking returns a driver talking through conn. It does not touch the
// device.
func NewBlocking(conn Conn) *BlockingDev {
	return &BlockingDev{
		conn:       conn,
		accelScale: DefaultAccelScale,
		gyroScale:  DefaultGyroScale,
	}
}

func (d *BlockingDev) String() string {
	return fmt.Sprintf("MPU6500{blocking, accel=%s, gyro=%s}", d.accelScale, d.gyroScale)
}

// IsConnected reports whether an MPU6500 answers. A transfer error is
// reported as false.
func (d *BlockingDev) IsConnected() bool {
	return probe(d.conn.Tx)
}

// SetAccelScale configures the accelerometer range.
func (d *BlockingDev) SetAccelScale(scale AccelScale) error {
	if err := writeConfig(d.conn.Tx, AccelConfig, scale.configValue()); err != nil {
		return err
	}
	d.accelScale = scale
	return nil
}

// SetGyroScale configures the gyroscope range.
func (d *BlockingDev) SetGyroScale(scale GyroScale) error {
	if err := writeConfig(d.conn.Tx, GyroConfig, scale.configValue()); err != nil {
		return err
	}
	d.gyroScale = scale
	return nil
}

// AccelScale returns the configured accelerometer range.
func (d *BlockingDev) AccelScale() AccelScale { return d.accelScale }

// GyroScale returns the configured gyroscope range.
func (d *BlockingDev) GyroScale() GyroScale { return d.gyroScale }

// ReadAcceleration reads the accelerometer in m/s².
func (d *BlockingDev) ReadAcceleration() (Acceleration, error) {
	x, y, z, err := readSample(d.conn.Tx, AccelXOutH)
	if err != nil {
		return Acceleration{}, err
	}
	return RawAcceleration{X: x, Y: y, Z: z}.Convert(d.accelScale), nil
}

// ReadGyro reads the gyroscope in deg/s.
func (d *BlockingDev) ReadGyro() (Gyro, error) {
	x, y, z, err := readSample(d.conn.Tx, GyroXOutH)
	if err != nil {
		return Gyro{}, err
	}
	return RawGyro{X: x, Y: y, Z: z}.Convert(d.gyroScale), nil
}
