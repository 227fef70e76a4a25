// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"context"

	"github.com/relabs-tech/mpu6500_lab/internal/mpu6500"
)

// driver is the common surface of the MPU6500 driver variants as seen by
// IMUSource. Reads are always in physical units.
type driver interface {
	IsConnected(ctx context.Context) bool
	SetAccelScale(ctx context.Context, s mpu6500.AccelScale) error
	SetGyroScale(ctx context.Context, s mpu6500.GyroScale) error
	ReadAcceleration(ctx context.Context) (mpu6500.Acceleration, error)
	ReadGyro(ctx context.Context) (mpu6500.Gyro, error)
	AccelScale() mpu6500.AccelScale
	GyroScale() mpu6500.GyroScale
}

// *mpu6500.BusDev already converts, so it is a driver as is.
var _ driver = (*mpu6500.BusDev)(nil)

// deviceDriver converts the raw words of a shared-bus Dev with its own
// configured scales.
type deviceDriver struct {
	*mpu6500.Dev
}

func (d deviceDriver) ReadAcceleration(ctx context.Context) (mpu6500.Acceleration, error) {
	raw, err := d.Dev.ReadAcceleration(ctx)
	if err != nil {
		return mpu6500.Acceleration{}, err
	}
	return raw.Convert(d.Dev.AccelScale()), nil
}

func (d deviceDriver) ReadGyro(ctx context.Context) (mpu6500.Gyro, error) {
	raw, err := d.Dev.ReadGyro(ctx)
	if err != nil {
		return mpu6500.Gyro{}, err
	}
	return raw.Convert(d.Dev.GyroScale()), nil
}

// blockingDriver drops the context; a blocking transfer cannot be
// interrupted once started, so ctx is only checked before each call.
type blockingDriver struct {
	dev *mpu6500.BlockingDev
}

func (b blockingDriver) String() string { return b.dev.String() }

func (b blockingDriver) AccelScale() mpu6500.AccelScale { return b.dev.AccelScale() }

func (b blockingDriver) GyroScale() mpu6500.GyroScale { return b.dev.GyroScale() }

func (b blockingDriver) IsConnected(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	return b.dev.IsConnected()
}

func (b blockingDriver) SetAccelScale(ctx context.Context, s mpu6500.AccelScale) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.dev.SetAccelScale(s)
}

func (b blockingDriver) SetGyroScale(ctx context.Context, s mpu6500.GyroScale) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.dev.SetGyroScale(s)
}

func (b blockingDriver) ReadAcceleration(ctx context.Context) (mpu6500.Acceleration, error) {
	if err := ctx.Err(); err != nil {
		return mpu6500.Acceleration{}, err
	}
	return b.dev.ReadAcceleration()
}

func (b blockingDriver) ReadGyro(ctx context.Context) (mpu6500.Gyro, error) {
	if err := ctx.Err(); err != nil {
		return mpu6500.Gyro{}, err
	}
	return b.dev.ReadGyro()
}
