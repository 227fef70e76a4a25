// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"context"
	"math"
	"time"

	"github.com/relabs-tech/mpu6500_lab/internal/mpu6500"
)

// mockDriver generates smoothly changing samples: gravity rotating slowly
// around X plus a sinusoidal rotation rate. Values are clamped to the
// configured ranges like the real sensor saturates.
type mockDriver struct {
	start time.Time

	accelScale mpu6500.AccelScale
	gyroScale  mpu6500.GyroScale
}

func newMockDriver() *mockDriver {
	return &mockDriver{
		start:      time.Now(),
		accelScale: mpu6500.DefaultAccelScale,
		gyroScale:  mpu6500.DefaultGyroScale,
	}
}

func (m *mockDriver) String() string { return "MPU6500{mock}" }

func (m *mockDriver) IsConnected(ctx context.Context) bool { return ctx.Err() == nil }

func (m *mockDriver) SetAccelScale(_ context.Context, s mpu6500.AccelScale) error {
	m.accelScale = s
	return nil
}

func (m *mockDriver) SetGyroScale(_ context.Context, s mpu6500.GyroScale) error {
	m.gyroScale = s
	return nil
}

func (m *mockDriver) AccelScale() mpu6500.AccelScale { return m.accelScale }

func (m *mockDriver) GyroScale() mpu6500.GyroScale { return m.gyroScale }

func (m *mockDriver) ReadAcceleration(ctx context.Context) (mpu6500.Acceleration, error) {
	if err := ctx.Err(); err != nil {
		return mpu6500.Acceleration{}, err
	}
	elapsed := time.Since(m.start).Seconds()
	tilt := 0.3 * math.Sin(elapsed*0.5)
	limit := m.accelScale.Magnitude()
	return mpu6500.Acceleration{
		X: clamp(0.2*math.Sin(elapsed*2), limit),
		Y: clamp(mpu6500.G*math.Sin(tilt), limit),
		Z: clamp(mpu6500.G*math.Cos(tilt), limit),
	}, nil
}

func (m *mockDriver) ReadGyro(ctx context.Context) (mpu6500.Gyro, error) {
	if err := ctx.Err(); err != nil {
		return mpu6500.Gyro{}, err
	}
	elapsed := time.Since(m.start).Seconds()
	limit := m.gyroScale.Magnitude()
	return mpu6500.Gyro{
		X: clamp(20*math.Sin(elapsed), limit),
		Y: clamp(15*math.Cos(elapsed*0.7), limit),
		Z: clamp(5*math.Sin(elapsed*0.3), limit),
	}, nil
}

func clamp(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}
