// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/mpu6500_lab/internal/config"
	"github.com/relabs-tech/mpu6500_lab/internal/imu"
	"github.com/relabs-tech/mpu6500_lab/internal/logging"
	"github.com/relabs-tech/mpu6500_lab/internal/mpu6500"
	"github.com/relabs-tech/mpu6500_lab/internal/sensors"
)

// ErrNotConnected is returned by RunProbe when no MPU6500 answers WHO_AM_I.
var ErrNotConnected = errors.New("MPU6500 not connected")

const probeTimeout = 5 * time.Second

type prober interface {
	IsConnected(ctx context.Context) bool
	Configure(ctx context.Context, accel mpu6500.AccelScale, gyro mpu6500.GyroScale) error
	Read(ctx context.Context) (imu.Sample, error)
}

// RunProbe checks that the configured sensor answers, applies the configured
// ranges and prints one reading to out.
func RunProbe(log *logrus.Entry, out io.Writer) error {
	log = logging.For(log, "probe")
	cfg := config.Get()

	src, err := sensors.Open(cfg, log)
	if err != nil {
		return err
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	return probeOnce(ctx, src, mpu6500.AccelScale(cfg.IMUAccelRange), mpu6500.GyroScale(cfg.IMUGyroRange), out)
}

func probeOnce(ctx context.Context, p prober, accel mpu6500.AccelScale, gyro mpu6500.GyroScale, out io.Writer) error {
	if !p.IsConnected(ctx) {
		fmt.Fprintln(out, "WHO_AM_I: no MPU6500")
		return ErrNotConnected
	}
	fmt.Fprintf(out, "WHO_AM_I: 0x%02X (MPU6500)\n", mpu6500.WhoAmIValue)

	if err := p.Configure(ctx, accel, gyro); err != nil {
		return err
	}
	s, err := p.Read(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, formatSample(s))
	return nil
}
