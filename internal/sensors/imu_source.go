// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/relabs-tech/mpu6500_lab/internal/config"
	"github.com/relabs-tech/mpu6500_lab/internal/imu"
	"github.com/relabs-tech/mpu6500_lab/internal/mpu6500"
	"github.com/relabs-tech/mpu6500_lab/internal/spibus"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// IMUReader defines the interface for reading IMU samples.
type IMUReader interface {
	Read(ctx context.Context) (imu.Sample, error)
}

// IMUSource is an MPU6500 behind one of the driver variants, selected by
// IMU_DRIVER.
type IMUSource struct {
	name   string
	kind   string
	drv    driver
	closer io.Closer
	log    *logrus.Entry
}

// Open builds the configured driver. It does not talk to the sensor; call
// Init (or IsConnected and Configure) before reading.
func Open(cfg *config.Config, log *logrus.Entry) (*IMUSource, error) {
	drv, closer, err := openDriver(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s IMU: %w", cfg.IMUName, err)
	}
	return newIMUSource(cfg.IMUName, cfg.IMUDriver, drv, closer, log), nil
}

func newIMUSource(name, kind string, drv driver, closer io.Closer, log *logrus.Entry) *IMUSource {
	return &IMUSource{
		name:   name,
		kind:   kind,
		drv:    drv,
		closer: closer,
		log:    log.WithField("imu", name),
	}
}

func openDriver(cfg *config.Config) (driver, io.Closer, error) {
	switch cfg.IMUDriver {
	case config.DriverMock:
		return newMockDriver(), nil, nil

	case config.DriverBridge:
		b, err := spibus.OpenBridge(spibus.BridgeOptions{
			PortName: cfg.BridgeSerialPort,
			BaudRate: cfg.BridgeBaudRate,
		})
		if err != nil {
			return nil, nil, err
		}
		return deviceDriver{mpu6500.New(b)}, b, nil
	}

	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("periph host init: %w", err)
	}

	port, err := spireg.Open(cfg.IMUSPIDevice)
	if err != nil {
		return nil, nil, fmt.Errorf("SPI open (%s): %w", cfg.IMUSPIDevice, err)
	}

	mode := spi.Mode0
	if cfg.IMUCSPin != "" {
		mode |= spi.NoCS
	}
	freq := physic.Frequency(cfg.IMUSPIFreqHz) * physic.Hertz
	conn, err := port.Connect(freq, mode, 8)
	if err != nil {
		port.Close()
		return nil, nil, fmt.Errorf("SPI connect (%s @ %s): %w", cfg.IMUSPIDevice, freq, err)
	}

	if cfg.IMUDriver == config.DriverBlocking && cfg.IMUCSPin == "" {
		return blockingDriver{mpu6500.NewBlocking(conn)}, port, nil
	}

	cs, err := openCSPin(cfg.IMUCSPin)
	if err != nil {
		port.Close()
		return nil, nil, err
	}
	bus := spibus.ConnBus{Conn: conn}

	switch cfg.IMUDriver {
	case config.DriverBus:
		return mpu6500.NewBus(bus, cs), port, nil
	case config.DriverBlocking:
		return blockingDriver{mpu6500.NewBlocking(spibus.NewShared(bus).Device(cs).Blocking())}, port, nil
	default:
		return deviceDriver{mpu6500.New(spibus.NewShared(bus).Device(cs))}, port, nil
	}
}

// openCSPin looks up the chip-select pin and drives it to idle.
func openCSPin(name string) (gpio.PinOut, error) {
	cs := gpioreg.ByName(name)
	if cs == nil {
		return nil, fmt.Errorf("CS pin %q not found", name)
	}
	if err := cs.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("CS pin %s idle: %w", name, err)
	}
	return cs, nil
}

// Name returns the IMU_NAME of this source.
func (s *IMUSource) Name() string { return s.name }

// Driver returns the driver variant in use.
func (s *IMUSource) Driver() string { return s.kind }

func (s *IMUSource) String() string { return fmt.Sprintf("%s/%s", s.name, s.drv) }

// IsConnected reports whether the sensor answers WHO_AM_I.
func (s *IMUSource) IsConnected(ctx context.Context) bool {
	return s.drv.IsConnected(ctx)
}

// Configure applies the accelerometer and gyroscope ranges.
func (s *IMUSource) Configure(ctx context.Context, accel mpu6500.AccelScale, gyro mpu6500.GyroScale) error {
	if err := s.drv.SetAccelScale(ctx, accel); err != nil {
		return fmt.Errorf("%s IMU: set accel range: %w", s.name, err)
	}
	s.log.Infof("accelerometer range set to %d (%s)", byte(accel), accel)

	if err := s.drv.SetGyroScale(ctx, gyro); err != nil {
		return fmt.Errorf("%s IMU: set gyro range: %w", s.name, err)
	}
	s.log.Infof("gyroscope range set to %d (%s)", byte(gyro), gyro)
	return nil
}

// Init checks the sensor identity and applies the configured ranges.
func (s *IMUSource) Init(ctx context.Context, cfg *config.Config) error {
	if !s.IsConnected(ctx) {
		return fmt.Errorf("%s IMU: no MPU6500 answering (WHO_AM_I != 0x%02X)", s.name, mpu6500.WhoAmIValue)
	}
	s.log.Infof("MPU6500 found via %s driver", s.kind)
	return s.Configure(ctx, mpu6500.AccelScale(cfg.IMUAccelRange), mpu6500.GyroScale(cfg.IMUGyroRange))
}

// Read reads acceleration then gyro and stamps the sample.
func (s *IMUSource) Read(ctx context.Context) (imu.Sample, error) {
	a, err := s.drv.ReadAcceleration(ctx)
	if err != nil {
		return imu.Sample{}, fmt.Errorf("%s IMU accel: %w", s.name, err)
	}
	g, err := s.drv.ReadGyro(ctx)
	if err != nil {
		return imu.Sample{}, fmt.Errorf("%s IMU gyro: %w", s.name, err)
	}
	accel, gyro := s.drv.AccelScale(), s.drv.GyroScale()
	return imu.Sample{
		Source:     s.name,
		Driver:     s.kind,
		Time:       time.Now().UTC(),
		Ax:         a.X,
		Ay:         a.Y,
		Az:         a.Z,
		Gx:         g.X,
		Gy:         g.Y,
		Gz:         g.Z,
		AccelScale: accel.String(),
		GyroScale:  gyro.String(),
	}, nil
}

// Close releases the SPI port or serial bridge.
func (s *IMUSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
