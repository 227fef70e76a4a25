package app

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/mpu6500_lab/internal/config"
	"github.com/relabs-tech/mpu6500_lab/internal/imu"
	"github.com/relabs-tech/mpu6500_lab/internal/logging"
)

// screen is the part of *ssd1306.Dev the renderer needs.
type screen interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

var _ screen = (*ssd1306.Dev)(nil)

// RunDisplay shows the latest sample from TOPIC_IMU on an SSD1306.
func RunDisplay(log *logrus.Entry) error {
	log = logging.For(log, "display")
	cfg := config.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus %q: %w", cfg.DisplayI2CBus, err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	defer dev.Halt()
	log.Infof("display initialized on %s", bus)

	if err := dev.Draw(dev.Bounds(), renderSplash(dev.Bounds()), image.Point{}); err != nil {
		log.Warnf("error showing splash: %v", err)
	}

	hub := newSampleHub()
	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay, log)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeSamples(client, cfg.TopicIMU, log, hub.update); err != nil {
		return err
	}

	log.Info("starting update loop")
	displayLoop(ctx, dev, hub, time.Duration(cfg.DisplayUpdateInterval)*time.Millisecond, log)
	log.Info("shutting down")
	return nil
}

// displayLoop redraws dev from hub every interval until ctx is done.
func displayLoop(ctx context.Context, dev screen, hub *sampleHub, interval time.Duration, log *logrus.Entry) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		s, ok := hub.latest()
		if err := updateDisplay(dev, s, ok); err != nil {
			log.Warnf("error updating display: %v", err)
		}
	}
}

func updateDisplay(dev screen, s imu.Sample, haveData bool) error {
	return dev.Draw(dev.Bounds(), renderSample(dev.Bounds(), s, haveData), image.Point{})
}

func newCanvas(bounds image.Rectangle) (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(bounds)
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

// renderSample draws acceleration (m/s²) and gyro (°/s) on four lines.
func renderSample(bounds image.Rectangle, s imu.Sample, haveData bool) *image1bit.VerticalLSB {
	img, drawer := newCanvas(bounds)

	if !haveData {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("MPU6500"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("Waiting..."))
		return img
	}

	// Accel
	drawer.Dot = fixed.P(0, 13)
	drawer.DrawBytes([]byte(fmt.Sprintf("A:%6.2f %6.2f", s.Ax, s.Ay)))

	drawer.Dot = fixed.P(0, 26)
	drawer.DrawBytes([]byte(fmt.Sprintf("  %6.2f %s", s.Az, s.AccelScale)))

	// Gyro
	drawer.Dot = fixed.P(0, 39)
	drawer.DrawBytes([]byte(fmt.Sprintf("G:%6.1f %6.1f", s.Gx, s.Gy)))

	drawer.Dot = fixed.P(0, 52)
	drawer.DrawBytes([]byte(fmt.Sprintf("  %6.1f", s.Gz)))

	return img
}

func renderSplash(bounds image.Rectangle) *image1bit.VerticalLSB {
	img, drawer := newCanvas(bounds)

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawBytes([]byte("MPU6500 Lab"))

	drawer.Dot = fixed.P(5, 43)
	drawer.DrawBytes([]byte("Waiting for"))

	drawer.Dot = fixed.P(25, 56)
	drawer.DrawBytes([]byte("samples"))

	return img
}
