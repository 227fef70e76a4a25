package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/mpu6500_lab/internal/config"
	"github.com/relabs-tech/mpu6500_lab/internal/logging"
	"github.com/relabs-tech/mpu6500_lab/internal/sensors"
)

// publisher sends one payload to a topic.
type publisher interface {
	Publish(topic string, payload []byte) error
}

// RunIMUProducer reads the configured MPU6500 every IMU_SAMPLE_INTERVAL and
// publishes each sample on TOPIC_IMU until SIGINT/SIGTERM.
func RunIMUProducer(log *logrus.Entry) error {
	log = logging.For(log, "producer")
	cfg := config.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := sensors.Open(cfg, log)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := src.Init(ctx, cfg); err != nil {
		return err
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer, log)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	log.Infof("starting publish loop on %s every %dms", cfg.TopicIMU, cfg.IMUSampleInterval)
	publishLoop(ctx, src, mqttPublisher{client}, cfg.TopicIMU,
		time.Duration(cfg.IMUSampleInterval)*time.Millisecond, log)

	log.Info("shutting down")
	return nil
}

// publishLoop runs until ctx is done. A failed read or publish skips the
// tick.
func publishLoop(ctx context.Context, src sensors.IMUReader, pub publisher, topic string, interval time.Duration, log *logrus.Entry) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if err := publishSample(ctx, src, pub, topic, log); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn(err)
		}
	}
}

func publishSample(ctx context.Context, src sensors.IMUReader, pub publisher, topic string, log *logrus.Entry) error {
	s, err := src.Read(ctx)
	if err != nil {
		return fmt.Errorf("read error: %w", err)
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("json marshal error: %w", err)
	}
	if err := pub.Publish(topic, payload); err != nil {
		return fmt.Errorf("MQTT publish error (%s): %w", topic, err)
	}
	log.Debugf("tick: accel ax=%.3f ay=%.3f az=%.3f | gyro gx=%.2f gy=%.2f gz=%.2f",
		s.Ax, s.Ay, s.Az, s.Gx, s.Gy, s.Gz)
	return nil
}
