package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/mpu6500_lab/internal/config"
	"github.com/relabs-tech/mpu6500_lab/internal/imu"
	"github.com/relabs-tech/mpu6500_lab/internal/logging"
)

// RunConsoleMQTT prints every sample published on TOPIC_IMU until Ctrl+C.
func RunConsoleMQTT(log *logrus.Entry) error {
	log = logging.For(log, "console")
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole, log)
	if err != nil {
		return err
	}

	if err := subscribeSamples(client, cfg.TopicIMU, log, func(s imu.Sample) {
		fmt.Println(formatSample(s))
	}); err != nil {
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	client.Disconnect(250)
	return nil
}

func formatSample(s imu.Sample) string {
	return fmt.Sprintf(
		"[IMU %s] ax=%8.3f ay=%8.3f az=%8.3f m/s² (%s)  gx=%8.2f gy=%8.2f gz=%8.2f °/s (%s)",
		s.Source, s.Ax, s.Ay, s.Az, s.AccelScale, s.Gx, s.Gy, s.Gz, s.GyroScale,
	)
}
