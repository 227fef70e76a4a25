package main

import (
	"flag"

	"github.com/relabs-tech/mpu6500_lab/internal/app"
	"github.com/relabs-tech/mpu6500_lab/internal/config"
	"github.com/relabs-tech/mpu6500_lab/internal/logging"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "./mpu6500_config.txt", "path to configuration file")
	logging.InitParam()
	flag.Parse()

	logger := logging.GetLogger(logrus.InfoLevel)
	logger.Info("starting mpu6500 display (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunDisplay(logger); err != nil {
		logger.Fatalf("fatal: %v", err)
	}
}
