package imu

import "time"

// Sample is one acceleration + gyro reading as published on MQTT and served
// over HTTP.
type Sample struct {
	Source string    `json:"source"` // IMU_NAME
	Driver string    `json:"driver"` // bus, device, blocking, bridge, mock
	Time   time.Time `json:"time"`

	Ax float64 `json:"ax"` // accel, m/s²
	Ay float64 `json:"ay"`
	Az float64 `json:"az"`

	Gx float64 `json:"gx"` // gyro, deg/s
	Gy float64 `json:"gy"`
	Gz float64 `json:"gz"`

	AccelScale string `json:"accel_scale"` // e.g. "±4g"
	GyroScale  string `json:"gyro_scale"`  // e.g. "±500°/s"
}

