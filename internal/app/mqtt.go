package app

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/mpu6500_lab/internal/imu"
)

// connectMQTT connects to broker and waits for the CONNACK.
func connectMQTT(broker, clientID string, log *logrus.Entry) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect %s: %w", broker, token.Error())
	}
	log.Infof("connected to MQTT broker at %s as %s", broker, clientID)
	return client, nil
}

// subscribeSamples decodes every message on topic as an imu.Sample and hands
// it to fn. Malformed payloads are logged and dropped.
func subscribeSamples(client mqtt.Client, topic string, log *logrus.Entry, fn func(imu.Sample)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		s, err := decodeSample(msg.Payload())
		if err != nil {
			log.Warnf("%s unmarshal error: %v", msg.Topic(), err)
			return
		}
		fn(s)
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("MQTT subscribe %s: %w", topic, token.Error())
	}
	log.Infof("subscribed to %s", topic)
	return nil
}

func decodeSample(payload []byte) (imu.Sample, error) {
	var s imu.Sample
	err := json.Unmarshal(payload, &s)
	return s, err
}

// mqttPublisher publishes retained QoS 0 messages.
type mqttPublisher struct {
	client mqtt.Client
}

func (p mqttPublisher) Publish(topic string, payload []byte) error {
	if token := p.client.Publish(topic, 0, true, payload); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}
