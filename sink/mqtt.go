package sink

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"pmsensor"
)

const (
	MQTTTIMEOUT      = 5 * time.Second
	MQTTDISCONNECTMS = 250
)

type mqttMessage struct {
	PM25 float64 `json:"pm25"`
	PM10 float64 `json:"pm10"`
	Time string  `json:"time"`
}

func mqttPayload(t time.Time, meas pmsensor.Measurement) ([]byte, error) {
	return json.Marshal(mqttMessage{PM25: meas.PM25, PM10: meas.PM10, Time: t.UTC().Format(time.RFC3339)})
}

// MQTT publishes measurements as JSON. QoS 0, not retained
type MQTT struct {
	client paho.Client
	topic  string
}

func NewMQTT(broker string, topic string, clientId string) (*MQTT, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientId).
		SetAutoReconnect(true).
		SetConnectTimeout(MQTTTIMEOUT)
	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(MQTTTIMEOUT) {
		return nil, fmt.Errorf("mqtt connect to %v timeout", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %v failed %w", broker, err)
	}
	return &MQTT{client: client, topic: topic}, nil
}

func (p *MQTT) Put(t time.Time, meas pmsensor.Measurement) error {
	payload, err := mqttPayload(t, meas)
	if err != nil {
		return err
	}
	token := p.client.Publish(p.topic, 0, false, payload)
	if !token.WaitTimeout(MQTTTIMEOUT) {
		return fmt.Errorf("mqtt publish to %v timeout", p.topic)
	}
	return token.Error()
}

func (p *MQTT) Close() error {
	p.client.Disconnect(MQTTDISCONNECTMS)
	return nil
}
