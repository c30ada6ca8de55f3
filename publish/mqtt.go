// Package publish forwards evaluated snapshots to an MQTT broker.
package publish

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/ftahirops/celltop/model"
)

const (
	qos          = 1
	retained     = false
	writeTimeout = 5 * time.Second
)

// Config holds MQTT connection settings.
type Config struct {
	Broker      string
	ClientID    string
	TopicPrefix string
	Username    string
	Password    string
}

// publishClient is the subset of mqtt.Client used for publishing.
type publishClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTPublisher publishes one telemetry message per cell and one alert
// summary per snapshot.
type MQTTPublisher struct {
	client publishClient
	conn   mqtt.Client // nil when constructed around a bare publishClient
	prefix string
	log    logrus.FieldLogger
}

// Connect dials the broker and returns a ready publisher.
func Connect(cfg Config, log logrus.FieldLogger) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.WithField("broker", cfg.Broker).Info("mqtt connected")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.WithError(err).Warn("mqtt connection lost")
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", cfg.Broker, token.Error())
	}

	p := newPublisher(client, cfg.TopicPrefix, log)
	p.conn = client
	return p, nil
}

func newPublisher(client publishClient, prefix string, log logrus.FieldLogger) *MQTTPublisher {
	return &MQTTPublisher{
		client: client,
		prefix: strings.TrimSuffix(prefix, "/"),
		log:    log,
	}
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	if p.conn != nil {
		p.conn.Disconnect(250)
	}
}

// Publish sends every message for one snapshot. The first failure is
// returned after all messages have been attempted.
func (p *MQTTPublisher) Publish(snap *model.Snapshot, result *model.Result) error {
	msgs, err := Messages(p.prefix, snap, result)
	if err != nil {
		return err
	}
	var firstErr error
	for _, m := range msgs {
		token := p.client.Publish(m.Topic, qos, retained, m.Payload)
		if !token.WaitTimeout(writeTimeout) {
			err = fmt.Errorf("publish %s: timed out", m.Topic)
		} else {
			err = token.Error()
		}
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("publish %s: %w", m.Topic, err)
			}
			continue
		}
		p.log.WithField("topic", m.Topic).Debug("published")
	}
	return firstErr
}

// Message is one topic/payload pair.
type Message struct {
	Topic   string
	Payload []byte
}

// AlertsPayload is the body published on <prefix>/alerts.
type AlertsPayload struct {
	Timestamp time.Time            `json:"timestamp"`
	AllNormal bool                 `json:"all_normal"`
	Banner    string               `json:"banner"`
	Alerts    []model.Alert        `json:"alerts"`
	Metrics   model.DerivedMetrics `json:"metrics"`
}

// TelemetryTopic returns <prefix>/<cell_id>/telemetry.
func TelemetryTopic(prefix, cellID string) string {
	return prefix + "/" + cellID + "/telemetry"
}

// AlertsTopic returns <prefix>/alerts.
func AlertsTopic(prefix string) string {
	return prefix + "/alerts"
}

// Messages builds the per-cell telemetry messages followed by the alert
// summary. A nil snapshot yields no messages.
func Messages(prefix string, snap *model.Snapshot, result *model.Result) ([]Message, error) {
	if snap == nil {
		return nil, nil
	}
	msgs := make([]Message, 0, len(snap.Cells)+1)
	for _, c := range snap.Cells {
		data, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", c.CellID, err)
		}
		msgs = append(msgs, Message{Topic: TelemetryTopic(prefix, c.CellID), Payload: data})
	}

	payload := AlertsPayload{Timestamp: snap.Timestamp, AllNormal: true, Alerts: []model.Alert{}}
	if result != nil {
		payload.AllNormal = result.Alerts.AllNormal()
		payload.Banner = result.Alerts.Banner()
		if a := result.Alerts.Alerts(); a != nil {
			payload.Alerts = a
		}
		payload.Metrics = result.Metrics
	} else {
		payload.Banner = model.AllNormalBanner
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode alerts: %w", err)
	}
	msgs = append(msgs, Message{Topic: AlertsTopic(prefix), Payload: data})
	return msgs, nil
}
