package publish

import (
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftahirops/celltop/engine"
	"github.com/ftahirops/celltop/model"
)

type fakeToken struct {
	err  error
	done chan struct{}
}

func newToken(err error) *fakeToken {
	t := &fakeToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type fakeClient struct {
	mu      sync.Mutex
	topics  []string
	qos     []byte
	failOn  string
	payload map[string][]byte
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = append(c.topics, topic)
	c.qos = append(c.qos, qos)
	if c.payload == nil {
		c.payload = map[string][]byte{}
	}
	c.payload[topic] = payload.([]byte)
	if topic == c.failOn {
		return newToken(errors.New("broker said no"))
	}
	return newToken(nil)
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "celltop/cells/Cell_03/telemetry", TelemetryTopic("celltop/cells", "Cell_03"))
	assert.Equal(t, "bank/alerts", AlertsTopic("bank"))
}

func TestMessagesNilSnapshot(t *testing.T) {
	msgs, err := Messages("p", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestPublishSnapshot(t *testing.T) {
	snap, result := engine.NewEngine(7).Tick()
	client := &fakeClient{}
	p := newPublisher(client, "bank/", quietLogger())

	require.NoError(t, p.Publish(snap, result))
	require.Len(t, client.topics, model.CellCount+1)
	assert.Equal(t, "bank/Cell_01/telemetry", client.topics[0])
	assert.Equal(t, "bank/alerts", client.topics[model.CellCount])
	for _, q := range client.qos {
		assert.Equal(t, byte(1), q)
	}

	var reading model.CellReading
	require.NoError(t, json.Unmarshal(client.payload["bank/Cell_02/telemetry"], &reading))
	assert.Equal(t, snap.Cells[1].CellID, reading.CellID)
	assert.Equal(t, snap.Cells[1].PowerW, reading.PowerW)

	var alerts AlertsPayload
	require.NoError(t, json.Unmarshal(client.payload["bank/alerts"], &alerts))
	assert.Equal(t, result.Alerts.AllNormal(), alerts.AllNormal)
	assert.Equal(t, result.Alerts.Banner(), alerts.Banner)
	assert.Equal(t, result.Metrics.ActiveCount, alerts.Metrics.ActiveCount)
}

func TestPublishContinuesAfterFailure(t *testing.T) {
	snap, result := engine.NewEngine(3).Tick()
	client := &fakeClient{failOn: "bank/Cell_01/telemetry"}
	p := newPublisher(client, "bank", quietLogger())

	err := p.Publish(snap, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bank/Cell_01/telemetry")
	assert.Len(t, client.topics, model.CellCount+1)
}
