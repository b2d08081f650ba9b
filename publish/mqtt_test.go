package publish

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func completedToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool { <-t.done; return true }

func (t *fakeToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}

func (t *fakeToken) Done() <-chan struct{} { return t.done }
func (t *fakeToken) Error() error          { return t.err }

type fakeClient struct {
	mqtt.Client // Unused methods panic

	token        mqtt.Token
	topic        string
	qos          byte
	retained     bool
	payload      interface{}
	disconnected uint
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.topic, c.qos, c.retained, c.payload = topic, qos, retained, payload
	return c.token
}

func (c *fakeClient) Disconnect(quiesce uint) { c.disconnected = quiesce }

func TestMQTTSink_Publish(t *testing.T) {
	client := &fakeClient{token: completedToken(nil)}
	sink := newMQTTSink(client, MQTTConfig{QoS: 1})

	err := sink.Publish(context.Background(), "htmtfunas/97921921312/test", "Hello ESP32: 1")
	require.NoError(t, err)

	assert.Equal(t, "htmtfunas/97921921312/test", client.topic)
	assert.Equal(t, byte(1), client.qos)
	assert.False(t, client.retained)
	assert.Equal(t, "Hello ESP32: 1", client.payload)
}

func TestMQTTSink_PublishError(t *testing.T) {
	boom := errors.New("not connected")
	sink := newMQTTSink(&fakeClient{token: completedToken(boom)}, MQTTConfig{})

	assert.ErrorIs(t, sink.Publish(context.Background(), "t", "p"), boom)
}

func TestMQTTSink_PublishContextCancelled(t *testing.T) {
	pending := &fakeToken{done: make(chan struct{})}
	sink := newMQTTSink(&fakeClient{token: pending}, MQTTConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, sink.Publish(ctx, "t", "p"), context.Canceled)
}

func TestMQTTSink_Close(t *testing.T) {
	client := &fakeClient{}
	sink := newMQTTSink(client, MQTTConfig{})

	require.NoError(t, sink.Close())
	assert.Equal(t, uint(disconnectQuiesce), client.disconnected)
}

func TestWait(t *testing.T) {
	assert.ErrorIs(t, wait(&fakeToken{done: make(chan struct{})}, 10*time.Millisecond), ErrTimeout)
	assert.NoError(t, wait(completedToken(nil), time.Second))
}

func TestNewClientID(t *testing.T) {
	a := NewClientID("blink-counter")
	b := NewClientID("blink-counter")

	assert.NotEqual(t, a, b)
	require.True(t, strings.HasPrefix(a, "blink-counter-"))
	_, err := uuid.Parse(strings.TrimPrefix(a, "blink-counter-"))
	assert.NoError(t, err)
}
