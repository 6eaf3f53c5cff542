package mqtt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOptions(t *testing.T) {
	opts := buildOptions(Config{
		Broker:         "broker.example.com",
		Port:           1883,
		Username:       "lightlogger",
		Password:       "hunter2",
		BaseTopic:      "sensors/light",
		QoS:            1,
		Location:       "lab",
		KeepAlive:      2 * time.Minute,
		ConnectTimeout: 10 * time.Second,
	})

	require.Len(t, opts.Servers, 1)
	assert.Equal(t, "tcp://broker.example.com:1883", opts.Servers[0].String())
	assert.Equal(t, "light-client-lab", opts.ClientID)
	assert.Equal(t, "lightlogger", opts.Username)
	assert.Equal(t, "hunter2", opts.Password)
	assert.EqualValues(t, 120, opts.KeepAlive)
	assert.False(t, opts.AutoReconnect)
	assert.False(t, opts.ConnectRetry)

	assert.True(t, opts.WillEnabled)
	assert.Equal(t, "sensors/light/will", opts.WillTopic)
	assert.Equal(t, []byte(WillPayload), opts.WillPayload)
	assert.EqualValues(t, 1, opts.WillQos)
	assert.True(t, opts.WillRetained)
}

func TestNewClient(t *testing.T) {
	c := NewClient(Config{
		Broker:    "broker.example.com",
		Port:      1883,
		BaseTopic: "sensors/light",
		QoS:       1,
		Location:  "lab",
		KeepAlive: 2 * time.Minute,
	})
	require.NotNil(t, c)
	require.NotNil(t, c.mqtt)
	assert.Equal(t, "light-client-lab", c.id)
	assert.False(t, c.IsConnected())
	assert.Equal(t, 10*time.Second, c.connectTimeout)
}

func TestKeepAliveFor(t *testing.T) {
	assert.Equal(t, 2*time.Minute, KeepAliveFor(time.Minute))
	assert.Equal(t, 10*time.Minute, KeepAliveFor(5*time.Minute))
}

func TestTopicJoin(t *testing.T) {
	c := &Client{base: "sensors/light"}
	assert.Equal(t, "sensors/light/lux", c.topic("lux"))
	assert.Equal(t, "sensors/light/readingCount", c.topic("readingCount"))
}

func TestWillTopic(t *testing.T) {
	assert.Equal(t, "sensors/light/will", WillTopic("sensors/light"))
}
