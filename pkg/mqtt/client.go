// Package mqtt wraps the paho MQTT client with the logger's connection
// conventions: a last-will message registered before the first connection
// attempt, a single connect attempt per call with retry pacing left to the
// caller, and one discrete publish per reading field.
package mqtt

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const clientIDPrefix = "light-client-"

// WillPayload is the fixed last-will message body, published by the broker
// on topic <base>/will if the client disconnects uncleanly.
const WillPayload = "connection lost"

// Config describes the fixed broker connection parameters. Nothing here can
// change after the client is constructed.
type Config struct {
	Broker         string
	Port           int
	Username       string
	Password       string
	BaseTopic      string
	QoS            byte
	Location       string
	KeepAlive      time.Duration
	ConnectTimeout time.Duration
	Logger         *slog.Logger
}

// Client is the broker connection held for the process lifetime.
type Client struct {
	id             string
	base           string
	qos            byte
	connectTimeout time.Duration
	mqtt           paho.Client
	logger         *slog.Logger
}

// NewClient builds the client. The last-will message is registered in the
// connect options here, before any connection attempt, and cannot be changed
// afterwards.
func NewClient(cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	opts := buildOptions(cfg)
	return &Client{
		id:             opts.ClientID,
		base:           cfg.BaseTopic,
		qos:            cfg.QoS,
		connectTimeout: cfg.ConnectTimeout,
		mqtt:           paho.NewClient(opts),
		logger:         cfg.Logger,
	}
}

func buildOptions(cfg Config) *paho.ClientOptions {
	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port))
	opts.SetClientID(clientIDPrefix + cfg.Location)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetKeepAlive(cfg.KeepAlive)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	// The polling loop owns reconnection; one attempt per iteration.
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetWill(WillTopic(cfg.BaseTopic), WillPayload, cfg.QoS, true)
	return opts
}

// KeepAliveFor derives the broker keep-alive from the send interval. Twice
// the interval keeps the broker from timing the client out between two
// consecutive sends.
func KeepAliveFor(sendInterval time.Duration) time.Duration {
	return 2 * sendInterval
}

// WillTopic returns the last-will topic under the given base topic.
func WillTopic(base string) string {
	return base + "/will"
}

// IsConnected reports whether the broker connection is currently up.
func (c *Client) IsConnected() bool {
	return c.mqtt.IsConnected()
}

// EnsureConnected makes a single connection attempt when the client is not
// connected. On success it subscribes to the base topic; inbound messages
// are discarded. On failure the library error is logged and returned, and
// the caller retries on its next iteration.
func (c *Client) EnsureConnected() error {
	if c.mqtt.IsConnected() {
		return nil
	}
	c.logger.LogAttrs(nil, slog.LevelInfo, "Connecting to MQTT broker", slog.String("client_id", c.id))
	token := c.mqtt.Connect()
	if !token.WaitTimeout(c.connectTimeout) {
		err := fmt.Errorf("connect timed out after %s", c.connectTimeout)
		c.logger.LogAttrs(nil, slog.LevelError, "MQTT connect failed", slog.Any("error", err))
		return err
	}
	if err := token.Error(); err != nil {
		c.logger.LogAttrs(nil, slog.LevelError, "MQTT connect failed", slog.Any("error", err))
		return err
	}
	sub := c.mqtt.Subscribe(c.base, c.qos, func(paho.Client, paho.Message) {})
	sub.Wait()
	if err := sub.Error(); err != nil {
		c.logger.LogAttrs(nil, slog.LevelWarn, "Subscribe failed", slog.String("topic", c.base), slog.Any("error", err))
	}
	c.logger.LogAttrs(nil, slog.LevelInfo, "MQTT client connected", slog.String("client_id", c.id))
	return nil
}

// Publish sends one field value to <base>/<subtopic> as a single message.
// Publishing is best-effort; there is no application-level acknowledgment
// beyond the client library's.
func (c *Client) Publish(subtopic, value string) error {
	token := c.mqtt.Publish(c.topic(subtopic), c.qos, false, value)
	token.Wait()
	return token.Error()
}

// Disconnect closes the connection cleanly, so the broker does not publish
// the will.
func (c *Client) Disconnect() {
	if c.mqtt.IsConnected() {
		c.mqtt.Disconnect(250)
	}
}

func (c *Client) topic(subtopic string) string {
	return c.base + "/" + subtopic
}
