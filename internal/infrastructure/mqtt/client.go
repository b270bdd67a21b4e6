package mqtt

import (
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/aldersync/voice-core/internal/infrastructure/config"
)

// Client is a publish-only MQTT client for Voice Core's event stream.
//
// Voice Core never subscribes: it announces its own status and fans out
// command outcomes for other services to consume. Reconnection is
// handled by the paho library; publishes issued while disconnected fail
// fast with ErrNotConnected rather than queueing.
//
// All methods are safe for concurrent use.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig

	connected bool
	connMu    sync.RWMutex
}

// Connect establishes a connection to the MQTT broker.
//
// It configures Last Will and Testament on voicecore/system/status,
// auto-reconnect with exponential backoff, and announces online status
// once connected.
//
// Parameters:
//   - cfg: MQTT configuration from config.yaml
//
// Returns:
//   - *Client: Connected client ready for publishing
//   - error: If the initial connection fails within the timeout
func Connect(cfg config.MQTTConfig) (*Client, error) {
	opts := buildClientOptions(cfg)
	configureLWT(opts, cfg.Broker.ClientID)

	c := &Client{cfg: cfg}

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.setConnected(true)
		// Re-announce on every (re)connect so the retained status is fresh.
		_ = c.Publish(Topics{}.SystemStatus(), []byte(buildOnlinePayload(cfg.Broker.ClientID)), 1, true) //nolint:errcheck // Best effort status announce
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, _ error) {
		c.setConnected(false)
	})

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnect callback runs asynchronously; mark connected now so
	// publishes immediately after Connect do not race it.
	c.setConnected(true)

	return c, nil
}

// Disconnect publishes a graceful offline status and closes the
// connection, waiting briefly for in-flight operations.
func (c *Client) Disconnect() {
	if c.client == nil {
		return
	}
	if c.IsConnected() {
		_ = c.Publish(Topics{}.SystemStatus(), []byte(buildOfflinePayload(c.cfg.Broker.ClientID)), 1, true) //nolint:errcheck // Best effort status announce
	}
	c.setConnected(false)
	c.client.Disconnect(defaultDisconnectQuiesce)
}

// IsConnected reports whether the client currently has a broker connection.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client != nil && c.client.IsConnected()
}

func (c *Client) setConnected(v bool) {
	c.connMu.Lock()
	c.connected = v
	c.connMu.Unlock()
}
