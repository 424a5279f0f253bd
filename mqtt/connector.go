package mqtt

import (
	"context"
	"errors"
	"net/url"

	"github.com/coatyio/dda/plog"
	"github.com/danielbahrami/SE08-SP/common"
	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
)

var ErrNotConnected = errors.New("mqtt connection not open")

type Connector struct {
	config         common.MqttConfig
	cliCfg         autopaho.ClientConfig
	mqttConnection *autopaho.ConnectionManager
	subscriptions  *subscriptionManager
}

func NewConnector(config common.MqttConfig) (*Connector, error) {
	u, err := url.Parse(config.Broker)
	if err != nil {
		return nil, err
	}

	connector := Connector{config: config, subscriptions: newSubscriptionManager()}

	connector.cliCfg = autopaho.ClientConfig{
		BrokerUrls:     []*url.URL{u},
		KeepAlive:      20,
		OnConnectionUp: func(cm *autopaho.ConnectionManager, connAck *paho.Connack) { plog.Println("mqtt connection up") },
		OnConnectError: func(err error) { plog.Printf("error whilst attempting connection: %s", err) },
		ClientConfig: paho.ClientConfig{
			ClientID:      config.ClientId,
			Router:        paho.NewSingleHandlerRouter(connector.handlePublish),
			OnClientError: func(err error) { plog.Printf("client error: %s", err) },
			OnServerDisconnect: func(d *paho.Disconnect) {
				if d.Properties != nil {
					plog.Printf("server requested disconnect: %s", d.Properties.ReasonString)
				} else {
					plog.Printf("server requested disconnect; reason code: %d", d.ReasonCode)
				}
			},
		},
	}

	return &connector, nil
}

func (c *Connector) Open(ctx context.Context) error {
	connection, err := autopaho.NewConnection(ctx, c.cliCfg)
	if err != nil {
		return err
	}

	if err = connection.AwaitConnection(ctx); err != nil {
		return err
	}

	c.mqttConnection = connection

	return nil
}

func (c *Connector) Close() {
	if c.mqttConnection != nil {
		c.mqttConnection.Disconnect(context.Background())
	}
	c.subscriptions.closeAll()
}

func (c *Connector) PublishHeartbeat(ctx context.Context, payload []byte) error {
	if c.mqttConnection == nil {
		return ErrNotConnected
	}

	_, err := c.mqttConnection.Publish(ctx, &paho.Publish{
		QoS:     1,
		Topic:   c.config.HeartbeatTopic,
		Payload: payload,
	})

	return err
}

// SubscribeToCommands delivers every non-empty payload received on the command
// topic as a string.
func (c *Connector) SubscribeToCommands(ctx context.Context) (<-chan string, error) {
	if c.mqttConnection == nil {
		return nil, ErrNotConnected
	}

	topic := c.config.CommandTopic
	commandChannel := c.subscriptions.add(topic)

	if _, err := c.mqttConnection.Subscribe(ctx, &paho.Subscribe{Subscriptions: []paho.SubscribeOptions{{Topic: topic, QoS: 1}}}); err != nil {
		c.subscriptions.remove(topic)
		return nil, err
	}

	return commandChannel, nil
}

func (c *Connector) handlePublish(p *paho.Publish) {
	if len(p.Payload) == 0 {
		return
	}

	plog.Printf("received data on topic %s: %s", p.Topic, p.Payload)
	if err := c.subscriptions.deliver(p.Topic, string(p.Payload)); err != nil {
		plog.Printf("%s: %s", err, p.Topic)
	}
}
