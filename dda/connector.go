package dda

import (
	"context"
	"time"

	"github.com/coatyio/dda/config"
	"github.com/coatyio/dda/dda"
	"github.com/coatyio/dda/plog"
	"github.com/coatyio/dda/services/com/api"
	"github.com/danielbahrami/SE08-SP/common"
	"github.com/google/uuid"
)

const defaultOpenTimeout = 5 * time.Second

// Connector carries commands and heartbeats as DDA events instead of raw MQTT
// topics.
type Connector struct {
	*dda.Dda
	cfg common.DdaConfig
	id  string
}

func NewConnector(cfg common.DdaConfig, id string) (*Connector, error) {
	c := Connector{cfg: cfg, id: id}

	ddaConfig := config.New()
	ddaConfig.Services.Com.Url = cfg.Url
	ddaConfig.Identity.Name = "smartlock"
	ddaConfig.Identity.Id = id
	ddaConfig.Apis.Grpc.Disabled = true
	ddaConfig.Apis.GrpcWeb.Disabled = true
	ddaConfig.Cluster = cfg.Cluster

	var err error
	if c.Dda, err = dda.New(ddaConfig); err != nil {
		return nil, err
	}

	return &c, nil
}

// Open waits until the context deadline, or five seconds without one.
func (c *Connector) Open(ctx context.Context) error {
	timeout := defaultOpenTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	return c.Dda.Open(timeout)
}

func (c *Connector) Close() {
	plog.Println("DdaClient: close")
	c.Dda.Close()
}

func (c *Connector) PublishHeartbeat(ctx context.Context, payload []byte) error {
	event := api.Event{Type: common.HEARTBEAT_EVENT_TYPE, Id: uuid.NewString(), Source: c.id, Data: payload}
	return c.Dda.PublishEvent(event)
}

func (c *Connector) SubscribeToCommands(ctx context.Context) (<-chan string, error) {
	evts, err := c.Dda.SubscribeEvent(ctx, api.SubscriptionFilter{Type: common.COMMAND_EVENT_TYPE})
	if err != nil {
		return nil, err
	}

	return forwardCommands(ctx, evts), nil
}

func forwardCommands(ctx context.Context, evts <-chan api.Event) <-chan string {
	commands := make(chan string, 16)

	go func() {
		defer close(commands)
		for {
			select {
			case event, ok := <-evts:
				if !ok {
					return
				}
				if len(event.Data) == 0 {
					continue
				}
				plog.Printf("received command event %s from %s", event.Id, event.Source)
				select {
				case commands <- string(event.Data):
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				plog.Printf("shutdown command observer")
				return
			}
		}
	}()

	return commands
}
