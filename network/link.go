package network

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/danielbahrami/SE08-SP/common"
)

var ErrLinkDown = errors.New("network link down")

// InterfaceLink waits for a host network interface to be up with an address.
// On the device the same role is played by the Wi-Fi station setup.
type InterfaceLink struct {
	config     common.NetworkConfig
	interfaces func() ([]net.Interface, error)
	addrs      func(net.Interface) ([]net.Addr, error)
	retry      time.Duration
}

func NewInterfaceLink(config common.NetworkConfig) *InterfaceLink {
	return &InterfaceLink{
		config:     config,
		interfaces: net.Interfaces,
		addrs:      func(i net.Interface) ([]net.Addr, error) { return i.Addrs() },
		retry:      500 * time.Millisecond,
	}
}

// Up returns once a matching interface is usable, or ErrLinkDown when ctx ends first.
func (l *InterfaceLink) Up(ctx context.Context) error {
	if l.config.Ssid != "" {
		log.Printf("network - joining %s", l.config.Ssid)
	}

	for {
		name, err := l.check()
		if err == nil {
			log.Printf("network - connected via %s", name)
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrLinkDown, err)
		case <-time.After(l.retry):
		}
	}
}

func (l *InterfaceLink) check() (string, error) {
	interfaces, err := l.interfaces()
	if err != nil {
		return "", err
	}

	for _, i := range interfaces {
		if l.config.Interface != "" && i.Name != l.config.Interface {
			continue
		}
		if l.config.Interface == "" && i.Flags&net.FlagLoopback != 0 {
			continue
		}
		if i.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := l.addrs(i)
		if err != nil || len(addrs) == 0 {
			continue
		}
		return i.Name, nil
	}

	if l.config.Interface != "" {
		return "", fmt.Errorf("interface %s not up", l.config.Interface)
	}
	return "", errors.New("no usable interface")
}
