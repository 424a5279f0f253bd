package mqtt

import (
	"errors"
	"sync"
)

const subscriptionBuffer = 16

var (
	errNoSubscription = errors.New("no subscription for topic")
	errSubscriberBusy = errors.New("subscriber buffer full, message dropped")
)

// subscriptionManager routes payloads of a topic to the channel of its subscriber.
type subscriptionManager struct {
	mu            sync.Mutex
	subscriptions map[string]chan string
}

func newSubscriptionManager() *subscriptionManager {
	return &subscriptionManager{subscriptions: make(map[string]chan string)}
}

func (sm *subscriptionManager) add(topic string) chan string {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	c := make(chan string, subscriptionBuffer)
	sm.subscriptions[topic] = c
	return c
}

func (sm *subscriptionManager) remove(topic string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if c, ok := sm.subscriptions[topic]; ok {
		close(c)
		delete(sm.subscriptions, topic)
	}
}

// deliver never blocks, a full subscriber loses the message.
func (sm *subscriptionManager) deliver(topic string, msg string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	c, ok := sm.subscriptions[topic]
	if !ok {
		return errNoSubscription
	}
	select {
	case c <- msg:
		return nil
	default:
		return errSubscriberBusy
	}
}

func (sm *subscriptionManager) closeAll() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for topic, c := range sm.subscriptions {
		close(c)
		delete(sm.subscriptions, topic)
	}
}
