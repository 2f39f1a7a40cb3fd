package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/auction-bid-relay/internal/config"
)

func testStreamConfig() config.StreamConfig {
	return config.StreamConfig{
		URL:            "amqp://test",
		Name:           "bidings_stream",
		MaxLengthBytes: 5_000_000_000,
		Offset:         "last",
		Prefetch:       10,
		ConfirmTimeout: time.Second,
	}
}

type declareCall struct {
	name    string
	durable bool
	args    amqp.Table
}

// fakeChannel stands in for *amqp.Channel and doubles as the Acknowledger
// of the deliveries it hands out.
type fakeChannel struct {
	mu sync.Mutex

	deliveries chan amqp.Delivery
	confirms   chan amqp.Confirmation

	declared    []declareCall
	prefetch    int
	consumeArgs amqp.Table
	confirmMode bool
	published   []amqp.Publishing
	acks        int
	closed      bool

	nack       bool // answer publishes with a nack
	noConfirm  bool // never answer publishes
	declareErr error
	publishErr error
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{deliveries: make(chan amqp.Delivery)}
}

func (f *fakeChannel) Qos(prefetchCount, _ int, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefetch = prefetchCount
	return nil
}

func (f *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, args amqp.Table) (amqp.Queue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.declareErr != nil {
		return amqp.Queue{}, f.declareErr
	}
	f.declared = append(f.declared, declareCall{name: name, durable: durable, args: args})
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) Confirm(bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmMode = true
	return nil
}

func (f *fakeChannel) NotifyPublish(c chan amqp.Confirmation) chan amqp.Confirmation {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirms = c
	return c
}

func (f *fakeChannel) NotifyClose(c chan *amqp.Error) chan *amqp.Error { return c }

func (f *fakeChannel) PublishWithContext(_ context.Context, _, _ string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, msg)
	if !f.noConfirm && f.confirms != nil {
		f.confirms <- amqp.Confirmation{DeliveryTag: uint64(len(f.published)), Ack: !f.nack}
	}
	return nil
}

func (f *fakeChannel) ConsumeWithContext(_ context.Context, _, _ string, _, _, _, _ bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consumeArgs = args
	return f.deliveries, nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeChannel) Ack(uint64, bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acks++
	return nil
}

func (f *fakeChannel) Nack(uint64, bool, bool) error { return errors.New("unexpected nack") }

func (f *fakeChannel) Reject(uint64, bool) error { return errors.New("unexpected reject") }

func (f *fakeChannel) ackCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.acks
}

func (f *fakeChannel) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeChannel) delivery(body string) amqp.Delivery {
	return amqp.Delivery{Acknowledger: f, Body: []byte(body)}
}

type fakeConn struct {
	mu      sync.Mutex
	ch      *fakeChannel
	closed  bool
	chanErr error
}

func (c *fakeConn) Channel() (Channel, error) {
	if c.chanErr != nil {
		return nil, c.chanErr
	}
	return c.ch, nil
}

func (c *fakeConn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func dialTo(conn *fakeConn) Dialer {
	return func(string) (Connection, error) { return conn, nil }
}
