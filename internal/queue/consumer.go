package queue

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/auction-bid-relay/internal/config"
)

// Dispatcher receives every decoded bid event.  Dispatch runs synchronously
// in the consuming goroutine.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev BidEvent) error
}

// State is the lifecycle position of a Consumer.
type State int32

const (
	StateCreated State = iota
	StateStarted
	StateSubscribed
	StateRunning
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "CREATED"
	case StateStarted:
		return "STARTED"
	case StateSubscribed:
		return "SUBSCRIBED"
	case StateRunning:
		return "RUNNING"
	case StateClosed:
		return "CLOSED"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Consumer subscribes to the bid stream and hands each message to a
// Dispatcher until its context is cancelled.
type Consumer struct {
	dial       Dialer
	cfg        config.StreamConfig
	dispatcher Dispatcher
	log        *zap.Logger
	state      atomic.Int32

	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewConsumer returns a Consumer in state CREATED.
func NewConsumer(dial Dialer, cfg config.StreamConfig, d Dispatcher, log *zap.Logger) *Consumer {
	return &Consumer{
		dial:       dial,
		cfg:        cfg,
		dispatcher: d,
		log:        log,
		minBackoff: time.Second,
		maxBackoff: 30 * time.Second,
	}
}

// State returns the current lifecycle state.
func (c *Consumer) State() State { return State(c.state.Load()) }

func (c *Consumer) setState(s State) { c.state.Store(int32(s)) }

// Run subscribes at the configured stream offset (the tail by default, so
// nothing published while no consumer was attached is replayed) and
// processes messages until ctx is cancelled.  A dropped connection is
// re-dialed with exponential backoff.  Run returns the number of messages
// this invocation dispatched without error.  The error is non-nil only when
// no subscription could be established before ctx ended.
func (c *Consumer) Run(ctx context.Context) (int, error) {
	defer c.setState(StateClosed)

	processed := 0
	subscribed := false
	var lastErr error
	backoff := c.minBackoff
	for ctx.Err() == nil {
		conn, err := c.dial(c.cfg.URL)
		if err != nil {
			lastErr = err
			c.log.Warn("bid consumer: failed to dial broker",
				zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleepCtx(ctx, backoff) {
				break
			}
			if backoff < c.maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = c.minBackoff // reset after successful connect
		c.setState(StateStarted)

		n, ok, err := c.consumeLoop(ctx, conn)
		processed += n
		subscribed = subscribed || ok
		if cerr := conn.Close(); cerr != nil && !errors.Is(cerr, amqp.ErrClosed) {
			c.log.Debug("bid consumer: close connection", zap.Error(cerr))
		}
		if ctx.Err() != nil {
			break
		}
		lastErr = err
		c.log.Warn("bid consumer: consume loop ended; reconnecting", zap.Error(err))
		if !sleepCtx(ctx, backoff) {
			break
		}
	}

	if !subscribed && lastErr != nil {
		return processed, fmt.Errorf("%w: %v", ErrBrokerUnavailable, lastErr)
	}
	return processed, nil
}

// consumeLoop runs one subscription on conn.  The bool reports whether the
// subscription was established.
func (c *Consumer) consumeLoop(ctx context.Context, conn Connection) (int, bool, error) {
	ch, err := conn.Channel()
	if err != nil {
		return 0, false, fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()
	closed := ch.NotifyClose(make(chan *amqp.Error, 1))

	// stream queues refuse consumers without a prefetch limit
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return 0, false, fmt.Errorf("set qos: %w", err)
	}
	if err := declareStream(ch, c.cfg); err != nil {
		return 0, false, fmt.Errorf("declare stream: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, c.cfg.Name, c.cfg.ConsumerTag,
		false, false, false, false,
		amqp.Table{"x-stream-offset": c.cfg.Offset},
	)
	if err != nil {
		return 0, false, fmt.Errorf("stream consume: %w", err)
	}
	c.setState(StateSubscribed)
	c.log.Info("bid consumer: subscribed",
		zap.String("stream", c.cfg.Name), zap.String("offset", c.cfg.Offset))

	c.setState(StateRunning)
	n := 0
	for {
		select {
		case <-ctx.Done():
			return n, true, nil
		case amqpErr := <-closed:
			return n, true, fmt.Errorf("channel closed: %v", amqpErr)
		case d, ok := <-msgs:
			if !ok {
				return n, true, errors.New("deliveries channel closed")
			}
			if c.handle(ctx, d) {
				n++
			}
		}
	}
}

// handle decodes and dispatches one delivery and reports whether dispatch
// succeeded.  Every delivery is acked: malformed bodies and failed
// dispatches are logged and dropped, never redelivered.
func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) bool {
	defer func() { _ = d.Ack(false) }()

	ev, err := DecodeBidEvent(d.Body)
	if err != nil {
		c.log.Warn("bid consumer: dropping message", zap.Error(err), zap.ByteString("body", d.Body))
		return false
	}
	// dispatch runs to completion even when the subscription is being torn down
	if err := c.dispatcher.Dispatch(context.WithoutCancel(ctx), ev); err != nil {
		c.log.Error("bid consumer: dispatch failed",
			zap.String("auction_id", ev.AuctionID),
			zap.String("user_id", ev.UserID),
			zap.Error(err))
		return false
	}
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
