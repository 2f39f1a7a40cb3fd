package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/auction-bid-relay/internal/config"
)

// Producer publishes bid events onto the stream and waits for the broker to
// confirm each one.  The connection is dialed lazily and re-dialed after the
// broker drops it; every Submit uses its own channel.
type Producer struct {
	dial Dialer
	cfg  config.StreamConfig
	log  *zap.Logger

	mu   sync.Mutex
	conn Connection
}

// NewProducer returns a Producer for the stream described by cfg.
func NewProducer(dial Dialer, cfg config.StreamConfig, log *zap.Logger) *Producer {
	return &Producer{dial: dial, cfg: cfg, log: log}
}

func (p *Producer) channel() (Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := p.dial(p.cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("%w: dial: %v", ErrBrokerUnavailable, err)
		}
		p.conn = conn
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%w: open channel: %v", ErrBrokerUnavailable, err)
	}
	return ch, nil
}

// EnsureStream declares the stream with its retention bound.  It is safe to
// call any number of times.
func (p *Producer) EnsureStream(ctx context.Context) error {
	ch, err := p.channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()
	if err := declareStream(ch, p.cfg); err != nil {
		return fmt.Errorf("%w: declare stream %s: %v", ErrBrokerUnavailable, p.cfg.Name, err)
	}
	return nil
}

// Submit validates ev, makes sure the stream exists, publishes ev as a
// persistent JSON message and blocks until the broker acks it.  A nack or a
// missing confirmation within the configured timeout yields ErrNotConfirmed.
func (p *Producer) Submit(ctx context.Context, ev BidEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal bid event: %w", err)
	}

	ch, err := p.channel()
	if err != nil {
		p.log.Error("bid producer: broker unavailable", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("%w: confirm mode: %v", ErrBrokerUnavailable, err)
	}
	confirms := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	if err := declareStream(ch, p.cfg); err != nil {
		p.log.Error("bid producer: declare stream failed", zap.String("stream", p.cfg.Name), zap.Error(err))
		return fmt.Errorf("%w: declare stream %s: %v", ErrBrokerUnavailable, p.cfg.Name, err)
	}

	if p.cfg.ConfirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.ConfirmTimeout)
		defer cancel()
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.cfg.Name, false, false, pub); err != nil {
		p.log.Error("bid producer: publish failed", zap.String("auction_id", ev.AuctionID), zap.Error(err))
		return fmt.Errorf("%w: publish: %v", ErrBrokerUnavailable, err)
	}

	select {
	case c, ok := <-confirms:
		if !ok {
			return fmt.Errorf("%w: channel closed before confirmation", ErrBrokerUnavailable)
		}
		if !c.Ack {
			p.log.Warn("bid producer: broker nacked bid",
				zap.String("auction_id", ev.AuctionID),
				zap.String("user_id", ev.UserID),
				zap.Uint64("delivery_tag", c.DeliveryTag))
			return ErrNotConfirmed
		}
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrNotConfirmed, ctx.Err())
	}

	p.log.Debug("bid producer: publish confirmed",
		zap.String("auction_id", ev.AuctionID),
		zap.String("user_id", ev.UserID),
		zap.String("bid_amount", ev.BidAmount.String()))
	return nil
}

// Close closes the producer's connection, if any.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}
