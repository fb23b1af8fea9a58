// Package queue publishes domain events to RabbitMQ. Failures are logged and
// returned so callers can carry on without the broker.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"github.com/markdave123-py/chatters/internal/core"
)

var errClosed = errors.New("publisher closed")

// AMQPPublisher keeps one connection and channel open and redials lazily
// after the broker drops them. Queues are declared durable on first use.
type AMQPPublisher struct {
	url string

	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	declared map[string]bool
	closed   bool
}

var _ core.EventPublisher = (*AMQPPublisher)(nil)

// NewAMQPPublisher dials once so a bad URL fails at startup.
func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	p := &AMQPPublisher{url: url, declared: map[string]bool{}}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *AMQPPublisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}
	p.conn, p.ch = conn, ch
	p.declared = map[string]bool{}
	return nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).WithField("queue", topic).Warn("rabbitmq: marshal event failed")
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return errClosed
	}
	if p.conn == nil || p.conn.IsClosed() || p.ch == nil || p.ch.IsClosed() {
		if err := p.connect(); err != nil {
			log.WithError(err).Warn("rabbitmq: redial failed")
			return err
		}
	}

	if !p.declared[topic] {
		if _, err := p.ch.QueueDeclare(topic, true, false, false, false, nil); err != nil {
			log.WithError(err).WithField("queue", topic).Warn("rabbitmq: queue declare failed")
			return err
		}
		p.declared[topic] = true
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", topic, false, false, pub); err != nil {
		log.WithError(err).WithField("queue", topic).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}
