package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quorahq/accountserver/config"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQClient publishes to and consumes from RabbitMQ queues named after
// the channel. It shares one AMQP channel per connection and reopens it
// after the broker closes it.
type RabbitMQClient struct {
	conn            *amqp.Connection
	openChannel     func() (*amqp.Channel, error)
	queueDurable    bool
	queueAutoDelete bool

	mu       sync.Mutex
	ch       *amqp.Channel
	chClosed <-chan *amqp.Error
	declared map[string]struct{}
}

// NewRabbitMQClient dials cfg.URL and opens a channel.
func NewRabbitMQClient(cfg config.RabbitMQConfig) (*RabbitMQClient, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("rabbitmq url is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}

	r := &RabbitMQClient{
		conn:            conn,
		queueDurable:    cfg.QueueDurable,
		queueAutoDelete: cfg.QueueAutoDelete,
	}
	r.openChannel = func() (*amqp.Channel, error) {
		ch, err := conn.Channel()
		if err != nil {
			return nil, err
		}
		if cfg.PrefetchCount > 0 {
			if err := ch.Qos(cfg.PrefetchCount, 0, false); err != nil {
				_ = ch.Close()
				return nil, err
			}
		}
		return ch, nil
	}

	r.mu.Lock()
	err = r.reopenLocked()
	r.mu.Unlock()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return r, nil
}

// Publish sends data as a JSON message to the queue named channel and returns
// the generated message id.
func (r *RabbitMQClient) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	ch, err := r.queue(channel)
	if err != nil {
		return "", err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Transient,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now(),
		Headers:      attributesToHeaders(attrs),
		Body:         data,
	}
	if r.queueDurable {
		msg.DeliveryMode = amqp.Persistent
	}

	if err := ch.PublishWithContext(ctx, "", channel, false, false, msg); err != nil {
		return "", fmt.Errorf("publish to %s: %w", channel, err)
	}
	return msg.MessageId, nil
}

// Subscribe consumes the queue named channel until ctx is done. A handler
// error requeues the delivery.
func (r *RabbitMQClient) Subscribe(ctx context.Context, channel string, handler Handler) error {
	ch, err := r.queue(channel)
	if err != nil {
		return err
	}

	consumerTag := "accountserver-" + uuid.NewString()
	deliveries, err := ch.Consume(channel, consumerTag, false, false, false, false, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = ch.Cancel(consumerTag, false)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}
			msg := Message{
				ID:         delivery.MessageId,
				Data:       delivery.Body,
				Attributes: headersToAttributes(delivery.Headers),
			}
			if err := handler(ctx, msg); err != nil {
				_ = delivery.Nack(false, true)
				continue
			}
			_ = delivery.Ack(false)
		}
	}
}

// Close closes the channel and then the connection.
func (r *RabbitMQClient) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ch != nil {
		_ = r.ch.Close()
		r.ch = nil
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// queue returns a live channel on which the queue name has been declared.
func (r *RabbitMQClient) queue(name string) (*amqp.Channel, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("rabbitmq channel is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closedLocked() {
		if err := r.reopenLocked(); err != nil {
			return nil, fmt.Errorf("reopen rabbitmq channel: %w", err)
		}
	}
	if _, ok := r.declared[name]; ok {
		return r.ch, nil
	}
	if _, err := r.ch.QueueDeclare(name, r.queueDurable, r.queueAutoDelete, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", name, err)
	}
	r.declared[name] = struct{}{}
	return r.ch, nil
}

// closedLocked reports whether the broker has closed the current channel.
func (r *RabbitMQClient) closedLocked() bool {
	if r.ch == nil {
		return true
	}
	select {
	case <-r.chClosed:
		return true
	default:
		return false
	}
}

// reopenLocked replaces the channel. Declarations are per channel, so the
// declared-queue cache starts over.
func (r *RabbitMQClient) reopenLocked() error {
	ch, err := r.openChannel()
	if err != nil {
		return err
	}
	r.ch = ch
	r.chClosed = ch.NotifyClose(make(chan *amqp.Error, 1))
	r.declared = make(map[string]struct{})
	return nil
}

func attributesToHeaders(attrs map[string]string) amqp.Table {
	if len(attrs) == 0 {
		return nil
	}
	headers := make(amqp.Table, len(attrs))
	for key, value := range attrs {
		headers[key] = value
	}
	return headers
}

func headersToAttributes(headers amqp.Table) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(headers))
	for key, value := range headers {
		switch typed := value.(type) {
		case string:
			attrs[key] = typed
		case []byte:
			attrs[key] = string(typed)
		default:
			attrs[key] = fmt.Sprint(value)
		}
	}
	return attrs
}
