package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"gastos/internal/retry"
)

// Circuit breaker states.
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	publishTimeout = 5 * time.Second
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type Client struct {
	url          string
	exchangeName string
	queueName    string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	state        int32
	failureCount int64
	lastFailure  time.Time
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
	}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

// connect dials the broker and declares the topology. Callers hold no lock.
func (c *Client) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *Client) connectLocked() error {
	if c.conn != nil && !c.conn.IsClosed() && c.channel != nil && !c.channel.IsClosed() {
		return nil
	}
	c.closeLocked()

	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	c.conn = conn
	c.channel = channel

	if err := c.setup(); err != nil {
		c.closeLocked()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}
	return nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Direct exchange: the queue name doubles as routing key.
	err = c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.mu.Lock()
	last := c.lastFailure
	c.mu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

// PublishRecordAppended announces a stored record to the sync worker.
func (c *Client) PublishRecordAppended(ctx context.Context, id, ownerID int64) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("publish record %d: %w", id, ErrCircuitOpen)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := NewRecordAppendedMessage(id, ownerID).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	c.mu.Lock()
	err = c.connectLocked()
	if err == nil {
		err = c.channel.PublishWithContext(
			ctx,
			c.exchangeName, // exchange
			c.queueName,    // routing key
			false,          // mandatory
			false,          // immediate
			amqp091.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp091.Persistent,
				MessageId:    uuid.NewString(),
				Timestamp:    time.Now(),
				Body:         body,
			},
		)
	}
	c.mu.Unlock()
	if err != nil {
		c.recordFailure()
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	slog.InfoContext(ctx, "Published record appended message",
		"id", id,
		"owner_id", ownerID,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

// ConsumeRecordAppended delivers messages to handler until ctx is done,
// reconnecting with backoff when the broker connection drops. Failed
// messages are requeued; undecodable ones are dropped.
func (c *Client) ConsumeRecordAppended(ctx context.Context, handler func(context.Context, *RecordAppendedMessage) error) error {
	for attempt := 0; ; {
		err := c.consume(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !retry.IsConnectionError(err) {
			return err
		}
		wait := retry.Backoff(attempt)
		slog.WarnContext(ctx, "AMQP consumer disconnected, reconnecting",
			"attempt", attempt+1,
			"backoff", wait,
			"error", err)
		if err := retry.Sleep(ctx, wait); err != nil {
			return err
		}
		if err := c.connect(); err != nil {
			attempt++
			continue
		}
		attempt = 0
	}
}

func (c *Client) consume(ctx context.Context, handler func(context.Context, *RecordAppendedMessage) error) error {
	c.mu.Lock()
	if err := c.connectLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	channel := c.channel
	c.mu.Unlock()

	if err := channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	msgs, err := channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming record messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			handleDelivery(ctx, delivery, handler)
		}
	}
}

func handleDelivery(ctx context.Context, delivery amqp091.Delivery, handler func(context.Context, *RecordAppendedMessage) error) {
	msg, err := RecordAppendedMessageFromJSON(delivery.Body)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to unmarshal message", "error", err, "message_id", delivery.MessageId)
		delivery.Nack(false, false)
		return
	}

	// Only transient failures are requeued. Anything else is dropped; a row
	// still pending in SQLite is picked up again by the sweep.
	if err := handler(ctx, msg); err != nil {
		requeue := retry.IsConnectionError(err) || ctx.Err() != nil
		slog.ErrorContext(ctx, "Failed to handle message",
			"error", err,
			"id", msg.ID,
			"message_id", delivery.MessageId,
			"requeue", requeue)
		delivery.Nack(false, requeue)
		return
	}

	delivery.Ack(false)
	slog.InfoContext(ctx, "Processed record message", "id", msg.ID, "owner_id", msg.OwnerID)
}

func (c *Client) closeLocked() {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	return nil
}
