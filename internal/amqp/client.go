package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"fintrack/internal/log"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures     = 5
	openTimeout     = 30 * time.Second
	publishTimeout  = 5 * time.Second
	maxBackoff      = 30 * time.Second
	maxDialAttempts = 5
)

var errCircuitOpen = errors.New("circuit breaker is open")

// Client publishes and consumes ledger events on a durable direct exchange.
// Publishing reconnects lazily and stops trying while the breaker is open.
type Client struct {
	url          string
	exchangeName string
	queueName    string
	logger       *log.Logger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	state        int32
	failureCount int64
	failMu       sync.Mutex
	lastFailure  time.Time
}

func NewClient(url, exchangeName, queueName string, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.Default(log.ComponentAMQP)
	}
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       logger,
	}

	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := setup(channel, c.exchangeName, c.queueName); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.channel = channel
	c.mu.Unlock()
	return nil
}

func setup(ch *amqp091.Channel, exchange, queue string) error {
	err := ch.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// routing key equals the queue name
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// reconnect dials again with exponential backoff until ctx ends or the
// attempts run out.
func (c *Client) reconnect(ctx context.Context) error {
	var lastErr error
	for attempt := 0; attempt < maxDialAttempts; attempt++ {
		lastErr = c.connect()
		if lastErr == nil {
			c.lg().InfoContext(ctx, "Reconnected to AMQP broker", "attempt", attempt+1)
			return nil
		}

		wait := exponentialBackoff(attempt)
		c.lg().WarnContext(ctx, "AMQP reconnect failed",
			"attempt", attempt+1, "retry_in", wait.String(), log.FieldError, lastErr)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("reconnect after %d attempts: %w", maxDialAttempts, lastErr)
}

func (c *Client) lg() *log.Logger {
	if c.logger == nil {
		return log.Default(log.ComponentAMQP)
	}
	return c.logger
}

func (c *Client) currentChannel() *amqp091.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel == nil || c.channel.IsClosed() {
		return nil
	}
	return c.channel
}

// Publish sends one ledger event. It fails fast while the breaker is open.
func (c *Client) Publish(ctx context.Context, event *LedgerEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isCircuitOpen() {
		return fmt.Errorf("publish %s: %w", event.Type, errCircuitOpen)
	}

	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ch := c.currentChannel()
	if ch == nil {
		if err := c.reconnect(ctx); err != nil {
			c.recordFailure()
			return fmt.Errorf("publish %s: %w", event.Type, err)
		}
		ch = c.currentChannel()
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(
		pubCtx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    event.Timestamp,
			Type:         string(event.Type),
			Body:         body,
		},
	)
	if err != nil {
		c.recordFailure()
		if isConnectionError(err) {
			c.dropConnection()
		}
		return fmt.Errorf("publish message: %w", err)
	}

	c.recordSuccess()
	c.lg().DebugContext(ctx, "Published ledger event",
		log.FieldOperation, log.OpPublish,
		log.FieldEventType, event.Type,
		"entity_id", event.EntityID,
		"exchange", c.exchangeName)
	return nil
}

// Handler processes one decoded event. A returned error requeues the delivery.
type Handler func(context.Context, *LedgerEvent) error

// Consume delivers events to handler until ctx ends. Undecodable messages
// are rejected without requeue.
func (c *Client) Consume(ctx context.Context, handler Handler) error {
	ch := c.currentChannel()
	if ch == nil {
		return fmt.Errorf("start consuming: %w", amqp091.ErrClosed)
	}

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := ch.Consume(
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

	c.lg().InfoContext(ctx, "Started consuming ledger events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			c.lg().InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			event, err := LedgerEventFromJSON(delivery.Body)
			if err != nil {
				c.lg().ErrorContext(ctx, "Rejecting malformed message", log.FieldError, err)
				delivery.Nack(false, false)
				continue
			}

			if err := handler(ctx, event); err != nil {
				c.lg().ErrorContext(ctx, "Failed to handle event",
					log.FieldError, err,
					log.FieldEventType, event.Type,
					"entity_id", event.EntityID)
				delivery.Nack(false, true)
				continue
			}

			delivery.Ack(false)
			c.lg().DebugContext(ctx, "Handled ledger event",
				log.FieldEventType, event.Type,
				"entity_id", event.EntityID)
		}
	}
}

func (c *Client) isCircuitOpen() bool {
	switch atomic.LoadInt32(&c.state) {
	case StateOpen:
		c.failMu.Lock()
		last := c.lastFailure
		c.failMu.Unlock()
		if time.Since(last) > openTimeout {
			atomic.StoreInt32(&c.state, StateHalfOpen)
			return false
		}
		return true
	default:
		return false
	}
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.failMu.Lock()
	c.lastFailure = time.Now()
	c.failMu.Unlock()

	n := atomic.AddInt64(&c.failureCount, 1)
	if n >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		if atomic.SwapInt32(&c.state, StateOpen) != StateOpen {
			c.lg().Warn("AMQP circuit breaker opened", "failures", n)
		}
	}
}

func (c *Client) dropConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// exponentialBackoff returns 1s, 2s, 4s, ... capped at 30s.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := err.Error()
	for _, s := range []string{
		"connection refused",
		"connection closed",
		"EOF",
		"broken pipe",
		"use of closed network connection",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
