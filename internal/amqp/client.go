package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	maxBackoff     = 30 * time.Second
	publishTimeout = 5 * time.Second
	dialTimeout    = 3 * time.Second
	heartbeat      = 10 * time.Second
)

var (
	// ErrCircuitOpen is returned while the broker is considered unavailable.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	errDialInProgress = errors.New("AMQP connection attempt already in progress")
)

// Client publishes and consumes login events on a durable direct exchange.
type Client struct {
	url          string
	exchangeName string
	queueName    string

	// mu guards conn and channel and is never held across network I/O.
	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
	dialMu  sync.Mutex

	state        int32
	failureCount int64
	lastFailure  time.Time
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	c := &Client{url: url, exchangeName: exchangeName, queueName: queueName}
	if err := c.connect(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

// connect opens a connection and channel unless one is already open. The
// dial and handshake are bounded by dialTimeout and by ctx's deadline. A
// caller that finds another dial running gets errDialInProgress at once.
func (c *Client) connect(ctx context.Context) error {
	if c.Healthy() {
		return nil
	}
	if !c.dialMu.TryLock() {
		return errDialInProgress
	}
	defer c.dialMu.Unlock()
	if c.Healthy() {
		return nil
	}

	conn, err := amqp091.DialConfig(c.url, amqp091.Config{
		Heartbeat: heartbeat,
		Locale:    "en_US",
		Dial:      boundedDial(ctx, dialTimeout),
	})
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
	old := c.conn
	c.conn, c.channel = conn, channel
	c.mu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// boundedDial dials with a deadline covering both the TCP connect and the
// AMQP handshake. The library clears the deadline once the handshake is done.
func boundedDial(ctx context.Context, timeout time.Duration) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		deadline := time.Now().Add(timeout)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		dialer := net.Dialer{Deadline: deadline}
		conn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return nil, err
		}
		return conn, nil
	}
}

func setup(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// routing key is the queue name
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// PublishLoginEvent publishes a persistent JSON login event.
func (c *Client) PublishLoginEvent(ctx context.Context, e *LoginEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isCircuitOpen() {
		return fmt.Errorf("publish login event: %w", ErrCircuitOpen)
	}

	body, err := e.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		if !errors.Is(err, errDialInProgress) {
			c.recordFailure()
		}
		return fmt.Errorf("publish login event: %w", err)
	}

	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()

	err = ch.PublishWithContext(ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    e.ID.String(),
			Timestamp:    e.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		c.recordFailure()
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	slog.DebugContext(ctx, "Published login event",
		"id", e.ID,
		"driver_id", e.DriverID,
		"outcome", e.Outcome,
		"exchange", c.exchangeName)
	return nil
}

// ConsumeLoginEvents delivers events to handler until ctx is done. Malformed
// messages are dropped and handler failures are requeued.
func (c *Client) ConsumeLoginEvents(ctx context.Context, handler func(context.Context, *LoginEvent) error) error {
	return c.consume(ctx, handler, nil)
}

// consume calls started, when set, once the broker has accepted the consumer.
func (c *Client) consume(ctx context.Context, handler func(context.Context, *LoginEvent) error, started func()) error {
	if err := c.connect(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()

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

	slog.InfoContext(ctx, "Started consuming login events", "queue", c.queueName)
	if started != nil {
		started()
	}

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			handleDelivery(ctx, delivery, handler)
		}
	}
}

// acknowledger is the subset of amqp091.Delivery used to settle a message.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type delivery interface {
	acknowledger
	body() []byte
}

type amqpDelivery struct{ amqp091.Delivery }

func (d amqpDelivery) body() []byte { return d.Body }

func handleDelivery(ctx context.Context, d amqp091.Delivery, handler func(context.Context, *LoginEvent) error) {
	settle(ctx, amqpDelivery{d}, handler)
}

func settle(ctx context.Context, d delivery, handler func(context.Context, *LoginEvent) error) {
	e, err := LoginEventFromJSON(d.body())
	if err != nil {
		slog.ErrorContext(ctx, "Failed to decode login event", "error", err)
		_ = d.Nack(false, false)
		return
	}
	if err := handler(ctx, e); err != nil {
		slog.ErrorContext(ctx, "Failed to handle login event", "id", e.ID, "error", err)
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

// RunConsumer consumes until ctx is done, reconnecting with exponential backoff
// after connection failures. The backoff restarts after every consumer that
// got going.
func (c *Client) RunConsumer(ctx context.Context, handler func(context.Context, *LoginEvent) error) error {
	return retryConsume(ctx, func(ctx context.Context, started func()) error {
		return c.consume(ctx, handler, started)
	}, sleepContext)
}

func retryConsume(ctx context.Context, consume func(context.Context, func()) error, wait func(context.Context, time.Duration) error) error {
	attempt := 0
	for {
		err := consume(ctx, func() { attempt = 0 })
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil && !isConnectionError(err) && !strings.Contains(err.Error(), "channel closed") {
			return err
		}
		backoff := exponentialBackoff(attempt)
		attempt++
		slog.WarnContext(ctx, "Consumer disconnected, retrying", "error", err, "backoff", backoff)
		if err := wait(ctx, backoff); err != nil {
			return err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Healthy reports whether the client has an open channel.
func (c *Client) Healthy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel != nil && !c.channel.IsClosed()
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

func exponentialBackoff(attempt int) time.Duration {
	if attempt > 5 {
		return maxBackoff
	}
	return min(time.Duration(1<<attempt)*time.Second, maxBackoff)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := err.Error()
	for _, s := range []string{"connection", "EOF", "broken pipe", "dial AMQP"} {
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
