package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Handler is the app-layer contract the consumer dispatches into.
type Handler interface {
	VerifyEmail(ctx context.Context, userID, email, url string) error
	PasswordReset(ctx context.Context, userID, email, url string) error
	Welcome(ctx context.Context, userID, email, username string) error
}

type ConsumerConfig struct {
	URL      string
	Exchange string
	Queue    string
	BindKeys []string
	Prefetch int
	Workers  int
	Tag      string
}

// Consumer reads email jobs from the queue and hands them to a bounded
// worker pool. Failed messages get exactly one broker redelivery; the
// second transient failure and every permanent failure dead-letter to
// <queue>.dlq via <exchange>.dlx.
type Consumer struct {
	url      string
	exchange string
	queue    string
	bindKeys []string
	prefetch int
	workers  int
	tag      string

	lg      zerolog.Logger
	handler Handler

	mu      sync.Mutex
	running bool
	doneCh  chan struct{}

	conn       *amqp.Connection
	ch         *amqp.Channel
	deliveries <-chan amqp.Delivery
}

func NewConsumer(cfg ConsumerConfig, h Handler, lg zerolog.Logger) *Consumer {
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}
	if len(cfg.BindKeys) == 0 {
		cfg.BindKeys = []string{
			"user.registered",
			"auth.email_verify.requested",
			"auth.password_reset.requested",
		}
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Consumer{
		url:      cfg.URL,
		exchange: cfg.Exchange,
		queue:    cfg.Queue,
		bindKeys: cfg.BindKeys,
		prefetch: cfg.Prefetch,
		workers:  cfg.Workers,
		tag:      cfg.Tag,
		handler:  h,
		lg:       lg.With().Str("component", "rabbitmq_consumer").Logger(),
	}
}

func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}
	if c.handler == nil {
		return fmt.Errorf("nil handler")
	}

	c.doneCh = make(chan struct{})
	c.running = true
	go c.run(ctx)
	return nil
}

func (c *Consumer) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	doneCh := c.doneCh
	c.running = false
	c.mu.Unlock()

	c.closeConn()

	select {
	case <-doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run supervises the connection: reconnect with doubling backoff when
// the broker drops us, bail out on topology mismatches that a restart
// cannot fix.
func (c *Consumer) run(ctx context.Context) {
	defer func() {
		c.mu.Lock()
		doneCh := c.doneCh
		c.doneCh = nil
		c.running = false
		c.mu.Unlock()

		if doneCh != nil {
			close(doneCh)
		}
	}()

	backoff := 1 * time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			c.lg.Info().Msg("consumer supervisor exiting (ctx cancelled)")
			return
		default:
		}

		if !c.isRunning() {
			c.lg.Info().Msg("consumer supervisor exiting (stopped)")
			return
		}

		if err := c.connectAndDeclare(); err != nil {
			if isPreconditionFailed(err) {
				c.lg.Error().Err(err).Msg("FATAL: topology precondition failed. Delete and recreate MQ resources, then restart.")
				return
			}

			c.lg.Error().Err(err).Dur("backoff", backoff).Msg("connectAndDeclare failed; retrying")
			if !sleepOrDone(ctx, backoff) {
				return
			}
			backoff = minDur(backoff*2, maxBackoff)
			continue
		}

		backoff = 1 * time.Second
		c.consumeLoop(ctx)

		select {
		case <-ctx.Done():
			return
		default:
		}

		c.lg.Warn().Dur("backoff", backoff).Msg("deliveries closed; reconnecting")
		c.closeConn()

		if !sleepOrDone(ctx, backoff) {
			return
		}
		backoff = minDur(backoff*2, maxBackoff)
	}
}

func (c *Consumer) isRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Consumer) connectAndDeclare() error {
	c.closeConn()

	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("channel: %w", err)
	}

	fail := func(step string, err error) error {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("%s: %w", step, err)
	}

	dlx := c.exchange + ".dlx"
	dlq := c.queue + ".dlq"

	if err := ch.ExchangeDeclare(c.exchange, "topic", true, false, false, false, nil); err != nil {
		return fail("main exchange declare", err)
	}
	if err := ch.ExchangeDeclare(dlx, "topic", true, false, false, false, nil); err != nil {
		return fail("dlx exchange declare", err)
	}

	mainArgs := amqp.Table{"x-dead-letter-exchange": dlx}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, mainArgs); err != nil {
		return fail("main queue declare", err)
	}
	for _, key := range c.bindKeys {
		k := strings.TrimSpace(key)
		if k == "" {
			continue
		}
		if err := ch.QueueBind(c.queue, k, c.exchange, false, nil); err != nil {
			return fail(fmt.Sprintf("main queue bind (%s)", k), err)
		}
	}

	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return fail("dlq declare", err)
	}
	if err := ch.QueueBind(dlq, "#", dlx, false, nil); err != nil {
		return fail("dlq bind", err)
	}

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fail("qos", err)
	}

	dlv, err := ch.Consume(c.queue, c.tag, false, false, false, false, nil)
	if err != nil {
		return fail("consume", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.ch = ch
	c.deliveries = dlv
	c.mu.Unlock()

	c.lg.Info().
		Str("exchange", c.exchange).
		Str("queue", c.queue).
		Strs("bind_keys", c.bindKeys).
		Int("prefetch", c.prefetch).
		Int("workers", c.workers).
		Msg("rabbitmq consumer ready")

	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	c.mu.Lock()
	deliveries := c.deliveries
	c.mu.Unlock()

	pool := NewWorkerPool(c.workers)
	defer pool.Stop()

	for {
		select {
		case <-ctx.Done():
			c.lg.Info().Msg("consume loop context cancelled")
			return

		case d, ok := <-deliveries:
			if !ok {
				c.lg.Warn().Msg("deliveries channel closed")
				return
			}
			pool.Submit(func() { c.process(ctx, d) })
		}
	}
}

// process runs a single delivery through the handler and settles it.
func (c *Consumer) process(ctx context.Context, d amqp.Delivery) {
	start := time.Now()
	err := c.handleDelivery(ctx, d)

	switch {
	case err == nil:
		_ = d.Ack(false)
		c.lg.Info().Str("routing_key", d.RoutingKey).Dur("took", time.Since(start)).Msg("message processed")

	case ctx.Err() != nil:
		// Shutting down mid-handle. Give the message back untouched so
		// the next run picks it up.
		_ = d.Nack(false, true)
		c.lg.Warn().Str("routing_key", d.RoutingKey).Msg("shutdown during handle; requeued")

	case isNonRetriable(err):
		_ = d.Nack(false, false)
		c.lg.Error().Err(err).Str("routing_key", d.RoutingKey).Msg("permanent failure; dead-lettered")

	case !d.Redelivered:
		_ = d.Nack(false, true)
		c.lg.Warn().Err(err).Str("routing_key", d.RoutingKey).Msg("transient failure; requeued once")

	default:
		_ = d.Nack(false, false)
		c.lg.Error().Err(err).Str("routing_key", d.RoutingKey).Msg("transient failure after redelivery; dead-lettered")
	}
}

// ---- payloads ----

type VerifyEmailEvent struct {
	UserID string `json:"UserID"`
	Email  string `json:"Email"`
	URL    string `json:"URL"`
}

type PasswordResetEvent struct {
	UserID string `json:"UserID"`
	Email  string `json:"Email"`
	URL    string `json:"URL"`
}

type UserRegisteredEvent struct {
	UserID   string `json:"UserID"`
	Email    string `json:"Email"`
	Username string `json:"Username"`
}

func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery) error {
	rk := strings.TrimSpace(d.RoutingKey)

	switch rk {
	case "auth.email_verify.requested":
		var evt VerifyEmailEvent
		if err := json.Unmarshal(d.Body, &evt); err != nil {
			return badMessage(fmt.Errorf("bad json: %w", err))
		}
		return c.handler.VerifyEmail(ctx, evt.UserID, evt.Email, evt.URL)

	case "auth.password_reset.requested":
		var evt PasswordResetEvent
		if err := json.Unmarshal(d.Body, &evt); err != nil {
			return badMessage(fmt.Errorf("bad json: %w", err))
		}
		return c.handler.PasswordReset(ctx, evt.UserID, evt.Email, evt.URL)

	case "user.registered":
		var evt UserRegisteredEvent
		if err := json.Unmarshal(d.Body, &evt); err != nil {
			return badMessage(fmt.Errorf("bad json: %w", err))
		}
		if evt.Email == "" {
			c.lg.Warn().Msg("user.registered missing email; dropping")
			return nil
		}
		return c.handler.Welcome(ctx, evt.UserID, evt.Email, evt.Username)

	default:
		// Drop (ack) unknown messages so a bad producer cannot flood the
		// DLQ or block the queue head. Log only the key, never the body.
		c.lg.Warn().
			Str("routing_key", truncateString(rk, 100)).
			Str("decision", "drop_ack").
			Msg("unknown routing key; dropping")
		return nil
	}
}

// badMessageError marks payloads that can never succeed (malformed
// JSON) so they dead-letter instead of looping.
type badMessageError struct{ err error }

func (e *badMessageError) Error() string   { return e.err.Error() }
func (e *badMessageError) Unwrap() error   { return e.err }
func (e *badMessageError) Permanent() bool { return true }

func badMessage(err error) error { return &badMessageError{err: err} }

func isNonRetriable(err error) bool {
	var per interface{ Permanent() bool }
	return errors.As(err, &per) && per.Permanent()
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func minDur(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func (c *Consumer) closeConn() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ch != nil {
		_ = c.ch.Close()
		c.ch = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.deliveries = nil
}

func truncateString(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

func isPreconditionFailed(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToUpper(err.Error())
	return strings.Contains(msg, "PRECONDITION_FAILED") || strings.Contains(msg, "INEQUIVALENT ARG")
}
