package rabbitmq

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	VHost    string // default "/"
	UseTLS   bool
}

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	acks <-chan amqp.Confirmation
	mu   sync.Mutex // serializes Publish while waiting for confirms
}

func (c *Client) Channel() *amqp.Channel { return c.ch }

// NewChannel opens a separate channel for consuming so deliveries never
// interleave with publisher confirms.
func (c *Client) NewChannel() (*amqp.Channel, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "open amqp channel")
	}
	return ch, nil
}

func (c *Client) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func Dial(cfg Config) (*Client, error) {
	if cfg.VHost == "" {
		cfg.VHost = "/"
	}
	scheme := "amqp"
	if cfg.UseTLS {
		scheme = "amqps"
	}
	vhost := cfg.VHost
	if vhost == "/" {
		vhost = ""
	}
	url := fmt.Sprintf("%s://%s:%s@%s:%d/%s",
		scheme, cfg.User, cfg.Password, cfg.Host, cfg.Port, vhost)

	var (
		conn *amqp.Connection
		err  error
	)
	if cfg.UseTLS {
		conn, err = amqp.DialTLS(url, &tls.Config{MinVersion: tls.VersionTLS12})
	} else {
		conn, err = amqp.Dial(url)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "dial rabbitmq %s:%d", cfg.Host, cfg.Port)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "open amqp channel")
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Wrap(err, "enable publisher confirms")
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	return &Client{conn: conn, ch: ch, acks: acks}, nil
}

func (c *Client) Ping() error {
	if c.conn == nil || c.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

// DeclareFanout declares a durable fanout exchange. Safe to repeat.
func (c *Client) DeclareFanout(name string) error {
	if err := c.ch.ExchangeDeclare(name, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return errors.Wrapf(err, "declare %s", name)
	}
	return nil
}

// Publish publishes a message and waits for the broker's ack or nack.
func (c *Client) Publish(ctx context.Context, exchange, key string,
	body []byte, headers amqp.Table, contentType string, persistent bool) error {

	c.mu.Lock()
	defer c.mu.Unlock()

	mode := amqp.Transient
	if persistent {
		mode = amqp.Persistent
	}

	if err := c.ch.PublishWithContext(
		ctx,
		exchange,
		key,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: mode,
			ContentType:  contentType,
			Timestamp:    time.Now(),
			Headers:      headers,
			Body:         body,
		},
	); err != nil {
		return errors.Wrapf(err, "publish to %s", exchange)
	}

	select {
	case conf := <-c.acks:
		if conf.Ack {
			return nil
		}
		return errors.Errorf("publish to %s: NACK from broker", exchange)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubscribeFanout binds an exclusive auto-delete queue to exchange on its own
// channel. The channel is closed once ctx is done.
func (c *Client) SubscribeFanout(ctx context.Context, exchange, consumer string) (<-chan amqp.Delivery, error) {
	ch, err := c.NewChannel()
	if err != nil {
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, errors.Wrapf(err, "declare %s", exchange)
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, errors.Wrap(err, "declare subscriber queue")
	}
	if err := ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		_ = ch.Close()
		return nil, errors.Wrapf(err, "bind %s to %s", q.Name, exchange)
	}
	msgs, err := ch.Consume(q.Name, consumer, true, true, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, errors.Wrapf(err, "consume %s", q.Name)
	}
	go func() {
		<-ctx.Done()
		_ = ch.Close()
	}()
	return msgs, nil
}
