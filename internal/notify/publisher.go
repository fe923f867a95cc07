// Package notify delivers escalation notifications to an external dispatcher
// over RabbitMQ. The engine only decides; delivery, templating and audience
// resolution belong to downstream consumers.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	routingKeyEscalation = "issue.escalated"

	publishTimeout = 5 * time.Second
	publishRetries = 3
	retryBaseDelay = 200 * time.Millisecond
)

// EscalationMessage is the wire payload for one triggered escalation rule.
type EscalationMessage struct {
	ReportID  string    `json:"report_id"`
	Title     string    `json:"title"`
	Ward      string    `json:"ward"`
	Dept      string    `json:"dept"`
	Priority  string    `json:"priority"`
	Level     int       `json:"level"`
	Condition string    `json:"condition"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher sends escalation messages.
type Publisher interface {
	PublishEscalation(ctx context.Context, msg EscalationMessage) error
	Close()
}

// AMQPPublisher publishes to a durable topic exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *zap.Logger
}

// NewAMQPPublisher dials the broker and declares the exchange.
func NewAMQPPublisher(url, exchange string, logger *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	logger.Info("connected to rabbitmq", zap.String("exchange", exchange))
	return &AMQPPublisher{conn: conn, channel: channel, exchange: exchange, logger: logger}, nil
}

// PublishEscalation publishes a persistent message, retrying transient
// failures with backoff.
func (p *AMQPPublisher) PublishEscalation(ctx context.Context, msg EscalationMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return retry.Do(
		func() error {
			publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
			defer cancel()
			return p.channel.PublishWithContext(publishCtx,
				p.exchange,
				routingKeyEscalation,
				false, // mandatory
				false, // immediate
				amqp.Publishing{
					ContentType:  "application/json",
					DeliveryMode: amqp.Persistent,
					Timestamp:    msg.Timestamp,
					Body:         body,
				})
		},
		retry.Attempts(publishRetries),
		retry.Delay(retryBaseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			p.logger.Warn("escalation publish retry",
				zap.Uint("attempt", n+1),
				zap.String("report_id", msg.ReportID),
				zap.Error(err))
		}),
	)
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// NoopPublisher logs escalations when no broker is configured.
type NoopPublisher struct {
	Logger *zap.Logger
}

// PublishEscalation logs the decision and drops it.
func (n NoopPublisher) PublishEscalation(ctx context.Context, msg EscalationMessage) error {
	if n.Logger != nil {
		n.Logger.Info("escalation triggered (no broker configured)",
			zap.String("report_id", msg.ReportID),
			zap.Int("level", msg.Level),
			zap.String("action", msg.Action))
	}
	return nil
}

// Close is a no-op.
func (n NoopPublisher) Close() {}
