package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"video-api/domain/model"
	"video-api/domain/repository"
	"video-api/infrastructure/logger"

	"github.com/streadway/amqp"
)

func NewRabbitMQ(url string) (*amqp.Connection, error) {
	return amqp.Dial(url)
}

// VideoRabbitMQ publishes to a durable queue through the default exchange.
// amqp channels are not safe for concurrent publishing, hence the mutex.
type VideoRabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	mu      sync.Mutex
}

func NewVideoRabbitMQ(conn *amqp.Connection, queue string) (*VideoRabbitMQ, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = channel.Close()
		return nil, err
	}
	logger.GetLogger().WithField("queue", queue).Info("RabbitMQ queue declared")

	return &VideoRabbitMQ{conn: conn, channel: channel, queue: queue}, nil
}

func (r *VideoRabbitMQ) Publish(ctx context.Context, event model.VideoEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := newVideoPublishing(event)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.channel.Publish("", r.queue, false, false, msg)
}

func (r *VideoRabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	if r.channel != nil {
		errs = append(errs, r.channel.Close())
	}
	if r.conn != nil {
		errs = append(errs, r.conn.Close())
	}
	return errors.Join(errs...)
}

func newVideoPublishing(event model.VideoEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         string(event.Type),
		Timestamp:    event.OccurredAt,
		Body:         body,
	}, nil
}

var _ repository.IVideoEvent = (*VideoRabbitMQ)(nil)
