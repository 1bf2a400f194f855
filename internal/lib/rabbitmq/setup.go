package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Имена exchange, очередей и ключей маршрутизации уведомлений.
const (
	ExchangeNotifications   = "notifications"
	RoutingKeyCourseUpdated = "course.updated"
	QueueCourseUpdated      = "notifications.course_updated"
)

// prefetch ограничивает число неподтверждённых сообщений на канал.
const prefetch = 10

// QueueConfig связывает очередь с ключом маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, которые слушает сервис рассылки.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueCourseUpdated, RoutingKey: RoutingKeyCourseUpdated},
	}
}

// SetupChannel открывает канал, объявляет exchange уведомлений и привязывает к нему очереди.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		ExchangeNotifications,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			q.QueueName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}

		err = ch.QueueBind(
			q.QueueName,
			q.RoutingKey,
			ExchangeNotifications,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
