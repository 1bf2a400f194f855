// Package notifier ставит уведомления об обновлении курса в очередь RabbitMQ.
// Письма отправляет отдельный процесс notification-sender.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/lms/internal/lib/metrics"
	"github.com/magabrotheeeer/lms/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/lms/internal/models"
)

// Publisher публикует сообщение в exchange с ключом маршрутизации.
type Publisher interface {
	Publish(exchange, routingKey string, message any) error
}

// ChannelPublisher публикует через один канал AMQP. Канал не потокобезопасен,
// поэтому публикации сериализуются мьютексом.
type ChannelPublisher struct {
	mu sync.Mutex
	ch *amqp.Channel
}

// NewChannelPublisher создаёт ChannelPublisher.
func NewChannelPublisher(ch *amqp.Channel) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

// Publish реализует Publisher.
func (p *ChannelPublisher) Publish(exchange, routingKey string, message any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return rabbitmq.PublishMessage(p.ch, exchange, routingKey, message)
}

// Notifier отправляет задания на рассылку подписчикам курса.
type Notifier struct {
	publisher Publisher
	log       *slog.Logger
}

// New создаёт Notifier.
func New(publisher Publisher, log *slog.Logger) *Notifier {
	return &Notifier{publisher: publisher, log: log}
}

// Submit ставит в очередь одно письмо об обновлении курса courseID для email.
func (n *Notifier) Submit(ctx context.Context, courseID int64, email string) error {
	const op = "notifier.Submit"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err := n.publisher.Publish(rabbitmq.ExchangeNotifications, rabbitmq.RoutingKeyCourseUpdated,
		models.CourseUpdatedMessage{CourseID: courseID, Email: email})
	metrics.NotificationsSubmitted.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n.log.Debug("course update notification queued",
		slog.Int64("course_id", courseID), slog.String("email", email))
	return nil
}

// Log отправляет уведомления в лог. Используется, когда брокер не настроен.
type Log struct {
	log *slog.Logger
}

// NewLog создаёт Log.
func NewLog(log *slog.Logger) *Log {
	return &Log{log: log}
}

// Submit пишет уведомление в лог.
func (l *Log) Submit(_ context.Context, courseID int64, email string) error {
	l.log.Info("course update notification",
		slog.Int64("course_id", courseID), slog.String("email", email))
	return nil
}
