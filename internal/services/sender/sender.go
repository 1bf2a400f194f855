// Package sender обрабатывает сообщения очереди уведомлений и отправляет письма подписчикам.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/lms/internal/lib/mail"
	"github.com/magabrotheeeer/lms/internal/lib/metrics"
	"github.com/magabrotheeeer/lms/internal/lib/sl"
	"github.com/magabrotheeeer/lms/internal/models"
)

// SubjectCourseUpdated тема письма об обновлении курса.
const SubjectCourseUpdated = "Обновление материала курса"

const sendTimeout = 30 * time.Second

// SenderService отправляет письма через Mailer.
type SenderService struct {
	mailer mail.Mailer
	log    *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(mailer mail.Mailer, log *slog.Logger) *SenderService {
	return &SenderService{
		mailer: mailer,
		log:    log,
	}
}

// CourseUpdatedBody текст письма об обновлении курса.
func CourseUpdatedBody(courseID int64) string {
	return fmt.Sprintf("Материалы курса %d обновлены", courseID)
}

// SendCourseUpdated разбирает сообщение очереди и отправляет письмо.
// Ошибка возвращает сообщение в очередь, поэтому некорректный JSON
// только логируется и подтверждается.
func (s *SenderService) SendCourseUpdated(ctx context.Context, body []byte) error {
	const op = "sender.SendCourseUpdated"
	log := s.log.With(slog.String("op", op))

	var message models.CourseUpdatedMessage
	if err := json.Unmarshal(body, &message); err != nil {
		log.Error("failed to unmarshal message body, dropping", sl.Err(err))
		return nil
	}
	if message.Email == "" {
		log.Error("message without recipient, dropping", slog.Int64("course_id", message.CourseID))
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	err := s.mailer.Send(ctx, message.Email, SubjectCourseUpdated, CourseUpdatedBody(message.CourseID))
	metrics.EmailsSent.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		log.Error("failed to send email", slog.String("to", message.Email), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("email sent successfully", slog.String("to", message.Email), slog.Int64("course_id", message.CourseID))
	return nil
}

// Handler возвращает обработчик для rabbitmq.ConsumerMessage.
func (s *SenderService) Handler(ctx context.Context) func([]byte) error {
	return func(body []byte) error {
		return s.SendCourseUpdated(ctx, body)
	}
}
