// Package sender собирает процесс рассылки уведомлений об обновлении курсов.
package sender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/lms/internal/config"
	"github.com/magabrotheeeer/lms/internal/lib/mail"
	"github.com/magabrotheeeer/lms/internal/lib/metrics"
	"github.com/magabrotheeeer/lms/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/lms/internal/lib/sl"
	senderservice "github.com/magabrotheeeer/lms/internal/services/sender"
)

// App читает очередь notifications.course_updated и отправляет письма.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	metricsServer *http.Server
	logger        *slog.Logger
}

// New подключается к RabbitMQ и выбирает почтовый транспорт по конфигу.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.sender.New"

	mailer, err := mail.New(cfg.Mail, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect RabbitMQ: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Error("failed to close connection", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("%s: failed to setup RabbitMQ channel: %w", op, err)
	}

	metrics.Register(prometheus.DefaultRegisterer)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.NewSenderService(mailer, logger),
		metricsServer: &http.Server{
			Addr:              cfg.AddressHTTP,
			Handler:           mux,
			ReadHeaderTimeout: cfg.TimeoutHTTP,
		},
		logger: logger,
	}, nil
}

// Run обрабатывает сообщения до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.QueueCourseUpdated, a.senderService.Handler(ctx))
	if err != nil {
		a.logger.Error("failed to start consumer", slog.String("queue", rabbitmq.QueueCourseUpdated), sl.Err(err))
		return err
	}

	go func() {
		a.logger.Info("metrics server starting", slog.String("address", a.metricsServer.Addr))
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", sl.Err(err))
		}
	}()

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("failed to stop metrics server", sl.Err(err))
	}
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return nil
}
