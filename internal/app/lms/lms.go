// Package lms собирает HTTP API платформы обучения: хранилище, кэш, очередь
// уведомлений, платёжный шлюз и синхронизацию оплат.
package lms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/lms/internal/app/scheduler"
	"github.com/magabrotheeeer/lms/internal/config"
	coursehandler "github.com/magabrotheeeer/lms/internal/http/handlers/course"
	"github.com/magabrotheeeer/lms/internal/http/handlers/health"
	lessonhandler "github.com/magabrotheeeer/lms/internal/http/handlers/lesson"
	paymenthandler "github.com/magabrotheeeer/lms/internal/http/handlers/payment"
	subscriptionhandler "github.com/magabrotheeeer/lms/internal/http/handlers/subscription"
	userhandler "github.com/magabrotheeeer/lms/internal/http/handlers/user"
	"github.com/magabrotheeeer/lms/internal/http/middlewarectx"
	"github.com/magabrotheeeer/lms/internal/lib/jwt"
	"github.com/magabrotheeeer/lms/internal/lib/links"
	"github.com/magabrotheeeer/lms/internal/lib/metrics"
	"github.com/magabrotheeeer/lms/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/lms/internal/lib/sl"
	"github.com/magabrotheeeer/lms/internal/migrations"
	"github.com/magabrotheeeer/lms/internal/paymentprovider"
	authservice "github.com/magabrotheeeer/lms/internal/services/auth"
	courseservice "github.com/magabrotheeeer/lms/internal/services/course"
	lessonservice "github.com/magabrotheeeer/lms/internal/services/lesson"
	"github.com/magabrotheeeer/lms/internal/services/notifier"
	paymentservice "github.com/magabrotheeeer/lms/internal/services/payment"
	subscriptionservice "github.com/magabrotheeeer/lms/internal/services/subscription"
	userservice "github.com/magabrotheeeer/lms/internal/services/user"
	"github.com/magabrotheeeer/lms/internal/storage/cache"
	"github.com/magabrotheeeer/lms/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App HTTP API с зависимостями.
type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *repository.Storage
	cache     *cache.Cache
	conn      *amqp.Connection
	ch        *amqp.Channel
	scheduler *scheduler.Scheduler
}

// New подключает зависимости и собирает маршруты.
// Без rabbitmq.url уведомления только пишутся в лог, без stripe.secret_key
// переводы считаются оплаченными сразу и синхронизация не запускается.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.lms.New"

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app := &App{logger: logger, db: db}

	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: cache not initialized: %w", op, err)
	}

	var courseNotifier courseservice.Notifier = notifier.NewLog(logger)
	if cfg.RabbitMQURL != "" {
		app.conn, err = rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: failed to connect RabbitMQ: %w", op, err)
		}
		app.ch, err = rabbitmq.SetupChannel(app.conn, rabbitmq.GetNotificationQueues())
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: failed to setup RabbitMQ channel: %w", op, err)
		}
		courseNotifier = notifier.New(notifier.NewChannelPublisher(app.ch), logger)
	} else {
		logger.Warn("rabbitmq url is empty, course notifications are logged only")
	}

	var gateway paymentservice.Gateway
	if cfg.SecretKey != "" {
		gateway = paymentprovider.NewClient(cfg.Stripe)
	}
	payments := paymentservice.New(db, gateway, logger)
	if gateway != nil {
		app.scheduler, err = scheduler.New(payments, cfg.Schedule, logger)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL, cfg.RefreshTokenTTL)
	auth := authservice.New(db, jwtMaker, logger)
	validate := links.NewValidator()

	handlers := Handlers{
		Health: health.New(logger, db),
		Users:  userhandler.New(logger, auth, userservice.New(db, db, logger), validate),
		Courses: coursehandler.New(logger,
			courseservice.New(db, app.cache, courseNotifier, logger, cfg.UpdateCooldown, cfg.CacheTTL), validate),
		Lessons:      lessonhandler.New(logger, lessonservice.New(db, app.cache, logger), validate),
		Subscription: subscriptionhandler.New(logger, subscriptionservice.New(db, logger), validate),
		Payments:     paymenthandler.New(logger, payments, validate),
	}

	metrics.Register(prometheus.DefaultRegisterer)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, handlers, auth, middlewarectx.NewLimiter(cfg.RateLimit, cfg.RateBurst))

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run обслуживает запросы до отмены ctx, затем корректно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	if a.scheduler != nil {
		go a.scheduler.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	a.close()
	return err
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
