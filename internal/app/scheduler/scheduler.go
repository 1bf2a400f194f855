// Package scheduler периодически синхронизирует статусы ожидающих оплат с платёжным шлюзом.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/magabrotheeeer/lms/internal/lib/sl"
)

// runTimeout ограничивает один запуск синхронизации.
const runTimeout = 5 * time.Minute

// Syncer обновляет статусы ожидающих платежей и возвращает число изменённых.
type Syncer interface {
	SyncPending(ctx context.Context) (int, error)
}

// Scheduler запускает Syncer по расписанию cron.
type Scheduler struct {
	cron   *cron.Cron
	syncer Syncer
	logger *slog.Logger
}

// New создает Scheduler. spec задаётся в формате cron, например "@every 10m".
func New(syncer Syncer, spec string, logger *slog.Logger) (*Scheduler, error) {
	const op = "scheduler.New"

	s := &Scheduler{
		// SkipIfStillRunning не даёт запускам накладываться при медленном шлюзе.
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		syncer: syncer,
		logger: logger.With(slog.String("component", "payment-sync")),
	}
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return nil, fmt.Errorf("%s: invalid schedule %q: %w", op, spec, err)
	}
	return s, nil
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	changed, err := s.syncer.SyncPending(ctx)
	if err != nil {
		s.logger.Error("payment sync failed", sl.Err(err))
		return
	}
	s.logger.Info("payment sync finished", slog.Int("changed", changed))
}

// Run запускает расписание и блокируется до отмены ctx.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	s.logger.Info("payment sync scheduler started")

	<-ctx.Done()

	s.logger.Info("shutting down payment sync scheduler")
	<-s.cron.Stop().Done()
}
