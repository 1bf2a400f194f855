// Команда migrator применяет миграции и, при указании -moderator, добавляет
// пользователя в группу модераторов.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/magabrotheeeer/lms/internal/config"
	"github.com/magabrotheeeer/lms/internal/migrations"
	"github.com/magabrotheeeer/lms/internal/models"
	"github.com/magabrotheeeer/lms/internal/storage/repository"
)

func main() {
	moderator := flag.String("moderator", "", "email пользователя, которого нужно сделать модератором")
	flag.Parse()

	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if err := run(cfg, logger, *moderator); err != nil {
		logger.Error("migrator failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, moderator string) error {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return err
	}
	logger.Info("migrations applied", slog.String("path", cfg.MigrationsPath))

	if moderator == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.AddUserToGroup(ctx, moderator, models.GroupModerators); err != nil {
		return err
	}
	logger.Info("moderator granted", slog.String("email", moderator))
	return nil
}
