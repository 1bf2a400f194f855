package mail

import (
	"context"
	"log/slog"
)

// Console пишет письма в лог вместо отправки.
type Console struct {
	log *slog.Logger
}

// NewConsole создаёт Console.
func NewConsole(log *slog.Logger) *Console {
	return &Console{log: log}
}

// Send логирует письмо и всегда возвращает nil.
func (c *Console) Send(_ context.Context, to, subject, body string) error {
	c.log.Info("email",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}
