// Package mail отправляет письма через один из провайдеров: SMTP, SendGrid
// или консоль (для локальной разработки).
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/lms/internal/config"
)

// Провайдеры отправки писем.
const (
	ProviderSMTP     = "smtp"
	ProviderSendGrid = "sendgrid"
	ProviderConsole  = "console"
)

// Mailer отправляет одно текстовое письмо одному получателю.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New выбирает реализацию Mailer по cfg.Provider.
func New(cfg config.Mail, log *slog.Logger) (Mailer, error) {
	const op = "mail.New"
	switch cfg.Provider {
	case ProviderSMTP:
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("%s: smtp_host is empty", op)
		}
		return NewSMTP(cfg), nil
	case ProviderSendGrid:
		if cfg.SendGridKey == "" {
			return nil, fmt.Errorf("%s: sendgrid_key is empty", op)
		}
		return NewSendGrid(cfg.SendGridKey, cfg.From), nil
	case ProviderConsole, "":
		return NewConsole(log), nil
	default:
		return nil, fmt.Errorf("%s: unknown provider %q", op, cfg.Provider)
	}
}
