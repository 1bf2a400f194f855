package mail

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/magabrotheeeer/lms/internal/config"
)

// SMTP отправляет письма через SMTP-сервер.
type SMTP struct {
	from   string
	dialer *gomail.Dialer
}

// NewSMTP создаёт SMTP-отправителя. STARTTLS включается автоматически, если сервер его поддерживает.
func NewSMTP(cfg config.Mail) *SMTP {
	return &SMTP{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
	}
}

// Send отправляет письмо. Контекст проверяется до установки соединения.
func (s *SMTP) Send(ctx context.Context, to, subject, body string) error {
	const op = "mail.SMTP.Send"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.dialer.DialAndSend(s.message(to, subject, body)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *SMTP) message(to, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}
