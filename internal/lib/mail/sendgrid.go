package mail

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

// SendGrid отправляет письма через HTTP API SendGrid.
type SendGrid struct {
	key  string
	host string
	from *sgmail.Email
}

// NewSendGrid создаёт отправителя с API-ключом и адресом отправителя.
func NewSendGrid(key, from string) *SendGrid {
	return &SendGrid{
		key:  key,
		host: sendGridHost,
		from: sgmail.NewEmail("LMS", from),
	}
}

// Send отправляет письмо, ответ со статусом 4xx/5xx считается ошибкой.
func (s *SendGrid) Send(ctx context.Context, to, subject, body string) error {
	const op = "mail.SendGrid.Send"
	m := sgmail.NewV3MailInit(s.from, subject, sgmail.NewEmail("", to), sgmail.NewContent("text/plain", body))

	req := sendgrid.GetRequest(s.key, sendGridEndpoint, s.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s: unexpected status %d: %s", op, res.StatusCode, res.Body)
	}
	return nil
}
