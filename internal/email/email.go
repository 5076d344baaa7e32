package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/dhinakarr/realtors-app-sub001/pkg/logger"
)

// Transport delivers rendered HTML mail. The SMTP dialer's own timeouts
// bound each send; there is no engine-level cancellation of an in-flight
// delivery.
type Transport interface {
	SendHTML(to, subject, html string) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpTransport struct {
	dialer *gomail.Dialer
	from   string
	logger *logger.Logger
}

func NewSMTPTransport(cfg Config, log *logger.Logger) Transport {
	return &smtpTransport{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: log,
	}
}

func (t *smtpTransport) SendHTML(to, subject, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", t.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	if err := t.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	t.logger.Debug("email sent", "to", to, "subject", subject)
	return nil
}
