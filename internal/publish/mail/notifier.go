// Package mail sends notification emails (currently only the baptism
// video announcement with the private link and viewing password).
package mail

import (
	"context"

	"github.com/gemeindemedia/sermonpress/pkg/logger"
	"gopkg.in/gomail.v2"
)

var log = logger.Get("Mail")

type (
	Config struct {
		Host     string   `json:"host" env:"MAIL_HOST" validate:"required"`
		Port     int      `json:"port" env:"MAIL_PORT" env-default:"587"`
		User     string   `json:"user" env:"MAIL_USER" validate:"required"`
		Password string   `json:"password" env:"MAIL_PASSWORD" validate:"required"`
		From     string   `json:"from" env:"MAIL_FROM" validate:"required,email"`
		To       []string `json:"to" env:"MAIL_TO" validate:"required,min=1,dive,email"`
	}

	Notifier struct {
		config Config
		dialer *gomail.Dialer
	}
)

func New(config Config) *Notifier {
	return &Notifier{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.User, config.Password),
	}
}

// Notify sends the HTML body to every configured recipient. The
// context is accepted for interface symmetry; the SMTP dial does not
// support cancellation.
func (notifier *Notifier) Notify(_ context.Context, subject string, htmlBody string) error {
	message := gomail.NewMessage()
	message.SetHeader("From", notifier.config.From)
	message.SetHeader("To", notifier.config.To...)
	message.SetHeader("Subject", subject)
	message.SetBody("text/html", htmlBody)

	if err := notifier.dialer.DialAndSend(message); err != nil {
		return err
	}

	log.Emit(logger.SUCCESS, "Notification %q sent to %d recipient(s)\n", subject, len(notifier.config.To))
	return nil
}
