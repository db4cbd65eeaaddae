// Package mail delivers transactional email over SMTP.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"catalog/internal/config"
	"catalog/internal/middleware"

	"gopkg.in/gomail.v2"
)

// Mailer sends a plain-text message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends through a gomail Dialer.
type SMTPMailer struct {
	from string
	send func(msgs ...*gomail.Message) error
}

// NewSMTPMailer dials MAIL_HOST:MAIL_PORT for every send.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	d := gomail.NewDialer(host, port, username, password)
	return &SMTPMailer{from: from, send: d.DialAndSend}
}

// NewSMTPMailerWithSender is NewSMTPMailer with an explicit gomail.Sender.
func NewSMTPMailerWithSender(from string, sender gomail.Sender) *SMTPMailer {
	return &SMTPMailer{
		from: from,
		send: func(msgs ...*gomail.Message) error { return gomail.Send(sender, msgs...) },
	}
}

// New returns an SMTP mailer, or a LogMailer when MAIL_HOST is unset.
func New(cfg *config.Config) Mailer {
	if cfg.MailHost == "" {
		return LogMailer{}
	}
	return NewSMTPMailer(cfg.MailHost, cfg.MailPort, cfg.MailUsername, cfg.MailPassword, cfg.MailFrom)
}

// BuildMessage assembles a plain-text message.
func BuildMessage(from, to, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.send(BuildMessage(m.from, to, subject, body)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	middleware.Logger.InfoContext(ctx, "Mail sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}

// LogMailer logs messages instead of sending them. Used when no SMTP host is configured.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, body string) error {
	middleware.Logger.InfoContext(ctx, "Mail delivery disabled, logging message",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.Int("body_bytes", len(body)),
	)
	return nil
}
