package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const confirmationSubject = "Registration confirmation"

// SMTPMailer sends confirmation codes over plain SMTP, authenticating only
// when credentials are configured. There is no retry: a delivery failure is
// the caller's problem.
type SMTPMailer struct {
	host     string
	addr     string
	username string
	password string
	from     string
}

func NewSMTPMailer(host, addr, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		addr:     addr,
		username: username,
		password: password,
		from:     from,
	}
}

func (m *SMTPMailer) SendConfirmationCode(ctx context.Context, toEmail, code string) error {
	message := buildConfirmationMessage(m.from, toEmail, code, time.Now())

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := smtp.SendMail(m.addr, auth, m.from, []string{toEmail}, message); err != nil {
		return fmt.Errorf("send confirmation mail to %s: %w", toEmail, err)
	}

	logrus.WithField("to", toEmail).Debug("Confirmation mail sent")
	return nil
}

func buildConfirmationMessage(from, to, code string, at time.Time) []byte {
	headers := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nDate: %s\r\nMessage-ID: <%s@%s>\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n",
		from, to, confirmationSubject, at.Format(time.RFC1123Z), uuid.New().String(), domainOf(from),
	)
	body := fmt.Sprintf("Your confirmation code: %s\r\n", code)
	return []byte(headers + "\r\n" + body)
}

func domainOf(address string) string {
	for i := len(address) - 1; i >= 0; i-- {
		if address[i] == '@' {
			return address[i+1:]
		}
	}
	return "localhost"
}
