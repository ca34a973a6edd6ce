package report

import (
	"fmt"

	"github.com/go-gomail/gomail"
)

// Mailer sends generated reports via SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send mails the given attachments to one recipient.
func (m *Mailer) Send(to, subject, body string, attachments ...string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	for _, f := range attachments {
		msg.Attach(f)
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send report mail to %s: %w", to, err)
	}
	return nil
}
