package mail

import (
	"log"

	"qrreview-backend/internal/config"

	"gopkg.in/gomail.v2"
)

// Sender: handler'ların kullandığı mail arayüzü (testlerde stub'lanır)
type Sender interface {
	Send(to, subject, body string) error
}

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func New(cfg *config.Config) *Mailer {
	from := cfg.MailFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   from,
	}
}

func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, "QR Review")
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		log.Println("Mail gönderilemedi:", err)
		return err
	}
	return nil
}
