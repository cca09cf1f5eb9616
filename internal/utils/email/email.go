package email

import (
	"fmt"
	"net/smtp"

	"github.com/Dan9191/daily-learning/internal/config"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

func welcomeMessage(from, to, name string) *email.Email {
	e := email.NewEmail()
	e.From = from
	e.To = []string{to}
	e.Subject = "Welcome to Daily Learning"

	body := fmt.Sprintf("Dear %s,\n\n", name)
	body += "Your account is ready. Every day you can draw one new topic to read,\n" +
		"and keep the ones you like in your favorites.\n"
	body += "\nHappy learning,\nDaily Learning"
	e.Text = []byte(body)
	return e
}

// SendWelcome sends the registration greeting
func (s *Sender) SendWelcome(to, name string) error {
	e := welcomeMessage(s.cfg.SenderEmail, to, name)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
