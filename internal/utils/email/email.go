package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/fintrack/internal/config"
	"github.com/Dan9191/fintrack/internal/interfaces"
	"github.com/Dan9191/fintrack/internal/models"
	"github.com/Dan9191/fintrack/internal/utils"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

var _ interfaces.ReminderSender = (*Sender)(nil)

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

// BuildDueReminders formats the upcoming-dues digest
func (s *Sender) BuildDueReminders(to string, reminders []models.Reminder) *email.Email {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	if len(reminders) == 1 {
		e.Subject = "1 upcoming payment"
	} else {
		e.Subject = fmt.Sprintf("%d upcoming payments", len(reminders))
	}

	var body strings.Builder
	body.WriteString("Hello,\n\nThe following payments are due soon:\n\n")
	for _, r := range reminders {
		when := "today"
		switch {
		case r.DaysLeft == 1:
			when = "tomorrow"
		case r.DaysLeft > 1:
			when = fmt.Sprintf("in %d days", r.DaysLeft)
		}
		fmt.Fprintf(&body, "  - %s: ₹%s on %s (%s)\n",
			r.Title, utils.FormatAmount(r.Amount), r.Date.Format(utils.DateLayout), when)
	}
	body.WriteString("\nBest regards,\nFintrack")
	e.Text = []byte(body.String())
	return e
}

// SendDueReminders mails the digest; an empty list sends nothing
func (s *Sender) SendDueReminders(to string, reminders []models.Reminder) error {
	if len(reminders) == 0 {
		return nil
	}
	e := s.BuildDueReminders(to, reminders)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
