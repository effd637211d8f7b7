package email

import (
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/fintrack/internal/config"
	"github.com/Dan9191/fintrack/internal/models"
)

func testSender() *Sender {
	logger, _ := test.NewNullLogger()
	return NewSender(&config.Config{
		SMTPHost:    "smtp.example.com",
		SMTPPort:    "587",
		SenderEmail: "noreply@fintrack.local",
	}, logger)
}

func reminders() []models.Reminder {
	return []models.Reminder{
		{Title: "Broadband", Amount: decimal.NewFromInt(999), Date: time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC), Kind: models.ReminderRecurring},
		{Title: "Car Loan (5678) EMI", Amount: decimal.RequireFromString("20879.90"), Date: time.Date(2026, time.November, 5, 0, 0, 0, 0, time.UTC), Kind: models.ReminderLoan, DaysLeft: 17},
	}
}

func TestBuildDueReminders(t *testing.T) {
	e := testSender().BuildDueReminders("me@example.com", reminders())

	assert.Equal(t, "noreply@fintrack.local", e.From)
	assert.Equal(t, []string{"me@example.com"}, e.To)
	assert.Equal(t, "2 upcoming payments", e.Subject)
	assert.Contains(t, string(e.Text), "Broadband: ₹999.00 on 2026-10-19 (today)")
	assert.Contains(t, string(e.Text), "Car Loan (5678) EMI: ₹20,879.90 on 2026-11-05 (in 17 days)")
}

func TestSendDueReminders(t *testing.T) {
	s := testSender()
	var sentTo string
	var sentAddr string
	s.send = func(e *email.Email, addr string, auth smtp.Auth) error {
		sentTo = e.To[0]
		sentAddr = addr
		return nil
	}

	require.NoError(t, s.SendDueReminders("me@example.com", reminders()))
	assert.Equal(t, "me@example.com", sentTo)
	assert.Equal(t, "smtp.example.com:587", sentAddr)
}

func TestSendDueReminders_EmptyAndFailure(t *testing.T) {
	s := testSender()
	calls := 0
	s.send = func(e *email.Email, addr string, auth smtp.Auth) error {
		calls++
		return errors.New("connection refused")
	}

	assert.NoError(t, s.SendDueReminders("me@example.com", nil))
	assert.Zero(t, calls)

	err := s.SendDueReminders("me@example.com", reminders())
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
