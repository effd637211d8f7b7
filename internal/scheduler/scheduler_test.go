package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/fintrack/internal/models"
)

type fakeAutomation struct {
	runs      int
	status    models.RecurrenceStatus
	reminders []models.Reminder
	err       error
}

func (f *fakeAutomation) ProcessRecurring(ctx context.Context) models.RecurrenceStatus {
	f.runs++
	return f.status
}

func (f *fakeAutomation) UpcomingReminders(ctx context.Context) ([]models.Reminder, error) {
	return f.reminders, f.err
}

type fakeSender struct {
	to   string
	sent []models.Reminder
	err  error
}

func (f *fakeSender) SendDueReminders(to string, reminders []models.Reminder) error {
	f.to = to
	f.sent = reminders
	return f.err
}

var cfg = Config{RecurrenceSpec: "5 0 * * *", ReminderSpec: "0 8 * * *", ReminderTo: "me@example.com"}

func TestRegister(t *testing.T) {
	logger, _ := test.NewNullLogger()

	s := New(&fakeAutomation{}, &fakeSender{}, cfg, logger)
	require.NoError(t, s.Register())
	assert.Len(t, s.cron.Entries(), 2)

	s = New(&fakeAutomation{}, nil, cfg, logger)
	require.NoError(t, s.Register())
	assert.Len(t, s.cron.Entries(), 1)

	bad := cfg
	bad.RecurrenceSpec = "every day"
	assert.Error(t, New(&fakeAutomation{}, nil, bad, logger).Register())
}

func TestRunRecurrence_LogsFailures(t *testing.T) {
	logger, hook := test.NewNullLogger()
	svc := &fakeAutomation{status: models.RecurrenceStatus{Evaluated: 2, Fired: 1, Failed: 1, Errors: []string{"template 2: boom"}}}

	New(svc, nil, cfg, logger).RunRecurrence()

	assert.Equal(t, 1, svc.runs)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestRunReminders(t *testing.T) {
	logger, _ := test.NewNullLogger()
	reminders := []models.Reminder{{Title: "Gym", Amount: decimal.NewFromInt(2000), DaysLeft: 3}}

	sender := &fakeSender{}
	New(&fakeAutomation{reminders: reminders}, sender, cfg, logger).RunReminders()
	assert.Equal(t, "me@example.com", sender.to)
	assert.Equal(t, reminders, sender.sent)

	sender = &fakeSender{}
	New(&fakeAutomation{}, sender, cfg, logger).RunReminders()
	assert.Nil(t, sender.sent)
}

func TestRunReminders_Errors(t *testing.T) {
	logger, hook := test.NewNullLogger()

	sender := &fakeSender{}
	New(&fakeAutomation{err: errors.New("db down")}, sender, cfg, logger).RunReminders()
	assert.Nil(t, sender.sent)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	hook.Reset()
	sender = &fakeSender{err: errors.New("smtp down")}
	New(&fakeAutomation{reminders: []models.Reminder{{Title: "Gym"}}}, sender, cfg, logger).RunReminders()
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}
