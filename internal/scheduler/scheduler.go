// Package scheduler runs the periodic background jobs of the service.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/fintrack/internal/interfaces"
	"github.com/Dan9191/fintrack/internal/models"
)

const jobTimeout = 5 * time.Minute

// Automation is the part of the service the jobs drive
type Automation interface {
	ProcessRecurring(ctx context.Context) models.RecurrenceStatus
	UpcomingReminders(ctx context.Context) ([]models.Reminder, error)
}

// Config holds the cron expressions and the digest recipient.
// An empty ReminderTo or a nil sender disables the reminder job.
type Config struct {
	RecurrenceSpec string
	ReminderSpec   string
	ReminderTo     string
}

// Scheduler owns the cron table of background jobs
type Scheduler struct {
	cron   *cron.Cron
	svc    Automation
	sender interfaces.ReminderSender
	cfg    Config
	log    *logrus.Logger
}

// New creates a scheduler; call Register before Start
func New(svc Automation, sender interfaces.ReminderSender, cfg Config, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		svc:    svc,
		sender: sender,
		cfg:    cfg,
		log:    log,
	}
}

// Register adds the jobs to the cron table
func (s *Scheduler) Register() error {
	if _, err := s.cron.AddFunc(s.cfg.RecurrenceSpec, s.RunRecurrence); err != nil {
		return fmt.Errorf("recurrence schedule %q: %w", s.cfg.RecurrenceSpec, err)
	}
	if s.sender == nil || s.cfg.ReminderTo == "" {
		s.log.Info("Reminder digest disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.cfg.ReminderSpec, s.RunReminders); err != nil {
		return fmt.Errorf("reminder schedule %q: %w", s.cfg.ReminderSpec, err)
	}
	return nil
}

// Start runs the registered jobs in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Infof("Scheduler started with %d jobs", len(s.cron.Entries()))
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("Scheduler stopped")
}

// RunRecurrence fires due recurring templates
func (s *Scheduler) RunRecurrence() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	status := s.svc.ProcessRecurring(ctx)
	if status.Failed > 0 {
		s.log.Warnf("Recurrence pass: %d evaluated, %d fired, %d failed: %v",
			status.Evaluated, status.Fired, status.Failed, status.Errors)
		return
	}
	s.log.Infof("Recurrence pass: %d evaluated, %d fired", status.Evaluated, status.Fired)
}

// RunReminders mails the digest of upcoming dues
func (s *Scheduler) RunReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	reminders, err := s.svc.UpcomingReminders(ctx)
	if err != nil {
		s.log.Errorf("Failed to build reminders: %v", err)
		return
	}
	if len(reminders) == 0 {
		return
	}
	if err := s.sender.SendDueReminders(s.cfg.ReminderTo, reminders); err != nil {
		s.log.Errorf("Failed to send reminders: %v", err)
		return
	}
	s.log.Infof("Sent %d reminders", len(reminders))
}
