package recurrence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/fintrack/internal/interfaces"
	"github.com/Dan9191/fintrack/internal/models"
	"github.com/Dan9191/fintrack/internal/utils"
)

// Scheduler materializes due recurring templates
type Scheduler struct {
	store interfaces.Store
	log   *logrus.Logger
	now   utils.Clock
}

// NewScheduler initializes a new scheduler
func NewScheduler(store interfaces.Store, log *logrus.Logger, now utils.Clock) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{store: store, log: log, now: now}
}

// Process evaluates every active template once. Wealth templates run before expense templates.
// A failing template is recorded and skipped; the rest are still evaluated.
func (s *Scheduler) Process(ctx context.Context) models.RecurrenceStatus {
	status := models.RecurrenceStatus{}
	today := utils.Day(s.now())

	templates, err := s.store.ListActiveTemplates(ctx)
	if err != nil {
		s.log.Errorf("Failed to list recurring templates: %v", err)
		status.Errors = append(status.Errors, err.Error())
		return status
	}
	sort.SliceStable(templates, func(i, j int) bool {
		return !templates[i].IsExpense() && templates[j].IsExpense()
	})

	for i := range templates {
		t := &templates[i]
		status.Evaluated++

		fired, err := s.processTemplate(ctx, t, today)
		if err != nil {
			status.Failed++
			status.Errors = append(status.Errors, fmt.Sprintf("template %d: %v", t.ID, err))
			s.log.Warnf("Recurring template %d (%s) skipped: %v", t.ID, t.Name, err)
			continue
		}
		if fired {
			status.Fired++
		}
	}

	if status.Fired > 0 || status.Failed > 0 {
		s.log.Infof("Recurrence pass: %d evaluated, %d fired, %d failed", status.Evaluated, status.Fired, status.Failed)
	}
	return status
}

func (s *Scheduler) processTemplate(ctx context.Context, t *models.RecurringTemplate, today time.Time) (bool, error) {
	due, err := IsDue(t, today)
	if err != nil || !due {
		return false, err
	}

	err = s.store.InTx(ctx, func(tx interfaces.Store) error {
		if err := materialize(ctx, tx, t, today); err != nil {
			return err
		}
		return tx.MarkTemplateProcessed(ctx, t.ID, t.LastProcessed, today)
	})
	if errors.Is(err, models.ErrConflict) {
		s.log.Debugf("Recurring template %d already processed for %s", t.ID, today.Format(utils.DateLayout))
		return false, nil
	}
	if err != nil {
		return false, err
	}

	t.LastProcessed = &today
	s.log.Infof("Recurring template %d (%s) materialized %s as %s", t.ID, t.Name, t.Amount, PolicyFor(t))
	return true, nil
}

// materialize writes the concrete record a template produces for the given day
func materialize(ctx context.Context, store interfaces.Store, t *models.RecurringTemplate, day time.Time) error {
	switch t.Kind {
	case models.KindSaving:
		return store.CreateSaving(ctx, &models.Saving{
			Name:   t.Name + " (Auto)",
			Amount: t.Amount,
			Date:   day,
			Source: models.SourceAuto,
		})

	case models.KindInvestment, models.KindExpenseSIP:
		// an expense SIP carries an expense category; its holding is always filed as other
		category := models.InvestmentOther
		prefix := "SIP"
		if t.Kind == models.KindInvestment {
			prefix = "RECUR"
			if c := models.InvestmentCategory(t.Category); c.Valid() {
				category = c
			}
		}
		externalID := fmt.Sprintf("%s-%d-%s", prefix, t.ID, day.Format(utils.DateLayout))
		return store.CreateInvestment(ctx, &models.Investment{
			Name:         t.Name + " (Auto SIP)",
			Amount:       t.Amount,
			CurrentValue: t.Amount,
			Category:     category,
			Date:         day,
			ExternalID:   &externalID,
			Source:       models.SourceAuto,
		})

	case models.KindExpenseBill:
		category := models.ExpenseCategory(t.Category)
		if category == "" {
			category = models.ExpenseOther
		}
		return store.CreateExpense(ctx, &models.Expense{
			Title:    t.Name + " (Auto)",
			Amount:   t.Amount,
			Category: category,
			Date:     day,
			Source:   models.SourceAuto,
		})
	}
	return fmt.Errorf("%w: unknown kind %q", models.ErrInvalidTemplate, t.Kind)
}
