package service

import (
	"sort"
	"time"

	"github.com/Dan9191/fintrack/internal/amortization"
	"github.com/Dan9191/fintrack/internal/models"
	"github.com/Dan9191/fintrack/internal/recurrence"
	"github.com/Dan9191/fintrack/internal/utils"
)

const (
	loanDueDay      = 5
	reminderHorizon = 30
	maxReminders    = 5
)

// BuildReminders merges loan EMI dues and template dues within the next 30 days,
// nearest first, keeping at most five
func BuildReminders(loans []models.Loan, templates []models.RecurringTemplate, today time.Time) []models.Reminder {
	today = utils.Day(today)
	out := []models.Reminder{}

	loanDue := utils.Date(today.Year(), today.Month()+1, loanDueDay)
	for i := range loans {
		emi, err := amortization.ForLoan(&loans[i])
		if err != nil {
			continue
		}
		out = appendIfNear(out, models.Reminder{
			Title:  loans[i].Name + " EMI",
			Amount: emi.EMI,
			Date:   loanDue,
			Kind:   models.ReminderLoan,
		}, today)
	}

	for i := range templates {
		next, err := recurrence.NextDue(&templates[i], today)
		if err != nil {
			continue
		}
		out = appendIfNear(out, models.Reminder{
			Title:  templates[i].Name,
			Amount: templates[i].Amount,
			Date:   next,
			Kind:   models.ReminderRecurring,
		}, today)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysLeft < out[j].DaysLeft
	})
	if len(out) > maxReminders {
		out = out[:maxReminders]
	}
	return out
}

func appendIfNear(out []models.Reminder, r models.Reminder, today time.Time) []models.Reminder {
	r.DaysLeft = utils.DaysBetween(today, r.Date)
	if r.DaysLeft < 0 || r.DaysLeft > reminderHorizon {
		return out
	}
	return append(out, r)
}
