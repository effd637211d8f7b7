// Package recurrence decides when recurring templates are due and materializes them once per period
package recurrence

import (
	"fmt"
	"time"

	"github.com/Dan9191/fintrack/internal/models"
	"github.com/Dan9191/fintrack/internal/utils"
)

// Policy selects the due test of a template
type Policy int

const (
	// RollingWindow fires once a full period has elapsed since the reference date
	RollingWindow Policy = iota
	// CalendarDay fires once per calendar month on or after the payment day
	CalendarDay
)

func (p Policy) String() string {
	if p == CalendarDay {
		return "calendar-day"
	}
	return "rolling-window"
}

// PolicyFor returns the due policy of a template kind.
// Savings and investment templates roll; bills and SIP expenses follow the calendar.
func PolicyFor(t *models.RecurringTemplate) Policy {
	if t.IsExpense() {
		return CalendarDay
	}
	return RollingWindow
}

// PeriodDays returns the rolling window length
func PeriodDays(f models.Frequency) (int, error) {
	switch f {
	case models.FrequencyMonthly:
		return 30, nil
	case models.FrequencyWeekly:
		return 7, nil
	}
	return 0, fmt.Errorf("%w: unknown frequency %q", models.ErrInvalidTemplate, f)
}

// Validate rejects templates the scheduler cannot materialize
func Validate(t *models.RecurringTemplate) error {
	switch t.Kind {
	case models.KindSaving:
	case models.KindInvestment:
		if t.Category != "" && !models.InvestmentCategory(t.Category).Valid() {
			return fmt.Errorf("%w: unknown investment category %q", models.ErrInvalidTemplate, t.Category)
		}
	case models.KindExpenseBill, models.KindExpenseSIP:
		if t.Category != "" && !models.ExpenseCategory(t.Category).Valid() {
			return fmt.Errorf("%w: unknown expense category %q", models.ErrInvalidTemplate, t.Category)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", models.ErrInvalidTemplate, t.Kind)
	}

	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", models.ErrInvalidTemplate)
	}
	if t.StartDate.IsZero() {
		return fmt.Errorf("%w: missing start date", models.ErrInvalidTemplate)
	}
	if PolicyFor(t) == RollingWindow {
		if _, err := PeriodDays(t.Frequency); err != nil {
			return err
		}
	} else if t.PaymentDay < 0 || t.PaymentDay > 31 {
		return fmt.Errorf("%w: payment day %d out of range", models.ErrInvalidTemplate, t.PaymentDay)
	}
	return nil
}

// ReferenceDate is the last processed date, or the start date for a template never fired
func ReferenceDate(t *models.RecurringTemplate) time.Time {
	if t.LastProcessed != nil {
		return utils.Day(*t.LastProcessed)
	}
	return utils.Day(t.StartDate)
}

func paymentDay(t *models.RecurringTemplate) int {
	if t.PaymentDay <= 0 {
		return 1
	}
	return t.PaymentDay
}

// IsDue reports whether the template should materialize a record today
func IsDue(t *models.RecurringTemplate, today time.Time) (bool, error) {
	if err := Validate(t); err != nil {
		return false, err
	}
	today = utils.Day(today)

	if PolicyFor(t) == RollingWindow {
		period, _ := PeriodDays(t.Frequency)
		return utils.DaysBetween(ReferenceDate(t), today) >= period, nil
	}

	if today.Before(utils.Day(t.StartDate)) {
		return false, nil
	}
	if t.LastProcessed != nil && utils.SameMonth(*t.LastProcessed, today) {
		return false, nil
	}
	return !today.Before(utils.DayInMonth(today, paymentDay(t))), nil
}

// NextDue returns the date the template is next expected to fire, never earlier than today
func NextDue(t *models.RecurringTemplate, today time.Time) (time.Time, error) {
	if err := Validate(t); err != nil {
		return time.Time{}, err
	}
	today = utils.Day(today)

	var next time.Time
	if PolicyFor(t) == RollingWindow {
		period, _ := PeriodDays(t.Frequency)
		next = ReferenceDate(t).AddDate(0, 0, period)
	} else {
		start := utils.Day(t.StartDate)
		month := utils.MonthStart(today)
		if t.LastProcessed != nil && utils.SameMonth(*t.LastProcessed, today) {
			month = month.AddDate(0, 1, 0)
		}
		if utils.MonthStart(start).After(month) {
			month = utils.MonthStart(start)
		}
		next = utils.DayInMonth(month, paymentDay(t))
		if next.Before(start) {
			next = start
		}
	}

	if next.Before(today) {
		next = today
	}
	return next, nil
}
