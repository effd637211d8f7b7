package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/fintrack/internal/amortization"
	"github.com/Dan9191/fintrack/internal/budget"
	"github.com/Dan9191/fintrack/internal/config"
	"github.com/Dan9191/fintrack/internal/interfaces"
	"github.com/Dan9191/fintrack/internal/models"
	"github.com/Dan9191/fintrack/internal/reconcile"
	"github.com/Dan9191/fintrack/internal/recurrence"
	"github.com/Dan9191/fintrack/internal/utils"
)

const (
	trendMonths   = 6
	topCategories = 5
)

var defaultInsuranceCover = decimal.NewFromInt(10000000) // 1 crore

// Service handles business logic
type Service struct {
	store      interfaces.Store
	reconciler *reconcile.Reconciler
	scheduler  *recurrence.Scheduler
	benchmarks interfaces.BenchmarkProvider
	categories budget.Categories
	log        *logrus.Logger
	now        utils.Clock
}

// NewService initializes a new service. benchmarks may be nil.
func NewService(store interfaces.Store, reconciler *reconcile.Reconciler, scheduler *recurrence.Scheduler,
	benchmarks interfaces.BenchmarkProvider, cfg *config.Config, log *logrus.Logger, now utils.Clock) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:      store,
		reconciler: reconciler,
		scheduler:  scheduler,
		benchmarks: benchmarks,
		categories: budget.NewCategories(cfg.NeedsCategories, cfg.WantsCategories),
		log:        log,
		now:        now,
	}
}

// InitProfile creates a zero-income profile for a new user; an existing profile is kept
func (s *Service) InitProfile(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", models.ErrPrecondition)
	}
	if err := s.store.CreateProfile(ctx, &models.Profile{UserID: userID, MonthlyIncome: decimal.Zero}); err != nil {
		return nil, err
	}
	s.log.Infof("Profile initialized for user %s", userID)
	return s.store.GetProfile(ctx, userID)
}

// UpdateIncome sets the monthly income used by the budget engine
func (s *Service) UpdateIncome(ctx context.Context, userID string, income decimal.Decimal) (*models.Profile, error) {
	if income.IsNegative() {
		return nil, fmt.Errorf("%w: negative income", models.ErrPrecondition)
	}
	p := &models.Profile{UserID: userID, MonthlyIncome: income}
	if err := s.store.SaveProfile(ctx, p); err != nil {
		return nil, err
	}
	s.log.Infof("Monthly income updated for user %s", userID)
	return p, nil
}

// Benchmarks returns the current market references
func (s *Service) Benchmarks(ctx context.Context) (*models.LoanBenchmarks, models.InsuranceBenchmarks, error) {
	if s.benchmarks == nil {
		return nil, models.InsuranceBenchmarks{}, fmt.Errorf("%w: no benchmark provider", models.ErrSourceUnavailable)
	}
	loans, err := s.benchmarks.LoanBenchmarks(ctx)
	return loans, s.benchmarks.InsuranceBenchmarks(), err
}

// ProcessRecurring runs one recurrence pass
func (s *Service) ProcessRecurring(ctx context.Context) models.RecurrenceStatus {
	return s.scheduler.Process(ctx)
}

// Dashboard syncs external sources, fires due templates and assembles the dashboard aggregate.
// Source failures degrade the result; only store failures are returned as errors.
func (s *Service) Dashboard(ctx context.Context, userID string) (*models.Dashboard, error) {
	today := utils.Day(s.now())
	runID := uuid.New().String()
	log := s.log.WithField("run_id", runID)

	var sync reconcile.Result
	if s.reconciler != nil {
		sync = s.reconciler.SyncAll(ctx)
	}
	recStatus := s.scheduler.Process(ctx)

	income, err := s.income(ctx, userID)
	if err != nil {
		return nil, err
	}
	data, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	actual := budget.Actual(data.expenses, data.savings, data.investments, s.categories,
		models.DateRange{From: utils.MonthStart(today)})
	analysis, err := budget.Analyze(income, actual)
	if err != nil {
		return nil, err
	}

	d := &models.Dashboard{
		GeneratedAt: s.now().UTC(),
		Totals:      s.totals(data, log),
		Budget:      analysis,
		Trend:       budget.Trend(today, trendMonths, income, data.expenses, data.savings, data.investments, s.categories),
		Reminders:   BuildReminders(data.loans, data.templates, today),
		MarketLoans: sync.MarketLoans,
		Sync: models.SyncStatus{
			RunID:      runID,
			Loans:      sync.Loans,
			Benchmarks: sync.Benchmarks,
			Holdings:   sync.Holdings,
			Recurrence: recStatus,
		},
		Degraded: s.reconciler == nil || sync.Degraded(),
	}
	if s.benchmarks != nil {
		d.MarketInsurance = s.benchmarks.InsuranceBenchmarks()
	}
	d.IdealInsurance = IdealInsuranceCover(income, d.MarketInsurance.TermCoverMultiplier)
	d.InsuranceCover = d.IdealInsurance
	if d.Totals.PolicyCover.IsPositive() {
		d.InsuranceCover = d.Totals.PolicyCover
	}
	d.ByCategory = budget.ByCategory(data.expenses)
	d.TopCategories = d.ByCategory[:min(topCategories, len(d.ByCategory))]

	if d.Degraded {
		log.Warn("Dashboard built from partially stale data")
	}
	return d, nil
}

// UpcomingReminders returns the nearest dues without syncing sources
func (s *Service) UpcomingReminders(ctx context.Context) ([]models.Reminder, error) {
	loans, err := s.store.ListLoans(ctx)
	if err != nil {
		return nil, err
	}
	templates, err := s.store.ListActiveTemplates(ctx)
	if err != nil {
		return nil, err
	}
	return BuildReminders(loans, templates, utils.Day(s.now())), nil
}

func (s *Service) income(ctx context.Context, userID string) (decimal.Decimal, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return p.MonthlyIncome, nil
}

type records struct {
	loans       []models.Loan
	investments []models.Investment
	savings     []models.Saving
	expenses    []models.Expense
	templates   []models.RecurringTemplate
	policies    []models.Policy
}

func (s *Service) load(ctx context.Context) (*records, error) {
	var (
		r   records
		err error
	)
	if r.loans, err = s.store.ListLoans(ctx); err != nil {
		return nil, err
	}
	if r.investments, err = s.store.ListInvestments(ctx, models.DateRange{}); err != nil {
		return nil, err
	}
	if r.savings, err = s.store.ListSavings(ctx, models.DateRange{}); err != nil {
		return nil, err
	}
	if r.expenses, err = s.store.ListExpenses(ctx, models.DateRange{}); err != nil {
		return nil, err
	}
	if r.templates, err = s.store.ListActiveTemplates(ctx); err != nil {
		return nil, err
	}
	if r.policies, err = s.store.ListPolicies(ctx); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Service) totals(r *records, log *logrus.Entry) models.Totals {
	t := models.Totals{
		Expenses:      decimal.Zero,
		Savings:       decimal.Zero,
		Invested:      decimal.Zero,
		CurrentValue:  decimal.Zero,
		LoanPrincipal: decimal.Zero,
		MonthlyEMI:    decimal.Zero,
		PolicyCover:   decimal.Zero,
		ActiveLoans:   len(r.loans),
	}
	for _, e := range r.expenses {
		t.Expenses = t.Expenses.Add(e.Amount)
	}
	for _, sv := range r.savings {
		t.Savings = t.Savings.Add(sv.Amount)
	}
	for _, inv := range r.investments {
		t.Invested = t.Invested.Add(inv.Amount)
		t.CurrentValue = t.CurrentValue.Add(inv.CurrentValue)
	}
	for _, p := range r.policies {
		t.PolicyCover = t.PolicyCover.Add(p.SumAssured)
	}
	for _, l := range r.loans {
		t.LoanPrincipal = t.LoanPrincipal.Add(l.Principal)
	}
	emi, err := amortization.TotalEMI(r.loans)
	if err != nil {
		log.Warnf("Monthly EMI total unavailable: %v", err)
	} else {
		t.MonthlyEMI = emi
	}
	t.NetWorth = t.Savings.Add(t.Invested).Sub(t.LoanPrincipal)
	return t
}

// IdealInsuranceCover is the term cover for the income, or one crore when income is unknown
func IdealInsuranceCover(monthlyIncome decimal.Decimal, multiplier int) decimal.Decimal {
	if !monthlyIncome.IsPositive() || multiplier <= 0 {
		return defaultInsuranceCover
	}
	return monthlyIncome.Mul(decimal.NewFromInt(int64(12 * multiplier)))
}
