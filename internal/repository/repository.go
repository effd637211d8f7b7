package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Dan9191/fintrack/internal/interfaces"
	"github.com/Dan9191/fintrack/internal/models"
)

//go:embed schema.sql
var schema string

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository provides database operations
type Repository struct {
	db *sql.DB
	q  queryer
}

var _ interfaces.Store = (*Repository)(nil)

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, q: db}
}

// Migrate creates the schema if it does not exist
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.q.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// InTx runs fn inside a database transaction
func (r *Repository) InTx(ctx context.Context, fn func(interfaces.Store) error) error {
	if r.db == nil {
		// already inside a transaction
		return fn(r)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(&Repository{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// uniqueViolation maps a duplicate external id onto ErrConflict
func uniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%s: %w", pqErr.Constraint, models.ErrConflict)
	}
	return err
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

const loanColumns = `id, name, principal, rate, tenure_months, start_date, external_id, benchmark_type, created_at, updated_at`

func scanLoan(row interface{ Scan(...any) error }) (*models.Loan, error) {
	loan := &models.Loan{}
	var externalID sql.NullString
	err := row.Scan(&loan.ID, &loan.Name, &loan.Principal, &loan.Rate, &loan.TenureMonths,
		&loan.StartDate, &externalID, &loan.Benchmark, &loan.CreatedAt, &loan.UpdatedAt)
	if err != nil {
		return nil, err
	}
	loan.ExternalID = stringPtr(externalID)
	return loan, nil
}

// FindLoanByExternalID retrieves a loan by its external id
func (r *Repository) FindLoanByExternalID(ctx context.Context, externalID string) (*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM fintrack.loans WHERE external_id = $1`
	loan, err := scanLoan(r.q.QueryRowContext(ctx, query, externalID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find loan: %w", err)
	}
	return loan, nil
}

// CreateLoan creates a new loan in the database
func (r *Repository) CreateLoan(ctx context.Context, loan *models.Loan) error {
	if loan.Benchmark == "" {
		loan.Benchmark = models.BenchmarkNone
	}
	query := `
		INSERT INTO fintrack.loans (name, principal, rate, tenure_months, start_date, external_id, benchmark_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRowContext(ctx, query, loan.Name, loan.Principal, loan.Rate, loan.TenureMonths,
		loan.StartDate, nullString(loan.ExternalID), loan.Benchmark).
		Scan(&loan.ID, &loan.CreatedAt, &loan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create loan: %w", uniqueViolation(err))
	}
	return nil
}

// UpdateLoan updates the mutable fields of a loan. The external id is never changed.
func (r *Repository) UpdateLoan(ctx context.Context, loan *models.Loan) error {
	query := `
		UPDATE fintrack.loans
		SET name = $2, principal = $3, rate = $4, tenure_months = $5, start_date = $6, benchmark_type = $7,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRowContext(ctx, query, loan.ID, loan.Name, loan.Principal, loan.Rate, loan.TenureMonths,
		loan.StartDate, loan.Benchmark).Scan(&loan.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to update loan %d: %w", loan.ID, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}
	return nil
}

// ListLoans retrieves all loans
func (r *Repository) ListLoans(ctx context.Context) ([]models.Loan, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+loanColumns+` FROM fintrack.loans ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []models.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, *loan)
	}
	return loans, rows.Err()
}

const investmentColumns = `id, name, amount, current_value, quantity, category, date, external_id, source`

func scanInvestment(row interface{ Scan(...any) error }) (*models.Investment, error) {
	inv := &models.Investment{}
	var externalID sql.NullString
	err := row.Scan(&inv.ID, &inv.Name, &inv.Amount, &inv.CurrentValue, &inv.Quantity,
		&inv.Category, &inv.Date, &externalID, &inv.Source)
	if err != nil {
		return nil, err
	}
	inv.ExternalID = stringPtr(externalID)
	return inv, nil
}

// FindInvestmentByExternalID retrieves a holding by its external id
func (r *Repository) FindInvestmentByExternalID(ctx context.Context, externalID string) (*models.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM fintrack.investments WHERE external_id = $1`
	inv, err := scanInvestment(r.q.QueryRowContext(ctx, query, externalID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find investment: %w", err)
	}
	return inv, nil
}

// CreateInvestment creates a new holding
func (r *Repository) CreateInvestment(ctx context.Context, inv *models.Investment) error {
	query := `
		INSERT INTO fintrack.investments (name, amount, current_value, quantity, category, date, external_id, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.q.QueryRowContext(ctx, query, inv.Name, inv.Amount, inv.CurrentValue, inv.Quantity,
		inv.Category, inv.Date, nullString(inv.ExternalID), inv.Source).Scan(&inv.ID)
	if err != nil {
		return fmt.Errorf("failed to create investment: %w", uniqueViolation(err))
	}
	return nil
}

// UpdateInvestment updates the valuation fields of a holding
func (r *Repository) UpdateInvestment(ctx context.Context, inv *models.Investment) error {
	query := `
		UPDATE fintrack.investments
		SET name = $2, amount = $3, current_value = $4, quantity = $5, category = $6
		WHERE id = $1`
	res, err := r.q.ExecContext(ctx, query, inv.ID, inv.Name, inv.Amount, inv.CurrentValue, inv.Quantity, inv.Category)
	if err != nil {
		return fmt.Errorf("failed to update investment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to update investment %d: %w", inv.ID, models.ErrNotFound)
	}
	return nil
}

// ListInvestments retrieves holdings dated inside the range
func (r *Repository) ListInvestments(ctx context.Context, rng models.DateRange) ([]models.Investment, error) {
	query := `
		SELECT ` + investmentColumns + `
		FROM fintrack.investments
		WHERE ($1::date IS NULL OR date >= $1) AND ($2::date IS NULL OR date <= $2)
		ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query, nullDate(rng.From), nullDate(rng.To))
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	defer rows.Close()

	var out []models.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

// CreateSaving creates a new saving entry
func (r *Repository) CreateSaving(ctx context.Context, s *models.Saving) error {
	query := `
		INSERT INTO fintrack.savings (name, amount, date, source)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.q.QueryRowContext(ctx, query, s.Name, s.Amount, s.Date, s.Source).Scan(&s.ID); err != nil {
		return fmt.Errorf("failed to create saving: %w", err)
	}
	return nil
}

// ListSavings retrieves saving entries dated inside the range
func (r *Repository) ListSavings(ctx context.Context, rng models.DateRange) ([]models.Saving, error) {
	query := `
		SELECT id, name, amount, date, source
		FROM fintrack.savings
		WHERE ($1::date IS NULL OR date >= $1) AND ($2::date IS NULL OR date <= $2)
		ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query, nullDate(rng.From), nullDate(rng.To))
	if err != nil {
		return nil, fmt.Errorf("failed to list savings: %w", err)
	}
	defer rows.Close()

	var out []models.Saving
	for rows.Next() {
		var s models.Saving
		if err := rows.Scan(&s.ID, &s.Name, &s.Amount, &s.Date, &s.Source); err != nil {
			return nil, fmt.Errorf("failed to scan saving: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CreateExpense creates a new expense
func (r *Repository) CreateExpense(ctx context.Context, e *models.Expense) error {
	query := `
		INSERT INTO fintrack.expenses (title, amount, category, date, source, created_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.q.QueryRowContext(ctx, query, e.Title, e.Amount, e.Category, e.Date, e.Source).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// ListExpenses retrieves expenses dated inside the range
func (r *Repository) ListExpenses(ctx context.Context, rng models.DateRange) ([]models.Expense, error) {
	query := `
		SELECT id, title, amount, category, date, source, created_at
		FROM fintrack.expenses
		WHERE ($1::date IS NULL OR date >= $1) AND ($2::date IS NULL OR date <= $2)
		ORDER BY date DESC, id DESC`
	rows, err := r.q.QueryContext(ctx, query, nullDate(rng.From), nullDate(rng.To))
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var out []models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.Title, &e.Amount, &e.Category, &e.Date, &e.Source, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CreateTemplate creates a new recurring template
func (r *Repository) CreateTemplate(ctx context.Context, t *models.RecurringTemplate) error {
	var paymentDay any
	if t.PaymentDay > 0 {
		paymentDay = t.PaymentDay
	}
	var category any
	if t.Category != "" {
		category = t.Category
	}
	query := `
		INSERT INTO fintrack.recurring_templates
			(name, kind, amount, frequency, payment_day, category, start_date, last_processed_date, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.q.QueryRowContext(ctx, query, t.Name, t.Kind, t.Amount, t.Frequency, paymentDay, category,
		t.StartDate, nullTime(t.LastProcessed), t.Active).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

// ListActiveTemplates retrieves all active recurring templates
func (r *Repository) ListActiveTemplates(ctx context.Context) ([]models.RecurringTemplate, error) {
	query := `
		SELECT id, name, kind, amount, frequency, payment_day, category, start_date, last_processed_date, active
		FROM fintrack.recurring_templates
		WHERE active
		ORDER BY start_date, id`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var out []models.RecurringTemplate
	for rows.Next() {
		var (
			t             models.RecurringTemplate
			paymentDay    sql.NullInt64
			category      sql.NullString
			lastProcessed sql.NullTime
		)
		err := rows.Scan(&t.ID, &t.Name, &t.Kind, &t.Amount, &t.Frequency, &paymentDay, &category,
			&t.StartDate, &lastProcessed, &t.Active)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		t.PaymentDay = int(paymentDay.Int64)
		t.Category = category.String
		if lastProcessed.Valid {
			lp := lastProcessed.Time
			t.LastProcessed = &lp
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MarkTemplateProcessed sets last_processed_date only if it still holds prev
func (r *Repository) MarkTemplateProcessed(ctx context.Context, id int64, prev *time.Time, day time.Time) error {
	query := `
		UPDATE fintrack.recurring_templates
		SET last_processed_date = $2
		WHERE id = $1 AND last_processed_date IS NOT DISTINCT FROM $3`
	res, err := r.q.ExecContext(ctx, query, id, day, nullTime(prev))
	if err != nil {
		return fmt.Errorf("failed to mark template %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark template %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("failed to mark template %d: %w", id, models.ErrConflict)
	}
	return nil
}

// GetProfile retrieves a user profile
func (r *Repository) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	p := &models.Profile{}
	query := `SELECT user_id, monthly_income, updated_at FROM fintrack.profiles WHERE user_id = $1`
	err := r.q.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &p.MonthlyIncome, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// CreateProfile inserts a profile, keeping an existing one
func (r *Repository) CreateProfile(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO fintrack.profiles (user_id, monthly_income, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.q.ExecContext(ctx, query, p.UserID, p.MonthlyIncome); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// SaveProfile inserts or updates a profile
func (r *Repository) SaveProfile(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO fintrack.profiles (user_id, monthly_income, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET monthly_income = EXCLUDED.monthly_income, updated_at = CURRENT_TIMESTAMP
		RETURNING updated_at`
	if err := r.q.QueryRowContext(ctx, query, p.UserID, p.MonthlyIncome).Scan(&p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// CreatePolicy creates a new insurance policy
func (r *Repository) CreatePolicy(ctx context.Context, p *models.Policy) error {
	if p.Type == "" {
		p.Type = models.PolicyTerm
	}
	query := `
		INSERT INTO fintrack.policies (name, type, sum_assured, premium, premium_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.q.QueryRowContext(ctx, query, p.Name, p.Type, p.SumAssured, p.Premium, p.PremiumDate).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create policy: %w", err)
	}
	return nil
}

// ListPolicies retrieves all insurance policies
func (r *Repository) ListPolicies(ctx context.Context) ([]models.Policy, error) {
	query := `
		SELECT id, name, type, sum_assured, premium, premium_date
		FROM fintrack.policies
		ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	defer rows.Close()

	var out []models.Policy
	for rows.Next() {
		var p models.Policy
		if err := rows.Scan(&p.ID, &p.Name, &p.Type, &p.SumAssured, &p.Premium, &p.PremiumDate); err != nil {
			return nil, fmt.Errorf("failed to scan policy: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
