package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Dan9191/fintrack/internal/interfaces"
	"github.com/Dan9191/fintrack/internal/models"
)

// MemoryRepository is an in-process store with the same semantics as the
// Postgres repository. Transactions run on a private copy of the data and are
// serialized with every other write.
type MemoryRepository struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data memoryData
	inTx bool
}

type memoryData struct {
	nextID      int64
	loans       map[int64]models.Loan
	investments map[int64]models.Investment
	savings     map[int64]models.Saving
	expenses    map[int64]models.Expense
	templates   map[int64]models.RecurringTemplate
	profiles    map[string]models.Profile
	policies    map[int64]models.Policy
}

var _ interfaces.Store = (*MemoryRepository)(nil)

// NewMemoryRepository initializes an empty in-memory store
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: memoryData{
		loans:       map[int64]models.Loan{},
		investments: map[int64]models.Investment{},
		savings:     map[int64]models.Saving{},
		expenses:    map[int64]models.Expense{},
		templates:   map[int64]models.RecurringTemplate{},
		profiles:    map[string]models.Profile{},
		policies:    map[int64]models.Policy{},
	}}
}

func (d *memoryData) clone() memoryData {
	c := memoryData{
		nextID:      d.nextID,
		loans:       make(map[int64]models.Loan, len(d.loans)),
		investments: make(map[int64]models.Investment, len(d.investments)),
		savings:     make(map[int64]models.Saving, len(d.savings)),
		expenses:    make(map[int64]models.Expense, len(d.expenses)),
		templates:   make(map[int64]models.RecurringTemplate, len(d.templates)),
		profiles:    make(map[string]models.Profile, len(d.profiles)),
		policies:    make(map[int64]models.Policy, len(d.policies)),
	}
	for k, v := range d.loans {
		c.loans[k] = copyLoan(v)
	}
	for k, v := range d.investments {
		c.investments[k] = copyInvestment(v)
	}
	for k, v := range d.savings {
		c.savings[k] = v
	}
	for k, v := range d.expenses {
		c.expenses[k] = v
	}
	for k, v := range d.templates {
		c.templates[k] = copyTemplate(v)
	}
	for k, v := range d.profiles {
		c.profiles[k] = v
	}
	for k, v := range d.policies {
		c.policies[k] = v
	}
	return c
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyLoan(l models.Loan) models.Loan {
	l.ExternalID = copyString(l.ExternalID)
	return l
}

func copyInvestment(i models.Investment) models.Investment {
	i.ExternalID = copyString(i.ExternalID)
	return i
}

func copyTemplate(t models.RecurringTemplate) models.RecurringTemplate {
	t.LastProcessed = copyTime(t.LastProcessed)
	return t
}

// InTx runs fn against a copy of the data and publishes the copy only if fn succeeds
func (r *MemoryRepository) InTx(ctx context.Context, fn func(interfaces.Store) error) error {
	if r.inTx {
		return fn(r)
	}
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.RLock()
	tx := &MemoryRepository{data: r.data.clone(), inTx: true}
	r.mu.RUnlock()

	if err := fn(tx); err != nil {
		return err
	}
	r.mu.Lock()
	r.data = tx.data
	r.mu.Unlock()
	return nil
}

// writeLock serializes a write with running transactions
func (r *MemoryRepository) writeLock() func() {
	if !r.inTx {
		r.txMu.Lock()
	}
	r.mu.Lock()
	return func() {
		r.mu.Unlock()
		if !r.inTx {
			r.txMu.Unlock()
		}
	}
}

func (r *MemoryRepository) id() int64 {
	r.data.nextID++
	return r.data.nextID
}

// FindLoanByExternalID retrieves a loan by its external id
func (r *MemoryRepository) FindLoanByExternalID(ctx context.Context, externalID string) (*models.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, l := range r.data.loans {
		if l.ExternalID != nil && *l.ExternalID == externalID {
			found := copyLoan(l)
			return &found, nil
		}
	}
	return nil, models.ErrNotFound
}

// CreateLoan stores a new loan
func (r *MemoryRepository) CreateLoan(ctx context.Context, loan *models.Loan) error {
	defer r.writeLock()()
	if loan.ExternalID != nil {
		for _, l := range r.data.loans {
			if l.ExternalID != nil && *l.ExternalID == *loan.ExternalID {
				return fmt.Errorf("failed to create loan: %w: external id %s", models.ErrConflict, *loan.ExternalID)
			}
		}
	}
	if loan.Benchmark == "" {
		loan.Benchmark = models.BenchmarkNone
	}
	now := time.Now().UTC()
	loan.ID = r.id()
	loan.CreatedAt, loan.UpdatedAt = now, now
	r.data.loans[loan.ID] = copyLoan(*loan)
	return nil
}

// UpdateLoan overwrites the mutable fields of a loan
func (r *MemoryRepository) UpdateLoan(ctx context.Context, loan *models.Loan) error {
	defer r.writeLock()()
	existing, ok := r.data.loans[loan.ID]
	if !ok {
		return fmt.Errorf("failed to update loan %d: %w", loan.ID, models.ErrNotFound)
	}
	loan.ExternalID = copyString(existing.ExternalID)
	loan.CreatedAt = existing.CreatedAt
	loan.UpdatedAt = time.Now().UTC()
	r.data.loans[loan.ID] = copyLoan(*loan)
	return nil
}

// ListLoans returns all loans ordered by id
func (r *MemoryRepository) ListLoans(ctx context.Context) ([]models.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Loan, 0, len(r.data.loans))
	for _, l := range r.data.loans {
		out = append(out, copyLoan(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FindInvestmentByExternalID retrieves a holding by its external id
func (r *MemoryRepository) FindInvestmentByExternalID(ctx context.Context, externalID string) (*models.Investment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, inv := range r.data.investments {
		if inv.ExternalID != nil && *inv.ExternalID == externalID {
			found := copyInvestment(inv)
			return &found, nil
		}
	}
	return nil, models.ErrNotFound
}

// CreateInvestment stores a new holding
func (r *MemoryRepository) CreateInvestment(ctx context.Context, inv *models.Investment) error {
	defer r.writeLock()()
	if inv.ExternalID != nil {
		for _, existing := range r.data.investments {
			if existing.ExternalID != nil && *existing.ExternalID == *inv.ExternalID {
				return fmt.Errorf("failed to create investment: %w: external id %s", models.ErrConflict, *inv.ExternalID)
			}
		}
	}
	inv.ID = r.id()
	r.data.investments[inv.ID] = copyInvestment(*inv)
	return nil
}

// UpdateInvestment overwrites the valuation fields of a holding
func (r *MemoryRepository) UpdateInvestment(ctx context.Context, inv *models.Investment) error {
	defer r.writeLock()()
	existing, ok := r.data.investments[inv.ID]
	if !ok {
		return fmt.Errorf("failed to update investment %d: %w", inv.ID, models.ErrNotFound)
	}
	inv.ExternalID = copyString(existing.ExternalID)
	r.data.investments[inv.ID] = copyInvestment(*inv)
	return nil
}

// ListInvestments returns holdings dated inside the range
func (r *MemoryRepository) ListInvestments(ctx context.Context, rng models.DateRange) ([]models.Investment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Investment, 0)
	for _, inv := range r.data.investments {
		if rng.Contains(inv.Date) {
			out = append(out, copyInvestment(inv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateSaving stores a new saving entry
func (r *MemoryRepository) CreateSaving(ctx context.Context, s *models.Saving) error {
	defer r.writeLock()()
	s.ID = r.id()
	r.data.savings[s.ID] = *s
	return nil
}

// ListSavings returns saving entries dated inside the range
func (r *MemoryRepository) ListSavings(ctx context.Context, rng models.DateRange) ([]models.Saving, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Saving, 0)
	for _, s := range r.data.savings {
		if rng.Contains(s.Date) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateExpense stores a new expense
func (r *MemoryRepository) CreateExpense(ctx context.Context, e *models.Expense) error {
	defer r.writeLock()()
	e.ID = r.id()
	e.CreatedAt = time.Now().UTC()
	r.data.expenses[e.ID] = *e
	return nil
}

// ListExpenses returns expenses dated inside the range
func (r *MemoryRepository) ListExpenses(ctx context.Context, rng models.DateRange) ([]models.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Expense, 0)
	for _, e := range r.data.expenses {
		if rng.Contains(e.Date) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateTemplate stores a new recurring template
func (r *MemoryRepository) CreateTemplate(ctx context.Context, t *models.RecurringTemplate) error {
	defer r.writeLock()()
	t.ID = r.id()
	r.data.templates[t.ID] = copyTemplate(*t)
	return nil
}

// ListActiveTemplates returns active templates ordered by start date
func (r *MemoryRepository) ListActiveTemplates(ctx context.Context) ([]models.RecurringTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.RecurringTemplate, 0)
	for _, t := range r.data.templates {
		if t.Active {
			out = append(out, copyTemplate(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// MarkTemplateProcessed advances last_processed_date if it still equals prev
func (r *MemoryRepository) MarkTemplateProcessed(ctx context.Context, id int64, prev *time.Time, day time.Time) error {
	defer r.writeLock()()
	t, ok := r.data.templates[id]
	if !ok {
		return fmt.Errorf("failed to mark template %d: %w", id, models.ErrNotFound)
	}
	if !sameDate(t.LastProcessed, prev) {
		return fmt.Errorf("failed to mark template %d: %w", id, models.ErrConflict)
	}
	t.LastProcessed = &day
	r.data.templates[id] = t
	return nil
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// GetProfile retrieves a user profile
func (r *MemoryRepository) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.data.profiles[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

// CreateProfile inserts a profile unless one exists
func (r *MemoryRepository) CreateProfile(ctx context.Context, p *models.Profile) error {
	defer r.writeLock()()
	if _, ok := r.data.profiles[p.UserID]; ok {
		return nil
	}
	p.UpdatedAt = time.Now().UTC()
	r.data.profiles[p.UserID] = *p
	return nil
}

// SaveProfile inserts or replaces a profile
func (r *MemoryRepository) SaveProfile(ctx context.Context, p *models.Profile) error {
	defer r.writeLock()()
	p.UpdatedAt = time.Now().UTC()
	r.data.profiles[p.UserID] = *p
	return nil
}

// CreatePolicy stores a new insurance policy
func (r *MemoryRepository) CreatePolicy(ctx context.Context, p *models.Policy) error {
	defer r.writeLock()()
	if p.Type == "" {
		p.Type = models.PolicyTerm
	}
	p.ID = r.id()
	r.data.policies[p.ID] = *p
	return nil
}

// ListPolicies returns all policies ordered by id
func (r *MemoryRepository) ListPolicies(ctx context.Context) ([]models.Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Policy, 0, len(r.data.policies))
	for _, p := range r.data.policies {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
