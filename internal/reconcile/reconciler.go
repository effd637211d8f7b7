package reconcile

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/fintrack/internal/interfaces"
	"github.com/Dan9191/fintrack/internal/models"
	"github.com/Dan9191/fintrack/internal/utils"
)

var errNotConfigured = errors.New("source not configured")

// Result gathers the outcome of one full reconciliation cycle
type Result struct {
	Loans       models.SourceStatus
	Benchmarks  models.SourceStatus
	Holdings    models.SourceStatus
	MarketLoans *models.LoanBenchmarks
}

// Degraded reports whether any pass fell back to previously stored data
func (r Result) Degraded() bool {
	return !r.Loans.Fresh || !r.Benchmarks.Fresh || !r.Holdings.Fresh
}

// Reconciler syncs the bureau and brokerage feeds into the store.
// Any source may be nil, in which case its pass reports stale data.
type Reconciler struct {
	store      interfaces.Store
	loans      interfaces.LoanSource
	holdings   interfaces.HoldingSource
	benchmarks interfaces.BenchmarkProvider
	timeout    time.Duration
	log        *logrus.Logger
	now        utils.Clock
}

// NewReconciler initializes a new reconciler
func NewReconciler(store interfaces.Store, loans interfaces.LoanSource, holdings interfaces.HoldingSource,
	benchmarks interfaces.BenchmarkProvider, timeout time.Duration, log *logrus.Logger, now utils.Clock) *Reconciler {
	if now == nil {
		now = time.Now
	}
	return &Reconciler{
		store:      store,
		loans:      loans,
		holdings:   holdings,
		benchmarks: benchmarks,
		timeout:    timeout,
		log:        log,
		now:        now,
	}
}

// SyncAll runs the loan chain (trades then benchmark rates) and the holdings pass concurrently
func (r *Reconciler) SyncAll(ctx context.Context) Result {
	var (
		res Result
		wg  sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		res.Loans = r.SyncLoans(ctx)
		res.Benchmarks, res.MarketLoans = r.UpdateBenchmarkRates(ctx)
	}()
	go func() {
		defer wg.Done()
		res.Holdings = r.SyncHoldings(ctx)
	}()
	wg.Wait()
	return res
}

// SyncLoans creates loans for bureau trades not yet in the store
func (r *Reconciler) SyncLoans(ctx context.Context) models.SourceStatus {
	if r.loans == nil {
		return r.failed("loans", errNotConfigured)
	}
	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	trades, err := r.loans.FetchTrades(fetchCtx)
	if err != nil {
		return r.failed("loans", err)
	}
	status, err := Upsert(ctx, LoanBinding(r.store), trades, r.log)
	if err != nil {
		return r.partial(status, err)
	}
	r.log.Infof("Loan sync: %d seen, %d created, %d skipped", status.Seen, status.Created, status.Skipped)
	return status
}

// UpdateBenchmarkRates moves benchmark-linked loans to the current market rate
func (r *Reconciler) UpdateBenchmarkRates(ctx context.Context) (models.SourceStatus, *models.LoanBenchmarks) {
	if r.benchmarks == nil {
		return r.failed("benchmarks", errNotConfigured), nil
	}
	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	bench, err := r.benchmarks.LoanBenchmarks(fetchCtx)
	if err != nil {
		return r.failed("benchmarks", err), nil
	}
	status, err := applyBenchmarkRates(ctx, r.store, bench)
	if err != nil {
		return r.partial(status, err), bench
	}
	if status.Updated > 0 {
		r.log.Infof("Benchmark rates applied to %d loans", status.Updated)
	}
	return status, bench
}

// SyncHoldings creates and revalues brokerage positions
func (r *Reconciler) SyncHoldings(ctx context.Context) models.SourceStatus {
	if r.holdings == nil {
		return r.failed("holdings", errNotConfigured)
	}
	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	holdings, err := r.holdings.FetchHoldings(fetchCtx)
	if err != nil {
		return r.failed("holdings", err)
	}
	status, err := Upsert(ctx, HoldingBinding(r.store, r.now), holdings, r.log)
	if err != nil {
		return r.partial(status, err)
	}
	r.log.Infof("Holding sync: %d seen, %d created, %d updated, %d skipped",
		status.Seen, status.Created, status.Updated, status.Skipped)
	return status
}

func (r *Reconciler) failed(source string, err error) models.SourceStatus {
	if errors.Is(err, errNotConfigured) {
		r.log.Debugf("%s sync skipped: %v", source, err)
	} else {
		r.log.Warnf("%s sync failed, keeping stored data: %v", source, err)
	}
	return models.SourceStatus{Source: source, Error: err.Error()}
}

func (r *Reconciler) partial(status models.SourceStatus, err error) models.SourceStatus {
	r.log.Errorf("%s sync aborted: %v", status.Source, err)
	status.Fresh = false
	status.Error = err.Error()
	return status
}
