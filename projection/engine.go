/*
engine.go - The scenario access API

PURPOSE:
  Engine is the read/write surface the rest of the application uses. It
  owns the invalidate-and-recompute discipline: every mutating call
  (ReplaceConfig, ReplaceBase, RebuildBaseFromTransactions) concludes by
  synchronously recomputing and persisting the snapshot, so the snapshot
  and its inputs cannot diverge. There is no low-level write path that
  skips recomputation.

CONCURRENCY:
  A per-Engine mutex serializes mutating operations (single-writer
  contract at the boundary). Snapshot reads go straight to the store and
  never block behind a recompute. No operation is cancellable mid-flight
  beyond what the store's context handling provides.

READ PATHS:
  Per-category readers serve the last persisted snapshot and never
  recompute. When no snapshot exists yet they return zero-valued data,
  not an error.

SEE ALSO:
  - calc.go: The pure derivation the engine persists
  - aggregate.go: Transaction-history rebuild
  - store.go: Persistence contracts
*/
package projection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Engine orchestrates the projection stores and calculator.
type Engine struct {
	store      Store
	txs        TransactionSource
	classifier Classifier
	logger     *zap.Logger

	mu sync.Mutex // serializes mutating operations

	now func() time.Time
}

// NewEngine creates an engine over the given store and transaction
// source. A nil logger falls back to a no-op logger and a nil classifier
// to the keyword policy.
func NewEngine(store Store, txs TransactionSource, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:      store,
		txs:        txs,
		classifier: KeywordClassifier{},
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetClassifier swaps the classification policy used by rebuilds.
func (e *Engine) SetClassifier(c Classifier) {
	if c != nil {
		e.classifier = c
	}
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// GetConfig returns the stored configuration.
func (e *Engine) GetConfig(ctx context.Context) (Config, error) {
	return e.store.GetConfig(ctx)
}

// ReplaceConfig atomically replaces the configuration wholesale (entries
// omitted from cfg are deleted) and recomputes the snapshot. Entries
// without an id are silently skipped.
func (e *Engine) ReplaceConfig(ctx context.Context, cfg Config) (Config, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg = dropUnidentified(cfg)
	if err := e.store.ReplaceConfig(ctx, cfg); err != nil {
		return Config{}, fmt.Errorf("replace config: %w", err)
	}
	e.logger.Info("configuration replaced",
		zap.Int("streams", len(cfg.RevenueStreams)),
		zap.Int("components", len(cfg.MktComponents)))

	if _, err := e.recomputeLocked(ctx); err != nil {
		return Config{}, err
	}
	return e.store.GetConfig(ctx)
}

func dropUnidentified(cfg Config) Config {
	out := Config{}
	for _, s := range cfg.RevenueStreams {
		if s.ID != "" {
			out.RevenueStreams = append(out.RevenueStreams, s)
		}
	}
	for _, m := range cfg.MktComponents {
		if m.ID != "" {
			out.MktComponents = append(out.MktComponents, m)
		}
	}
	return out
}

// =============================================================================
// BASE YEAR
// =============================================================================

// GetBase returns growth, prior-year data, overrides, and the time of the
// last base write.
func (e *Engine) GetBase(ctx context.Context) (BaseYear, error) {
	base, err := e.store.GetBase(ctx)
	if err != nil {
		return BaseYear{}, err
	}
	base.Normalize()
	return base, nil
}

// ReplaceBase normalizes the supplied state to the canonical shape, then
// atomically full-replaces growth, every series, and every override
// series, and recomputes the snapshot. Anything omitted from next is
// deleted, not merged.
func (e *Engine) ReplaceBase(ctx context.Context, next BaseYear) (BaseYear, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.replaceBaseLocked(ctx, next); err != nil {
		return BaseYear{}, err
	}
	if _, err := e.recomputeLocked(ctx); err != nil {
		return BaseYear{}, err
	}
	return e.store.GetBase(ctx)
}

func (e *Engine) replaceBaseLocked(ctx context.Context, next BaseYear) (BaseYear, error) {
	next.Normalize()
	next.UpdatedAt = e.now()
	if err := e.store.ReplaceBase(ctx, next); err != nil {
		return BaseYear{}, fmt.Errorf("replace base: %w", err)
	}
	e.logger.Info("base year replaced",
		zap.Int("streams", len(next.PrevYear.RevenueStreams)),
		zap.Int("components", len(next.PrevYear.MktComponents)))
	return next, nil
}

// =============================================================================
// RECOMPUTE & SNAPSHOT
// =============================================================================

// Recompute derives a fresh snapshot from the current configuration and
// base year and persists it atomically.
func (e *Engine) Recompute(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recomputeLocked(ctx)
}

// SyncProjectionData recomputes and returns the fresh snapshot.
func (e *Engine) SyncProjectionData(ctx context.Context) (Snapshot, error) {
	return e.Recompute(ctx)
}

func (e *Engine) recomputeLocked(ctx context.Context) (Snapshot, error) {
	cfg, err := e.store.GetConfig(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load config: %w", err)
	}
	base, err := e.store.GetBase(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load base: %w", err)
	}

	snap := Compute(cfg, base)
	snap.UpdatedAt = e.now()

	if err := e.store.SaveSnapshot(ctx, snap); err != nil {
		return Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	e.logger.Debug("snapshot recomputed", zap.Time("updated_at", snap.UpdatedAt))
	return snap, nil
}

// GetProjectionSnapshot returns the cached snapshot without recomputing.
// When none has been persisted yet the zero-valued snapshot is returned.
func (e *Engine) GetProjectionSnapshot(ctx context.Context) (Snapshot, error) {
	snap, err := e.store.GetSnapshot(ctx)
	if err != nil {
		if IsNotFound(err) {
			return emptySnapshot(), nil
		}
		return Snapshot{}, err
	}
	if snap == nil {
		return emptySnapshot(), nil
	}
	return *snap, nil
}

func emptySnapshot() Snapshot {
	return Snapshot{
		Revenue: make(map[string]ScenarioSeries),
		Mkt:     make(map[string]ScenarioSeries),
	}
}

// =============================================================================
// TRANSACTION REBUILD
// =============================================================================

// RebuildBaseFromTransactions reclassifies the collaborator's transaction
// history for the target year into the base-year buckets, merges them
// into the current base (replacing only the touched series), persists the
// base, and recomputes. year <= 0 defaults to the last calendar year.
func (e *Engine) RebuildBaseFromTransactions(ctx context.Context, year int) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if year <= 0 {
		year = LastCalendarYear(e.now())
	}

	cfg, err := e.store.GetConfig(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load config: %w", err)
	}
	base, err := e.store.GetBase(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load base: %w", err)
	}
	txs, err := e.txs.ListTransactionsByYear(ctx, year)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load transactions: %w", err)
	}

	base.Normalize()
	base.PrevYear = AggregateYear(cfg, base.PrevYear, txs, year, e.classifier)

	if _, err := e.replaceBaseLocked(ctx, base); err != nil {
		return Snapshot{}, err
	}
	e.logger.Info("base year rebuilt from transactions",
		zap.Int("year", year),
		zap.Int("transactions", len(txs)))

	return e.recomputeLocked(ctx)
}

// =============================================================================
// PER-CATEGORY READERS - Served from the cached snapshot, never recompute
// =============================================================================

// CategoryData is the read shape of one derived category.
type CategoryData struct {
	Previsto  MonthlySeries
	Medio     MonthlySeries
	Maximo    MonthlySeries
	UpdatedAt time.Time
}

// DetailData is the read shape of a category with per-id detail.
type DetailData struct {
	Detail    map[string]ScenarioSeries
	Total     ScenarioSeries
	UpdatedAt time.Time
}

func categoryData(series ScenarioSeries, at time.Time) CategoryData {
	return CategoryData{
		Previsto:  series.Previsto,
		Medio:     series.Medio,
		Maximo:    series.Maximo,
		UpdatedAt: at,
	}
}

// GetFixedExpensesData returns the fixed-expense scenario series.
func (e *Engine) GetFixedExpensesData(ctx context.Context) (CategoryData, error) {
	snap, err := e.GetProjectionSnapshot(ctx)
	if err != nil {
		return CategoryData{}, err
	}
	return categoryData(snap.FixedExpenses, snap.UpdatedAt), nil
}

// GetVariableExpensesData returns the variable-expense scenario series.
func (e *Engine) GetVariableExpensesData(ctx context.Context) (CategoryData, error) {
	snap, err := e.GetProjectionSnapshot(ctx)
	if err != nil {
		return CategoryData{}, err
	}
	return categoryData(snap.VariableExpenses, snap.UpdatedAt), nil
}

// GetInvestmentsData returns the investments scenario series.
func (e *Engine) GetInvestmentsData(ctx context.Context) (CategoryData, error) {
	snap, err := e.GetProjectionSnapshot(ctx)
	if err != nil {
		return CategoryData{}, err
	}
	return categoryData(snap.Investments, snap.UpdatedAt), nil
}

// GetRevenueData returns per-stream detail and the active-only totals.
func (e *Engine) GetRevenueData(ctx context.Context) (DetailData, error) {
	snap, err := e.GetProjectionSnapshot(ctx)
	if err != nil {
		return DetailData{}, err
	}
	return DetailData{Detail: snap.Revenue, Total: snap.RevenueTotal, UpdatedAt: snap.UpdatedAt}, nil
}

// GetMktComponentsData returns per-component detail and the totals.
func (e *Engine) GetMktComponentsData(ctx context.Context) (DetailData, error) {
	snap, err := e.GetProjectionSnapshot(ctx)
	if err != nil {
		return DetailData{}, err
	}
	return DetailData{Detail: snap.Mkt, Total: snap.MktTotal, UpdatedAt: snap.UpdatedAt}, nil
}

// GetBudgetData returns the budget scenario series.
func (e *Engine) GetBudgetData(ctx context.Context) (CategoryData, error) {
	snap, err := e.GetProjectionSnapshot(ctx)
	if err != nil {
		return CategoryData{}, err
	}
	return categoryData(snap.Budget, snap.UpdatedAt), nil
}

// GetResultadoData returns the net-result scenario series.
func (e *Engine) GetResultadoData(ctx context.Context) (CategoryData, error) {
	snap, err := e.GetProjectionSnapshot(ctx)
	if err != nil {
		return CategoryData{}, err
	}
	return categoryData(snap.Result, snap.UpdatedAt), nil
}
