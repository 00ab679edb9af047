/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements all persistence interfaces (projection.Store,
  projection.TransactionStore) using SQLite. In production, the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  revenue_streams:  Configured revenue partitions
  mkt_components:   Configured marketing spend partitions
  growth_rates:     Singleton row with the three annual percentages
  base_series:      One row per category x ref x month of prior-year data
  override_series:  One row per SET override slot (unset = no row)
  snapshot_series:  One row per derived category x scenario x month
  snapshot_meta:    Singleton with the snapshot's growth/config copy
  transactions:     The application's raw financial records

MONTH INDEXING:
  Months are stored 1-based (1 = January) and exposed 0-based in the
  in-memory series.

ATOMICITY:
  Every full-replace (config, base, snapshot) runs inside one database
  transaction: a deferred Rollback covers every failure path, Commit is
  the last statement. A failed replace leaves the prior contents intact.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so snapshot readers
  do not block the single writer.

USAGE:
  store, err := sqlite.New("./data/projection.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := projection.NewEngine(store, store, logger)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - projection/store.go: Interface definitions
  - projection/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/plano/projection-engine/projection"
	"github.com/shopspring/decimal"
)

// Series categories as stored in base_series / override_series /
// snapshot_series. Revenue and mkt rows carry the stream/component id in
// ref_id; flat categories leave it empty.
const (
	categoryFixed        = "fixed"
	categoryVariable     = "variable"
	categoryInvestments  = "investments"
	categoryRevenue      = "revenue"
	categoryMkt          = "mkt"
	categoryRevenueTotal = "revenue_total"
	categoryMktTotal     = "mkt_total"
	categoryBudget       = "budget"
	categoryResult       = "result"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Configuration
	CREATE TABLE IF NOT EXISTS revenue_streams (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		display_order INTEGER NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE TABLE IF NOT EXISTS mkt_components (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		display_order INTEGER NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);

	-- Growth rates (singleton; doubles as the base-year updated_at record)
	CREATE TABLE IF NOT EXISTS growth_rates (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		minimo TEXT NOT NULL,
		medio TEXT NOT NULL,
		maximo TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Prior-year monthly figures (month is 1-based)
	CREATE TABLE IF NOT EXISTS base_series (
		category TEXT NOT NULL,
		ref_id TEXT NOT NULL DEFAULT '',
		month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
		value TEXT NOT NULL,
		PRIMARY KEY (category, ref_id, month)
	);

	-- Manual overrides: a row exists only for SET slots
	CREATE TABLE IF NOT EXISTS override_series (
		category TEXT NOT NULL,
		ref_id TEXT NOT NULL DEFAULT '',
		scenario TEXT NOT NULL,
		month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
		value TEXT NOT NULL,
		PRIMARY KEY (category, ref_id, scenario, month)
	);

	-- Derived snapshot series
	CREATE TABLE IF NOT EXISTS snapshot_series (
		category TEXT NOT NULL,
		ref_id TEXT NOT NULL DEFAULT '',
		scenario TEXT NOT NULL,
		month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
		value TEXT NOT NULL,
		PRIMARY KEY (category, ref_id, scenario, month)
	);

	CREATE INDEX IF NOT EXISTS idx_snapshot_series_category
		ON snapshot_series(category, scenario);

	-- Snapshot metadata (growth + config copy at recompute time)
	CREATE TABLE IF NOT EXISTS snapshot_meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		minimo TEXT NOT NULL,
		medio TEXT NOT NULL,
		maximo TEXT NOT NULL,
		config_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Raw financial records (the transaction collaborator)
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		occurred_at TEXT NOT NULL,
		tx_type TEXT NOT NULL,
		category TEXT,
		description TEXT,
		amount TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_occurred_at
		ON transactions(occurred_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CONFIGURATION (projection.Store interface)
// =============================================================================

// GetConfig returns the stored configuration ordered for display.
func (s *Store) GetConfig(ctx context.Context) (projection.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cfg projection.Config

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, display_order, active FROM revenue_streams ORDER BY display_order, id")
	if err != nil {
		return cfg, fmt.Errorf("failed to query revenue streams: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var stream projection.RevenueStream
		if err := rows.Scan(&stream.ID, &stream.Name, &stream.DisplayOrder, &stream.Active); err != nil {
			return cfg, err
		}
		cfg.RevenueStreams = append(cfg.RevenueStreams, stream)
	}
	if err := rows.Err(); err != nil {
		return cfg, err
	}

	crows, err := s.db.QueryContext(ctx,
		"SELECT id, name, display_order, active FROM mkt_components ORDER BY display_order, id")
	if err != nil {
		return cfg, fmt.Errorf("failed to query mkt components: %w", err)
	}
	defer crows.Close()
	for crows.Next() {
		var component projection.MktComponent
		if err := crows.Scan(&component.ID, &component.Name, &component.DisplayOrder, &component.Active); err != nil {
			return cfg, err
		}
		cfg.MktComponents = append(cfg.MktComponents, component)
	}
	return cfg, crows.Err()
}

// ReplaceConfig deletes all existing entries and inserts the supplied
// ones inside one transaction. Entries without an id are silently
// skipped. A failure leaves the prior configuration intact.
func (s *Store) ReplaceConfig(ctx context.Context, cfg projection.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM revenue_streams"); err != nil {
		return fmt.Errorf("%w: %v", projection.ErrReplaceFailed, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM mkt_components"); err != nil {
		return fmt.Errorf("%w: %v", projection.ErrReplaceFailed, err)
	}

	for _, stream := range cfg.RevenueStreams {
		if stream.ID == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO revenue_streams (id, name, display_order, active) VALUES (?, ?, ?, ?)",
			stream.ID, stream.Name, stream.DisplayOrder, stream.Active,
		); err != nil {
			return fmt.Errorf("%w: %v", projection.ErrReplaceFailed, err)
		}
	}
	for _, component := range cfg.MktComponents {
		if component.ID == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO mkt_components (id, name, display_order, active) VALUES (?, ?, ?, ?)",
			component.ID, component.Name, component.DisplayOrder, component.Active,
		); err != nil {
			return fmt.Errorf("%w: %v", projection.ErrReplaceFailed, err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// BASE YEAR (projection.Store interface)
// =============================================================================

// GetBase returns growth, prior-year series, and manual overrides. A
// never-written base comes back zero-valued, not as an error.
func (s *Store) GetBase(ctx context.Context) (projection.BaseYear, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	base := projection.BaseYear{}
	base.Normalize()

	var minimo, medio, maximo, updatedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT minimo, medio, maximo, updated_at FROM growth_rates WHERE id = 1",
	).Scan(&minimo, &medio, &maximo, &updatedAt)
	switch {
	case err == sql.ErrNoRows:
		// Nothing persisted yet.
	case err != nil:
		return base, fmt.Errorf("failed to query growth rates: %w", err)
	default:
		base.Growth = projection.GrowthRates{
			Minimo: mustDecimal(minimo),
			Medio:  mustDecimal(medio),
			Maximo: mustDecimal(maximo),
		}
		base.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	}

	if err := s.loadBaseSeries(ctx, &base); err != nil {
		return base, err
	}
	if err := s.loadOverrides(ctx, &base); err != nil {
		return base, err
	}
	return base, nil
}

func (s *Store) loadBaseSeries(ctx context.Context, base *projection.BaseYear) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT category, ref_id, month, value FROM base_series")
	if err != nil {
		return fmt.Errorf("failed to query base series: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category, refID, value string
		var month int
		if err := rows.Scan(&category, &refID, &month, &value); err != nil {
			return err
		}
		if month < 1 || month > projection.MonthsPerYear {
			continue
		}
		v := mustDecimal(value)
		switch category {
		case categoryFixed:
			base.PrevYear.FixedExpenses[month-1] = v
		case categoryVariable:
			base.PrevYear.VariableExpenses[month-1] = v
		case categoryInvestments:
			base.PrevYear.Investments[month-1] = v
		case categoryRevenue:
			series := base.PrevYear.RevenueStreams[refID]
			series[month-1] = v
			base.PrevYear.RevenueStreams[refID] = series
		case categoryMkt:
			series := base.PrevYear.MktComponents[refID]
			series[month-1] = v
			base.PrevYear.MktComponents[refID] = series
		}
	}
	return rows.Err()
}

func (s *Store) loadOverrides(ctx context.Context, base *projection.BaseYear) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT category, ref_id, scenario, month, value FROM override_series")
	if err != nil {
		return fmt.Errorf("failed to query overrides: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category, refID, scenario, value string
		var month int
		if err := rows.Scan(&category, &refID, &scenario, &month, &value); err != nil {
			return err
		}
		if month < 1 || month > projection.MonthsPerYear {
			continue
		}
		sc := projection.Scenario(scenario)
		if !projection.ValidScenario(sc) {
			continue
		}
		v := decimal.NewNullDecimal(mustDecimal(value))
		switch category {
		case categoryFixed:
			setOverride(&base.Overrides.FixedExpenses, sc, month-1, v)
		case categoryVariable:
			setOverride(&base.Overrides.VariableExpenses, sc, month-1, v)
		case categoryInvestments:
			setOverride(&base.Overrides.Investments, sc, month-1, v)
		case categoryMkt:
			setOverride(&base.Overrides.Mkt, sc, month-1, v)
		case categoryRevenue:
			ov := base.Overrides.Revenue[refID]
			setOverride(&ov, sc, month-1, v)
			base.Overrides.Revenue[refID] = ov
		}
	}
	return rows.Err()
}

func setOverride(ov *projection.ScenarioOverrides, sc projection.Scenario, month int, v decimal.NullDecimal) {
	switch sc {
	case projection.ScenarioMedio:
		ov.Medio[month] = v
	case projection.ScenarioMaximo:
		ov.Maximo[month] = v
	default:
		ov.Previsto[month] = v
	}
}

// ReplaceBase atomically full-replaces growth, every prior-year series,
// and every override series. Series for ids absent from the current
// configuration are written regardless (orphaned, retained for later
// reactivation). Anything omitted from base is deleted, not merged.
func (s *Store) ReplaceBase(ctx context.Context, base projection.BaseYear) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	base.Normalize()
	if base.UpdatedAt.IsZero() {
		base.UpdatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"growth_rates", "base_series", "override_series"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("%w: %v", projection.ErrReplaceFailed, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO growth_rates (id, minimo, medio, maximo, updated_at) VALUES (1, ?, ?, ?, ?)",
		base.Growth.Minimo.String(), base.Growth.Medio.String(), base.Growth.Maximo.String(),
		base.UpdatedAt.Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("%w: %v", projection.ErrReplaceFailed, err)
	}

	if err := insertSeries(ctx, tx, categoryFixed, "", base.PrevYear.FixedExpenses); err != nil {
		return err
	}
	if err := insertSeries(ctx, tx, categoryVariable, "", base.PrevYear.VariableExpenses); err != nil {
		return err
	}
	if err := insertSeries(ctx, tx, categoryInvestments, "", base.PrevYear.Investments); err != nil {
		return err
	}
	for id, series := range base.PrevYear.RevenueStreams {
		if err := insertSeries(ctx, tx, categoryRevenue, id, series); err != nil {
			return err
		}
	}
	for id, series := range base.PrevYear.MktComponents {
		if err := insertSeries(ctx, tx, categoryMkt, id, series); err != nil {
			return err
		}
	}

	if err := insertOverrides(ctx, tx, categoryFixed, "", base.Overrides.FixedExpenses); err != nil {
		return err
	}
	if err := insertOverrides(ctx, tx, categoryVariable, "", base.Overrides.VariableExpenses); err != nil {
		return err
	}
	if err := insertOverrides(ctx, tx, categoryInvestments, "", base.Overrides.Investments); err != nil {
		return err
	}
	if err := insertOverrides(ctx, tx, categoryMkt, "", base.Overrides.Mkt); err != nil {
		return err
	}
	for id, ov := range base.Overrides.Revenue {
		if err := insertOverrides(ctx, tx, categoryRevenue, id, ov); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertSeries(ctx context.Context, tx *sql.Tx, category, refID string, series projection.MonthlySeries) error {
	query := "INSERT INTO base_series (category, ref_id, month, value) VALUES (?, ?, ?, ?)"
	for i, v := range series {
		if _, err := tx.ExecContext(ctx, query, category, refID, i+1, v.String()); err != nil {
			return fmt.Errorf("%w: %v", projection.ErrReplaceFailed, err)
		}
	}
	return nil
}

func insertOverrides(ctx context.Context, tx *sql.Tx, category, refID string, ov projection.ScenarioOverrides) error {
	query := "INSERT INTO override_series (category, ref_id, scenario, month, value) VALUES (?, ?, ?, ?, ?)"
	for _, sc := range projection.Scenarios {
		series := ov.For(sc)
		for i, v := range series {
			if !v.Valid {
				continue // unset slots are stored as absence
			}
			if _, err := tx.ExecContext(ctx, query, category, refID, string(sc), i+1, v.Decimal.String()); err != nil {
				return fmt.Errorf("%w: %v", projection.ErrReplaceFailed, err)
			}
		}
	}
	return nil
}

// =============================================================================
// SNAPSHOT (projection.Store interface)
// =============================================================================

// GetSnapshot returns the last persisted snapshot, or
// projection.ErrSnapshotNotFound when none has been written yet.
func (s *Store) GetSnapshot(ctx context.Context) (*projection.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var minimo, medio, maximo, configJSON, updatedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT minimo, medio, maximo, config_json, updated_at FROM snapshot_meta WHERE id = 1",
	).Scan(&minimo, &medio, &maximo, &configJSON, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, projection.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot meta: %w", err)
	}

	snap := projection.Snapshot{
		Growth: projection.GrowthRates{
			Minimo: mustDecimal(minimo),
			Medio:  mustDecimal(medio),
			Maximo: mustDecimal(maximo),
		},
		Revenue: make(map[string]projection.ScenarioSeries),
		Mkt:     make(map[string]projection.ScenarioSeries),
	}
	snap.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	if err := json.Unmarshal([]byte(configJSON), &snap.Config); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot config: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT category, ref_id, scenario, month, value FROM snapshot_series")
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot series: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category, refID, scenario, value string
		var month int
		if err := rows.Scan(&category, &refID, &scenario, &month, &value); err != nil {
			return nil, err
		}
		if month < 1 || month > projection.MonthsPerYear {
			continue
		}
		sc := projection.Scenario(scenario)
		if !projection.ValidScenario(sc) {
			continue
		}
		v := mustDecimal(value)

		switch category {
		case categoryFixed:
			setScenarioValue(&snap.FixedExpenses, sc, month-1, v)
		case categoryVariable:
			setScenarioValue(&snap.VariableExpenses, sc, month-1, v)
		case categoryInvestments:
			setScenarioValue(&snap.Investments, sc, month-1, v)
		case categoryRevenueTotal:
			setScenarioValue(&snap.RevenueTotal, sc, month-1, v)
		case categoryMktTotal:
			setScenarioValue(&snap.MktTotal, sc, month-1, v)
		case categoryBudget:
			setScenarioValue(&snap.Budget, sc, month-1, v)
		case categoryResult:
			setScenarioValue(&snap.Result, sc, month-1, v)
		case categoryRevenue:
			series := snap.Revenue[refID]
			setScenarioValue(&series, sc, month-1, v)
			snap.Revenue[refID] = series
		case categoryMkt:
			series := snap.Mkt[refID]
			setScenarioValue(&series, sc, month-1, v)
			snap.Mkt[refID] = series
		}
	}
	return &snap, rows.Err()
}

func setScenarioValue(ss *projection.ScenarioSeries, sc projection.Scenario, month int, v decimal.Decimal) {
	switch sc {
	case projection.ScenarioMedio:
		ss.Medio[month] = v
	case projection.ScenarioMaximo:
		ss.Maximo[month] = v
	default:
		ss.Previsto[month] = v
	}
}

// SaveSnapshot atomically replaces the persisted snapshot. A failure
// during the write leaves the previous snapshot untouched.
func (s *Store) SaveSnapshot(ctx context.Context, snap projection.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"snapshot_series", "snapshot_meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("%w: %v", projection.ErrReplaceFailed, err)
		}
	}

	configJSON, err := json.Marshal(snap.Config)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot config: %w", err)
	}
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now().UTC()
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO snapshot_meta (id, minimo, medio, maximo, config_json, updated_at) VALUES (1, ?, ?, ?, ?, ?)",
		snap.Growth.Minimo.String(), snap.Growth.Medio.String(), snap.Growth.Maximo.String(),
		string(configJSON), snap.UpdatedAt.Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("%w: %v", projection.ErrReplaceFailed, err)
	}

	write := func(category, refID string, ss projection.ScenarioSeries) error {
		query := "INSERT INTO snapshot_series (category, ref_id, scenario, month, value) VALUES (?, ?, ?, ?, ?)"
		for _, sc := range projection.Scenarios {
			series := ss.For(sc)
			for i, v := range series {
				if _, err := tx.ExecContext(ctx, query, category, refID, string(sc), i+1, v.String()); err != nil {
					return fmt.Errorf("%w: %v", projection.ErrReplaceFailed, err)
				}
			}
		}
		return nil
	}

	if err := write(categoryFixed, "", snap.FixedExpenses); err != nil {
		return err
	}
	if err := write(categoryVariable, "", snap.VariableExpenses); err != nil {
		return err
	}
	if err := write(categoryInvestments, "", snap.Investments); err != nil {
		return err
	}
	if err := write(categoryRevenueTotal, "", snap.RevenueTotal); err != nil {
		return err
	}
	if err := write(categoryMktTotal, "", snap.MktTotal); err != nil {
		return err
	}
	if err := write(categoryBudget, "", snap.Budget); err != nil {
		return err
	}
	if err := write(categoryResult, "", snap.Result); err != nil {
		return err
	}
	for id, ss := range snap.Revenue {
		if err := write(categoryRevenue, id, ss); err != nil {
			return err
		}
	}
	for id, ss := range snap.Mkt {
		if err := write(categoryMkt, id, ss); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// =============================================================================
// TRANSACTIONS (projection.TransactionStore interface)
// =============================================================================

// SaveTransaction upserts a raw financial record.
func (s *Store) SaveTransaction(ctx context.Context, txn projection.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO transactions (id, occurred_at, tx_type, category, description, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			occurred_at = excluded.occurred_at,
			tx_type = excluded.tx_type,
			category = excluded.category,
			description = excluded.description,
			amount = excluded.amount
	`

	_, err := s.db.ExecContext(ctx, query,
		txn.ID,
		txn.OccurredAt.Format(time.RFC3339),
		txn.Type,
		txn.Category,
		txn.Description,
		txn.Amount.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

// ListTransactionsByYear returns the records dated in the given year,
// oldest first.
func (s *Store) ListTransactionsByYear(ctx context.Context, year int) ([]projection.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, occurred_at, tx_type, category, description, amount
		FROM transactions
		WHERE occurred_at >= ? AND occurred_at < ?
		ORDER BY occurred_at ASC
	`
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	return s.queryTransactions(ctx, query,
		start.Format(time.RFC3339), end.Format(time.RFC3339))
}

// ListTransactions returns up to limit records, newest first.
func (s *Store) ListTransactions(ctx context.Context, limit int) ([]projection.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, occurred_at, tx_type, category, description, amount
		FROM transactions
		ORDER BY occurred_at DESC
		LIMIT ?
	`
	return s.queryTransactions(ctx, query, limit)
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]projection.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []projection.Transaction
	for rows.Next() {
		var txn projection.Transaction
		var occurredAt, amount string
		var category, description sql.NullString
		if err := rows.Scan(&txn.ID, &occurredAt, &txn.Type, &category, &description, &amount); err != nil {
			return nil, err
		}
		txn.OccurredAt, _ = time.Parse(time.RFC3339, occurredAt)
		txn.Category = category.String
		txn.Description = description.String
		txn.Amount = mustDecimal(amount)
		txs = append(txs, txn)
	}
	return txs, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"revenue_streams", "mkt_components", "growth_rates",
		"base_series", "override_series", "snapshot_series", "snapshot_meta",
		"transactions",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
