// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/plano/projection-engine/projection"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements projection.Store and projection.TransactionStore with
// plain maps. Replace operations are atomic by construction: state is
// swapped wholesale under the lock.
type Memory struct {
	mu           sync.RWMutex
	config       projection.Config
	base         projection.BaseYear
	snapshot     *projection.Snapshot
	transactions []projection.Transaction
}

func NewMemory() *Memory {
	return &Memory{}
}

// GetConfig returns a copy of the stored configuration.
func (m *Memory) GetConfig(_ context.Context) (projection.Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyConfig(m.config), nil
}

// ReplaceConfig swaps the configuration wholesale. Entries without an id
// are skipped, matching the persisted store's write behavior.
func (m *Memory) ReplaceConfig(_ context.Context, cfg projection.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := projection.Config{}
	for _, s := range cfg.RevenueStreams {
		if s.ID != "" {
			next.RevenueStreams = append(next.RevenueStreams, s)
		}
	}
	for _, c := range cfg.MktComponents {
		if c.ID != "" {
			next.MktComponents = append(next.MktComponents, c)
		}
	}
	m.config = next
	return nil
}

// GetBase returns a copy of the stored base year.
func (m *Memory) GetBase(_ context.Context) (projection.BaseYear, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyBase(m.base), nil
}

// ReplaceBase swaps the base year wholesale.
func (m *Memory) ReplaceBase(_ context.Context, base projection.BaseYear) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.base = copyBase(base)
	return nil
}

// GetSnapshot returns the last saved snapshot.
func (m *Memory) GetSnapshot(_ context.Context) (*projection.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snapshot == nil {
		return nil, projection.ErrSnapshotNotFound
	}
	snap := copySnapshot(*m.snapshot)
	return &snap, nil
}

// SaveSnapshot swaps the snapshot wholesale.
func (m *Memory) SaveSnapshot(_ context.Context, snap projection.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := copySnapshot(snap)
	m.snapshot = &copied
	return nil
}

// SaveTransaction appends (or replaces by id) a transaction record.
func (m *Memory) SaveTransaction(_ context.Context, tx projection.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.transactions {
		if existing.ID == tx.ID && tx.ID != "" {
			m.transactions[i] = tx
			return nil
		}
	}
	m.transactions = append(m.transactions, tx)
	return nil
}

// ListTransactionsByYear returns the records dated in the given year.
func (m *Memory) ListTransactionsByYear(_ context.Context, year int) ([]projection.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []projection.Transaction
	for _, tx := range m.transactions {
		if tx.OccurredAt.Year() == year {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

// ListTransactions returns up to limit records, newest first.
func (m *Memory) ListTransactions(_ context.Context, limit int) ([]projection.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]projection.Transaction, len(m.transactions))
	copy(out, m.transactions)
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// =============================================================================
// COPY HELPERS - Callers must never alias internal state
// =============================================================================

func copyConfig(cfg projection.Config) projection.Config {
	out := projection.Config{}
	out.RevenueStreams = append(out.RevenueStreams, cfg.RevenueStreams...)
	out.MktComponents = append(out.MktComponents, cfg.MktComponents...)
	return out
}

func copyBase(base projection.BaseYear) projection.BaseYear {
	base.Normalize()
	out := base
	out.PrevYear.RevenueStreams = copySeriesMap(base.PrevYear.RevenueStreams)
	out.PrevYear.MktComponents = copySeriesMap(base.PrevYear.MktComponents)
	out.Overrides.Revenue = make(map[string]projection.ScenarioOverrides, len(base.Overrides.Revenue))
	for id, ov := range base.Overrides.Revenue {
		out.Overrides.Revenue[id] = ov
	}
	return out
}

func copySnapshot(snap projection.Snapshot) projection.Snapshot {
	out := snap
	out.Config = copyConfig(snap.Config)
	out.Revenue = copyScenarioMap(snap.Revenue)
	out.Mkt = copyScenarioMap(snap.Mkt)
	return out
}

func copySeriesMap(in map[string]projection.MonthlySeries) map[string]projection.MonthlySeries {
	out := make(map[string]projection.MonthlySeries, len(in))
	for id, series := range in {
		out[id] = series
	}
	return out
}

func copyScenarioMap(in map[string]projection.ScenarioSeries) map[string]projection.ScenarioSeries {
	out := make(map[string]projection.ScenarioSeries, len(in))
	for id, series := range in {
		out[id] = series
	}
	return out
}
