package projection_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plano/projection-engine/projection"
	"github.com/plano/projection-engine/projection/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestEngine(t *testing.T) (*projection.Engine, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	engine := projection.NewEngine(mem, mem, nil)
	return engine, mem
}

func seedEngine(t *testing.T, engine *projection.Engine) {
	t.Helper()
	ctx := context.Background()

	_, err := engine.ReplaceConfig(ctx, twoStreamConfig())
	require.NoError(t, err)

	_, err = engine.ReplaceBase(ctx, projection.BaseYear{
		Growth: growth(10, 20, 50),
		PrevYear: projection.BaseYearData{
			FixedExpenses: flatSeries(1000),
			RevenueStreams: map[string]projection.MonthlySeries{
				"vendas": flatSeries(100),
			},
		},
	})
	require.NoError(t, err)
}

// =============================================================================
// MUTATE-THEN-READ - Snapshot freshness
// =============================================================================

func TestEngine_ReplaceBase_RecomputesSnapshot(t *testing.T) {
	// GIVEN: A seeded engine
	// WHEN: Reading the snapshot right after ReplaceBase
	// THEN: The snapshot already reflects the new base, with no explicit
	//       sync call in between

	engine, _ := newTestEngine(t)
	seedEngine(t, engine)

	snap, err := engine.GetProjectionSnapshot(context.Background())
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(1100).Equal(snap.FixedExpenses.Previsto[0]))
	assert.True(t, decimal.NewFromInt(110).Equal(snap.RevenueTotal.Previsto[0]))
	assert.False(t, snap.UpdatedAt.IsZero())
}

func TestEngine_ReplaceConfig_RecomputesSnapshot(t *testing.T) {
	// GIVEN: A seeded engine whose snapshot includes the vendas stream
	// WHEN: Replacing the config with a version where vendas is inactive
	// THEN: The snapshot totals drop the stream immediately

	engine, _ := newTestEngine(t)
	seedEngine(t, engine)

	cfg := twoStreamConfig()
	cfg.RevenueStreams[0].Active = false
	_, err := engine.ReplaceConfig(context.Background(), cfg)
	require.NoError(t, err)

	snap, err := engine.GetProjectionSnapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.RevenueTotal.Previsto.IsZero(),
		"deactivated stream leaves nothing in the total")
	assert.NotContains(t, snap.Revenue, "vendas")
}

func TestEngine_ReplaceConfig_SkipsEntriesWithoutID(t *testing.T) {
	// GIVEN: A config payload with one valid and one id-less stream
	// WHEN: Replacing
	// THEN: The id-less entry is dropped, the rest stored

	engine, _ := newTestEngine(t)

	got, err := engine.ReplaceConfig(context.Background(), projection.Config{
		RevenueStreams: []projection.RevenueStream{
			{ID: "vendas", Name: "Vendas", Active: true},
			{Name: "sem id", Active: true},
		},
	})
	require.NoError(t, err)
	require.Len(t, got.RevenueStreams, 1)
	assert.Equal(t, "vendas", got.RevenueStreams[0].ID)
}

func TestEngine_ReplaceConfig_FullReplace(t *testing.T) {
	// GIVEN: A stored two-stream config
	// WHEN: Replacing with a single-stream config
	// THEN: The omitted stream is gone, not merged

	engine, _ := newTestEngine(t)
	seedEngine(t, engine)

	got, err := engine.ReplaceConfig(context.Background(), projection.Config{
		RevenueStreams: []projection.RevenueStream{
			{ID: "novo", Name: "Novo", Active: true},
		},
	})
	require.NoError(t, err)
	require.Len(t, got.RevenueStreams, 1)
	assert.Equal(t, "novo", got.RevenueStreams[0].ID)
	assert.Empty(t, got.MktComponents)
}

func TestEngine_ReplaceBase_FullReplace(t *testing.T) {
	// GIVEN: A base with fixed expenses and a revenue stream
	// WHEN: Replacing with a base holding only variable expenses
	// THEN: Everything omitted is deleted

	engine, _ := newTestEngine(t)
	seedEngine(t, engine)

	got, err := engine.ReplaceBase(context.Background(), projection.BaseYear{
		PrevYear: projection.BaseYearData{VariableExpenses: flatSeries(50)},
	})
	require.NoError(t, err)

	assert.True(t, got.PrevYear.FixedExpenses.IsZero(), "fixed expenses deleted")
	assert.Empty(t, got.PrevYear.RevenueStreams, "revenue series deleted")
	assert.True(t, flatSeries(50).Equal(got.PrevYear.VariableExpenses))
}

// =============================================================================
// READERS - Cached snapshot, defaults when empty
// =============================================================================

func TestEngine_Readers_DefaultsWhenNoSnapshot(t *testing.T) {
	// GIVEN: A fresh engine with nothing persisted
	// WHEN: Reading every category
	// THEN: Zero-valued data comes back, never an error

	engine, _ := newTestEngine(t)
	ctx := context.Background()

	fixed, err := engine.GetFixedExpensesData(ctx)
	require.NoError(t, err)
	assert.True(t, fixed.Previsto.IsZero())

	revenue, err := engine.GetRevenueData(ctx)
	require.NoError(t, err)
	assert.Empty(t, revenue.Detail)
	assert.True(t, revenue.Total.Maximo.IsZero())

	result, err := engine.GetResultadoData(ctx)
	require.NoError(t, err)
	assert.True(t, result.Medio.IsZero())
}

func TestEngine_Readers_ServeCachedSnapshot(t *testing.T) {
	// GIVEN: A seeded engine
	// WHEN: Reading budget and result
	// THEN: The identities of the computed snapshot come through

	engine, _ := newTestEngine(t)
	seedEngine(t, engine)
	ctx := context.Background()

	budget, err := engine.GetBudgetData(ctx)
	require.NoError(t, err)
	result, err := engine.GetResultadoData(ctx)
	require.NoError(t, err)
	revenue, err := engine.GetRevenueData(ctx)
	require.NoError(t, err)

	budgetSeries := projection.ScenarioSeries{Previsto: budget.Previsto, Medio: budget.Medio, Maximo: budget.Maximo}
	resultSeries := projection.ScenarioSeries{Previsto: result.Previsto, Medio: result.Medio, Maximo: result.Maximo}
	for _, sc := range projection.Scenarios {
		want := revenue.Total.For(sc).Sub(budgetSeries.For(sc))
		assert.Truef(t, want.Equal(resultSeries.For(sc)), "result identity for %s", sc)
	}
}

// =============================================================================
// TRANSACTION REBUILD
// =============================================================================

func TestEngine_RebuildBaseFromTransactions(t *testing.T) {
	// GIVEN: A config and a handful of 2025 transactions
	// WHEN: Rebuilding the base for 2025
	// THEN: Classified sums land in the base and the snapshot follows

	engine, mem := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.ReplaceConfig(ctx, twoStreamConfig())
	require.NoError(t, err)
	_, err = engine.ReplaceBase(ctx, projection.BaseYear{Growth: growth(10, 20, 50)})
	require.NoError(t, err)

	for _, txn := range []projection.Transaction{
		tx("t1", "2025-02-01", "despesa", "custo fixo", 500),
		tx("t2", "2025-02-15", "receita", "vendas", 2000),
		tx("t3", "2024-02-15", "receita", "vendas", 9999), // wrong year
	} {
		require.NoError(t, mem.SaveTransaction(ctx, txn))
	}

	snap, err := engine.RebuildBaseFromTransactions(ctx, 2025)
	require.NoError(t, err)

	base, err := engine.GetBase(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(500).Equal(base.PrevYear.FixedExpenses[1]))
	assert.True(t, decimal.NewFromInt(2000).Equal(base.PrevYear.RevenueStreams["vendas"][1]))

	// Snapshot reflects the rebuilt base: 2000 x 1.10 minimo growth.
	assert.True(t, decimal.NewFromInt(2200).Equal(snap.RevenueTotal.Previsto[1]))
}

func TestEngine_Rebuild_FallbackStreamForUnmatchedRevenue(t *testing.T) {
	// GIVEN: Revenue whose category matches no stream name
	// WHEN: Rebuilding
	// THEN: It lands in the first active stream

	engine, mem := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.ReplaceConfig(ctx, twoStreamConfig())
	require.NoError(t, err)
	require.NoError(t, mem.SaveTransaction(ctx,
		tx("t1", "2025-07-01", "receita", "entrada avulsa", 300)))

	_, err = engine.RebuildBaseFromTransactions(ctx, 2025)
	require.NoError(t, err)

	base, err := engine.GetBase(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(300).Equal(base.PrevYear.RevenueStreams["vendas"][6]))
}

func TestEngine_Rebuild_PreservesOverrides(t *testing.T) {
	// GIVEN: A base with a manual override
	// WHEN: Rebuilding from transactions
	// THEN: The override survives and still wins in the snapshot

	engine, mem := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.ReplaceConfig(ctx, twoStreamConfig())
	require.NoError(t, err)
	_, err = engine.ReplaceBase(ctx, projection.BaseYear{
		Overrides: projection.ManualOverrides{
			FixedExpenses: projection.ScenarioOverrides{Previsto: overrideAt(0, 4321)},
		},
	})
	require.NoError(t, err)
	require.NoError(t, mem.SaveTransaction(ctx,
		tx("t1", "2025-03-01", "despesa", "fixo", 100)))

	snap, err := engine.RebuildBaseFromTransactions(ctx, 2025)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(4321).Equal(snap.FixedExpenses.Previsto[0]))
}

// =============================================================================
// SYNC
// =============================================================================

func TestEngine_SyncProjectionData_ReturnsFreshSnapshot(t *testing.T) {
	engine, _ := newTestEngine(t)
	seedEngine(t, engine)

	snap, err := engine.SyncProjectionData(context.Background())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1100).Equal(snap.FixedExpenses.Previsto[0]))
}
