package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plano/projection-engine/projection"
	"github.com/plano/projection-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func flat(v float64) projection.MonthlySeries {
	values := make([]float64, 12)
	for i := range values {
		values[i] = v
	}
	return projection.SeriesFromFloats(values)
}

// =============================================================================
// CONFIGURATION
// =============================================================================

func TestStore_Config_Roundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cfg := projection.Config{
		RevenueStreams: []projection.RevenueStream{
			{ID: "servicos", Name: "Serviços", DisplayOrder: 2, Active: true},
			{ID: "vendas", Name: "Vendas", DisplayOrder: 1, Active: true},
		},
		MktComponents: []projection.MktComponent{
			{ID: "trafego", Name: "Tráfego Pago", DisplayOrder: 1, Active: false},
		},
	}
	require.NoError(t, store.ReplaceConfig(ctx, cfg))

	got, err := store.GetConfig(ctx)
	require.NoError(t, err)

	// Streams come back ordered for display.
	require.Len(t, got.RevenueStreams, 2)
	assert.Equal(t, "vendas", got.RevenueStreams[0].ID)
	assert.Equal(t, "servicos", got.RevenueStreams[1].ID)

	require.Len(t, got.MktComponents, 1)
	assert.False(t, got.MktComponents[0].Active, "active flag persisted")
}

func TestStore_Config_EmptyDatabase(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetConfig(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.RevenueStreams)
	assert.Empty(t, got.MktComponents)
}

func TestStore_ReplaceConfig_DeletesOmittedEntries(t *testing.T) {
	// GIVEN: Two stored streams
	// WHEN: Replacing with one
	// THEN: The omitted one is gone

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceConfig(ctx, projection.Config{
		RevenueStreams: []projection.RevenueStream{
			{ID: "a", Name: "A", Active: true},
			{ID: "b", Name: "B", Active: true},
		},
	}))
	require.NoError(t, store.ReplaceConfig(ctx, projection.Config{
		RevenueStreams: []projection.RevenueStream{
			{ID: "a", Name: "A renamed", Active: false},
		},
	}))

	got, err := store.GetConfig(ctx)
	require.NoError(t, err)
	require.Len(t, got.RevenueStreams, 1)
	assert.Equal(t, "A renamed", got.RevenueStreams[0].Name)
}

// =============================================================================
// BASE YEAR
// =============================================================================

func TestStore_Base_Roundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var override projection.NullableMonthlySeries
	override[3] = decimal.NewNullDecimal(decimal.NewFromInt(1500))

	base := projection.BaseYear{
		Growth: projection.GrowthRates{
			Minimo: decimal.NewFromInt(10),
			Medio:  decimal.NewFromInt(20),
			Maximo: decimal.NewFromInt(50),
		},
		PrevYear: projection.BaseYearData{
			FixedExpenses:    flat(1000),
			VariableExpenses: flat(200),
			Investments:      flat(80),
			RevenueStreams: map[string]projection.MonthlySeries{
				"vendas": flat(2500),
			},
			MktComponents: map[string]projection.MonthlySeries{
				"trafego": flat(150),
			},
		},
		Overrides: projection.ManualOverrides{
			FixedExpenses: projection.ScenarioOverrides{Previsto: override},
			Revenue: map[string]projection.ScenarioOverrides{
				"vendas": {Maximo: override},
			},
		},
		UpdatedAt: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.ReplaceBase(ctx, base))

	got, err := store.GetBase(ctx)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(10).Equal(got.Growth.Minimo))
	assert.True(t, decimal.NewFromInt(50).Equal(got.Growth.Maximo))
	assert.True(t, flat(1000).Equal(got.PrevYear.FixedExpenses))
	assert.True(t, flat(2500).Equal(got.PrevYear.RevenueStreams["vendas"]))
	assert.True(t, flat(150).Equal(got.PrevYear.MktComponents["trafego"]))

	// Override slots: only April previsto is set, and it holds 1500.
	gotOverride := got.Overrides.FixedExpenses.Previsto
	require.True(t, gotOverride[3].Valid)
	assert.True(t, decimal.NewFromInt(1500).Equal(gotOverride[3].Decimal))
	assert.False(t, gotOverride[2].Valid, "unset slots stay unset")

	streamOverride := got.Overrides.Revenue["vendas"].Maximo
	require.True(t, streamOverride[3].Valid)

	assert.Equal(t, base.UpdatedAt, got.UpdatedAt)
}

func TestStore_Base_EmptyDatabase(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetBase(context.Background())
	require.NoError(t, err)
	assert.True(t, got.PrevYear.FixedExpenses.IsZero())
	assert.True(t, got.Growth.Minimo.IsZero())
	assert.Empty(t, got.PrevYear.RevenueStreams)
}

func TestStore_ReplaceBase_FullReplace(t *testing.T) {
	// GIVEN: A base with a vendas series and an override
	// WHEN: Replacing with a base holding only variable expenses
	// THEN: The old series and override are deleted

	store := newTestStore(t)
	ctx := context.Background()

	var override projection.NullableMonthlySeries
	override[0] = decimal.NewNullDecimal(decimal.NewFromInt(42))
	require.NoError(t, store.ReplaceBase(ctx, projection.BaseYear{
		PrevYear: projection.BaseYearData{
			RevenueStreams: map[string]projection.MonthlySeries{"vendas": flat(100)},
		},
		Overrides: projection.ManualOverrides{
			Investments: projection.ScenarioOverrides{Medio: override},
		},
	}))

	require.NoError(t, store.ReplaceBase(ctx, projection.BaseYear{
		PrevYear: projection.BaseYearData{VariableExpenses: flat(7)},
	}))

	got, err := store.GetBase(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.PrevYear.RevenueStreams)
	assert.False(t, got.Overrides.Investments.Medio[0].Valid)
	assert.True(t, flat(7).Equal(got.PrevYear.VariableExpenses))
}

func TestStore_Base_RetainsOrphanedSeries(t *testing.T) {
	// GIVEN: A base series for a stream id the config no longer knows
	// WHEN: Reading the base back
	// THEN: The orphaned series is still there; config and base are
	//       independent stores

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceConfig(ctx, projection.Config{
		RevenueStreams: []projection.RevenueStream{{ID: "vendas", Name: "Vendas", Active: true}},
	}))
	require.NoError(t, store.ReplaceBase(ctx, projection.BaseYear{
		PrevYear: projection.BaseYearData{
			RevenueStreams: map[string]projection.MonthlySeries{
				"vendas":  flat(100),
				"extinto": flat(55),
			},
		},
	}))

	got, err := store.GetBase(ctx)
	require.NoError(t, err)
	assert.True(t, flat(55).Equal(got.PrevYear.RevenueStreams["extinto"]))
}

// =============================================================================
// SNAPSHOT
// =============================================================================

func TestStore_Snapshot_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetSnapshot(context.Background())
	assert.ErrorIs(t, err, projection.ErrSnapshotNotFound)
}

func TestStore_Snapshot_Roundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cfg := projection.Config{
		RevenueStreams: []projection.RevenueStream{{ID: "vendas", Name: "Vendas", Active: true}},
	}
	snap := projection.Compute(cfg, projection.BaseYear{
		Growth: projection.GrowthRates{
			Minimo: decimal.NewFromInt(10),
			Medio:  decimal.NewFromInt(20),
			Maximo: decimal.NewFromInt(50),
		},
		PrevYear: projection.BaseYearData{
			FixedExpenses: flat(1000),
			RevenueStreams: map[string]projection.MonthlySeries{
				"vendas": flat(100),
			},
		},
	})
	snap.UpdatedAt = time.Date(2026, time.April, 2, 9, 30, 0, 0, time.UTC)
	require.NoError(t, store.SaveSnapshot(ctx, snap))

	got, err := store.GetSnapshot(ctx)
	require.NoError(t, err)

	assert.True(t, snap.FixedExpenses.Previsto.Equal(got.FixedExpenses.Previsto))
	assert.True(t, snap.RevenueTotal.Maximo.Equal(got.RevenueTotal.Maximo))
	assert.True(t, snap.Budget.Medio.Equal(got.Budget.Medio))
	assert.True(t, snap.Result.Previsto.Equal(got.Result.Previsto))
	require.Contains(t, got.Revenue, "vendas")
	assert.True(t, snap.Revenue["vendas"].Previsto.Equal(got.Revenue["vendas"].Previsto))
	assert.Equal(t, snap.UpdatedAt, got.UpdatedAt)

	// Config travels with the snapshot for self-contained reads.
	require.Len(t, got.Config.RevenueStreams, 1)
	assert.Equal(t, "vendas", got.Config.RevenueStreams[0].ID)
}

func TestStore_Snapshot_Overwrite(t *testing.T) {
	// GIVEN: A stored snapshot
	// WHEN: Saving a newer one
	// THEN: Only the newest survives

	store := newTestStore(t)
	ctx := context.Background()

	first := projection.Compute(projection.Config{}, projection.BaseYear{
		PrevYear: projection.BaseYearData{FixedExpenses: flat(1000)},
	})
	require.NoError(t, store.SaveSnapshot(ctx, first))

	second := projection.Compute(projection.Config{}, projection.BaseYear{
		PrevYear: projection.BaseYearData{FixedExpenses: flat(2000)},
	})
	require.NoError(t, store.SaveSnapshot(ctx, second))

	got, err := store.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2200).Equal(got.FixedExpenses.Previsto[0]))
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func storedTx(id string, date string, amount float64) projection.Transaction {
	occurredAt, _ := time.Parse("2006-01-02", date)
	return projection.Transaction{
		ID:         id,
		OccurredAt: occurredAt,
		Type:       "despesa",
		Category:   "fixo",
		Amount:     decimal.NewFromFloat(amount),
	}
}

func TestStore_Transactions_ByYear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTransaction(ctx, storedTx("t1", "2024-12-31", 1)))
	require.NoError(t, store.SaveTransaction(ctx, storedTx("t2", "2025-01-01", 2)))
	require.NoError(t, store.SaveTransaction(ctx, storedTx("t3", "2025-12-31", 3)))
	require.NoError(t, store.SaveTransaction(ctx, storedTx("t4", "2026-01-01", 4)))

	got, err := store.ListTransactionsByYear(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "t2", got[0].ID, "ascending by date")
	assert.Equal(t, "t3", got[1].ID)
}

func TestStore_Transactions_UpsertByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTransaction(ctx, storedTx("t1", "2025-05-01", 100)))
	require.NoError(t, store.SaveTransaction(ctx, storedTx("t1", "2025-05-01", 250)))

	got, err := store.ListTransactionsByYear(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, decimal.NewFromInt(250).Equal(got[0].Amount))
}

func TestStore_Transactions_ListWithLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTransaction(ctx, storedTx("t1", "2025-01-01", 1)))
	require.NoError(t, store.SaveTransaction(ctx, storedTx("t2", "2025-06-01", 2)))
	require.NoError(t, store.SaveTransaction(ctx, storedTx("t3", "2025-12-01", 3)))

	got, err := store.ListTransactions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "t3", got[0].ID, "newest first")
}

// =============================================================================
// RESET
// =============================================================================

func TestStore_Reset_ClearsEverything(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceConfig(ctx, projection.DefaultConfig()))
	require.NoError(t, store.ReplaceBase(ctx, projection.BaseYear{
		PrevYear: projection.BaseYearData{FixedExpenses: flat(1)},
	}))
	require.NoError(t, store.SaveTransaction(ctx, storedTx("t1", "2025-01-01", 1)))

	require.NoError(t, store.Reset(ctx))

	cfg, err := store.GetConfig(ctx)
	require.NoError(t, err)
	assert.Empty(t, cfg.RevenueStreams)

	base, err := store.GetBase(ctx)
	require.NoError(t, err)
	assert.True(t, base.PrevYear.FixedExpenses.IsZero())

	txs, err := store.ListTransactions(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, txs)
}
