package projection_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plano/projection-engine/projection"
)

// =============================================================================
// KEYWORD CLASSIFICATION
// =============================================================================

func TestKeywordClassifier_Classify(t *testing.T) {
	tests := []struct {
		name     string
		txType   string
		category string
		want     projection.Bucket
	}{
		{"revenue by type", "Receita", "Vendas Online", projection.BucketRevenue},
		{"revenue ignores category keywords", "receita", "custo fixo", projection.BucketRevenue},
		{"fixed expense masculine", "Despesa", "Custo Fixo", projection.BucketFixedExpense},
		{"fixed expense feminine", "despesa", "conta fixa", projection.BucketFixedExpense},
		{"variable expense accented", "despesa", "Despesa Variável", projection.BucketVariableExpense},
		{"variable expense unaccented", "despesa", "variavel", projection.BucketVariableExpense},
		{"investment", "despesa", "Investimento em equipamento", projection.BucketInvestment},
		{"marketing abbreviation", "despesa", "MKT digital", projection.BucketMarketing},
		{"marketing full word", "despesa", "marketing de conteúdo", projection.BucketMarketing},
		{"unrecognized expense falls to variable", "despesa", "cafezinho", projection.BucketVariableExpense},
		{"unknown type ignored", "transferencia", "custo fixo", projection.BucketIgnore},
		{"empty ignored", "", "", projection.BucketIgnore},
	}

	classifier := projection.KeywordClassifier{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.txType, tt.category)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveStream_MatchesByName(t *testing.T) {
	// GIVEN: Streams named Vendas and Serviços
	// WHEN: Resolving a category mentioning one of them
	// THEN: The matching stream id is returned

	cfg := twoStreamConfig()

	id, ok := projection.ResolveStream(cfg, "Receita de vendas online")
	require.True(t, ok)
	assert.Equal(t, "vendas", id)
}

func TestResolveStream_FallsBackToFirstActive(t *testing.T) {
	// GIVEN: No stream name appears in the category
	// WHEN: Resolving
	// THEN: The first active stream is the fallback

	cfg := projection.Config{
		RevenueStreams: []projection.RevenueStream{
			{ID: "legado", Name: "Legado", DisplayOrder: 1, Active: false},
			{ID: "vendas", Name: "Vendas", DisplayOrder: 2, Active: true},
		},
	}

	id, ok := projection.ResolveStream(cfg, "algo qualquer")
	require.True(t, ok)
	assert.Equal(t, "vendas", id, "inactive streams never receive revenue")
}

func TestResolveStream_NoActiveStream(t *testing.T) {
	_, ok := projection.ResolveStream(projection.Config{}, "receita")
	assert.False(t, ok)
}

// =============================================================================
// YEAR AGGREGATION
// =============================================================================

func tx(id, date, txType, category string, amount float64) projection.Transaction {
	occurredAt, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return projection.Transaction{
		ID:         id,
		OccurredAt: occurredAt,
		Type:       txType,
		Category:   category,
		Amount:     decimal.NewFromFloat(amount),
	}
}

func TestAggregateYear_RoutesByBucket(t *testing.T) {
	// GIVEN: One transaction of each kind during 2025
	// WHEN: Aggregating 2025
	// THEN: Each lands in its series at the right month

	cfg := twoStreamConfig()
	txs := []projection.Transaction{
		tx("t1", "2025-01-15", "despesa", "custo fixo", 500),
		tx("t2", "2025-02-10", "despesa", "variavel", 200),
		tx("t3", "2025-03-05", "despesa", "investimento", 1000),
		tx("t4", "2025-04-20", "despesa", "mkt", 150),
		tx("t5", "2025-05-30", "receita", "vendas no site", 3000),
	}

	data := projection.AggregateYear(cfg, projection.BaseYearData{}, txs, 2025, nil)

	assert.True(t, decimal.NewFromInt(500).Equal(data.FixedExpenses[0]))
	assert.True(t, decimal.NewFromInt(200).Equal(data.VariableExpenses[1]))
	assert.True(t, decimal.NewFromInt(1000).Equal(data.Investments[2]))
	assert.True(t, decimal.NewFromInt(150).Equal(data.MktComponents["trafego"][3]),
		"marketing spend goes to the first component")
	assert.True(t, decimal.NewFromInt(3000).Equal(data.RevenueStreams["vendas"][4]))
}

func TestAggregateYear_SumsWithinMonth(t *testing.T) {
	// GIVEN: Two fixed expenses in the same month
	// WHEN: Aggregating
	// THEN: They sum

	txs := []projection.Transaction{
		tx("t1", "2025-06-01", "despesa", "fixo", 100),
		tx("t2", "2025-06-28", "despesa", "fixo", 250),
	}

	data := projection.AggregateYear(twoStreamConfig(), projection.BaseYearData{}, txs, 2025, nil)

	assert.True(t, decimal.NewFromInt(350).Equal(data.FixedExpenses[5]))
}

func TestAggregateYear_FiltersByYear(t *testing.T) {
	// GIVEN: Transactions from 2024, 2025, and 2026
	// WHEN: Aggregating 2025
	// THEN: Only 2025 records contribute

	txs := []projection.Transaction{
		tx("t1", "2024-12-31", "despesa", "fixo", 999),
		tx("t2", "2025-01-01", "despesa", "fixo", 100),
		tx("t3", "2026-01-01", "despesa", "fixo", 999),
	}

	data := projection.AggregateYear(twoStreamConfig(), projection.BaseYearData{}, txs, 2025, nil)

	assert.True(t, decimal.NewFromInt(100).Equal(data.FixedExpenses[0]))
	for month := 1; month < 12; month++ {
		assert.True(t, data.FixedExpenses[month].IsZero())
	}
}

func TestAggregateYear_PreservesUntouchedSeries(t *testing.T) {
	// GIVEN: An existing base with fixed expenses and a servicos stream
	// WHEN: Aggregating transactions that only touch variable expenses
	// THEN: The untouched series survive unchanged

	prev := projection.BaseYearData{
		FixedExpenses: flatSeries(1000),
		RevenueStreams: map[string]projection.MonthlySeries{
			"servicos": flatSeries(400),
		},
	}
	txs := []projection.Transaction{
		tx("t1", "2025-03-01", "despesa", "variavel", 75),
	}

	data := projection.AggregateYear(twoStreamConfig(), prev, txs, 2025, nil)

	assert.True(t, flatSeries(1000).Equal(data.FixedExpenses), "fixed expenses preserved")
	assert.True(t, flatSeries(400).Equal(data.RevenueStreams["servicos"]), "servicos preserved")
	assert.True(t, decimal.NewFromInt(75).Equal(data.VariableExpenses[2]))
}

func TestAggregateYear_ReplacesTouchedSeries(t *testing.T) {
	// GIVEN: An existing base with variable expenses
	// WHEN: Aggregating transactions that touch variable expenses
	// THEN: The rebuilt series replaces (not adds to) the old one

	prev := projection.BaseYearData{VariableExpenses: flatSeries(500)}
	txs := []projection.Transaction{
		tx("t1", "2025-01-10", "despesa", "variavel", 60),
	}

	data := projection.AggregateYear(twoStreamConfig(), prev, txs, 2025, nil)

	assert.True(t, decimal.NewFromInt(60).Equal(data.VariableExpenses[0]),
		"January is the rebuilt sum, not 560")
	assert.True(t, data.VariableExpenses[1].IsZero(),
		"months with no transactions reset to zero")
}

func TestAggregateYear_LastCalendarYear(t *testing.T) {
	now := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 2025, projection.LastCalendarYear(now))
}
