/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model (decimal-valued fixed arrays) from the
  external API contract (float64 slices), allowing:
  - Field renaming without breaking clients
  - API-specific validation and normalization
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SERIES SHAPE:
  Series travel as 12-element float64 arrays (index 0 = January).
  Override series travel as arrays of nullable numbers; null means "no
  override for that month". Inbound series of the wrong length are
  normalized (truncate/zero-pad), never rejected.

FULL-REPLACE WARNING:
  PUT /api/projection/config and PUT /api/projection/base replace their
  entire collections. Anything omitted from the payload is deleted, not
  merged.

SEE ALSO:
  - handlers.go: Uses these types
  - projection/types.go: Domain shapes
*/
package api

import (
	"time"

	"github.com/plano/projection-engine/projection"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// StreamDTO represents a revenue stream or marketing component entry.
type StreamDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
	Active       bool   `json:"active"`
}

// ConfigDTO is the full projection configuration.
type ConfigDTO struct {
	RevenueStreams []StreamDTO `json:"revenue_streams"`
	MktComponents  []StreamDTO `json:"mkt_components"`
}

func toConfigDTO(cfg projection.Config) ConfigDTO {
	dto := ConfigDTO{
		RevenueStreams: make([]StreamDTO, 0, len(cfg.RevenueStreams)),
		MktComponents:  make([]StreamDTO, 0, len(cfg.MktComponents)),
	}
	for _, s := range cfg.RevenueStreams {
		dto.RevenueStreams = append(dto.RevenueStreams, StreamDTO{
			ID: s.ID, Name: s.Name, DisplayOrder: s.DisplayOrder, Active: s.Active,
		})
	}
	for _, c := range cfg.MktComponents {
		dto.MktComponents = append(dto.MktComponents, StreamDTO{
			ID: c.ID, Name: c.Name, DisplayOrder: c.DisplayOrder, Active: c.Active,
		})
	}
	return dto
}

func (dto ConfigDTO) toDomain() projection.Config {
	cfg := projection.Config{}
	for _, s := range dto.RevenueStreams {
		cfg.RevenueStreams = append(cfg.RevenueStreams, projection.RevenueStream{
			ID: s.ID, Name: s.Name, DisplayOrder: s.DisplayOrder, Active: s.Active,
		})
	}
	for _, c := range dto.MktComponents {
		cfg.MktComponents = append(cfg.MktComponents, projection.MktComponent{
			ID: c.ID, Name: c.Name, DisplayOrder: c.DisplayOrder, Active: c.Active,
		})
	}
	return cfg
}

// =============================================================================
// BASE YEAR
// =============================================================================

// GrowthDTO carries the three annual growth percentages.
type GrowthDTO struct {
	Minimo float64 `json:"minimo"`
	Medio  float64 `json:"medio"`
	Maximo float64 `json:"maximo"`
}

// OverridesDTO carries one category's three nullable override series.
type OverridesDTO struct {
	Previsto []*float64 `json:"previsto"`
	Medio    []*float64 `json:"medio"`
	Maximo   []*float64 `json:"maximo"`
}

// PrevYearDTO carries the prior-year actual figures.
type PrevYearDTO struct {
	FixedExpenses    []float64            `json:"fixed_expenses"`
	VariableExpenses []float64            `json:"variable_expenses"`
	Investments      []float64            `json:"investments"`
	RevenueStreams   map[string][]float64 `json:"revenue_streams"`
	MktComponents    map[string][]float64 `json:"mkt_components"`
}

// ManualOverridesDTO carries every override series.
type ManualOverridesDTO struct {
	FixedExpenses    OverridesDTO            `json:"fixed_expenses"`
	VariableExpenses OverridesDTO            `json:"variable_expenses"`
	Investments      OverridesDTO            `json:"investments"`
	Mkt              OverridesDTO            `json:"mkt"`
	Revenue          map[string]OverridesDTO `json:"revenue"`
}

// BaseYearDTO is the full base-year payload. PUT replaces it wholesale.
type BaseYearDTO struct {
	Growth          GrowthDTO          `json:"growth"`
	PrevYear        PrevYearDTO        `json:"prev_year"`
	ManualOverrides ManualOverridesDTO `json:"manual_overrides"`
	UpdatedAt       string             `json:"updated_at,omitempty"`
}

func toBaseYearDTO(base projection.BaseYear) BaseYearDTO {
	dto := BaseYearDTO{
		Growth: GrowthDTO{
			Minimo: base.Growth.Minimo.InexactFloat64(),
			Medio:  base.Growth.Medio.InexactFloat64(),
			Maximo: base.Growth.Maximo.InexactFloat64(),
		},
		PrevYear: PrevYearDTO{
			FixedExpenses:    base.PrevYear.FixedExpenses.Floats(),
			VariableExpenses: base.PrevYear.VariableExpenses.Floats(),
			Investments:      base.PrevYear.Investments.Floats(),
			RevenueStreams:   make(map[string][]float64),
			MktComponents:    make(map[string][]float64),
		},
		ManualOverrides: ManualOverridesDTO{
			FixedExpenses:    toOverridesDTO(base.Overrides.FixedExpenses),
			VariableExpenses: toOverridesDTO(base.Overrides.VariableExpenses),
			Investments:      toOverridesDTO(base.Overrides.Investments),
			Mkt:              toOverridesDTO(base.Overrides.Mkt),
			Revenue:          make(map[string]OverridesDTO),
		},
	}
	if !base.UpdatedAt.IsZero() {
		dto.UpdatedAt = base.UpdatedAt.Format(time.RFC3339)
	}
	for id, series := range base.PrevYear.RevenueStreams {
		dto.PrevYear.RevenueStreams[id] = series.Floats()
	}
	for id, series := range base.PrevYear.MktComponents {
		dto.PrevYear.MktComponents[id] = series.Floats()
	}
	for id, ov := range base.Overrides.Revenue {
		dto.ManualOverrides.Revenue[id] = toOverridesDTO(ov)
	}
	return dto
}

func toOverridesDTO(ov projection.ScenarioOverrides) OverridesDTO {
	return OverridesDTO{
		Previsto: ov.Previsto.Floats(),
		Medio:    ov.Medio.Floats(),
		Maximo:   ov.Maximo.Floats(),
	}
}

func (dto BaseYearDTO) toDomain() projection.BaseYear {
	base := projection.BaseYear{
		Growth: projection.GrowthRates{
			Minimo: floatDecimal(dto.Growth.Minimo),
			Medio:  floatDecimal(dto.Growth.Medio),
			Maximo: floatDecimal(dto.Growth.Maximo),
		},
		PrevYear: projection.BaseYearData{
			FixedExpenses:    projection.SeriesFromFloats(dto.PrevYear.FixedExpenses),
			VariableExpenses: projection.SeriesFromFloats(dto.PrevYear.VariableExpenses),
			Investments:      projection.SeriesFromFloats(dto.PrevYear.Investments),
			RevenueStreams:   make(map[string]projection.MonthlySeries),
			MktComponents:    make(map[string]projection.MonthlySeries),
		},
		Overrides: projection.ManualOverrides{
			FixedExpenses:    dto.ManualOverrides.FixedExpenses.toDomain(),
			VariableExpenses: dto.ManualOverrides.VariableExpenses.toDomain(),
			Investments:      dto.ManualOverrides.Investments.toDomain(),
			Mkt:              dto.ManualOverrides.Mkt.toDomain(),
			Revenue:          make(map[string]projection.ScenarioOverrides),
		},
	}
	for id, series := range dto.PrevYear.RevenueStreams {
		base.PrevYear.RevenueStreams[id] = projection.SeriesFromFloats(series)
	}
	for id, series := range dto.PrevYear.MktComponents {
		base.PrevYear.MktComponents[id] = projection.SeriesFromFloats(series)
	}
	for id, ov := range dto.ManualOverrides.Revenue {
		base.Overrides.Revenue[id] = ov.toDomain()
	}
	return base
}

func (dto OverridesDTO) toDomain() projection.ScenarioOverrides {
	return projection.ScenarioOverrides{
		Previsto: projection.NullableSeriesFromFloats(dto.Previsto),
		Medio:    projection.NullableSeriesFromFloats(dto.Medio),
		Maximo:   projection.NullableSeriesFromFloats(dto.Maximo),
	}
}

// =============================================================================
// SNAPSHOT & CATEGORY READERS
// =============================================================================

// ScenarioSeriesDTO is one derived category's three series.
type ScenarioSeriesDTO struct {
	Previsto []float64 `json:"previsto"`
	Medio    []float64 `json:"medio"`
	Maximo   []float64 `json:"maximo"`
}

func toScenarioSeriesDTO(ss projection.ScenarioSeries) ScenarioSeriesDTO {
	return ScenarioSeriesDTO{
		Previsto: ss.Previsto.Floats(),
		Medio:    ss.Medio.Floats(),
		Maximo:   ss.Maximo.Floats(),
	}
}

// CategoryDataDTO is the response of a per-category reader.
type CategoryDataDTO struct {
	Previsto  []float64 `json:"previsto"`
	Medio     []float64 `json:"medio"`
	Maximo    []float64 `json:"maximo"`
	UpdatedAt string    `json:"updated_at,omitempty"`
}

func toCategoryDataDTO(data projection.CategoryData) CategoryDataDTO {
	dto := CategoryDataDTO{
		Previsto: data.Previsto.Floats(),
		Medio:    data.Medio.Floats(),
		Maximo:   data.Maximo.Floats(),
	}
	if !data.UpdatedAt.IsZero() {
		dto.UpdatedAt = data.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

// DetailDataDTO is the response of a reader with per-id detail.
type DetailDataDTO struct {
	Detail    map[string]ScenarioSeriesDTO `json:"detail"`
	Total     ScenarioSeriesDTO            `json:"total"`
	UpdatedAt string                       `json:"updated_at,omitempty"`
}

func toDetailDataDTO(data projection.DetailData) DetailDataDTO {
	dto := DetailDataDTO{
		Detail: make(map[string]ScenarioSeriesDTO, len(data.Detail)),
		Total:  toScenarioSeriesDTO(data.Total),
	}
	for id, ss := range data.Detail {
		dto.Detail[id] = toScenarioSeriesDTO(ss)
	}
	if !data.UpdatedAt.IsZero() {
		dto.UpdatedAt = data.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

// SnapshotDTO is the full projection snapshot.
type SnapshotDTO struct {
	Growth           GrowthDTO                    `json:"growth"`
	Config           ConfigDTO                    `json:"config"`
	FixedExpenses    ScenarioSeriesDTO            `json:"fixed_expenses"`
	VariableExpenses ScenarioSeriesDTO            `json:"variable_expenses"`
	Investments      ScenarioSeriesDTO            `json:"investments"`
	Revenue          map[string]ScenarioSeriesDTO `json:"revenue"`
	RevenueTotal     ScenarioSeriesDTO            `json:"revenue_total"`
	Mkt              map[string]ScenarioSeriesDTO `json:"mkt"`
	MktTotal         ScenarioSeriesDTO            `json:"mkt_total"`
	Budget           ScenarioSeriesDTO            `json:"budget"`
	Result           ScenarioSeriesDTO            `json:"result"`
	UpdatedAt        string                       `json:"updated_at,omitempty"`
}

func toSnapshotDTO(snap projection.Snapshot) SnapshotDTO {
	dto := SnapshotDTO{
		Growth: GrowthDTO{
			Minimo: snap.Growth.Minimo.InexactFloat64(),
			Medio:  snap.Growth.Medio.InexactFloat64(),
			Maximo: snap.Growth.Maximo.InexactFloat64(),
		},
		Config:           toConfigDTO(snap.Config),
		FixedExpenses:    toScenarioSeriesDTO(snap.FixedExpenses),
		VariableExpenses: toScenarioSeriesDTO(snap.VariableExpenses),
		Investments:      toScenarioSeriesDTO(snap.Investments),
		Revenue:          make(map[string]ScenarioSeriesDTO, len(snap.Revenue)),
		RevenueTotal:     toScenarioSeriesDTO(snap.RevenueTotal),
		Mkt:              make(map[string]ScenarioSeriesDTO, len(snap.Mkt)),
		MktTotal:         toScenarioSeriesDTO(snap.MktTotal),
		Budget:           toScenarioSeriesDTO(snap.Budget),
		Result:           toScenarioSeriesDTO(snap.Result),
	}
	for id, ss := range snap.Revenue {
		dto.Revenue[id] = toScenarioSeriesDTO(ss)
	}
	for id, ss := range snap.Mkt {
		dto.Mkt[id] = toScenarioSeriesDTO(ss)
	}
	if !snap.UpdatedAt.IsZero() {
		dto.UpdatedAt = snap.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// TransactionDTO represents a raw financial record.
type TransactionDTO struct {
	ID          string  `json:"id"`
	OccurredAt  string  `json:"occurred_at"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Amount      float64 `json:"amount"`
}

// CreateTransactionRequest is the request to record a transaction.
type CreateTransactionRequest struct {
	ID          string  `json:"id"`
	OccurredAt  string  `json:"occurred_at"` // YYYY-MM-DD
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// RebuildRequest selects the year whose transactions seed the base year.
// Year <= 0 or omitted defaults to the last calendar year.
type RebuildRequest struct {
	Year int `json:"year"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
