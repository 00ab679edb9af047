/*
handlers.go - HTTP API handlers for the projection engine

PURPOSE:
  Exposes the projection engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the Engine.

ENDPOINTS:
  Configuration:
    GET    /api/projection/config        Current streams/components
    PUT    /api/projection/config        FULL REPLACE of the configuration

  Base year:
    GET    /api/projection/base          Growth + prior year + overrides
    PUT    /api/projection/base          FULL REPLACE of the base year

  Projection:
    GET    /api/projection               Cached snapshot (no recompute)
    POST   /api/projection/sync          Recompute and return fresh
    POST   /api/projection/rebuild       Rebuild base from transactions

  Category readers (cached, never recompute):
    GET    /api/projection/fixed-expenses
    GET    /api/projection/variable-expenses
    GET    /api/projection/investments
    GET    /api/projection/revenue
    GET    /api/projection/mkt
    GET    /api/projection/budget
    GET    /api/projection/resultado

  Transactions (the collaborator's record store):
    GET    /api/transactions
    POST   /api/transactions

REQUEST FLOW:
  1. Parse HTTP request
  2. Normalize input (series padded/truncated to 12 months)
  3. Call the Engine
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 500: Internal/storage errors

  Every mutation recomputes the snapshot before responding, so a 200 on
  a PUT means the derived series already reflect the new state.

SECURITY NOTE:
  No authentication middleware. Authentication is the surrounding
  application's concern, not the engine's.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/plano/projection-engine/projection"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine *projection.Engine
	Txs    projection.TransactionStore
	Logger *zap.Logger
}

// NewHandler creates a new handler over the given engine and
// transaction store.
func NewHandler(engine *projection.Engine, txs projection.TransactionStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Engine: engine, Txs: txs, Logger: logger}
}

// =============================================================================
// CONFIGURATION HANDLERS
// =============================================================================

// GetConfig returns the current configuration.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Engine.GetConfig(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load configuration", err)
		return
	}
	writeJSON(w, http.StatusOK, toConfigDTO(cfg))
}

// ReplaceConfig replaces the configuration wholesale and recomputes.
func (h *Handler) ReplaceConfig(w http.ResponseWriter, r *http.Request) {
	var req ConfigDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	updated, err := h.Engine.ReplaceConfig(r.Context(), req.toDomain())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to replace configuration", err)
		return
	}
	writeJSON(w, http.StatusOK, toConfigDTO(updated))
}

// =============================================================================
// BASE YEAR HANDLERS
// =============================================================================

// GetBase returns growth, prior-year data, and manual overrides.
func (h *Handler) GetBase(w http.ResponseWriter, r *http.Request) {
	base, err := h.Engine.GetBase(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load base year", err)
		return
	}
	writeJSON(w, http.StatusOK, toBaseYearDTO(base))
}

// ReplaceBase replaces the base year wholesale and recomputes. The
// response is the normalized, persisted state.
func (h *Handler) ReplaceBase(w http.ResponseWriter, r *http.Request) {
	var req BaseYearDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	shaped, err := h.Engine.ReplaceBase(r.Context(), req.toDomain())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to replace base year", err)
		return
	}
	writeJSON(w, http.StatusOK, toBaseYearDTO(shaped))
}

// =============================================================================
// PROJECTION HANDLERS
// =============================================================================

// GetSnapshot returns the cached projection snapshot without recomputing.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Engine.GetProjectionSnapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshot", err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotDTO(snap))
}

// Sync recomputes the projection and returns the fresh snapshot.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Engine.SyncProjectionData(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to recompute projection", err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotDTO(snap))
}

// Rebuild reclassifies the transaction history into the base year and
// returns the resulting snapshot.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	var req RebuildRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	snap, err := h.Engine.RebuildBaseFromTransactions(r.Context(), req.Year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to rebuild base year", err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotDTO(snap))
}

// =============================================================================
// CATEGORY READERS
// =============================================================================

// GetFixedExpenses returns the fixed-expense scenario series.
func (h *Handler) GetFixedExpenses(w http.ResponseWriter, r *http.Request) {
	data, err := h.Engine.GetFixedExpensesData(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load fixed expenses", err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDataDTO(data))
}

// GetVariableExpenses returns the variable-expense scenario series.
func (h *Handler) GetVariableExpenses(w http.ResponseWriter, r *http.Request) {
	data, err := h.Engine.GetVariableExpensesData(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load variable expenses", err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDataDTO(data))
}

// GetInvestments returns the investments scenario series.
func (h *Handler) GetInvestments(w http.ResponseWriter, r *http.Request) {
	data, err := h.Engine.GetInvestmentsData(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load investments", err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDataDTO(data))
}

// GetRevenue returns per-stream detail and the revenue totals.
func (h *Handler) GetRevenue(w http.ResponseWriter, r *http.Request) {
	data, err := h.Engine.GetRevenueData(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load revenue", err)
		return
	}
	writeJSON(w, http.StatusOK, toDetailDataDTO(data))
}

// GetMktComponents returns per-component detail and the marketing totals.
func (h *Handler) GetMktComponents(w http.ResponseWriter, r *http.Request) {
	data, err := h.Engine.GetMktComponentsData(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load marketing spend", err)
		return
	}
	writeJSON(w, http.StatusOK, toDetailDataDTO(data))
}

// GetBudget returns the budget scenario series.
func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	data, err := h.Engine.GetBudgetData(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load budget", err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDataDTO(data))
}

// GetResultado returns the net-result scenario series.
func (h *Handler) GetResultado(w http.ResponseWriter, r *http.Request) {
	data, err := h.Engine.GetResultadoData(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load result", err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDataDTO(data))
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// ListTransactions returns the stored raw records, newest first.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.Txs.ListTransactions(r.Context(), 500)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transactions", err)
		return
	}

	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = TransactionDTO{
			ID:          tx.ID,
			OccurredAt:  tx.OccurredAt.Format("2006-01-02"),
			Type:        tx.Type,
			Category:    tx.Category,
			Description: tx.Description,
			Amount:      tx.Amount.InexactFloat64(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTransaction records a raw financial transaction. It does NOT
// trigger a rebuild; use POST /api/projection/rebuild for that.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	occurredAt, err := time.Parse("2006-01-02", req.OccurredAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid occurred_at format (use YYYY-MM-DD)", err)
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "Transaction id is required", nil)
		return
	}

	tx := projection.Transaction{
		ID:          req.ID,
		OccurredAt:  occurredAt,
		Type:        req.Type,
		Category:    req.Category,
		Description: req.Description,
		Amount:      floatDecimal(req.Amount),
	}
	if err := h.Txs.SaveTransaction(r.Context(), tx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save transaction", err)
		return
	}

	writeJSON(w, http.StatusCreated, TransactionDTO{
		ID:          tx.ID,
		OccurredAt:  tx.OccurredAt.Format("2006-01-02"),
		Type:        tx.Type,
		Category:    tx.Category,
		Description: tx.Description,
		Amount:      tx.Amount.InexactFloat64(),
	})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func floatDecimal(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
