package rest

import (
	"net/http"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/transaction"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/metrics"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/service/analytics"
)

// Handler serves the dashboard API over the published dataset
type Handler struct {
	*BaseHandler
	analytics analytics.Service
	registry  *metrics.Registry
}

// NewHandler creates the REST API handler. The metrics registry is optional;
// chart usage counters are skipped when it is nil.
func NewHandler(base *BaseHandler, analyticsService analytics.Service, registry *metrics.Registry) *Handler {
	return &Handler{
		BaseHandler: base,
		analytics:   analyticsService,
		registry:    registry,
	}
}

// handleRegions returns the regions present in the dataset with their counts
func (h *Handler) handleRegions(w http.ResponseWriter, r *http.Request) {
	result, err := h.analytics.Regions(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeSuccess(w, r, http.StatusOK, result)
}

// handleAmountHistogram returns the amount histogram for the selected region
func (h *Handler) handleAmountHistogram(w http.ResponseWriter, r *http.Request) {
	query := analytics.Query{Region: r.URL.Query().Get("region")}

	chart, err := h.analytics.AmountHistogram(r.Context(), query)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if h.registry != nil {
		h.registry.RecordChartRequest(r.Context(), "amount_histogram", chart.Region)
	}
	h.writeSuccess(w, r, http.StatusOK, chart)
}

// handleAuthOutcomes returns the auth outcome proportions for the selected region
func (h *Handler) handleAuthOutcomes(w http.ResponseWriter, r *http.Request) {
	query := analytics.Query{Region: r.URL.Query().Get("region")}

	chart, err := h.analytics.AuthOutcomes(r.Context(), query)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if h.registry != nil {
		h.registry.RecordChartRequest(r.Context(), "auth_outcomes", chart.Region)
	}
	h.writeSuccess(w, r, http.StatusOK, chart)
}

// transactionsQuery holds the validated transactions listing parameters
type transactionsQuery struct {
	Region string `validate:"omitempty,max=64"`
	Limit  int    `validate:"min=0,max=1000"`
}

// transactionsResponse wraps the record listing
type transactionsResponse struct {
	Transactions []*transaction.Transaction `json:"transactions"`
	Count        int                        `json:"count"`
}

// handleTransactions returns a bounded listing of scored transactions
func (h *Handler) handleTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntQuery(r, "limit", 0)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	query := transactionsQuery{
		Region: r.URL.Query().Get("region"),
		Limit:  limit,
	}
	if err := h.validateQuery(query); err != nil {
		h.handleError(w, r, err)
		return
	}

	records, err := h.analytics.Records(r.Context(), analytics.Query{
		Region: query.Region,
		Limit:  query.Limit,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeSuccess(w, r, http.StatusOK, transactionsResponse{
		Transactions: records,
		Count:        len(records),
	})
}

// handleModel returns the trained model summary
func (h *Handler) handleModel(w http.ResponseWriter, r *http.Request) {
	info, err := h.analytics.ModelSummary(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeSuccess(w, r, http.StatusOK, info)
}

// handleDatasetSummary returns aggregate statistics for the dataset
func (h *Handler) handleDatasetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analytics.DatasetSummary(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeSuccess(w, r, http.StatusOK, summary)
}
