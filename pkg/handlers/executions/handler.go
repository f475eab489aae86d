package executions

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ops-tools/costpilot/pkg/adapters"
	"github.com/ops-tools/costpilot/pkg/store/execution"
	"github.com/ops-tools/costpilot/pkg/store/report"
)

// Handler serves the read-only observability API over the durable
// execution state and report artifacts.
type Handler struct {
	states  execution.Store
	reports report.Store
}

func NewHandler(states execution.Store, reports report.Store) *Handler {
	return &Handler{states: states, reports: reports}
}

func (h *Handler) GetLatestExecution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	accountID := chi.URLParam(r, "account")

	exec, err := h.states.GetLatestExecution(ctx, accountID)
	if err != nil {
		logger.Error().Err(err).Str("account_id", accountID).Msg("failed to load latest execution")
		http.Error(w, "failed to load execution", http.StatusInternalServerError)
		return
	}
	if exec == nil {
		http.Error(w, "no executions for account", http.StatusNotFound)
		return
	}

	if err := json.NewEncoder(w).Encode(adapters.MapExecutionDomainToApi(exec)); err != nil {
		logger.Error().Err(err).Str("account_id", accountID).Msg("failed to encode execution")
	}
}

func (h *Handler) GetExecutionSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	accountID := chi.URLParam(r, "account")

	exec, err := h.states.GetLatestExecution(ctx, accountID)
	if err != nil {
		logger.Error().Err(err).Str("account_id", accountID).Msg("failed to load latest execution")
		http.Error(w, "failed to load execution", http.StatusInternalServerError)
		return
	}
	if exec == nil {
		http.Error(w, "no executions for account", http.StatusNotFound)
		return
	}

	summary, err := h.states.Summary(ctx, exec.ID)
	if err != nil {
		logger.Error().Err(err).Str("execution_id", exec.ID).Msg("failed to derive summary")
		http.Error(w, "failed to derive summary", http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(adapters.MapExecutionSummaryDomainToApi(summary)); err != nil {
		logger.Error().Err(err).Str("account_id", accountID).Msg("failed to encode summary")
	}
}

func (h *Handler) GetLatestReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	latest, err := h.reports.GetLatestReport(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load latest report")
		http.Error(w, "failed to load report", http.StatusInternalServerError)
		return
	}
	if latest == nil {
		http.Error(w, "no finalized reports", http.StatusNotFound)
		return
	}

	if err := json.NewEncoder(w).Encode(latest); err != nil {
		logger.Error().Err(err).Msg("failed to encode report")
	}
}
