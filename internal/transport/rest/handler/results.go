package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"altervalue/internal/service"
	"altervalue/internal/transport/rest/middleware"
)

// ResultsHandler handles the calculation endpoints
type ResultsHandler struct {
	calcSvc *service.CalculationService
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(calcSvc *service.CalculationService) *ResultsHandler {
	return &ResultsHandler{calcSvc: calcSvc}
}

// Get handles GET /v1/campaigns/{campaignId}/results?force=true
//
// A campaign with no responses is still a 200: the envelope carries a
// confidential result with responseCount 0.
func (h *ResultsHandler) Get(w http.ResponseWriter, r *http.Request) {
	campaignID := mux.Vars(r)["campaignId"]
	force := r.URL.Query().Get("force") == "true"

	envelope, err := h.calcSvc.Results(r.Context(), campaignID, middleware.GetConsultantID(r.Context()), force)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope)
}

// Invalidate handles POST /v1/campaigns/{campaignId}/results/invalidate
func (h *ResultsHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	campaignID := mux.Vars(r)["campaignId"]

	if err := h.calcSvc.Invalidate(r.Context(), campaignID, middleware.GetConsultantID(r.Context())); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
