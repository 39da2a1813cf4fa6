package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"altervalue/internal/model"
	"altervalue/internal/service"
)

// ResponseHandler handles the public respondent endpoints. No JWT: the
// campaign access code is the only credential a respondent carries.
type ResponseHandler struct {
	campaignSvc *service.CampaignService
	responseSvc *service.ResponseService
}

// NewResponseHandler creates a new response handler
func NewResponseHandler(campaignSvc *service.CampaignService, responseSvc *service.ResponseService) *ResponseHandler {
	return &ResponseHandler{
		campaignSvc: campaignSvc,
		responseSvc: responseSvc,
	}
}

// Resolve handles GET /v1/public/campaigns/{code}
//
// Returns only what a respondent needs to fill in the survey. The
// consultant id, thresholds and company parameters stay private.
func (h *ResponseHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	campaign, err := h.campaignSvc.GetByAccessCode(r.Context(), code)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"campaignId":  campaign.ID,
		"title":       campaign.Title,
		"companyName": campaign.CompanyName,
		"surveyType":  campaign.SurveyType,
		"status":      campaign.Status,
	})
}

// Submit handles POST /v1/public/campaigns/{code}/responses
func (h *ResponseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var response model.Response
	if err := json.NewDecoder(r.Body).Decode(&response); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stored, err := h.responseSvc.Submit(r.Context(), code, &response)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"campaignId":  stored.CampaignID,
		"submittedAt": stored.SubmittedAt,
	})
}
