package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"altervalue/internal/model"
	"altervalue/internal/service"
	"altervalue/internal/transport/rest/middleware"
)

// CampaignHandler handles consultant campaign endpoints
type CampaignHandler struct {
	campaignSvc *service.CampaignService
	responseSvc *service.ResponseService
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaignSvc *service.CampaignService, responseSvc *service.ResponseService) *CampaignHandler {
	return &CampaignHandler{
		campaignSvc: campaignSvc,
		responseSvc: responseSvc,
	}
}

// Create handles POST /v1/campaigns
func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	var campaign model.Campaign
	if err := json.NewDecoder(r.Body).Decode(&campaign); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if campaign.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	created, err := h.campaignSvc.Create(r.Context(), middleware.GetConsultantID(r.Context()), &campaign)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// List handles GET /v1/campaigns
func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.campaignSvc.List(r.Context(), middleware.GetConsultantID(r.Context()))
	if err != nil {
		serviceError(w, err)
		return
	}
	if campaigns == nil {
		campaigns = []*model.Campaign{}
	}

	writeJSON(w, http.StatusOK, campaigns)
}

// Get handles GET /v1/campaigns/{campaignId}
func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	campaignID := mux.Vars(r)["campaignId"]

	campaign, err := h.campaignSvc.Get(r.Context(), campaignID, middleware.GetConsultantID(r.Context()))
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, campaign)
}

// Update handles PUT /v1/campaigns/{campaignId}
func (h *CampaignHandler) Update(w http.ResponseWriter, r *http.Request) {
	campaignID := mux.Vars(r)["campaignId"]

	var patch model.Campaign
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	campaign, err := h.campaignSvc.Update(r.Context(), campaignID, middleware.GetConsultantID(r.Context()), &patch)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, campaign)
}

// Activate handles POST /v1/campaigns/{campaignId}/activate
func (h *CampaignHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, model.CampaignStatusActive)
}

// Close handles POST /v1/campaigns/{campaignId}/close
func (h *CampaignHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, model.CampaignStatusClosed)
}

func (h *CampaignHandler) setStatus(w http.ResponseWriter, r *http.Request, status model.CampaignStatus) {
	campaignID := mux.Vars(r)["campaignId"]

	campaign, err := h.campaignSvc.SetStatus(r.Context(), campaignID, middleware.GetConsultantID(r.Context()), status)
	if err != nil {
		if err == service.ErrCampaignNotFound || err == service.ErrNotCampaignOwner {
			serviceError(w, err)
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, campaign)
}

// Delete handles DELETE /v1/campaigns/{campaignId}
func (h *CampaignHandler) Delete(w http.ResponseWriter, r *http.Request) {
	campaignID := mux.Vars(r)["campaignId"]

	if err := h.campaignSvc.Delete(r.Context(), campaignID, middleware.GetConsultantID(r.Context())); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ResponseCount handles GET /v1/campaigns/{campaignId}/responses/count
func (h *CampaignHandler) ResponseCount(w http.ResponseWriter, r *http.Request) {
	campaignID := mux.Vars(r)["campaignId"]

	count, err := h.responseSvc.Count(r.Context(), campaignID, middleware.GetConsultantID(r.Context()))
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}
