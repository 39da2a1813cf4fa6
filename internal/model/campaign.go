package model

import "time"

// CampaignStatus is the lifecycle state of a survey campaign.
type CampaignStatus string

const (
	CampaignStatusDraft  CampaignStatus = "draft"
	CampaignStatusActive CampaignStatus = "active"
	CampaignStatusClosed CampaignStatus = "closed"
)

// Campaign is one survey run inside a client-company mission. Respondents
// submit through the public access code; the consultant reads gated results.
type Campaign struct {
	ID           string         `json:"id" bson:"_id,omitempty"`
	ConsultantID string         `json:"consultantId" bson:"consultantId"`
	MissionID    string         `json:"missionId" bson:"missionId"`
	CompanyName  string         `json:"companyName" bson:"companyName"`
	Title        string         `json:"title" bson:"title"`
	SurveyType   string         `json:"surveyType" bson:"surveyType"`
	AccessCode   string         `json:"accessCode" bson:"accessCode"`
	Status       CampaignStatus `json:"status" bson:"status"`

	// TargetPopulation is the number of employees invited; 0 means unknown
	// (participation rate is then omitted from results).
	TargetPopulation int `json:"targetPopulation,omitempty" bson:"targetPopulation,omitempty"`

	// ActiveModules gates module-specific dimensions and financials. Empty
	// means "core module only".
	ActiveModules []int `json:"activeModules,omitempty" bson:"activeModules,omitempty"`

	Thresholds AnonymityThresholds `json:"thresholds" bson:"thresholds"`
	Params     *CompanyParams      `json:"params,omitempty" bson:"params,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
