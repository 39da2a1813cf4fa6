package model

import (
	"sort"
	"strings"
	"time"
)

// Response is one respondent's anonymous submission for a campaign.
// RespondentHash is a one-way hash computed client-side; it is never
// reversible to a person. At most one response exists per
// (campaign, respondentHash) pair.
type Response struct {
	ID             string                 `json:"id" bson:"_id,omitempty"`
	CampaignID     string                 `json:"campaignId" bson:"campaignId"`
	RespondentHash string                 `json:"respondentHash" bson:"respondentHash"`
	Department     string                 `json:"department,omitempty" bson:"department,omitempty"`
	Answers        map[string]interface{} `json:"answers" bson:"answers"`
	Complete       bool                   `json:"complete" bson:"complete"`
	Synthetic      bool                   `json:"synthetic" bson:"synthetic"`
	Archived       bool                   `json:"archived" bson:"archived"`
	SubmittedAt    time.Time              `json:"submittedAt" bson:"submittedAt"`
}

// AnswerItem is a normalized (question, value) pair extracted from a raw
// answer payload. Skipped is true when the question was left unanswered.
type AnswerItem struct {
	QuestionID string
	Value      interface{}
	Skipped    bool
}

// NormalizeAnswers turns a raw answer map into an ordered list of answer
// items. Internal metadata keys (anything prefixed with "_", plus the
// client fingerprint) are stripped. Values are passed through untouched;
// type checking against the schema happens at aggregation time, where
// wrong-typed values are simply excluded.
func NormalizeAnswers(raw map[string]interface{}) []AnswerItem {
	items := make([]AnswerItem, 0, len(raw))
	for key, value := range raw {
		if key == "" || strings.HasPrefix(key, "_") || key == "fingerprint" {
			continue
		}
		items = append(items, AnswerItem{
			QuestionID: key,
			Value:      value,
			Skipped:    value == nil,
		})
	}
	// Map iteration order is random; sort for deterministic downstream output.
	sort.Slice(items, func(i, j int) bool { return items[i].QuestionID < items[j].QuestionID })
	return items
}
