package engine

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"altervalue/internal/model"
)

func pipelineSchema() *model.SurveySchema {
	return &model.SurveySchema{
		ID:         "pipeline-test",
		SurveyType: "qvct",
		Dimensions: []model.ScoringDimension{
			{ID: "stress", Aggregation: model.AggregationMean, Source: "Q_STRESS",
				AlertThreshold: floatPtr(15), Weight: 1},
		},
		Indicators: []model.CriticalIndicator{
			{ID: "alerte_stress", Condition: "stress >= 10", Severity: model.SeverityCritical,
				Message: "stress élevé", Dimension: "stress"},
		},
		Composite: &model.CompositeScore{ID: "global", Dimensions: []string{"stress"}},
	}
}

func pipelineResponses() []model.Response {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var out []model.Response
	for i := 0; i < 10; i++ {
		out = append(out, model.Response{
			RespondentHash: fmt.Sprintf("r%d", i),
			Complete:       true,
			SubmittedAt:    base.Add(time.Duration(i) * time.Minute),
			Answers: map[string]interface{}{
				"Q_STRESS":    float64(2 * (i + 1)),
				"Q_CHOICE":    "teletravail",
				"_ts":         "2026-03-01",
				"fingerprint": "abc",
			},
		})
	}
	return out
}

func floatPtr(v float64) *float64 { return &v }

func TestComputeEndToEnd(t *testing.T) {
	res := New().Compute(Input{
		CampaignID:       "c1",
		Responses:        pipelineResponses(),
		Schema:           pipelineSchema(),
		TargetPopulation: 20,
		Thresholds:       model.AnonymityThresholds{General: 5, Sensitive: 5},
	})

	if res.ResponseCount != 10 {
		t.Fatalf("response count = %d, want 10", res.ResponseCount)
	}
	stress := res.Dimensions["stress"]
	if stress.Score != 11.0 || stress.RespondentCount != 10 {
		t.Errorf("stress = %+v, want score 11.0 over 10 respondents", stress)
	}
	if stress.Signal != model.SignalYellow {
		t.Errorf("stress signal = %s, want yellow (11 against threshold 15)", stress.Signal)
	}
	if res.GlobalScore == nil || res.GlobalScore.Score != 11.0 {
		t.Errorf("global score = %+v, want 11.0", res.GlobalScore)
	}
	if res.ParticipationRate == nil || *res.ParticipationRate != 0.5 {
		t.Errorf("participation = %v, want 0.5 (10 of 20)", res.ParticipationRate)
	}
	if _, ok := res.Indicators["alerte_stress"]; !ok {
		t.Error("alerte_stress should trigger at score 11")
	}
	if len(res.Matrix) != 1 {
		t.Fatalf("matrix = %+v, want one entry", res.Matrix)
	}
	entry := res.Matrix[0]
	if entry.AffectedRate != 0.3 || entry.Criticality != 3.3 || entry.Priority != 1 {
		t.Errorf("matrix entry = %+v, want affectedRate 0.3, criticality 3.3, priority 1", entry)
	}
	if res.Narrative == "" {
		t.Error("narrative must be generated")
	}
}

func TestComputePartiallyAnsweredBatchBacksAnonymity(t *testing.T) {
	// 20 respondents, only half of whom answered Q_STRESS numerically. The
	// whole batch backs the dimension, so the general floor compares
	// against 20, not against the 10 measured values.
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var responses []model.Response
	for i := 0; i < 20; i++ {
		var value interface{}
		if i < 10 {
			value = float64(2 * (i + 1))
		}
		responses = append(responses, model.Response{
			RespondentHash: fmt.Sprintf("r%d", i),
			Complete:       true,
			SubmittedAt:    base.Add(time.Duration(i) * time.Minute),
			Answers:        map[string]interface{}{"Q_STRESS": value},
		})
	}

	in := Input{
		CampaignID: "c1",
		Responses:  responses,
		Schema:     pipelineSchema(),
		Thresholds: model.AnonymityThresholds{General: 15, Sensitive: 30},
	}
	res := New().Compute(in)
	stress := res.Dimensions["stress"]
	if stress.IsConfidential {
		t.Errorf("20 respondents meet the floor of 15, dimension must not be confidential: %+v", stress)
	}
	if stress.Score != 11.0 || stress.RespondentCount != 20 {
		t.Errorf("stress = %+v, want score 11.0 backed by 20 respondents", stress)
	}

	in.Thresholds = model.AnonymityThresholds{General: 25, Sensitive: 30}
	res = New().Compute(in)
	stress = res.Dimensions["stress"]
	if !stress.IsConfidential || stress.Score != 0 || stress.Signal != model.SignalRed {
		t.Errorf("20 respondents under a floor of 25 must be suppressed: %+v", stress)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	responses := pipelineResponses()
	reversed := make([]model.Response, len(responses))
	for i, r := range responses {
		reversed[len(responses)-1-i] = r
	}
	in := Input{
		CampaignID:       "c1",
		Schema:           pipelineSchema(),
		TargetPopulation: 20,
		Thresholds:       model.AnonymityThresholds{General: 5, Sensitive: 5},
	}
	in.Responses = responses
	first := New().Compute(in)
	in.Responses = reversed
	second := New().Compute(in)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("same responses in a different storage order must yield an identical result:\n%+v\n%+v", first, second)
	}
}

func TestComputeModuleGating(t *testing.T) {
	schema := pipelineSchema()
	schema.Dimensions = append(schema.Dimensions, model.ScoringDimension{
		ID: "exposition_tms", Aggregation: model.AggregationMean, Source: "Q_STRESS", Module: 2,
	})
	in := Input{
		CampaignID: "c1",
		Responses:  pipelineResponses(),
		Schema:     schema,
		Thresholds: model.AnonymityThresholds{General: 5, Sensitive: 5},
	}

	res := New().Compute(in)
	if _, ok := res.Dimensions["exposition_tms"]; ok {
		t.Error("module 2 dimension must be absent when module 2 is inactive")
	}
	if _, ok := res.Dimensions["stress"]; !ok {
		t.Error("module 0 dimension must always be computed")
	}

	in.ActiveModules = []int{2}
	res = New().Compute(in)
	if _, ok := res.Dimensions["exposition_tms"]; !ok {
		t.Error("module 2 dimension must be computed when module 2 is active")
	}
}

func TestComputeFiltersAndDeduplicatesResponses(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	responses := []model.Response{
		{RespondentHash: "dup", Complete: true, SubmittedAt: base.Add(time.Hour),
			Answers: map[string]interface{}{"Q_STRESS": 20.0}},
		{RespondentHash: "dup", Complete: true, SubmittedAt: base,
			Answers: map[string]interface{}{"Q_STRESS": 4.0}},
		{RespondentHash: "draft", Complete: false, SubmittedAt: base,
			Answers: map[string]interface{}{"Q_STRESS": 99.0}},
		{RespondentHash: "gone", Complete: true, Archived: true, SubmittedAt: base,
			Answers: map[string]interface{}{"Q_STRESS": 99.0}},
		{RespondentHash: "solo", Complete: true, SubmittedAt: base,
			Answers: map[string]interface{}{"Q_STRESS": 6.0}},
	}
	res := New().Compute(Input{
		CampaignID: "c1",
		Responses:  responses,
		Schema:     pipelineSchema(),
		Thresholds: model.AnonymityThresholds{General: 1, Sensitive: 1},
	})

	if res.ResponseCount != 2 {
		t.Fatalf("response count = %d, want 2 (duplicate, draft and archived excluded)", res.ResponseCount)
	}
	// Earliest submission wins the duplicate: (4 + 6) / 2.
	if got := res.Dimensions["stress"].Score; got != 5.0 {
		t.Errorf("stress = %v, want 5.0", got)
	}
}

func TestComputeStripsMetadataFromInsights(t *testing.T) {
	res := New().Compute(Input{
		CampaignID: "c1",
		Responses:  pipelineResponses(),
		Schema:     pipelineSchema(),
		Thresholds: model.AnonymityThresholds{General: 5, Sensitive: 5},
	})

	if _, ok := res.Insights["_ts"]; ok {
		t.Error("underscore-prefixed keys must never surface in insights")
	}
	if _, ok := res.Insights["fingerprint"]; ok {
		t.Error("fingerprint must never surface in insights")
	}
	choice, ok := res.Insights["Q_CHOICE"]
	if !ok || choice.Count != 10 || choice.Values["teletravail"] != 10 {
		t.Errorf("Q_CHOICE insight = %+v, want count 10", choice)
	}
}

func TestComputeDepartmentBreakdowns(t *testing.T) {
	responses := pipelineResponses()
	for i := range responses {
		if i < 6 {
			responses[i].Department = "production"
		} else {
			responses[i].Department = "support"
		}
	}
	res := New().Compute(Input{
		CampaignID: "c1",
		Responses:  responses,
		Schema:     pipelineSchema(),
		Thresholds: model.AnonymityThresholds{General: 5, Sensitive: 5},
	})

	production, ok := res.Departments["production"]
	if !ok || production.ResponseCount != 6 {
		t.Fatalf("production breakdown = %+v, want 6 respondents", production)
	}
	// Values 2..12 for the first six respondents.
	if production.Scores["stress"] != 7.0 {
		t.Errorf("production stress = %v, want 7.0", production.Scores["stress"])
	}
	support := res.Departments["support"]
	if !support.IsConfidential || support.Scores["stress"] != 0 {
		t.Errorf("support (4 respondents, floor 5) must be suppressed: %+v", support)
	}
}

func TestComputeZeroResponses(t *testing.T) {
	res := New().Compute(Input{
		CampaignID: "c1",
		Schema:     pipelineSchema(),
		Thresholds: model.DefaultThresholds(),
	})

	if res.ResponseCount != 0 {
		t.Errorf("response count = %d, want 0", res.ResponseCount)
	}
	if !res.IsConfidential {
		t.Error("zero responses are below any floor, result must be confidential")
	}
	if res.Narrative == "" {
		t.Error("confidential result still carries the insufficiency narrative")
	}
}

func TestComputeParticipationRateCapped(t *testing.T) {
	res := New().Compute(Input{
		CampaignID:       "c1",
		Responses:        pipelineResponses(),
		Schema:           pipelineSchema(),
		TargetPopulation: 5,
		Thresholds:       model.AnonymityThresholds{General: 5, Sensitive: 5},
	})
	if res.ParticipationRate == nil || *res.ParticipationRate != 1 {
		t.Errorf("participation = %v, want capped at 1", res.ParticipationRate)
	}
}
