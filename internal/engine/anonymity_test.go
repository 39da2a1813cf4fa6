package engine

import (
	"reflect"
	"testing"

	"altervalue/internal/model"
)

func gateSchema() *model.SurveySchema {
	return &model.SurveySchema{
		ID: "gate-test",
		Dimensions: []model.ScoringDimension{
			{ID: "stress", Aggregation: model.AggregationMean, Source: "Q_STRESS"},
			{ID: "detresse", Aggregation: model.AggregationMean, Source: "Q_DETRESSE", Sensitive: true},
		},
		Indicators: []model.CriticalIndicator{
			{ID: "alerte_stress", Condition: "stress >= 7", Dimension: "stress"},
			{ID: "alerte_detresse", Condition: "detresse >= 5"},
		},
		Financials: []model.FinancialFormula{
			{ID: "cout_detresse", Expression: "detresse * headcount * daily_cost", Sensitive: true},
			{ID: "cout_total", Expression: "cout_detresse * 1.2", Sensitive: true},
			{ID: "effectif", Expression: "headcount"},
		},
	}
}

func gateResult() *model.CalculationResult {
	rate := model.Ratio(0.5)
	return &model.CalculationResult{
		CampaignID:        "c1",
		ResponseCount:     20,
		ParticipationRate: &rate,
		Dimensions: map[string]model.DimensionResult{
			"stress":   {Score: 7.5, RespondentCount: 20, Signal: model.SignalRed},
			"detresse": {Score: 6.0, RespondentCount: 20, Signal: model.SignalOrange, Sensitive: true},
		},
		GlobalScore: &model.DimensionResult{Score: 6.8, RespondentCount: 20, Signal: model.SignalOrange},
		Indicators: map[string]model.IndicatorAlert{
			"alerte_stress":   {Severity: model.SeverityHigh},
			"alerte_detresse": {Severity: model.SeverityCritical},
		},
		Financials: map[string]float64{
			"cout_detresse": 12000,
			"cout_total":    14400,
			"effectif":      100,
		},
		Matrix: []model.MatrixEntry{
			{Dimension: "detresse", Score: 6.0, AffectedRate: 0.4, Criticality: 2.4, Priority: 1},
			{Dimension: "stress", Score: 7.5, AffectedRate: 0.3, Criticality: 2.25, Priority: 2},
		},
		Departments: map[string]model.DepartmentBreakdown{
			"production": {ResponseCount: 16, Scores: map[string]model.Score{"stress": 7.0, "detresse": 6.5}},
			"rh":         {ResponseCount: 4, Scores: map[string]model.Score{"stress": 3.0}},
		},
		Insights: map[string]model.QuestionInsight{
			"Q_VERBATIM": {Count: 20, Values: map[string]int{"ok": 20}},
			"Q_RARE":     {Count: 3, Values: map[string]int{"x": 3}},
		},
	}
}

func TestGateAboveAllFloorsPassesThrough(t *testing.T) {
	res := gateResult()
	ApplyAnonymityGate(res, gateSchema(), model.AnonymityThresholds{General: 5, Sensitive: 10})

	if res.IsConfidential {
		t.Fatal("campaign above floors must not be confidential")
	}
	if res.Dimensions["detresse"].IsConfidential || res.Dimensions["detresse"].Score != 6.0 {
		t.Errorf("sensitive dimension above its floor must survive intact: %+v", res.Dimensions["detresse"])
	}
	if len(res.Indicators) != 2 || len(res.Financials) != 3 {
		t.Errorf("no segment should be suppressed, got indicators=%v financials=%v", res.Indicators, res.Financials)
	}
	if _, ok := res.Insights["Q_RARE"]; ok {
		t.Error("insight below the general floor must be removed even when the campaign passes")
	}
}

func TestGateSensitiveDimensionHeldToStricterFloor(t *testing.T) {
	res := gateResult()
	// 20 respondents clear the general floor of 15 but not the sensitive 30.
	ApplyAnonymityGate(res, gateSchema(), model.DefaultThresholds())

	stress := res.Dimensions["stress"]
	if stress.IsConfidential {
		t.Errorf("non-sensitive dimension at 20 respondents must pass the general floor: %+v", stress)
	}
	detresse := res.Dimensions["detresse"]
	if !detresse.IsConfidential || detresse.Score != 0 || detresse.Signal != model.SignalRed {
		t.Errorf("sensitive dimension at 20 respondents must be zeroed and flagged red: %+v", detresse)
	}
}

func TestGateIndicatorRemovalFollowsProvenance(t *testing.T) {
	res := gateResult()
	ApplyAnonymityGate(res, gateSchema(), model.DefaultThresholds())

	// alerte_detresse has no Dimension field: provenance comes from the
	// condition's variables, which include the suppressed detresse dimension.
	if _, ok := res.Indicators["alerte_detresse"]; ok {
		t.Error("indicator over a suppressed dimension must be removed, not blanked")
	}
	if _, ok := res.Indicators["alerte_stress"]; !ok {
		t.Error("indicator over a surviving dimension must be kept")
	}
}

func TestGateDropsSensitiveAndDerivedFinancials(t *testing.T) {
	res := gateResult()
	ApplyAnonymityGate(res, gateSchema(), model.DefaultThresholds())

	if _, ok := res.Financials["cout_detresse"]; ok {
		t.Error("sensitive metric below the sensitive floor must be absent, not zero")
	}
	// cout_total does not reference detresse directly but chains off the
	// dropped cout_detresse.
	if _, ok := res.Financials["cout_total"]; ok {
		t.Error("metric derived from a dropped metric must be dropped transitively")
	}
	if _, ok := res.Financials["effectif"]; !ok {
		t.Error("non-sensitive metric must survive")
	}
}

func TestGateMatrixInheritsConfidentiality(t *testing.T) {
	res := gateResult()
	ApplyAnonymityGate(res, gateSchema(), model.DefaultThresholds())

	for _, entry := range res.Matrix {
		switch entry.Dimension {
		case "detresse":
			if !entry.IsConfidential || entry.Score != 0 || entry.AffectedRate != 0 || entry.Criticality != 0 {
				t.Errorf("suppressed dimension's matrix row must be zeroed: %+v", entry)
			}
		case "stress":
			if entry.IsConfidential || entry.Score != 7.5 {
				t.Errorf("surviving dimension's matrix row must be intact: %+v", entry)
			}
		}
	}
}

func TestGateDepartmentBreakdowns(t *testing.T) {
	res := gateResult()
	ApplyAnonymityGate(res, gateSchema(), model.DefaultThresholds())

	rh := res.Departments["rh"]
	if !rh.IsConfidential || rh.Scores["stress"] != 0 {
		t.Errorf("department below the general floor must be zeroed: %+v", rh)
	}
	production := res.Departments["production"]
	if production.IsConfidential || production.Scores["stress"] != 7.0 {
		t.Errorf("department above the general floor must keep its scores: %+v", production)
	}
	// 16 respondents clear the general floor of 15 but not the sensitive 30:
	// the sensitive dimension disappears from the breakdown.
	if _, ok := production.Scores["detresse"]; ok {
		t.Error("sensitive dimension must be absent from a department below the sensitive floor")
	}
}

func TestGateWholeCampaignBelowGeneralFloor(t *testing.T) {
	res := gateResult()
	res.ResponseCount = 10
	for id, dr := range res.Dimensions {
		dr.RespondentCount = 10
		res.Dimensions[id] = dr
	}
	ApplyAnonymityGate(res, gateSchema(), model.DefaultThresholds())

	if !res.IsConfidential {
		t.Fatal("campaign below the general floor must be confidential")
	}
	if res.ParticipationRate == nil || *res.ParticipationRate != 0 {
		t.Errorf("participation rate must be zeroed, got %v", res.ParticipationRate)
	}
	if len(res.Indicators) != 0 {
		t.Errorf("indicators must be emptied, got %v", res.Indicators)
	}
	if res.Financials != nil || res.Insights != nil || res.Departments != nil {
		t.Errorf("financials, insights and departments must be removed, got %v / %v / %v", res.Financials, res.Insights, res.Departments)
	}
	if res.GlobalScore == nil || !res.GlobalScore.IsConfidential || res.GlobalScore.Score != 0 {
		t.Errorf("global score must be zeroed and flagged, got %+v", res.GlobalScore)
	}
	for id, dr := range res.Dimensions {
		if !dr.IsConfidential || dr.Score != 0 {
			t.Errorf("dimension %s must be suppressed, got %+v", id, dr)
		}
	}
}

func TestGateIsIdempotent(t *testing.T) {
	schema := gateSchema()
	th := model.DefaultThresholds()

	once := gateResult()
	ApplyAnonymityGate(once, schema, th)
	twice := gateResult()
	ApplyAnonymityGate(twice, schema, th)
	ApplyAnonymityGate(twice, schema, th)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("gate must be idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}
