package engine

import (
	"testing"

	"altervalue/internal/model"
)

func testParams() *model.CompanyParams {
	return &model.CompanyParams{
		Headcount:                100,
		AvgGrossSalary:           40000,
		EmployerContributionRate: 0.45,
		WorkingDaysPerYear:       220,
	}
}

func TestComputeFinancialsNilWithoutParams(t *testing.T) {
	formulas := []model.FinancialFormula{{ID: "m", Expression: "1 + 1"}}
	if got := computeFinancials(nil, nil, formulas); got != nil {
		t.Fatalf("expected nil financials without company params, got %v", got)
	}
}

func TestComputeFinancialsBaseVariables(t *testing.T) {
	formulas := []model.FinancialFormula{
		{ID: "total_salary", Expression: "avg_total_salary"},
		{ID: "daily", Expression: "daily_cost"},
		{ID: "masse", Expression: "payroll"},
		{ID: "effectif", Expression: "headcount"},
		{ID: "jours", Expression: "working_days"},
	}
	out := computeFinancials(nil, testParams(), formulas)

	if out["total_salary"] != 58000 {
		t.Errorf("avg_total_salary = %v, want 58000 (40000 * 1.45)", out["total_salary"])
	}
	if out["daily"] != 263.64 {
		t.Errorf("daily_cost = %v, want 263.64 (58000/220 rounded)", out["daily"])
	}
	if out["masse"] != 5800000 {
		t.Errorf("payroll = %v, want 5800000", out["masse"])
	}
	if out["effectif"] != 100 || out["jours"] != 220 {
		t.Errorf("headcount/working_days = %v/%v, want 100/220", out["effectif"], out["jours"])
	}
}

func TestComputeFinancialsScoresAvailableAsVariables(t *testing.T) {
	scores := map[string]float64{"presenteisme_freq": 0.2}
	formulas := []model.FinancialFormula{
		{ID: "jours_perdus", Expression: "presenteisme_freq * headcount * working_days"},
	}
	out := computeFinancials(scores, testParams(), formulas)
	if out["jours_perdus"] != 4400 {
		t.Errorf("jours_perdus = %v, want 4400 (0.2 * 100 * 220)", out["jours_perdus"])
	}
}

func TestComputeFinancialsOrderedDependency(t *testing.T) {
	// B after A sees A's computed value.
	formulas := []model.FinancialFormula{
		{ID: "A", Expression: "10 + 5"},
		{ID: "B", Expression: "A * 2"},
	}
	out := computeFinancials(nil, testParams(), formulas)
	if out["A"] != 15 || out["B"] != 30 {
		t.Errorf("ordered chain = A:%v B:%v, want A:15 B:30", out["A"], out["B"])
	}

	// Forward reference: B declared before A resolves A to 0.
	reversed := []model.FinancialFormula{
		{ID: "B", Expression: "A * 2"},
		{ID: "A", Expression: "10 + 5"},
	}
	out = computeFinancials(nil, testParams(), reversed)
	if out["B"] != 0 {
		t.Errorf("forward reference B = %v, want 0", out["B"])
	}
	if out["A"] != 15 {
		t.Errorf("A = %v, want 15 (unaffected by B's failure)", out["A"])
	}
}

func TestComputeFinancialsFailureIsolatedPerFormula(t *testing.T) {
	formulas := []model.FinancialFormula{
		{ID: "ok1", Expression: "2 * 3"},
		{ID: "broken", Expression: "2 * (unknown_token"},
		{ID: "div", Expression: "1 / 0"},
		{ID: "ok2", Expression: "4 + 4"},
	}
	out := computeFinancials(nil, testParams(), formulas)
	if out["broken"] != 0 || out["div"] != 0 {
		t.Errorf("failing formulas = %v/%v, want 0/0", out["broken"], out["div"])
	}
	if out["ok1"] != 6 || out["ok2"] != 8 {
		t.Errorf("healthy formulas = %v/%v, want 6/8 (batch must not abort)", out["ok1"], out["ok2"])
	}
}

func TestComputeFinancialsRounding(t *testing.T) {
	formulas := []model.FinancialFormula{{ID: "third", Expression: "10 / 3"}}
	out := computeFinancials(nil, testParams(), formulas)
	if out["third"] != 3.33 {
		t.Errorf("10/3 = %v, want 3.33", out["third"])
	}
}

func TestComputeFinancialsDefaultWorkingDays(t *testing.T) {
	params := testParams()
	params.WorkingDaysPerYear = 0
	formulas := []model.FinancialFormula{{ID: "jours", Expression: "working_days"}}
	out := computeFinancials(nil, params, formulas)
	if out["jours"] != model.DefaultWorkingDaysPerYear {
		t.Errorf("working_days = %v, want default %d", out["jours"], model.DefaultWorkingDaysPerYear)
	}
}
