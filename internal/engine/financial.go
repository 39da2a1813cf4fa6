package engine

import (
	"altervalue/internal/expr"
	"altervalue/internal/model"
)

// Derived base variables available to every financial formula.
const (
	varAvgTotalSalary = "avg_total_salary"
	varDailyCost      = "daily_cost"
	varPayroll        = "payroll"
	varHeadcount      = "headcount"
	varWorkingDays    = "working_days"
)

// computeFinancials evaluates the financial formulas in declaration order.
// Each formula's result becomes a variable for all subsequent formulas, so
// a forward reference (B declared before A but referencing A) resolves to 0.
// A failing formula yields 0 for that metric only. Returns nil when no
// company parameters were supplied: financial metrics are opt-in per call.
func computeFinancials(scores map[string]float64, params *model.CompanyParams, formulas []model.FinancialFormula) map[string]float64 {
	if params == nil {
		return nil
	}

	vars := make(map[string]float64, len(scores)+5)
	for id, v := range scores {
		vars[id] = v
	}
	days := params.WorkingDaysPerYear
	if days <= 0 {
		days = model.DefaultWorkingDaysPerYear
	}
	vars[varAvgTotalSalary] = params.AvgTotalSalary()
	vars[varDailyCost] = params.DailyCost()
	vars[varPayroll] = params.Payroll()
	vars[varHeadcount] = float64(params.Headcount)
	vars[varWorkingDays] = float64(days)

	out := make(map[string]float64, len(formulas))
	for _, f := range formulas {
		v, err := expr.Eval(f.Expression, vars)
		if err != nil {
			v = 0
		}
		v = round2(v)
		out[f.ID] = v
		vars[f.ID] = v
	}
	return out
}
