package engine

import (
	"altervalue/internal/expr"
	"altervalue/internal/model"
)

// ApplyAnonymityGate suppresses every result segment whose backing
// respondent count is below the k-anonymity floor. Sensitive segments
// (health, presenteeism, distress, TMS) are held to the stricter floor.
// The transform is idempotent: gating an already-gated result changes
// nothing. It is applied inside Compute, unconditionally, before the result
// ever leaves the engine, so callers never get to skip it.
func ApplyAnonymityGate(res *model.CalculationResult, schema *model.SurveySchema, thresholds model.AnonymityThresholds) *model.CalculationResult {
	th := thresholds.Normalized()

	dimsByID := make(map[string]model.ScoringDimension, len(schema.Dimensions))
	for _, d := range schema.Dimensions {
		dimsByID[d.ID] = d
	}

	// Sensitive dimensions suppressed by the stricter floor: financial
	// metrics derived from them are dropped entirely. Absence, not zero,
	// since a zero would read as "measured zero cost".
	suppressedSensitive := make(map[string]bool)

	for id, dr := range res.Dimensions {
		floor := th.General
		if dr.Sensitive {
			floor = th.Sensitive
		}
		if dr.RespondentCount < floor {
			dr.Score = 0
			dr.IsConfidential = true
			// Forcing the most alarming signal avoids leaking the direction
			// of a suppressed trend through a stale color.
			dr.Signal = model.SignalRed
			res.Dimensions[id] = dr
			if dr.Sensitive {
				suppressedSensitive[id] = true
			}
		}
	}

	if res.GlobalScore != nil && res.ResponseCount < th.General {
		g := *res.GlobalScore
		g.Score = 0
		g.IsConfidential = true
		g.Signal = model.SignalRed
		res.GlobalScore = &g
	}

	// Matrix entries inherit confidentiality from their backing dimension.
	for i, entry := range res.Matrix {
		dr, ok := res.Dimensions[entry.Dimension]
		if !ok || dr.IsConfidential {
			entry.Score = 0
			entry.AffectedRate = 0
			entry.Criticality = 0
			entry.IsConfidential = true
			res.Matrix[i] = entry
		}
	}

	// An indicator keyed to a confidential dimension is removed outright:
	// the existence of an alert about a small group can deanonymize it.
	for id := range res.Indicators {
		if indicatorIsConfidential(res, schema, dimsByID, id) {
			delete(res.Indicators, id)
		}
	}

	dropDerivedFinancials(res, schema, suppressedSensitive, th)

	// A department is a sub-population segment: zeroed below the general
	// floor, and stripped of sensitive dimensions below the stricter one.
	for dept, bd := range res.Departments {
		if bd.ResponseCount < th.General {
			for id := range bd.Scores {
				bd.Scores[id] = 0
			}
			bd.IsConfidential = true
			res.Departments[dept] = bd
			continue
		}
		if bd.ResponseCount < th.Sensitive {
			for _, d := range schema.Dimensions {
				if d.Sensitive {
					delete(bd.Scores, d.ID)
				}
			}
			res.Departments[dept] = bd
		}
	}

	// Qualitative aggregates follow the general floor per question.
	for q, insight := range res.Insights {
		if insight.Count < th.General {
			delete(res.Insights, q)
		}
	}

	if res.ResponseCount < th.General {
		res.IsConfidential = true
		if res.ParticipationRate != nil {
			zero := model.Ratio(0)
			res.ParticipationRate = &zero
		}
		res.Indicators = make(map[string]model.IndicatorAlert)
		res.Financials = nil
		res.Departments = nil
		res.Insights = nil
	}

	return res
}

func indicatorIsConfidential(res *model.CalculationResult, schema *model.SurveySchema, dims map[string]model.ScoringDimension, id string) bool {
	var def *model.CriticalIndicator
	for i := range schema.Indicators {
		if schema.Indicators[i].ID == id {
			def = &schema.Indicators[i]
			break
		}
	}
	if def == nil {
		return false
	}

	provenance := []string{}
	if def.Dimension != "" {
		provenance = append(provenance, def.Dimension)
	} else {
		for _, v := range expr.Vars(def.Condition) {
			if _, ok := dims[v]; ok {
				provenance = append(provenance, v)
			}
		}
	}
	for _, dimID := range provenance {
		dr, ok := res.Dimensions[dimID]
		if !ok || dr.IsConfidential {
			return true
		}
	}
	return false
}

// dropDerivedFinancials removes metrics whose formula references a
// suppressed sensitive dimension, directly or through an earlier dropped
// metric, plus metrics marked sensitive when the stricter floor is unmet.
func dropDerivedFinancials(res *model.CalculationResult, schema *model.SurveySchema, suppressedSensitive map[string]bool, th model.AnonymityThresholds) {
	if res.Financials == nil {
		return
	}
	dropped := make(map[string]bool)
	for _, f := range schema.Financials {
		if _, ok := res.Financials[f.ID]; !ok {
			continue
		}
		drop := f.Sensitive && res.ResponseCount < th.Sensitive
		for _, v := range expr.Vars(f.Expression) {
			if suppressedSensitive[v] || dropped[v] {
				drop = true
				break
			}
		}
		if drop {
			dropped[f.ID] = true
			delete(res.Financials, f.ID)
		}
	}
}
