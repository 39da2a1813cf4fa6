// Package engine computes survey analytics: dimension scores, critical
// indicator alerts, financial metrics and the criticality matrix, behind a
// k-anonymity gate. The engine is pure and CPU-bound: it performs no
// network, file or database I/O, and the same input always produces the
// same output.
package engine

import (
	"sort"

	"altervalue/internal/model"
)

// Engine evaluates a survey schema over a batch of responses.
type Engine struct{}

// New creates an engine instance.
func New() *Engine {
	return &Engine{}
}

// Input is one complete, materialized calculation request.
type Input struct {
	CampaignID       string
	Responses        []model.Response
	Schema           *model.SurveySchema
	Params           *model.CompanyParams
	TargetPopulation int
	ActiveModules    []int
	Thresholds       model.AnonymityThresholds
}

// Compute runs the full pipeline: normalization, scoring, indicators,
// financials, matrix, insights, then the anonymity gate and the narrative.
// The gate is applied here, unconditionally, so no ungated result can cross
// the engine boundary.
func (e *Engine) Compute(in Input) *model.CalculationResult {
	schema := in.Schema
	sentinel := schema.SentinelValue()
	responses := usableResponses(in.Responses)
	active := moduleSet(in.ActiveModules)

	dims := make([]model.ScoringDimension, 0, len(schema.Dimensions))
	for _, d := range schema.Dimensions {
		if d.Module == 0 || active[d.Module] {
			dims = append(dims, d)
		}
	}
	indicators := make([]model.CriticalIndicator, 0, len(schema.Indicators))
	for _, ind := range schema.Indicators {
		if ind.Module == 0 || active[ind.Module] {
			indicators = append(indicators, ind)
		}
	}
	formulas := make([]model.FinancialFormula, 0, len(schema.Financials))
	for _, f := range schema.Financials {
		if f.Module == 0 || active[f.Module] {
			formulas = append(formulas, f)
		}
	}

	computations := computeScores(responses, dims, sentinel)
	scores := make(map[string]float64, len(computations))
	for id, c := range computations {
		scores[id] = c.score
	}

	result := &model.CalculationResult{
		CampaignID:    in.CampaignID,
		ResponseCount: len(responses),
		Dimensions:    make(map[string]model.DimensionResult, len(dims)),
		Indicators:    evaluateIndicators(scores, indicators),
	}

	for _, dim := range dims {
		c := computations[dim.ID]
		result.Dimensions[dim.ID] = model.DimensionResult{
			Score:           model.Score(c.score),
			RespondentCount: c.count,
			Signal:          classifySignal(c.score, dim.AlertThreshold),
			Sensitive:       dim.Sensitive,
		}
	}

	if composite, ok := computeComposite(computations, dims, schema.Composite); ok {
		scores[schema.Composite.ID] = composite
		result.GlobalScore = &model.DimensionResult{
			Score:           model.Score(composite),
			RespondentCount: len(responses),
			Signal:          model.SignalGreen,
		}
	}

	if in.TargetPopulation > 0 {
		rate := float64(len(responses)) / float64(in.TargetPopulation)
		if rate > 1 {
			rate = 1
		}
		r := model.Ratio(round2(rate))
		result.ParticipationRate = &r
	}

	result.Financials = computeFinancials(scores, in.Params, formulas)
	result.Departments = buildDepartments(responses, dims, sentinel)
	result.Matrix = buildMatrix(dims, computations)
	result.Insights = buildInsights(responses)

	ApplyAnonymityGate(result, schema, in.Thresholds)
	result.Narrative = buildNarrative(result)
	return result
}

// usableResponses drops incomplete and archived submissions and enforces
// the one-response-per-respondent invariant, keeping the earliest
// submission per hash. Ordering is normalized so the output never depends
// on storage order.
func usableResponses(responses []model.Response) []model.Response {
	sorted := make([]model.Response, len(responses))
	copy(sorted, responses)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].SubmittedAt.Equal(sorted[j].SubmittedAt) {
			return sorted[i].SubmittedAt.Before(sorted[j].SubmittedAt)
		}
		return sorted[i].RespondentHash < sorted[j].RespondentHash
	})

	seen := make(map[string]bool, len(sorted))
	out := make([]model.Response, 0, len(sorted))
	for _, r := range sorted {
		if !r.Complete || r.Archived {
			continue
		}
		if r.RespondentHash != "" {
			if seen[r.RespondentHash] {
				continue
			}
			seen[r.RespondentHash] = true
		}
		out = append(out, r)
	}
	return out
}

func moduleSet(modules []int) map[int]bool {
	set := make(map[int]bool, len(modules))
	for _, m := range modules {
		set[m] = true
	}
	return set
}

// classifySignal grades a score against the dimension's alert threshold.
func classifySignal(score float64, alert *float64) model.Signal {
	if alert == nil {
		return model.SignalGreen
	}
	switch t := *alert; {
	case score >= t:
		return model.SignalRed
	case score >= 0.75*t:
		return model.SignalOrange
	case score >= 0.5*t:
		return model.SignalYellow
	default:
		return model.SignalGreen
	}
}

// buildMatrix crosses severity (score) with frequency (share of respondents
// at or above the alert threshold) for every direct dimension that carries a
// threshold. Entries are ranked by criticality, ties broken by dimension id.
func buildMatrix(dims []model.ScoringDimension, computations map[string]dimensionComputation) []model.MatrixEntry {
	var entries []model.MatrixEntry
	for _, dim := range dims {
		if dim.AlertThreshold == nil || dim.Formula != "" {
			continue
		}
		c := computations[dim.ID]
		entries = append(entries, model.MatrixEntry{
			Dimension:    dim.ID,
			Score:        model.Score(c.score),
			AffectedRate: model.Ratio(c.affectedRate),
			Criticality:  model.Score(round2(c.score * c.affectedRate)),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Criticality != entries[j].Criticality {
			return entries[i].Criticality > entries[j].Criticality
		}
		return entries[i].Dimension < entries[j].Dimension
	})
	for i := range entries {
		entries[i].Priority = i + 1
	}
	return entries
}

// buildDepartments recomputes the dimension scores per declared department.
// Responses without a department stay out of every breakdown.
func buildDepartments(responses []model.Response, dims []model.ScoringDimension, sentinel string) map[string]model.DepartmentBreakdown {
	groups := make(map[string][]model.Response)
	for _, r := range responses {
		if r.Department == "" {
			continue
		}
		groups[r.Department] = append(groups[r.Department], r)
	}
	if len(groups) == 0 {
		return nil
	}

	out := make(map[string]model.DepartmentBreakdown, len(groups))
	for dept, group := range groups {
		computations := computeScores(group, dims, sentinel)
		scores := make(map[string]model.Score, len(computations))
		for id, c := range computations {
			scores[id] = model.Score(c.score)
		}
		out[dept] = model.DepartmentBreakdown{
			ResponseCount: len(group),
			Scores:        scores,
		}
	}
	return out
}

// buildInsights aggregates qualitative (string and multi-choice) answers
// into per-question value histograms.
func buildInsights(responses []model.Response) map[string]model.QuestionInsight {
	insights := make(map[string]model.QuestionInsight)
	record := func(question, value string) {
		insight, ok := insights[question]
		if !ok {
			insight = model.QuestionInsight{Values: make(map[string]int)}
		}
		insight.Count++
		if value != "" {
			insight.Values[value]++
		}
		insights[question] = insight
	}
	for _, r := range responses {
		for _, item := range model.NormalizeAnswers(r.Answers) {
			if item.Skipped {
				continue
			}
			switch v := item.Value.(type) {
			case string:
				record(item.QuestionID, v)
			case []interface{}:
				recorded := false
				for _, elem := range v {
					if s, ok := elem.(string); ok {
						if !recorded {
							record(item.QuestionID, s)
							recorded = true
						} else {
							insight := insights[item.QuestionID]
							insight.Values[s]++
							insights[item.QuestionID] = insight
						}
					}
				}
			}
		}
	}
	if len(insights) == 0 {
		return nil
	}
	return insights
}
