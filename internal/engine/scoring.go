package engine

import (
	"math"

	"altervalue/internal/expr"
	"altervalue/internal/model"
)

// dimensionComputation is the unfiltered per-dimension outcome: the score,
// the number of respondents backing it, and the share of measured
// respondents at or above the dimension's alert threshold (feeds the
// criticality matrix). The backing count is the whole response batch;
// respondents who left the source question null still back the segment.
// Only mean_among_affected narrows it, to its affected subset.
type dimensionComputation struct {
	score        float64
	count        int
	affectedRate float64
}

// round2 rounds to 2 decimals (half away from zero) and collapses any
// non-finite intermediate to 0 so NaN/Inf can never reach the output.
func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

// numericValue extracts a float from a raw answer value. Strings, arrays and
// nils are not numeric; they are silently excluded from aggregation.
func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// isAffected reports whether an answer marks the respondent as affected:
// present and not the schema's "unaffected" sentinel.
func isAffected(v interface{}, sentinel string) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s != sentinel
	}
	return true
}

// answerIndex builds one lookup map per response, metadata stripped,
// skipped answers removed.
func answerIndex(responses []model.Response) []map[string]interface{} {
	index := make([]map[string]interface{}, 0, len(responses))
	for _, r := range responses {
		m := make(map[string]interface{})
		for _, item := range model.NormalizeAnswers(r.Answers) {
			if !item.Skipped {
				m[item.QuestionID] = item.Value
			}
		}
		index = append(index, m)
	}
	return index
}

// computeScores runs the two-pass evaluation over all dimensions.
//
// Pass 1 computes every non-formula dimension. Pass 2 evaluates formula
// dimensions in declaration order, with every already-computed dimension id
// available as a variable; unresolved references and evaluation failures
// fail closed to 0.
func computeScores(responses []model.Response, dims []model.ScoringDimension, sentinel string) map[string]dimensionComputation {
	answers := answerIndex(responses)
	out := make(map[string]dimensionComputation, len(dims))

	for _, dim := range dims {
		if dim.Formula != "" {
			continue
		}
		out[dim.ID] = computeDirectDimension(answers, dim, sentinel)
	}

	// Pass 2: formula dimensions, declaration order.
	vars := make(map[string]float64, len(out))
	for id, c := range out {
		vars[id] = c.score
	}
	for _, dim := range dims {
		if dim.Formula == "" {
			continue
		}
		v, err := expr.Eval(dim.Formula, vars)
		if err != nil {
			v = 0
		}
		v = round2(v)
		vars[dim.ID] = v
		out[dim.ID] = dimensionComputation{score: v, count: len(responses)}
	}
	return out
}

func computeDirectDimension(answers []map[string]interface{}, dim model.ScoringDimension, sentinel string) dimensionComputation {
	switch {
	case dim.Source != "" && dim.Aggregation == model.AggregationPercentageAffected:
		return computePercentageAffected(answers, dim.Source, sentinel)
	case dim.Source != "" && dim.Aggregation == model.AggregationMeanAmongAffected:
		return computeMeanAmongAffected(answers, dim, sentinel)
	case dim.Source != "":
		return computeSingleQuestion(answers, dim)
	default:
		return computeQuestionPool(answers, dim)
	}
}

func computePercentageAffected(answers []map[string]interface{}, source, sentinel string) dimensionComputation {
	affected := 0
	for _, m := range answers {
		if isAffected(m[source], sentinel) {
			affected++
		}
	}
	rate := 0.0
	if len(answers) > 0 {
		rate = float64(affected) / float64(len(answers))
	}
	rate = round2(rate)
	// The whole respondent pool backs a prevalence figure.
	return dimensionComputation{score: rate, count: len(answers), affectedRate: rate}
}

func computeMeanAmongAffected(answers []map[string]interface{}, dim model.ScoringDimension, sentinel string) dimensionComputation {
	filter := dim.AffectedFilter
	if filter == "" {
		filter = dim.Source
	}
	var values []float64
	for _, m := range answers {
		if !isAffected(m[filter], sentinel) {
			continue
		}
		if v, ok := numericValue(m[dim.Source]); ok {
			values = append(values, v)
		}
	}
	return meanComputation(values, dim.AlertThreshold)
}

func computeSingleQuestion(answers []map[string]interface{}, dim model.ScoringDimension) dimensionComputation {
	var values []float64
	for _, m := range answers {
		if v, ok := numericValue(m[dim.Source]); ok {
			values = append(values, v)
		}
	}
	var c dimensionComputation
	if dim.Aggregation == model.AggregationSum {
		c = sumComputation(values, dim.AlertThreshold)
	} else {
		c = meanComputation(values, dim.AlertThreshold)
	}
	// Unanswered responses still back the segment for anonymity purposes.
	c.count = len(answers)
	return c
}

func computeQuestionPool(answers []map[string]interface{}, dim model.ScoringDimension) dimensionComputation {
	var pool []float64
	respondents := 0
	affected := 0
	for _, m := range answers {
		answered := false
		hit := false
		for _, q := range dim.Questions {
			v, ok := numericValue(m[q])
			if !ok {
				continue
			}
			pool = append(pool, v)
			answered = true
			if dim.AlertThreshold != nil && v >= *dim.AlertThreshold {
				hit = true
			}
		}
		if answered {
			respondents++
			if hit {
				affected++
			}
		}
	}

	c := dimensionComputation{count: len(answers)}
	if dim.Aggregation == model.AggregationSum {
		total := 0.0
		for _, v := range pool {
			total += v
		}
		c.score = round2(total)
	} else if len(pool) > 0 {
		total := 0.0
		for _, v := range pool {
			total += v
		}
		c.score = round2(total / float64(len(pool)))
	}
	if respondents > 0 {
		c.affectedRate = round2(float64(affected) / float64(respondents))
	}
	return c
}

func meanComputation(values []float64, alertThreshold *float64) dimensionComputation {
	c := dimensionComputation{count: len(values)}
	if len(values) == 0 {
		return c
	}
	total := 0.0
	affected := 0
	for _, v := range values {
		total += v
		if alertThreshold != nil && v >= *alertThreshold {
			affected++
		}
	}
	c.score = round2(total / float64(len(values)))
	c.affectedRate = round2(float64(affected) / float64(len(values)))
	return c
}

func sumComputation(values []float64, alertThreshold *float64) dimensionComputation {
	c := dimensionComputation{count: len(values)}
	total := 0.0
	affected := 0
	for _, v := range values {
		total += v
		if alertThreshold != nil && v >= *alertThreshold {
			affected++
		}
	}
	c.score = round2(total)
	if len(values) > 0 {
		c.affectedRate = round2(float64(affected) / float64(len(values)))
	}
	return c
}

// computeComposite is the weighted global score over the named dimensions.
// Weight defaults to 1; a zero total weight yields 0.
func computeComposite(scores map[string]dimensionComputation, dims []model.ScoringDimension, composite *model.CompositeScore) (float64, bool) {
	if composite == nil {
		return 0, false
	}
	weights := make(map[string]float64, len(dims))
	for _, d := range dims {
		w := d.Weight
		if w == 0 {
			w = 1
		}
		weights[d.ID] = w
	}
	totalWeight := 0.0
	weighted := 0.0
	for _, id := range composite.Dimensions {
		c, ok := scores[id]
		if !ok {
			continue
		}
		w := weights[id]
		if w == 0 {
			w = 1
		}
		weighted += c.score * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0, true
	}
	return round2(weighted / totalWeight), true
}
