package engine

import (
	"altervalue/internal/expr"
	"altervalue/internal/model"
)

// evaluateIndicators runs every indicator condition against the computed
// scores. Only indicators that provably evaluate to true appear in the
// returned map: a malformed condition, an unknown token or any other
// evaluation failure means "not triggered", never an error. An alert that
// cannot be proven true must not leak into output.
func evaluateIndicators(scores map[string]float64, indicators []model.CriticalIndicator) map[string]model.IndicatorAlert {
	out := make(map[string]model.IndicatorAlert)
	for _, ind := range indicators {
		triggered, err := expr.EvalBool(ind.Condition, scores)
		if err != nil || !triggered {
			continue
		}
		out[ind.ID] = model.IndicatorAlert{
			Severity:       ind.Severity,
			Message:        ind.Message,
			Recommendation: ind.Recommendation,
			Dimension:      ind.Dimension,
		}
	}
	return out
}
