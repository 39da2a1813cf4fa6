package engine

import (
	"fmt"
	"sort"
	"strings"

	"altervalue/internal/model"
)

// buildNarrative fills fixed sentence templates with computed values. It runs
// after the anonymity gate, so suppressed segments can never surface here.
// Deterministic given the result.
func buildNarrative(res *model.CalculationResult) string {
	if res.IsConfidential {
		return "Le nombre de réponses est insuffisant pour restituer des résultats tout en garantissant l'anonymat des répondants."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d réponses exploitables ont été analysées", res.ResponseCount)
	if res.ParticipationRate != nil {
		fmt.Fprintf(&sb, ", soit un taux de participation de %.0f %%", float64(*res.ParticipationRate)*100)
	}
	sb.WriteString(".")

	if res.GlobalScore != nil && !res.GlobalScore.IsConfidential {
		fmt.Fprintf(&sb, " Le score QVCT global s'établit à %.2f sur 10.", float64(res.GlobalScore.Score))
	}

	if top := topMatrixEntry(res.Matrix); top != "" {
		fmt.Fprintf(&sb, " La dimension la plus critique est « %s ».", top)
	}

	switch alerts := countBySeverity(res.Indicators, model.SeverityCritical); {
	case alerts > 1:
		fmt.Fprintf(&sb, " %d alertes critiques sont déclenchées et appellent un plan d'action immédiat.", alerts)
	case alerts == 1:
		sb.WriteString(" Une alerte critique est déclenchée et appelle un plan d'action immédiat.")
	}

	if cost, ok := res.Financials["cout_presenteisme_annuel"]; ok {
		fmt.Fprintf(&sb, " Le coût annuel estimé du présentéisme s'élève à %.2f EUR.", cost)
	}
	return sb.String()
}

func topMatrixEntry(matrix []model.MatrixEntry) string {
	for _, entry := range matrix {
		if !entry.IsConfidential && entry.Criticality > 0 {
			return entry.Dimension
		}
	}
	return ""
}

func countBySeverity(indicators map[string]model.IndicatorAlert, severity model.Severity) int {
	n := 0
	ids := make([]string, 0, len(indicators))
	for id := range indicators {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if indicators[id].Severity == severity {
			n++
		}
	}
	return n
}
