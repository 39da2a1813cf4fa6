package model

func threshold(v float64) *float64 { return &v }

// DefaultQVCTSchema is the bundled scoring configuration for the standard
// QVCT questionnaire (0-10 Likert items). Used when no schema document is
// persisted for the campaign's survey type. Module 2 covers TMS exposure,
// module 3 covers distress/presenteeism.
func DefaultQVCTSchema() *SurveySchema {
	return &SurveySchema{
		SurveyType: "qvct",
		Version:    1,
		Sentinel:   DefaultSentinel,
		Dimensions: []ScoringDimension{
			{ID: "charge_travail", Label: "Charge de travail", Aggregation: AggregationMean,
				Questions: []string{"Q_CHARGE_1", "Q_CHARGE_2"}, Weight: 2, AlertThreshold: threshold(7)},
			{ID: "stress", Label: "Stress perçu", Aggregation: AggregationMean,
				Source: "Q_STRESS", Weight: 2, AlertThreshold: threshold(7)},
			{ID: "autonomie", Label: "Autonomie", Aggregation: AggregationMean,
				Source: "Q_AUTONOMIE", Weight: 1},
			{ID: "reconnaissance", Label: "Reconnaissance", Aggregation: AggregationMean,
				Source: "Q_RECONNAISSANCE", Weight: 1},
			{ID: "relations", Label: "Relations de travail", Aggregation: AggregationMean,
				Questions: []string{"Q_RELATIONS_COLLEGUES", "Q_RELATIONS_MANAGER"}, Weight: 1},
			{ID: "exposition_tms", Label: "Exposition TMS", Aggregation: AggregationPercentageAffected,
				Source: "Q_TMS_FREQ", Sensitive: true, Module: 2},
			{ID: "intensite_tms", Label: "Intensité douleurs TMS", Aggregation: AggregationMeanAmongAffected,
				Source: "Q_TMS_INTENSITE", AffectedFilter: "Q_TMS_FREQ", Sensitive: true, Module: 2,
				AlertThreshold: threshold(6)},
			{ID: "detresse", Label: "Détresse psychologique", Aggregation: AggregationMean,
				Source: "Q_DETRESSE", Sensitive: true, Module: 3, AlertThreshold: threshold(6)},
			{ID: "presenteisme_freq", Label: "Fréquence de présentéisme", Aggregation: AggregationPercentageAffected,
				Source: "Q_PRESENT_FREQ", Sensitive: true, Module: 3},
			{ID: "rps_global", Label: "Score RPS global", Aggregation: AggregationFormula,
				Formula:        "(charge_travail + stress + (10 - autonomie) + (10 - reconnaissance)) / 4",
				AlertThreshold: threshold(6)},
		},
		Indicators: []CriticalIndicator{
			{ID: "alerte_stress", Condition: "stress >= 7", Severity: SeverityHigh, Dimension: "stress",
				Message:        "Le niveau de stress moyen dépasse le seuil d'alerte.",
				Recommendation: "Prioriser un diagnostic approfondi des facteurs de stress."},
			{ID: "alerte_rps", Condition: "rps_global >= 6 && stress >= 5", Severity: SeverityCritical, Dimension: "rps_global",
				Message:        "Le score RPS global atteint un niveau critique.",
				Recommendation: "Déclencher un plan d'action RPS avec le CSE."},
			{ID: "alerte_detresse", Condition: "detresse >= 6", Severity: SeverityCritical, Dimension: "detresse", Module: 3,
				Message:        "Des signaux de détresse psychologique sont détectés.",
				Recommendation: "Mettre en place une cellule d'écoute."},
			{ID: "vigilance_reconnaissance", Condition: "reconnaissance <= 4", Severity: SeverityWarning, Dimension: "reconnaissance",
				Message: "Le sentiment de reconnaissance est faible."},
		},
		Financials: []FinancialFormula{
			{ID: "cout_presenteisme_annuel", Unit: "EUR", Sensitive: true, Module: 3,
				Expression: "presenteisme_freq * headcount * working_days * 0.25 * daily_cost"},
			{ID: "cout_par_salarie", Unit: "EUR", Sensitive: true, Module: 3,
				Expression: "cout_presenteisme_annuel / headcount"},
			{ID: "roi_estime", Unit: "EUR", Sensitive: true, Module: 3,
				Expression: "cout_presenteisme_annuel * 0.3"},
		},
		Composite: &CompositeScore{
			ID:         "qvct_global",
			Dimensions: []string{"charge_travail", "stress", "autonomie", "reconnaissance", "relations"},
		},
	}
}
