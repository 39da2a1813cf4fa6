package model

import "fmt"

// Aggregation defines how a scoring dimension condenses answers into a score.
type Aggregation string

const (
	AggregationMean               Aggregation = "mean"
	AggregationSum                Aggregation = "sum"
	AggregationPercentageAffected Aggregation = "percentage_affected"
	AggregationMeanAmongAffected  Aggregation = "mean_among_affected"
	AggregationFormula            Aggregation = "formula"
)

// DefaultSentinel is the answer value treated as "not affected" by
// percentage_affected and affected-filter aggregations.
const DefaultSentinel = "NEVER"

// ScoringDimension is a declarative scoring rule. Exactly one of Source,
// Questions or Formula is set: a dimension aggregates a single question,
// a pool of questions, or an arithmetic formula over other dimension ids.
type ScoringDimension struct {
	ID          string      `json:"id" bson:"id"`
	Label       string      `json:"label,omitempty" bson:"label,omitempty"`
	Aggregation Aggregation `json:"aggregation" bson:"aggregation"`

	Source    string   `json:"source,omitempty" bson:"source,omitempty"`
	Questions []string `json:"questions,omitempty" bson:"questions,omitempty"`
	Formula   string   `json:"formula,omitempty" bson:"formula,omitempty"`

	// AffectedFilter names the question whose non-sentinel answer marks a
	// respondent as affected (mean_among_affected only).
	AffectedFilter string `json:"affectedFilter,omitempty" bson:"affectedFilter,omitempty"`

	// Weight is used by the composite score; 0 means "default to 1".
	Weight float64 `json:"weight,omitempty" bson:"weight,omitempty"`

	// AlertThreshold classifies the score into a signal and drives the
	// criticality matrix. Nil disables both for this dimension.
	AlertThreshold *float64 `json:"alertThreshold,omitempty" bson:"alertThreshold,omitempty"`

	// Sensitive marks health/presenteeism/distress/TMS dimensions, which are
	// gated by the stricter anonymity threshold.
	Sensitive bool `json:"sensitive,omitempty" bson:"sensitive,omitempty"`

	// Module gates the dimension behind a campaign's active module set.
	// Module 0 is always computed.
	Module int `json:"module,omitempty" bson:"module,omitempty"`
}

// Validate checks the one-of invariant on the aggregation strategy.
func (d ScoringDimension) Validate() error {
	set := 0
	if d.Source != "" {
		set++
	}
	if len(d.Questions) > 0 {
		set++
	}
	if d.Formula != "" {
		set++
	}
	if set != 1 {
		return fmt.Errorf("dimension %s: exactly one of source, questions or formula must be set (got %d)", d.ID, set)
	}
	if d.Formula != "" && d.Aggregation != AggregationFormula {
		return fmt.Errorf("dimension %s: formula set but aggregation is %s", d.ID, d.Aggregation)
	}
	return nil
}

// Severity grades a triggered critical indicator.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// CriticalIndicator is a declarative alert rule: a boolean condition over
// dimension-score identifiers. Stateless; evaluated fresh on every run.
type CriticalIndicator struct {
	ID             string   `json:"id" bson:"id"`
	Condition      string   `json:"condition" bson:"condition"`
	Severity       Severity `json:"severity" bson:"severity"`
	Message        string   `json:"message" bson:"message"`
	Recommendation string   `json:"recommendation,omitempty" bson:"recommendation,omitempty"`

	// Dimension names the backing dimension for anonymity provenance. When
	// empty, provenance falls back to the identifiers used in Condition.
	Dimension string `json:"dimension,omitempty" bson:"dimension,omitempty"`
	Module    int    `json:"module,omitempty" bson:"module,omitempty"`
}

// FinancialFormula is a declarative arithmetic expression producing one
// currency-denominated metric. Formulas are evaluated in declaration order;
// each result becomes a variable for all subsequent formulas.
type FinancialFormula struct {
	ID         string `json:"id" bson:"id"`
	Expression string `json:"expression" bson:"expression"`
	Unit       string `json:"unit,omitempty" bson:"unit,omitempty"`
	Sensitive  bool   `json:"sensitive,omitempty" bson:"sensitive,omitempty"`
	Module     int    `json:"module,omitempty" bson:"module,omitempty"`
}

// CompositeScore defines the weighted global score over a subset of
// dimensions. Weights come from the dimensions themselves (default 1).
type CompositeScore struct {
	ID         string   `json:"id" bson:"id"`
	Dimensions []string `json:"dimensions" bson:"dimensions"`
}

// SurveySchema is the full declarative scoring configuration for a survey
// type. Persisted per survey type; a bundled QVCT default is used when no
// custom document exists.
type SurveySchema struct {
	ID         string             `json:"id" bson:"_id,omitempty"`
	SurveyType string             `json:"surveyType" bson:"surveyType"`
	Version    int                `json:"version" bson:"version"`
	Sentinel   string             `json:"sentinel,omitempty" bson:"sentinel,omitempty"`
	Dimensions []ScoringDimension `json:"dimensions" bson:"dimensions"`
	Indicators []CriticalIndicator `json:"indicators,omitempty" bson:"indicators,omitempty"`
	Financials []FinancialFormula  `json:"financials,omitempty" bson:"financials,omitempty"`
	Composite  *CompositeScore     `json:"composite,omitempty" bson:"composite,omitempty"`
}

// SentinelValue returns the configured sentinel or the default.
func (s *SurveySchema) SentinelValue() string {
	if s.Sentinel != "" {
		return s.Sentinel
	}
	return DefaultSentinel
}

// Validate checks every dimension's one-of invariant.
func (s *SurveySchema) Validate() error {
	for _, d := range s.Dimensions {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}
