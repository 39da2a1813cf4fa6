package model

// Ratio is a rate in [0,1] (participation, affected share). Kept as a
// distinct type from Score so the two unit conventions cannot be mixed up.
type Ratio float64

// Score is a dimension score in the unit of its source questions (0-10 for
// the bundled QVCT schema), rounded to 2 decimals.
type Score float64

// Signal classifies a dimension score against its alert threshold.
type Signal string

const (
	SignalGreen  Signal = "green"
	SignalYellow Signal = "yellow"
	SignalOrange Signal = "orange"
	SignalRed    Signal = "red"
)

// DimensionResult is one computed dimension score plus the metadata the
// anonymity gate needs.
type DimensionResult struct {
	Score           Score  `json:"score"`
	RespondentCount int    `json:"respondentCount"`
	Signal          Signal `json:"signal"`
	Sensitive       bool   `json:"sensitive,omitempty"`
	IsConfidential  bool   `json:"isConfidential"`
}

// IndicatorAlert is a triggered critical indicator. Indicators that did not
// trigger are absent from the result map entirely.
type IndicatorAlert struct {
	Severity       Severity `json:"severity"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation,omitempty"`
	Dimension      string   `json:"dimension,omitempty"`
}

// MatrixEntry is one row of the priority/criticality matrix: severity (mean
// score) crossed with frequency (share of respondents above the alert
// threshold). Confidentiality is inherited from the backing dimension.
type MatrixEntry struct {
	Dimension      string `json:"dimension"`
	Score          Score  `json:"score"`
	AffectedRate   Ratio  `json:"affectedRate"`
	Criticality    Score  `json:"criticality"`
	Priority       int    `json:"priority"`
	IsConfidential bool   `json:"isConfidential"`
}

// DepartmentBreakdown is the per-department slice of the dimension scores.
// Sensitive dimensions are absent from Scores when the department does not
// meet the stricter anonymity floor.
type DepartmentBreakdown struct {
	ResponseCount  int              `json:"responseCount"`
	Scores         map[string]Score `json:"scores"`
	IsConfidential bool             `json:"isConfidential"`
}

// QuestionInsight aggregates qualitative (choice/text) answers per question.
type QuestionInsight struct {
	Count  int            `json:"count"`
	Values map[string]int `json:"values"`
}

// CalculationResult is the engine's complete output for one campaign. It is
// the unit passed through the anonymity gate and the unit cached; it crosses
// the system boundary as-is (JSON).
type CalculationResult struct {
	CampaignID        string                         `json:"campaignId"`
	ResponseCount     int                            `json:"responseCount"`
	ParticipationRate *Ratio                         `json:"participationRate,omitempty"`
	Dimensions        map[string]DimensionResult     `json:"dimensions"`
	GlobalScore       *DimensionResult               `json:"globalScore,omitempty"`
	Indicators        map[string]IndicatorAlert      `json:"indicators"`
	Financials        map[string]float64             `json:"financials,omitempty"`
	Departments       map[string]DepartmentBreakdown `json:"departments,omitempty"`
	Matrix            []MatrixEntry                  `json:"matrix,omitempty"`
	Insights          map[string]QuestionInsight     `json:"insights,omitempty"`
	Narrative         string                         `json:"narrative,omitempty"`

	// IsConfidential is set when the whole campaign is below the general
	// anonymity threshold.
	IsConfidential bool `json:"isConfidential"`
}

// AnonymityThresholds holds the k-anonymity floors for one campaign. The
// sensitive threshold applies to health/presenteeism segments on top of the
// general one.
type AnonymityThresholds struct {
	General   int `json:"general" bson:"general"`
	Sensitive int `json:"sensitive" bson:"sensitive"`
}

// Default k-anonymity floors, used when a campaign does not override them.
const (
	DefaultGeneralThreshold   = 15
	DefaultSensitiveThreshold = 30
)

// DefaultThresholds returns the documented default floors.
func DefaultThresholds() AnonymityThresholds {
	return AnonymityThresholds{
		General:   DefaultGeneralThreshold,
		Sensitive: DefaultSensitiveThreshold,
	}
}

// Normalized fills zero values with defaults and keeps the sensitive floor
// at least as strict as the general one.
func (t AnonymityThresholds) Normalized() AnonymityThresholds {
	if t.General <= 0 {
		t.General = DefaultGeneralThreshold
	}
	if t.Sensitive <= 0 {
		t.Sensitive = DefaultSensitiveThreshold
	}
	if t.Sensitive < t.General {
		t.Sensitive = t.General
	}
	return t
}
