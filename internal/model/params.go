package model

// DefaultWorkingDaysPerYear is used when a company does not provide one.
const DefaultWorkingDaysPerYear = 220

// CompanyParams are the financial inputs of a client company. Immutable for
// the duration of one calculation; financial metrics are only computed when
// params are supplied.
type CompanyParams struct {
	Headcount                int     `json:"headcount" bson:"headcount"`
	AvgGrossSalary           float64 `json:"avgGrossSalary" bson:"avgGrossSalary"`
	EmployerContributionRate float64 `json:"employerContributionRate" bson:"employerContributionRate"`
	WorkingDaysPerYear       int     `json:"workingDaysPerYear,omitempty" bson:"workingDaysPerYear,omitempty"`
}

// AvgTotalSalary is the gross salary loaded with employer contributions.
func (p CompanyParams) AvgTotalSalary() float64 {
	return p.AvgGrossSalary * (1 + p.EmployerContributionRate)
}

// DailyCost is the loaded cost of one employee working day.
func (p CompanyParams) DailyCost() float64 {
	days := p.WorkingDaysPerYear
	if days <= 0 {
		days = DefaultWorkingDaysPerYear
	}
	return p.AvgTotalSalary() / float64(days)
}

// Payroll is the total loaded payroll of the company.
func (p CompanyParams) Payroll() float64 {
	return p.AvgTotalSalary() * float64(p.Headcount)
}
