package factory

import (
	"sort"

	"github.com/hrsagar28/loan-calculator-app/affordability"
	"github.com/hrsagar28/loan-calculator-app/loan"
)

// AffordabilityJSON is the affordability form.
//
//	{"monthlyIncome": "1,20,000", "monthlyExpenses": "45000",
//	 "tenureYears": 20, "interestRate": "8.5"}
type AffordabilityJSON struct {
	MonthlyIncome   FormValue `json:"monthlyIncome"`
	MonthlyExpenses FormValue `json:"monthlyExpenses"`
	TenureYears     FormValue `json:"tenureYears"`
	InterestRate    FormValue `json:"interestRate"`
}

// AffordabilityInput parses the form. Blank fields become zero and are left
// to affordability.Calculate to reject; unparsable ones fail here with a
// *loan.ValidationError naming the field.
func (f *LoanFactory) AffordabilityInput(aj AffordabilityJSON) (affordability.Input, error) {
	p := &fieldParser{errs: make(map[string]string)}

	in := affordability.Input{
		TenureYears: p.intOr("tenureYears", aj.TenureYears, 0),
	}
	in.MonthlyIncome, _ = p.decimal("monthlyIncome", aj.MonthlyIncome)
	in.MonthlyExpenses, _ = p.decimal("monthlyExpenses", aj.MonthlyExpenses)
	in.AnnualRatePercent, _ = p.decimal("interestRate", aj.InterestRate)

	if len(p.errs) > 0 {
		fields := make([]string, 0, len(p.errs))
		for field := range p.errs {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		return affordability.Input{}, &loan.ValidationError{Field: fields[0], Message: p.errs[fields[0]]}
	}
	return in, nil
}
