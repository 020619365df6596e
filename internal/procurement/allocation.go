package procurement

import "github.com/shopspring/decimal"

// Allocation is the initial/final payment split of a quotation.
type Allocation struct {
	GrandTotal     decimal.Decimal `json:"grandTotal"`
	InitialPercent Percent         `json:"initialPercent"`
	FinalPercent   Percent         `json:"finalPercent"`
	InitialAmount  decimal.Decimal `json:"initialAmount"`
	FinalAmount    decimal.Decimal `json:"finalAmount"`
}

// Allocate recomputes the split from the full item list and the initial
// percentage. Values above 100 clamp to 100 and below 0 clamp to 0. The final
// percentage is the exact complement when the initial one is positive and is
// left unset otherwise.
func Allocate(items []LineItem, initial Percent) Allocation {
	total := GrandTotal(items)
	a := Allocation{
		GrandTotal:    total,
		InitialAmount: decimal.Zero,
		FinalAmount:   decimal.Zero,
	}
	if !initial.IsSet() {
		return a
	}
	p := initial.Decimal()
	switch {
	case p.GreaterThan(hundred):
		p = hundred
	case p.IsNegative():
		p = decimal.Zero
	}
	a.InitialPercent = PercentOf(p)
	a.InitialAmount = total.Mul(p).Div(hundred)
	if !p.IsPositive() {
		return a
	}
	final := hundred.Sub(p)
	a.FinalPercent = PercentOf(final)
	a.FinalAmount = total.Mul(final).Div(hundred)
	return a
}

// Apply stores the split on q.
func (a Allocation) Apply(q *QuotationRequest) {
	q.InitialPaymentPercent = a.InitialPercent
	q.FinalPaymentPercent = a.FinalPercent
	q.InitialPaymentAmount = a.InitialAmount
	q.FinalPaymentAmount = a.FinalAmount
}
