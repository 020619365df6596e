package procurement

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentCheck is the overpayment analysis of a candidate payment.
type PaymentCheck struct {
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	TotalPaid          decimal.Decimal `json:"totalPaid"`
	NewPayment         decimal.Decimal `json:"newPayment"`
	AlreadyPaidPercent decimal.Decimal `json:"alreadyPaidPercent"`
	ThisPaymentPercent decimal.Decimal `json:"thisPaymentPercent"`
	NewTotalPercent    decimal.Decimal `json:"newTotalPercent"`
	IsOverpayment      bool            `json:"isOverpayment"`
	OverpaymentAmount  decimal.Decimal `json:"overpaymentAmount"`
	RemainingAfter     decimal.Decimal `json:"remainingAfter"`
}

// CheckPayment compares a new payment against the order total and what is
// already paid. The combined percentage is not capped at 100. A zero total
// yields zero percentages. Overpayment is decided on the amounts, so the
// rounded component percentages never flag an exact final payment.
func CheckPayment(total, paid, payment decimal.Decimal) PaymentCheck {
	c := PaymentCheck{
		TotalAmount:        total,
		TotalPaid:          paid,
		NewPayment:         payment,
		AlreadyPaidPercent: percentOf(paid, total),
		ThisPaymentPercent: percentOf(payment, total),
		OverpaymentAmount:  decimal.Zero,
	}
	newTotal := paid.Add(payment)
	c.NewTotalPercent = percentOf(newTotal, total)
	c.IsOverpayment = total.IsPositive() && newTotal.GreaterThan(total)
	after := total.Sub(newTotal)
	if c.IsOverpayment {
		c.OverpaymentAmount = after.Neg()
	}
	if after.IsNegative() {
		after = decimal.Zero
	}
	c.RemainingAfter = after
	return c
}

func percentOf(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(total)
}

// PaymentStatusFor derives the status the backend assigns for paid against total.
func PaymentStatusFor(total, paid decimal.Decimal) PaymentStatus {
	switch {
	case !paid.IsPositive():
		return PaymentPending
	case paid.GreaterThanOrEqual(total):
		return FullPaid
	default:
		return PartialPaid
	}
}

// SumPaid totals the product amounts across payments.
func SumPaid(payments []Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.ProductDollarAmount)
	}
	return sum
}

// LedgerEntry is a payment with the running totals after it.
type LedgerEntry struct {
	Payment
	CumulativePaid    decimal.Decimal `json:"cumulativePaid"`
	CumulativePercent decimal.Decimal `json:"cumulativePercent"`
	RemainingAfter    decimal.Decimal `json:"remainingAfter"`
}

// PaymentLedger is the payment history of one purchase order.
type PaymentLedger struct {
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	PaidPercent      decimal.Decimal `json:"paidPercent"`
	Status           PaymentStatus   `json:"status"`
	Entries          []LedgerEntry   `json:"entries"`
}

// BuildLedger orders payments by date and computes running totals.
func BuildLedger(total decimal.Decimal, payments []Payment) PaymentLedger {
	ordered := append([]Payment(nil), payments...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].PaymentDate.Equal(ordered[j].PaymentDate.Time) {
			return ordered[i].PaymentDate.Before(ordered[j].PaymentDate.Time)
		}
		return ordered[i].ID < ordered[j].ID
	})
	ledger := PaymentLedger{TotalAmount: total, Entries: make([]LedgerEntry, 0, len(ordered))}
	paid := decimal.Zero
	for _, p := range ordered {
		paid = paid.Add(p.ProductDollarAmount)
		ledger.Entries = append(ledger.Entries, LedgerEntry{
			Payment:           p,
			CumulativePaid:    paid,
			CumulativePercent: percentOf(paid, total).Round(2),
			RemainingAfter:    decimal.Max(total.Sub(paid), decimal.Zero),
		})
	}
	ledger.TotalPaid = paid
	ledger.RemainingBalance = decimal.Max(total.Sub(paid), decimal.Zero)
	ledger.PaidPercent = percentOf(paid, total).Round(2)
	ledger.Status = PaymentStatusFor(total, paid)
	return ledger
}

// PaymentInput is a payment as entered by the user.
type PaymentInput struct {
	PaymentNumber       string          `json:"paymentNumber"`
	BankName            string          `json:"bankName"`
	ReferenceNumber     string          `json:"referenceNumber"`
	PaymentDate         Date            `json:"paymentDate"`
	ProductDollarAmount decimal.Decimal `json:"productDollarAmount"`
	ProductPesoAmount   decimal.Decimal `json:"productPesoAmount"`
	ProcessingFeeDollar decimal.Decimal `json:"processingFeeDollar"`
	ProcessingFeePeso   decimal.Decimal `json:"processingFeePeso"`
	Remarks             string          `json:"remarks"`
	ConfirmOverpayment  bool            `json:"confirmOverpayment"`
	IdempotencyKey      string          `json:"-"`
}

// Validate lists problems with the entered amounts.
func (in PaymentInput) Validate() []string {
	var problems []string
	if !in.ProductDollarAmount.IsPositive() {
		problems = append(problems, "product dollar amount must be greater than 0")
	}
	for name, v := range map[string]decimal.Decimal{
		"product peso amount":   in.ProductPesoAmount,
		"processing fee dollar": in.ProcessingFeeDollar,
		"processing fee peso":   in.ProcessingFeePeso,
	} {
		if v.IsNegative() {
			problems = append(problems, name+" cannot be negative")
		}
	}
	sort.Strings(problems)
	return problems
}

// BuildPayment derives totals and the share of the order total for a new payment.
func BuildPayment(po PurchaseOrder, in PaymentInput, previous int, today Date) Payment {
	number := strings.TrimSpace(in.PaymentNumber)
	if number == "" {
		number = fmt.Sprintf("%s-P%02d", po.ControlNumber, previous+1)
	}
	date := in.PaymentDate
	if date.IsZero() {
		date = today
	}
	return Payment{
		PurchaseOrderID:     po.ID,
		PaymentNumber:       number,
		BankName:            strings.TrimSpace(in.BankName),
		ReferenceNumber:     strings.TrimSpace(in.ReferenceNumber),
		PaymentDate:         date,
		ProductDollarAmount: in.ProductDollarAmount,
		ProductPesoAmount:   in.ProductPesoAmount,
		ProcessingFeeDollar: in.ProcessingFeeDollar,
		ProcessingFeePeso:   in.ProcessingFeePeso,
		TotalDollar:         in.ProductDollarAmount.Add(in.ProcessingFeeDollar),
		TotalPeso:           in.ProductPesoAmount.Add(in.ProcessingFeePeso),
		PercentageOfTotal:   percentOf(in.ProductDollarAmount, po.TotalAmount).Round(2),
		Remarks:             strings.TrimSpace(in.Remarks),
	}
}
