package procurement

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func priced(productID int64, qty int, price string) LineItem {
	return LineItem{ProductID: productID, ProductName: fmt.Sprintf("P%d", productID), Qty: qty, UnitPrice: dec(price)}
}

func TestNextControlNumber(t *testing.T) {
	var existing []string
	for i := 1; i <= 9; i++ {
		existing = append(existing, fmt.Sprintf("IRR-2024-%04d", i))
	}
	require.Equal(t, "IRR-2024-0010", NextControlNumber(PrefixIRR, 2024, existing))
	require.Equal(t, "IRR-2025-0001", NextControlNumber(PrefixIRR, 2025, existing))
	require.Equal(t, "RPQ-2024-0001", NextControlNumber(PrefixRPQ, 2024, existing))
	require.Equal(t, "IRR-2024-0001", NextControlNumber(PrefixIRR, 2024, nil))
}

func TestNextControlNumberIgnoresGarbage(t *testing.T) {
	existing := []string{"IRR-2024-0003", "IRR-2024-00x9", "IRR-2024-", "IRR-2024-0002-A", "irr-2024-0099"}
	require.Equal(t, "IRR-2024-0004", NextControlNumber(PrefixIRR, 2024, existing))
}

func TestNextControlNumberIsIdempotent(t *testing.T) {
	existing := []string{"RPQ-2024-0041"}
	first := NextControlNumber(PrefixRPQ, 2024, existing)
	require.Equal(t, first, NextControlNumber(PrefixRPQ, 2024, existing))
	require.Equal(t, "RPQ-2024-0042", first)
}

func TestControlNumbersSequential(t *testing.T) {
	got := ControlNumbers(PrefixIRR, 2024, []string{"IRR-2024-0007"}, 3)
	require.Equal(t, []string{"IRR-2024-0008", "IRR-2024-0009", "IRR-2024-0010"}, got)
}

func TestControlNumberBeyondFourDigits(t *testing.T) {
	require.Equal(t, "IRR-2024-10000", NextControlNumber(PrefixIRR, 2024, []string{"IRR-2024-9999"}))
}

func TestAllocateComplementSumsToGrandTotal(t *testing.T) {
	items := []LineItem{priced(1, 3, "33.33"), priced(2, 7, "0.07"), priced(3, 1, "1234.56")}
	for p := 1; p <= 100; p++ {
		a := Allocate(items, PercentFromInt(int64(p)))
		require.True(t, a.InitialAmount.Add(a.FinalAmount).Equal(a.GrandTotal), "p=%d", p)
		require.True(t, a.FinalPercent.Decimal().Equal(decimal.NewFromInt(int64(100-p))), "p=%d", p)
	}
}

func TestAllocateFractionalPercent(t *testing.T) {
	a := Allocate([]LineItem{priced(1, 1, "999.99")}, PercentOf(dec("33.3")))
	require.True(t, a.InitialAmount.Add(a.FinalAmount).Equal(dec("999.99")))
	require.Equal(t, "66.7", a.FinalPercent.String())
}

func TestAllocateClampsAbove100(t *testing.T) {
	a := Allocate([]LineItem{priced(1, 2, "50")}, PercentFromInt(150))
	require.Equal(t, "100", a.InitialPercent.String())
	require.True(t, a.FinalPercent.IsSet())
	require.True(t, a.FinalPercent.Decimal().IsZero())
	require.True(t, a.InitialAmount.Equal(dec("100")))
	require.True(t, a.FinalAmount.IsZero())
}

func TestAllocateZeroOrUnsetLeavesFinalUnset(t *testing.T) {
	items := []LineItem{priced(1, 2, "50")}
	for _, p := range []Percent{{}, PercentFromInt(0), PercentFromInt(-5)} {
		a := Allocate(items, p)
		require.False(t, a.FinalPercent.IsSet())
		require.True(t, a.FinalAmount.IsZero())
		require.True(t, a.InitialAmount.IsZero())
		require.True(t, a.GrandTotal.Equal(dec("100")))
	}
}

func TestAllocateRecomputesFromItems(t *testing.T) {
	items := []LineItem{{ProductID: 1, Qty: 4, UnitPrice: dec("25"), TotalAmount: dec("1")}}
	a := Allocate(items, PercentFromInt(30))
	require.True(t, a.GrandTotal.Equal(dec("100")))
	require.True(t, a.InitialAmount.Equal(dec("30")))
	require.True(t, a.FinalAmount.Equal(dec("70")))
}

func TestCheckPaymentOverpayment(t *testing.T) {
	c := CheckPayment(dec("1000"), dec("800"), dec("300"))
	require.True(t, c.AlreadyPaidPercent.Equal(dec("80")))
	require.True(t, c.ThisPaymentPercent.Equal(dec("30")))
	require.True(t, c.NewTotalPercent.Equal(dec("110")))
	require.True(t, c.IsOverpayment)
	require.True(t, c.OverpaymentAmount.Equal(dec("100")))
	require.True(t, c.RemainingAfter.IsZero())
}

func TestCheckPaymentExactBalanceIsNotOverpayment(t *testing.T) {
	c := CheckPayment(dec("1000"), dec("400"), dec("600"))
	require.True(t, c.NewTotalPercent.Equal(dec("100")))
	require.False(t, c.IsOverpayment)
	require.True(t, c.OverpaymentAmount.IsZero())
}

func TestCheckPaymentRoundedPercentagesDoNotFlagFinalPayment(t *testing.T) {
	c := CheckPayment(dec("131072"), dec("0.01"), dec("131071.99"))
	sum := c.AlreadyPaidPercent.Add(c.ThisPaymentPercent)
	require.True(t, sum.GreaterThan(hundred), "component percentages round past 100")
	require.True(t, c.NewTotalPercent.Equal(dec("100")))
	require.False(t, c.IsOverpayment)
	require.True(t, c.OverpaymentAmount.IsZero())
	require.True(t, c.RemainingAfter.IsZero())

	over := CheckPayment(dec("131072"), dec("0.01"), dec("131072"))
	require.True(t, over.IsOverpayment)
	require.True(t, over.OverpaymentAmount.Equal(dec("0.01")))
}

func TestCheckPaymentZeroTotal(t *testing.T) {
	c := CheckPayment(decimal.Zero, dec("10"), dec("5"))
	require.True(t, c.AlreadyPaidPercent.IsZero())
	require.True(t, c.ThisPaymentPercent.IsZero())
	require.True(t, c.NewTotalPercent.IsZero())
	require.False(t, c.IsOverpayment)
}

func TestPaymentStatusFor(t *testing.T) {
	total := dec("1000")
	require.Equal(t, PaymentPending, PaymentStatusFor(total, decimal.Zero))
	require.Equal(t, PartialPaid, PaymentStatusFor(total, dec("0.01")))
	require.Equal(t, FullPaid, PaymentStatusFor(total, dec("1000")))
	require.Equal(t, FullPaid, PaymentStatusFor(total, dec("1200")))
}

func TestBuildLedgerRunningTotals(t *testing.T) {
	d1, _ := ParseDate("2024-03-01")
	d2, _ := ParseDate("2024-04-01")
	payments := []Payment{
		{ID: 2, PaymentDate: d2, ProductDollarAmount: dec("500")},
		{ID: 1, PaymentDate: d1, ProductDollarAmount: dec("300")},
	}
	l := BuildLedger(dec("1000"), payments)
	require.Len(t, l.Entries, 2)
	require.Equal(t, int64(1), l.Entries[0].ID)
	require.True(t, l.Entries[0].CumulativePaid.Equal(dec("300")))
	require.True(t, l.Entries[1].CumulativePercent.Equal(dec("80")))
	require.True(t, l.Entries[1].RemainingAfter.Equal(dec("200")))
	require.True(t, l.TotalPaid.Equal(dec("800")))
	require.Equal(t, PartialPaid, l.Status)
}

func TestBuildPaymentDerivesTotals(t *testing.T) {
	po := PurchaseOrder{ID: 9, ControlNumber: "PO-2024-0003", TotalAmount: dec("2000")}
	today, _ := ParseDate("2024-05-05")
	p := BuildPayment(po, PaymentInput{
		ProductDollarAmount: dec("500"),
		ProductPesoAmount:   dec("28000"),
		ProcessingFeeDollar: dec("15"),
		ProcessingFeePeso:   dec("840"),
	}, 1, today)
	require.Equal(t, "PO-2024-0003-P02", p.PaymentNumber)
	require.True(t, p.TotalDollar.Equal(dec("515")))
	require.True(t, p.TotalPeso.Equal(dec("28840")))
	require.True(t, p.PercentageOfTotal.Equal(dec("25")))
	require.Equal(t, "2024-05-05", p.PaymentDate.String())
}

func TestPriceEntryCalculatorTape(t *testing.T) {
	e := NewPriceEntry(decimal.Zero)
	require.Equal(t, "0.00", e.String())

	e.Type("1", "2", "3")
	require.Equal(t, "1.23", e.String())

	require.Equal(t, KeyConsumed, e.Press("Backspace"))
	require.Equal(t, "0.12", e.String())

	require.Equal(t, KeyIgnored, e.Press("a"))
	require.Equal(t, KeyIgnored, e.Press("."))
	require.Equal(t, KeyPassThrough, e.Press("Tab"))
	require.Equal(t, KeyPassThrough, e.Press("Enter"))
	require.Equal(t, "0.12", e.String())
}

func TestPriceEntryStartsFromValue(t *testing.T) {
	e := NewPriceEntry(dec("12.345"))
	require.Equal(t, int64(1234), e.Cents())
	e.Press("5")
	require.Equal(t, "123.45", e.String())
}

func TestPriceEntryBackspaceToZero(t *testing.T) {
	e := NewPriceEntry(dec("0.05"))
	e.Type("Backspace", "Backspace", "Backspace")
	require.Equal(t, "0.00", e.String())
}

func TestAddLineItemRejectsDuplicates(t *testing.T) {
	v1, v2 := int64(10), int64(11)
	items, err := AddLineItem(nil, LineItem{ProductID: 1, VariationID: &v1, ProductName: "Shirt", Qty: 1})
	require.NoError(t, err)

	_, err = AddLineItem(items, LineItem{ProductID: 1, VariationID: &v1, Qty: 5})
	require.ErrorIs(t, err, ErrDuplicateItem)

	items, err = AddLineItem(items, LineItem{ProductID: 1, VariationID: &v2, Qty: 2})
	require.NoError(t, err)
	require.Len(t, items, 2)

	items, err = AddLineItem(items, LineItem{ProductID: 1, Qty: 2})
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, DefaultUOM, items[2].UOM)

	_, err = AddLineItem(items, LineItem{ProductID: 1, Qty: 9})
	require.ErrorIs(t, err, ErrDuplicateItem)
}

func TestValidateItems(t *testing.T) {
	require.Equal(t, []string{"at least one item is required"}, ValidateItems(nil))
	problems := ValidateItems([]LineItem{
		{ProductID: 1, ProductName: "Bolt", Qty: 0},
		{ProductID: 2, ProductName: "Nut", Qty: 1, UnitPrice: dec("-1")},
		{ProductID: 2, ProductName: "Nut", Qty: 3},
		{ProductID: 0, Qty: 1},
	})
	require.Len(t, problems, 4)
	require.Contains(t, problems[0], "quantity must be greater than 0")
	require.Contains(t, problems[2], "duplicates item 2")
}

func TestApplyItemPatches(t *testing.T) {
	items := []LineItem{priced(1, 2, "10"), priced(2, 1, "0")}
	qty := 5
	price := dec("7.50")
	out, err := ApplyItemPatches(items, []ItemPatch{
		{ProductID: 1, LineItemPatch: LineItemPatch{Qty: &qty}},
		{ProductID: 2, LineItemPatch: LineItemPatch{UnitPrice: &price}},
	})
	require.NoError(t, err)
	require.True(t, out[0].TotalAmount.Equal(dec("50")))
	require.True(t, out[1].TotalAmount.Equal(dec("7.5")))
	require.True(t, items[0].TotalAmount.IsZero())

	zero := 0
	_, err = ApplyItemPatches(items, []ItemPatch{{ProductID: 1, LineItemPatch: LineItemPatch{Qty: &zero}}})
	require.ErrorIs(t, err, ErrValidation)
	_, err = ApplyItemPatches(items, []ItemPatch{{ProductID: 3, LineItemPatch: LineItemPatch{Qty: &qty}}})
	require.ErrorIs(t, err, ErrValidation)
}

func TestFormatAmount(t *testing.T) {
	require.Equal(t, "1,234,567.89", FormatAmount(dec("1234567.891")))
	require.Equal(t, "0.00", FormatAmount(decimal.Zero))
	require.Equal(t, "-1,000.50", FormatAmount(dec("-1000.5")))
	require.Equal(t, "$1,000.00", FormatCurrency(dec("1000"), "usd"))
	require.Equal(t, "₱250.00", FormatCurrency(dec("250"), PHP))
	require.Equal(t, "EUR 5.00", FormatCurrency(dec("5"), "EUR"))
	require.Equal(t, "30.00%", FormatPercent(PercentFromInt(30)))
	require.Equal(t, "", FormatPercent(Percent{}))
}

func TestPercentJSON(t *testing.T) {
	var q struct {
		A Percent `json:"a"`
		B Percent `json:"b"`
		C Percent `json:"c"`
		D Percent `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"","b":null,"c":30,"d":"12.5"}`), &q))
	require.False(t, q.A.IsSet())
	require.False(t, q.B.IsSet())
	require.Equal(t, "30", q.C.String())
	require.Equal(t, "12.5", q.D.String())

	out, err := json.Marshal(q)
	require.NoError(t, err)
	require.JSONEq(t, `{"a":"","b":"","c":30,"d":12.5}`, string(out))

	require.Error(t, json.Unmarshal([]byte(`{"a":"abc"}`), &q))
}

func TestDateJSON(t *testing.T) {
	var v struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2024-06-30T16:00:00Z"}`), &v))
	require.Equal(t, "2024-06-30", v.D.String())
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2024-07-01"}`), &v))
	out, err := json.Marshal(v)
	require.NoError(t, err)
	require.JSONEq(t, `{"d":"2024-07-01"}`, string(out))
	require.NoError(t, json.Unmarshal([]byte(`{"d":null}`), &v))
	require.True(t, v.D.IsZero())
}

func TestStatusTransitions(t *testing.T) {
	require.True(t, IRRPending.CanTransitionTo(IRRProceededToRPQ))
	require.False(t, IRRProceededToRPQ.CanTransitionTo(IRRPending))
	require.False(t, IRRProceededToRPQ.CanTransitionTo(IRRProceededToRPQ))

	require.True(t, RPQDraft.CanTransitionTo(RPQPending))
	require.True(t, RPQPending.CanTransitionTo(RPQConfirmed))
	require.False(t, RPQConfirmed.CanTransitionTo(RPQPending))

	require.True(t, PaymentPending.CanTransitionTo(PartialPaid))
	require.True(t, PartialPaid.CanTransitionTo(FullPaid))
	require.False(t, FullPaid.CanTransitionTo(PartialPaid))
	require.False(t, PartialPaid.CanTransitionTo(PaymentPending))
}

func TestQuotationConfirmationGate(t *testing.T) {
	q := QuotationRequest{
		Items:              []LineItem{priced(1, 2, "10")},
		Status:             RPQPending,
		ProductionLeadTime: "30 days",
	}
	Allocate(q.Items, PercentFromInt(30)).Apply(&q)
	require.Empty(t, q.ConfirmationProblems())
	require.True(t, q.Actions().CanConfirm)

	q.ProductionLeadTime = ""
	require.Equal(t, []string{"production lead time is required"}, q.ConfirmationProblems())
	require.False(t, q.Actions().CanConfirm)

	q.ProductionLeadTime = "30 days"
	q.Items = append(q.Items, LineItem{ProductID: 2, ProductName: "Nut", Qty: 1})
	require.False(t, q.Actions().CanConfirm)

	q.Items = q.Items[:1]
	Allocate(q.Items, Percent{}).Apply(&q)
	require.Contains(t, q.ConfirmationProblems(), "initial payment percentage is required")
}

func TestPurchaseOrderActions(t *testing.T) {
	po := PurchaseOrder{Items: []LineItem{priced(1, 1, "10")}, PaymentStatus: PaymentPending}
	a := po.Actions()
	require.True(t, a.CanEditPricing)
	require.True(t, a.CanSubmit)
	require.False(t, a.CanPayNow)

	po.IsSubmitted = true
	a = po.Actions()
	require.False(t, a.CanEditPricing)
	require.True(t, a.CanPayNow)

	po.PaymentStatus = PartialPaid
	require.True(t, po.Actions().CanPayNow)
	po.PaymentStatus = FullPaid
	require.False(t, po.Actions().CanPayNow)
}
