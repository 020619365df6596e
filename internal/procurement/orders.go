package procurement

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// PurchaseOrderDetail is a purchase order with its payment ledger.
type PurchaseOrderDetail struct {
	Order  PurchaseOrderView `json:"order"`
	Ledger PaymentLedger     `json:"ledger"`
}

// PaymentReceipt is the outcome of recording a payment.
type PaymentReceipt struct {
	Payment Payment           `json:"payment"`
	Order   PurchaseOrderView `json:"order"`
	Check   PaymentCheck      `json:"check"`
}

// ListPurchaseOrders returns every purchase order.
func (s *Service) ListPurchaseOrders(ctx context.Context) ([]PurchaseOrder, error) {
	return s.repo.ListPurchaseOrders(ctx)
}

// GetPurchaseOrder loads one purchase order.
func (s *Service) GetPurchaseOrder(ctx context.Context, id int64) (PurchaseOrder, error) {
	return s.repo.GetPurchaseOrder(ctx, id)
}

// GetPurchaseOrderDetail loads the order and its payments concurrently.
func (s *Service) GetPurchaseOrderDetail(ctx context.Context, id int64) (PurchaseOrderDetail, error) {
	po, payments, err := s.orderWithPayments(ctx, id)
	if err != nil {
		return PurchaseOrderDetail{}, err
	}
	return PurchaseOrderDetail{Order: ViewPO(po), Ledger: BuildLedger(po.TotalAmount, payments)}, nil
}

func (s *Service) orderWithPayments(ctx context.Context, id int64) (PurchaseOrder, []Payment, error) {
	var (
		po       PurchaseOrder
		payments []Payment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		po, err = s.repo.GetPurchaseOrder(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = s.repo.ListPayments(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return PurchaseOrder{}, nil, err
	}
	return po, payments, nil
}

// UpdatePurchaseOrderPricing edits item prices and quantities before submission.
func (s *Service) UpdatePurchaseOrderPricing(ctx context.Context, id int64, patches []ItemPatch) (PurchaseOrder, error) {
	if len(patches) == 0 {
		return PurchaseOrder{}, invalid("no pricing changes supplied")
	}
	release, err := s.lock(ctx, "po", id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	defer release()

	po, err := s.repo.GetPurchaseOrder(ctx, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	if !po.Actions().CanEditPricing {
		return PurchaseOrder{}, poStateError(po, "edit pricing of")
	}
	items, err := ApplyItemPatches(po.Items, patches)
	if err != nil {
		return PurchaseOrder{}, err
	}
	if problems := ValidateItems(items); len(problems) > 0 {
		return PurchaseOrder{}, invalid(problems...)
	}
	po.Items = items
	po.TotalAmount = GrandTotal(items)
	po.RemainingBalance = decimal.Max(po.TotalAmount.Sub(po.TotalPaid), decimal.Zero)

	updated, err := s.repo.UpdatePurchaseOrder(ctx, po)
	if err != nil {
		return PurchaseOrder{}, err
	}
	s.record(ctx, "PO_PRICING_UPDATED", "purchase_order", id, map[string]any{"total_amount": po.TotalAmount.String()})
	s.publish(ctx, PurchaseOrderChanged{ID: id, ControlNumber: po.ControlNumber, Change: ChangeUpdated, PaymentStatus: po.PaymentStatus})
	return updated, nil
}

// SubmitPurchaseOrder passes the submission milestone. Every item must be
// priced; the payment status does not change.
func (s *Service) SubmitPurchaseOrder(ctx context.Context, id int64) (PurchaseOrder, error) {
	release, err := s.lock(ctx, "po", id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	defer release()

	po, err := s.repo.GetPurchaseOrder(ctx, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	if po.IsSubmitted || po.PaymentStatus != PaymentPending {
		return PurchaseOrder{}, poStateError(po, "submit")
	}
	if len(po.Items) == 0 {
		return PurchaseOrder{}, invalid("at least one item is required")
	}
	problems := append(ValidateItems(po.Items), UnpricedItems(po.Items)...)
	if len(problems) > 0 {
		return PurchaseOrder{}, invalid(problems...)
	}

	submitted, err := s.repo.SubmitPurchaseOrder(ctx, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	if submitted.ID == 0 {
		submitted = po
		submitted.IsSubmitted = true
		now := s.clock()
		submitted.SubmittedAt = &now
	}
	s.record(ctx, "PO_SUBMITTED", "purchase_order", id, nil)
	s.publish(ctx, PurchaseOrderChanged{ID: id, ControlNumber: po.ControlNumber, Change: ChangeSubmitted, PaymentStatus: submitted.PaymentStatus})
	return submitted, nil
}

// UploadPurchaseOrderFile stores a signed or scanned copy of the order and returns the refreshed order.
func (s *Service) UploadPurchaseOrderFile(ctx context.Context, id int64, file Upload) (PurchaseOrder, error) {
	if file.Body == nil || file.Name == "" {
		return PurchaseOrder{}, invalid("file is required")
	}
	release, err := s.lock(ctx, "po", id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	defer release()

	if _, err := s.repo.GetPurchaseOrder(ctx, id); err != nil {
		return PurchaseOrder{}, err
	}
	if err := s.repo.UploadPurchaseOrderFile(ctx, id, file); err != nil {
		return PurchaseOrder{}, err
	}
	po, err := s.repo.GetPurchaseOrder(ctx, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	s.record(ctx, "PO_FILE_UPLOADED", "purchase_order", id, map[string]any{"name": file.Name})
	s.publish(ctx, PurchaseOrderChanged{ID: id, ControlNumber: po.ControlNumber, Change: ChangeAttached, PaymentStatus: po.PaymentStatus})
	return po, nil
}

// ListPayments returns the payments recorded against a purchase order.
func (s *Service) ListPayments(ctx context.Context, poID int64) ([]Payment, error) {
	return s.repo.ListPayments(ctx, poID)
}

// PaymentLedger returns running totals for a purchase order's payments.
func (s *Service) PaymentLedger(ctx context.Context, poID int64) (PaymentLedger, error) {
	po, payments, err := s.orderWithPayments(ctx, poID)
	if err != nil {
		return PaymentLedger{}, err
	}
	return BuildLedger(po.TotalAmount, payments), nil
}

// PreviewPayment runs the overpayment check for amount without recording anything.
func (s *Service) PreviewPayment(ctx context.Context, poID int64, amount decimal.Decimal) (PaymentCheck, error) {
	po, payments, err := s.orderWithPayments(ctx, poID)
	if err != nil {
		return PaymentCheck{}, err
	}
	return CheckPayment(po.TotalAmount, SumPaid(payments), amount), nil
}

// RecordPayment appends a payment to a submitted purchase order. An
// overpayment is only sent when the input acknowledges it. The order is
// re-read afterwards because the backend owns the aggregates.
func (s *Service) RecordPayment(ctx context.Context, poID int64, in PaymentInput) (PaymentReceipt, error) {
	if problems := in.Validate(); len(problems) > 0 {
		return PaymentReceipt{}, invalid(problems...)
	}
	release, err := s.lock(ctx, "po", poID)
	if err != nil {
		return PaymentReceipt{}, err
	}
	defer release()

	po, history, err := s.orderWithPayments(ctx, poID)
	if err != nil {
		return PaymentReceipt{}, err
	}
	if !po.Actions().CanPayNow {
		return PaymentReceipt{}, poStateError(po, "record a payment for")
	}
	paid := SumPaid(history)
	check := CheckPayment(po.TotalAmount, paid, in.ProductDollarAmount)
	if check.IsOverpayment && !in.ConfirmOverpayment {
		return PaymentReceipt{}, &OverpaymentError{Check: check}
	}

	keyed := in.IdempotencyKey != "" && s.idem != nil
	if keyed {
		if err := s.idem.CheckAndInsert(ctx, in.IdempotencyKey, paymentIdempotencyModule); err != nil {
			return PaymentReceipt{}, err
		}
	}
	payment := BuildPayment(po, in, len(history), s.today())
	created, err := s.repo.CreatePayment(ctx, payment)
	if err != nil {
		if keyed {
			if derr := s.idem.Delete(ctx, in.IdempotencyKey); derr != nil {
				s.logger.Warn("release idempotency key", slog.Any("error", derr))
			}
		}
		return PaymentReceipt{}, err
	}

	refreshed, err := s.repo.GetPurchaseOrder(ctx, poID)
	if err != nil {
		s.logger.Warn("refresh purchase order after payment", slog.Int64("id", poID), slog.Any("error", err))
		refreshed = po
		refreshed.TotalPaid = paid.Add(in.ProductDollarAmount)
		refreshed.RemainingBalance = decimal.Max(po.TotalAmount.Sub(refreshed.TotalPaid), decimal.Zero)
		refreshed.PaymentStatus = PaymentStatusFor(po.TotalAmount, refreshed.TotalPaid)
	}

	s.record(ctx, "PAYMENT_RECORDED", "purchase_order", poID, map[string]any{
		"payment_id":     created.ID,
		"amount":         in.ProductDollarAmount.String(),
		"new_total_pct":  check.NewTotalPercent.StringFixed(2),
		"overpayment":    check.IsOverpayment,
		"payment_status": string(refreshed.PaymentStatus),
	})
	s.publish(ctx, PaymentRecorded{
		PaymentID:        created.ID,
		PurchaseOrderID:  poID,
		Amount:           in.ProductDollarAmount,
		PaymentStatus:    refreshed.PaymentStatus,
		RemainingBalance: refreshed.RemainingBalance,
		Overpayment:      check.IsOverpayment,
	})
	s.publish(ctx, PurchaseOrderChanged{ID: poID, ControlNumber: refreshed.ControlNumber, Change: ChangeUpdated, PaymentStatus: refreshed.PaymentStatus})
	return PaymentReceipt{Payment: created, Order: ViewPO(refreshed), Check: check}, nil
}

func poStateError(po PurchaseOrder, action string) error {
	status := string(po.PaymentStatus)
	if po.IsSubmitted && po.PaymentStatus == PaymentPending {
		status = "SUBMITTED"
	}
	if !po.IsSubmitted && action == "record a payment for" {
		status = "NOT SUBMITTED"
	}
	return &StateError{Entity: "purchase order", ControlNumber: po.ControlNumber, Status: status, Action: action}
}
