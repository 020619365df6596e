package procurement

import (
	"github.com/shopspring/decimal"

	"github.com/WiseCart620/wisecartfrontend-sub001/internal/events"
)

// Topics published by the workflow.
const (
	TopicInventoryRequestChanged events.Topic = "inventory_request.changed"
	TopicQuotationChanged        events.Topic = "quotation.changed"
	TopicPurchaseOrderChanged    events.Topic = "purchase_order.changed"
	TopicPaymentRecorded         events.Topic = "payment.recorded"
	TopicTransitionIncomplete    events.Topic = "workflow.incomplete"
)

// Change verbs carried by the *Changed events.
const (
	ChangeCreated   = "created"
	ChangeUpdated   = "updated"
	ChangeDeleted   = "deleted"
	ChangeProceeded = "proceeded"
	ChangeConfirmed = "confirmed"
	ChangeSubmitted = "submitted"
	ChangeAttached  = "attached"
	ChangeDetached  = "detached"
)

// InventoryRequestChanged is published after any inventory request mutation.
type InventoryRequestChanged struct {
	ID            int64     `json:"id"`
	ControlNumber string    `json:"controlNumber"`
	Change        string    `json:"change"`
	Status        IRRStatus `json:"status,omitempty"`
}

// Topic implements events.Event.
func (InventoryRequestChanged) Topic() events.Topic { return TopicInventoryRequestChanged }

// QuotationChanged is published after any quotation mutation.
type QuotationChanged struct {
	ID            int64     `json:"id"`
	ControlNumber string    `json:"controlNumber"`
	Change        string    `json:"change"`
	Status        RPQStatus `json:"status,omitempty"`
}

// Topic implements events.Event.
func (QuotationChanged) Topic() events.Topic { return TopicQuotationChanged }

// PurchaseOrderChanged is published after any purchase order mutation.
type PurchaseOrderChanged struct {
	ID            int64         `json:"id"`
	ControlNumber string        `json:"controlNumber"`
	Change        string        `json:"change"`
	PaymentStatus PaymentStatus `json:"paymentStatus,omitempty"`
}

// Topic implements events.Event.
func (PurchaseOrderChanged) Topic() events.Topic { return TopicPurchaseOrderChanged }

// PaymentRecorded replaces the browser-wide "payment updated" signal.
type PaymentRecorded struct {
	PaymentID        int64           `json:"paymentId"`
	PurchaseOrderID  int64           `json:"purchaseOrderId"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentStatus    PaymentStatus   `json:"paymentStatus"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	Overpayment      bool            `json:"overpayment"`
}

// Topic implements events.Event.
func (PaymentRecorded) Topic() events.Topic { return TopicPaymentRecorded }

// TransitionIncomplete is published when a multi-step transition stops half way.
type TransitionIncomplete struct {
	Transition string `json:"transition"`
	Entity     string `json:"entity"`
	EntityID   int64  `json:"entityId"`
	Completed  string `json:"completed"`
	Failed     string `json:"failed"`
	Error      string `json:"error"`
}

// Topic implements events.Event.
func (TransitionIncomplete) Topic() events.Topic { return TopicTransitionIncomplete }
