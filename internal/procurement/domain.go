// Package procurement implements the inventory request, quotation, purchase
// order and payment workflow on top of the backend REST collaborator.
package procurement

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/WiseCart620/wisecartfrontend-sub001/internal/catalog"
)

// IRRStatus enumerates inventory request states.
type IRRStatus string

const (
	IRRPending        IRRStatus = "PENDING"
	IRRProceededToRPQ IRRStatus = "PROCEEDED_TO_RPQ"
)

// IsValid reports whether s is a known status.
func (s IRRStatus) IsValid() bool {
	return s == IRRPending || s == IRRProceededToRPQ
}

// CanTransitionTo reports whether the workflow allows moving to target.
func (s IRRStatus) CanTransitionTo(target IRRStatus) bool {
	return s == IRRPending && (target == IRRPending || target == IRRProceededToRPQ)
}

// RPQStatus enumerates quotation request states.
type RPQStatus string

const (
	RPQDraft     RPQStatus = "DRAFT"
	RPQPending   RPQStatus = "PENDING"
	RPQConfirmed RPQStatus = "CONFIRMED"
)

// IsValid reports whether s is a known status.
func (s RPQStatus) IsValid() bool {
	switch s {
	case RPQDraft, RPQPending, RPQConfirmed:
		return true
	}
	return false
}

// IsEditable reports whether the quotation can still change.
func (s RPQStatus) IsEditable() bool {
	return s == RPQDraft || s == RPQPending
}

// CanTransitionTo reports whether the workflow allows moving to target.
func (s RPQStatus) CanTransitionTo(target RPQStatus) bool {
	if !s.IsEditable() {
		return false
	}
	return target.IsValid()
}

// PaymentStatus enumerates purchase order payment states. It is computed by
// the backend from the accumulated payments.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PAYMENT_PENDING"
	PartialPaid    PaymentStatus = "PARTIAL_PAID"
	FullPaid       PaymentStatus = "FULL_PAID"
)

// IsValid reports whether s is a known status.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PartialPaid, FullPaid:
		return true
	}
	return false
}

// CanTransitionTo reports whether target follows s. Payment states only move forward.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch s {
	case PaymentPending:
		return target.IsValid()
	case PartialPaid:
		return target == PartialPaid || target == FullPaid
	case FullPaid:
		return target == FullPaid
	}
	return false
}

// DocumentKind names an attachment slot on a quotation.
type DocumentKind string

const (
	DocQuotation         DocumentKind = "quotation"
	DocProformaInvoice   DocumentKind = "proformaInvoice"
	DocProductSpec       DocumentKind = "productSpecification"
	DocPackingList       DocumentKind = "packingList"
	DocCommercialInvoice DocumentKind = "commercialInvoice"
	DocPaymentProof      DocumentKind = "paymentProof"
)

// IsValid reports whether k is a known attachment slot.
func (k DocumentKind) IsValid() bool {
	switch k {
	case DocQuotation, DocProformaInvoice, DocProductSpec, DocPackingList, DocCommercialInvoice, DocPaymentProof:
		return true
	}
	return false
}

// Document references a file held by the storage service.
type Document struct {
	URL         string     `json:"url"`
	Name        string     `json:"name,omitempty"`
	ContentType string     `json:"contentType,omitempty"`
	UploadedAt  *time.Time `json:"uploadedAt,omitempty"`
}

// SupplierInfo is the contact and banking snapshot copied onto a quotation.
type SupplierInfo struct {
	ContactPerson     string `json:"contactPerson,omitempty"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	Address           string `json:"address,omitempty"`
	Country           string `json:"country,omitempty"`
	BankName          string `json:"bankName,omitempty"`
	BankAccountName   string `json:"bankAccountName,omitempty"`
	BankAccountNumber string `json:"bankAccountNumber,omitempty"`
	BankAddress       string `json:"bankAddress,omitempty"`
	SwiftCode         string `json:"swiftCode,omitempty"`
}

// SnapshotSupplier copies the supplier's current details. Later supplier edits do not flow back.
func SnapshotSupplier(s catalog.Supplier) SupplierInfo {
	return SupplierInfo{
		ContactPerson:     s.ContactPerson,
		Email:             s.Email,
		Phone:             s.Phone,
		Address:           s.Address,
		Country:           s.Country,
		BankName:          s.BankName,
		BankAccountName:   s.BankAccountName,
		BankAccountNumber: s.BankAccountNumber,
		BankAddress:       s.BankAddress,
		SwiftCode:         s.SwiftCode,
	}
}

// InventoryRequest is the initial ask for products from a supplier.
type InventoryRequest struct {
	ID            int64      `json:"id"`
	ControlNumber string     `json:"controlNumber"`
	SupplierID    int64      `json:"supplierId"`
	SupplierName  string     `json:"supplierName,omitempty"`
	Requestor     string     `json:"requestor"`
	Items         []LineItem `json:"items"`
	Remarks       string     `json:"remarks,omitempty"`
	Status        IRRStatus  `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// QuotationRequest is the priced follow-up of an inventory request.
type QuotationRequest struct {
	ID                    int64                     `json:"id"`
	ControlNumber         string                    `json:"controlNumber"`
	IRRID                 int64                     `json:"irrId,omitempty"`
	SupplierID            int64                     `json:"supplierId"`
	SupplierName          string                    `json:"supplierName"`
	SupplierInfo          SupplierInfo              `json:"supplierInfo"`
	Items                 []LineItem                `json:"items"`
	MOQ                   int                       `json:"moq"`
	InitialPaymentPercent Percent                   `json:"initialPaymentPercent"`
	FinalPaymentPercent   Percent                   `json:"finalPaymentPercent"`
	InitialPaymentAmount  decimal.Decimal           `json:"initialPaymentAmount"`
	FinalPaymentAmount    decimal.Decimal           `json:"finalPaymentAmount"`
	ProductionLeadTime    string                    `json:"productionLeadTime"`
	ProductionDetails     string                    `json:"productionDetails,omitempty"`
	PaymentInstruction    string                    `json:"paymentInstruction,omitempty"`
	Documents             map[DocumentKind]Document `json:"documents,omitempty"`
	Status                RPQStatus                 `json:"status"`
	CreatedAt             time.Time                 `json:"createdAt"`
}

// GrandTotal sums the priced item totals.
func (q QuotationRequest) GrandTotal() decimal.Decimal {
	return GrandTotal(q.Items)
}

// PurchaseOrder is the confirmed order against which payments accrue.
type PurchaseOrder struct {
	ID                 int64           `json:"id"`
	ControlNumber      string          `json:"controlNumber"`
	QuotationRequestID int64           `json:"quotationRequestId"`
	SupplierName       string          `json:"supplierName"`
	SupplierInfo       SupplierInfo    `json:"supplierInfo"`
	Items              []LineItem      `json:"items"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	TotalPaid          decimal.Decimal `json:"totalPaid"`
	RemainingBalance   decimal.Decimal `json:"remainingBalance"`
	PaymentStatus      PaymentStatus   `json:"paymentStatus"`
	UploadedFileURL    string          `json:"uploadedFileUrl,omitempty"`
	IsSubmitted        bool            `json:"isSubmitted"`
	SubmittedAt        *time.Time      `json:"submittedAt,omitempty"`
	Date               Date            `json:"date"`
}

// Payment is an append-only payment record against a purchase order.
type Payment struct {
	ID                  int64           `json:"id"`
	PurchaseOrderID     int64           `json:"purchaseOrderId"`
	PaymentNumber       string          `json:"paymentNumber"`
	BankName            string          `json:"bankName,omitempty"`
	ReferenceNumber     string          `json:"referenceNumber,omitempty"`
	PaymentDate         Date            `json:"paymentDate"`
	ProductDollarAmount decimal.Decimal `json:"productDollarAmount"`
	ProductPesoAmount   decimal.Decimal `json:"productPesoAmount"`
	ProcessingFeeDollar decimal.Decimal `json:"processingFeeDollar"`
	ProcessingFeePeso   decimal.Decimal `json:"processingFeePeso"`
	TotalDollar         decimal.Decimal `json:"totalDollar"`
	TotalPeso           decimal.Decimal `json:"totalPeso"`
	PercentageOfTotal   decimal.Decimal `json:"percentageOfTotal"`
	Remarks             string          `json:"remarks,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
}
