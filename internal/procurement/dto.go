package procurement

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type itemRequest struct {
	ProductID   int64           `json:"productId" validate:"required,gt=0"`
	VariationID *int64          `json:"variationId,omitempty" validate:"omitempty,gt=0"`
	ProductName string          `json:"productName" validate:"max=255"`
	SKU         string          `json:"sku" validate:"max=100"`
	UPC         string          `json:"upc" validate:"max=100"`
	Variation   string          `json:"variation" validate:"max=255"`
	UOM         string          `json:"uom" validate:"max=20"`
	Qty         int             `json:"qty" validate:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

func (r itemRequest) lineItem() LineItem {
	return LineItem{
		ProductID:   r.ProductID,
		VariationID: r.VariationID,
		ProductName: r.ProductName,
		SKU:         r.SKU,
		UPC:         r.UPC,
		Variation:   r.Variation,
		UOM:         r.UOM,
		Qty:         r.Qty,
		UnitPrice:   r.UnitPrice,
	}
}

func lineItems(in []itemRequest) []LineItem {
	out := make([]LineItem, len(in))
	for i, r := range in {
		out[i] = r.lineItem()
	}
	return out
}

type irrRequest struct {
	SupplierID int64         `json:"supplierId" validate:"required,gt=0"`
	Requestor  string        `json:"requestor" validate:"max=120"`
	Items      []itemRequest `json:"items" validate:"required,min=1,dive"`
	Remarks    string        `json:"remarks" validate:"max=2000"`
}

func (r irrRequest) input() InventoryRequestInput {
	return InventoryRequestInput{SupplierID: r.SupplierID, Requestor: r.Requestor, Items: lineItems(r.Items), Remarks: r.Remarks}
}

type irrBatchRequest struct {
	Requests []irrRequest `json:"requests" validate:"required,min=1,max=50,dive"`
}

type rpqRequest struct {
	IRRID                 int64         `json:"irrId" validate:"gte=0"`
	SupplierID            int64         `json:"supplierId" validate:"required,gt=0"`
	Items                 []itemRequest `json:"items" validate:"required,min=1,dive"`
	MOQ                   int           `json:"moq" validate:"gte=0"`
	InitialPaymentPercent Percent       `json:"initialPaymentPercent"`
	ProductionLeadTime    string        `json:"productionLeadTime" validate:"max=255"`
	ProductionDetails     string        `json:"productionDetails" validate:"max=4000"`
	PaymentInstruction    string        `json:"paymentInstruction" validate:"max=4000"`
	Status                RPQStatus     `json:"status" validate:"omitempty,oneof=DRAFT PENDING"`
}

func (r rpqRequest) input() QuotationInput {
	return QuotationInput{
		IRRID:                 r.IRRID,
		SupplierID:            r.SupplierID,
		Items:                 lineItems(r.Items),
		MOQ:                   r.MOQ,
		InitialPaymentPercent: r.InitialPaymentPercent,
		ProductionLeadTime:    r.ProductionLeadTime,
		ProductionDetails:     r.ProductionDetails,
		PaymentInstruction:    r.PaymentInstruction,
		Status:                r.Status,
	}
}

type rpqPatchRequest struct {
	Items                 *[]itemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
	ItemPatches           []ItemPatch    `json:"itemPatches,omitempty" validate:"omitempty,dive"`
	MOQ                   *int           `json:"moq,omitempty" validate:"omitempty,gte=0"`
	InitialPaymentPercent *Percent       `json:"initialPaymentPercent,omitempty"`
	ProductionLeadTime    *string        `json:"productionLeadTime,omitempty" validate:"omitempty,max=255"`
	ProductionDetails     *string        `json:"productionDetails,omitempty" validate:"omitempty,max=4000"`
	PaymentInstruction    *string        `json:"paymentInstruction,omitempty" validate:"omitempty,max=4000"`
	Status                *RPQStatus     `json:"status,omitempty" validate:"omitempty,oneof=DRAFT PENDING"`
}

func (r rpqPatchRequest) patch() QuotationPatch {
	p := QuotationPatch{
		ItemPatches:           r.ItemPatches,
		MOQ:                   r.MOQ,
		InitialPaymentPercent: r.InitialPaymentPercent,
		ProductionLeadTime:    r.ProductionLeadTime,
		ProductionDetails:     r.ProductionDetails,
		PaymentInstruction:    r.PaymentInstruction,
		Status:                r.Status,
	}
	if r.Items != nil {
		items := lineItems(*r.Items)
		p.Items = &items
	}
	return p
}

type pricingRequest struct {
	Items []ItemPatch `json:"items" validate:"required,min=1,dive"`
}

type paymentRequest struct {
	PaymentNumber       string          `json:"paymentNumber" validate:"max=64"`
	BankName            string          `json:"bankName" validate:"max=255"`
	ReferenceNumber     string          `json:"referenceNumber" validate:"max=255"`
	PaymentDate         Date            `json:"paymentDate"`
	ProductDollarAmount decimal.Decimal `json:"productDollarAmount"`
	ProductPesoAmount   decimal.Decimal `json:"productPesoAmount"`
	ProcessingFeeDollar decimal.Decimal `json:"processingFeeDollar"`
	ProcessingFeePeso   decimal.Decimal `json:"processingFeePeso"`
	Remarks             string          `json:"remarks" validate:"max=2000"`
	ConfirmOverpayment  bool            `json:"confirmOverpayment"`
}

func (r paymentRequest) input(key string) PaymentInput {
	return PaymentInput{
		PaymentNumber:       r.PaymentNumber,
		BankName:            r.BankName,
		ReferenceNumber:     r.ReferenceNumber,
		PaymentDate:         r.PaymentDate,
		ProductDollarAmount: r.ProductDollarAmount,
		ProductPesoAmount:   r.ProductPesoAmount,
		ProcessingFeeDollar: r.ProcessingFeeDollar,
		ProcessingFeePeso:   r.ProcessingFeePeso,
		Remarks:             r.Remarks,
		ConfirmOverpayment:  r.ConfirmOverpayment,
		IdempotencyKey:      key,
	}
}

type allocationRequest struct {
	Items                 []itemRequest `json:"items" validate:"dive"`
	InitialPaymentPercent Percent       `json:"initialPaymentPercent"`
}

type paymentCheckRequest struct {
	PurchaseOrderID int64           `json:"purchaseOrderId" validate:"gte=0"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	TotalPaid       decimal.Decimal `json:"totalPaid"`
	NewPayment      decimal.Decimal `json:"newPayment"`
}

type priceEntryRequest struct {
	Value decimal.Decimal `json:"value"`
	Keys  []string        `json:"keys" validate:"max=64"`
}

type priceEntryResponse struct {
	Value   string   `json:"value"`
	Cents   int64    `json:"cents"`
	Results []string `json:"results"`
}

type lineItemAddRequest struct {
	Items []LineItem  `json:"items"`
	Item  itemRequest `json:"item"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationProblems flattens validator output into readable problems.
func validationProblems(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return invalid(err.Error())
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			problems = append(problems, field+" is required")
		case "gt", "gte":
			problems = append(problems, fmt.Sprintf("%s must be %s %s", field, map[string]string{"gt": "greater than", "gte": "at least"}[fe.Tag()], fe.Param()))
		case "min":
			problems = append(problems, fmt.Sprintf("%s needs at least %s entries", field, fe.Param()))
		case "max":
			problems = append(problems, fmt.Sprintf("%s exceeds %s", field, fe.Param()))
		case "oneof":
			problems = append(problems, fmt.Sprintf("%s must be one of %s", field, fe.Param()))
		default:
			problems = append(problems, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return invalid(problems...)
}
