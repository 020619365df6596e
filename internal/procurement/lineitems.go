package procurement

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/WiseCart620/wisecartfrontend-sub001/internal/catalog"
)

// DefaultUOM applies when a line item has no unit of measure.
const DefaultUOM = "PCS"

// LineItem is the item shape shared by requests, quotations and orders.
type LineItem struct {
	ProductID   int64           `json:"productId"`
	VariationID *int64          `json:"variationId,omitempty"`
	ProductName string          `json:"productName"`
	SKU         string          `json:"sku,omitempty"`
	UPC         string          `json:"upc,omitempty"`
	Variation   string          `json:"variation,omitempty"`
	UOM         string          `json:"uom"`
	Qty         int             `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type itemKey struct {
	productID   int64
	variationID int64
	varied      bool
}

func (li LineItem) key() itemKey {
	if li.VariationID == nil {
		return itemKey{productID: li.ProductID}
	}
	return itemKey{productID: li.ProductID, variationID: *li.VariationID, varied: true}
}

// SameItem reports whether both lines refer to the same product and variation.
func (li LineItem) SameItem(o LineItem) bool {
	return li.key() == o.key()
}

// Priced reports whether the line has a positive unit price.
func (li LineItem) Priced() bool {
	return li.UnitPrice.IsPositive()
}

// LineTotal is unit price times quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Qty)))
}

func (li LineItem) label() string {
	if li.ProductName != "" {
		return li.ProductName
	}
	return fmt.Sprintf("product %d", li.ProductID)
}

// ItemFromProduct builds an unpriced line from catalog data.
func ItemFromProduct(p catalog.Product, variationID *int64, qty int) (LineItem, error) {
	item := LineItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		SKU:         p.SKU,
		UPC:         p.UPC,
		UOM:         p.UOM,
		Qty:         qty,
	}
	if variationID != nil {
		v, ok := p.Variation(*variationID)
		if !ok {
			return LineItem{}, invalid(fmt.Sprintf("%s has no variation %d", p.Name, *variationID))
		}
		id := v.ID
		item.VariationID = &id
		item.Variation = v.Name
		if v.SKU != "" {
			item.SKU = v.SKU
		}
		if v.UPC != "" {
			item.UPC = v.UPC
		}
	}
	return normalizeItem(item), nil
}

// AddLineItem appends item unless the same product and variation is already present.
func AddLineItem(items []LineItem, item LineItem) ([]LineItem, error) {
	if item.ProductID <= 0 {
		return items, invalid("product is required")
	}
	for _, existing := range items {
		if existing.SameItem(item) {
			return items, &DuplicateItemError{ProductID: item.ProductID, VariationID: item.VariationID, ProductName: item.ProductName}
		}
	}
	out := make([]LineItem, 0, len(items)+1)
	out = append(out, items...)
	return append(out, normalizeItem(item)), nil
}

// ValidateItems returns every problem preventing submission of items.
func ValidateItems(items []LineItem) []string {
	if len(items) == 0 {
		return []string{"at least one item is required"}
	}
	var problems []string
	seen := make(map[itemKey]int, len(items))
	for i, item := range items {
		n := i + 1
		if item.ProductID <= 0 {
			problems = append(problems, fmt.Sprintf("item %d: product is required", n))
			continue
		}
		if item.Qty <= 0 {
			problems = append(problems, fmt.Sprintf("item %d (%s): quantity must be greater than 0", n, item.label()))
		}
		if item.UnitPrice.IsNegative() {
			problems = append(problems, fmt.Sprintf("item %d (%s): unit price cannot be negative", n, item.label()))
		}
		if first, dup := seen[item.key()]; dup {
			problems = append(problems, fmt.Sprintf("item %d (%s): duplicates item %d", n, item.label(), first))
			continue
		}
		seen[item.key()] = n
	}
	return problems
}

// UnpricedItems lists the lines without a positive unit price.
func UnpricedItems(items []LineItem) []string {
	var out []string
	for i, item := range items {
		if !item.Priced() {
			out = append(out, fmt.Sprintf("item %d (%s): unit price is required", i+1, item.label()))
		}
	}
	return out
}

// NormalizeItems returns a copy with default UOM and recomputed totals.
func NormalizeItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, item := range items {
		out[i] = normalizeItem(item)
	}
	return out
}

func normalizeItem(item LineItem) LineItem {
	item.ProductName = strings.TrimSpace(item.ProductName)
	item.UOM = strings.ToUpper(strings.TrimSpace(item.UOM))
	if item.UOM == "" {
		item.UOM = DefaultUOM
	}
	item.TotalAmount = item.LineTotal()
	return item
}

// GrandTotal sums unit price times quantity over items.
func GrandTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// LineItemPatch carries the editable fields of one line. Nil fields are left alone.
type LineItemPatch struct {
	Qty       *int             `json:"qty,omitempty"`
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
	UOM       *string          `json:"uom,omitempty"`
}

// ItemPatch addresses a line by product and variation.
type ItemPatch struct {
	ProductID   int64  `json:"productId"`
	VariationID *int64 `json:"variationId,omitempty"`
	LineItemPatch
}

// ApplyItemPatches returns a copy of items with patches applied and totals recomputed.
func ApplyItemPatches(items []LineItem, patches []ItemPatch) ([]LineItem, error) {
	out := NormalizeItems(items)
	var problems []string
	for _, patch := range patches {
		target := LineItem{ProductID: patch.ProductID, VariationID: patch.VariationID}
		idx := -1
		for i := range out {
			if out[i].SameItem(target) {
				idx = i
				break
			}
		}
		if idx < 0 {
			problems = append(problems, fmt.Sprintf("%s is not on this record", target.label()))
			continue
		}
		item := out[idx]
		if patch.Qty != nil {
			if *patch.Qty <= 0 {
				problems = append(problems, fmt.Sprintf("%s: quantity must be greater than 0", item.label()))
				continue
			}
			item.Qty = *patch.Qty
		}
		if patch.UnitPrice != nil {
			if patch.UnitPrice.IsNegative() {
				problems = append(problems, fmt.Sprintf("%s: unit price cannot be negative", item.label()))
				continue
			}
			item.UnitPrice = *patch.UnitPrice
		}
		if patch.UOM != nil {
			item.UOM = *patch.UOM
		}
		out[idx] = normalizeItem(item)
	}
	if len(problems) > 0 {
		return items, invalid(problems...)
	}
	return out, nil
}
