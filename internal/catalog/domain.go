// Package catalog exposes suppliers and products owned by the backend.
package catalog

import (
	"fmt"

	"github.com/WiseCart620/wisecartfrontend-sub001/internal/events"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/platform/httpx"
)

// Supplier is a vendor with contact and banking details.
type Supplier struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
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

// Variation is a sellable variant of a product.
type Variation struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	SKU  string `json:"sku,omitempty"`
	UPC  string `json:"upc,omitempty"`
}

// Product is an item a supplier can deliver.
type Product struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	SKU        string      `json:"sku,omitempty"`
	UPC        string      `json:"upc,omitempty"`
	UOM        string      `json:"uom,omitempty"`
	SupplierID int64       `json:"supplierId,omitempty"`
	Variations []Variation `json:"variations,omitempty"`
}

// Variation finds a variation by id.
func (p Product) Variation(id int64) (Variation, bool) {
	for _, v := range p.Variations {
		if v.ID == id {
			return v, true
		}
	}
	return Variation{}, false
}

// ErrSupplierNotFound indicates the supplier id is unknown to the backend.
var ErrSupplierNotFound = fmt.Errorf("catalog: supplier not found: %w", httpx.ErrNotFound)

// TopicChanged is published whenever cached catalog data is invalidated.
const TopicChanged events.Topic = "catalog.changed"

// Changed replaces the browser-wide "product updated" signal.
type Changed struct {
	Version int64 `json:"version"`
}

// Topic implements events.Event.
func (Changed) Topic() events.Topic { return TopicChanged }
