package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/WiseCart620/wisecartfrontend-sub001/internal/platform/backend"
)

// Repository reads catalog data from the backend.
type Repository struct {
	client *backend.Client
}

// NewRepository builds a backend-backed Repository.
func NewRepository(client *backend.Client) *Repository {
	return &Repository{client: client}
}

// ListSuppliers returns every supplier.
func (r *Repository) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	var out []Supplier
	if err := r.client.Get(ctx, "suppliers", nil, &out); err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return out, nil
}

// GetSupplier loads a single supplier.
func (r *Repository) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	var out Supplier
	err := r.client.Get(ctx, "suppliers/"+strconv.FormatInt(id, 10), nil, &out)
	if errors.Is(err, backend.ErrNotFound) {
		return Supplier{}, ErrSupplierNotFound
	}
	if err != nil {
		return Supplier{}, fmt.Errorf("get supplier %d: %w", id, err)
	}
	return out, nil
}

// ListProducts returns products, optionally restricted to one supplier.
func (r *Repository) ListProducts(ctx context.Context, supplierID int64) ([]Product, error) {
	path := "products"
	var query url.Values
	if supplierID > 0 {
		path = "products/by-supplier/" + strconv.FormatInt(supplierID, 10)
	} else {
		query = url.Values{"limit": {"1000"}}
	}
	var out []Product
	if err := r.client.Get(ctx, path, query, &out); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}
