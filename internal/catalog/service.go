package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"golang.org/x/sync/singleflight"
)

// Source is the read side of the backend catalog.
type Source interface {
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	GetSupplier(ctx context.Context, id int64) (Supplier, error)
	ListProducts(ctx context.Context, supplierID int64) ([]Product, error)
}

// Service serves catalog reads through a shared cache.
type Service struct {
	source Source
	cache  *Cache
	logger *slog.Logger
	group  singleflight.Group
}

// NewService constructs Service. cache may be nil.
func NewService(source Source, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, cache: cache, logger: logger}
}

// Suppliers returns the cached supplier list.
func (s *Service) Suppliers(ctx context.Context) ([]Supplier, error) {
	var out []Supplier
	err := s.cached(ctx, &out, func(ctx context.Context) (any, error) {
		return s.source.ListSuppliers(ctx)
	}, "suppliers")
	return out, err
}

// Products returns the cached product list, filtered by supplier when supplierID > 0.
func (s *Service) Products(ctx context.Context, supplierID int64) ([]Product, error) {
	var out []Product
	err := s.cached(ctx, &out, func(ctx context.Context) (any, error) {
		return s.source.ListProducts(ctx, supplierID)
	}, "products", strconv.FormatInt(supplierID, 10))
	return out, err
}

// Supplier always reads through to the backend so snapshots carry current details.
func (s *Service) Supplier(ctx context.Context, id int64) (Supplier, error) {
	return s.source.GetSupplier(ctx, id)
}

// Invalidate drops every cached entry and returns the new version.
func (s *Service) Invalidate(ctx context.Context) (int64, error) {
	return s.cache.Bump(ctx)
}

// Warm invalidates and repopulates the common lists. It returns the number of records loaded.
func (s *Service) Warm(ctx context.Context) (int, error) {
	if _, err := s.Invalidate(ctx); err != nil {
		return 0, err
	}
	suppliers, err := s.Suppliers(ctx)
	if err != nil {
		return 0, err
	}
	products, err := s.Products(ctx, 0)
	if err != nil {
		return len(suppliers), err
	}
	return len(suppliers) + len(products), nil
}

func (s *Service) cached(ctx context.Context, dest any, loader func(context.Context) (any, error), parts ...string) error {
	key, err := s.cache.BuildKey(ctx, parts...)
	if err != nil {
		s.logger.Warn("catalog cache unavailable", slog.Any("error", err))
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	ch := s.group.DoChan(key, func() (any, error) {
		var raw json.RawMessage
		err := s.cache.FetchJSON(ctx, key, &raw, loader)
		return raw, err
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.(json.RawMessage), dest)
	}
}
