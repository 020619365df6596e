package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memorySource struct {
	mu            sync.Mutex
	suppliers     []Supplier
	products      []Product
	supplierCalls int
	productCalls  int
	fail          error
}

func (m *memorySource) ListSuppliers(context.Context) ([]Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.supplierCalls++
	if m.fail != nil {
		return nil, m.fail
	}
	return append([]Supplier(nil), m.suppliers...), nil
}

func (m *memorySource) GetSupplier(_ context.Context, id int64) (Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.suppliers {
		if s.ID == id {
			return s, nil
		}
	}
	return Supplier{}, ErrSupplierNotFound
}

func (m *memorySource) ListProducts(_ context.Context, supplierID int64) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.productCalls++
	var out []Product
	for _, p := range m.products {
		if supplierID == 0 || p.SupplierID == supplierID {
			out = append(out, p)
		}
	}
	return out, nil
}

func newTestService(t *testing.T, src *memorySource) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(src, NewCache(client, time.Minute), nil), mr
}

func TestSuppliersServedFromCache(t *testing.T) {
	src := &memorySource{suppliers: []Supplier{{ID: 1, Name: "Acme"}}}
	svc, _ := newTestService(t, src)
	ctx := context.Background()

	first, err := svc.Suppliers(ctx)
	require.NoError(t, err)
	second, err := svc.Suppliers(ctx)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, 1, src.supplierCalls)
}

func TestInvalidateForcesReload(t *testing.T) {
	src := &memorySource{suppliers: []Supplier{{ID: 1, Name: "Acme"}}}
	svc, _ := newTestService(t, src)
	ctx := context.Background()

	_, err := svc.Suppliers(ctx)
	require.NoError(t, err)
	src.suppliers[0].Name = "Acme Trading"

	ver, err := svc.Invalidate(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), ver)

	got, err := svc.Suppliers(ctx)
	require.NoError(t, err)
	require.Equal(t, "Acme Trading", got[0].Name)
	require.Equal(t, 2, src.supplierCalls)
}

func TestProductsCachedPerSupplier(t *testing.T) {
	src := &memorySource{products: []Product{
		{ID: 10, Name: "Bolt", SupplierID: 1},
		{ID: 11, Name: "Nut", SupplierID: 2},
	}}
	svc, _ := newTestService(t, src)
	ctx := context.Background()

	all, err := svc.Products(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)

	only, err := svc.Products(ctx, 2)
	require.NoError(t, err)
	require.Len(t, only, 1)
	require.Equal(t, "Nut", only[0].Name)
	require.Equal(t, 2, src.productCalls)
}

func TestSupplierBypassesCache(t *testing.T) {
	src := &memorySource{suppliers: []Supplier{{ID: 7, Name: "Old", BankName: "BDO"}}}
	svc, _ := newTestService(t, src)
	ctx := context.Background()

	_, err := svc.Suppliers(ctx)
	require.NoError(t, err)
	src.suppliers[0].BankName = "BPI"

	got, err := svc.Supplier(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, "BPI", got.BankName)

	_, err = svc.Supplier(ctx, 99)
	require.ErrorIs(t, err, ErrSupplierNotFound)
}

func TestLoaderErrorNotCached(t *testing.T) {
	src := &memorySource{fail: errors.New("backend down")}
	svc, _ := newTestService(t, src)
	ctx := context.Background()

	_, err := svc.Suppliers(ctx)
	require.Error(t, err)

	src.fail = nil
	src.suppliers = []Supplier{{ID: 1, Name: "Acme"}}
	got, err := svc.Suppliers(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestWarmCountsRecords(t *testing.T) {
	src := &memorySource{
		suppliers: []Supplier{{ID: 1}, {ID: 2}},
		products:  []Product{{ID: 10}},
	}
	svc, _ := newTestService(t, src)

	n, err := svc.Warm(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestListenReceivesBumps(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan int64, 1)
	require.NoError(t, cache.Listen(ctx, nil, func(_ context.Context, v int64) { got <- v }))

	ver, err := cache.Bump(ctx)
	require.NoError(t, err)

	select {
	case v := <-got:
		require.Equal(t, ver, v)
	case <-time.After(2 * time.Second):
		t.Fatal("bump not delivered")
	}
}

func TestNilCacheLoadsDirectly(t *testing.T) {
	src := &memorySource{suppliers: []Supplier{{ID: 1, Name: "Acme"}}}
	svc := NewService(src, nil, nil)

	_, err := svc.Suppliers(context.Background())
	require.NoError(t, err)
	_, err = svc.Suppliers(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, src.supplierCalls)
}
