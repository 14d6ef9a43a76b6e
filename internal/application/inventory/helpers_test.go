package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventory-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/memory"
)

// recordingPublisher guarda los eventos publicados.
type recordingPublisher struct {
	mu     sync.Mutex
	events []inventory.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev inventory.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	store       *memory.Store
	publisher   *recordingPublisher
	adjustments *inventory.AdjustmentUseCase
	transfers   *inventory.TransferUseCase
	queries     *inventory.StockQueryUseCase
}

func newFixture() *fixture {
	store := memory.NewStore()
	pub := &recordingPublisher{}
	return &fixture{
		store:     store,
		publisher: pub,
		adjustments: inventory.NewAdjustmentUseCase(store, store.Adjustments(), store.Warehouses(), store.Products(),
			pub, nil),
		transfers: inventory.NewTransferUseCase(store, store.Transfers(), store.Warehouses(), store.Products(),
			pub, nil),
		queries: inventory.NewStockQueryUseCase(store.Levels(), store.Warehouses(), store.Adjustments(),
			store.Transfers(), store.Movements(), domaininv.Thresholds{}),
	}
}

func (f *fixture) addWarehouse(ctx context.Context, id string) error {
	return f.store.Warehouses().Create(ctx, &entity.Warehouse{ID: id, Code: id, Name: "Bodega " + id, IsActive: true})
}

func (f *fixture) addProduct(ctx context.Context, id string, low, critical int64) error {
	return f.store.Products().Create(ctx, &entity.Product{
		ID: id, SKU: "SKU-" + id, Name: "Producto " + id,
		LowStockThreshold: decimal.NewFromInt(low), CriticalThreshold: decimal.NewFromInt(critical),
	})
}

func (f *fixture) setStock(ctx context.Context, warehouseID, productID string, qty int64) error {
	return f.store.Stock().Upsert(ctx, &entity.Stock{ProductID: productID, WarehouseID: warehouseID, Quantity: decimal.NewFromInt(qty)})
}

func (f *fixture) quantity(ctx context.Context, warehouseID, productID string) decimal.Decimal {
	s, err := f.store.Stock().Get(ctx, productID, warehouseID)
	if err != nil || s == nil {
		return decimal.Zero
	}
	return s.Quantity
}

// seed crea W1, W2, P1, P2 con 10 unidades de P1 en W1.
func seed(t *testing.T) (*fixture, context.Context) {
	t.Helper()
	ctx := context.Background()
	f := newFixture()
	require.NoError(t, f.addWarehouse(ctx, "W1"))
	require.NoError(t, f.addWarehouse(ctx, "W2"))
	require.NoError(t, f.addProduct(ctx, "P1", 5, 2))
	require.NoError(t, f.addProduct(ctx, "P2", 0, 0))
	require.NoError(t, f.setStock(ctx, "W1", "P1", 10))
	return f, ctx
}

func qty(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func qtyPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}
