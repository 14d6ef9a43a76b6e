package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

var (
	_ repository.StockRepository             = (*StockRepo)(nil)
	_ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)
	_ repository.SequenceRepository          = (*SequenceRepo)(nil)
	_ repository.InventoryLevelRepository    = (*InventoryLevelRepo)(nil)
)

// StockRepo stock por producto y bodega en memoria.
type StockRepo struct {
	do access
}

func (r *StockRepo) Get(_ context.Context, productID, warehouseID string) (*entity.Stock, error) {
	var out *entity.Stock
	err := r.do(func(st *state) error {
		if s, ok := st.stock[stockKey{productID, warehouseID}]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

// GetForUpdate no necesita bloquear: la transacción ya tiene el mutex del store.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	s, err := r.Get(ctx, productID, warehouseID)
	if err != nil || s != nil {
		return s, err
	}
	return &entity.Stock{ProductID: productID, WarehouseID: warehouseID, Quantity: decimal.Zero, Reserved: decimal.Zero}, nil
}

func (r *StockRepo) Upsert(_ context.Context, s *entity.Stock) error {
	return r.do(func(st *state) error {
		st.stock[stockKey{s.ProductID, s.WarehouseID}] = *s
		return nil
	})
}

// SetReserved fija la cantidad reservada de una fila (la mantiene un colaborador externo;
// aquí se usa para preparar escenarios).
func (r *StockRepo) SetReserved(_ context.Context, productID, warehouseID string, reserved decimal.Decimal) error {
	return r.do(func(st *state) error {
		key := stockKey{productID, warehouseID}
		s := st.stock[key]
		s.ProductID, s.WarehouseID = productID, warehouseID
		s.Reserved = reserved
		st.stock[key] = s
		return nil
	})
}

// InventoryMovementRepo diario de movimientos en memoria (solo inserción).
type InventoryMovementRepo struct {
	do access
}

func (r *InventoryMovementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	return r.do(func(st *state) error {
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r *InventoryMovementRepo) List(_ context.Context, f repository.MovementFilter, limit, offset int) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	err := r.do(func(st *state) error {
		matched := make([]*entity.InventoryMovement, 0)
		// Recorrido inverso: más recientes primero, respetando el orden de inserción en empates.
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if f.WarehouseID != "" && m.WarehouseID != f.WarehouseID {
				continue
			}
			if f.ProductID != "" && m.ProductID != f.ProductID {
				continue
			}
			if f.From != nil && m.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && m.CreatedAt.After(*f.To) {
				continue
			}
			matched = append(matched, &m)
		}
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
		out = paginate(matched, limit, offset)
		return nil
	})
	return out, err
}

// SequenceRepo consecutivos en memoria.
type SequenceRepo struct {
	do access
}

func (r *SequenceRepo) Next(_ context.Context, name string) (int64, error) {
	var next int64
	err := r.do(func(st *state) error {
		st.counters[name]++
		next = st.counters[name]
		return nil
	})
	return next, err
}

// InventoryLevelRepo foto de inventario: une stock con producto y bodega.
type InventoryLevelRepo struct {
	do access
}

// ListLevels ordena por bodega y SKU.
func (r *InventoryLevelRepo) ListLevels(_ context.Context, warehouseID string) ([]*entity.InventoryLevel, error) {
	var out []*entity.InventoryLevel
	err := r.do(func(st *state) error {
		out = make([]*entity.InventoryLevel, 0, len(st.stock))
		for key, s := range st.stock {
			if warehouseID != "" && key.warehouseID != warehouseID {
				continue
			}
			p := st.products[key.productID]
			w := st.warehouses[key.warehouseID]
			out = append(out, &entity.InventoryLevel{
				WarehouseID:       key.warehouseID,
				WarehouseName:     w.Name,
				ProductID:         key.productID,
				SKU:               p.SKU,
				ProductName:       p.Name,
				Quantity:          s.Quantity,
				Reserved:          s.Reserved,
				LowStockThreshold: p.LowStockThreshold,
				CriticalThreshold: p.CriticalThreshold,
				UpdatedAt:         s.UpdatedAt,
			})
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].WarehouseID != out[j].WarehouseID {
				return out[i].WarehouseID < out[j].WarehouseID
			}
			return out[i].SKU < out[j].SKU
		})
		return nil
	})
	return out, err
}
