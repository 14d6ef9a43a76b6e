package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

var (
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
	_ repository.ProductRepository   = (*ProductRepo)(nil)
)

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct {
	do access
}

func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	return r.do(func(st *state) error {
		for _, existing := range st.warehouses {
			if existing.Code == w.Code {
				return fmt.Errorf("bodega con código %s: %w", w.Code, domain.ErrDuplicate)
			}
		}
		st.warehouses[w.ID] = *w
		return nil
	})
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	err := r.do(func(st *state) error {
		if w, ok := st.warehouses[id]; ok {
			out = &w
		}
		return nil
	})
	return out, err
}

func (r *WarehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	return r.do(func(st *state) error {
		if _, ok := st.warehouses[w.ID]; !ok {
			return fmt.Errorf("bodega %s: %w", w.ID, domain.ErrNotFound)
		}
		st.warehouses[w.ID] = *w
		return nil
	})
}

// List ordena por código.
func (r *WarehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	err := r.do(func(st *state) error {
		all := make([]*entity.Warehouse, 0, len(st.warehouses))
		for _, w := range st.warehouses {
			w := w
			all = append(all, &w)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
		out = paginate(all, limit, offset)
		return nil
	})
	return out, err
}

// Delete falla con ErrConflict si la bodega tiene stock, movimientos o documentos.
func (r *WarehouseRepo) Delete(_ context.Context, id string) error {
	return r.do(func(st *state) error {
		if _, ok := st.warehouses[id]; !ok {
			return fmt.Errorf("bodega %s: %w", id, domain.ErrNotFound)
		}
		if warehouseInUse(st, id) {
			return fmt.Errorf("bodega %s tiene inventario o documentos: %w", id, domain.ErrConflict)
		}
		delete(st.warehouses, id)
		return nil
	})
}

func warehouseInUse(st *state, id string) bool {
	for k := range st.stock {
		if k.warehouseID == id {
			return true
		}
	}
	for _, a := range st.adjustments {
		if a.WarehouseID == id {
			return true
		}
	}
	for _, t := range st.transfers {
		if t.FromWarehouseID == id || t.ToWarehouseID == id {
			return true
		}
	}
	for _, m := range st.movements {
		if m.WarehouseID == id {
			return true
		}
	}
	return false
}

// ProductRepo productos en memoria.
type ProductRepo struct {
	do access
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.do(func(st *state) error {
		for _, existing := range st.products {
			if existing.SKU == p.SKU {
				return fmt.Errorf("sku %s: %w", p.SKU, domain.ErrDuplicate)
			}
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.do(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.do(func(st *state) error {
		for _, p := range st.products {
			if p.SKU == sku {
				p := p
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.do(func(st *state) error {
		if _, ok := st.products[p.ID]; !ok {
			return fmt.Errorf("producto %s: %w", p.ID, domain.ErrNotFound)
		}
		st.products[p.ID] = *p
		return nil
	})
}

// List ordena por SKU.
func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.do(func(st *state) error {
		all := make([]*entity.Product, 0, len(st.products))
		for _, p := range st.products {
			p := p
			all = append(all, &p)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].SKU < all[j].SKU })
		out = paginate(all, limit, offset)
		return nil
	})
	return out, err
}

func paginate[T any](all []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}
