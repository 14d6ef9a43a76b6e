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
	_ repository.AdjustmentRepository = (*AdjustmentRepo)(nil)
	_ repository.TransferRepository   = (*TransferRepo)(nil)
)

// AdjustmentRepo ajustes en memoria.
type AdjustmentRepo struct {
	do access
}

func copyAdjustment(a entity.InventoryAdjustment) *entity.InventoryAdjustment {
	a.Items = append([]entity.AdjustmentItem(nil), a.Items...)
	return &a
}

func (r *AdjustmentRepo) Create(_ context.Context, a *entity.InventoryAdjustment) error {
	return r.do(func(st *state) error {
		if _, ok := st.adjustments[a.ID]; ok {
			return fmt.Errorf("ajuste %s: %w", a.ID, domain.ErrDuplicate)
		}
		for _, existing := range st.adjustments {
			if existing.AdjustmentNumber == a.AdjustmentNumber {
				return fmt.Errorf("ajuste %s: %w", a.AdjustmentNumber, domain.ErrDuplicate)
			}
		}
		st.adjustments[a.ID] = *copyAdjustment(*a)
		return nil
	})
}

func (r *AdjustmentRepo) GetByID(_ context.Context, id string) (*entity.InventoryAdjustment, error) {
	var out *entity.InventoryAdjustment
	err := r.do(func(st *state) error {
		if a, ok := st.adjustments[id]; ok {
			out = copyAdjustment(a)
		}
		return nil
	})
	return out, err
}

func (r *AdjustmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryAdjustment, error) {
	return r.GetByID(ctx, id)
}

func (r *AdjustmentRepo) UpdateStatus(_ context.Context, a *entity.InventoryAdjustment, expected entity.AdjustmentStatus) error {
	return r.do(func(st *state) error {
		stored, ok := st.adjustments[a.ID]
		if !ok {
			return fmt.Errorf("ajuste %s: %w", a.ID, domain.ErrNotFound)
		}
		if stored.Status != expected {
			return &domain.TransitionError{Entity: "adjustment", Reference: stored.AdjustmentNumber, From: string(stored.Status), Action: "pasar a " + string(a.Status)}
		}
		st.adjustments[a.ID] = *copyAdjustment(*a)
		return nil
	})
}

// List más recientes primero.
func (r *AdjustmentRepo) List(_ context.Context, f repository.AdjustmentFilter, limit, offset int) ([]*entity.InventoryAdjustment, int, error) {
	var out []*entity.InventoryAdjustment
	var total int
	err := r.do(func(st *state) error {
		matched := make([]*entity.InventoryAdjustment, 0)
		for _, a := range st.adjustments {
			if f.WarehouseID != "" && a.WarehouseID != f.WarehouseID {
				continue
			}
			if f.Status != "" && a.Status != f.Status {
				continue
			}
			if f.Type != "" && a.Type != f.Type {
				continue
			}
			matched = append(matched, copyAdjustment(a))
		}
		sort.Slice(matched, func(i, j int) bool {
			if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
				return matched[i].CreatedAt.After(matched[j].CreatedAt)
			}
			return matched[i].AdjustmentNumber > matched[j].AdjustmentNumber
		})
		total = len(matched)
		out = paginate(matched, limit, offset)
		return nil
	})
	return out, total, err
}

func (r *AdjustmentRepo) Delete(_ context.Context, id string) error {
	return r.do(func(st *state) error {
		if _, ok := st.adjustments[id]; !ok {
			return fmt.Errorf("ajuste %s: %w", id, domain.ErrNotFound)
		}
		delete(st.adjustments, id)
		return nil
	})
}

func (r *AdjustmentRepo) CountByStatus(_ context.Context, warehouseID string) (map[entity.AdjustmentStatus]int, error) {
	counts := make(map[entity.AdjustmentStatus]int)
	err := r.do(func(st *state) error {
		for _, a := range st.adjustments {
			if warehouseID == "" || a.WarehouseID == warehouseID {
				counts[a.Status]++
			}
		}
		return nil
	})
	return counts, err
}

// TransferRepo traslados en memoria.
type TransferRepo struct {
	do access
}

func copyTransfer(t entity.StockTransfer) *entity.StockTransfer {
	t.Items = append([]entity.TransferItem(nil), t.Items...)
	return &t
}

func (r *TransferRepo) Create(_ context.Context, t *entity.StockTransfer) error {
	return r.do(func(st *state) error {
		if _, ok := st.transfers[t.ID]; ok {
			return fmt.Errorf("traslado %s: %w", t.ID, domain.ErrDuplicate)
		}
		for _, existing := range st.transfers {
			if existing.TransferNumber == t.TransferNumber {
				return fmt.Errorf("traslado %s: %w", t.TransferNumber, domain.ErrDuplicate)
			}
		}
		st.transfers[t.ID] = *copyTransfer(*t)
		return nil
	})
}

func (r *TransferRepo) GetByID(_ context.Context, id string) (*entity.StockTransfer, error) {
	var out *entity.StockTransfer
	err := r.do(func(st *state) error {
		if t, ok := st.transfers[id]; ok {
			out = copyTransfer(t)
		}
		return nil
	})
	return out, err
}

func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.GetByID(ctx, id)
}

func (r *TransferRepo) UpdateStatus(_ context.Context, t *entity.StockTransfer, expected entity.TransferStatus) error {
	return r.do(func(st *state) error {
		stored, ok := st.transfers[t.ID]
		if !ok {
			return fmt.Errorf("traslado %s: %w", t.ID, domain.ErrNotFound)
		}
		if stored.Status != expected {
			return &domain.TransitionError{Entity: "transfer", Reference: stored.TransferNumber, From: string(stored.Status), Action: "pasar a " + string(t.Status)}
		}
		st.transfers[t.ID] = *copyTransfer(*t)
		return nil
	})
}

// List más recientes primero; WarehouseID coincide con origen o destino.
func (r *TransferRepo) List(_ context.Context, f repository.TransferFilter, limit, offset int) ([]*entity.StockTransfer, int, error) {
	var out []*entity.StockTransfer
	var total int
	err := r.do(func(st *state) error {
		matched := make([]*entity.StockTransfer, 0)
		for _, t := range st.transfers {
			if f.WarehouseID != "" && t.FromWarehouseID != f.WarehouseID && t.ToWarehouseID != f.WarehouseID {
				continue
			}
			if f.Status != "" && t.Status != f.Status {
				continue
			}
			matched = append(matched, copyTransfer(t))
		}
		sort.Slice(matched, func(i, j int) bool {
			if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
				return matched[i].CreatedAt.After(matched[j].CreatedAt)
			}
			return matched[i].TransferNumber > matched[j].TransferNumber
		})
		total = len(matched)
		out = paginate(matched, limit, offset)
		return nil
	})
	return out, total, err
}

func (r *TransferRepo) Delete(_ context.Context, id string) error {
	return r.do(func(st *state) error {
		if _, ok := st.transfers[id]; !ok {
			return fmt.Errorf("traslado %s: %w", id, domain.ErrNotFound)
		}
		delete(st.transfers, id)
		return nil
	})
}

func (r *TransferRepo) CountByStatus(_ context.Context, warehouseID string) (map[entity.TransferStatus]int, error) {
	counts := make(map[entity.TransferStatus]int)
	err := r.do(func(st *state) error {
		for _, t := range st.transfers {
			if warehouseID == "" || t.FromWarehouseID == warehouseID || t.ToWarehouseID == warehouseID {
				counts[t.Status]++
			}
		}
		return nil
	})
	return counts, err
}
