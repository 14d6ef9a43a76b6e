package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const selectStock = `
	SELECT product_id, warehouse_id, quantity, reserved, updated_at
	FROM stock WHERE product_id = $1 AND warehouse_id = $2`

// Get obtiene el stock actual de un producto en una bodega; nil si no hay fila.
func (r *StockRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	s, err := r.scan(ctx, selectStock, productID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

const ensureStock = `
	INSERT INTO stock (product_id, warehouse_id, quantity, reserved, updated_at)
	VALUES ($1, $2, 0, 0, now())
	ON CONFLICT (product_id, warehouse_id) DO NOTHING`

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
// Si la fila no existe primero la crea en cero, así dos transacciones sobre un
// par nuevo quedan serializadas por el mismo lock y el Upsert absoluto no pisa a la otra.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	if _, err := r.q.Exec(ctx, ensureStock, productID, warehouseID); err != nil {
		if isInvalidText(err) || isForeignKeyViolation(err) {
			return nil, fmt.Errorf("get stock for update %s/%s: %w", productID, warehouseID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("ensure stock row: %w", err)
	}
	s, err := r.scan(ctx, selectStock+` FOR UPDATE`, productID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	if s == nil {
		return &entity.Stock{ProductID: productID, WarehouseID: warehouseID, Quantity: decimal.Zero, Reserved: decimal.Zero}, nil
	}
	return s, nil
}

func (r *StockRepo) scan(ctx context.Context, query, productID, warehouseID string) (*entity.Stock, error) {
	var s entity.Stock
	err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(
		&s.ProductID, &s.WarehouseID, &s.Quantity, &s.Reserved, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Upsert inserta o actualiza la cantidad en stock (por producto y bodega). Reserved no se toca.
func (r *StockRepo) Upsert(ctx context.Context, stock *entity.Stock) error {
	query := `
		INSERT INTO stock (product_id, warehouse_id, quantity, reserved, updated_at)
		VALUES ($1, $2, $3, 0, now())
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(ctx, query, stock.ProductID, stock.WarehouseID, stock.Quantity)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// SetReserved fija la cantidad reservada de una fila (la mantiene el módulo de pedidos).
func (r *StockRepo) SetReserved(ctx context.Context, productID, warehouseID string, reserved decimal.Decimal) error {
	query := `
		INSERT INTO stock (product_id, warehouse_id, quantity, reserved, updated_at)
		VALUES ($1, $2, 0, $3, now())
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET reserved = EXCLUDED.reserved, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, productID, warehouseID, reserved); err != nil {
		return fmt.Errorf("set reserved: %w", err)
	}
	return nil
}
