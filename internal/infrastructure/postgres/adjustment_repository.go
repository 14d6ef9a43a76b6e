package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

var _ repository.AdjustmentRepository = (*AdjustmentRepo)(nil)

// AdjustmentRepo ajustes de inventario sobre PostgreSQL. Las líneas viven en inventory_adjustment_items.
type AdjustmentRepo struct {
	q Querier
}

// NewAdjustmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAdjustmentRepository(q Querier) *AdjustmentRepo {
	return &AdjustmentRepo{q: q}
}

const adjustmentColumns = `id, adjustment_number, warehouse_id, type, reason, notes, status,
	adjusted_by, approved_by, approved_at, rejection_reason, created_at, updated_at`

// Create inserta la cabecera y sus líneas.
func (r *AdjustmentRepo) Create(ctx context.Context, a *entity.InventoryAdjustment) error {
	query := `
		INSERT INTO inventory_adjustments (` + adjustmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.AdjustmentNumber, a.WarehouseID, string(a.Type), a.Reason, a.Notes, string(a.Status),
		a.AdjustedBy, nullString(a.ApprovedBy), a.ApprovedAt, a.RejectionReason, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ajuste %s: %w", a.AdjustmentNumber, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert adjustment: %w", err)
	}

	itemQuery := `
		INSERT INTO inventory_adjustment_items (adjustment_id, line_no, product_id, previous_quantity, new_quantity, difference)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for i, it := range a.Items {
		if _, err := r.q.Exec(ctx, itemQuery, a.ID, i+1, it.ProductID, it.PreviousQuantity, it.NewQuantity, it.Difference); err != nil {
			return fmt.Errorf("insert adjustment item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene un ajuste con sus líneas; nil si no existe.
func (r *AdjustmentRepo) GetByID(ctx context.Context, id string) (*entity.InventoryAdjustment, error) {
	return r.get(ctx, `SELECT `+adjustmentColumns+` FROM inventory_adjustments WHERE id = $1`, id)
}

// GetForUpdate igual que GetByID pero bloquea la cabecera hasta el fin de la transacción.
func (r *AdjustmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryAdjustment, error) {
	return r.get(ctx, `SELECT `+adjustmentColumns+` FROM inventory_adjustments WHERE id = $1 FOR UPDATE`, id)
}

func (r *AdjustmentRepo) get(ctx context.Context, query, id string) (*entity.InventoryAdjustment, error) {
	a, err := scanAdjustment(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get adjustment: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.InventoryAdjustment{a}); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateStatus guarda estado y datos de aprobación/rechazo solo si el estado guardado sigue siendo expected.
func (r *AdjustmentRepo) UpdateStatus(ctx context.Context, a *entity.InventoryAdjustment, expected entity.AdjustmentStatus) error {
	query := `
		UPDATE inventory_adjustments
		SET status = $3, approved_by = $4, approved_at = $5, rejection_reason = $6, updated_at = $7
		WHERE id = $1 AND status = $2`
	cmd, err := r.q.Exec(ctx, query,
		a.ID, string(expected), string(a.Status), nullString(a.ApprovedBy), a.ApprovedAt, a.RejectionReason, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update adjustment status: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}

	var number, current string
	err = r.q.QueryRow(ctx, `SELECT adjustment_number, status FROM inventory_adjustments WHERE id = $1`, a.ID).Scan(&number, &current)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("ajuste %s: %w", a.ID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update adjustment status: %w", err)
	}
	return &domain.TransitionError{Entity: "adjustment", Reference: number, From: current, Action: "pasar a " + string(a.Status)}
}

// List más recientes primero, con el total de coincidencias para paginar.
func (r *AdjustmentRepo) List(ctx context.Context, f repository.AdjustmentFilter, limit, offset int) ([]*entity.InventoryAdjustment, int, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.WarehouseID != "" {
		add("warehouse_id::text = $%d", f.WarehouseID)
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.Type != "" {
		add("type = $%d", string(f.Type))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_adjustments`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count adjustments: %w", err)
	}

	args = append(args, limitArg(limit), offsetArg(offset))
	query := `SELECT ` + adjustmentColumns + ` FROM inventory_adjustments` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, adjustment_number DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list adjustments: %w", err)
	}
	list := make([]*entity.InventoryAdjustment, 0)
	for rows.Next() {
		a, err := scanAdjustment(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan adjustment: %w", err)
		}
		list = append(list, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Delete elimina el ajuste; las líneas caen por ON DELETE CASCADE.
func (r *AdjustmentRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM inventory_adjustments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete adjustment: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("ajuste %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// CountByStatus cuenta ajustes por estado; warehouseID vacío cuenta todas las bodegas.
func (r *AdjustmentRepo) CountByStatus(ctx context.Context, warehouseID string) (map[entity.AdjustmentStatus]int, error) {
	rows, err := r.q.Query(ctx, `
		SELECT status, COUNT(*) FROM inventory_adjustments
		WHERE ($1 = '' OR warehouse_id::text = $1)
		GROUP BY status`, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("count adjustments by status: %w", err)
	}
	defer rows.Close()
	counts := make(map[entity.AdjustmentStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan adjustment count: %w", err)
		}
		counts[entity.AdjustmentStatus(status)] = n
	}
	return counts, rows.Err()
}

func (r *AdjustmentRepo) loadItems(ctx context.Context, list []*entity.InventoryAdjustment) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[string]*entity.InventoryAdjustment, len(list))
	ids := make([]string, 0, len(list))
	for _, a := range list {
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT adjustment_id, product_id, previous_quantity, new_quantity, difference
		FROM inventory_adjustment_items
		WHERE adjustment_id = ANY($1)
		ORDER BY adjustment_id, line_no`, ids)
	if err != nil {
		return fmt.Errorf("list adjustment items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var adjustmentID string
		var it entity.AdjustmentItem
		if err := rows.Scan(&adjustmentID, &it.ProductID, &it.PreviousQuantity, &it.NewQuantity, &it.Difference); err != nil {
			return fmt.Errorf("scan adjustment item: %w", err)
		}
		if a, ok := byID[adjustmentID]; ok {
			a.Items = append(a.Items, it)
		}
	}
	return rows.Err()
}

func scanAdjustment(row pgx.Row) (*entity.InventoryAdjustment, error) {
	var (
		a           entity.InventoryAdjustment
		typ, status string
		approvedBy  *string
		approvedAt  *time.Time
	)
	if err := row.Scan(
		&a.ID, &a.AdjustmentNumber, &a.WarehouseID, &typ, &a.Reason, &a.Notes, &status,
		&a.AdjustedBy, &approvedBy, &approvedAt, &a.RejectionReason, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.Type = entity.AdjustmentType(typ)
	a.Status = entity.AdjustmentStatus(status)
	a.ApprovedBy = derefString(approvedBy)
	a.ApprovedAt = approvedAt
	return &a, nil
}
