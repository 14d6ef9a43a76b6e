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

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo traslados entre bodegas sobre PostgreSQL. Las líneas viven en stock_transfer_items.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, transfer_number, from_warehouse_id, to_warehouse_id, status, notes,
	requested_by, approved_by, completed_by, cancelled_by, cancellation_reason,
	requested_date, approved_date, completed_date, cancelled_date, created_at, updated_at`

// Create inserta la cabecera y sus líneas.
func (r *TransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	query := `
		INSERT INTO stock_transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.TransferNumber, t.FromWarehouseID, t.ToWarehouseID, string(t.Status), t.Notes,
		t.RequestedBy, nullString(t.ApprovedBy), nullString(t.CompletedBy), nullString(t.CancelledBy), t.CancellationReason,
		t.RequestedDate, t.ApprovedDate, t.CompletedDate, t.CancelledDate, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("traslado %s: %w", t.TransferNumber, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert transfer: %w", err)
	}

	itemQuery := `
		INSERT INTO stock_transfer_items (transfer_id, line_no, product_id, quantity, notes)
		VALUES ($1, $2, $3, $4, $5)`
	for i, it := range t.Items {
		if _, err := r.q.Exec(ctx, itemQuery, t.ID, i+1, it.ProductID, it.Quantity, it.Notes); err != nil {
			return fmt.Errorf("insert transfer item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene un traslado con sus líneas; nil si no existe.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM stock_transfers WHERE id = $1`, id)
}

// GetForUpdate igual que GetByID pero bloquea la cabecera hasta el fin de la transacción.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM stock_transfers WHERE id = $1 FOR UPDATE`, id)
}

func (r *TransferRepo) get(ctx context.Context, query, id string) (*entity.StockTransfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.StockTransfer{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateStatus guarda estado y firmas solo si el estado guardado sigue siendo expected.
func (r *TransferRepo) UpdateStatus(ctx context.Context, t *entity.StockTransfer, expected entity.TransferStatus) error {
	query := `
		UPDATE stock_transfers
		SET status = $3, approved_by = $4, completed_by = $5, cancelled_by = $6, cancellation_reason = $7,
		    approved_date = $8, completed_date = $9, cancelled_date = $10, updated_at = $11
		WHERE id = $1 AND status = $2`
	cmd, err := r.q.Exec(ctx, query,
		t.ID, string(expected), string(t.Status),
		nullString(t.ApprovedBy), nullString(t.CompletedBy), nullString(t.CancelledBy), t.CancellationReason,
		t.ApprovedDate, t.CompletedDate, t.CancelledDate, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update transfer status: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}

	var number, current string
	err = r.q.QueryRow(ctx, `SELECT transfer_number, status FROM stock_transfers WHERE id = $1`, t.ID).Scan(&number, &current)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("traslado %s: %w", t.ID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update transfer status: %w", err)
	}
	return &domain.TransitionError{Entity: "transfer", Reference: number, From: current, Action: "pasar a " + string(t.Status)}
}

// List más recientes primero. WarehouseID coincide con origen o destino.
func (r *TransferRepo) List(ctx context.Context, f repository.TransferFilter, limit, offset int) ([]*entity.StockTransfer, int, error) {
	var (
		conds []string
		args  []any
	)
	if f.WarehouseID != "" {
		args = append(args, f.WarehouseID)
		conds = append(conds, fmt.Sprintf("(from_warehouse_id::text = $%d OR to_warehouse_id::text = $%d)", len(args), len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_transfers`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transfers: %w", err)
	}

	args = append(args, limitArg(limit), offsetArg(offset))
	query := `SELECT ` + transferColumns + ` FROM stock_transfers` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, transfer_number DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transfers: %w", err)
	}
	list := make([]*entity.StockTransfer, 0)
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, t)
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

// Delete elimina el traslado; las líneas caen por ON DELETE CASCADE.
func (r *TransferRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM stock_transfers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transfer: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("traslado %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// CountByStatus cuenta traslados por estado en los que participa la bodega (origen o destino).
func (r *TransferRepo) CountByStatus(ctx context.Context, warehouseID string) (map[entity.TransferStatus]int, error) {
	rows, err := r.q.Query(ctx, `
		SELECT status, COUNT(*) FROM stock_transfers
		WHERE ($1 = '' OR from_warehouse_id::text = $1 OR to_warehouse_id::text = $1)
		GROUP BY status`, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("count transfers by status: %w", err)
	}
	defer rows.Close()
	counts := make(map[entity.TransferStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan transfer count: %w", err)
		}
		counts[entity.TransferStatus(status)] = n
	}
	return counts, rows.Err()
}

func (r *TransferRepo) loadItems(ctx context.Context, list []*entity.StockTransfer) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[string]*entity.StockTransfer, len(list))
	ids := make([]string, 0, len(list))
	for _, t := range list {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT transfer_id, product_id, quantity, notes
		FROM stock_transfer_items
		WHERE transfer_id = ANY($1)
		ORDER BY transfer_id, line_no`, ids)
	if err != nil {
		return fmt.Errorf("list transfer items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var transferID string
		var it entity.TransferItem
		if err := rows.Scan(&transferID, &it.ProductID, &it.Quantity, &it.Notes); err != nil {
			return fmt.Errorf("scan transfer item: %w", err)
		}
		if t, ok := byID[transferID]; ok {
			t.Items = append(t.Items, it)
		}
	}
	return rows.Err()
}

func scanTransfer(row pgx.Row) (*entity.StockTransfer, error) {
	var (
		t                                    entity.StockTransfer
		status                               string
		approvedBy, completedBy, cancelledBy *string
		approvedAt, completedAt, cancelledAt *time.Time
	)
	if err := row.Scan(
		&t.ID, &t.TransferNumber, &t.FromWarehouseID, &t.ToWarehouseID, &status, &t.Notes,
		&t.RequestedBy, &approvedBy, &completedBy, &cancelledBy, &t.CancellationReason,
		&t.RequestedDate, &approvedAt, &completedAt, &cancelledAt, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Status = entity.TransferStatus(status)
	t.ApprovedBy = derefString(approvedBy)
	t.CompletedBy = derefString(completedBy)
	t.CancelledBy = derefString(cancelledBy)
	t.ApprovedDate = approvedAt
	t.CompletedDate = completedAt
	t.CancelledDate = cancelledAt
	return &t, nil
}
