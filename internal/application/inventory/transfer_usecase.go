package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// TransferUseCase flujo de traslados entre bodegas:
// pending -> in_transit (approve) -> completed (complete); pending|in_transit -> cancelled.
// Solo complete mueve stock: resta en origen y suma en destino en la misma transacción.
type TransferUseCase struct {
	txRunner      TxRunner
	transfers     repository.TransferRepository
	warehouseRepo repository.WarehouseRepository
	productRepo   repository.ProductRepository
	publisher     EventPublisher
	log           *logger.Logger
}

// NewTransferUseCase construye el caso de uso. publisher y log pueden ser nil.
func NewTransferUseCase(
	txRunner TxRunner,
	transfers repository.TransferRepository,
	warehouseRepo repository.WarehouseRepository,
	productRepo repository.ProductRepository,
	publisher EventPublisher,
	log *logger.Logger,
) *TransferUseCase {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &TransferUseCase{
		txRunner:      txRunner,
		transfers:     transfers,
		warehouseRepo: warehouseRepo,
		productRepo:   productRepo,
		publisher:     publisher,
		log:           log,
	}
}

// Create registra un traslado pendiente con número TRF consecutivo.
func (uc *TransferUseCase) Create(ctx context.Context, userID string, in dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	if in.FromWarehouseID != "" && in.FromWarehouseID == in.ToWarehouseID {
		return nil, domain.NewValidationError("to_warehouse_id", "la bodega destino debe ser distinta de la de origen")
	}
	if err := requireWarehouse(ctx, uc.warehouseRepo, in.FromWarehouseID); err != nil {
		return nil, fmt.Errorf("from_warehouse_id: %w", err)
	}
	if err := requireWarehouse(ctx, uc.warehouseRepo, in.ToWarehouseID); err != nil {
		return nil, fmt.Errorf("to_warehouse_id: %w", err)
	}
	items := make([]entity.TransferItem, 0, len(in.Items))
	for i, item := range in.Items {
		if err := requireProduct(ctx, uc.productRepo, item.ProductID); err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		items = append(items, entity.TransferItem{ProductID: item.ProductID, Quantity: item.Quantity, Notes: item.Notes})
	}

	now := time.Now().UTC()
	var created *entity.StockTransfer
	err := uc.txRunner.Run(ctx, func(r TxRepos) error {
		seq, err := r.Sequences.Next(ctx, repository.SequenceTransfer)
		if err != nil {
			return err
		}
		t, err := entity.NewStockTransfer(entity.FormatTransferNumber(seq), in.FromWarehouseID, in.ToWarehouseID,
			userID, in.Notes, items, now)
		if err != nil {
			return err
		}
		if err := r.Transfers.Create(ctx, t); err != nil {
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, uc.publisher, uc.log, transferEvent(EventTransferCreated, created, userID, now))
	return toTransferResponse(created), nil
}

// Get obtiene un traslado por ID.
func (uc *TransferUseCase) Get(ctx context.Context, id string) (*dto.TransferResponse, error) {
	t, err := uc.transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("traslado %s: %w", id, domain.ErrNotFound)
	}
	return toTransferResponse(t), nil
}

// List lista traslados; el filtro de bodega coincide con origen o destino.
func (uc *TransferUseCase) List(ctx context.Context, q dto.TransferListQuery) (*dto.TransferListResponse, error) {
	q.DefaultPage()
	filter := repository.TransferFilter{WarehouseID: q.WarehouseID, Status: entity.TransferStatus(q.Status)}
	list, total, err := uc.transfers.List(ctx, filter, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *toTransferResponse(t))
	}
	return &dto.TransferListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// Transition despacha la acción del PATCH: approve | complete | cancel.
func (uc *TransferUseCase) Transition(ctx context.Context, userID, id string, in dto.TransitionRequest) (*dto.TransferResponse, error) {
	switch in.Action {
	case "approve":
		return uc.Approve(ctx, userID, id)
	case "complete":
		return uc.Complete(ctx, userID, id)
	case "cancel":
		return uc.Cancel(ctx, userID, id, in.Reason)
	}
	return nil, domain.NewValidationError("action", fmt.Sprintf("acción %q no válida para un traslado", in.Action))
}

// Approve despacha el traslado (pending -> in_transit). Verifica que la bodega origen tenga
// disponible suficiente en ese momento; no reserva stock.
func (uc *TransferUseCase) Approve(ctx context.Context, userID, id string) (*dto.TransferResponse, error) {
	now := time.Now().UTC()
	var t *entity.StockTransfer
	err := uc.txRunner.Run(ctx, func(r TxRepos) error {
		var err error
		t, err = lockTransfer(ctx, r, id)
		if err != nil {
			return err
		}
		expected := t.Status
		if err := t.Approve(userID, now); err != nil {
			return err
		}
		for _, item := range t.Items {
			stock, err := r.Stock.Get(ctx, item.ProductID, t.FromWarehouseID)
			if err != nil {
				return err
			}
			if stock == nil || stock.Available().LessThan(item.Quantity) {
				return insufficientStock(item, stock)
			}
		}
		return r.Transfers.UpdateStatus(ctx, t, expected)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, uc.publisher, uc.log, transferEvent(EventTransferApproved, t, userID, now))
	return toTransferResponse(t), nil
}

// Complete recibe el traslado (in_transit -> completed): descuenta en origen, suma en destino y
// deja un TRANSFER_OUT y un TRANSFER_IN por línea. Falla si el disponible en origen no alcanza.
func (uc *TransferUseCase) Complete(ctx context.Context, userID, id string) (*dto.TransferResponse, error) {
	now := time.Now().UTC()
	var t *entity.StockTransfer
	err := uc.txRunner.Run(ctx, func(r TxRepos) error {
		var err error
		t, err = lockTransfer(ctx, r, id)
		if err != nil {
			return err
		}
		expected := t.Status
		if err := t.Complete(userID, now); err != nil {
			return err
		}

		rows, err := lockStockRows(ctx, r.Stock, t)
		if err != nil {
			return err
		}
		for _, item := range t.Items {
			src := rows[stockKey{t.FromWarehouseID, item.ProductID}]
			dst := rows[stockKey{t.ToWarehouseID, item.ProductID}]
			if err := src.Withdraw(item.Quantity, now); err != nil {
				return insufficientStock(item, src)
			}
			dst.Deposit(item.Quantity, now)

			out := transferMovement(t, item, t.FromWarehouseID, entity.MovementTypeTransferOUT, src, userID, now)
			out.Quantity = item.Quantity.Neg()
			in := transferMovement(t, item, t.ToWarehouseID, entity.MovementTypeTransferIN, dst, userID, now)
			if err := r.Movements.Create(ctx, out); err != nil {
				return err
			}
			if err := r.Movements.Create(ctx, in); err != nil {
				return err
			}
		}
		for _, key := range sortedKeys(rows) {
			if err := r.Stock.Upsert(ctx, rows[key]); err != nil {
				return err
			}
		}
		return r.Transfers.UpdateStatus(ctx, t, expected)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, uc.publisher, uc.log, transferEvent(EventTransferCompleted, t, userID, now))
	return toTransferResponse(t), nil
}

// Cancel anula el traslado desde pending o in_transit; no toca el inventario.
func (uc *TransferUseCase) Cancel(ctx context.Context, userID, id, reason string) (*dto.TransferResponse, error) {
	now := time.Now().UTC()
	var t *entity.StockTransfer
	err := uc.txRunner.Run(ctx, func(r TxRepos) error {
		var err error
		t, err = lockTransfer(ctx, r, id)
		if err != nil {
			return err
		}
		expected := t.Status
		if err := t.Cancel(userID, reason, now); err != nil {
			return err
		}
		return r.Transfers.UpdateStatus(ctx, t, expected)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, uc.publisher, uc.log, transferEvent(EventTransferCancelled, t, userID, now))
	return toTransferResponse(t), nil
}

// Delete elimina un traslado pendiente o cancelado.
func (uc *TransferUseCase) Delete(ctx context.Context, userID, id string) error {
	var t *entity.StockTransfer
	err := uc.txRunner.Run(ctx, func(r TxRepos) error {
		var err error
		t, err = lockTransfer(ctx, r, id)
		if err != nil {
			return err
		}
		if err := t.CheckDeletable(); err != nil {
			return err
		}
		return r.Transfers.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	publish(ctx, uc.publisher, uc.log, transferEvent(EventTransferDeleted, t, userID, time.Now().UTC()))
	return nil
}

type stockKey struct {
	warehouseID string
	productID   string
}

// lockStockRows bloquea las filas de origen y destino de todas las líneas en orden (bodega, producto).
func lockStockRows(ctx context.Context, repo repository.StockRepository, t *entity.StockTransfer) (map[stockKey]*entity.Stock, error) {
	rows := make(map[stockKey]*entity.Stock, len(t.Items)*2)
	for _, item := range t.Items {
		rows[stockKey{t.FromWarehouseID, item.ProductID}] = nil
		rows[stockKey{t.ToWarehouseID, item.ProductID}] = nil
	}
	for _, key := range sortedKeys(rows) {
		stock, err := repo.GetForUpdate(ctx, key.productID, key.warehouseID)
		if err != nil {
			return nil, err
		}
		rows[key] = stock
	}
	return rows, nil
}

func sortedKeys(rows map[stockKey]*entity.Stock) []stockKey {
	keys := make([]stockKey, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].warehouseID != keys[j].warehouseID {
			return keys[i].warehouseID < keys[j].warehouseID
		}
		return keys[i].productID < keys[j].productID
	})
	return keys
}

func transferMovement(t *entity.StockTransfer, item entity.TransferItem, warehouseID, typ string, stock *entity.Stock, userID string, now time.Time) *entity.InventoryMovement {
	return &entity.InventoryMovement{
		ID:           uuid.New().String(),
		Reference:    t.TransferNumber,
		ReferenceID:  t.ID,
		ProductID:    item.ProductID,
		WarehouseID:  warehouseID,
		Type:         typ,
		Quantity:     item.Quantity,
		BalanceAfter: stock.Quantity,
		CreatedAt:    now,
		CreatedBy:    userID,
	}
}

func insufficientStock(item entity.TransferItem, stock *entity.Stock) error {
	available := "0"
	if stock != nil {
		available = stock.Available().String()
	}
	return fmt.Errorf("producto %s: disponible %s, solicitado %s: %w",
		item.ProductID, available, item.Quantity, domain.ErrInsufficientStock)
}

func lockTransfer(ctx context.Context, r TxRepos, id string) (*entity.StockTransfer, error) {
	t, err := r.Transfers.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("traslado %s: %w", id, domain.ErrNotFound)
	}
	return t, nil
}
