package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// AdjustmentUseCase flujo de ajustes de inventario: crear, aprobar (aplica diferencias al stock),
// rechazar y eliminar. Cada transición corre en una transacción con bloqueo de fila.
type AdjustmentUseCase struct {
	txRunner      TxRunner
	adjustments   repository.AdjustmentRepository
	warehouseRepo repository.WarehouseRepository
	productRepo   repository.ProductRepository
	publisher     EventPublisher
	log           *logger.Logger
}

// NewAdjustmentUseCase construye el caso de uso. publisher y log pueden ser nil.
func NewAdjustmentUseCase(
	txRunner TxRunner,
	adjustments repository.AdjustmentRepository,
	warehouseRepo repository.WarehouseRepository,
	productRepo repository.ProductRepository,
	publisher EventPublisher,
	log *logger.Logger,
) *AdjustmentUseCase {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &AdjustmentUseCase{
		txRunner:      txRunner,
		adjustments:   adjustments,
		warehouseRepo: warehouseRepo,
		productRepo:   productRepo,
		publisher:     publisher,
		log:           log,
	}
}

// Create registra un ajuste pendiente con número ADJ consecutivo.
// Las líneas sin previous_quantity toman la cantidad actual del stock.
func (uc *AdjustmentUseCase) Create(ctx context.Context, userID string, in dto.CreateAdjustmentRequest) (*dto.AdjustmentResponse, error) {
	if err := requireWarehouse(ctx, uc.warehouseRepo, in.WarehouseID); err != nil {
		return nil, err
	}
	for i, item := range in.Items {
		if err := requireProduct(ctx, uc.productRepo, item.ProductID); err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
	}

	now := time.Now().UTC()
	var created *entity.InventoryAdjustment
	err := uc.txRunner.Run(ctx, func(r TxRepos) error {
		items := make([]entity.AdjustmentItemInput, 0, len(in.Items))
		for _, item := range in.Items {
			previous := decimal.Zero
			if item.PreviousQuantity != nil {
				previous = *item.PreviousQuantity
			} else {
				stock, err := r.Stock.Get(ctx, item.ProductID, in.WarehouseID)
				if err != nil {
					return err
				}
				if stock != nil {
					previous = stock.Quantity
				}
			}
			items = append(items, entity.AdjustmentItemInput{
				ProductID:        item.ProductID,
				PreviousQuantity: previous,
				NewQuantity:      item.NewQuantity,
			})
		}

		seq, err := r.Sequences.Next(ctx, repository.SequenceAdjustment)
		if err != nil {
			return err
		}
		adj, err := entity.NewInventoryAdjustment(
			entity.FormatAdjustmentNumber(seq), in.WarehouseID, entity.AdjustmentType(in.Type),
			in.Reason, in.Notes, userID, items, now,
		)
		if err != nil {
			return err
		}
		if err := r.Adjustments.Create(ctx, adj); err != nil {
			return err
		}
		created = adj
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, uc.publisher, uc.log, adjustmentEvent(EventAdjustmentCreated, created, userID, now))
	return toAdjustmentResponse(created), nil
}

// Get obtiene un ajuste por ID.
func (uc *AdjustmentUseCase) Get(ctx context.Context, id string) (*dto.AdjustmentResponse, error) {
	adj, err := uc.adjustments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if adj == nil {
		return nil, fmt.Errorf("ajuste %s: %w", id, domain.ErrNotFound)
	}
	return toAdjustmentResponse(adj), nil
}

// List lista ajustes con filtros opcionales, más recientes primero.
func (uc *AdjustmentUseCase) List(ctx context.Context, q dto.AdjustmentListQuery) (*dto.AdjustmentListResponse, error) {
	q.DefaultPage()
	filter := repository.AdjustmentFilter{
		WarehouseID: q.WarehouseID,
		Status:      entity.AdjustmentStatus(q.Status),
		Type:        entity.AdjustmentType(q.Type),
	}
	list, total, err := uc.adjustments.List(ctx, filter, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AdjustmentResponse, 0, len(list))
	for _, a := range list {
		items = append(items, *toAdjustmentResponse(a))
	}
	return &dto.AdjustmentListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// Transition despacha la acción del PATCH: approve | reject.
func (uc *AdjustmentUseCase) Transition(ctx context.Context, userID, id string, in dto.TransitionRequest) (*dto.AdjustmentResponse, error) {
	switch in.Action {
	case "approve":
		return uc.Approve(ctx, userID, id)
	case "reject":
		return uc.Reject(ctx, userID, id, in.Reason)
	}
	return nil, domain.NewValidationError("action", fmt.Sprintf("acción %q no válida para un ajuste", in.Action))
}

// Approve aprueba el ajuste y aplica la diferencia de cada línea al stock de la bodega,
// dejando un movimiento ADJUSTMENT por línea. Si alguna cantidad queda negativa no se aplica nada.
func (uc *AdjustmentUseCase) Approve(ctx context.Context, userID, id string) (*dto.AdjustmentResponse, error) {
	now := time.Now().UTC()
	var adj *entity.InventoryAdjustment
	err := uc.txRunner.Run(ctx, func(r TxRepos) error {
		var err error
		adj, err = lockAdjustment(ctx, r, id)
		if err != nil {
			return err
		}
		expected := adj.Status
		if err := adj.Approve(userID, now); err != nil {
			return err
		}

		// Orden determinista de bloqueo para evitar deadlocks entre aprobaciones concurrentes.
		items := append([]entity.AdjustmentItem(nil), adj.Items...)
		sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

		for _, item := range items {
			stock, err := r.Stock.GetForUpdate(ctx, item.ProductID, adj.WarehouseID)
			if err != nil {
				return err
			}
			if err := stock.Apply(item.Difference, now); err != nil {
				return fmt.Errorf("producto %s: cantidad %s, diferencia %s: %w",
					item.ProductID, stock.Quantity, item.Difference, err)
			}
			if err := r.Stock.Upsert(ctx, stock); err != nil {
				return err
			}
			mov := &entity.InventoryMovement{
				ID:           uuid.New().String(),
				Reference:    adj.AdjustmentNumber,
				ReferenceID:  adj.ID,
				ProductID:    item.ProductID,
				WarehouseID:  adj.WarehouseID,
				Type:         entity.MovementTypeADJUSTMENT,
				Quantity:     item.Difference,
				BalanceAfter: stock.Quantity,
				CreatedAt:    now,
				CreatedBy:    userID,
			}
			if err := r.Movements.Create(ctx, mov); err != nil {
				return err
			}
		}
		return r.Adjustments.UpdateStatus(ctx, adj, expected)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, uc.publisher, uc.log, adjustmentEvent(EventAdjustmentApproved, adj, userID, now))
	return toAdjustmentResponse(adj), nil
}

// Reject rechaza el ajuste; no toca el inventario.
func (uc *AdjustmentUseCase) Reject(ctx context.Context, userID, id, reason string) (*dto.AdjustmentResponse, error) {
	now := time.Now().UTC()
	var adj *entity.InventoryAdjustment
	err := uc.txRunner.Run(ctx, func(r TxRepos) error {
		var err error
		adj, err = lockAdjustment(ctx, r, id)
		if err != nil {
			return err
		}
		expected := adj.Status
		if err := adj.Reject(userID, reason, now); err != nil {
			return err
		}
		return r.Adjustments.UpdateStatus(ctx, adj, expected)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, uc.publisher, uc.log, adjustmentEvent(EventAdjustmentRejected, adj, userID, now))
	return toAdjustmentResponse(adj), nil
}

// Delete elimina un ajuste pendiente o rechazado. Uno aprobado ya afectó el inventario y no se elimina.
func (uc *AdjustmentUseCase) Delete(ctx context.Context, userID, id string) error {
	var adj *entity.InventoryAdjustment
	err := uc.txRunner.Run(ctx, func(r TxRepos) error {
		var err error
		adj, err = lockAdjustment(ctx, r, id)
		if err != nil {
			return err
		}
		if err := adj.CheckDeletable(); err != nil {
			return err
		}
		return r.Adjustments.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	publish(ctx, uc.publisher, uc.log, adjustmentEvent(EventAdjustmentDeleted, adj, userID, time.Now().UTC()))
	return nil
}

func lockAdjustment(ctx context.Context, r TxRepos, id string) (*entity.InventoryAdjustment, error) {
	adj, err := r.Adjustments.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if adj == nil {
		return nil, fmt.Errorf("ajuste %s: %w", id, domain.ErrNotFound)
	}
	return adj, nil
}

func requireWarehouse(ctx context.Context, repo repository.WarehouseRepository, id string) error {
	if id == "" {
		return domain.NewValidationError("warehouse_id", "es requerido")
	}
	w, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if w == nil {
		return fmt.Errorf("bodega %s: %w", id, domain.ErrNotFound)
	}
	if !w.IsActive {
		return domain.NewValidationError("warehouse_id", fmt.Sprintf("la bodega %s está inactiva", w.Code))
	}
	return nil
}

func requireProduct(ctx context.Context, repo repository.ProductRepository, id string) error {
	if id == "" {
		return domain.NewValidationError("product_id", "es requerido")
	}
	p, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
