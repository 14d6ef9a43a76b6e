package inventory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

func damagedRequest() dto.CreateAdjustmentRequest {
	return dto.CreateAdjustmentRequest{
		WarehouseID: "W1",
		Type:        "damaged",
		Reason:      "Broken in transit",
		Items:       []dto.AdjustmentItemRequest{{ProductID: "P1", PreviousQuantity: qtyPtr(10), NewQuantity: qty(7)}},
	}
}

// ─── Create ───────────────────────────────────────────────────────────────────

func TestAdjustment_CreateQuedaPendiente(t *testing.T) {
	f, ctx := seed(t)

	resp, err := f.adjustments.Create(ctx, "user-1", damagedRequest())
	require.NoError(t, err)

	assert.Equal(t, "ADJ000001", resp.AdjustmentNumber)
	assert.Equal(t, "pending", resp.Status)
	require.Len(t, resp.Items, 1)
	assert.True(t, resp.Items[0].Difference.Equal(qty(-3)))
	assert.True(t, f.quantity(ctx, "W1", "P1").Equal(qty(10)), "crear no toca el inventario")
	assert.Equal(t, []string{inventory.EventAdjustmentCreated}, f.publisher.types())
}

func TestAdjustment_CreateTomaCantidadPreviaDelStock(t *testing.T) {
	f, ctx := seed(t)
	req := damagedRequest()
	req.Items[0].PreviousQuantity = nil
	req.Items[0].NewQuantity = qty(12)

	resp, err := f.adjustments.Create(ctx, "user-1", req)
	require.NoError(t, err)
	assert.True(t, resp.Items[0].PreviousQuantity.Equal(qty(10)))
	assert.True(t, resp.Items[0].Difference.Equal(qty(2)))
}

func TestAdjustment_CreateNumerosConsecutivos(t *testing.T) {
	f, ctx := seed(t)
	var numbers []string
	for i := 0; i < 3; i++ {
		resp, err := f.adjustments.Create(ctx, "user-1", damagedRequest())
		require.NoError(t, err)
		numbers = append(numbers, resp.AdjustmentNumber)
	}
	assert.Equal(t, []string{"ADJ000001", "ADJ000002", "ADJ000003"}, numbers)
}

func TestAdjustment_CreateErrores(t *testing.T) {
	f, ctx := seed(t)

	t.Run("bodega inexistente", func(t *testing.T) {
		req := damagedRequest()
		req.WarehouseID = "W9"
		_, err := f.adjustments.Create(ctx, "user-1", req)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("producto inexistente", func(t *testing.T) {
		req := damagedRequest()
		req.Items[0].ProductID = "P9"
		_, err := f.adjustments.Create(ctx, "user-1", req)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("sin líneas", func(t *testing.T) {
		req := damagedRequest()
		req.Items = nil
		_, err := f.adjustments.Create(ctx, "user-1", req)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("tipo inválido no consume consecutivo", func(t *testing.T) {
		req := damagedRequest()
		req.Type = "theft"
		_, err := f.adjustments.Create(ctx, "user-1", req)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		resp, err := f.adjustments.Create(ctx, "user-1", damagedRequest())
		require.NoError(t, err)
		assert.Equal(t, "ADJ000001", resp.AdjustmentNumber)
	})
}

// ─── Approve / Reject ────────────────────────────────────────────────────────

func TestAdjustment_ApproveAplicaDiferencia(t *testing.T) {
	f, ctx := seed(t)
	created, err := f.adjustments.Create(ctx, "user-1", damagedRequest())
	require.NoError(t, err)

	approved, err := f.adjustments.Approve(ctx, "admin-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	assert.Equal(t, "admin-1", approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)
	assert.True(t, f.quantity(ctx, "W1", "P1").Equal(qty(7)))

	moves, err := f.queries.Movements(ctx, dto.MovementListQuery{WarehouseID: "W1"})
	require.NoError(t, err)
	require.Len(t, moves.Items, 1)
	assert.Equal(t, entity.MovementTypeADJUSTMENT, moves.Items[0].Type)
	assert.Equal(t, "ADJ000001", moves.Items[0].Reference)
	assert.True(t, moves.Items[0].Quantity.Equal(qty(-3)))
	assert.True(t, moves.Items[0].BalanceAfter.Equal(qty(7)))
}

func TestAdjustment_ApproveDosVecesNoAplicaDoble(t *testing.T) {
	f, ctx := seed(t)
	created, err := f.adjustments.Create(ctx, "user-1", damagedRequest())
	require.NoError(t, err)
	_, err = f.adjustments.Approve(ctx, "admin-1", created.ID)
	require.NoError(t, err)

	_, err = f.adjustments.Approve(ctx, "admin-1", created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	var tErr *domain.TransitionError
	require.True(t, errors.As(err, &tErr))
	assert.Equal(t, "approved", tErr.From)

	assert.True(t, f.quantity(ctx, "W1", "P1").Equal(qty(7)), "la diferencia se aplica una sola vez")
}

func TestAdjustment_ApproveStockNegativoRevierteTodo(t *testing.T) {
	f, ctx := seed(t)
	require.NoError(t, f.setStock(ctx, "W1", "P2", 1))
	req := dto.CreateAdjustmentRequest{
		WarehouseID: "W1", Type: "lost", Reason: "conteo físico",
		Items: []dto.AdjustmentItemRequest{
			{ProductID: "P1", PreviousQuantity: qtyPtr(10), NewQuantity: qty(4)},
			{ProductID: "P2", PreviousQuantity: qtyPtr(5), NewQuantity: qty(0)},
		},
	}
	created, err := f.adjustments.Create(ctx, "user-1", req)
	require.NoError(t, err)

	_, err = f.adjustments.Approve(ctx, "admin-1", created.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, f.quantity(ctx, "W1", "P1").Equal(qty(10)), "la línea de P1 no quedó aplicada")
	got, err := f.adjustments.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)
}

func TestAdjustment_RejectNoTocaInventario(t *testing.T) {
	f, ctx := seed(t)
	created, err := f.adjustments.Create(ctx, "user-1", damagedRequest())
	require.NoError(t, err)

	rejected, err := f.adjustments.Transition(ctx, "admin-1", created.ID, dto.TransitionRequest{Action: "reject", Reason: "conteo duplicado"})
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)
	assert.Equal(t, "conteo duplicado", rejected.RejectionReason)
	assert.True(t, f.quantity(ctx, "W1", "P1").Equal(qty(10)))

	_, err = f.adjustments.Transition(ctx, "admin-1", created.ID, dto.TransitionRequest{Action: "approve"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestAdjustment_TransitionAccionInvalida(t *testing.T) {
	f, ctx := seed(t)
	created, err := f.adjustments.Create(ctx, "user-1", damagedRequest())
	require.NoError(t, err)

	_, err = f.adjustments.Transition(ctx, "admin-1", created.ID, dto.TransitionRequest{Action: "complete"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdjustment_NoEncontrado(t *testing.T) {
	f, ctx := seed(t)
	_, err := f.adjustments.Approve(ctx, "admin-1", "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.adjustments.Get(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─── Delete / List ───────────────────────────────────────────────────────────

func TestAdjustment_Delete(t *testing.T) {
	f, ctx := seed(t)
	pending, err := f.adjustments.Create(ctx, "user-1", damagedRequest())
	require.NoError(t, err)
	applied, err := f.adjustments.Create(ctx, "user-1", damagedRequest())
	require.NoError(t, err)
	_, err = f.adjustments.Approve(ctx, "admin-1", applied.ID)
	require.NoError(t, err)

	require.NoError(t, f.adjustments.Delete(ctx, "admin-1", pending.ID))
	_, err = f.adjustments.Get(ctx, pending.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, f.adjustments.Delete(ctx, "admin-1", applied.ID), domain.ErrInvalidTransition)
}

func TestAdjustment_ListFiltraPorEstado(t *testing.T) {
	f, ctx := seed(t)
	first, err := f.adjustments.Create(ctx, "user-1", damagedRequest())
	require.NoError(t, err)
	_, err = f.adjustments.Create(ctx, "user-1", damagedRequest())
	require.NoError(t, err)
	_, err = f.adjustments.Reject(ctx, "admin-1", first.ID, "")
	require.NoError(t, err)

	list, err := f.adjustments.List(ctx, dto.AdjustmentListQuery{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "ADJ000002", list.Items[0].AdjustmentNumber)
	assert.Equal(t, 1, list.Page.Total)
	assert.Equal(t, 20, list.Page.Limit)
}

func TestAdjustment_FalloDelBrokerNoRevierte(t *testing.T) {
	f, ctx := seed(t)
	f.publisher.err = errors.New("broker caído")

	created, err := f.adjustments.Create(ctx, "user-1", damagedRequest())
	require.NoError(t, err)
	_, err = f.adjustments.Approve(ctx, "admin-1", created.ID)
	require.NoError(t, err)
	assert.True(t, f.quantity(ctx, "W1", "P1").Equal(qty(7)))
}
