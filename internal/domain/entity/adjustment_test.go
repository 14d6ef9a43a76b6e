package entity_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newPendingAdjustment(t *testing.T) *entity.InventoryAdjustment {
	t.Helper()
	adj, err := entity.NewInventoryAdjustment("ADJ000001", "wh-1", entity.AdjustmentTypeDamaged,
		"Broken in transit", "", "user-1",
		[]entity.AdjustmentItemInput{{ProductID: "p1", PreviousQuantity: decimal.NewFromInt(10), NewQuantity: decimal.NewFromInt(7)}},
		testNow)
	require.NoError(t, err)
	return adj
}

func TestNewInventoryAdjustment_CalculaDiferencia(t *testing.T) {
	adj := newPendingAdjustment(t)

	assert.Equal(t, entity.AdjustmentStatusPending, adj.Status)
	assert.NotEmpty(t, adj.ID)
	require.Len(t, adj.Items, 1)
	assert.True(t, adj.Items[0].Difference.Equal(decimal.NewFromInt(-3)), "difference = new - previous")
	assert.Equal(t, "user-1", adj.AdjustedBy)
	assert.Empty(t, adj.ApprovedBy)
}

// Propiedad: para cualquier entrada válida, difference = newQuantity - previousQuantity en cada línea.
func TestNewInventoryAdjustment_DiferenciaEnEntradasAleatorias(t *testing.T) {
	f := gofakeit.New(42)
	for run := 0; run < 200; run++ {
		n := f.Number(1, 8)
		items := make([]entity.AdjustmentItemInput, 0, n)
		for i := 0; i < n; i++ {
			items = append(items, entity.AdjustmentItemInput{
				ProductID:        f.UUID(),
				PreviousQuantity: decimal.NewFromInt(int64(f.Number(0, 5000))),
				NewQuantity:      decimal.NewFromInt(int64(f.Number(0, 5000))),
			})
		}
		adj, err := entity.NewInventoryAdjustment(entity.FormatAdjustmentNumber(int64(run+1)), f.UUID(),
			entity.AdjustmentTypeStockCount, f.Word(), "", f.UUID(), items, testNow)
		require.NoError(t, err)
		for i, item := range adj.Items {
			assert.Equal(t, items[i].ProductID, item.ProductID, "se conserva el orden de las líneas")
			assert.True(t, item.Difference.Equal(item.NewQuantity.Sub(item.PreviousQuantity)))
		}
	}
}

func TestNewInventoryAdjustment_Validaciones(t *testing.T) {
	valid := []entity.AdjustmentItemInput{{ProductID: "p1", PreviousQuantity: decimal.NewFromInt(1), NewQuantity: decimal.NewFromInt(2)}}

	cases := []struct {
		name   string
		typ    entity.AdjustmentType
		reason string
		items  []entity.AdjustmentItemInput
		field  string
	}{
		{"sin items", entity.AdjustmentTypeLost, "conteo", nil, "items"},
		{"sin motivo", entity.AdjustmentTypeLost, "   ", valid, "reason"},
		{"motivo muy largo", entity.AdjustmentTypeLost, strings.Repeat("x", 501), valid, "reason"},
		{"tipo inválido", entity.AdjustmentType("theft"), "conteo", valid, "type"},
		{"cantidad negativa", entity.AdjustmentTypeFound, "conteo",
			[]entity.AdjustmentItemInput{{ProductID: "p1", PreviousQuantity: decimal.NewFromInt(-1), NewQuantity: decimal.NewFromInt(2)}},
			"items[0].previous_quantity"},
		{"producto repetido", entity.AdjustmentTypeFound, "conteo",
			[]entity.AdjustmentItemInput{valid[0], valid[0]}, "items[1].product_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := entity.NewInventoryAdjustment("ADJ000001", "wh-1", tc.typ, tc.reason, "", "user-1", tc.items, testNow)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestNewInventoryAdjustment_MotivoDe500CaracteresMultibyte(t *testing.T) {
	reason := strings.Repeat("ñ", entity.MaxAdjustmentReasonLength)
	_, err := entity.NewInventoryAdjustment("ADJ000001", "wh-1", entity.AdjustmentTypeOther, reason, "", "user-1",
		[]entity.AdjustmentItemInput{{ProductID: "p1", NewQuantity: decimal.NewFromInt(1)}}, testNow)
	assert.NoError(t, err, "el límite se mide en caracteres, no en bytes")
}

func TestInventoryAdjustment_Transiciones(t *testing.T) {
	t.Run("approve desde pending", func(t *testing.T) {
		adj := newPendingAdjustment(t)
		require.NoError(t, adj.Approve("admin-1", testNow))
		assert.Equal(t, entity.AdjustmentStatusApproved, adj.Status)
		assert.Equal(t, "admin-1", adj.ApprovedBy)
		require.NotNil(t, adj.ApprovedAt)
	})

	t.Run("reject desde pending", func(t *testing.T) {
		adj := newPendingAdjustment(t)
		require.NoError(t, adj.Reject("admin-1", "conteo duplicado", testNow))
		assert.Equal(t, entity.AdjustmentStatusRejected, adj.Status)
		assert.Equal(t, "conteo duplicado", adj.RejectionReason)
	})

	t.Run("no se aprueba dos veces", func(t *testing.T) {
		adj := newPendingAdjustment(t)
		require.NoError(t, adj.Approve("admin-1", testNow))
		err := adj.Approve("admin-2", testNow)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		var tErr *domain.TransitionError
		require.True(t, errors.As(err, &tErr))
		assert.Equal(t, "approved", tErr.From)
		assert.Equal(t, "approve", tErr.Action)
		assert.Equal(t, "admin-1", adj.ApprovedBy, "el segundo intento no modifica el documento")
	})

	t.Run("rechazado no se reabre", func(t *testing.T) {
		adj := newPendingAdjustment(t)
		require.NoError(t, adj.Reject("admin-1", "", testNow))
		assert.ErrorIs(t, adj.Approve("admin-1", testNow), domain.ErrInvalidTransition)
		assert.Equal(t, entity.AdjustmentStatusRejected, adj.Status)
	})
}

func TestAdjustmentStatus_CanTransitionTo(t *testing.T) {
	all := []entity.AdjustmentStatus{entity.AdjustmentStatusPending, entity.AdjustmentStatusApproved, entity.AdjustmentStatusRejected}
	allowed := map[[2]entity.AdjustmentStatus]bool{
		{entity.AdjustmentStatusPending, entity.AdjustmentStatusApproved}: true,
		{entity.AdjustmentStatusPending, entity.AdjustmentStatusRejected}: true,
	}
	for _, from := range all {
		assert.True(t, from.IsValid())
		for _, to := range all {
			assert.Equal(t, allowed[[2]entity.AdjustmentStatus{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.False(t, entity.AdjustmentStatus("open").IsValid())
}

func TestInventoryAdjustment_Deletable(t *testing.T) {
	adj := newPendingAdjustment(t)
	assert.NoError(t, adj.CheckDeletable())

	require.NoError(t, adj.Approve("admin-1", testNow))
	assert.ErrorIs(t, adj.CheckDeletable(), domain.ErrInvalidTransition)
}

func TestFormatAdjustmentNumber(t *testing.T) {
	assert.Equal(t, "ADJ000001", entity.FormatAdjustmentNumber(1))
	assert.Equal(t, "ADJ001234", entity.FormatAdjustmentNumber(1234))
	assert.Less(t, entity.FormatAdjustmentNumber(9), entity.FormatAdjustmentNumber(10), "el orden lexicográfico sigue al consecutivo")
}
