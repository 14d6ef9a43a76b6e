// Package memory implementa los puertos de persistencia en memoria del proceso.
// Se usa con STORAGE_DRIVER=memory (desarrollo local) y en los tests de casos de uso.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

type stockKey struct {
	productID   string
	warehouseID string
}

// state datos del store. Los slices de los documentos se copian al guardar y al leer,
// así un clon superficial de los mapas basta para aislar una transacción.
type state struct {
	warehouses  map[string]entity.Warehouse
	products    map[string]entity.Product
	stock       map[stockKey]entity.Stock
	adjustments map[string]entity.InventoryAdjustment
	transfers   map[string]entity.StockTransfer
	movements   []entity.InventoryMovement
	counters    map[string]int64
}

func newState() *state {
	return &state{
		warehouses:  make(map[string]entity.Warehouse),
		products:    make(map[string]entity.Product),
		stock:       make(map[stockKey]entity.Stock),
		adjustments: make(map[string]entity.InventoryAdjustment),
		transfers:   make(map[string]entity.StockTransfer),
		counters:    make(map[string]int64),
	}
}

func (s *state) clone() *state {
	c := &state{
		warehouses:  make(map[string]entity.Warehouse, len(s.warehouses)),
		products:    make(map[string]entity.Product, len(s.products)),
		stock:       make(map[stockKey]entity.Stock, len(s.stock)),
		adjustments: make(map[string]entity.InventoryAdjustment, len(s.adjustments)),
		transfers:   make(map[string]entity.StockTransfer, len(s.transfers)),
		movements:   append([]entity.InventoryMovement(nil), s.movements...),
		counters:    make(map[string]int64, len(s.counters)),
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	for k, v := range s.adjustments {
		c.adjustments[k] = v
	}
	for k, v := range s.transfers {
		c.transfers[k] = v
	}
	for k, v := range s.counters {
		c.counters[k] = v
	}
	return c
}

// access ejecuta fn sobre un estado: el compartido (bajo el mutex) o el clon de una transacción.
type access func(fn func(st *state) error) error

// Store almacén en memoria. Las transacciones se serializan con un mutex y trabajan sobre
// una copia que solo reemplaza al estado compartido si fn termina sin error.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) shared(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// Run ejecuta fn con repositorios atados a una copia del estado; Commit = reemplazar el estado.
// fn no debe usar los repositorios no transaccionales del mismo Store (bloquearía el mutex).
func (s *Store) Run(ctx context.Context, fn func(r inventory.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	var tx access = func(f func(st *state) error) error { return f(work) }
	if err := fn(inventory.TxRepos{
		Adjustments: &AdjustmentRepo{do: tx},
		Transfers:   &TransferRepo{do: tx},
		Stock:       &StockRepo{do: tx},
		Movements:   &InventoryMovementRepo{do: tx},
		Sequences:   &SequenceRepo{do: tx},
	}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Warehouses repositorio de bodegas sobre el estado compartido.
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{do: s.shared} }

// Products repositorio de productos sobre el estado compartido.
func (s *Store) Products() *ProductRepo { return &ProductRepo{do: s.shared} }

// Stock repositorio de stock sobre el estado compartido.
func (s *Store) Stock() *StockRepo { return &StockRepo{do: s.shared} }

// Adjustments repositorio de ajustes sobre el estado compartido.
func (s *Store) Adjustments() *AdjustmentRepo { return &AdjustmentRepo{do: s.shared} }

// Transfers repositorio de traslados sobre el estado compartido.
func (s *Store) Transfers() *TransferRepo { return &TransferRepo{do: s.shared} }

// Movements repositorio del diario sobre el estado compartido.
func (s *Store) Movements() *InventoryMovementRepo { return &InventoryMovementRepo{do: s.shared} }

// Levels lecturas de la foto de inventario.
func (s *Store) Levels() *InventoryLevelRepo { return &InventoryLevelRepo{do: s.shared} }
