// Package memory implementa los repositorios y el TxRunner en memoria para tests y modo demo
// (STORE_DRIVER=memory). Un único mutex serializa las transacciones; si fn falla se restaura
// la foto tomada al iniciar, con lo que ningún cambio parcial queda visible.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/pos-api/internal/application/ports"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

var _ ports.TxRunner = (*Store)(nil)

// Store estado compartido de todos los repositorios en memoria.
type Store struct {
	mu   sync.Mutex
	data *state
}

type state struct {
	products     map[string]entity.Product
	productOrder []string
	barcodes     []entity.BarcodeEntry
	levels       map[string]entity.InventoryLevel // por product_id
	movements    []entity.InventoryMovement
	orders       []entity.SalesOrder
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

func newState() *state {
	return &state{
		products: make(map[string]entity.Product),
		levels:   make(map[string]entity.InventoryLevel),
	}
}

func (s *state) clone() *state {
	c := &state{
		products:     make(map[string]entity.Product, len(s.products)),
		productOrder: append([]string(nil), s.productOrder...),
		barcodes:     append([]entity.BarcodeEntry(nil), s.barcodes...),
		levels:       make(map[string]entity.InventoryLevel, len(s.levels)),
		movements:    append([]entity.InventoryMovement(nil), s.movements...),
		orders:       make([]entity.SalesOrder, 0, len(s.orders)),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.levels {
		c.levels[k] = v
	}
	for _, o := range s.orders {
		c.orders = append(c.orders, copyOrder(o))
	}
	return c
}

func copyOrder(o entity.SalesOrder) entity.SalesOrder {
	o.Items = append([]entity.SalesOrderItem(nil), o.Items...)
	return o
}

// Run ejecuta fn con repositorios que comparten el lock ya tomado. Commit implícito si fn
// devuelve nil; en otro caso (o ante un panic) se restaura la foto previa.
func (s *Store) Run(ctx context.Context, fn func(repos ports.TxRepos) error) (err error) {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w: %w", domain.ErrStorage, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	defer func() {
		if p := recover(); p != nil {
			s.data = snapshot
			panic(p)
		}
		if err != nil {
			s.data = snapshot
		}
	}()

	if err = fn(s.repos(true)); err != nil {
		return err
	}
	if cErr := ctx.Err(); cErr != nil {
		return fmt.Errorf("commit transaction: %w: %w", domain.ErrStorage, cErr)
	}
	return nil
}

// Repos repositorios fuera de transacción: cada llamada toma el lock por su cuenta.
func (s *Store) Repos() ports.TxRepos {
	return s.repos(false)
}

func (s *Store) repos(inTx bool) ports.TxRepos {
	base := handle{store: s, inTx: inTx}
	return ports.TxRepos{
		Products:  &ProductRepo{base},
		Barcodes:  &BarcodeRepo{base},
		Levels:    &InventoryLevelRepo{base},
		Movements: &InventoryMovementRepo{base},
		Orders:    &SalesOrderRepo{base},
	}
}

// handle acceso al estado; dentro de Run el lock ya está tomado.
type handle struct {
	store *Store
	inTx  bool
}

func (h handle) lock() func() {
	if h.inTx {
		return func() {}
	}
	h.store.mu.Lock()
	return h.store.mu.Unlock
}

func (h handle) data() *state { return h.store.data }
