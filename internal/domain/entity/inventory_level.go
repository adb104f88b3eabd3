package entity

import (
	"math"
	"time"
)

// DefaultReorderLevel umbral de reorden cuando el alta no lo indica.
const DefaultReorderLevel = 10

// MaxQty tope de cualquier cantidad (línea, entrada o stock resultante): columnas INTEGER.
const MaxQty = math.MaxInt32

// InventoryLevel es la foto del stock actual de un producto (exactamente una fila por producto).
// Solo la modifican las operaciones del libro de inventario.
type InventoryLevel struct {
	ID           string
	ProductID    string
	QtyOnHand    int
	ReorderLevel int
	UpdatedAt    time.Time
}
