package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeIN  = "IN"  // entrada
	MovementTypeOUT = "OUT" // salida
)

// Motivos fijos que escribe el sistema.
const (
	ReasonInitialStock   = "Initial stock"
	ReasonCheckoutPrefix = "Checkout "
)

// InventoryMovement registro inmutable de un cambio de cantidad. Qty siempre es positiva;
// el signo lo da Type.
type InventoryMovement struct {
	ID        string
	ProductID string
	Type      string
	Qty       int
	Reason    string
	CreatedAt time.Time
}

// SignedQty devuelve la cantidad con signo según el tipo (IN suma, OUT resta).
func (m *InventoryMovement) SignedQty() int {
	if m.Type == MovementTypeOUT {
		return -m.Qty
	}
	return m.Qty
}
