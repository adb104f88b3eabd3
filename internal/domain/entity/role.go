package entity

// Role capacidad del llamador. Se pasa explícitamente a cada caso de uso que muta estado.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCashier Role = "cashier"
)

// CanManageCatalog productos, códigos de barras y entradas de stock.
func (r Role) CanManageCatalog() bool { return r == RoleAdmin }

// CanCheckout cobrar un carrito.
func (r Role) CanCheckout() bool { return r == RoleAdmin || r == RoleCashier }

// Valid indica si el rol es conocido.
func (r Role) Valid() bool { return r == RoleAdmin || r == RoleCashier }
