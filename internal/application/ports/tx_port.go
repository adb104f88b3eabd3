package ports

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Products  repository.ProductRepository
	Barcodes  repository.BarcodeRepository
	Levels    repository.InventoryLevelRepository
	Movements repository.InventoryMovementRepository
	Orders    repository.SalesOrderRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn devuelve nil, Rollback en otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}
